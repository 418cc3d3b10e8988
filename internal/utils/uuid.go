package utils

import "github.com/google/uuid"

// IsUUID reports whether s is a uuid in the canonical 36 character form.
func IsUUID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}
