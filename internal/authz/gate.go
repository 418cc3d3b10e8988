// Package authz decides whether a session may perform an operation.
// It does no I/O; callers supply the decoded session.
package authz

import (
	"errors"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
)

// Requirement is what an operation asks of the caller. Empty fields are
// not checked.
type Requirement struct {
	Name   string
	Role   user.Role
	Status user.Status
}

var (
	AnyAuthenticated = Requirement{Name: "any_authenticated"}
	AdminOnly        = Requirement{Name: "admin", Role: user.RoleAdmin}
	ApprovedStudent  = Requirement{Name: "approved_student", Role: user.RoleStudent, Status: user.StatusApproved}
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Reason) Decision { return Decision{Reason: r} }

// Err returns nil for an allowed decision, otherwise ErrUnauthenticated or
// ErrForbidden.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	if d.Reason == ReasonUnauthenticated {
		return ErrUnauthenticated
	}

	return ErrForbidden
}

// Authorize evaluates req against s. Checks run in order and stop at the
// first failure: session present, role, status.
func Authorize(s *auth.Session, req Requirement) Decision {
	if s == nil || s.UserID == "" {
		return deny(ReasonUnauthenticated)
	}

	if req.Role != "" && s.Role != req.Role {
		return deny(ReasonForbidden)
	}

	if req.Status != "" && s.Status != req.Status {
		return deny(ReasonForbidden)
	}

	return allow()
}
