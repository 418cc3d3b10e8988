package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved
}

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// nil means "any status"
type ListFilter struct {
	Role   *Role
	Status *Status
}

// NewStudent builds a self-registered account. Students always start pending.
func NewStudent(name, email, passwordHash string) User {
	return newUser(name, email, passwordHash, RoleStudent, StatusPending)
}

// NewAdmin builds a bootstrap admin account, approved from the start.
func NewAdmin(name, email, passwordHash string) User {
	return newUser(name, email, passwordHash, RoleAdmin, StatusApproved)
}

func newUser(name, email, passwordHash string, role Role, status Status) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
