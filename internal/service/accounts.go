package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/authz"
	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/geocoder89/jobboard/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	Count(ctx context.Context, filter user.ListFilter) (int, error)
	// Approve flips a pending student to approved. It returns
	// user.ErrNotFound when no pending student with that id exists.
	Approve(ctx context.Context, id string) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type SessionIssuer interface {
	Issue(u user.User) (string, auth.Session, error)
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token   string       `json:"token"`
	Session auth.Session `json:"session"`
	User    user.User    `json:"user"`
}

type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// Accounts owns the student lifecycle: pending on registration, approved
// by an admin, or removed.
type Accounts struct {
	users    UserStore
	sessions SessionIssuer
	log      *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccounts(users UserStore, sessions SessionIssuer, log *slog.Logger) *Accounts {
	if log == nil {
		log = slog.Default()
	}

	return &Accounts{users: users, sessions: sessions, log: log}
}

func (a *Accounts) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	if err := validateStruct(in); err != nil {
		return user.User{}, err
	}

	// max=72 above counts runes; bcrypt limits bytes
	if len(in.Password) > security.MaxPasswordBytes {
		return user.User{}, &ValidationError{Fields: []FieldError{{Field: "password", Rule: "max", Param: "72"}}}
	}

	_, err := a.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return user.User{}, user.ErrDuplicateEmail
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, internal(ctx, a.log, "users.get_by_email", err)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return user.User{}, internal(ctx, a.log, "security.hash_password", err)
	}

	u, err := a.users.Create(ctx, user.NewStudent(in.Name, in.Email, hash))
	if err != nil {
		// the unique index settles concurrent registrations
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.User{}, user.ErrDuplicateEmail
		}
		return user.User{}, internal(ctx, a.log, "users.create", err)
	}

	a.log.InfoContext(ctx, "student.registered", "user_id", u.ID)

	return u, nil
}

// Login verifies credentials only. A pending student gets a session too;
// what that session may do is decided by the gate.
func (a *Accounts) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if err := validateStruct(in); err != nil {
		return LoginResult{}, err
	}

	u, err := a.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// keep the response time of unknown emails close to a wrong password
			security.VerifyPassword(a.dummyPasswordHash(), in.Password)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, internal(ctx, a.log, "users.get_by_email", err)
	}

	if !security.VerifyPassword(u.PasswordHash, in.Password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, s, err := a.sessions.Issue(u)
	if err != nil {
		return LoginResult{}, internal(ctx, a.log, "sessions.issue", err)
	}

	return LoginResult{Token: token, Session: s, User: u}, nil
}

func (a *Accounts) Me(ctx context.Context, actor *auth.Session) (user.User, error) {
	if err := authz.Authorize(actor, authz.AnyAuthenticated).Err(); err != nil {
		return user.User{}, err
	}

	u, err := a.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, internal(ctx, a.log, "users.get_by_id", err)
	}

	return u, nil
}

// Approve moves a pending student to approved. Approving an approved
// student succeeds without touching the record.
func (a *Accounts) Approve(ctx context.Context, actor *auth.Session, userID string) (user.User, error) {
	if err := authz.Authorize(actor, authz.AdminOnly).Err(); err != nil {
		return user.User{}, err
	}

	u, err := a.student(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	if u.Status == user.StatusApproved {
		return u, nil
	}

	approved, err := a.users.Approve(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// lost a race with another approve or a delete
			return a.student(ctx, userID)
		}
		return user.User{}, internal(ctx, a.log, "users.approve", err)
	}

	a.log.InfoContext(ctx, "student.approved", "user_id", userID, "actor_id", actor.UserID)

	return approved, nil
}

// Delete removes a student whatever its status.
func (a *Accounts) Delete(ctx context.Context, actor *auth.Session, userID string) error {
	if err := authz.Authorize(actor, authz.AdminOnly).Err(); err != nil {
		return err
	}

	if _, err := a.student(ctx, userID); err != nil {
		return err
	}

	return a.remove(ctx, actor, userID, "student.deleted")
}

// Reject discards a registration that has not been approved yet.
func (a *Accounts) Reject(ctx context.Context, actor *auth.Session, userID string) error {
	if err := authz.Authorize(actor, authz.AdminOnly).Err(); err != nil {
		return err
	}

	u, err := a.student(ctx, userID)
	if err != nil {
		return err
	}

	if u.Status != user.StatusPending {
		return ErrConflict
	}

	return a.remove(ctx, actor, userID, "student.rejected")
}

func (a *Accounts) ListStudents(ctx context.Context, actor *auth.Session, status *user.Status) ([]user.User, error) {
	if err := authz.Authorize(actor, authz.AdminOnly).Err(); err != nil {
		return nil, err
	}

	role := user.RoleStudent

	users, err := a.users.List(ctx, user.ListFilter{Role: &role, Status: status})
	if err != nil {
		return nil, internal(ctx, a.log, "users.list", err)
	}

	return users, nil
}

// EnsureAdmin creates the bootstrap admin when no account uses the seed
// email. It is safe to call on every start.
func (a *Accounts) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	if seed.Email == "" || seed.Password == "" {
		return nil
	}

	existing, err := a.users.GetByEmail(ctx, seed.Email)
	if err == nil {
		if existing.Role != user.RoleAdmin {
			a.log.WarnContext(ctx, "admin seed email belongs to a non-admin account", "user_id", existing.ID)
		}
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(seed.Password)
	if err != nil {
		return err
	}

	name := seed.Name
	if name == "" {
		name = "Admin User"
	}

	u, err := a.users.Create(ctx, user.NewAdmin(name, seed.Email, hash))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	a.log.InfoContext(ctx, "admin.seeded", "user_id", u.ID)

	return nil
}

// student loads a student record. Admin ids are reported as not found so
// that student operations can never touch an admin account.
func (a *Accounts) student(ctx context.Context, id string) (user.User, error) {
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, internal(ctx, a.log, "users.get_by_id", err)
	}

	if u.Role != user.RoleStudent {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (a *Accounts) remove(ctx context.Context, actor *auth.Session, id, event string) error {
	err := a.users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return internal(ctx, a.log, "users.delete", err)
	}

	a.log.InfoContext(ctx, event, "user_id", id, "actor_id", actor.UserID)

	return nil
}

func (a *Accounts) dummyPasswordHash() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = security.HashPassword("not-a-real-password")
	})

	return a.dummyHash
}
