package auth

import (
	"errors"
	"time"

	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession covers every way a token can fail validation.
// Callers only learn that the caller is unauthenticated.
var ErrInvalidSession = errors.New("invalid session")

type Claims struct {
	UserID string      `json:"sub"`
	Role   user.Role   `json:"role"`
	Status user.Status `json:"status"`
	JTI    string      `json:"jti"`
	jwt.RegisteredClaims
}

// Session is the decoded view of a valid token. Role and Status are a
// snapshot taken when the token was issued.
type Session struct {
	UserID    string      `json:"userId"`
	Role      user.Role   `json:"role"`
	Status    user.Status `json:"status"`
	IssuedAt  time.Time   `json:"issuedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue(u user.User) (string, Session, error) {
	now := m.now().UTC().Truncate(time.Second)
	exp := now.Add(m.ttl)

	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		Status: u.Status,
		JTI:    uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Subject:   u.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	raw, err := token.SignedString(m.secret)
	if err != nil {
		return "", Session{}, err
	}

	return raw, Session{
		UserID:    u.ID,
		Role:      u.Role,
		Status:    u.Status,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

func (m *Manager) Validate(tokenStr string) (Session, error) {
	if tokenStr == "" {
		return Session{}, ErrInvalidSession
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		return Session{}, ErrInvalidSession
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid || claims.UserID == "" || !claims.Role.Valid() || !claims.Status.Valid() {
		return Session{}, ErrInvalidSession
	}

	s := Session{
		UserID: claims.UserID,
		Role:   claims.Role,
		Status: claims.Status,
	}

	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}

	return s, nil
}
