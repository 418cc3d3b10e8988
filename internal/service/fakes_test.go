package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/domain/job"
	"github.com/geocoder89/jobboard/internal/domain/user"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUsers is a map backed UserStore with call counters so tests can
// assert that denied operations never reached the store.
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]user.User
	writes  int
	failAll error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]user.User{}}
}

func (m *memUsers) Create(_ context.Context, u user.User) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return user.User{}, m.failAll
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.User{}, user.ErrDuplicateEmail
		}
	}
	m.writes++
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return user.User{}, m.failAll
	}
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return user.User{}, m.failAll
	}
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUsers) List(_ context.Context, f user.ListFilter) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []user.User{}
	for _, u := range m.byID {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Status != nil && u.Status != *f.Status {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memUsers) Count(ctx context.Context, f user.ListFilter) (int, error) {
	out, err := m.List(ctx, f)
	return len(out), err
}

func (m *memUsers) Approve(_ context.Context, id string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok || u.Role != user.RoleStudent || u.Status != user.StatusPending {
		return user.User{}, user.ErrNotFound
	}
	m.writes++
	u.Status = user.StatusApproved
	u.UpdatedAt = time.Now().UTC()
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return user.ErrNotFound
	}
	m.writes++
	delete(m.byID, id)
	return nil
}

type memJobs struct {
	mu      sync.Mutex
	items   []job.Job
	listed  int
	failAll error
}

func (m *memJobs) Create(_ context.Context, j job.Job) (job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll != nil {
		return job.Job{}, m.failAll
	}
	m.items = append(m.items, j)
	return j, nil
}

func (m *memJobs) List(_ context.Context, f job.ListFilter) ([]job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listed++
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := []job.Job{}
	for _, j := range m.items {
		if f.Type != nil && j.Type != *f.Type {
			continue
		}
		if f.Status != nil && j.Status != *f.Status {
			continue
		}
		out = append(out, j)
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (m *memJobs) Count(ctx context.Context, f job.ListFilter) (int, error) {
	out, err := m.List(ctx, f)
	return len(out), err
}

var errDBDown = errors.New("db down")

func newSessions() *auth.Manager {
	return auth.NewManager("test-secret", time.Hour)
}

func adminSession() *auth.Session {
	return &auth.Session{UserID: "admin-1", Role: user.RoleAdmin, Status: user.StatusApproved}
}
