package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/authz"
	"github.com/geocoder89/jobboard/internal/domain/job"
	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/geocoder89/jobboard/internal/utils"
)

type JobStore interface {
	Create(ctx context.Context, j job.Job) (job.Job, error)
	// List returns postings newest first.
	List(ctx context.Context, filter job.ListFilter) ([]job.Job, error)
	Count(ctx context.Context, filter job.ListFilter) (int, error)
}

type ListingCache interface {
	Get(key string) (any, bool)
	Set(key string, val any)
	Clear()
}

type AdminDashboard struct {
	PendingStudents  int `json:"pendingStudents"`
	ApprovedStudents int `json:"approvedStudents"`
	Jobs             int `json:"jobs"`
	OpenJobs         int `json:"openJobs"`
}

type StudentDashboard struct {
	UserID string    `json:"userId"`
	Jobs   []job.Job `json:"jobs"`
}

// Board serves job postings and the role specific dashboards.
type Board struct {
	jobs  JobStore
	users UserStore
	cache ListingCache
	log   *slog.Logger
}

// NewBoard wires the job board. cache may be nil.
func NewBoard(jobs JobStore, users UserStore, cache ListingCache, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}

	return &Board{jobs: jobs, users: users, cache: cache, log: log}
}

func (b *Board) CreateJob(ctx context.Context, actor *auth.Session, req job.CreateRequest) (job.Job, error) {
	if err := authz.Authorize(actor, authz.AdminOnly).Err(); err != nil {
		return job.Job{}, err
	}

	if err := validateStruct(req); err != nil {
		return job.Job{}, err
	}

	j, err := b.jobs.Create(ctx, job.New(req, actor.UserID))
	if err != nil {
		return job.Job{}, internal(ctx, b.log, "jobs.create", err)
	}

	if b.cache != nil {
		b.cache.Clear()
	}

	poster, err := b.users.GetByID(ctx, actor.UserID)
	switch {
	case err == nil:
		j.PostedBy = &job.Poster{Name: poster.Name, Email: poster.Email}
	case !errors.Is(err, user.ErrNotFound):
		// the posting is stored; only the echo misses its poster
		b.log.WarnContext(ctx, "job poster lookup failed", "job_id", j.ID, "err", err)
	}

	b.log.InfoContext(ctx, "job.created", "job_id", j.ID, "actor_id", actor.UserID)

	return j, nil
}

func (b *Board) ListJobs(ctx context.Context, actor *auth.Session, filter job.ListFilter) ([]job.Job, error) {
	if err := authz.Authorize(actor, authz.AnyAuthenticated).Err(); err != nil {
		return nil, err
	}

	return b.list(ctx, filter)
}

func (b *Board) StudentDashboard(ctx context.Context, actor *auth.Session) (StudentDashboard, error) {
	if err := authz.Authorize(actor, authz.ApprovedStudent).Err(); err != nil {
		return StudentDashboard{}, err
	}

	open := job.StatusOpen

	jobs, err := b.list(ctx, job.ListFilter{Status: &open})
	if err != nil {
		return StudentDashboard{}, err
	}

	return StudentDashboard{UserID: actor.UserID, Jobs: jobs}, nil
}

func (b *Board) AdminDashboard(ctx context.Context, actor *auth.Session) (AdminDashboard, error) {
	if err := authz.Authorize(actor, authz.AdminOnly).Err(); err != nil {
		return AdminDashboard{}, err
	}

	student := user.RoleStudent
	pending := user.StatusPending
	approved := user.StatusApproved
	open := job.StatusOpen

	var (
		out AdminDashboard
		err error
	)

	if out.PendingStudents, err = b.users.Count(ctx, user.ListFilter{Role: &student, Status: &pending}); err != nil {
		return AdminDashboard{}, internal(ctx, b.log, "users.count", err)
	}
	if out.ApprovedStudents, err = b.users.Count(ctx, user.ListFilter{Role: &student, Status: &approved}); err != nil {
		return AdminDashboard{}, internal(ctx, b.log, "users.count", err)
	}
	if out.Jobs, err = b.jobs.Count(ctx, job.ListFilter{}); err != nil {
		return AdminDashboard{}, internal(ctx, b.log, "jobs.count", err)
	}
	if out.OpenJobs, err = b.jobs.Count(ctx, job.ListFilter{Status: &open}); err != nil {
		return AdminDashboard{}, internal(ctx, b.log, "jobs.count", err)
	}

	return out, nil
}

func (b *Board) list(ctx context.Context, filter job.ListFilter) ([]job.Job, error) {
	key := utils.BuildJobsListCacheKey(filter.Type, filter.Status)

	if b.cache != nil {
		if v, ok := b.cache.Get(key); ok {
			if cached, ok := v.([]job.Job); ok {
				return append([]job.Job(nil), cached...), nil
			}
		}
	}

	jobs, err := b.jobs.List(ctx, filter)
	if err != nil {
		return nil, internal(ctx, b.log, "jobs.list", err)
	}

	if jobs == nil {
		jobs = []job.Job{}
	}

	if b.cache != nil {
		b.cache.Set(key, append([]job.Job(nil), jobs...))
	}

	return jobs, nil
}
