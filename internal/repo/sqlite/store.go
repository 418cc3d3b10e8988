package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/jobboard/internal/domain/job"
	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/geocoder89/jobboard/internal/observability"
	"gorm.io/gorm"
)

type userRow struct {
	ID           string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"index:idx_users_role_status;not null"`
	Status       string    `gorm:"index:idx_users_role_status;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type jobRow struct {
	ID           string `gorm:"primaryKey"`
	Title        string `gorm:"not null"`
	Company      string `gorm:"not null"`
	Location     string `gorm:"not null"`
	Description  string `gorm:"not null"`
	Requirements string `gorm:"not null;default:''"`
	Type         string `gorm:"index;not null"`
	Status       string `gorm:"index;not null"`
	Salary       *string
	UserID       string    `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"index;not null"`
}

func (jobRow) TableName() string { return "jobs" }

// listedJob is a jobs row joined with its poster.
type listedJob struct {
	Row         jobRow `gorm:"embedded"`
	PosterName  *string
	PosterEmail *string
}

// Store keeps users and job postings in a single sqlite database through gorm.
// It satisfies the same store contracts as the postgres repos.
type Store struct {
	db   *gorm.DB
	prom *observability.Prom
}

// New wraps db. prom may be nil.
func New(db *gorm.DB, prom *observability.Prom) *Store {
	return &Store{db: db, prom: prom}
}

func observe(p *observability.Prom, op string, fn func() error) error {
	if p != nil {
		return p.ObserveDB(op, fn)
	}
	return fn()
}

// Migrate creates or updates the users and jobs tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&userRow{}, &jobRow{})
}

func toUserRow(u user.User) userRow {
	return userRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         user.Role(r.Role),
		Status:       user.Status(r.Status),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func (s *Store) Create(ctx context.Context, u user.User) (user.User, error) {
	row := toUserRow(u)

	err := observe(s.prom, "users.create", func() error {
		return s.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.User{}, user.ErrDuplicateEmail
		}
		return user.User{}, err
	}

	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (user.User, error) {
	return s.first(ctx, "users.get_by_id", "id = ?", id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.first(ctx, "users.get_by_email", "email = ?", email)
}

func (s *Store) first(ctx context.Context, op, cond, arg string) (user.User, error) {
	var row userRow

	err := observe(s.prom, op, func() error {
		return s.db.WithContext(ctx).Where(cond, arg).Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return row.toUser(), nil
}

func userScope(f user.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f.Role != nil {
			tx = tx.Where("role = ?", string(*f.Role))
		}
		if f.Status != nil {
			tx = tx.Where("status = ?", string(*f.Status))
		}
		return tx
	}
}

func (s *Store) List(ctx context.Context, f user.ListFilter) ([]user.User, error) {
	var rows []userRow

	err := observe(s.prom, "users.list", func() error {
		return s.db.WithContext(ctx).
			Scopes(userScope(f)).
			Order("created_at DESC").
			Order("id DESC").
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]user.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toUser())
	}

	return out, nil
}

func (s *Store) Count(ctx context.Context, f user.ListFilter) (int, error) {
	var n int64

	err := observe(s.prom, "users.count", func() error {
		return s.db.WithContext(ctx).Model(&userRow{}).Scopes(userScope(f)).Count(&n).Error
	})

	return int(n), err
}

func (s *Store) Approve(ctx context.Context, id string) (user.User, error) {
	var affected int64

	err := observe(s.prom, "users.approve", func() error {
		res := s.db.WithContext(ctx).
			Model(&userRow{}).
			Where("id = ? AND role = ? AND status = ?", id, string(user.RoleStudent), string(user.StatusPending)).
			Updates(map[string]any{
				"status":     string(user.StatusApproved),
				"updated_at": time.Now().UTC(),
			})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return user.User{}, err
	}

	if affected == 0 {
		return user.User{}, user.ErrNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	var affected int64

	err := observe(s.prom, "users.delete", func() error {
		res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&userRow{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}

// Jobs exposes the job posting half of the store.
func (s *Store) Jobs() *JobStore {
	return &JobStore{db: s.db, prom: s.prom}
}

type JobStore struct {
	db   *gorm.DB
	prom *observability.Prom
}

func (s *JobStore) Create(ctx context.Context, j job.Job) (job.Job, error) {
	row := jobRow{
		ID:           j.ID,
		Title:        j.Title,
		Company:      j.Company,
		Location:     j.Location,
		Description:  j.Description,
		Requirements: j.Requirements,
		Type:         string(j.Type),
		Status:       string(j.Status),
		Salary:       j.Salary,
		UserID:       j.UserID,
		CreatedAt:    j.CreatedAt,
	}

	err := observe(s.prom, "jobs.create", func() error {
		return s.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

func jobScope(f job.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f.Type != nil {
			tx = tx.Where("jobs.type = ?", string(*f.Type))
		}
		if f.Status != nil {
			tx = tx.Where("jobs.status = ?", string(*f.Status))
		}
		return tx
	}
}

func (s *JobStore) List(ctx context.Context, f job.ListFilter) ([]job.Job, error) {
	var rows []listedJob

	err := observe(s.prom, "jobs.list", func() error {
		return s.db.WithContext(ctx).
			Table("jobs").
			Select("jobs.*, users.name AS poster_name, users.email AS poster_email").
			Joins("LEFT JOIN users ON users.id = jobs.user_id").
			Scopes(jobScope(f)).
			Order("jobs.created_at DESC").
			Order("jobs.id DESC").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]job.Job, 0, len(rows))
	for _, lj := range rows {
		r := lj.Row
		j := job.Job{
			ID:           r.ID,
			Title:        r.Title,
			Company:      r.Company,
			Location:     r.Location,
			Description:  r.Description,
			Requirements: r.Requirements,
			Type:         job.Type(r.Type),
			Status:       job.Status(r.Status),
			Salary:       r.Salary,
			UserID:       r.UserID,
			CreatedAt:    r.CreatedAt.UTC(),
		}

		if lj.PosterName != nil && lj.PosterEmail != nil {
			j.PostedBy = &job.Poster{Name: *lj.PosterName, Email: *lj.PosterEmail}
		}

		out = append(out, j)
	}

	return out, nil
}

func (s *JobStore) Count(ctx context.Context, f job.ListFilter) (int, error) {
	var n int64

	err := observe(s.prom, "jobs.count", func() error {
		return s.db.WithContext(ctx).Model(&jobRow{}).Scopes(jobScope(f)).Count(&n).Error
	})

	return int(n), err
}
