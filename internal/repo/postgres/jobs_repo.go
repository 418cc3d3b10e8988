package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/jobboard/internal/domain/job"
	"github.com/geocoder89/jobboard/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func (repo *JobsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) Create(ctx context.Context, j job.Job) (job.Job, error) {
	err := r.observe("jobs.create", func() error {
		_, err := r.pool.Exec(ctx, `INSERT INTO jobs(
	 id, title, company, location, description, requirements, type, status, salary, user_id, created_at
	 ) VALUES (
		$1,$2,$3,$4,$5,$6,
		$7,$8,$9,$10,$11
	 )`,
			j.ID, j.Title, j.Company, j.Location, j.Description, j.Requirements,
			string(j.Type), string(j.Status), j.Salary, j.UserID, j.CreatedAt,
		)
		return err
	})

	if err != nil {
		return job.Job{}, err
	}

	return j, nil
}

func jobConditions(f job.ListFilter) (string, []any) {
	var conds []string
	var args []any

	argsPosition := 1

	if f.Type != nil {
		conds = append(conds, fmt.Sprintf("j.type = $%d", argsPosition))
		args = append(args, string(*f.Type))
		argsPosition++
	}

	if f.Status != nil {
		conds = append(conds, fmt.Sprintf("j.status = $%d", argsPosition))
		args = append(args, string(*f.Status))
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *JobsRepo) List(ctx context.Context, f job.ListFilter) ([]job.Job, error) {
	where, args := jobConditions(f)

	query := `
		SELECT j.id, j.title, j.company, j.location, j.description, j.requirements,
		       j.type, j.status, j.salary, j.user_id, j.created_at,
		       u.name, u.email
		FROM jobs j
		LEFT JOIN users u ON u.id = j.user_id` + where + `
		ORDER BY j.created_at DESC, j.id DESC`

	var rows pgx.Rows

	err := r.observe("jobs.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)

	for rows.Next() {
		var (
			j           job.Job
			jobType     string
			status      string
			posterName  *string
			posterEmail *string
		)

		if err := rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.Requirements,
			&jobType, &status, &j.Salary, &j.UserID, &j.CreatedAt,
			&posterName, &posterEmail,
		); err != nil {
			return nil, err
		}

		j.Type = job.Type(jobType)
		j.Status = job.Status(status)

		if posterName != nil && posterEmail != nil {
			j.PostedBy = &job.Poster{Name: *posterName, Email: *posterEmail}
		}

		out = append(out, j)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *JobsRepo) Count(ctx context.Context, f job.ListFilter) (int, error) {
	where, args := jobConditions(f)

	var n int

	err := r.observe("jobs.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs j`+where, args...).Scan(&n)
	})

	return n, err
}
