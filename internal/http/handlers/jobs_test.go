package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/authz"
	"github.com/geocoder89/jobboard/internal/domain/job"
	"github.com/geocoder89/jobboard/internal/http/handlers"
	"github.com/geocoder89/jobboard/internal/service"
)

func TestCreateJobHandler(t *testing.T) {
	valid := `{
		"title": "Backend Intern",
		"company": "Acme",
		"location": "Remote",
		"description": "Write Go",
		"type": "internship"
	}`

	tests := []struct {
		name     string
		body     string
		session  *auth.Session
		setup    func(*fakeBoard)
		wantCode int
	}{
		{
			name:    "success",
			body:    valid,
			session: &adminSession,
			setup: func(f *fakeBoard) {
				f.createFn = func(ctx context.Context, actor *auth.Session, req job.CreateRequest) (job.Job, error) {
					return job.New(req, actor.UserID), nil
				}
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "bad type",
			body:     `{"title":"x","company":"y","location":"z","description":"d","type":"gig"}`,
			session:  &adminSession,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed json",
			body:     `{"title":`,
			session:  &adminSession,
			wantCode: http.StatusBadRequest,
		},
		{
			name:    "student forbidden",
			body:    valid,
			session: &approvedSession,
			setup: func(f *fakeBoard) {
				f.createFn = func(context.Context, *auth.Session, job.CreateRequest) (job.Job, error) {
					return job.Job{}, authz.ErrForbidden
				}
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeBoard{}
			if tt.setup != nil {
				tt.setup(f)
			}

			h := handlers.NewJobsHandler(f)
			r := setupRouter(http.MethodPost, "/jobs", tt.session, h.Create)

			w := doJSON(r, http.MethodPost, "/jobs", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tt.wantCode, w.Body.String())
			}

			if tt.wantCode == http.StatusCreated {
				var j job.Job
				if err := json.Unmarshal(w.Body.Bytes(), &j); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if j.Status != job.StatusOpen || j.UserID != adminSession.UserID {
					t.Fatalf("job = %+v", j)
				}
			}
		})
	}
}

func TestListJobsHandler_FiltersAndETag(t *testing.T) {
	var got job.ListFilter
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f := &fakeBoard{
		listFn: func(ctx context.Context, actor *auth.Session, filter job.ListFilter) ([]job.Job, error) {
			got = filter
			return []job.Job{{ID: "j1", Title: "Intern", Type: job.TypeInternship, Status: job.StatusOpen, CreatedAt: now}}, nil
		},
	}

	h := handlers.NewJobsHandler(f)
	r := setupRouter(http.MethodGet, "/jobs", &approvedSession, h.List)

	w := doJSON(r, http.MethodGet, "/jobs?type=internship&status=open", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if got.Type == nil || *got.Type != job.TypeInternship || got.Status == nil || *got.Status != job.StatusOpen {
		t.Fatalf("filter = %+v", got)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/jobs?type=internship&status=open", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional GET status = %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/jobs?type=gig", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d", w.Code)
	}
}

func TestDashboardHandlers(t *testing.T) {
	f := &fakeBoard{
		adminDashboardFn: func(ctx context.Context, actor *auth.Session) (service.AdminDashboard, error) {
			return service.AdminDashboard{PendingStudents: 2, Jobs: 3}, nil
		},
		studentDashboardFn: func(ctx context.Context, actor *auth.Session) (service.StudentDashboard, error) {
			if actor.Status != "approved" {
				return service.StudentDashboard{}, authz.ErrForbidden
			}
			return service.StudentDashboard{UserID: actor.UserID, Jobs: []job.Job{}}, nil
		},
	}

	h := handlers.NewJobsHandler(f)

	r := setupRouter(http.MethodGet, "/admin/dashboard", &adminSession, h.AdminDashboard)
	w := doJSON(r, http.MethodGet, "/admin/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin dashboard status = %d", w.Code)
	}
	var d service.AdminDashboard
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.PendingStudents != 2 || d.Jobs != 3 {
		t.Fatalf("dashboard = %+v", d)
	}

	r = setupRouter(http.MethodGet, "/student/dashboard", &approvedSession, h.StudentDashboard)
	w = doJSON(r, http.MethodGet, "/student/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("student dashboard status = %d", w.Code)
	}
}
