package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/domain/job"
	"github.com/geocoder89/jobboard/internal/domain/user"
	"github.com/geocoder89/jobboard/internal/http/middlewares"
	"github.com/geocoder89/jobboard/internal/service"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	registerFn func(ctx context.Context, in service.RegisterInput) (user.User, error)
	loginFn    func(ctx context.Context, in service.LoginInput) (service.LoginResult, error)
	meFn       func(ctx context.Context, actor *auth.Session) (user.User, error)
	listFn     func(ctx context.Context, actor *auth.Session, status *user.Status) ([]user.User, error)
	approveFn  func(ctx context.Context, actor *auth.Session, id string) (user.User, error)
	rejectFn   func(ctx context.Context, actor *auth.Session, id string) error
	deleteFn   func(ctx context.Context, actor *auth.Session, id string) error
}

func (f *fakeAccounts) Register(ctx context.Context, in service.RegisterInput) (user.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, in)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, in service.LoginInput) (service.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, in)
	}
	return service.LoginResult{}, nil
}

func (f *fakeAccounts) Me(ctx context.Context, actor *auth.Session) (user.User, error) {
	if f.meFn != nil {
		return f.meFn(ctx, actor)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) ListStudents(ctx context.Context, actor *auth.Session, status *user.Status) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx, actor, status)
	}
	return []user.User{}, nil
}

func (f *fakeAccounts) Approve(ctx context.Context, actor *auth.Session, id string) (user.User, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, actor, id)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) Reject(ctx context.Context, actor *auth.Session, id string) error {
	if f.rejectFn != nil {
		return f.rejectFn(ctx, actor, id)
	}
	return nil
}

func (f *fakeAccounts) Delete(ctx context.Context, actor *auth.Session, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, actor, id)
	}
	return nil
}

type fakeBoard struct {
	createFn           func(ctx context.Context, actor *auth.Session, req job.CreateRequest) (job.Job, error)
	listFn             func(ctx context.Context, actor *auth.Session, filter job.ListFilter) ([]job.Job, error)
	adminDashboardFn   func(ctx context.Context, actor *auth.Session) (service.AdminDashboard, error)
	studentDashboardFn func(ctx context.Context, actor *auth.Session) (service.StudentDashboard, error)
}

func (f *fakeBoard) CreateJob(ctx context.Context, actor *auth.Session, req job.CreateRequest) (job.Job, error) {
	if f.createFn != nil {
		return f.createFn(ctx, actor, req)
	}
	return job.Job{}, nil
}

func (f *fakeBoard) ListJobs(ctx context.Context, actor *auth.Session, filter job.ListFilter) ([]job.Job, error) {
	if f.listFn != nil {
		return f.listFn(ctx, actor, filter)
	}
	return []job.Job{}, nil
}

func (f *fakeBoard) AdminDashboard(ctx context.Context, actor *auth.Session) (service.AdminDashboard, error) {
	if f.adminDashboardFn != nil {
		return f.adminDashboardFn(ctx, actor)
	}
	return service.AdminDashboard{}, nil
}

func (f *fakeBoard) StudentDashboard(ctx context.Context, actor *auth.Session) (service.StudentDashboard, error) {
	if f.studentDashboardFn != nil {
		return f.studentDashboardFn(ctx, actor)
	}
	return service.StudentDashboard{}, nil
}

var (
	adminSession    = auth.Session{UserID: "admin-1", Role: user.RoleAdmin, Status: user.StatusApproved}
	approvedSession = auth.Session{UserID: "student-1", Role: user.RoleStudent, Status: user.StatusApproved}
)

// withSession plays the part of the auth middleware for a single route.
func withSession(s *auth.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Set(middlewares.CtxSession, *s)
		}
		c.Next()
	}
}

// small helper function which returns the gin engine to mount one handler per test
func setupRouter(method, path string, s *auth.Session, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, withSession(s), h)

	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []struct {
				Field string `json:"field"`
				Rule  string `json:"rule"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	return resp.Error.Code
}
