package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/cache"
	"github.com/geocoder89/jobboard/internal/db"
	apphttp "github.com/geocoder89/jobboard/internal/http"
	"github.com/geocoder89/jobboard/internal/observability"
	"github.com/geocoder89/jobboard/internal/repo/sqlite"
	"github.com/geocoder89/jobboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@campus.edu"
	adminPassword = "admin-pass-123"
)

// setupRouter wires the real services over an in-memory sqlite store.
func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	r, _ := setupRouterWithLogger(t, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r
}

// setupRouterWithLogger is setupRouter with a caller supplied logger. It also
// returns the database handle so tests can break the store.
func setupRouterWithLogger(t *testing.T, logger *slog.Logger) (http.Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	gdb, err := db.OpenSQLite("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	store := sqlite.New(gdb, prom)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sessions := auth.NewManager("integration-secret", time.Hour)

	accounts := service.NewAccounts(store, sessions, logger)
	if err := accounts.EnsureAdmin(context.Background(), service.AdminSeed{
		Name:     "Admin",
		Email:    adminEmail,
		Password: adminPassword,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	board := service.NewBoard(store.Jobs(), store, cache.New(time.Minute), logger)

	return apphttp.NewRouter(apphttp.Deps{
		Log:            logger,
		Env:            "test",
		Accounts:       accounts,
		Board:          board,
		Sessions:       sessions,
		Prom:           prom,
		Gatherer:       reg,
		AuthRateLimit:  100,
		AuthRateWindow: time.Minute,
		WriteRateLimit: 100,
	}), gdb
}

// function that runs a request and returns the recorder
func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

type loginBody struct {
	Token string `json:"token"`
	User  struct {
		ID     string `json:"id"`
		Role   string `json:"role"`
		Status string `json:"status"`
	} `json:"user"`
}

func login(t *testing.T, r http.Handler, email, password string) loginBody {
	t.Helper()

	w := doRequest(r, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	expectStatus(t, w, http.StatusOK)

	var out loginBody
	mustReadJSON(t, w, &out)
	return out
}
