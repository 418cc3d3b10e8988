package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/jobboard/internal/auth"
	"github.com/geocoder89/jobboard/internal/cache"
	"github.com/geocoder89/jobboard/internal/config"
	"github.com/geocoder89/jobboard/internal/db"
	httpx "github.com/geocoder89/jobboard/internal/http"
	"github.com/geocoder89/jobboard/internal/http/handlers"
	"github.com/geocoder89/jobboard/internal/http/middlewares"
	"github.com/geocoder89/jobboard/internal/observability"
	"github.com/geocoder89/jobboard/internal/redisclient"
	"github.com/geocoder89/jobboard/internal/repo/postgres"
	"github.com/geocoder89/jobboard/internal/repo/sqlite"
	"github.com/geocoder89/jobboard/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type stores struct {
	users service.UserStore
	jobs  service.JobStore
	ping  handlers.Pinger
	close func()
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	st, err := openStores(ctx, cfg, prom)
	if err != nil {
		log.Error("database init failed", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	ready := []handlers.Pinger{st.ping}

	var counter middlewares.Counter
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		counter = rdb
		ready = append(ready, handlers.Pinger{Name: "redis", Ping: rdb.Ping})
	}

	sessions := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	accounts := service.NewAccounts(st.users, sessions, log)
	board := service.NewBoard(st.jobs, st.users, cache.New(cfg.JobsCacheTTL), log)

	seedCtx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	err = accounts.EnsureAdmin(seedCtx, service.AdminSeed{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	cancel()
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// set up routers
	router := httpx.NewRouter(httpx.Deps{
		Log:            log,
		Env:            cfg.Env,
		Accounts:       accounts,
		Board:          board,
		Sessions:       sessions,
		Prom:           prom,
		Gatherer:       reg,
		RateCounter:    counter,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
		WriteRateLimit: cfg.WriteRateLimit,
		CORSOrigins:    cfg.CORSOrigins,
		SecureCookie:   cfg.IsProd(),
		Ready:          ready,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "db", cfg.DBDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom) (stores, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return stores{}, err
		}

		store := sqlite.New(gdb, prom)
		if err := store.Migrate(); err != nil {
			return stores{}, err
		}

		sqlDB, err := gdb.DB()
		if err != nil {
			return stores{}, err
		}

		return stores{
			users: store,
			jobs:  store.Jobs(),
			ping:  handlers.Pinger{Name: "db", Ping: sqlDB.PingContext},
			close: func() { _ = sqlDB.Close() },
		}, nil

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL, 10)
		if err != nil {
			return stores{}, err
		}

		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := postgres.EnsureSchema(schemaCtx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}

		return stores{
			users: postgres.NewUsersRepo(pool, prom),
			jobs:  postgres.NewJobsRepo(pool, prom),
			ping:  handlers.Pinger{Name: "db", Ping: pool.Ping},
			close: pool.Close,
		}, nil
	}
}
