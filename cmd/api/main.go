package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/geocoder89/eventmanager/internal/auth"
	"github.com/geocoder89/eventmanager/internal/config"
	"github.com/geocoder89/eventmanager/internal/db"
	httpx "github.com/geocoder89/eventmanager/internal/http"
	"github.com/geocoder89/eventmanager/internal/http/handlers"
	"github.com/geocoder89/eventmanager/internal/notifications"
	"github.com/geocoder89/eventmanager/internal/observability"
	"github.com/geocoder89/eventmanager/internal/redisclient"
	"github.com/geocoder89/eventmanager/internal/repo"
	"github.com/geocoder89/eventmanager/internal/repo/postgres"
	"github.com/geocoder89/eventmanager/internal/repo/sqlite"
	"github.com/geocoder89/eventmanager/internal/service"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	startCtx, cancelStart := config.WithTimeout(15 * time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.TracerConfig{
		ServiceName: cfg.Otel.ServiceName,
		Version:     version,
		Env:         cfg.Env,
		Endpoint:    cfg.Otel.Endpoint,
		SampleRatio: cfg.Otel.SampleRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	stores, err := openStores(startCtx, cfg, prom, log)
	if err != nil {
		log.Error("store init failed", "driver", cfg.DB.Driver, "err", err)
		os.Exit(1)
	}
	defer stores.Close()

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(startCtx); err != nil {
		log.Warn("redis not reachable at startup", "addr", cfg.Redis.Addr, "err", err)
	}

	notifier, err := buildNotifier(cfg, log, prom)
	if err != nil {
		log.Error("notifier init failed", "backend", cfg.Email.Backend, "err", err)
		os.Exit(1)
	}

	jwtManager := auth.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	workflow := service.NewRegistrationService(stores.Registrations, notifier, log,
		service.WithMetrics(prom),
		service.WithTracer(otel.Tracer("github.com/geocoder89/eventmanager/internal/service")),
	)

	router := httpx.NewRouter(httpx.Options{
		Env:            cfg.Env,
		ServiceName:    cfg.Otel.ServiceName,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	}, httpx.Deps{
		Log:      log,
		Prom:     prom,
		Gatherer: reg,
		Tokens:   jwtManager,
		Health: handlers.NewHealthHandler(version,
			handlers.Check{Name: "db", Ping: stores.Ping},
			handlers.Check{Name: "redis", Ping: rdb.Ping},
		),
		Users:    handlers.NewUsersHandler(stores.Users, jwtManager, auth.NewRefreshStore(rdb.Raw()), log),
		Events:   handlers.NewEventsHandler(stores.Events, workflow),
		Register: handlers.NewRegistrationHandler(workflow, stores.Events, stores.Users),
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

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DB.Driver, "version", version)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

		ctx, cancel := config.WithTimeout(10 * time.Second)
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

// openStores picks the backend named by DB_DRIVER. SQLite databases are
// migrated on open; postgres schemas are managed with cmd/migrate.
func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (repo.Stores, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		bdb, err := db.OpenSQLite(ctx, cfg.DB.DSN())
		if err != nil {
			return repo.Stores{}, err
		}
		if err := db.MigrateSQLite(bdb.DB, db.Up); err != nil {
			_ = bdb.Close()
			return repo.Stores{}, err
		}
		log.Info("sqlite ready", "path", cfg.DB.SQLitePath)
		return sqlite.NewStores(bdb, prom), nil

	default:
		pool, err := db.NewPool(ctx, cfg.DB.DSN(), cfg.DB.MaxConns)
		if err != nil {
			return repo.Stores{}, err
		}
		return postgres.NewStores(pool, prom), nil
	}
}

func buildNotifier(cfg config.Config, log *slog.Logger, prom *observability.Prom) (notifications.Notifier, error) {
	var inner notifications.Notifier

	switch cfg.Email.Backend {
	case config.EmailSMTP:
		smtp, err := notifications.NewSMTPNotifier(notifications.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.User,
			Password: cfg.Email.Password,
			UseTLS:   cfg.Email.UseTLS,
			From:     cfg.Email.From,
			Timeout:  cfg.Notify.Timeout,
		})
		if err != nil {
			return nil, err
		}
		inner = smtp
	default:
		inner = notifications.NewLogNotifier(log)
	}

	return notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout:          cfg.Notify.Timeout,
		FailureThreshold: cfg.Notify.FailureThreshold,
		Cooldown:         cfg.Notify.Cooldown,
	}, prom), nil
}
