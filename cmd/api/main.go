package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coaching-platform/internal/auth"
	"coaching-platform/internal/calls"
	"coaching-platform/internal/coaching"
	"coaching-platform/internal/config"
	"coaching-platform/internal/notify"
	"coaching-platform/internal/reporting"
	"coaching-platform/internal/schedule"
	"coaching-platform/internal/scheduler"
	"coaching-platform/internal/session"
	"coaching-platform/internal/users"
	"coaching-platform/internal/vapi"
	"coaching-platform/internal/webhook"
	"coaching-platform/pkg/logger"
	"coaching-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local convenience; silently absent in deployed environments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New("coaching-api", cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	events, err := notify.Dial(cfg.AMQP.URL, log)
	if err != nil {
		// Event publishing is best effort; the API runs without it.
		log.Warn("amqp connect failed, events disabled", "err", err)
		events = nil
	}
	defer func() { _ = events.Close() }()

	// Stores and services
	userStore := users.NewPostgresStore(db)
	scheduleStore := schedule.NewPostgresStore(db)
	sessionStore := session.NewPostgresStore(db)
	callStore := calls.NewPostgresStore(db)
	coachingStore := coaching.NewPostgresStore(db)

	scheduleSvc := schedule.NewService(scheduleStore)
	userSvc := users.NewService(userStore, scheduleSvc)
	sessionSvc := session.NewService(sessionStore)
	coachingSvc := coaching.NewService(coachingStore)
	reportSvc := reporting.NewService(reporting.NewPostgresRepo(db))

	vapiClient := vapi.NewClient(cfg.Vapi.APIKey, cfg.Vapi.BaseURL)
	trigger := vapi.NewTrigger(sessionSvc, callStore, vapiClient, cfg.Vapi, log)

	reconciler := webhook.NewReconciler(sessionSvc, userStore, callStore, coachingSvc, events, log)

	// Hourly scheduling pass, single-flighted through Redis.
	job := scheduler.NewJob(userStore, scheduleStore, sessionStore, events, rdb, cfg.Scheduler, log)
	go job.Run(rootCtx)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, deps{
		auth:       authManager,
		users:      userSvc,
		schedules:  scheduleSvc,
		sessions:   sessionSvc,
		records:    callStore,
		coaching:   coachingSvc,
		reports:    reportSvc,
		trigger:    trigger,
		reconciler: reconciler,
		log:        log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
