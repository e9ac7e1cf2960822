package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-attendance/internal/approval"
	"campus-attendance/internal/attendance"
	"campus-attendance/internal/auth"
	"campus-attendance/internal/cache"
	"campus-attendance/internal/config"
	"campus-attendance/internal/dashboard"
	"campus-attendance/internal/department"
	"campus-attendance/internal/faculty"
	"campus-attendance/internal/httpapi"
	"campus-attendance/internal/httpmiddleware"
	"campus-attendance/internal/institute"
	"campus-attendance/internal/jobs"
	"campus-attendance/internal/logging"
	"campus-attendance/internal/store"
	"campus-attendance/internal/student"
	"campus-attendance/internal/subject"
	"campus-attendance/internal/timetable"
)

const cachePrefix = "campus:"

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings() {
		logger.Warn("inconsistent backend config", zap.String("detail", w))
	}

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := store.Migrate(ctx, db.Client); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var statsCache cache.Cache
	if cfg.CacheBackend == "memory" {
		statsCache = cache.NewMemory(cfg.StatsTTL)
	} else {
		statsCache = cache.NewRedis(redisClient.Client, cachePrefix, cfg.StatsTTL)
	}

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	departments := department.NewService(department.NewRepository(db.Client))
	faculties := faculty.NewService(faculty.NewRepository(db.Client), departments, cfg.BcryptCost, logger.Named("faculty"))
	subjects := subject.NewService(subject.NewRepository(db.Client), departments)
	students := student.NewService(student.NewRepository(db.Client))

	// Timetable slots feed the attendance schedule report, and timetable updates provision sheets.
	ttRepo := timetable.NewRepository(db.Client)
	att := attendance.NewService(attendance.NewRepository(db.Client), subjects, ttRepo, logger.Named("attendance"))
	timetables := timetable.NewService(ttRepo, att, logger.Named("timetable"))

	approvals := approval.NewService(approval.NewRepository(db.Client), departments, logger.Named("approval"))
	settings := institute.NewService(institute.NewRepository(db.Client))
	stats := dashboard.NewService(dashboard.NewRepository(db.Client), approvals, statsCache, logger.Named("dashboard"))

	// With the memory queue nothing outside this process can consume, so refresh jobs run here.
	if cfg.QueueBackend == "memory" {
		q := jobs.NewInMemory(64)
		stats.QueueRefresh(q)
		go func() {
			_ = jobs.Run(ctx, q, map[jobs.Kind]jobs.Handler{jobs.RefreshStats: stats.HandleRefresh}, logger.Named("jobs"))
		}()
	} else {
		stats.QueueRefresh(jobs.NewRedis(redisClient.Client, jobs.DefaultKey))
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := faculties.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Log:        logger,
		Production: cfg.Production(),
		Issuer: auth.Issuer{
			Name:       cfg.JWTIssuer,
			Key:        []byte(cfg.JWTSigningKey),
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		},
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Health: map[string]httpapi.HealthCheck{
			"postgres": db.Healthy,
			"redis":    redisClient.Healthy,
		},
		Departments: departments,
		Faculty:     faculties,
		Subjects:    subjects,
		Students:    students,
		Timetables:  timetables,
		Attendance:  att,
		Approvals:   approvals,
		Institute:   settings,
		Dashboard:   stats,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
