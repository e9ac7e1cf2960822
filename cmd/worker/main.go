package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"campus-attendance/internal/approval"
	"campus-attendance/internal/cache"
	"campus-attendance/internal/config"
	"campus-attendance/internal/dashboard"
	"campus-attendance/internal/jobs"
	"campus-attendance/internal/logging"
	"campus-attendance/internal/store"
)

// Worker recomputes dashboard statistics on a schedule and whenever the API queues a refresh.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings() {
		logger.Warn("inconsistent backend config", zap.String("detail", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		logger.Warn("redis not reachable, refreshed stats will not be shared")
	}

	approvals := approval.NewService(approval.NewRepository(db.Client), nil, logger.Named("approval"))
	stats := dashboard.NewService(
		dashboard.NewRepository(db.Client),
		approvals,
		cache.NewRedis(redisClient.Client, "campus:", cfg.StatsTTL),
		logger.Named("dashboard"),
	)

	refresh := func() {
		s, err := stats.Refresh(ctx)
		if err != nil {
			logger.Error("refresh dashboard stats", zap.Error(err))
			return
		}
		logger.Info("dashboard stats refreshed",
			zap.Int("departments", s.Departments),
			zap.Int("students", s.Students),
			zap.Int("attendance_sheets", s.AttendanceSheets))
	}

	sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := sched.AddFunc(cfg.StatsRefreshSpec, refresh); err != nil {
		logger.Fatal("invalid refresh schedule", zap.String("spec", cfg.StatsRefreshSpec), zap.Error(err))
	}

	refresh()
	sched.Start()
	logger.Info("worker started", zap.String("spec", cfg.StatsRefreshSpec))

	q := jobs.NewRedis(redisClient.Client, jobs.DefaultKey)
	err = jobs.Run(ctx, q, map[jobs.Kind]jobs.Handler{
		jobs.RefreshStats: func(context.Context, jobs.Job) error {
			refresh()
			return nil
		},
	}, logger.Named("jobs"))
	if err != nil && ctx.Err() == nil {
		logger.Error("job runner stopped", zap.Error(err))
	}
	logger.Info("shutdown signal received")
	<-sched.Stop().Done()
	logger.Info("worker stopped")
}
