package dashboard

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/approval"
	"campus-attendance/internal/cache"
	"campus-attendance/internal/jobs"
	"campus-attendance/internal/metrics"
)

// StatsKey is the cache key holding the dashboard statistics.
const StatsKey = "dashboard:stats"

type Stats struct {
	Departments            int       `json:"departments"`
	Branches               int       `json:"branches"`
	Faculty                int       `json:"faculty"`
	Students               int       `json:"students"`
	Subjects               int       `json:"subjects"`
	AttendanceSheets       int       `json:"attendanceSheets"`
	PendingSessionRequests int       `json:"pendingSessionRequests"`
	PendingBranchRequests  int       `json:"pendingBranchRequests"`
	GeneratedAt            time.Time `json:"generatedAt"`
}

type Counter interface {
	Count(ctx context.Context) (Stats, error)
}

type PendingCounter interface {
	PendingCount(ctx context.Context, kind approval.Kind) int
}

// Repository counts rows in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository counts rows for the dashboard.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Count(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM departments),
			(SELECT COUNT(*) FROM branches),
			(SELECT COUNT(*) FROM faculty),
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM attendance_sheets)
	`).Scan(&s.Departments, &s.Branches, &s.Faculty, &s.Students, &s.Subjects, &s.AttendanceSheets)
	return s, err
}

// Service serves dashboard statistics through the cache.
type Service struct {
	counter Counter
	pending PendingCounter
	cache   cache.Cache
	log     *zap.Logger
	now     func() time.Time
	jobs    Publisher
}

// Publisher enqueues background jobs.
type Publisher interface {
	Publish(ctx context.Context, job jobs.Job) error
}

// NewService caches dashboard stats in c.
func NewService(counter Counter, pending PendingCounter, c cache.Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{counter: counter, pending: pending, cache: c, log: log, now: time.Now}
}

// Stats returns cached statistics, computing and caching them on a miss. Cache failures
// fall through to the database.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var cached Stats
	hit, err := s.cache.Get(ctx, StatsKey, &cached)
	if err != nil {
		s.log.Warn("read stats cache", zap.Error(err))
	}
	if hit && err == nil {
		metrics.StatsCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.StatsCache.WithLabelValues("miss").Inc()
	return s.Refresh(ctx)
}

// Refresh recomputes the statistics and stores them in the cache.
func (s *Service) Refresh(ctx context.Context) (Stats, error) {
	stats, err := s.counter.Count(ctx)
	if err != nil {
		return Stats{}, apperror.Internal(err, "count dashboard stats")
	}
	if s.pending != nil {
		stats.PendingSessionRequests = s.pending.PendingCount(ctx, approval.KindSession)
		stats.PendingBranchRequests = s.pending.PendingCount(ctx, approval.KindBranch)
	}
	stats.GeneratedAt = s.now().UTC()

	if err := s.cache.Set(ctx, StatsKey, stats); err != nil {
		s.log.Warn("write stats cache", zap.Error(err))
	}
	return stats, nil
}

// QueueRefresh makes Invalidate also enqueue a recompute job for a worker.
func (s *Service) QueueRefresh(p Publisher) {
	s.jobs = p
}

// Invalidate drops the cached statistics so the next read recomputes them.
// A failed enqueue is logged and does not fail the call.
func (s *Service) Invalidate(ctx context.Context) error {
	metrics.StatsCache.WithLabelValues("invalidate").Inc()
	if err := s.cache.Invalidate(ctx, StatsKey); err != nil {
		return err
	}
	if s.jobs != nil {
		if err := s.jobs.Publish(ctx, jobs.Job{Kind: jobs.RefreshStats, EnqueuedAt: s.now().UTC()}); err != nil {
			s.log.Warn("enqueue stats refresh", zap.Error(err))
		}
	}
	return nil
}

// HandleRefresh is the job handler for jobs.RefreshStats.
func (s *Service) HandleRefresh(ctx context.Context, _ jobs.Job) error {
	_, err := s.Refresh(ctx)
	return err
}
