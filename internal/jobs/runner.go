package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Handler processes one job.
type Handler func(ctx context.Context, job Job) error

// Run dispatches jobs to handlers by kind until ctx is done or the queue closes.
// Handler errors are logged; jobs of unknown kinds are skipped.
func Run(ctx context.Context, q Queue, handlers map[Kind]Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	jobs, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for job := range jobs {
		handle, ok := handlers[job.Kind]
		if !ok {
			log.Warn("no handler for job", zap.String("kind", string(job.Kind)))
			continue
		}
		start := time.Now()
		if err := handle(ctx, job); err != nil {
			log.Error("job failed", zap.String("kind", string(job.Kind)), zap.Error(err))
			continue
		}
		log.Debug("job done", zap.String("kind", string(job.Kind)), zap.Duration("took", time.Since(start)))
	}
	return ctx.Err()
}
