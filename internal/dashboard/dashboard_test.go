package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-attendance/internal/approval"
	"campus-attendance/internal/cache"
	"campus-attendance/internal/jobs"
)

type countingCounter struct {
	calls int
	err   error
}

func (c *countingCounter) Count(context.Context) (Stats, error) {
	c.calls++
	if c.err != nil {
		return Stats{}, c.err
	}
	return Stats{Departments: 1, Faculty: c.calls}, nil
}

type fixedPending map[approval.Kind]int

func (p fixedPending) PendingCount(_ context.Context, kind approval.Kind) int {
	return p[kind]
}

func TestStatsServedFromCacheUntilInvalidated(t *testing.T) {
	counter := &countingCounter{}
	svc := NewService(counter, fixedPending{approval.KindSession: 2}, cache.NewMemory(time.Minute), nil)
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if first.PendingSessionRequests != 2 || first.PendingBranchRequests != 0 {
		t.Fatalf("unexpected pending counts %+v", first)
	}
	if _, err := svc.Stats(ctx); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if counter.calls != 1 {
		t.Fatalf("expected cached read, counter called %d times", counter.calls)
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	again, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if counter.calls != 2 || again.Faculty != 2 {
		t.Fatalf("expected recompute after invalidation, calls=%d stats=%+v", counter.calls, again)
	}
}

func TestStatsCountError(t *testing.T) {
	svc := NewService(&countingCounter{err: errors.New("db down")}, nil, cache.NewMemory(time.Minute), nil)
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatalf("expected count failure to surface")
	}
}

func TestInvalidateQueuesRefresh(t *testing.T) {
	counter := &countingCounter{}
	svc := NewService(counter, nil, cache.NewMemory(time.Minute), nil)
	q := jobs.NewInMemory(1)
	svc.QueueRefresh(q)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	// A full queue only logs.
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate with full queue: %v", err)
	}

	ch, _ := q.Consume(ctx)
	job := <-ch
	if job.Kind != jobs.RefreshStats {
		t.Fatalf("unexpected job %+v", job)
	}
	if err := svc.HandleRefresh(ctx, job); err != nil {
		t.Fatalf("handle refresh: %v", err)
	}
	if _, err := svc.Stats(ctx); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if counter.calls != 1 {
		t.Fatalf("expected stats to be warm after the job, counter called %d times", counter.calls)
	}
}
