package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestInMemoryPublishFailsWhenFull(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	if err := q.Publish(ctx, Job{Kind: RefreshStats}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := q.Publish(ctx, Job{Kind: RefreshStats}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestRunDispatchesByKind(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan Job, 4)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, q, map[Kind]Handler{
			RefreshStats: func(_ context.Context, job Job) error {
				handled <- job
				return nil
			},
		}, zap.NewNop())
	}()

	_ = q.Publish(ctx, Job{Kind: "unknown"})
	_ = q.Publish(ctx, Job{Kind: RefreshStats, Payload: json.RawMessage(`{"reason":"write"}`)})

	select {
	case job := <-handled:
		if string(job.Payload) != `{"reason":"write"}` {
			t.Fatalf("unexpected payload %s", job.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("job was not handled")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
}

func TestEncodeDecode(t *testing.T) {
	raw, err := encode(Job{Kind: RefreshStats})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	job, err := decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Kind != RefreshStats || job.EnqueuedAt.IsZero() {
		t.Fatalf("unexpected job %+v", job)
	}
	if _, err := decode(`{"payload":{}}`); err == nil {
		t.Fatalf("expected error for job without kind")
	}
	if _, err := decode("checkin|abc"); err == nil {
		t.Fatalf("expected error for non-json entry")
	}
}
