package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind selects the handler for a job.
type Kind string

// RefreshStats asks a worker to recompute the cached dashboard statistics.
const RefreshStats Kind = "stats.refresh"

// DefaultKey is the Redis list holding pending jobs.
const DefaultKey = "campus:jobs"

// ErrQueueFull is returned when the in-memory buffer has no room.
var ErrQueueFull = errors.New("job queue full")

// Job is one unit of background work.
type Job struct {
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, job Job) error
	Consume(ctx context.Context) (<-chan Job, error)
}

// InMemory is a channel-backed queue for a single process.
type InMemory struct {
	ch chan Job
}

// NewInMemory returns a buffered queue holding up to size jobs.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Job, size)}
}

// Publish enqueues without blocking; callers run inside requests.
func (q *InMemory) Publish(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Consume returns a channel for workers. It closes when ctx is done.
func (q *InMemory) Consume(ctx context.Context) (<-chan Job, error) {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case job := <-q.ch:
				select {
				case out <- job:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Redis is a list-backed queue shared between the API and the worker.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis builds a queue using LPUSH/BRPOP semantics.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key}
}

func (q *Redis) Publish(ctx context.Context, job Job) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, raw).Err()
}

// Consume streams jobs using BRPOP. Undecodable entries are dropped.
func (q *Redis) Consume(ctx context.Context) (<-chan Job, error) {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !errors.Is(err, redis.Nil) {
					time.Sleep(time.Second)
				}
				continue
			}
			if len(res) != 2 {
				continue
			}
			job, err := decode(res[1])
			if err != nil {
				continue
			}
			select {
			case out <- job:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func encode(job Job) (string, error) {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	b, err := json.Marshal(job)
	return string(b), err
}

func decode(s string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(s), &job); err != nil {
		return Job{}, err
	}
	if job.Kind == "" {
		return Job{}, errors.New("job without kind")
	}
	return job, nil
}
