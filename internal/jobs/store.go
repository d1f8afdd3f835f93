// Package jobs tracks asynchronous translation and transcription jobs in
// Redis so clients can poll for results.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/linguagateway/internal/cache"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// DefaultTTL is how long finished and pending job records are kept.
const DefaultTTL = 24 * time.Hour

var ErrNotFound = errors.New("job not found")

type Job struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// KV is the key-value subset of cache.Cache used for job records.
type KV interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Store struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

func NewStore(kv KV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{kv: kv, ttl: ttl, now: time.Now}
}

// Create records a new queued job of kind.
func (s *Store) Create(ctx context.Context, kind string) (*Job, error) {
	now := s.now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.kv.Set(ctx, job.ID, job, s.ttl); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var job Job
	if err := s.kv.Get(ctx, id, &job); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusRunning
		j.Error = ""
	})
}

// Complete stores result as the job's JSON result.
func (s *Store) Complete(ctx context.Context, id string, result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal job result: %w", err)
	}
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusSucceeded
		j.Result = data
		j.Error = ""
	})
}

func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	return s.update(ctx, id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = cause.Error()
	})
}

func (s *Store) update(ctx context.Context, id string, fn func(*Job)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(job)
	job.UpdatedAt = s.now().UTC()
	if err := s.kv.Set(ctx, id, job, s.ttl); err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	return nil
}
