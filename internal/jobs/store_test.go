package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/linguagateway/internal/cache"
)

// memKV round-trips values through JSON like the Redis cache does.
type memKV struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string, dest interface{}) error {
	b, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

func TestStore_Lifecycle(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, time.Hour)
	ctx := context.Background()

	job, err := s.Create(ctx, "translation:batch")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := uuid.Parse(job.ID); err != nil {
		t.Errorf("job id should be a UUID: %q", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected queued, got %s", job.Status)
	}
	if kv.ttls[job.ID] != time.Hour {
		t.Errorf("expected ttl of one hour, got %v", kv.ttls[job.ID])
	}

	if err := s.MarkRunning(ctx, job.ID); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	got, _ := s.Get(ctx, job.ID)
	if got.Status != StatusRunning {
		t.Errorf("expected running, got %s", got.Status)
	}

	if err := s.Complete(ctx, job.ID, []string{"Hola", "Adiós"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	got, _ = s.Get(ctx, job.ID)
	if got.Status != StatusSucceeded {
		t.Errorf("expected succeeded, got %s", got.Status)
	}
	var result []string
	if err := json.Unmarshal(got.Result, &result); err != nil || len(result) != 2 || result[1] != "Adiós" {
		t.Errorf("unexpected result %s (%v)", got.Result, err)
	}
	if got.Kind != "translation:batch" {
		t.Errorf("unexpected kind %q", got.Kind)
	}
}

func TestStore_Fail(t *testing.T) {
	s := NewStore(newMemKV(), 0)
	ctx := context.Background()

	job, _ := s.Create(ctx, "speech:meeting")
	if err := s.Fail(ctx, job.ID, errors.New("decoder crashed")); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	got, _ := s.Get(ctx, job.ID)
	if got.Status != StatusFailed || got.Error != "decoder crashed" {
		t.Errorf("unexpected job %+v", got)
	}
}

func TestStore_UpdateUnknownJob(t *testing.T) {
	s := NewStore(newMemKV(), 0)
	if err := s.MarkRunning(context.Background(), uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetFromRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	s := NewStore(cache.NewCache(db, "job:"), 0)
	id := uuid.NewString()

	mock.ExpectGet("job:" + id).SetVal(`{"id":"` + id + `","kind":"speech:meeting","status":"running"}`)
	job, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if job.Status != StatusRunning {
		t.Errorf("expected running, got %s", job.Status)
	}

	mock.ExpectGet("job:" + id).RedisNil()
	if _, err := s.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStore_GetRejectsMalformedID(t *testing.T) {
	s := NewStore(newMemKV(), 0)
	if _, err := s.Get(context.Background(), "../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
