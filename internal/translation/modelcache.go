package translation

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// modelCache holds materialized models keyed by language pair. At most one
// Load per pair is in flight; concurrent callers for the same pair wait for
// it. Failed loads are not remembered.
type modelCache struct {
	repo   ModelRepository
	mu     sync.RWMutex
	models map[LanguagePair]Model
	group  singleflight.Group
}

func newModelCache(repo ModelRepository) *modelCache {
	return &modelCache{
		repo:   repo,
		models: make(map[LanguagePair]Model),
	}
}

func (c *modelCache) lookup(pair LanguagePair) (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[pair]
	return m, ok
}

// get returns the cached model for pair, loading it on first use.
func (c *modelCache) get(ctx context.Context, pair LanguagePair) (Model, error) {
	if m, ok := c.lookup(pair); ok {
		return m, nil
	}

	// The load outlives any single waiter, so it must not inherit the
	// first caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)

	v, err, shared := c.group.Do(flightKey(pair), func() (interface{}, error) {
		if m, ok := c.lookup(pair); ok {
			return m, nil
		}

		start := time.Now()
		m, err := c.repo.Load(loadCtx, pair)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.models[pair] = m
		c.mu.Unlock()

		slog.Info("translation model loaded", "pair", pair.String(), "duration_ms", time.Since(start).Milliseconds())
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("joined in-flight model load", "pair", pair.String())
	}
	return v.(Model), nil
}

// flightKey joins the codes with a byte no language code can contain, so
// distinct pairs never share a load.
func flightKey(pair LanguagePair) string {
	return pair.Source + "\x00" + pair.Target
}

func (c *modelCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

func (c *modelCache) pairs() []LanguagePair {
	c.mu.RLock()
	out := make([]LanguagePair, 0, len(c.models))
	for p := range c.models {
		out = append(out, p)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}
