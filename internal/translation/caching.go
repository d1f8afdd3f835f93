package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/linguagateway/internal/cache"
)

// ResultStore is the subset of cache.Cache used for translation results.
type ResultStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachingHandler memoizes translations whose source language is explicit.
// Cache failures are logged and never fail the request.
type CachingHandler struct {
	next  Handler
	store ResultStore
	ttl   time.Duration
}

func NewCachingHandler(next Handler, store ResultStore, ttl time.Duration) *CachingHandler {
	return &CachingHandler{next: next, store: store, ttl: ttl}
}

// ResultKey is the cache key for a translation of text from source to target.
func ResultKey(text, target, source string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + target + "\x00" + text))
	return "translation:" + hex.EncodeToString(sum[:])
}

func (h *CachingHandler) Translate(ctx context.Context, text, target, source string) (TranslationOutcome, error) {
	if source == "" || source == target {
		return h.next.Translate(ctx, text, target, source)
	}

	key := ResultKey(text, target, source)
	var cached TranslationOutcome
	err := h.store.Get(ctx, key, &cached)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, cache.ErrMiss):
		slog.Warn("translation cache read failed", "error", err)
	}

	res, err := h.next.Translate(ctx, text, target, source)
	if err != nil {
		return res, err
	}

	if err := h.store.Set(ctx, key, res, h.ttl); err != nil {
		slog.Warn("translation cache write failed", "error", err)
	}
	return res, nil
}

func (h *CachingHandler) BatchTranslate(ctx context.Context, texts []string, target, source string) ([]TranslationOutcome, error) {
	out := make([]TranslationOutcome, 0, len(texts))
	for i, text := range texts {
		res, err := h.Translate(ctx, text, target, source)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (h *CachingHandler) DetectLanguage(ctx context.Context, text string) (DetectionOutcome, error) {
	return h.next.DetectLanguage(ctx, text)
}

var _ Handler = (*CachingHandler)(nil)
