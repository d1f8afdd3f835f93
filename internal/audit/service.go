// Package audit records translation activity in Postgres.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

const writeTimeout = 2 * time.Second

// DB is the subset of *pgxpool.Pool used by the audit log.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Service struct {
	db DB
}

func NewService(db DB) *Service {
	return &Service{db: db}
}

type LogEntry struct {
	Operation  string
	Source     string
	Target     string
	Items      int
	Characters int
	Latency    time.Duration
	Err        error
}

func (s *Service) Log(ctx context.Context, entry LogEntry) error {
	var errText *string
	if entry.Err != nil {
		msg := entry.Err.Error()
		errText = &msg
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO translation_logs (operation, source_language, target_language, items, characters, latency_ms, success, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.Operation, entry.Source, entry.Target, entry.Items, entry.Characters,
		entry.Latency.Milliseconds(), entry.Err == nil, errText,
	)
	if err != nil {
		return fmt.Errorf("insert translation log: %w", err)
	}
	return nil
}

type PairSummary struct {
	Source       string  `json:"source_language"`
	Target       string  `json:"target_language"`
	Requests     int     `json:"requests"`
	Failures     int     `json:"failures"`
	Characters   int64   `json:"characters"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Summary aggregates translate calls per language pair since the given time.
func (s *Service) Summary(ctx context.Context, since time.Time) ([]PairSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT source_language, target_language, COUNT(*),
		        COUNT(*) FILTER (WHERE NOT success),
		        COALESCE(SUM(characters), 0),
		        COALESCE(AVG(latency_ms), 0)
		 FROM translation_logs
		 WHERE created_at >= $1 AND operation <> 'detect'
		 GROUP BY source_language, target_language
		 ORDER BY COUNT(*) DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query translation summary: %w", err)
	}
	defer rows.Close()

	var out []PairSummary
	for rows.Next() {
		var p PairSummary
		if err := rows.Scan(&p.Source, &p.Target, &p.Requests, &p.Failures, &p.Characters, &p.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan translation summary: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Handler records every call made through the wrapped translation handler.
// Write failures are logged and never returned to the caller.
type Handler struct {
	next translation.Handler
	svc  *Service
}

func NewHandler(next translation.Handler, svc *Service) *Handler {
	return &Handler{next: next, svc: svc}
}

func (h *Handler) Translate(ctx context.Context, text, target, source string) (translation.TranslationOutcome, error) {
	start := time.Now()
	res, err := h.next.Translate(ctx, text, target, source)
	if source == "" {
		source = res.DetectedLanguage
	}
	h.record(ctx, LogEntry{
		Operation:  "translate",
		Source:     source,
		Target:     target,
		Items:      1,
		Characters: utf8.RuneCountInString(text),
		Latency:    time.Since(start),
		Err:        err,
	})
	return res, err
}

func (h *Handler) BatchTranslate(ctx context.Context, texts []string, target, source string) ([]translation.TranslationOutcome, error) {
	start := time.Now()
	res, err := h.next.BatchTranslate(ctx, texts, target, source)
	if source == "" && len(res) > 0 {
		source = res[0].DetectedLanguage
	}
	chars := 0
	for _, t := range texts {
		chars += utf8.RuneCountInString(t)
	}
	h.record(ctx, LogEntry{
		Operation:  "batch",
		Source:     source,
		Target:     target,
		Items:      len(texts),
		Characters: chars,
		Latency:    time.Since(start),
		Err:        err,
	})
	return res, err
}

func (h *Handler) DetectLanguage(ctx context.Context, text string) (translation.DetectionOutcome, error) {
	start := time.Now()
	res, err := h.next.DetectLanguage(ctx, text)
	h.record(ctx, LogEntry{
		Operation:  "detect",
		Source:     res.DetectedLanguage,
		Items:      1,
		Characters: utf8.RuneCountInString(text),
		Latency:    time.Since(start),
		Err:        err,
	})
	return res, err
}

func (h *Handler) record(ctx context.Context, entry LogEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := h.svc.Log(ctx, entry); err != nil {
		slog.Warn("failed to write translation log", "operation", entry.Operation, "error", err)
	}
}

var _ translation.Handler = (*Handler)(nil)
