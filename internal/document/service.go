// Package document translates uploaded files paragraph by paragraph.
package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
	"github.com/nikhilbhutani/linguagateway/pkg/chunker"
	"github.com/nikhilbhutani/linguagateway/pkg/textextract"
)

const (
	// detectionSample bounds how much text is sent to the detector.
	detectionSample = 1000
	// maxSegment bounds the runes sent to the model in one item.
	maxSegment = 1000
)

var imageTypes = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}

type Request struct {
	Filename string
	FileType string // extension or MIME type
	Data     []byte
	Target   string
	Source   string // empty means detect
}

type Result struct {
	Filename       string   `json:"filename"`
	FileType       string   `json:"file_type"`
	Pages          int      `json:"pages"`
	Paragraphs     int      `json:"paragraphs"`
	Characters     int      `json:"characters"`
	SourceLanguage string   `json:"source_language"`
	TargetLanguage string   `json:"target_language"`
	Translated     []string `json:"translated_paragraphs"`
	TranslatedText string   `json:"translated_text"`
	DurationMs     int64    `json:"duration_ms"`
}

type Service struct {
	handler translation.Handler
	ocr     *OCRService
}

// NewService returns a document translator. ocr may be nil, in which case
// image uploads are rejected.
func NewService(handler translation.Handler, ocr *OCRService) *Service {
	return &Service{handler: handler, ocr: ocr}
}

func (s *Service) SupportedTypes() []string {
	types := textextract.SupportedTypes()
	if s.ocr != nil {
		types = append(types, imageTypes...)
	}
	return types
}

// Translate extracts the document text, detects its language once when no
// source is given, and translates each paragraph with the same pair.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	fileType := textextract.NormalizeType(req.FileType)

	extracted, err := s.extract(ctx, fileType, req)
	if err != nil {
		return nil, err
	}

	paragraphs := extracted.Paragraphs()
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("document %q has no text: %w", req.Filename, translation.ErrEmptyText)
	}

	source := req.Source
	if source == "" {
		sample := strings.Join(paragraphs, "\n")
		if len(sample) > detectionSample {
			sample = strings.ToValidUTF8(sample[:detectionSample], "")
		}
		det, err := s.handler.DetectLanguage(ctx, sample)
		if err != nil {
			return nil, err
		}
		source = det.DetectedLanguage
	}

	// Long paragraphs go to the model in pieces; owner maps each piece back.
	var segments []string
	var owner []int
	chars := 0
	for i, p := range paragraphs {
		chars += utf8.RuneCountInString(p)
		for _, piece := range chunker.Split(p, maxSegment) {
			segments = append(segments, piece)
			owner = append(owner, i)
		}
	}

	outcomes, err := s.handler.BatchTranslate(ctx, segments, req.Target, source)
	if err != nil {
		return nil, err
	}

	parts := make([][]string, len(paragraphs))
	for i, o := range outcomes {
		parts[owner[i]] = append(parts[owner[i]], o.TranslatedText)
	}
	translated := make([]string, len(paragraphs))
	for i, p := range parts {
		translated[i] = strings.Join(p, " ")
	}

	slog.Info("document translated",
		"filename", req.Filename,
		"type", fileType,
		"paragraphs", len(paragraphs),
		"segments", len(segments),
		"pair", translation.LanguagePair{Source: source, Target: req.Target}.String(),
	)

	return &Result{
		Filename:       req.Filename,
		FileType:       fileType,
		Pages:          extracted.Pages,
		Paragraphs:     len(paragraphs),
		Characters:     chars,
		SourceLanguage: source,
		TargetLanguage: req.Target,
		Translated:     translated,
		TranslatedText: strings.Join(translated, "\n\n"),
		DurationMs:     time.Since(start).Milliseconds(),
	}, nil
}

func (s *Service) extract(ctx context.Context, fileType string, req Request) (*textextract.ExtractedText, error) {
	if slices.Contains(imageTypes, fileType) {
		if s.ocr == nil || !s.ocr.IsAvailable() {
			return nil, fmt.Errorf("%w: %s (OCR unavailable)", textextract.ErrUnsupportedType, fileType)
		}
		text, err := s.ocr.ExtractText(ctx, req.Data, fileType, req.Source)
		if err != nil {
			return nil, err
		}
		return &textextract.ExtractedText{
			Content:  text,
			Pages:    1,
			Metadata: map[string]string{"type": "image"},
		}, nil
	}

	return textextract.Extract(bytes.NewReader(req.Data), int64(len(req.Data)), fileType)
}
