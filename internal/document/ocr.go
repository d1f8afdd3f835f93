package document

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// tesseractLangs maps ISO 639-1 codes to tesseract traineddata names.
var tesseractLangs = map[string]string{
	"en": "eng",
	"es": "spa",
	"fr": "fra",
	"de": "deu",
	"it": "ita",
	"pt": "por",
	"ru": "rus",
	"zh": "chi_sim",
	"ja": "jpn",
	"ko": "kor",
	"ar": "ara",
	"hi": "hin",
}

// OCRService reads text from images with the tesseract CLI.
type OCRService struct {
	tesseractPath string
}

func NewOCRService(tesseractPath string) *OCRService {
	if tesseractPath == "" {
		tesseractPath, _ = exec.LookPath("tesseract")
	}
	if tesseractPath == "" {
		tesseractPath = "tesseract"
	}
	return &OCRService{tesseractPath: tesseractPath}
}

func (o *OCRService) IsAvailable() bool {
	cmd := exec.Command(o.tesseractPath, "--version")
	return cmd.Run() == nil
}

// ExtractText runs OCR over image bytes. lang is an ISO 639-1 hint; unknown
// or empty hints use English.
func (o *OCRService) ExtractText(ctx context.Context, image []byte, ext, lang string) (string, error) {
	f, err := os.CreateTemp("", "ocr-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(image); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}

	cmd := exec.CommandContext(ctx, o.tesseractPath, f.Name(), "stdout", "-l", tesseractLang(lang))
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

func tesseractLang(lang string) string {
	if l, ok := tesseractLangs[lang]; ok {
		return l
	}
	return "eng"
}
