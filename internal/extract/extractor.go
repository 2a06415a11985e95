// Package extract provides text extraction from various document formats,
// with OCR fallback for scanned and embedded content.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/synapse/internal/ocr"
	"go.uber.org/zap"
)

// Kind identifies the extraction variant for a file. New formats are added as
// new kinds with their own extract function, not as conditionals in the pipeline.
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindRichText
	KindPDF
	KindDOCX
	KindSpreadsheet
	KindSlides
	KindImage
)

// Classify selects the extraction variant from the filename extension, falling
// back to the mime hint when the extension is unknown. It is a pure function.
func Classify(filename, mimeHint string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".rst":
		return KindText
	case ".odt", ".rtf":
		return KindRichText
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".xlsx":
		return KindSpreadsheet
	case ".pptx":
		return KindSlides
	case ".png", ".jpg", ".jpeg":
		return KindImage
	}
	mime := strings.ToLower(mimeHint)
	switch {
	case strings.Contains(mime, "pdf"):
		return KindPDF
	case strings.Contains(mime, "word"):
		return KindDOCX
	case strings.Contains(mime, "spreadsheet"), strings.Contains(mime, "excel"):
		return KindSpreadsheet
	case strings.Contains(mime, "presentation"):
		return KindSlides
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "text/"):
		return KindText
	}
	return KindUnsupported
}

// Extractor extracts plain text from document bytes. The OCR engine is
// optional; without it the PDF OCR phase and embedded-image OCR are skipped
// and raw images cannot be extracted at all.
type Extractor struct {
	ocr    ocr.Engine
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOCR sets the OCR engine used for images, scanned PDF pages, and
// embedded DOCX images.
func WithOCR(engine ocr.Engine) Option {
	return func(e *Extractor) { e.ocr = engine }
}

// WithLogger sets a logger for per-file degradation events.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile reads the file at path and extracts its text.
func (e *Extractor) ExtractFile(ctx context.Context, path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return failed(fmt.Errorf("read file: %w", err))
	}
	return e.ExtractBytes(ctx, content, filepath.Base(path), "")
}

// ExtractBytes extracts text from content. The outcome is reported as a
// Result so batch callers can continue past skipped and failed files.
func (e *Extractor) ExtractBytes(ctx context.Context, content []byte, filename, mimeHint string) Result {
	switch Classify(filename, mimeHint) {
	case KindText:
		return extractPlain(content)
	case KindRichText:
		return extractRichText(content)
	case KindPDF:
		return e.extractPDF(ctx, content)
	case KindDOCX:
		return e.extractDOCX(ctx, content)
	case KindSpreadsheet:
		return extractExcel(content)
	case KindSlides:
		return extractPPTX(content)
	case KindImage:
		return e.extractImage(ctx, content)
	default:
		return skipped(fmt.Sprintf("unsupported file type %q", filepath.Ext(filename)))
	}
}

// ocrImage runs the OCR engine over one image, returning empty text when the
// engine is absent or fails. Per-image failures are logged and tolerated.
func (e *Extractor) ocrImage(ctx context.Context, data []byte, what string) string {
	if e.ocr == nil {
		return ""
	}
	text, err := e.ocr.Image(ctx, data)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("ocr failed", zap.String("target", what), zap.Error(err))
		}
		return ""
	}
	return text
}
