// Package ocr provides optical character recognition for images and rasterized
// PDF pages via Tesseract (requires CGO; see tesseract.go).
package ocr

import "context"

// Engine converts a rasterized page or image into plain text.
type Engine interface {
	// Image runs OCR over a single encoded image (PNG or JPEG) and returns
	// the recognized text.
	Image(ctx context.Context, data []byte) (string, error)
	Close() error
}
