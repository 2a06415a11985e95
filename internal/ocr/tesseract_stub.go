//go:build !cgo
// +build !cgo

package ocr

import (
	"context"
	"errors"
)

// Tesseract stub type when built without CGO (see tesseract.go for the real implementation).
type Tesseract struct{}

// NewTesseract returns an error when built without CGO (Tesseract not available).
func NewTesseract(_ ...string) (*Tesseract, error) {
	return nil, errors.New("tesseract OCR requires CGO; build with CGO_ENABLED=1 and libtesseract")
}

func (t *Tesseract) Image(_ context.Context, _ []byte) (string, error) {
	return "", errors.New("tesseract OCR not available in this build")
}

func (t *Tesseract) Close() error { return nil }
