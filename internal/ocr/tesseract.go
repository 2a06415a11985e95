//go:build cgo
// +build cgo

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is an Engine backed by the Tesseract library via gosseract.
type Tesseract struct {
	languages []string
}

// NewTesseract creates a Tesseract engine for the given languages (e.g. "eng").
// The language configuration is validated against the installed traineddata so
// a broken installation surfaces at construction time, not on the first request.
func NewTesseract(languages ...string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(languages...); err != nil {
		return nil, fmt.Errorf("set tesseract language: %w", err)
	}
	return &Tesseract{languages: languages}, nil
}

// Image implements Engine. A fresh client is used per call: gosseract clients
// are not safe for concurrent use and requests may be served concurrently.
func (t *Tesseract) Image(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close implements Engine. Clients are per-call, so there is nothing to release.
func (t *Tesseract) Close() error { return nil }
