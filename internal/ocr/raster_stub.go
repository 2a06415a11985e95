//go:build !cgo
// +build !cgo

package ocr

import "errors"

// RasterPDF returns an error when built without CGO (MuPDF not available).
// Callers treat this as "no pages rasterized" and fall back to the text layer.
func RasterPDF(_ []byte) ([][]byte, error) {
	return nil, errors.New("PDF rasterization requires CGO; build with CGO_ENABLED=1 and mupdf")
}
