//go:build cgo
// +build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// RasterPDF renders each page of a PDF to a PNG image suitable for OCR.
// A page that fails to render is omitted; rendering only fails as a whole
// when the document cannot be opened at all.
func RasterPDF(content []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("open PDF for rasterization: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.Image(i)
		if err != nil {
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			continue
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}
