package extract

import (
	"context"
	"errors"
)

// ErrOCRUnavailable is returned for raw image uploads when no OCR engine is
// configured: unlike the PDF and DOCX OCR phases, there is no other way to
// get text out of an image, so the absence is surfaced to the caller.
var ErrOCRUnavailable = errors.New("ocr engine not configured")

// extractImage OCRs the entire image as a single text blob.
func (e *Extractor) extractImage(ctx context.Context, content []byte) Result {
	if e.ocr == nil {
		return failed(ErrOCRUnavailable)
	}
	text, err := e.ocr.Image(ctx, content)
	if err != nil {
		return failed(err)
	}
	return extracted(text)
}
