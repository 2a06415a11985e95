package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/synapse/internal/ocr"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// extractPDF runs two independent phases: direct text-layer extraction page by
// page, then OCR over a rasterized rendering of each page. Both outputs are
// concatenated (text layer first) because direct and scanned content may be
// complementary, e.g. native text plus a scanned signature page. A page that
// yields nothing from either phase contributes nothing; the document only
// fails when neither phase can open it.
func (e *Extractor) extractPDF(ctx context.Context, content []byte) Result {
	var parts []string

	layer, layerErr := pdfTextLayer(content)
	if layerErr != nil {
		if e.logger != nil {
			e.logger.Warn("pdf text layer unavailable", zap.Error(layerErr))
		}
	} else if layer != "" {
		parts = append(parts, layer)
	}

	if e.ocr != nil {
		pages, err := ocr.RasterPDF(content)
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("pdf rasterization failed", zap.Error(err))
			}
		}
		for i, page := range pages {
			text := e.ocrImage(ctx, page, fmt.Sprintf("pdf page %d", i+1))
			if text != "" {
				parts = append(parts, text)
			}
		}
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if combined == "" && layerErr != nil {
		return failed(fmt.Errorf("open PDF: %w", layerErr))
	}
	return extracted(combined)
}

// pdfTextLayer extracts the native text layer. Pages that fail to decode are
// skipped so one corrupt page does not discard the rest of the document.
func pdfTextLayer(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 && text != "" {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)
	}
	return strings.TrimSpace(buf.String()), nil
}
