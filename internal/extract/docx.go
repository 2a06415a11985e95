package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// docxMediaPrefix is the path prefix for embedded media (images) inside a .docx zip.
const docxMediaPrefix = "word/media/"

// wtTag matches <w:t>text</w:t> or <w:t xml:space="preserve">text</w:t> (and any other attributes).
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCX extracts text from .docx bytes. DOCX is a ZIP containing
// word/document.xml (OOXML); we pull all <w:t>...</w:t> text nodes so content
// is searchable regardless of paragraph or run attributes. Embedded images
// under word/media/ are then OCR'd one by one, each independently: a failure
// on one image never discards the paragraph text or the remaining images.
func (e *Extractor) extractDOCX(ctx context.Context, content []byte) Result {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return failed(fmt.Errorf("extract DOCX: not a zip: %w", err))
	}

	var parts []string
	body, err := docxBodyText(zr)
	if err != nil {
		return failed(err)
	}
	if body != "" {
		parts = append(parts, body)
	}

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, docxMediaPrefix) || !isImageName(f.Name) {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			continue
		}
		if text := e.ocrImage(ctx, data, f.Name); text != "" {
			parts = append(parts, text)
		}
	}

	return extracted(strings.TrimSpace(strings.Join(parts, "\n\n")))
}

// docxBodyText extracts the <w:t> node text from the main document part.
func docxBodyText(zr *zip.Reader) (string, error) {
	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract DOCX: read %s: %w", f.Name, err)
		}
		docXML = data
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", docxDocumentXMLPath)
	}
	parts := wtTag.FindAllStringSubmatch(string(docXML), -1)
	if len(parts) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
	return strings.TrimSpace(b.String()), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isImageName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg")
}
