package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel concatenates all cell text from every sheet, rows joined by
// newlines and cells by tabs.
func extractExcel(content []byte) Result {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return failed(fmt.Errorf("open Excel: %w", err))
	}
	defer f.Close()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return failed(fmt.Errorf("get rows for sheet %q: %w", sheet, err))
		}
		for _, row := range rows {
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
		}
	}
	return extracted(strings.TrimSpace(buf.String()))
}
