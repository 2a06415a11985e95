package extract

import (
	"fmt"

	"github.com/lu4p/cat"
)

// extractRichText handles ODT and RTF through lu4p/cat, which sniffs the
// container from the file header.
func extractRichText(content []byte) Result {
	text, err := cat.FromBytes(content)
	if err != nil {
		return failed(fmt.Errorf("extract rich text: %w", err))
	}
	return extracted(text)
}
