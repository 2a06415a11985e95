package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain decodes content as UTF-8, replacing undecodable bytes with the
// replacement character rather than failing.
func extractPlain(content []byte) Result {
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "�"))
	}
	return extracted(strings.TrimSpace(string(content)))
}
