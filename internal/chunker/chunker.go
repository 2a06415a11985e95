// Package chunker splits normalized text into overlapping fixed-size windows.
package chunker

import (
	"fmt"
	"strings"
)

// MaxTextLen bounds the number of characters chunked from a single source.
// Longer inputs are clipped before chunking so worst-case memory and time stay
// proportional to the bound, not the upload size.
const MaxTextLen = 200_000

// Chunk partitions text into windows of size characters, advancing the start
// offset by size-overlap each iteration. Each window is trimmed of surrounding
// whitespace; windows that are empty after trimming are omitted. The sequence
// is deterministic for identical inputs, which ingestion relies on for stable
// fragment ids.
//
// Returns an error unless size > overlap >= 0: a violated invariant would
// otherwise make the window stop advancing.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			chunks = append(chunks, window)
		}
		if end >= len(runes) {
			break
		}
	}
	return chunks, nil
}

// Clip truncates text to MaxTextLen characters. The second return value
// reports whether anything was cut; callers log that as a degraded-quality
// event rather than an error.
func Clip(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= MaxTextLen {
		return text, false
	}
	return string(runes[:MaxTextLen]), true
}
