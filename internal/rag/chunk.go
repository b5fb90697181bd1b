package rag

import "strings"

// splitText cuts text into chunks of at most size runes with the given
// overlap between consecutive chunks. Splits prefer paragraph breaks,
// falling back to hard cuts for oversized paragraphs.
func splitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		runes := []rune(paragraph)
		if len(runes) <= size {
			chunks = append(chunks, paragraph)
			continue
		}
		step := size - overlap
		for start := 0; start < len(runes); start += step {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			chunk := strings.TrimSpace(string(runes[start:end]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			if end == len(runes) {
				break
			}
		}
	}
	return chunks
}
