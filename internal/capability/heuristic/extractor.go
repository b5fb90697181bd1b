// Package heuristic provides an offline entity extractor for tests and
// air-gapped runs: capitalized spans and number-bearing tokens stand in for
// proper named-entity recognition.
package heuristic

import (
	"context"
	"strings"
	"unicode"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Capitalized forms of these are treated as ordinary sentence starters, not
// entity candidates.
var commonWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"of": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "against": true, "between": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"to": true, "from": true, "in": true, "on": true, "it": true,
	"this": true, "that": true, "these": true, "those": true,
	"he": true, "she": true, "they": true, "we": true, "you": true, "i": true,
	"what": true, "who": true, "where": true, "when": true, "why": true, "how": true,
	"yes": true, "no": true, "not": true, "and": true, "or": true, "but": true,
	"its": true, "as": true, "if": true, "all": true, "any": true, "each": true,
}

// Extract scans for entity-like surface strings: runs of consecutive
// capitalized words (joined with single spaces) and tokens containing
// digits, such as dates and monetary amounts. A lone capitalized common
// word at the start of a sentence is not an entity. Never fails; empty
// input yields an empty result.
func (e *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	var entities []string
	var span []string
	spanAtSentenceStart := false
	sentenceStart := true

	flush := func() {
		if len(span) == 0 {
			return
		}
		// Drop a lone sentence-starting common word ("The", "What", ...).
		if len(span) == 1 && spanAtSentenceStart && commonWords[strings.ToLower(span[0])] {
			span = nil
			return
		}
		entities = append(entities, strings.Join(span, " "))
		span = nil
	}

	for _, field := range strings.Fields(text) {
		token, endsSentence := trimToken(field)
		if token == "" {
			sentenceStart = sentenceStart || endsSentence
			continue
		}

		switch {
		case containsDigit(token):
			flush()
			entities = append(entities, token)
		case isCapitalized(token):
			if len(span) == 0 {
				spanAtSentenceStart = sentenceStart
			}
			span = append(span, token)
		default:
			flush()
		}

		if endsSentence {
			flush()
		}
		sentenceStart = endsSentence
	}
	flush()

	return dedupe(entities), nil
}

// trimToken strips surrounding punctuation and reports whether the token
// closed a sentence.
func trimToken(field string) (string, bool) {
	endsSentence := false
	token := strings.TrimFunc(field, func(r rune) bool {
		if r == '.' || r == '!' || r == '?' {
			endsSentence = true
		}
		// Keep currency markers so amounts survive as extracted.
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '$' && r != '€' && r != '£'
	})
	return token, endsSentence
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func dedupe(entities []string) []string {
	seen := make(map[string]bool, len(entities))
	var out []string
	for _, e := range entities {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
