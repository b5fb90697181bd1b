// Package metrics holds the pure scoring functions of the harness: sentence
// BLEU for surface similarity and the composite hallucination score built
// from entity overlap and NLI entailment.
package metrics

import (
	"math"
	"strings"
	"unicode"
)

const maxNgramOrder = 4

// SentenceBLEU scores a candidate against a single reference on the 0-100
// BLEU scale: clipped n-gram precision up to order 4 with a brevity penalty.
// The order is capped at the candidate length so an exact match always
// scores 100. Zero-match orders are smoothed instead of zeroing the whole
// score. Deterministic for identical inputs.
func SentenceBLEU(candidate, reference string) float64 {
	candTokens := Tokenize(candidate)
	refTokens := Tokenize(reference)

	if len(candTokens) == 0 || len(refTokens) == 0 {
		return 0
	}

	order := maxNgramOrder
	if len(candTokens) < order {
		order = len(candTokens)
	}

	var logPrecisionSum float64
	smoothInv := 1.0

	for n := 1; n <= order; n++ {
		matches, total := clippedMatches(candTokens, refTokens, n)

		var precision float64
		if matches == 0 {
			// Exponential smoothing: halve the floor at each empty order.
			smoothInv *= 2
			precision = 1 / (smoothInv * float64(total))
		} else {
			precision = float64(matches) / float64(total)
		}
		logPrecisionSum += math.Log(precision)
	}

	brevity := 1.0
	if len(candTokens) < len(refTokens) {
		brevity = math.Exp(1 - float64(len(refTokens))/float64(len(candTokens)))
	}

	return 100 * brevity * math.Exp(logPrecisionSum/float64(order))
}

// clippedMatches counts candidate n-grams matched in the reference, each
// reference n-gram usable at most as often as it occurs there.
func clippedMatches(candidate, reference []string, n int) (matches, total int) {
	candCounts := ngramCounts(candidate, n)
	refCounts := ngramCounts(reference, n)

	for gram, count := range candCounts {
		total += count
		if refCount, ok := refCounts[gram]; ok {
			if count < refCount {
				matches += count
			} else {
				matches += refCount
			}
		}
	}
	return matches, total
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x1f")]++
	}
	return counts
}

// Tokenize splits text into BLEU tokens: runs of letters or digits, with
// every punctuation rune as its own token. Case is preserved.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}
