package metrics

import (
	"strings"

	"github.com/contractlens/ragcheck/internal/models"
)

// EntitySet is a set of entity surface strings. Build one through
// NewEntitySet so the case policy is applied consistently to both sides of
// a comparison.
type EntitySet map[string]struct{}

// NewEntitySet collapses entity surface strings into a set. Strings are
// trimmed, empties dropped, and lowercased when caseSensitive is false.
func NewEntitySet(entities []string, caseSensitive bool) EntitySet {
	set := make(EntitySet, len(entities))
	for _, e := range entities {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !caseSensitive {
			e = strings.ToLower(e)
		}
		set[e] = struct{}{}
	}
	return set
}

// Overlap returns the number of entities present in both sets.
func (s EntitySet) Overlap(other EntitySet) int {
	count := 0
	for e := range s {
		if _, ok := other[e]; ok {
			count++
		}
	}
	return count
}

// EntityDivergence is the fraction of generated entities unsupported by the
// reference: 1 - |gen∩ref| / |gen|. An empty generated set asserts no
// entities, so nothing is unsupported and the divergence is 0.
func EntityDivergence(gen, ref EntitySet) float64 {
	if len(gen) == 0 {
		return 0
	}
	return 1 - float64(gen.Overlap(ref))/float64(len(gen))
}

// EntailmentScore maps an NLI result to [0,1]: the classifier confidence
// when the label is ENTAILMENT, otherwise 0.
func EntailmentScore(result models.EntailmentResult) float64 {
	if result.Label != models.LabelEntailment {
		return 0
	}
	switch {
	case result.Confidence < 0:
		return 0
	case result.Confidence > 1:
		return 1
	}
	return result.Confidence
}

// HallucinationScore blends entity grounding with entailment support:
// (divergence + (1 - entailmentScore)) / 2. 0 means fully grounded and
// fully entailed; 1 means no entity overlap and no entailment support.
func HallucinationScore(gen, ref EntitySet, entailment models.EntailmentResult) float64 {
	return (EntityDivergence(gen, ref) + (1 - EntailmentScore(entailment))) / 2
}
