// Package capability defines the pluggable model interfaces the harness
// depends on. Implementations are injected at construction time; the
// harness never constructs models itself.
package capability

import (
	"context"
	"errors"

	"github.com/contractlens/ragcheck/internal/models"
)

//go:generate mockgen -source=capability.go -destination=mocks/mocks.go -package=mocks

// Sentinel errors adapters wrap so the orchestrator can classify failures.
var (
	ErrExtractionUnavailable = errors.New("entity extraction unavailable")
	ErrEntailmentUnavailable = errors.New("entailment scoring unavailable")
)

// EntityExtractor pulls entity surface strings out of a text. Empty input
// must yield an empty result, not an error. Failures of the underlying
// model wrap ErrExtractionUnavailable.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}

// EntailmentScorer classifies whether a hypothesis is supported by a
// premise. The premise is the reference answer and the hypothesis the
// generated one; the order matters. When the underlying classifier returns
// several candidate labels, the highest-confidence one is reported.
// Failures wrap ErrEntailmentUnavailable.
type EntailmentScorer interface {
	Score(ctx context.Context, premise, hypothesis string) (models.EntailmentResult, error)
}
