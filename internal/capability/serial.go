package capability

import (
	"context"
	"sync"

	"github.com/contractlens/ragcheck/internal/models"
)

// SerialExtractor serializes calls to an extractor that is not safe for
// concurrent use. The rest of the evaluation pipeline keeps running in
// parallel; only this capability's calls queue up.
type SerialExtractor struct {
	mu    sync.Mutex
	inner EntityExtractor
}

func NewSerialExtractor(inner EntityExtractor) *SerialExtractor {
	return &SerialExtractor{inner: inner}
}

func (s *SerialExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Extract(ctx, text)
}

// SerialScorer serializes calls to a scorer that is not safe for concurrent
// use.
type SerialScorer struct {
	mu    sync.Mutex
	inner EntailmentScorer
}

func NewSerialScorer(inner EntailmentScorer) *SerialScorer {
	return &SerialScorer{inner: inner}
}

func (s *SerialScorer) Score(ctx context.Context, premise, hypothesis string) (models.EntailmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Score(ctx, premise, hypothesis)
}
