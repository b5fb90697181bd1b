package harness

import (
	"fmt"
	"time"
)

// MissingReferencePolicy decides what happens to a pair whose reference
// answer is empty at evaluation time.
type MissingReferencePolicy string

const (
	// MissingReferenceSkip leaves the pair out of the report entirely.
	MissingReferenceSkip MissingReferencePolicy = "skip"
	// MissingReferenceZeroScore counts the pair with bleu 0 and
	// hallucination 1.
	MissingReferenceZeroScore MissingReferencePolicy = "zero-score"
	// MissingReferenceFail marks that record as failed; the run continues.
	MissingReferenceFail MissingReferencePolicy = "fail"
)

func (p MissingReferencePolicy) Valid() bool {
	switch p {
	case MissingReferenceSkip, MissingReferenceZeroScore, MissingReferenceFail:
		return true
	}
	return false
}

const defaultConcurrency = 4

// Options configures a harness run.
type Options struct {
	// Concurrency bounds the number of in-flight pair evaluations.
	Concurrency int
	// PerCallTimeout bounds each capability and system-under-test call.
	// Zero means no bound.
	PerCallTimeout time.Duration
	// EntityMatchCaseSensitive controls entity comparison. The policy is
	// applied identically to both sides of every comparison.
	EntityMatchCaseSensitive bool
	// OnMissingReference selects the policy for pairs without a reference.
	OnMissingReference MissingReferencePolicy
	// FailFast stops dispatching new pairs after the first failed record
	// and attaches the triggering error to the returned report.
	FailFast bool
}

// DefaultOptions returns the options used when the caller passes the zero
// value: 4 workers, no timeout, case-insensitive entity matching, missing
// references failing their own record only.
func DefaultOptions() Options {
	return Options{
		Concurrency:        defaultConcurrency,
		OnMissingReference: MissingReferenceFail,
	}
}

func (o Options) normalized() (Options, error) {
	if o.Concurrency < 0 {
		return o, fmt.Errorf("concurrency must not be negative, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.OnMissingReference == "" {
		o.OnMissingReference = MissingReferenceFail
	}
	if !o.OnMissingReference.Valid() {
		return o, fmt.Errorf("unknown missing-reference policy %q", o.OnMissingReference)
	}
	return o, nil
}
