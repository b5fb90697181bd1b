// Package harness runs question/answer pairs against a system under test
// and scores each generated answer for fluency and hallucination.
package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/capability"
	"github.com/contractlens/ragcheck/internal/metrics"
	"github.com/contractlens/ragcheck/internal/models"
)

// QueryFunc asks the system under test a question and returns its
// generated answer.
type QueryFunc func(ctx context.Context, question string) (string, error)

// Orchestrator evaluates batches of pairs with bounded concurrency while
// keeping the report in input order.
type Orchestrator struct {
	extractor capability.EntityExtractor
	scorer    capability.EntailmentScorer
	opts      Options
	logger    zerolog.Logger
}

// New creates an orchestrator. Both capabilities must be safe for
// concurrent use when opts.Concurrency is greater than one; wrap
// single-threaded implementations with capability.NewSerialExtractor and
// capability.NewSerialScorer.
func New(extractor capability.EntityExtractor, scorer capability.EntailmentScorer, opts Options, logger zerolog.Logger) (*Orchestrator, error) {
	if extractor == nil {
		return nil, fmt.Errorf("entity extractor is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("entailment scorer is required")
	}
	normalized, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		extractor: extractor,
		scorer:    scorer,
		opts:      normalized,
		logger:    logger,
	}, nil
}

type outcome struct {
	record  models.EvaluationRecord
	skipped bool
}

// Evaluate queries the system under test for every pair and scores the
// generated answers. Records appear in the report in the order of the
// input pairs regardless of completion order. A failed pair never aborts
// the run unless FailFast is set; cancellation of ctx stops dispatching
// new pairs and the report covers only the pairs that completed.
func (o *Orchestrator) Evaluate(ctx context.Context, queryFn QueryFunc, pairs []models.QAPair) (*models.EvaluationReport, error) {
	if queryFn == nil {
		return nil, fmt.Errorf("query function is required")
	}
	return o.run(ctx, len(pairs), func(ctx context.Context, i int) outcome {
		return o.evaluatePair(ctx, queryFn, pairs[i])
	})
}

// EvaluateAnswers scores pre-generated answers against their references
// without querying a system under test: answers[i] is the generated
// answer for pairs[i].
func (o *Orchestrator) EvaluateAnswers(ctx context.Context, pairs []models.QAPair, answers []string) (*models.EvaluationReport, error) {
	if len(answers) != len(pairs) {
		return nil, fmt.Errorf("got %d answers for %d pairs", len(answers), len(pairs))
	}
	return o.run(ctx, len(pairs), func(ctx context.Context, i int) outcome {
		pair := pairs[i]
		start := time.Now()
		if out, done := o.missingReferenceOutcome(pair, start); done {
			return out
		}
		record := o.scoreAnswer(ctx, pair.Question, answers[i], pair.Answer)
		record.Duration = time.Since(start)
		return o.finishOutcome(ctx, pair, record)
	})
}

// Score evaluates a single pre-generated answer against its reference.
func (o *Orchestrator) Score(ctx context.Context, question, generated, reference string) models.EvaluationRecord {
	start := time.Now()
	record := o.scoreAnswer(ctx, question, generated, reference)
	record.Duration = time.Since(start)
	return record
}

// run dispatches n units of work across a bounded worker pool and
// assembles the report by input index.
func (o *Orchestrator) run(ctx context.Context, n int, work func(ctx context.Context, i int) outcome) (*models.EvaluationReport, error) {
	report := &models.EvaluationReport{}
	if n == 0 {
		report.Finalize()
		return report, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.logger.Info().
		Int("pairs", n).
		Int("concurrency", o.opts.Concurrency).
		Msg("Starting evaluation run")

	outcomes := make([]outcome, n)
	sem := make(chan struct{}, o.opts.Concurrency)
	var wg sync.WaitGroup

	var failOnce sync.Once
	var failErr error

	dispatched := 0
dispatch:
	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
			break dispatch
		}
		dispatched = i + 1
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			outcomes[i] = work(runCtx, i)
			if outcomes[i].record.Failed && o.opts.FailFast {
				failOnce.Do(func() {
					failErr = fmt.Errorf("pair %d: %s", i, outcomes[i].record.FailureReason)
					cancel()
				})
			}
		}(i)
	}
	wg.Wait()

	for i := dispatched; i < n; i++ {
		outcomes[i] = outcome{skipped: true}
	}

	for _, out := range outcomes {
		if out.skipped {
			report.Skipped++
			continue
		}
		report.Records = append(report.Records, out.record)
	}
	report.Finalize()

	o.logger.Info().
		Int("scored", report.Scored).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("Evaluation run complete")

	if failErr != nil {
		return report, failErr
	}
	return report, nil
}

func (o *Orchestrator) evaluatePair(ctx context.Context, queryFn QueryFunc, pair models.QAPair) outcome {
	start := time.Now()
	if out, done := o.missingReferenceOutcome(pair, start); done {
		return out
	}

	callCtx, cancel := o.callContext(ctx)
	generated, err := queryFn(callCtx, pair.Question)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return outcome{skipped: true}
		}
		return outcome{record: o.failedRecord(pair, start, fmt.Errorf("system under test: %w", err))}
	}

	record := o.scoreAnswer(ctx, pair.Question, generated, pair.Answer)
	record.Duration = time.Since(start)
	return o.finishOutcome(ctx, pair, record)
}

// missingReferenceOutcome applies the configured policy to pairs with an
// empty reference answer. The second return is false when the pair has a
// reference and should be scored normally.
func (o *Orchestrator) missingReferenceOutcome(pair models.QAPair, start time.Time) (outcome, bool) {
	if pair.Answer != "" {
		return outcome{}, false
	}
	switch o.opts.OnMissingReference {
	case MissingReferenceSkip:
		o.logger.Debug().Str("question", pair.Question).Msg("Skipping pair without reference answer")
		return outcome{skipped: true}, true
	case MissingReferenceZeroScore:
		return outcome{record: models.EvaluationRecord{
			Question:           pair.Question,
			EntityDivergence:   1,
			HallucinationScore: 1,
			Duration:           time.Since(start),
		}}, true
	default:
		return outcome{record: models.EvaluationRecord{
			Question:      pair.Question,
			Failed:        true,
			FailureReason: "missing reference answer",
			Duration:      time.Since(start),
		}}, true
	}
}

// finishOutcome converts a record that failed because the run was
// cancelled into a skip, so cancellation does not pollute the report with
// failure records.
func (o *Orchestrator) finishOutcome(ctx context.Context, pair models.QAPair, record models.EvaluationRecord) outcome {
	if record.Failed {
		if ctx.Err() != nil {
			return outcome{skipped: true}
		}
		o.logger.Warn().
			Str("question", pair.Question).
			Str("reason", record.FailureReason).
			Msg("Pair evaluation failed")
	}
	return outcome{record: record}
}

// scoreAnswer computes every metric for one generated/reference pair. Any
// capability error fails only this record.
func (o *Orchestrator) scoreAnswer(ctx context.Context, question, generated, reference string) models.EvaluationRecord {
	record := models.EvaluationRecord{
		Question:  question,
		Generated: generated,
		Reference: reference,
	}

	record.BLEU = metrics.SentenceBLEU(generated, reference)

	callCtx, cancel := o.callContext(ctx)
	genEntities, err := o.extractor.Extract(callCtx, generated)
	cancel()
	if err != nil {
		return failRecord(record, fmt.Errorf("extracting entities from generated answer: %w", err))
	}

	callCtx, cancel = o.callContext(ctx)
	refEntities, err := o.extractor.Extract(callCtx, reference)
	cancel()
	if err != nil {
		return failRecord(record, fmt.Errorf("extracting entities from reference answer: %w", err))
	}

	callCtx, cancel = o.callContext(ctx)
	entailment, err := o.scorer.Score(callCtx, reference, generated)
	cancel()
	if err != nil {
		return failRecord(record, fmt.Errorf("scoring entailment: %w", err))
	}

	genSet := metrics.NewEntitySet(genEntities, o.opts.EntityMatchCaseSensitive)
	refSet := metrics.NewEntitySet(refEntities, o.opts.EntityMatchCaseSensitive)
	record.EntityDivergence = metrics.EntityDivergence(genSet, refSet)
	record.EntailmentScore = metrics.EntailmentScore(entailment)
	record.HallucinationScore = metrics.HallucinationScore(genSet, refSet, entailment)
	return record
}

func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.opts.PerCallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.opts.PerCallTimeout)
}

func (o *Orchestrator) failedRecord(pair models.QAPair, start time.Time, err error) models.EvaluationRecord {
	o.logger.Warn().
		Str("question", pair.Question).
		Err(err).
		Msg("Pair evaluation failed")
	return models.EvaluationRecord{
		Question:      pair.Question,
		Reference:     pair.Answer,
		Failed:        true,
		FailureReason: err.Error(),
		Duration:      time.Since(start),
	}
}

func failRecord(record models.EvaluationRecord, err error) models.EvaluationRecord {
	record.Failed = true
	record.FailureReason = err.Error()
	return record
}
