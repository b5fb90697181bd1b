package harness

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/contractlens/ragcheck/internal/capability/mocks"
	"github.com/contractlens/ragcheck/internal/models"
)

func testOrchestrator(t *testing.T, ctrl *gomock.Controller, opts Options) (*Orchestrator, *mocks.MockEntityExtractor, *mocks.MockEntailmentScorer) {
	t.Helper()
	extractor := mocks.NewMockEntityExtractor(ctrl)
	scorer := mocks.NewMockEntailmentScorer(ctrl)
	o, err := New(extractor, scorer, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return o, extractor, scorer
}

func entailed(confidence float64) models.EntailmentResult {
	return models.EntailmentResult{Label: models.LabelEntailment, Confidence: confidence}
}

func makePairs(n int) []models.QAPair {
	pairs := make([]models.QAPair, n)
	for i := range pairs {
		pairs[i] = models.QAPair{
			Question: fmt.Sprintf("question %d", i),
			Answer:   fmt.Sprintf("answer %d", i),
		}
	}
	return pairs
}

func echoFn(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "answer " + strings.TrimPrefix(question, "question "), nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNew_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	extractor := mocks.NewMockEntityExtractor(ctrl)
	scorer := mocks.NewMockEntailmentScorer(ctrl)

	if _, err := New(nil, scorer, Options{}, zerolog.Nop()); err == nil {
		t.Error("expected error for nil extractor")
	}
	if _, err := New(extractor, nil, Options{}, zerolog.Nop()); err == nil {
		t.Error("expected error for nil scorer")
	}
	if _, err := New(extractor, scorer, Options{Concurrency: -1}, zerolog.Nop()); err == nil {
		t.Error("expected error for negative concurrency")
	}
	if _, err := New(extractor, scorer, Options{OnMissingReference: "retry"}, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown missing-reference policy")
	}
}

func TestEvaluate_EmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, _, _ := testOrchestrator(t, ctrl, Options{})

	report, err := o.Evaluate(context.Background(), echoFn, nil)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(report.Records) != 0 || report.Scored != 0 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
	if report.AverageBLEU != nil || report.AverageHallucination != nil {
		t.Error("averages must be absent for an empty report")
	}
}

func TestEvaluate_OrderPreserved(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{Concurrency: 4})
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

	pairs := makePairs(12)
	// Vary completion order so index-based collection is actually exercised.
	queryFn := func(ctx context.Context, question string) (string, error) {
		if strings.HasSuffix(question, "0") {
			time.Sleep(20 * time.Millisecond)
		}
		return echoFn(ctx, question)
	}

	report, err := o.Evaluate(context.Background(), queryFn, pairs)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(report.Records) != len(pairs) {
		t.Fatalf("expected %d records, got %d", len(pairs), len(report.Records))
	}
	for i, record := range report.Records {
		if record.Question != pairs[i].Question {
			t.Errorf("record %d: got question %q, want %q", i, record.Question, pairs[i].Question)
		}
	}
}

func TestEvaluate_ConcurrentMatchesSequential(t *testing.T) {
	run := func(concurrency int) *models.EvaluationReport {
		ctrl := gomock.NewController(t)
		o, extractor, scorer := testOrchestrator(t, ctrl, Options{Concurrency: concurrency})
		extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

		report, err := o.Evaluate(context.Background(), echoFn, makePairs(8))
		if err != nil {
			t.Fatalf("Evaluate returned error: %v", err)
		}
		return report
	}

	sequential := run(1)
	concurrent := run(4)
	if len(sequential.Records) != len(concurrent.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(sequential.Records), len(concurrent.Records))
	}
	for i := range sequential.Records {
		if sequential.Records[i].Question != concurrent.Records[i].Question {
			t.Errorf("record %d differs: %q vs %q", i, sequential.Records[i].Question, concurrent.Records[i].Question)
		}
		if !almostEqual(sequential.Records[i].BLEU, concurrent.Records[i].BLEU) {
			t.Errorf("record %d bleu differs: %v vs %v", i, sequential.Records[i].BLEU, concurrent.Records[i].BLEU)
		}
	}
}

func TestEvaluate_FailedPairExcludedFromAverages(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{Concurrency: 2})
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

	pairs := makePairs(3)
	queryFn := func(ctx context.Context, question string) (string, error) {
		if question == "question 1" {
			return "", errors.New("model unavailable")
		}
		return echoFn(ctx, question)
	}

	report, err := o.Evaluate(context.Background(), queryFn, pairs)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if report.Scored != 2 || report.Failed != 1 {
		t.Fatalf("got scored=%d failed=%d, want 2/1", report.Scored, report.Failed)
	}
	failed := report.Records[1]
	if !failed.Failed || !strings.Contains(failed.FailureReason, "system under test") {
		t.Errorf("record 1 should carry the query failure, got %+v", failed)
	}
	// Identical generated and reference answers score bleu 100 and
	// hallucination 0; the failed record must not drag the averages down.
	if report.AverageBLEU == nil || !almostEqual(*report.AverageBLEU, 100) {
		t.Errorf("average bleu = %v, want 100", report.AverageBLEU)
	}
	if report.AverageHallucination == nil || !almostEqual(*report.AverageHallucination, 0) {
		t.Errorf("average hallucination = %v, want 0", report.AverageHallucination)
	}
}

func TestEvaluate_CapabilityErrorFailsOnlyThatRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{Concurrency: 1})
	extractor.EXPECT().Extract(gomock.Any(), "answer 0").Return(nil, errors.New("extractor offline")).Times(1)
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

	report, err := o.Evaluate(context.Background(), echoFn, makePairs(2))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if report.Failed != 1 || report.Scored != 1 {
		t.Fatalf("got scored=%d failed=%d, want 1/1", report.Scored, report.Failed)
	}
	if !strings.Contains(report.Records[0].FailureReason, "extracting entities") {
		t.Errorf("unexpected failure reason %q", report.Records[0].FailureReason)
	}
}

func TestEvaluate_MissingReferencePolicies(t *testing.T) {
	pairs := []models.QAPair{
		{Question: "question 0", Answer: "answer 0"},
		{Question: "question 1"},
	}

	tests := []struct {
		policy      MissingReferencePolicy
		wantScored  int
		wantFailed  int
		wantSkipped int
	}{
		{MissingReferenceSkip, 1, 0, 1},
		{MissingReferenceZeroScore, 2, 0, 0},
		{MissingReferenceFail, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			o, extractor, scorer := testOrchestrator(t, ctrl, Options{
				Concurrency:        1,
				OnMissingReference: tt.policy,
			})
			extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
			scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

			report, err := o.Evaluate(context.Background(), echoFn, pairs)
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}
			if report.Scored != tt.wantScored || report.Failed != tt.wantFailed || report.Skipped != tt.wantSkipped {
				t.Errorf("got scored=%d failed=%d skipped=%d, want %d/%d/%d",
					report.Scored, report.Failed, report.Skipped,
					tt.wantScored, tt.wantFailed, tt.wantSkipped)
			}
			if tt.policy == MissingReferenceZeroScore {
				zeroed := report.Records[1]
				if zeroed.BLEU != 0 || zeroed.HallucinationScore != 1 {
					t.Errorf("zero-score record = %+v, want bleu 0 and hallucination 1", zeroed)
				}
			}
		})
	}
}

func TestEvaluate_FailFast(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{Concurrency: 1, FailFast: true})
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

	queryFn := func(ctx context.Context, question string) (string, error) {
		if question == "question 0" {
			return "", errors.New("boom")
		}
		return echoFn(ctx, question)
	}

	report, err := o.Evaluate(context.Background(), queryFn, makePairs(4))
	if err == nil {
		t.Fatal("expected the triggering error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("unexpected error %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("got failed=%d, want 1", report.Failed)
	}
	if report.Skipped != 3 {
		t.Errorf("got skipped=%d, want 3", report.Skipped)
	}
}

func TestEvaluate_PerCallTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{
		Concurrency:    2,
		PerCallTimeout: 20 * time.Millisecond,
	})
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

	queryFn := func(ctx context.Context, question string) (string, error) {
		if question == "question 1" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return echoFn(ctx, question)
	}

	report, err := o.Evaluate(context.Background(), queryFn, makePairs(3))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if report.Scored != 2 || report.Failed != 1 {
		t.Fatalf("got scored=%d failed=%d, want 2/1", report.Scored, report.Failed)
	}
	if !report.Records[1].Failed {
		t.Errorf("the timed-out pair should be the failed record, got %+v", report.Records[1])
	}
}

func TestEvaluate_CancellationKeepsCompletedRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{Concurrency: 1})
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	queryFn := func(ctx context.Context, question string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if calls.Add(1) == 2 {
			// Cancel after this answer so the run stops mid-batch.
			defer cancel()
		}
		return echoFn(ctx, question)
	}

	report, err := o.Evaluate(ctx, queryFn, makePairs(5))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if report.Scored != 2 {
		t.Fatalf("got scored=%d, want 2", report.Scored)
	}
	if report.Skipped != 3 {
		t.Errorf("got skipped=%d, want 3", report.Skipped)
	}
	for i, record := range report.Records {
		if record.Failed {
			t.Errorf("record %d marked failed after cancellation: %+v", i, record)
		}
	}
}

func TestEvaluateAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{Concurrency: 2})
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	scorer.EXPECT().Score(gomock.Any(), gomock.Any(), gomock.Any()).Return(entailed(1), nil).AnyTimes()

	pairs := makePairs(3)
	answers := []string{"answer 0", "answer 1", "answer 2"}

	report, err := o.EvaluateAnswers(context.Background(), pairs, answers)
	if err != nil {
		t.Fatalf("EvaluateAnswers returned error: %v", err)
	}
	if report.Scored != 3 {
		t.Fatalf("got scored=%d, want 3", report.Scored)
	}
	if report.AverageBLEU == nil || !almostEqual(*report.AverageBLEU, 100) {
		t.Errorf("average bleu = %v, want 100", report.AverageBLEU)
	}

	if _, err := o.EvaluateAnswers(context.Background(), pairs, answers[:2]); err == nil {
		t.Error("expected error for mismatched answer count")
	}
}

func TestScore(t *testing.T) {
	ctrl := gomock.NewController(t)
	o, extractor, scorer := testOrchestrator(t, ctrl, Options{})
	extractor.EXPECT().Extract(gomock.Any(), "The tower opened in Paris in 1889.").
		Return([]string{"Paris", "1889"}, nil)
	extractor.EXPECT().Extract(gomock.Any(), "It opened in Paris.").
		Return([]string{"Paris"}, nil)
	scorer.EXPECT().Score(gomock.Any(), "It opened in Paris.", "The tower opened in Paris in 1889.").
		Return(models.EntailmentResult{Label: models.LabelEntailment, Confidence: 0.8}, nil)

	record := o.Score(context.Background(), "When did it open?",
		"The tower opened in Paris in 1889.", "It opened in Paris.")
	if record.Failed {
		t.Fatalf("Score failed: %s", record.FailureReason)
	}
	if !almostEqual(record.EntityDivergence, 0.5) {
		t.Errorf("entity divergence = %v, want 0.5", record.EntityDivergence)
	}
	if !almostEqual(record.EntailmentScore, 0.8) {
		t.Errorf("entailment score = %v, want 0.8", record.EntailmentScore)
	}
	if !almostEqual(record.HallucinationScore, 0.35) {
		t.Errorf("hallucination score = %v, want 0.35", record.HallucinationScore)
	}
}
