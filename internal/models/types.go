package models

import (
	"time"
)

// EntailmentLabel is the NLI relation between a premise and a hypothesis.
type EntailmentLabel string

const (
	LabelEntailment    EntailmentLabel = "ENTAILMENT"
	LabelNeutral       EntailmentLabel = "NEUTRAL"
	LabelContradiction EntailmentLabel = "CONTRADICTION"
)

// Valid reports whether the label is one of the three NLI labels.
func (l EntailmentLabel) Valid() bool {
	switch l {
	case LabelEntailment, LabelNeutral, LabelContradiction:
		return true
	}
	return false
}

// EntailmentResult is the best label returned by an entailment classifier
// together with its confidence in [0,1].
type EntailmentResult struct {
	Label      EntailmentLabel `json:"label"`
	Confidence float64         `json:"confidence"`
}

// QAPair is one question with its reference answer, as parsed from a
// transcript. Both fields are non-empty trimmed strings.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Input message for the API, the stream consumer and the MCP tools.
type ScoreRequest struct {
	RequestID string `json:"request_id"`
	Question  string `json:"question"`
	Generated string `json:"generated"`
	Reference string `json:"reference"`
}

// EvaluationRecord is the scored result for a single query. It is created
// once per evaluated pair and never mutated afterwards.
type EvaluationRecord struct {
	Question           string        `json:"question"`
	Generated          string        `json:"generated,omitempty"`
	Reference          string        `json:"reference"`
	BLEU               float64       `json:"bleu"`
	EntityDivergence   float64       `json:"entity_divergence"`
	EntailmentScore    float64       `json:"entailment_score"`
	HallucinationScore float64       `json:"hallucination_score"`
	Failed             bool          `json:"failed,omitempty"`
	FailureReason      string        `json:"failure_reason,omitempty"`
	Duration           time.Duration `json:"duration_ns"`
}

// EvaluationReport aggregates the records of one harness run. Records keep
// the input pair order. Averages are nil when no record scored successfully,
// so an empty run reports absent metrics rather than NaN.
type EvaluationReport struct {
	Records              []EvaluationRecord `json:"records"`
	AverageBLEU          *float64           `json:"average_bleu,omitempty"`
	AverageHallucination *float64           `json:"average_hallucination,omitempty"`
	Scored               int                `json:"scored"`
	Failed               int                `json:"failed"`
	Skipped              int                `json:"skipped"`
}

// Finalize computes the aggregate metrics over successfully scored records.
// The divisor is the count of scored records, not the count of input pairs.
func (r *EvaluationReport) Finalize() {
	r.Scored, r.Failed = 0, 0
	var bleuTotal, hallucinationTotal float64

	for _, rec := range r.Records {
		if rec.Failed {
			r.Failed++
			continue
		}
		r.Scored++
		bleuTotal += rec.BLEU
		hallucinationTotal += rec.HallucinationScore
	}

	if r.Scored == 0 {
		r.AverageBLEU = nil
		r.AverageHallucination = nil
		return
	}

	avgBleu := bleuTotal / float64(r.Scored)
	avgHallucination := hallucinationTotal / float64(r.Scored)
	r.AverageBLEU = &avgBleu
	r.AverageHallucination = &avgHallucination
}
