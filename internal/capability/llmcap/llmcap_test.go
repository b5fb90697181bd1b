package llmcap

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/contractlens/ragcheck/internal/capability"
	"github.com/contractlens/ragcheck/internal/llm"
	"github.com/contractlens/ragcheck/internal/llm/mocks"
	"github.com/contractlens/ragcheck/internal/models"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestExtractor_ParsesEntities(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: `{"entities": ["Acme Corp", "Licensor"]}`}, nil)

	extractor := NewExtractor(client, newTestLogger())

	entities, err := extractor.Extract(context.Background(), "Acme Corp licenses the software from the Licensor.")
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0] != "Acme Corp" || entities[1] != "Licensor" {
		t.Errorf("unexpected entities: %v", entities)
	}
}

func TestExtractor_EmptyInputSkipsModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations set: the model must not be called.
	client := mocks.NewMockClient(ctrl)
	extractor := NewExtractor(client, newTestLogger())

	entities, err := extractor.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("Extract(\"\") failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("expected empty result, got %v", entities)
	}
}

func TestExtractor_StripsMarkdownFences(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: "```json\n{\"entities\": [\"Paris\"]}\n```"}, nil)

	extractor := NewExtractor(client, newTestLogger())

	entities, err := extractor.Extract(context.Background(), "Paris is the capital of France.")
	if err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}
	if len(entities) != 1 || entities[0] != "Paris" {
		t.Errorf("unexpected entities: %v", entities)
	}
}

func TestExtractor_ModelFailureWrapsSentinel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	extractor := NewExtractor(client, newTestLogger())

	_, err := extractor.Extract(context.Background(), "some text")
	if !errors.Is(err, capability.ErrExtractionUnavailable) {
		t.Errorf("expected ErrExtractionUnavailable, got %v", err)
	}
}

func TestExtractor_MalformedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: "I found the following entities: Acme Corp"}, nil)

	extractor := NewExtractor(client, newTestLogger())

	_, err := extractor.Extract(context.Background(), "some text")
	if !errors.Is(err, capability.ErrExtractionUnavailable) {
		t.Errorf("expected ErrExtractionUnavailable for malformed response, got %v", err)
	}
}

func TestScorer_ParsesResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: `{"label": "ENTAILMENT", "confidence": 0.92}`}, nil)

	scorer := NewScorer(client, newTestLogger())

	result, err := scorer.Score(context.Background(), "The Licensor owns the IP.", "The IP belongs to the Licensor.")
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if result.Label != models.LabelEntailment {
		t.Errorf("expected ENTAILMENT, got %s", result.Label)
	}
	if result.Confidence != 0.92 {
		t.Errorf("expected confidence 0.92, got %f", result.Confidence)
	}
}

func TestScorer_NormalizesLabelCase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: `{"label": "contradiction", "confidence": 0.8}`}, nil)

	scorer := NewScorer(client, newTestLogger())

	result, err := scorer.Score(context.Background(), "premise", "hypothesis")
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if result.Label != models.LabelContradiction {
		t.Errorf("expected CONTRADICTION, got %s", result.Label)
	}
}

func TestScorer_RejectsUnknownLabel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: `{"label": "MAYBE", "confidence": 0.5}`}, nil)

	scorer := NewScorer(client, newTestLogger())

	_, err := scorer.Score(context.Background(), "premise", "hypothesis")
	if !errors.Is(err, capability.ErrEntailmentUnavailable) {
		t.Errorf("expected ErrEntailmentUnavailable for unknown label, got %v", err)
	}
}

func TestScorer_RejectsOutOfRangeConfidence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.Response{Content: `{"label": "ENTAILMENT", "confidence": 1.4}`}, nil)

	scorer := NewScorer(client, newTestLogger())

	_, err := scorer.Score(context.Background(), "premise", "hypothesis")
	if !errors.Is(err, capability.ErrEntailmentUnavailable) {
		t.Errorf("expected ErrEntailmentUnavailable for out-of-range confidence, got %v", err)
	}
}

func TestScorer_ModelFailureWrapsSentinel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("model overloaded"))

	scorer := NewScorer(client, newTestLogger())

	_, err := scorer.Score(context.Background(), "premise", "hypothesis")
	if !errors.Is(err, capability.ErrEntailmentUnavailable) {
		t.Errorf("expected ErrEntailmentUnavailable, got %v", err)
	}
}

func TestStripMarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"fenced json", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced without language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"unclosed fence", "```json\n{\"a\": 1}", "```json\n{\"a\": 1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkdownCodeBlock(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
