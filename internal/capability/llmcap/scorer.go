package llmcap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/capability"
	"github.com/contractlens/ragcheck/internal/llm"
	"github.com/contractlens/ragcheck/internal/models"
)

const scorerPrompt = `You are a natural language inference classifier. Decide whether the hypothesis is entailed by the premise.

Premise:
{{.Premise}}

Hypothesis:
{{.Hypothesis}}

Classify the relation as exactly one of ENTAILMENT, NEUTRAL or CONTRADICTION. If several labels seem plausible, pick the one you are most confident in.

Respond with JSON only, no prose:
{"label": "<ENTAILMENT|NEUTRAL|CONTRADICTION>", "confidence": <float between 0 and 1>}`

type scorerResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Scorer is an EntailmentScorer backed by an LLM prompted as an NLI
// classifier.
type Scorer struct {
	client      llm.Client
	tmpl        *template.Template
	maxTokens   int
	temperature float64
	logger      *zerolog.Logger
}

func NewScorer(client llm.Client, logger *zerolog.Logger) *Scorer {
	return &Scorer{
		client:      client,
		tmpl:        template.Must(template.New("scorer").Parse(scorerPrompt)),
		maxTokens:   128,
		temperature: 0.0,
		logger:      logger,
	}
}

// Score classifies hypothesis against premise. The premise is the reference
// answer and the hypothesis the generated one; callers must not swap them.
func (s *Scorer) Score(ctx context.Context, premise, hypothesis string) (models.EntailmentResult, error) {
	var buf bytes.Buffer
	err := s.tmpl.Execute(&buf, struct{ Premise, Hypothesis string }{Premise: premise, Hypothesis: hypothesis})
	if err != nil {
		return models.EntailmentResult{}, fmt.Errorf("%w: building prompt: %w", capability.ErrEntailmentUnavailable, err)
	}

	resp, err := s.client.InvokeModelWithRetry(ctx, llm.Request{
		Prompt:      buf.String(),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return models.EntailmentResult{}, fmt.Errorf("%w: %w", capability.ErrEntailmentUnavailable, err)
	}

	content := stripMarkdownCodeBlock(resp.Content)
	var parsed scorerResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		s.logger.Error().
			Err(err).
			Str("content", resp.Content).
			Msg("failed to deserialize entailment response")
		return models.EntailmentResult{}, fmt.Errorf("%w: malformed model response: %w", capability.ErrEntailmentUnavailable, err)
	}

	result := models.EntailmentResult{
		Label:      models.EntailmentLabel(strings.ToUpper(strings.TrimSpace(parsed.Label))),
		Confidence: parsed.Confidence,
	}

	if !result.Label.Valid() {
		return models.EntailmentResult{}, fmt.Errorf("%w: unknown label %q", capability.ErrEntailmentUnavailable, parsed.Label)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return models.EntailmentResult{}, fmt.Errorf("%w: confidence %f out of range [0.0, 1.0]", capability.ErrEntailmentUnavailable, result.Confidence)
	}

	s.logger.Debug().
		Str("label", string(result.Label)).
		Float64("confidence", result.Confidence).
		Msg("entailment scored")

	return result, nil
}

// stripMarkdownCodeBlock removes markdown code block formatting if present.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}
