// Package llmcap implements the harness capabilities on top of an injected
// LLM client: named-entity extraction and NLI entailment classification via
// prompting with structured JSON responses.
package llmcap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/capability"
	"github.com/contractlens/ragcheck/internal/llm"
)

const extractorPrompt = `Extract all named entities (people, organizations, locations, dates, monetary amounts, legal parties) from the text below.

Text:
{{.Text}}

Respond with JSON only, no prose:
{"entities": ["<entity>", ...]}

If the text contains no entities, respond with {"entities": []}.`

type extractorResponse struct {
	Entities []string `json:"entities"`
}

// Extractor is an EntityExtractor backed by an LLM.
type Extractor struct {
	client      llm.Client
	tmpl        *template.Template
	maxTokens   int
	temperature float64
	logger      *zerolog.Logger
}

func NewExtractor(client llm.Client, logger *zerolog.Logger) *Extractor {
	return &Extractor{
		client:      client,
		tmpl:        template.Must(template.New("extractor").Parse(extractorPrompt)),
		maxTokens:   512,
		temperature: 0.0,
		logger:      logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return nil, fmt.Errorf("%w: building prompt: %w", capability.ErrExtractionUnavailable, err)
	}

	resp, err := e.client.InvokeModelWithRetry(ctx, llm.Request{
		Prompt:      buf.String(),
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", capability.ErrExtractionUnavailable, err)
	}

	content := stripMarkdownCodeBlock(resp.Content)
	var parsed extractorResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		e.logger.Error().
			Err(err).
			Str("content", resp.Content).
			Msg("failed to deserialize extractor response")
		return nil, fmt.Errorf("%w: malformed model response: %w", capability.ErrExtractionUnavailable, err)
	}

	e.logger.Debug().
		Int("entities", len(parsed.Entities)).
		Msg("entities extracted")

	return parsed.Entities, nil
}
