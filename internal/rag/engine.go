package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/llm"
)

const answerPrompt = `Answer the question using only the provided context. If the context does not contain the answer, say you do not know.

Context:
%s

Question: %s

Answer:`

// Engine answers questions over an Index by retrieving relevant chunks
// and asking the model to synthesize an answer from them. Its Answer
// method satisfies the harness query function signature.
type Engine struct {
	index  *Index
	client llm.Client
	topK   int
	logger zerolog.Logger
}

func NewEngine(index *Index, client llm.Client, topK int, logger zerolog.Logger) *Engine {
	return &Engine{
		index:  index,
		client: client,
		topK:   topK,
		logger: logger,
	}
}

func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	results, err := e.index.Retrieve(ctx, question, e.topK)
	if err != nil {
		return "", err
	}

	var chunks strings.Builder
	for i, res := range results {
		if i > 0 {
			chunks.WriteString("\n---\n")
		}
		chunks.WriteString(res.Content)
	}

	e.logger.Debug().
		Str("question", question).
		Int("chunks", len(results)).
		Msg("Retrieved context for question")

	resp, err := e.client.InvokeModelWithRetry(ctx, llm.Request{
		Prompt:      fmt.Sprintf(answerPrompt, chunks.String(), question),
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("synthesizing answer: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
