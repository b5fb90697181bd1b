package mcpadapter

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/contractlens/ragcheck/internal/harness"
	"github.com/contractlens/ragcheck/internal/models"
	"github.com/contractlens/ragcheck/internal/transcript"
)

// ScoreInput is the MCP tool input schema (matches HTTP API field names).
type ScoreInput struct {
	RequestID string `json:"request_id,omitempty" jsonschema:"optional request identifier"`
	Question  string `json:"question" jsonschema:"the question that was asked"`
	Generated string `json:"generated" jsonschema:"the generated answer to score"`
	Reference string `json:"reference" jsonschema:"the reference answer to score against"`
}

// EvaluateTranscriptInput is the MCP tool input schema for batch
// transcript evaluation.
type EvaluateTranscriptInput struct {
	Transcript string   `json:"transcript" jsonschema:"Q/A transcript, one 'Q: ...' and 'A: ...' line per pair"`
	Answers    []string `json:"answers" jsonschema:"generated answers matched to the parsed pairs by index"`
}

// NewScoreHandler returns a tool handler that scores one answer with the
// given orchestrator. Pass the returned function to mcp.AddTool.
func NewScoreHandler(orchestrator *harness.Orchestrator) func(context.Context, *mcp.CallToolRequest, ScoreInput) (*mcp.CallToolResult, models.EvaluationRecord, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ScoreInput) (*mcp.CallToolResult, models.EvaluationRecord, error) {
		if input.Generated == "" || input.Reference == "" {
			return nil, models.EvaluationRecord{}, errors.New("generated and reference are required")
		}
		record := orchestrator.Score(ctx, input.Question, input.Generated, input.Reference)
		return nil, record, nil
	}
}

// NewEvaluateTranscriptHandler returns a tool handler that parses a
// transcript and evaluates the supplied generated answers against it.
func NewEvaluateTranscriptHandler(orchestrator *harness.Orchestrator, parser *transcript.Parser) func(context.Context, *mcp.CallToolRequest, EvaluateTranscriptInput) (*mcp.CallToolResult, *models.EvaluationReport, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluateTranscriptInput) (*mcp.CallToolResult, *models.EvaluationReport, error) {
		pairs := parser.Parse(input.Transcript)
		if len(pairs) == 0 {
			return nil, nil, errors.New("transcript contains no question/answer pairs")
		}
		if len(input.Answers) != len(pairs) {
			return nil, nil, errors.New("answers must match parsed pairs one to one")
		}
		report, err := orchestrator.EvaluateAnswers(ctx, pairs, input.Answers)
		if err != nil {
			return nil, nil, err
		}
		return nil, report, nil
	}
}
