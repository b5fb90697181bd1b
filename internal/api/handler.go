package api

import (
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/api/middleware"
	"github.com/contractlens/ragcheck/internal/harness"
	"github.com/contractlens/ragcheck/internal/models"
	"github.com/contractlens/ragcheck/internal/transcript"
)

type Handler struct {
	orchestrator *harness.Orchestrator
	parser       *transcript.Parser
	logger       *zerolog.Logger
}

func NewHandler(orchestrator *harness.Orchestrator, parser *transcript.Parser, logger *zerolog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		parser:       parser,
		logger:       logger,
	}
}

// POST /api/v1/evaluate
// Body: EvaluateRequest
// Returns: models.EvaluationReport
func (h *Handler) Evaluate(req *restful.Request, resp *restful.Response) {
	var evalRequest EvaluateRequest
	if err := req.ReadEntity(&evalRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	pairs := evalRequest.Pairs
	if evalRequest.Transcript != "" {
		if len(pairs) > 0 {
			middleware.HandleError(resp, errors.New("provide either transcript or pairs, not both"), http.StatusBadRequest)
			return
		}
		pairs = h.parser.Parse(evalRequest.Transcript)
	}
	if len(pairs) != len(evalRequest.Answers) {
		h.logger.Warn().
			Int("pairs", len(pairs)).
			Int("answers", len(evalRequest.Answers)).
			Msg("Rejecting evaluation with mismatched answers")
		middleware.HandleError(resp, errors.New("answers must match pairs one to one"), http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Int("pairs", len(pairs)).
		Msg("Start evaluation")

	ctx := req.Request.Context()
	report, err := h.orchestrator.EvaluateAnswers(ctx, pairs, evalRequest.Answers)
	if err != nil {
		h.logger.Error().Err(err).Msg("Evaluation aborted")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Int("scored", report.Scored).
		Int("failed", report.Failed).
		Msg("Evaluation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, report)
}

// POST /api/v1/score
// Body: models.ScoreRequest
// Returns: models.EvaluationRecord
func (h *Handler) Score(req *restful.Request, resp *restful.Response) {
	var scoreRequest models.ScoreRequest
	if err := req.ReadEntity(&scoreRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if scoreRequest.Generated == "" || scoreRequest.Reference == "" {
		middleware.HandleError(resp, errors.New("generated and reference are required"), http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("request_id", scoreRequest.RequestID).
		Msg("Start scoring")

	ctx := req.Request.Context()
	record := h.orchestrator.Score(ctx, scoreRequest.Question, scoreRequest.Generated, scoreRequest.Reference)

	h.logger.Info().
		Str("request_id", scoreRequest.RequestID).
		Bool("failed", record.Failed).
		Float64("hallucination_score", record.HallucinationScore).
		Msg("Scoring complete")

	resp.WriteHeaderAndEntity(http.StatusOK, record)
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
