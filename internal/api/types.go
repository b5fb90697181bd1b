package api

import "github.com/contractlens/ragcheck/internal/models"

// EvaluateRequest carries a batch evaluation. The input pairs come either
// from a raw transcript or from an explicit pairs list; generated answers
// are matched to pairs by index.
type EvaluateRequest struct {
	Transcript string          `json:"transcript,omitempty"`
	Pairs      []models.QAPair `json:"pairs,omitempty"`
	Answers    []string        `json:"answers"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
