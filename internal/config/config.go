package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadHarnessConfig reads the harness config from HARNESS_CONFIG_PATH,
// falling back to configs/harness.yaml.
func LoadHarnessConfig() (*HarnessConfig, error) {
	path := os.Getenv("HARNESS_CONFIG_PATH")
	if path == "" {
		path = "configs/harness.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg HarnessConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *HarnessConfig) {
	if cfg.Transcript.QuestionMarker == "" {
		cfg.Transcript.QuestionMarker = "Q"
	}
	if cfg.Transcript.AnswerMarker == "" {
		cfg.Transcript.AnswerMarker = "A"
	}
	if cfg.Transcript.Separator == "" {
		cfg.Transcript.Separator = ":"
	}
	if cfg.Evaluation.Concurrency == 0 {
		cfg.Evaluation.Concurrency = 4
	}
	if cfg.Evaluation.OnMissingReference == "" {
		cfg.Evaluation.OnMissingReference = "fail"
	}
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "bedrock"
	}
	if cfg.Model.Extractor == "" {
		cfg.Model.Extractor = "llm"
	}
	if cfg.Model.MaxRetries == 0 {
		cfg.Model.MaxRetries = 3
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 800
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 4
	}
}

func (c *HarnessConfig) Validate() error {
	if c.Evaluation.Concurrency < 0 {
		return fmt.Errorf("evaluation.concurrency must not be negative, got %d", c.Evaluation.Concurrency)
	}
	if c.Evaluation.PerCallTimeout < 0 {
		return fmt.Errorf("evaluation.per_call_timeout must not be negative, got %s", c.Evaluation.PerCallTimeout.Std())
	}
	switch c.Evaluation.OnMissingReference {
	case "skip", "zero-score", "fail":
	default:
		return fmt.Errorf("evaluation.on_missing_reference must be skip, zero-score or fail, got %q", c.Evaluation.OnMissingReference)
	}
	switch c.Model.Provider {
	case "bedrock", "openai":
	default:
		return fmt.Errorf("model.provider must be bedrock or openai, got %q", c.Model.Provider)
	}
	switch c.Model.Extractor {
	case "llm", "heuristic":
	default:
		return fmt.Errorf("model.extractor must be llm or heuristic, got %q", c.Model.Extractor)
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap (%d) must be smaller than rag.chunk_size (%d)", c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	return nil
}
