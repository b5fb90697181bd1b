package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses yaml values like "30s" or "2m" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// HarnessConfig is the root of configs/harness.yaml.
type HarnessConfig struct {
	Transcript TranscriptConfig `yaml:"transcript"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Model      ModelConfig      `yaml:"model"`
	RAG        RAGConfig        `yaml:"rag"`
}

// TranscriptConfig customizes the transcript line markers.
type TranscriptConfig struct {
	QuestionMarker string `yaml:"question_marker"`
	AnswerMarker   string `yaml:"answer_marker"`
	Separator      string `yaml:"separator"`
}

// EvaluationConfig maps onto harness.Options.
type EvaluationConfig struct {
	Concurrency              int      `yaml:"concurrency"`
	PerCallTimeout           Duration `yaml:"per_call_timeout"`
	EntityMatchCaseSensitive bool     `yaml:"entity_match_case_sensitive"`
	OnMissingReference       string   `yaml:"on_missing_reference"`
	FailFast                 bool     `yaml:"fail_fast"`
}

// ModelConfig selects the model backend and the capability
// implementations built on it.
type ModelConfig struct {
	// Provider is "bedrock" or "openai".
	Provider string `yaml:"provider"`
	ModelID  string `yaml:"model_id"`
	Region   string `yaml:"region"`
	// Extractor is "llm" or "heuristic".
	Extractor  string `yaml:"extractor"`
	MaxRetries int    `yaml:"max_retries"`
	Serialized bool   `yaml:"serialized"`
}

// RAGConfig configures the bundled retrieval system under test.
type RAGConfig struct {
	DocumentsDir   string `yaml:"documents_dir"`
	ChunkSize      int    `yaml:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap"`
	TopK           int    `yaml:"top_k"`
	EmbeddingModel string `yaml:"embedding_model"`
}
