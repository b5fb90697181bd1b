package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/capability"
	"github.com/contractlens/ragcheck/internal/capability/heuristic"
	"github.com/contractlens/ragcheck/internal/capability/llmcap"
	"github.com/contractlens/ragcheck/internal/config"
	"github.com/contractlens/ragcheck/internal/harness"
	"github.com/contractlens/ragcheck/internal/llm"
	"github.com/contractlens/ragcheck/internal/llm/bedrock"
	"github.com/contractlens/ragcheck/internal/llm/openai"
	"github.com/contractlens/ragcheck/internal/transcript"
)

type Config struct {
	AWSRegion     string
	ClaudeModelID string
	OpenAIKey     string
	OpenAIModelID string
}

type Dependencies struct {
	Orchestrator *harness.Orchestrator
	Parser       *transcript.Parser
	LLMClient    llm.Client
	Harness      *config.HarnessConfig
	Logger       *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID: getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:     getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID: getEnv("OPEN_AI_MODEL_ID", ""),
	}
}

// Wire builds the full evaluation stack from the environment and the
// harness yaml config.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	harnessCfg, err := config.LoadHarnessConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load harness config: %w", err)
	}

	llmClient, err := createLLMClient(ctx, cfg, harnessCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	extractor, scorer := createCapabilities(llmClient, harnessCfg, logger)

	orchestrator, err := harness.New(extractor, scorer, harness.Options{
		Concurrency:              harnessCfg.Evaluation.Concurrency,
		PerCallTimeout:           harnessCfg.Evaluation.PerCallTimeout.Std(),
		EntityMatchCaseSensitive: harnessCfg.Evaluation.EntityMatchCaseSensitive,
		OnMissingReference:       harness.MissingReferencePolicy(harnessCfg.Evaluation.OnMissingReference),
		FailFast:                 harnessCfg.Evaluation.FailFast,
	}, *logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	parser := transcript.NewParser()
	parser.QuestionMarker = harnessCfg.Transcript.QuestionMarker
	parser.AnswerMarker = harnessCfg.Transcript.AnswerMarker
	parser.Separator = harnessCfg.Transcript.Separator

	return &Dependencies{
		Orchestrator: orchestrator,
		Parser:       parser,
		LLMClient:    llmClient,
		Harness:      harnessCfg,
		Logger:       logger,
	}, nil
}

// createCapabilities picks the extractor and scorer implementations and
// serializes them when the config says the backend cannot take
// concurrent calls.
func createCapabilities(llmClient llm.Client, harnessCfg *config.HarnessConfig, logger *zerolog.Logger) (capability.EntityExtractor, capability.EntailmentScorer) {
	var extractor capability.EntityExtractor
	switch harnessCfg.Model.Extractor {
	case "heuristic":
		extractor = heuristic.NewExtractor()
	default:
		extractor = llmcap.NewExtractor(llmClient, logger)
	}

	var scorer capability.EntailmentScorer = llmcap.NewScorer(llmClient, logger)

	if harnessCfg.Model.Serialized {
		extractor = capability.NewSerialExtractor(extractor)
		scorer = capability.NewSerialScorer(scorer)
	}
	return extractor, scorer
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, cfg *Config, harnessCfg *config.HarnessConfig) (llm.Client, error) {
	switch harnessCfg.Model.Provider {
	case "openai":
		modelID := harnessCfg.Model.ModelID
		if modelID == "" {
			modelID = cfg.OpenAIModelID
		}
		return openai.NewClient(cfg.OpenAIKey, modelID)
	default:
		modelID := harnessCfg.Model.ModelID
		if modelID == "" {
			modelID = cfg.ClaudeModelID
		}
		region := harnessCfg.Model.Region
		if region == "" {
			region = cfg.AWSRegion
		}
		return bedrock.NewClient(ctx, region, modelID)
	}
}
