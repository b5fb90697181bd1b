package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/contractlens/ragcheck/internal/batch"
	"github.com/contractlens/ragcheck/internal/rag"
	"github.com/contractlens/ragcheck/internal/setup"
)

// Evaluates a Q/A transcript against the bundled retrieval-augmented
// answering engine: every question is asked live, and the generated
// answers are scored against the transcript's reference answers.
func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	transcriptPath := flag.String("transcript", "", "Transcript file with Q:/A: lines")
	docs := flag.String("docs", "", "Documents directory, overrides rag.documents_dir")
	output := flag.String("output", "", "Output file, defaults to stdout")
	format := flag.String("format", "summary", "Output format. Supported formats: 'jsonl', 'summary'")

	flag.Parse()

	if *transcriptPath == "" {
		log.Fatal().Msg("required flag -transcript not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	raw, err := os.ReadFile(*transcriptPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *transcriptPath).Msg("Failed to read transcript")
	}

	pairs := deps.Parser.Parse(string(raw))
	if len(pairs) == 0 {
		log.Fatal().Str("file", *transcriptPath).Msg("Transcript contains no question/answer pairs")
	}
	log.Info().Int("pairs", len(pairs)).Msg("Transcript parsed")

	// Build the system under test
	ragCfg := deps.Harness.RAG
	if *docs != "" {
		ragCfg.DocumentsDir = *docs
	}
	index, err := rag.BuildIndex(ctx, ragCfg, nil, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build document index")
	}
	engine := rag.NewEngine(index, deps.LLMClient, ragCfg.TopK, logger)

	report, err := deps.Orchestrator.Evaluate(ctx, engine.Answer, pairs)
	if err != nil {
		log.Error().Err(err).Msg("Evaluation aborted")
	}
	if report == nil {
		os.Exit(1)
	}

	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
	}

	writer, err := batch.NewWriter(outputFile, *format, deps.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create writer")
	}
	if err := writer.WriteReport(report); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().
		Int("scored", report.Scored).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("duration", time.Since(startTime)).
		Msg("Evaluation complete")
}
