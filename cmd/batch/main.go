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
	"github.com/contractlens/ragcheck/internal/models"
	"github.com/contractlens/ragcheck/internal/setup"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Input JSONL file, or '-' for stdin")
	output := flag.String("output", "", "Output file, defaults to stdout")
	format := flag.String("format", "jsonl", "Output file format. Supported formats: 'jsonl', 'summary'")
	summary := flag.String("summary", "", "Optional separate summary file")
	continueOnError := flag.Bool("continue-on-error", true, "Continue past malformed input lines")
	dryRun := flag.Bool("dry-run", false, "Validate input without evaluating")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Open input file
	var inputFile io.Reader
	if *input == "-" {
		inputFile = os.Stdin
		log.Info().Msg("Reading from stdin")
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to open input file")
		}
		defer f.Close()
		inputFile = f
		log.Info().Str("file", *input).Msg("Reading input file")
	}

	// Read records
	reader := batch.NewReader(inputFile, deps.Logger)

	var requests []models.ScoreRequest
	badLines := 0
	for record := range reader.ReadAll(ctx) {
		if record.Error != nil {
			badLines++
			log.Warn().Err(record.Error).Msg("Skipping malformed input line")
			if !*continueOnError {
				log.Fatal().Int("line", record.LineNumber).Msg("Aborting on malformed input")
			}
			continue
		}
		requests = append(requests, record.Request)
	}

	log.Info().Int("total", len(requests)).Int("malformed", badLines).Msg("Input file parsed")

	if *dryRun {
		if badLines > 0 {
			os.Exit(1)
		}
		log.Info().Msg("Input is valid")
		return
	}

	pairs := make([]models.QAPair, len(requests))
	answers := make([]string, len(requests))
	for i, req := range requests {
		pairs[i] = models.QAPair{Question: req.Question, Answer: req.Reference}
		answers[i] = req.Generated
	}

	report, err := deps.Orchestrator.EvaluateAnswers(ctx, pairs, answers)
	if err != nil {
		log.Error().Err(err).Msg("Evaluation aborted")
	}
	if report == nil {
		os.Exit(1)
	}

	// Open output file
	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
		log.Info().Msg("Writing to stdout")
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
		log.Info().Str("file", *output).Msg("Writing to output file")
	}

	writer, err := batch.NewWriter(outputFile, *format, deps.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create writer")
	}

	if err := writer.WriteReport(report); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	if *summary != "" {
		f, err := os.Create(*summary)
		if err != nil {
			log.Fatal().Err(err).Str("file", *summary).Msg("Failed to create summary file")
		}
		defer f.Close()
		if err := writer.WriteSummaryTo(f, report); err != nil {
			log.Fatal().Err(err).Msg("Failed to write summary")
		}
	}

	log.Info().
		Int("scored", report.Scored).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("duration", time.Since(startTime)).
		Msg("Batch evaluation complete")
}
