// Package batch reads score requests from JSONL files and writes
// evaluation results back out as JSONL or a human-readable summary.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/models"
)

// InputRecord is one parsed line of the input file. Error is set when
// the line was not valid JSON; LineNumber is 1-based.
type InputRecord struct {
	Request    models.ScoreRequest
	LineNumber int
	Error      error
}

type Reader struct {
	source io.Reader
	logger *zerolog.Logger
}

func NewReader(source io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		source: source,
		logger: logger,
	}
}

// ReadAll streams the input line by line. Blank lines are skipped;
// malformed lines come through with Error set so the caller can decide
// whether to abort or continue.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	ch := make(chan InputRecord)

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(r.source)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}
			if err := json.Unmarshal([]byte(line), &record.Request); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
			} else if record.Request.Generated == "" || record.Request.Reference == "" {
				record.Error = fmt.Errorf("line %d: generated and reference are required", lineNumber)
			}

			select {
			case ch <- record:
			case <-ctx.Done():
				r.logger.Warn().Int("line", lineNumber).Msg("Reader stopped by cancellation")
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to read input")
		}
	}()

	return ch
}
