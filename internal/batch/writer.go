package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/models"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

// Writer emits evaluation output in the selected format. JSONL writes
// one record per line as they arrive; summary writes aggregate numbers
// once the report is final.
type Writer struct {
	out    io.Writer
	format string
	logger *zerolog.Logger
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case FormatJSONL, FormatSummary:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Writer{
		out:    out,
		format: format,
		logger: logger,
	}, nil
}

// WriteReport writes the whole report in the configured format.
func (w *Writer) WriteReport(report *models.EvaluationReport) error {
	if w.format == FormatSummary {
		return w.writeSummary(report)
	}
	for _, record := range report.Records {
		if err := w.writeRecord(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaryTo writes the aggregate block to a separate writer, used
// for the optional side-car summary file next to a JSONL output.
func (w *Writer) WriteSummaryTo(out io.Writer, report *models.EvaluationReport) error {
	side := &Writer{out: out, format: FormatSummary, logger: w.logger}
	return side.writeSummary(report)
}

func (w *Writer) writeRecord(record models.EvaluationRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record for %q: %w", record.Question, err)
	}
	if _, err := fmt.Fprintf(w.out, "%s\n", line); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

func (w *Writer) writeSummary(report *models.EvaluationReport) error {
	fmt.Fprintf(w.out, "Evaluated %d pairs: %d scored, %d failed, %d skipped\n",
		len(report.Records)+report.Skipped, report.Scored, report.Failed, report.Skipped)

	if report.AverageBLEU != nil {
		fmt.Fprintf(w.out, "Average BLEU:          %6.2f\n", *report.AverageBLEU)
	} else {
		fmt.Fprintln(w.out, "Average BLEU:          n/a")
	}
	if report.AverageHallucination != nil {
		fmt.Fprintf(w.out, "Average hallucination: %6.3f\n", *report.AverageHallucination)
	} else {
		fmt.Fprintln(w.out, "Average hallucination: n/a")
	}

	for _, record := range report.Records {
		if record.Failed {
			fmt.Fprintf(w.out, "FAILED %q: %s\n", record.Question, record.FailureReason)
		}
	}
	return nil
}

func (w *Writer) Close() error {
	if closer, ok := w.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
