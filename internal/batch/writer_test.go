package batch

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/contractlens/ragcheck/internal/models"
)

func sampleReport() *models.EvaluationReport {
	report := &models.EvaluationReport{
		Records: []models.EvaluationRecord{
			{Question: "q1", Generated: "g1", Reference: "r1", BLEU: 80, HallucinationScore: 0.1},
			{Question: "q2", Failed: true, FailureReason: "scoring entailment: model offline"},
		},
		Skipped: 1,
	}
	report.Finalize()
	return report
}

func TestWriter_UnsupportedFormat(t *testing.T) {
	if _, err := NewWriter(&bytes.Buffer{}, "xml", newTestLogger()); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriter_JSONL(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, FormatJSONL, newTestLogger())
	if err != nil {
		t.Fatalf("NewWriter() failed: %v", err)
	}

	if err := writer.WriteReport(sampleReport()); err != nil {
		t.Fatalf("WriteReport() failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}

	var first models.EvaluationRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if first.Question != "q1" || first.BLEU != 80 {
		t.Errorf("unexpected first record: %+v", first)
	}
}

func TestWriter_Summary(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, FormatSummary, newTestLogger())
	if err != nil {
		t.Fatalf("NewWriter() failed: %v", err)
	}

	if err := writer.WriteReport(sampleReport()); err != nil {
		t.Fatalf("WriteReport() failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "1 scored, 1 failed, 1 skipped") {
		t.Errorf("summary is missing the counts: %s", out)
	}
	if !strings.Contains(out, "80.00") {
		t.Errorf("summary is missing the average bleu: %s", out)
	}
	if !strings.Contains(out, "model offline") {
		t.Errorf("summary is missing the failure line: %s", out)
	}
}

func TestWriter_SummaryEmptyReport(t *testing.T) {
	report := &models.EvaluationReport{}
	report.Finalize()

	var buf bytes.Buffer
	writer, _ := NewWriter(&buf, FormatSummary, newTestLogger())
	if err := writer.WriteReport(report); err != nil {
		t.Fatalf("WriteReport() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "n/a") {
		t.Errorf("empty report should print n/a averages: %s", buf.String())
	}
}
