// Package transcript turns a loosely structured Q/A document into ordered
// evaluation pairs.
package transcript

import (
	"strings"

	"github.com/contractlens/ragcheck/internal/models"
)

// Parser splits a line-oriented transcript into question/answer pairs.
// A question line starts with QuestionMarker and contains Separator; the
// text after the first separator is the question. Answer lines work the
// same way with AnswerMarker. Markers are case-sensitive.
type Parser struct {
	QuestionMarker string
	AnswerMarker   string
	Separator      string
}

// NewParser returns a parser with the conventional "Q:" / "A:" markers.
func NewParser() *Parser {
	return &Parser{
		QuestionMarker: "Q",
		AnswerMarker:   "A",
		Separator:      ":",
	}
}

// Parse walks the transcript line by line with two states: waiting for a
// question and waiting for a matching answer. A new question line while an
// answer is still pending discards the pending question; it is never
// emitted. An answer line without a pending question, a blank line or any
// other malformed line is ignored. A trailing unanswered question yields no
// pair. Pairs are emitted in transcript order and always carry non-empty
// trimmed fields.
func (p *Parser) Parse(raw string) []models.QAPair {
	var pairs []models.QAPair
	var pending string
	havePending := false

	for line := range strings.Lines(raw) {
		line = strings.TrimSpace(line)

		if question, ok := p.content(line, p.QuestionMarker); ok {
			// Latest question wins; a dangling one is dropped.
			pending = question
			havePending = question != ""
			continue
		}

		if !havePending {
			continue
		}

		if answer, ok := p.content(line, p.AnswerMarker); ok && answer != "" {
			pairs = append(pairs, models.QAPair{Question: pending, Answer: answer})
			pending = ""
			havePending = false
		}
	}

	return pairs
}

// content returns the trimmed text after the marker and separator. The
// separator must directly follow the marker, so a line that merely starts
// with the marker's letter ("Quarterly: ...") does not match. Later
// separator occurrences stay part of the content.
func (p *Parser) content(line, marker string) (string, bool) {
	rest, ok := strings.CutPrefix(line, marker)
	if !ok {
		return "", false
	}
	rest, ok = strings.CutPrefix(rest, p.Separator)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
