// Package parser reads the outcome stream a test engine emits while it runs
// a spec and turns it into records the session understands.
package parser

import (
	"io"

	"stf/internal/domain"
)

// RecordKind tells apart the records found in an outcome stream
type RecordKind int

const (
	// RecordOutcome carries the result of one test.
	RecordOutcome RecordKind = iota
	// RecordReinit marks a cross-origin reload of the hosting page.
	RecordReinit
)

// Record is one meaningful line of an outcome stream
type Record struct {
	Kind    RecordKind
	Line    int
	ID      string
	Outcome domain.Outcome
}

// Parser parses an outcome stream into records
type Parser interface {
	Parse(r io.Reader) ([]Record, error)
}

// Counts tallies passed and failed outcomes, last result per id winning.
func Counts(records []Record) (passed, failed int) {
	last := make(map[string]domain.Outcome)
	for _, rec := range records {
		switch rec.Kind {
		case RecordReinit:
			last = make(map[string]domain.Outcome)
		case RecordOutcome:
			last[rec.ID] = rec.Outcome
		}
	}
	for _, o := range last {
		switch o {
		case domain.Passed:
			passed++
		case domain.Failed:
			failed++
		}
	}
	return passed, failed
}
