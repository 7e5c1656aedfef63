package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stf/internal/domain"
)

func TestStreamParser_ParseFile(t *testing.T) {
	records, err := NewStreamParser().ParseFile("../../testdata/results/test.ndjson")
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, Record{Kind: RecordOutcome, Line: 2, ID: "t1", Outcome: domain.Passed}, records[0])
	assert.Equal(t, "s1 t4", records[3].ID)
	assert.Equal(t, domain.Failed, records[3].Outcome)

	passed, failed := Counts(records)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 2, failed)
}

func TestStreamParser_Reinitialized(t *testing.T) {
	records, err := NewStreamParser().ParseFile("../../testdata/results/domain-change.ndjson")
	require.NoError(t, err)

	var kinds []RecordKind
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []RecordKind{RecordOutcome, RecordReinit, RecordOutcome, RecordOutcome}, kinds)

	// the outcome before the reload belongs to the discarded page
	passed, failed := Counts(records)
	assert.Equal(t, 0, passed)
	assert.Equal(t, 2, failed)
}

func TestStreamParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Record
	}{
		{
			name:  "string title and unknown state",
			input: `{"event":"test:after:run","title":"t9","state":"skipped"}`,
			expected: []Record{
				{Kind: RecordOutcome, Line: 1, ID: "t9", Outcome: domain.NotYetRun},
			},
		},
		{
			name:     "blank lines and other events",
			input:    "\n{\"event\":\"run:start\"}\n\n{\"event\":\"log\",\"title\":[\"x\"]}\n",
			expected: nil,
		},
		{
			name:  "nested title path",
			input: `{"event":"test:after:run","title":["outer","inner","leaf"],"state":"passed"}`,
			expected: []Record{
				{Kind: RecordOutcome, Line: 1, ID: "outer inner leaf", Outcome: domain.Passed},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := NewStreamParser().Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, records)
		})
	}
}

func TestStreamParser_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{\"event\":\"run:start\"}\nnot json"},
		{"missing title", `{"event":"test:after:run","state":"passed"}`},
		{"empty title", `{"event":"test:after:run","title":[],"state":"passed"}`},
		{"numeric segment", `{"event":"test:after:run","title":["s1",4],"state":"passed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStreamParser().Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidStream)
		})
	}
}

func TestStreamParser_MissingFile(t *testing.T) {
	_, err := NewStreamParser().ParseFile("/non/existent/results.ndjson")
	assert.Error(t, err)
}
