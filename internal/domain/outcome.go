package domain

import "strings"

// Outcome is the recorded execution result of a single test
type Outcome int

const (
	// NotYetRun is the outcome of a test the engine has not reported yet.
	NotYetRun Outcome = iota
	// Passed means the test body completed without failure.
	Passed
	// Failed means the test body reported a failure.
	Failed
)

// String returns the engine spelling of the outcome
func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// ParseOutcome maps an engine state string onto an Outcome.
// Anything that is not passed or failed is treated as not yet run.
func ParseOutcome(state string) Outcome {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "passed", "pass":
		return Passed
	case "failed", "fail":
		return Failed
	default:
		return NotYetRun
	}
}
