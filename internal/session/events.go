package session

import (
	"stf/internal/domain"
	"stf/internal/tree"
)

// Event is the closed set of inputs the reducer accepts
type Event interface {
	event()
}

// SpecLoaded delivers a freshly built tree for a visit. A different RunID
// discards the previous run context.
type SpecLoaded struct {
	Tree    *tree.Tree
	RunID   string
	Browser string
}

// OutcomeRecorded reports the result of one test
type OutcomeRecorded struct {
	ID      string
	Outcome domain.Outcome
}

// FilterUpdated replaces the inclusion set of a run
type FilterUpdated struct {
	RunID string
	IDs   []string
}

// FilterDismissed clears the inclusion set of a run
type FilterDismissed struct {
	RunID string
}

// PageReinitialized delivers the tree rebuilt after a cross-origin reload.
// The run id and browser carry over; the filter is reread from the store.
type PageReinitialized struct {
	Tree *tree.Tree
}

func (SpecLoaded) event()        {}
func (OutcomeRecorded) event()   {}
func (FilterUpdated) event()     {}
func (FilterDismissed) event()   {}
func (PageReinitialized) event() {}
