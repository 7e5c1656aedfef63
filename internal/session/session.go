// Package session reduces the event stream of one hosting page into the
// annotated tree and summary the reporter renders. Events are applied one at
// a time; each is fully processed before Apply returns.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stf/internal/aggregate"
	"stf/internal/cloud"
	"stf/internal/domain"
	"stf/internal/engine"
	"stf/internal/tree"
)

// ErrNotLoaded is returned for events that need a tree before any SpecLoaded
var ErrNotLoaded = errors.New("no spec loaded")

// View is what the reporter renders after an event
type View struct {
	Annotated *engine.Annotated
	Summary   domain.Summary
	Context   domain.RunContext
}

// Session holds the state of one hosting page
type Session struct {
	store    *cloud.Store
	engine   *engine.Engine
	logger   *zap.Logger
	tree     *tree.Tree
	run      domain.RunContext
	outcomes map[string]domain.Outcome
	view     View
}

// New creates a Session reading and writing filter sets through store.
func New(store *cloud.Store, eng *engine.Engine, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eng == nil {
		eng = engine.New(engine.PolicyIntersect, logger)
	}
	return &Session{
		store:    store,
		engine:   eng,
		logger:   logger,
		outcomes: make(map[string]domain.Outcome),
	}
}

// View returns the result of the last applied event
func (s *Session) View() View {
	return s.view
}

// Outcomes returns a copy of the outcomes recorded for the current tree
func (s *Session) Outcomes() map[string]domain.Outcome {
	out := make(map[string]domain.Outcome, len(s.outcomes))
	for id, o := range s.outcomes {
		out[id] = o
	}
	return out
}

// Apply reduces one event. Structural errors and store failures are
// returned; stale run ids and unknown test ids are absorbed as no-ops.
func (s *Session) Apply(ctx context.Context, ev Event) (View, error) {
	switch ev := ev.(type) {
	case SpecLoaded:
		return s.load(ctx, ev)
	case PageReinitialized:
		return s.reinitialize(ctx, ev)
	case OutcomeRecorded:
		return s.record(ev)
	case FilterUpdated:
		return s.updateFilter(ctx, ev)
	case FilterDismissed:
		return s.dismissFilter(ctx, ev)
	default:
		return s.view, fmt.Errorf("unsupported event %T", ev)
	}
}

func (s *Session) load(ctx context.Context, ev SpecLoaded) (View, error) {
	if ev.Tree == nil {
		return s.view, &domain.StructuralError{Reason: domain.ReasonEmpty, Index: tree.Root, Detail: "spec loaded without tree"}
	}
	if s.run.RunID != ev.RunID {
		s.logger.Debug("run context replaced", zap.String("from", s.run.RunID), zap.String("to", ev.RunID))
	}

	filter, err := s.store.Get(ctx, ev.RunID)
	if err != nil {
		return s.view, err
	}
	s.tree = ev.Tree
	s.run = domain.RunContext{RunID: ev.RunID, Browser: ev.Browser, Filter: filter}
	s.outcomes = make(map[string]domain.Outcome)
	return s.recompute()
}

func (s *Session) reinitialize(ctx context.Context, ev PageReinitialized) (View, error) {
	if s.tree == nil {
		return s.view, ErrNotLoaded
	}
	if ev.Tree == nil {
		return s.view, &domain.StructuralError{Reason: domain.ReasonEmpty, Index: tree.Root, Detail: "reinitialized without tree"}
	}

	filter, err := s.store.Get(ctx, s.run.RunID)
	if err != nil {
		return s.view, err
	}
	s.logger.Debug("page reinitialized",
		zap.String("run_id", s.run.RunID),
		zap.Int("filter_ids", len(filter)))

	s.tree = ev.Tree
	s.run.Filter = filter
	s.outcomes = make(map[string]domain.Outcome)
	return s.recompute()
}

func (s *Session) record(ev OutcomeRecorded) (View, error) {
	if s.tree == nil {
		return s.view, ErrNotLoaded
	}
	i, ok := s.tree.Lookup(ev.ID)
	if !ok || s.tree.Kind(i) != domain.KindTest {
		s.logger.Warn("outcome for unknown test", zap.String("id", ev.ID))
		return s.view, nil
	}
	s.outcomes[ev.ID] = ev.Outcome
	s.view.Summary = aggregate.Aggregate(s.view.Annotated, s.outcomes)
	return s.view, nil
}

func (s *Session) updateFilter(ctx context.Context, ev FilterUpdated) (View, error) {
	if !s.current(ev.RunID) {
		return s.view, nil
	}
	if _, err := s.store.Set(ctx, ev.RunID, ev.IDs); err != nil {
		return s.view, err
	}
	s.run.Filter = domain.NewFilterSet(ev.IDs...)
	return s.recompute()
}

func (s *Session) dismissFilter(ctx context.Context, ev FilterDismissed) (View, error) {
	if !s.current(ev.RunID) {
		return s.view, nil
	}
	if _, err := s.store.Dismiss(ctx, ev.RunID); err != nil {
		return s.view, err
	}
	s.run.Filter = domain.FilterSet{}
	return s.recompute()
}

// current reports whether runID addresses the active run context
func (s *Session) current(runID string) bool {
	if s.tree == nil || runID == "" || runID != s.run.RunID {
		s.logger.Warn("ignoring filter event for inactive run",
			zap.String("run_id", runID),
			zap.String("active_run_id", s.run.RunID))
		return false
	}
	return true
}

func (s *Session) recompute() (View, error) {
	a, err := s.engine.Compute(s.tree, s.run)
	if err != nil {
		return s.view, err
	}
	s.view = View{
		Annotated: a,
		Summary:   aggregate.Aggregate(a, s.outcomes),
		Context:   a.Context,
	}
	return s.view, nil
}

// Resync rereads the persisted set of the active run and applies it when it
// differs from what the store last held. It returns whether anything changed.
func (s *Session) Resync(ctx context.Context) (View, bool, error) {
	if s.tree == nil || s.run.RunID == "" {
		return s.view, false, nil
	}
	fs, changed, err := s.store.Refresh(ctx, s.run.RunID)
	if err != nil {
		return s.view, false, err
	}
	if !changed && fs.Equal(s.run.Filter) {
		return s.view, false, nil
	}

	var ev Event = FilterUpdated{RunID: s.run.RunID, IDs: fs.IDs()}
	if !fs.Active() {
		ev = FilterDismissed{RunID: s.run.RunID}
	}
	view, err := s.Apply(ctx, ev)
	return view, err == nil, err
}
