package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stf/internal/cloud"
	"stf/internal/domain"
	"stf/internal/engine"
	"stf/internal/storage"
	"stf/internal/tree"
	"stf/internal/tree/treetest"
)

func apply(t *testing.T, s *Session, events ...Event) View {
	t.Helper()
	var v View
	var err error
	for _, ev := range events {
		v, err = s.Apply(context.Background(), ev)
		require.NoError(t, err, "apply %T", ev)
	}
	return v
}

func recordAll(outcomes map[string]domain.Outcome) []Event {
	var events []Event
	for _, id := range []string{"t1", "t2", "t3", "s1 t4"} {
		if o, ok := outcomes[id]; ok {
			events = append(events, OutcomeRecorded{ID: id, Outcome: o})
		}
	}
	return events
}

func TestSession_ScenarioA(t *testing.T) {
	s := New(cloud.NewStore(nil, nil), nil, nil)
	tr := treetest.NestedSuites(t)

	// first visit without a run id records every outcome
	v := apply(t, s, SpecLoaded{Tree: tr, Browser: "chrome"})
	v = apply(t, s, recordAll(treetest.NestedSuitesOutcomes())...)
	assert.Equal(t, 2, v.Summary.Pass)
	assert.Equal(t, 2, v.Summary.Fail)

	// filtered visit for run 123
	apply(t, s, SpecLoaded{Tree: tr, RunID: "123", Browser: "chrome"})
	v = apply(t, s, FilterUpdated{RunID: "123", IDs: []string{"t2"}})
	v = apply(t, s, recordAll(treetest.NestedSuitesOutcomes())...)
	assert.Equal(t, 0, v.Summary.Pass)
	assert.Equal(t, 1, v.Summary.Fail)
	assert.Equal(t, 0, v.Summary.Pending)
	assert.Equal(t, "1 / 4 tests", v.Summary.Badge())
	assert.Equal(t, []string{"t2"}, v.Annotated.Included())

	// dismiss reclassifies the recorded outcomes without re-running
	v = apply(t, s, FilterDismissed{RunID: "123"})
	assert.Equal(t, 2, v.Summary.Pass)
	assert.Equal(t, 2, v.Summary.Fail)
	assert.Equal(t, "4 / 4 tests", v.Summary.Badge())

	// a new set for the nested test
	v = apply(t, s, FilterUpdated{RunID: "123", IDs: []string{"s1 t4"}})
	assert.Equal(t, 0, v.Summary.Pass)
	assert.Equal(t, 1, v.Summary.Fail)
	assert.Equal(t, []string{"s1 t4"}, v.Annotated.Included())
}

func TestSession_StaleRunIDIsNoop(t *testing.T) {
	ctx := context.Background()
	store := cloud.NewStore(nil, nil)
	s := New(store, nil, nil)

	before := apply(t, s,
		SpecLoaded{Tree: treetest.NestedSuites(t), RunID: "123", Browser: "chrome"},
		FilterUpdated{RunID: "123", IDs: []string{"t2"}},
	)

	for _, ev := range []Event{
		FilterUpdated{RunID: "999", IDs: []string{"t1"}},
		FilterUpdated{RunID: "", IDs: []string{"t1"}},
		FilterDismissed{RunID: "999"},
	} {
		after, err := s.Apply(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, before.Annotated.Included(), after.Annotated.Included())
	}

	stale, err := store.Get(ctx, "999")
	require.NoError(t, err)
	assert.False(t, stale.Active())

	kept, err := store.Get(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, kept.IDs())
}

func TestSession_EventsBeforeLoad(t *testing.T) {
	ctx := context.Background()
	s := New(cloud.NewStore(nil, nil), nil, nil)

	_, err := s.Apply(ctx, OutcomeRecorded{ID: "t1", Outcome: domain.Passed})
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = s.Apply(ctx, PageReinitialized{Tree: treetest.NestedSuites(t)})
	assert.ErrorIs(t, err, ErrNotLoaded)

	v, err := s.Apply(ctx, FilterUpdated{RunID: "123", IDs: []string{"t1"}})
	require.NoError(t, err)
	assert.Nil(t, v.Annotated)

	_, err = s.Apply(ctx, SpecLoaded{})
	assert.True(t, domain.IsStructural(err))
}

func TestSession_UnknownOutcomeIDIgnored(t *testing.T) {
	s := New(cloud.NewStore(nil, nil), nil, nil)
	v := apply(t, s,
		SpecLoaded{Tree: treetest.NestedSuites(t), Browser: "chrome"},
		OutcomeRecorded{ID: "t9", Outcome: domain.Failed},
		OutcomeRecorded{ID: "s1", Outcome: domain.Failed},
	)
	assert.Equal(t, 0, v.Summary.Fail)
	assert.Empty(t, s.Outcomes())
}

func TestSession_CrossDomainPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.json")

	before := New(cloud.NewStore(storage.NewJSONBackend(path), nil), nil, nil)
	original := apply(t, before,
		SpecLoaded{Tree: treetest.DomainChange(t), RunID: "123", Browser: "chrome"},
		FilterUpdated{RunID: "123", IDs: []string{"t2", "t3"}},
	)

	// the reloaded page builds a new store and tree; nothing is resupplied
	after := New(cloud.NewStore(storage.NewJSONBackend(path), nil), nil, nil)
	reloaded := apply(t, after,
		SpecLoaded{Tree: treetest.DomainChange(t), RunID: "123", Browser: "chrome"},
		OutcomeRecorded{ID: "t2", Outcome: domain.Failed},
		OutcomeRecorded{ID: "t3", Outcome: domain.Failed},
	)

	assert.Empty(t, cmp.Diff(original.Annotated.Entries(), reloaded.Annotated.Entries()))
	assert.Equal(t, 2, reloaded.Summary.Fail)
	assert.Equal(t, "2 / 3 tests", reloaded.Summary.Badge())
}

func TestSession_PageReinitialized(t *testing.T) {
	s := New(cloud.NewStore(nil, nil), nil, nil)
	v := apply(t, s,
		SpecLoaded{Tree: treetest.DomainChange(t), RunID: "123", Browser: "chrome"},
		FilterUpdated{RunID: "123", IDs: []string{"t2", "t3"}},
		OutcomeRecorded{ID: "t2", Outcome: domain.Failed},
	)
	require.Equal(t, 1, v.Summary.Fail)

	v = apply(t, s, PageReinitialized{Tree: treetest.DomainChange(t)})
	assert.Equal(t, []string{"t2", "t3"}, v.Annotated.Included())
	assert.Equal(t, "123", v.Context.RunID)
	assert.Equal(t, "chrome", v.Context.Browser)
	assert.Equal(t, 0, v.Summary.Fail)
	assert.Equal(t, 2, v.Summary.Pending)

	v = apply(t, s,
		OutcomeRecorded{ID: "t2", Outcome: domain.Failed},
		OutcomeRecorded{ID: "t3", Outcome: domain.Failed},
	)
	assert.Equal(t, 2, v.Summary.Fail)
}

func TestSession_RunChangeDiscardsContext(t *testing.T) {
	s := New(cloud.NewStore(nil, nil), nil, nil)
	apply(t, s,
		SpecLoaded{Tree: treetest.NestedSuites(t), RunID: "123", Browser: "chrome"},
		FilterUpdated{RunID: "123", IDs: []string{"t2"}},
	)

	v := apply(t, s, SpecLoaded{Tree: treetest.NestedSuites(t), RunID: "456", Browser: "chrome"})
	assert.False(t, v.Context.Filtered())
	assert.Len(t, v.Annotated.Included(), 4)

	// the old run's set is still in the store for a later visit
	v = apply(t, s, SpecLoaded{Tree: treetest.NestedSuites(t), RunID: "123", Browser: "chrome"})
	assert.Equal(t, []string{"t2"}, v.Annotated.Included())
}

func TestSession_SkipAndOnlyFilterFirst(t *testing.T) {
	s := New(cloud.NewStore(nil, nil), engine.New(engine.PolicyFilterFirst, nil), nil)
	outcomes := recordAll(treetest.SkipAndOnlyOutcomes())
	load := SpecLoaded{Tree: treetest.SkipAndOnly(t), RunID: "123", Browser: "chrome"}

	steps := []struct {
		name     string
		ids      []string
		included []string
		summary  domain.Summary
	}{
		{"only is respected", []string{"t1", "t3"}, []string{"t1"},
			domain.Summary{Fail: 1, Included: 1, Total: 4, ExcludedByMarker: 3}},
		{"only outside the set is ignored", []string{"t3"}, []string{"t3"},
			domain.Summary{Fail: 1, Included: 1, Total: 4, ExcludedByMarker: 1, ExcludedByFilter: 2}},
		{"skip is respected", []string{"t2", "t3"}, []string{"t3"},
			domain.Summary{Fail: 1, Included: 1, Total: 4, ExcludedByMarker: 1, ExcludedByFilter: 2}},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			apply(t, s, load, FilterUpdated{RunID: "123", IDs: step.ids})
			v := apply(t, s, outcomes...)
			assert.Equal(t, step.included, v.Annotated.Included())
			assert.Equal(t, step.summary, v.Summary)
			apply(t, s, FilterDismissed{RunID: "123"})
		})
	}
}

func TestSession_ScenarioBIntersect(t *testing.T) {
	s := New(cloud.NewStore(nil, nil), nil, nil)
	v := apply(t, s, SpecLoaded{Tree: treetest.SkipAndOnly(t), RunID: "123", Browser: "chrome"})
	assert.Equal(t, []string{"t1"}, v.Annotated.Included())

	v = apply(t, s, FilterUpdated{RunID: "123", IDs: []string{"t1", "t3"}})
	assert.Equal(t, []string{"t1"}, v.Annotated.Included())
}

func TestSession_StructuralTreeRejected(t *testing.T) {
	_, err := tree.FromNodes([]domain.Node{{Title: "spec", Kind: domain.KindTest, Parent: domain.NoParent}})
	require.Error(t, err)
	assert.True(t, domain.IsStructural(err))
}

func TestSession_ResyncPicksUpOtherWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "filters.json")

	s := New(cloud.NewStore(storage.NewJSONBackend(path), nil), nil, nil)
	apply(t, s, SpecLoaded{Tree: treetest.NestedSuites(t), RunID: "123", Browser: "electron"})

	_, changed, err := s.Resync(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	// another process scopes the run
	other := cloud.NewStore(storage.NewJSONBackend(path), nil)
	_, err = other.Set(ctx, "123", []string{"s1 t4"})
	require.NoError(t, err)

	v, changed, err := s.Resync(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "1 / 4 tests", v.Summary.Badge())

	_, err = other.Dismiss(ctx, "123")
	require.NoError(t, err)

	v, changed, err = s.Resync(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, v.Context.Filter.Active())
	assert.Equal(t, "4 / 4 tests", v.Summary.Badge())
}

func TestSession_ResyncWithoutRun(t *testing.T) {
	s := New(cloud.NewStore(nil, nil), nil, nil)
	_, changed, err := s.Resync(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}
