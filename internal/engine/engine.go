// Package engine composes marker, browser and filter-set eligibility into a
// single annotation per test.
package engine

import (
	"go.uber.org/zap"

	"stf/internal/domain"
	"stf/internal/resolver"
	"stf/internal/tree"
)

// Entry is one annotated node in document order
type Entry struct {
	Index      int
	ID         string
	Title      string
	Kind       domain.NodeKind
	Depth      int
	Annotation domain.Annotation
	Hidden     bool
}

// Label is the title as the reporter shows it
func (e Entry) Label() string {
	if e.Annotation == domain.SkippedBrowser {
		return e.Title + " " + domain.SkippedBrowserLabel
	}
	return e.Title
}

// Annotated is the result of Compute. It is immutable.
type Annotated struct {
	Tree    *tree.Tree
	Context domain.RunContext
	Policy  Policy

	entries []Entry
	pos     map[string]int
}

// Entries returns every non-root node, hidden ones included
func (a *Annotated) Entries() []Entry {
	return a.entries
}

// Visible returns the entries the reporter shows. showHidden toggles
// filtered-out tests back into view.
func (a *Annotated) Visible(showHidden bool) []Entry {
	if showHidden {
		return a.entries
	}
	out := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// Tests returns the test entries in document order
func (a *Annotated) Tests() []Entry {
	out := make([]Entry, 0, len(a.Tree.Tests()))
	for _, e := range a.entries {
		if e.Kind == domain.KindTest {
			out = append(out, e)
		}
	}
	return out
}

// Annotation looks up the annotation of a node by id
func (a *Annotated) Annotation(id string) (domain.Annotation, bool) {
	p, ok := a.pos[id]
	if !ok {
		return 0, false
	}
	return a.entries[p].Annotation, true
}

// WithAnnotation returns the ids of tests carrying ann
func (a *Annotated) WithAnnotation(ann domain.Annotation) []string {
	var ids []string
	for _, e := range a.entries {
		if e.Kind == domain.KindTest && e.Annotation == ann {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Included returns the ids of tests that count toward the summary
func (a *Annotated) Included() []string {
	return a.WithAnnotation(domain.Included)
}

// Engine computes annotations under one policy
type Engine struct {
	policy Policy
	logger *zap.Logger
}

// New creates an Engine. A nil logger discards warnings.
func New(policy Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{policy: policy, logger: logger}
}

// Policy returns the engine's policy
func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute annotates every node of t for rc using PolicyIntersect.
func Compute(t *tree.Tree, rc domain.RunContext) (*Annotated, error) {
	return New(PolicyIntersect, nil).Compute(t, rc)
}

// Compute annotates every node of t for rc. It is deterministic in the tree
// shape, markers, browser and filter set. Per test, highest precedence first:
// browser-ineligible, marker-ineligible, outside an active filter, included.
func (e *Engine) Compute(t *tree.Tree, rc domain.RunContext) (*Annotated, error) {
	markers, err := resolver.ResolveMarkers(t)
	if err != nil {
		return nil, err
	}
	if rc.Browser != "" && !resolver.KnownBrowser(rc.Browser) {
		e.logger.Warn("unknown browser, treating every test as compatible", zap.String("browser", rc.Browser))
	}

	var scope func(string) bool
	if e.policy == PolicyFilterFirst && rc.Filter.Active() {
		scope = rc.Filter.Contains
	}
	eligible := markers.Eligibility(scope)

	a := &Annotated{
		Tree:    t,
		Context: domain.RunContext{RunID: rc.RunID, Browser: rc.Browser, Filter: rc.Filter.Clone()},
		Policy:  e.policy,
		entries: make([]Entry, 0, len(t.Preorder())),
		pos:     make(map[string]int, len(t.Preorder())),
	}
	ann := make([]domain.Annotation, t.Len())

	for _, i := range t.Tests() {
		switch {
		case !resolver.BrowserEligible(t, i, rc.Browser):
			ann[i] = domain.SkippedBrowser
		case !eligible[i]:
			ann[i] = domain.ExcludedByMarker
		case rc.Filter.Active() && !rc.Filter.Contains(t.ID(i)):
			ann[i] = domain.ExcludedByFilter
		default:
			ann[i] = domain.Included
		}
	}

	hidden := e.suiteVisibility(t, rc, ann)

	for _, i := range t.Preorder() {
		if t.Kind(i) == domain.KindSuite {
			ann[i] = suiteAnnotation(t, i, rc, ann)
		}
		a.pos[t.ID(i)] = len(a.entries)
		a.entries = append(a.entries, Entry{
			Index:      i,
			ID:         t.ID(i),
			Title:      t.Node(i).Title,
			Kind:       t.Kind(i),
			Depth:      t.Depth(i),
			Annotation: ann[i],
			Hidden:     hidden[i],
		})
	}
	return a, nil
}

// suiteVisibility hides filtered tests and every suite left without a
// visible descendant. Nothing is hidden while no filter is active.
func (e *Engine) suiteVisibility(t *tree.Tree, rc domain.RunContext, ann []domain.Annotation) []bool {
	hidden := make([]bool, t.Len())
	if !rc.Filter.Active() {
		return hidden
	}

	visibleBelow := make([]bool, t.Len())
	for _, i := range t.Tests() {
		if ann[i].HiddenByDefault() {
			hidden[i] = true
			continue
		}
		for p := t.Parent(i); p != domain.NoParent; p = t.Parent(p) {
			if visibleBelow[p] {
				break
			}
			visibleBelow[p] = true
		}
	}
	for _, i := range t.Preorder() {
		if t.Kind(i) == domain.KindSuite && !visibleBelow[i] {
			hidden[i] = true
		}
	}
	return hidden
}

// suiteAnnotation derives a display annotation for suite i from its own
// browser list and the annotations of its tests.
func suiteAnnotation(t *tree.Tree, i int, rc domain.RunContext, ann []domain.Annotation) domain.Annotation {
	if !resolver.BrowserEligible(t, i, rc.Browser) {
		return domain.SkippedBrowser
	}
	best := domain.ExcludedByMarker
	for _, d := range t.Descendants(i) {
		if t.Kind(d) != domain.KindTest {
			continue
		}
		switch ann[d] {
		case domain.Included:
			return domain.Included
		case domain.ExcludedByFilter:
			best = domain.ExcludedByFilter
		}
	}
	return best
}
