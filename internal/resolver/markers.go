// Package resolver computes the two marker-independent eligibility views of a
// spec tree: exclusivity markers (only/skip) and browser compatibility.
package resolver

import (
	"stf/internal/domain"
	"stf/internal/tree"
)

// MarkerSet holds the resolved only-closures and skip propagation of one tree
type MarkerSet struct {
	tree     *tree.Tree
	closures map[int][]int // only-marked node -> tests it covers
	order    []int         // only-marked nodes in document order
	skipped  []bool
}

// ResolveMarkers runs both marker passes over t.
func ResolveMarkers(t *tree.Tree) (*MarkerSet, error) {
	if t == nil {
		return nil, &domain.StructuralError{Reason: domain.ReasonEmpty, Index: tree.Root, Detail: "nil tree"}
	}

	m := &MarkerSet{
		tree:     t,
		closures: make(map[int][]int),
		skipped:  make([]bool, t.Len()),
	}

	// pass 1: only-closures
	for _, i := range t.Preorder() {
		if t.Marker(i) != domain.MarkerOnly {
			continue
		}
		m.order = append(m.order, i)
		if t.Kind(i) == domain.KindTest {
			m.closures[i] = []int{i}
			continue
		}
		var covered []int
		for _, d := range t.Descendants(i) {
			if t.Kind(d) == domain.KindTest {
				covered = append(covered, d)
			}
		}
		m.closures[i] = covered
	}

	// pass 2: skip propagates top-down; preorder visits parents first
	m.skipped[tree.Root] = t.Marker(tree.Root) == domain.MarkerSkip
	for _, i := range t.Preorder() {
		m.skipped[i] = t.Marker(i) == domain.MarkerSkip || m.skipped[t.Parent(i)]
	}
	return m, nil
}

// HasOnly reports whether any node carries an only marker
func (m *MarkerSet) HasOnly() bool {
	return len(m.order) > 0
}

// Skipped reports whether node i is disabled by its own or an ancestor's skip
func (m *MarkerSet) Skipped(i int) bool {
	return m.skipped[i]
}

// Eligibility returns marker eligibility per node index.
//
// A nil scope applies every only marker. A non-nil scope only honours only
// markers whose closure reaches a test inside the scope; when none does the
// tree is treated as having no only markers at all.
func (m *MarkerSet) Eligibility(scope func(id string) bool) []bool {
	n := m.tree.Len()
	inClosure := make([]bool, n)
	honoured := 0
	for _, marker := range m.order {
		covered := m.closures[marker]
		if scope != nil && !m.reaches(covered, scope) {
			continue
		}
		honoured++
		for _, i := range covered {
			inClosure[i] = true
		}
	}

	eligible := make([]bool, n)
	for _, i := range m.tree.Tests() {
		onlyEligible := honoured == 0 || inClosure[i]
		eligible[i] = onlyEligible && !m.skipped[i]
	}

	// a suite is eligible while it still holds an eligible test
	tests := m.tree.Tests()
	for k := len(tests) - 1; k >= 0; k-- {
		i := tests[k]
		if !eligible[i] {
			continue
		}
		for p := m.tree.Parent(i); p != domain.NoParent; p = m.tree.Parent(p) {
			eligible[p] = true
		}
	}
	return eligible
}

func (m *MarkerSet) reaches(covered []int, scope func(id string) bool) bool {
	for _, i := range covered {
		if scope(m.tree.ID(i)) {
			return true
		}
	}
	return false
}

// EligibleByMarkers returns (only-eligible AND NOT skip-disabled) per node index.
func EligibleByMarkers(t *tree.Tree) ([]bool, error) {
	m, err := ResolveMarkers(t)
	if err != nil {
		return nil, err
	}
	return m.Eligibility(nil), nil
}
