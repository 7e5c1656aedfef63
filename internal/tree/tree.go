// Package tree stores a spec's suite hierarchy as a flat arena. Nodes refer
// to their parent and children by index, and index 0 is always the root
// sentinel suite that stands for the spec file itself.
package tree

import (
	"fmt"

	"stf/internal/domain"
)

// Root is the arena index of the root sentinel
const Root = 0

// Tree is a validated, read-only arena of suites and tests
type Tree struct {
	nodes    []domain.Node
	byID     map[string]int
	preorder []int
	tests    []int
	depth    []int
}

// FromNodes validates an arena and derives missing ids.
// nodes[0] must be the root suite. The slice is copied.
func FromNodes(nodes []domain.Node) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, &domain.StructuralError{Reason: domain.ReasonEmpty, Index: Root}
	}

	owned := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		n.Children = append([]int(nil), n.Children...)
		n.Browsers = append([]string(nil), n.Browsers...)
		owned[i] = n
	}

	t := &Tree{nodes: owned}
	if err := t.checkLinks(); err != nil {
		return nil, err
	}
	if err := t.checkCycles(); err != nil {
		return nil, err
	}
	if err := t.walk(); err != nil {
		return nil, err
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) checkLinks() error {
	n := len(t.nodes)
	root := t.nodes[Root]
	if root.Parent != domain.NoParent {
		return &domain.StructuralError{Reason: domain.ReasonDangling, Index: Root, Detail: "root has a parent"}
	}
	if root.Kind != domain.KindSuite {
		return &domain.StructuralError{Reason: domain.ReasonKind, Index: Root, Detail: "root must be a suite"}
	}

	for i, node := range t.nodes {
		if node.Kind != domain.KindSuite && node.Kind != domain.KindTest {
			return &domain.StructuralError{Reason: domain.ReasonKind, Index: i}
		}
		if node.Kind == domain.KindTest && len(node.Children) > 0 {
			return &domain.StructuralError{Reason: domain.ReasonKind, Index: i, Detail: "test has children"}
		}
		if i != Root {
			if node.Parent < 0 || node.Parent >= n {
				return &domain.StructuralError{Reason: domain.ReasonDangling, Index: i, Detail: fmt.Sprintf("parent %d out of range", node.Parent)}
			}
			if !containsIndex(t.nodes[node.Parent].Children, i) {
				return &domain.StructuralError{Reason: domain.ReasonDangling, Index: i, Detail: fmt.Sprintf("parent %d does not list node as child", node.Parent)}
			}
		}
		for _, c := range node.Children {
			if c <= Root || c >= n {
				return &domain.StructuralError{Reason: domain.ReasonDangling, Index: i, Detail: fmt.Sprintf("child %d out of range", c)}
			}
			if t.nodes[c].Parent != i {
				return &domain.StructuralError{Reason: domain.ReasonDangling, Index: i, Detail: fmt.Sprintf("child %d points at parent %d", c, t.nodes[c].Parent)}
			}
		}
	}
	return nil
}

// checkCycles walks every parent chain; a chain longer than the arena loops.
func (t *Tree) checkCycles() error {
	for i := range t.nodes {
		steps := 0
		for cur := i; cur != Root; cur = t.nodes[cur].Parent {
			steps++
			if steps > len(t.nodes) {
				return &domain.StructuralError{Reason: domain.ReasonCycle, Index: i}
			}
		}
	}
	return nil
}

func (t *Tree) walk() error {
	t.depth = make([]int, len(t.nodes))
	seen := make([]bool, len(t.nodes))
	seen[Root] = true

	var visit func(i, depth int) error
	visit = func(i, depth int) error {
		for _, c := range t.nodes[i].Children {
			if seen[c] {
				return &domain.StructuralError{Reason: domain.ReasonCycle, Index: c, Detail: "node reached twice"}
			}
			seen[c] = true
			t.depth[c] = depth
			t.preorder = append(t.preorder, c)
			if t.nodes[c].IsTest() {
				t.tests = append(t.tests, c)
			}
			if err := visit(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(Root, 0); err != nil {
		return err
	}

	for i, ok := range seen {
		if !ok {
			return &domain.StructuralError{Reason: domain.ReasonDangling, Index: i, Detail: "unreachable from root"}
		}
	}
	return nil
}

func (t *Tree) index() error {
	t.byID = make(map[string]int, len(t.preorder))
	for _, i := range t.preorder {
		if t.nodes[i].ID == "" {
			t.nodes[i].ID = t.derivedID(i)
		}
		id := t.nodes[i].ID
		if prev, dup := t.byID[id]; dup {
			return &domain.StructuralError{
				Reason: domain.ReasonDuplicateID,
				Index:  i,
				Detail: fmt.Sprintf("%q already used by node %d", id, prev),
			}
		}
		t.byID[id] = i
	}
	return nil
}

func (t *Tree) derivedID(i int) string {
	var titles []string
	for cur := i; cur != Root; cur = t.nodes[cur].Parent {
		titles = append(titles, t.nodes[cur].Title)
	}
	for l, r := 0, len(titles)-1; l < r; l, r = l+1, r-1 {
		titles[l], titles[r] = titles[r], titles[l]
	}
	return domain.JoinID(titles...)
}

// Title is the spec title carried by the root sentinel
func (t *Tree) Title() string {
	return t.nodes[Root].Title
}

// Len returns the number of nodes including the root
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node at index i
func (t *Tree) Node(i int) domain.Node {
	n := t.nodes[i]
	n.Children = append([]int(nil), n.Children...)
	n.Browsers = append([]string(nil), n.Browsers...)
	return n
}

// Parent returns the parent index of i, or domain.NoParent for the root
func (t *Tree) Parent(i int) int {
	return t.nodes[i].Parent
}

// Kind returns the kind of node i
func (t *Tree) Kind(i int) domain.NodeKind {
	return t.nodes[i].Kind
}

// ID returns the id of node i. The root has an empty id.
func (t *Tree) ID(i int) string {
	return t.nodes[i].ID
}

// Marker returns the marker node i carries on itself
func (t *Tree) Marker(i int) domain.Marker {
	return t.nodes[i].Marker
}

// Browsers returns the allow-list declared on node i
func (t *Tree) Browsers(i int) []string {
	return t.nodes[i].Browsers
}

// Children returns the ordered child indices of i
func (t *Tree) Children(i int) []int {
	return t.nodes[i].Children
}

// Depth returns 0 for top-level nodes
func (t *Tree) Depth(i int) int {
	return t.depth[i]
}

// Lookup resolves an id to an arena index
func (t *Tree) Lookup(id string) (int, bool) {
	i, ok := t.byID[id]
	return i, ok
}

// Preorder returns every non-root index in document order
func (t *Tree) Preorder() []int {
	return t.preorder
}

// Tests returns the test indices in document order
func (t *Tree) Tests() []int {
	return t.tests
}

// TestIDs returns the ids of all tests in document order
func (t *Tree) TestIDs() []string {
	ids := make([]string, len(t.tests))
	for k, i := range t.tests {
		ids[k] = t.nodes[i].ID
	}
	return ids
}

// Descendants returns the indices below i in document order
func (t *Tree) Descendants(i int) []int {
	var out []int
	var visit func(int)
	visit = func(p int) {
		for _, c := range t.nodes[p].Children {
			out = append(out, c)
			visit(c)
		}
	}
	visit(i)
	return out
}

// Ancestors returns i itself followed by its ancestors, excluding the root
func (t *Tree) Ancestors(i int) []int {
	var out []int
	for cur := i; cur != Root && cur != domain.NoParent; cur = t.nodes[cur].Parent {
		out = append(out, cur)
	}
	return out
}

func containsIndex(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
