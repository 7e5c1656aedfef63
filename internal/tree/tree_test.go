package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stf/internal/domain"
	"stf/internal/tree"
	"stf/internal/tree/treetest"
)

func TestBuild_DerivesSpaceJoinedIDs(t *testing.T) {
	tr := treetest.NestedSuites(t)

	assert.Equal(t, "test.cy.js", tr.Title())
	assert.Equal(t, []string{"t1", "t2", "t3", "s1 t4"}, tr.TestIDs())

	idx, ok := tr.Lookup("s1 t4")
	require.True(t, ok)
	assert.Equal(t, 1, tr.Depth(idx))
	assert.Equal(t, domain.KindTest, tr.Kind(idx))

	s1, ok := tr.Lookup("s1")
	require.True(t, ok)
	assert.Equal(t, s1, tr.Parent(idx))
	assert.Equal(t, []int{idx, s1}, tr.Ancestors(idx))
	assert.Equal(t, []int{idx}, tr.Descendants(s1))
}

func TestBuild_IDsAreStableAcrossRebuilds(t *testing.T) {
	first := treetest.SkipAndOnly(t)
	second := treetest.SkipAndOnly(t)
	assert.Equal(t, first.TestIDs(), second.TestIDs())
	for _, i := range first.Preorder() {
		assert.Equal(t, first.ID(i), second.ID(i))
	}
}

func TestNode_ReturnsCopy(t *testing.T) {
	tr := treetest.Browsers(t)
	idx, ok := tr.Lookup("t1")
	require.True(t, ok)

	n := tr.Node(idx)
	n.Browsers[0] = "chrome"
	assert.Equal(t, []string{"firefox"}, tr.Browsers(idx))
}

func TestFromNodes_StructuralErrors(t *testing.T) {
	root := func(children ...int) domain.Node {
		return domain.Node{Title: "spec", Kind: domain.KindSuite, Parent: domain.NoParent, Children: children}
	}

	tests := []struct {
		name   string
		nodes  []domain.Node
		reason domain.StructuralReason
	}{
		{
			name:   "empty arena",
			nodes:  nil,
			reason: domain.ReasonEmpty,
		},
		{
			name: "duplicate sibling titles",
			nodes: []domain.Node{
				root(1, 2),
				{Title: "t1", Kind: domain.KindTest, Parent: 0},
				{Title: "t1", Kind: domain.KindTest, Parent: 0},
			},
			reason: domain.ReasonDuplicateID,
		},
		{
			name: "parent out of range",
			nodes: []domain.Node{
				root(),
				{Title: "t1", Kind: domain.KindTest, Parent: 7},
			},
			reason: domain.ReasonDangling,
		},
		{
			name: "child not pointing back",
			nodes: []domain.Node{
				root(1),
				{Title: "s1", Kind: domain.KindSuite, Parent: 0, Children: []int{2}},
				{Title: "t1", Kind: domain.KindTest, Parent: 0},
			},
			reason: domain.ReasonDangling,
		},
		{
			name: "two suites parenting each other",
			nodes: []domain.Node{
				root(),
				{Title: "a", Kind: domain.KindSuite, Parent: 2, Children: []int{2}},
				{Title: "b", Kind: domain.KindSuite, Parent: 1, Children: []int{1}},
			},
			reason: domain.ReasonCycle,
		},
		{
			name: "test with children",
			nodes: []domain.Node{
				root(1),
				{Title: "t1", Kind: domain.KindTest, Parent: 0, Children: []int{2}},
				{Title: "t2", Kind: domain.KindTest, Parent: 1},
			},
			reason: domain.ReasonKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tree.FromNodes(tt.nodes)
			require.Error(t, err)
			require.True(t, domain.IsStructural(err))

			var se *domain.StructuralError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.reason, se.Reason)
		})
	}
}

func TestBuilder_RejectsTestAsParent(t *testing.T) {
	b := tree.NewBuilder("spec")
	t1 := b.Test(tree.Root, "t1")
	b.Test(t1, "nested")

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, domain.IsStructural(err))
}

func TestFromNodes_KeepsSuppliedIDs(t *testing.T) {
	tr, err := tree.FromNodes([]domain.Node{
		{Title: "spec", Kind: domain.KindSuite, Parent: domain.NoParent, Children: []int{1}},
		{ID: "engine-id", Title: "t1", Kind: domain.KindTest, Parent: 0},
	})
	require.NoError(t, err)

	_, ok := tr.Lookup("engine-id")
	assert.True(t, ok)
}
