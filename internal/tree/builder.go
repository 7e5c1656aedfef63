package tree

import "stf/internal/domain"

// Option configures a node added through a Builder
type Option func(*domain.Node)

// WithMarker sets the node's own marker
func WithMarker(m domain.Marker) Option {
	return func(n *domain.Node) {
		n.Marker = m
	}
}

// Only is shorthand for WithMarker(domain.MarkerOnly)
func Only() Option {
	return WithMarker(domain.MarkerOnly)
}

// Skip is shorthand for WithMarker(domain.MarkerSkip)
func Skip() Option {
	return WithMarker(domain.MarkerSkip)
}

// WithBrowsers sets the node's browser allow-list
func WithBrowsers(names ...string) Option {
	return func(n *domain.Node) {
		n.Browsers = append([]string(nil), names...)
	}
}

// Builder appends nodes in document order and validates on Build
type Builder struct {
	nodes []domain.Node
}

// NewBuilder starts an arena whose root sentinel carries the spec title
func NewBuilder(title string) *Builder {
	return &Builder{
		nodes: []domain.Node{{
			Title:  title,
			Kind:   domain.KindSuite,
			Parent: domain.NoParent,
		}},
	}
}

// Suite appends a suite under parent and returns its index
func (b *Builder) Suite(parent int, title string, opts ...Option) int {
	return b.add(parent, title, domain.KindSuite, opts)
}

// Test appends a test under parent and returns its index
func (b *Builder) Test(parent int, title string, opts ...Option) int {
	return b.add(parent, title, domain.KindTest, opts)
}

func (b *Builder) add(parent int, title string, kind domain.NodeKind, opts []Option) int {
	n := domain.Node{
		Title:  title,
		Kind:   kind,
		Parent: parent,
	}
	for _, opt := range opts {
		opt(&n)
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, n)
	if parent >= 0 && parent < idx {
		b.nodes[parent].Children = append(b.nodes[parent].Children, idx)
	}
	return idx
}

// Build validates the arena. Out-of-range parents surface as StructuralError.
func (b *Builder) Build() (*Tree, error) {
	return FromNodes(b.nodes)
}

// Configure applies options to the root sentinel, e.g. a spec-wide browser list
func (b *Builder) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(&b.nodes[Root])
	}
}
