package domain

import "strings"

// NodeKind tags a node as a suite (container) or a test (leaf)
type NodeKind int

const (
	// KindSuite is a container of suites and tests.
	KindSuite NodeKind = iota
	// KindTest is a leaf test.
	KindTest
)

// String returns the fixture spelling of the kind
func (k NodeKind) String() string {
	switch k {
	case KindSuite:
		return "suite"
	case KindTest:
		return "test"
	default:
		return "unknown"
	}
}

// Marker is the exclusivity directive a node carries on itself
type Marker int

const (
	// MarkerNone means the node carries no directive.
	MarkerNone Marker = iota
	// MarkerOnly restricts reporting to the node and its descendants.
	MarkerOnly
	// MarkerSkip disables the node and all of its descendants.
	MarkerSkip
)

// String returns the fixture spelling of the marker
func (m Marker) String() string {
	switch m {
	case MarkerOnly:
		return "only"
	case MarkerSkip:
		return "skip"
	default:
		return ""
	}
}

// ParseMarker parses a fixture marker value. Unknown values report ok=false.
func ParseMarker(s string) (Marker, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return MarkerNone, true
	case "only":
		return MarkerOnly, true
	case "skip":
		return MarkerSkip, true
	default:
		return MarkerNone, false
	}
}

// NoParent is the parent index of the root sentinel
const NoParent = -1

// Node is one entry of a tree arena. Parent and Children hold arena indices.
type Node struct {
	ID       string
	Title    string
	Kind     NodeKind
	Parent   int
	Children []int
	Marker   Marker
	Browsers []string
}

// IsTest reports whether the node is a leaf test
func (n Node) IsTest() bool {
	return n.Kind == KindTest
}

// IDSeparator joins ancestor titles into a node id
const IDSeparator = " "

// JoinID builds an id from ancestor titles, outermost first.
func JoinID(titles ...string) string {
	return strings.Join(titles, IDSeparator)
}
