package domain

import (
	"errors"
	"fmt"
)

// StructuralReason names the kind of malformation found in a tree
type StructuralReason string

const (
	ReasonCycle       StructuralReason = "cycle"
	ReasonDuplicateID StructuralReason = "duplicate id"
	ReasonDangling    StructuralReason = "dangling reference"
	ReasonEmpty       StructuralReason = "empty tree"
	ReasonKind        StructuralReason = "invalid kind"
)

// StructuralError reports a malformed tree. The tree owner must rebuild it.
type StructuralError struct {
	Reason StructuralReason
	Index  int
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("malformed tree: %s at node %d", e.Reason, e.Index)
	}
	return fmt.Sprintf("malformed tree: %s at node %d: %s", e.Reason, e.Index, e.Detail)
}

// IsStructural reports whether err wraps a StructuralError
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// ErrUnknownNode is returned when an id does not resolve to a node
var ErrUnknownNode = errors.New("unknown node")
