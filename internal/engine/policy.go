package engine

import (
	"fmt"
	"strings"
)

// Policy selects how a filter set interacts with only markers
type Policy int

const (
	// PolicyIntersect narrows the marker-eligible set by filter membership.
	PolicyIntersect Policy = iota
	// PolicyFilterFirst evaluates only markers among filtered tests, so an
	// only marker whose closure misses the filter set is ignored.
	PolicyFilterFirst
)

// String returns the flag spelling of the policy
func (p Policy) String() string {
	switch p {
	case PolicyFilterFirst:
		return "filter-first"
	default:
		return "intersect"
	}
}

// ParsePolicy parses a flag or env value. Empty selects PolicyIntersect.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "intersect":
		return PolicyIntersect, nil
	case "filter-first", "filterfirst":
		return PolicyFilterFirst, nil
	default:
		return PolicyIntersect, fmt.Errorf("unknown filter policy %q (want intersect or filter-first)", s)
	}
}
