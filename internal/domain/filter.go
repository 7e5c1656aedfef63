package domain

import "sort"

// FilterSet is the set of test ids that matter for one run.
// The empty set means no filtering is active.
type FilterSet map[string]struct{}

// NewFilterSet builds a set from ids, ignoring empty strings
func NewFilterSet(ids ...string) FilterSet {
	fs := make(FilterSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		fs[id] = struct{}{}
	}
	return fs
}

// Active reports whether the set narrows the view
func (fs FilterSet) Active() bool {
	return len(fs) > 0
}

// Contains reports whether id is a member
func (fs FilterSet) Contains(id string) bool {
	_, ok := fs[id]
	return ok
}

// IDs returns the members in sorted order
func (fs FilterSet) IDs() []string {
	ids := make([]string, 0, len(fs))
	for id := range fs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy
func (fs FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(fs))
	for id := range fs {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same ids
func (fs FilterSet) Equal(other FilterSet) bool {
	if len(fs) != len(other) {
		return false
	}
	for id := range fs {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// RunContext governs one filtered view of a tree
type RunContext struct {
	RunID   string
	Browser string
	Filter  FilterSet
}

// Filtered reports whether the context carries an active filter
func (rc RunContext) Filtered() bool {
	return rc.Filter.Active()
}
