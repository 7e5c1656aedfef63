package discovery

import (
	"path/filepath"
	"strings"
)

// Filter selects spec files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the specs whose file name matches pattern.
// Patterns support * and ? wildcards ("*domain*", "skip-*.spec.yaml"); a
// pattern without wildcards matches as a substring.
func (f *Filter) FilterByName(specs []string, pattern string) []string {
	if pattern == "" {
		return specs
	}

	var filtered []string
	for _, spec := range specs {
		if matchName(filepath.Base(spec), pattern) {
			filtered = append(filtered, spec)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// looser wildcard match: every literal fragment must appear in order
	rest := name
	found := false
	for _, part := range strings.FieldsFunc(pattern, func(r rune) bool { return r == '*' || r == '?' }) {
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
		found = true
	}
	return found
}
