package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	specs := []string{
		"cypress/e2e/test.spec.yaml",
		"cypress/e2e/skip-and-only.spec.yaml",
		"cypress/e2e/browsers.spec.yaml",
		"cypress/e2e/nested/domain-change.spec.yaml",
	}

	tests := []struct {
		name     string
		pattern  string
		expected int
	}{
		{"empty pattern returns all", "", 4},
		{"exact glob", "browsers.spec.yaml", 1},
		{"prefix glob", "skip-*", 1},
		{"substring glob", "*domain*", 1},
		{"fragments in order", "*skip*only*", 1},
		{"fragments out of order", "*only*skip*", 0},
		{"plain substring", "spec", 4},
		{"no match", "*lots*", 0},
		{"directory names do not match", "nested", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, filter.FilterByName(specs, tt.pattern), tt.expected)
		})
	}
}

func TestFilter_EmptyList(t *testing.T) {
	assert.Empty(t, NewFilter().FilterByName(nil, "*"))
}
