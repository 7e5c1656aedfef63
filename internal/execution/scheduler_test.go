package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundRobinScheduler_Schedule(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		workers  int
		expected [][]int
	}{
		{"even split", 4, 2, [][]int{{0, 2}, {1, 3}}},
		{"uneven split", 5, 2, [][]int{{0, 2, 4}, {1, 3}}},
		{"more workers than items", 2, 4, [][]int{{0}, {1}}},
		{"zero workers", 3, 0, [][]int{{0, 1, 2}}},
		{"no items", 0, 3, [][]int{nil}},
	}

	s := NewRoundRobinScheduler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Schedule(tt.count, tt.workers))
		})
	}
}
