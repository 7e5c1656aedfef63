package execution

// Scheduler distributes work items across workers
type Scheduler interface {
	Schedule(count, workerCount int) [][]int
}

// RoundRobinScheduler distributes item indices evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule returns, per worker, the indices of the items it evaluates.
// Workers beyond count receive nothing.
func (s *RoundRobinScheduler) Schedule(count, workerCount int) [][]int {
	if workerCount <= 0 {
		workerCount = 1
	}
	if count < workerCount {
		workerCount = max(count, 1)
	}

	distribution := make([][]int, workerCount)
	for i := 0; i < count; i++ {
		w := i % workerCount
		distribution[w] = append(distribution[w], i)
	}
	return distribution
}
