package execution

import (
	"context"
	"time"

	"stf/internal/domain"
)

// Executor evaluates spec fixtures and returns one report per spec
type Executor interface {
	Execute(ctx context.Context, specs []string) ([]domain.Report, time.Duration, error)
}
