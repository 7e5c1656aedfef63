package execution

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"stf/internal/domain"
)

type fakeRunner struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeRunner) Run(ctx context.Context, specPath string) (domain.Report, error) {
	f.calls.Add(1)
	if f.fail[specPath] {
		return domain.Report{}, errors.New("boom")
	}
	return domain.Report{Meta: domain.ReportMeta{
		Spec:    specPath,
		Summary: domain.Summary{Pass: 1, Fail: 1, Included: 2, Total: 2},
	}}, nil
}

func TestWorkerPool_Execute(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{}
	pool := NewWorkerPool(3, runner, NewRoundRobinScheduler())

	specs := []string{"a", "b", "c", "d", "e"}
	reports, _, err := pool.Execute(context.Background(), specs)
	require.NoError(t, err)

	require.Len(t, reports, len(specs))
	for i, r := range reports {
		assert.Equal(t, specs[i], r.Meta.Spec)
	}
	assert.EqualValues(t, len(specs), runner.calls.Load())
}

func TestWorkerPool_PartialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{fail: map[string]bool{"b": true}}
	pool := NewWorkerPool(2, runner, NewRoundRobinScheduler())

	reports, _, err := pool.Execute(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b: boom")

	require.Len(t, reports, 2)
	assert.Equal(t, "a", reports[0].Meta.Spec)
	assert.Equal(t, "c", reports[1].Meta.Spec)
}

func TestWorkerPool_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	reports, _, err := NewWorkerPool(2, runner, NewRoundRobinScheduler()).Execute(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
	assert.Zero(t, runner.calls.Load())
}

func TestWorkerPool_Empty(t *testing.T) {
	reports, d, err := NewWorkerPool(0, &fakeRunner{}, NewRoundRobinScheduler()).Execute(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, reports)
	assert.Zero(t, d)
}
