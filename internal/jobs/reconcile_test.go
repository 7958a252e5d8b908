package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/socialgraph-server/internal/mocks"
	"github.com/dtroode/socialgraph-server/internal/model"
	"github.com/dtroode/socialgraph-server/internal/testutil"
)

type countingReconciler struct {
	runs  atomic.Int32
	block chan struct{}
	err   error
}

func (r *countingReconciler) Run(ctx context.Context) (model.ReconcileReport, error) {
	r.runs.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return model.ReconcileReport{}, ctx.Err()
		}
	}
	return model.ReconcileReport{}, r.err
}

func TestNewReconcileScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewReconcileScheduler(&countingReconciler{}, "every now and then", testutil.MakeNoopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reconcile schedule")
}

func TestReconcileScheduler_RunsOnSchedule(t *testing.T) {
	t.Parallel()

	r := &countingReconciler{err: errors.New("snapshot failed")}
	s, err := NewReconcileScheduler(r, "@every 1s", testutil.MakeNoopLogger())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return r.runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestReconcileScheduler_StopCancelsRunningPass(t *testing.T) {
	t.Parallel()

	r := &countingReconciler{block: make(chan struct{})}
	s, err := NewReconcileScheduler(r, "@every 1s", testutil.MakeNoopLogger())
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return r.runs.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, int32(1), r.runs.Load())
}

func TestReconcileScheduler_WithMockReconciler(t *testing.T) {
	t.Parallel()

	r := mocks.NewReconcileService(t)
	r.On("Run", mock.Anything).Return(model.ReconcileReport{Conflicts: 2}, nil).Once()

	s, err := NewReconcileScheduler(r, "@every 1h", testutil.MakeNoopLogger())
	require.NoError(t, err)

	s.runOnce()
}

func TestReconcileScheduler_SkipsAfterStop(t *testing.T) {
	t.Parallel()

	r := &countingReconciler{}
	s, err := NewReconcileScheduler(r, "@every 1h", testutil.MakeNoopLogger())
	require.NoError(t, err)

	require.NoError(t, s.Stop(context.Background()))
	s.runOnce()
	assert.Zero(t, r.runs.Load())
}
