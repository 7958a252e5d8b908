package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/socialgraph-server/internal/mocks"
	"github.com/dtroode/socialgraph-server/internal/model"
	"github.com/dtroode/socialgraph-server/internal/testutil"
)

func active(id int64, following, followers model.IDList) model.User {
	return model.User{ID: id, Status: model.AccountStatusActive, Following: following, Followers: followers}
}

func TestPlanRepairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		users []model.User
		want  []model.Repair
	}{
		{
			name: "symmetric graph needs nothing",
			users: []model.User{
				active(1, model.IDList{2}, model.IDList{2}),
				active(2, model.IDList{1}, model.IDList{1}),
			},
		},
		{
			name: "missing follower entry is added",
			users: []model.User{
				active(1, model.IDList{2}, nil),
				active(2, nil, nil),
			},
			want: []model.Repair{
				{UserID: 2, List: model.ListFollowers, Before: model.IDList{}, After: model.IDList{1}},
			},
		},
		{
			name: "follower entry without following edge is dropped",
			users: []model.User{
				active(1, nil, nil),
				active(2, nil, model.IDList{1}),
			},
			want: []model.Repair{
				{UserID: 2, List: model.ListFollowers, Before: model.IDList{1}, After: model.IDList{}},
			},
		},
		{
			name: "duplicates self and dangling ids are removed",
			users: []model.User{
				active(1, model.IDList{2, 2, 1, 99}, nil),
				active(2, nil, model.IDList{1}),
			},
			want: []model.Repair{
				{UserID: 1, List: model.ListFollowing, Before: model.IDList{2, 2, 1, 99}, After: model.IDList{2}},
			},
		},
		{
			name: "existing follower order is kept and missing ones appended sorted",
			users: []model.User{
				active(1, model.IDList{4}, nil),
				active(2, model.IDList{4}, nil),
				active(3, model.IDList{4}, nil),
				active(4, nil, model.IDList{3}),
			},
			want: []model.Repair{
				{UserID: 4, List: model.ListFollowers, Before: model.IDList{3}, After: model.IDList{3, 1, 2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := planRepairs(tt.users)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].UserID, got[i].UserID)
				assert.Equal(t, tt.want[i].List, got[i].List)
				assert.Equal(t, []int64(tt.want[i].Before), []int64(got[i].Before))
				assert.Equal(t, []int64(tt.want[i].After), []int64(got[i].After))
			}
		})
	}
}

func TestReconciler_RepairsPartialFollow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemoryStore()
	store.PutActiveUsers(1, 2)
	store.SetErr("Add:followers", errors.New("connection reset"))
	l := newTestLedger(store)

	require.True(t, model.IsPartial(l.Follow(ctx, 1, 2)))

	r := NewReconciler(store, store, nil, nil, testutil.MakeNoopLogger())
	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.UsersScanned)
	require.Len(t, report.Repairs, 1)
	assert.Zero(t, report.Conflicts)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	_, followers := store.Lists(2)
	assert.Equal(t, model.IDList{1}, followers)

	report, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Repairs)
}

func TestReconciler_CountsConflicts(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	store.PutUser(active(1, model.IDList{2}, nil))
	store.PutUser(active(2, nil, nil))

	racing := &interleavedStore{MemoryStore: store, afterSnapshot: func() {
		_, err := store.Add(context.Background(), 2, model.ListFollowers, 77)
		assert.NoError(t, err)
	}}
	r := NewReconciler(racing, racing, nil, nil, testutil.MakeNoopLogger())

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Conflicts)
	assert.Empty(t, report.Repairs)
}

func TestReconciler_DoesNotUndoConcurrentUnfollow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemoryStore()
	store.PutUser(active(1, model.IDList{2}, nil))
	store.PutUser(active(2, nil, nil))
	l := newTestLedger(store)

	racing := &interleavedStore{MemoryStore: store, afterSnapshot: func() {
		assert.NoError(t, l.Unfollow(ctx, 1, 2))
	}}
	r := NewReconciler(racing, racing, nil, nil, testutil.MakeNoopLogger())

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Conflicts)
	assert.Empty(t, report.Repairs)

	following, _ := store.Lists(1)
	_, followers := store.Lists(2)
	assert.Equal(t, model.IDList{}, following)
	assert.Equal(t, model.IDList{}, followers)
}

func TestReconciler_DoesNotUndoConcurrentFollow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemoryStore()
	store.PutUser(active(1, nil, nil))
	store.PutUser(active(2, nil, model.IDList{1}))
	l := newTestLedger(store)

	racing := &interleavedStore{MemoryStore: store, afterSnapshot: func() {
		assert.NoError(t, l.Follow(ctx, 1, 2))
	}}
	r := NewReconciler(racing, racing, nil, nil, testutil.MakeNoopLogger())

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Conflicts)

	following, _ := store.Lists(1)
	_, followers := store.Lists(2)
	assert.Equal(t, model.IDList{2}, following)
	assert.Equal(t, model.IDList{1}, followers)
}

// interleavedStore runs afterSnapshot once, between the snapshot and the repairs.
type interleavedStore struct {
	*testutil.MemoryStore
	afterSnapshot func()
}

func (s *interleavedStore) Snapshot(ctx context.Context) ([]model.User, error) {
	users, err := s.MemoryStore.Snapshot(ctx)
	if s.afterSnapshot != nil {
		s.afterSnapshot()
		s.afterSnapshot = nil
	}
	return users, err
}

func TestChangedMembers(t *testing.T) {
	t.Parallel()

	assert.Empty(t, changedMembers(model.IDList{1, 2}, model.IDList{2, 1}))
	assert.Empty(t, changedMembers(model.IDList{1, 1}, model.IDList{1}))
	assert.Equal(t, []int64{1, 3, 5}, changedMembers(model.IDList{5, 2, 1}, model.IDList{2, 3}))
}

func TestReconciler_Errors(t *testing.T) {
	t.Parallel()

	t.Run("snapshot failure", func(t *testing.T) {
		t.Parallel()

		store := testutil.NewMemoryStore()
		store.SetErr("Snapshot", errors.New("timeout"))
		r := NewReconciler(store, store, nil, nil, testutil.MakeNoopLogger())

		_, err := r.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to snapshot users")
	})

	t.Run("swap failure stops the pass", func(t *testing.T) {
		t.Parallel()

		store := testutil.NewMemoryStore()
		store.PutUser(active(1, model.IDList{2}, nil))
		store.PutUser(active(2, nil, nil))
		store.SetErr("CompareAndSwap:followers", errors.New("timeout"))
		r := NewReconciler(store, store, nil, nil, testutil.MakeNoopLogger())

		_, err := r.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to repair followers of user 2")
	})

	t.Run("lock failure stops the pass", func(t *testing.T) {
		t.Parallel()

		store := testutil.NewMemoryStore()
		store.PutUser(active(1, model.IDList{2}, nil))
		store.PutUser(active(2, nil, nil))
		store.SetErr("LockFollowing", errors.New("timeout"))
		r := NewReconciler(store, store, nil, nil, testutil.MakeNoopLogger())

		_, err := r.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to repair followers of user 2")
		assert.Zero(t, store.Calls("CompareAndSwap:followers"))
	})

	t.Run("store conflict counts as conflict", func(t *testing.T) {
		t.Parallel()

		store := testutil.NewMemoryStore()
		store.PutUser(active(1, model.IDList{2}, nil))
		store.PutUser(active(2, nil, nil))
		store.SetErr("CompareAndSwap:followers", fmt.Errorf("%w: deadlock detected", model.ErrTxConflict))
		r := NewReconciler(store, store, nil, nil, testutil.MakeNoopLogger())

		report, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Conflicts)
	})
}

func TestReconciler_InvalidatesAndArchives(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	store.PutUser(active(1, model.IDList{2}, nil))
	store.PutUser(active(2, nil, nil))

	cache := mocks.NewProfileCache(t)
	cache.On("Invalidate", mock.Anything, []int64{2}).Return(nil).Once()

	archive := mocks.NewReportArchive(t)
	var uploaded model.ReconcileReport
	archive.On("Upload", mock.Anything, "reconcile/20240301T100000.000000000Z.json", mock.Anything, mock.AnythingOfType("int64")).
		Run(func(args mock.Arguments) {
			body, err := io.ReadAll(args.Get(2).(io.Reader))
			require.NoError(t, err)
			require.Equal(t, int64(len(body)), args.Get(3).(int64))
			require.NoError(t, json.Unmarshal(body, &uploaded))
		}).
		Return(nil).Once()

	r := NewReconciler(store, store, cache, archive, testutil.MakeNoopLogger())
	r.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Repairs, 1)
	require.Len(t, uploaded.Repairs, 1)
	assert.Equal(t, int64(2), uploaded.Repairs[0].UserID)
}

func TestReconciler_ArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	store.PutUser(active(1, model.IDList{2}, nil))
	store.PutUser(active(2, nil, nil))

	archive := mocks.NewReportArchive(t)
	archive.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone")).Once()

	r := NewReconciler(store, store, nil, archive, testutil.MakeNoopLogger())
	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Repairs, 1)
}

func TestReconciler_CleanGraphIsNotArchived(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	store.PutUser(active(1, model.IDList{2}, nil))
	store.PutUser(active(2, nil, model.IDList{1}))

	archive := mocks.NewReportArchive(t)
	r := NewReconciler(store, store, nil, archive, testutil.MakeNoopLogger())

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Repairs)
	archive.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
