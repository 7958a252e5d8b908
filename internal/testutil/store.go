package testutil

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dtroode/socialgraph-server/internal/model"
)

var (
	_ model.UserStore        = (*MemoryStore)(nil)
	_ model.RelationStore    = (*MemoryStore)(nil)
	_ model.PublicationStore = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory users/publications table. Each method is
// atomic on its own; RunInTx only rolls back when the store is atomic.
type MemoryStore struct {
	mu           sync.Mutex
	atomic       bool
	users        map[int64]model.User
	publications map[int64][]model.Publication
	nextErr      map[string]error
	calls        map[string]int
}

// NewMemoryStore returns a store whose RunInTx does not roll back, like two
// independent statements.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]model.User),
		publications: make(map[int64][]model.Publication),
		nextErr:      make(map[string]error),
		calls:        make(map[string]int),
	}
}

// NewAtomicMemoryStore returns a store whose RunInTx restores every row when fn fails.
func NewAtomicMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.atomic = true
	return s
}

// PutUser inserts or replaces a user row.
func (s *MemoryStore) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Following = u.Following.Clone()
	u.Followers = u.Followers.Clone()
	s.users[u.ID] = u
}

// PutActiveUsers inserts active users with empty lists.
func (s *MemoryStore) PutActiveUsers(ids ...int64) {
	for _, id := range ids {
		s.PutUser(model.User{ID: id, Username: "user", Status: model.AccountStatusActive})
	}
}

// PutPublications sets the published items of a user, most recent first.
func (s *MemoryStore) PutPublications(userID int64, publications ...model.Publication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publications[userID] = slices.Clone(publications)
}

// Lists returns copies of the following and followers lists of a user.
func (s *MemoryStore) Lists(id int64) (following, followers model.IDList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	return u.Following.Clone(), u.Followers.Clone()
}

// SetErr makes the next call of op fail with err. Write ops are keyed as
// "Add:following", "Remove:followers", "CompareAndSwap:following" and so on.
func (s *MemoryStore) SetErr(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr[op] = err
}

// Calls returns how many times op was invoked.
func (s *MemoryStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *MemoryStore) takeErr(op string) error {
	s.calls[op]++
	if err, ok := s.nextErr[op]; ok {
		delete(s.nextErr, op)
		return err
	}
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("GetByID"); err != nil {
		return model.User{}, err
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	u.Following = u.Following.Clone()
	u.Followers = u.Followers.Clone()
	return u, nil
}

func (s *MemoryStore) Snapshot(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("Snapshot"); err != nil {
		return nil, err
	}
	ids := slices.Sorted(maps.Keys(s.users))
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u := s.users[id]
		u.Following = u.Following.Clone()
		u.Followers = u.Followers.Clone()
		out = append(out, u)
	}
	return out, nil
}

func (s *MemoryStore) ListPublished(_ context.Context, userID int64) ([]model.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("ListPublished"); err != nil {
		return nil, err
	}
	out := slices.Clone(s.publications[userID])
	if out == nil {
		out = []model.Publication{}
	}
	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, userID int64, list model.ListKind, member int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("Add:" + string(list)); err != nil {
		return false, err
	}
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	current := listOf(&u, list)
	if current.Contains(member) {
		return false, nil
	}
	*current = current.With(member)
	s.users[userID] = u
	return true, nil
}

func (s *MemoryStore) Remove(_ context.Context, userID int64, list model.ListKind, member int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("Remove:" + string(list)); err != nil {
		return false, err
	}
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	current := listOf(&u, list)
	if !current.Contains(member) {
		return false, nil
	}
	*current = current.Without(member)
	s.users[userID] = u
	return true, nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, userID int64, list model.ListKind, prev, next model.IDList) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("CompareAndSwap:" + string(list)); err != nil {
		return false, err
	}
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	current := listOf(&u, list)
	if !slices.Equal(*current, prev) {
		return false, nil
	}
	*current = next.Clone()
	s.users[userID] = u
	return true, nil
}

// LockFollowing returns the following list. The store has no row locks, so
// the list is only guaranteed current at the moment of the call.
func (s *MemoryStore) LockFollowing(_ context.Context, userID int64) (model.IDList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr("LockFollowing"); err != nil {
		return nil, err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u.Following.Clone(), nil
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, w model.RelationWriter) error) error {
	if !s.atomic {
		return fn(ctx, s)
	}

	s.mu.Lock()
	saved := make(map[int64]model.User, len(s.users))
	for id, u := range s.users {
		u.Following = u.Following.Clone()
		u.Followers = u.Followers.Clone()
		saved[id] = u
	}
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.users = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Atomic() bool {
	return s.atomic
}

func listOf(u *model.User, list model.ListKind) *model.IDList {
	if list == model.ListFollowers {
		return &u.Followers
	}
	return &u.Following
}
