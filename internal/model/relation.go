package model

import (
	"context"
	"errors"
)

// ErrTxConflict reports a transaction aborted by the store because of a
// concurrent writer. Retrying later is safe.
var ErrTxConflict = errors.New("transaction conflict")

// ListKind names one of the two adjacency lists stored on a user row.
type ListKind string

const (
	// ListFollowing holds the IDs a user follows.
	ListFollowing ListKind = "following"
	// ListFollowers holds the IDs following a user.
	ListFollowers ListKind = "followers"
)

// RelationWriter mutates a single adjacency list of a single row.
// Every method is one atomic statement against one row.
type RelationWriter interface {
	// Add appends member to the list unless already present. It reports whether the row changed.
	Add(ctx context.Context, userID int64, list ListKind, member int64) (bool, error)
	// Remove deletes member from the list. It reports whether the row changed.
	Remove(ctx context.Context, userID int64, list ListKind, member int64) (bool, error)
	// CompareAndSwap replaces the list with next only when it still equals prev.
	CompareAndSwap(ctx context.Context, userID int64, list ListKind, prev, next IDList) (bool, error)
	// LockFollowing returns the following list of userID. Inside RunInTx the row
	// stays locked against other writers until the transaction ends.
	LockFollowing(ctx context.Context, userID int64) (IDList, error)
}

// RelationStore groups writes. When Atomic reports true, a failed fn leaves no write behind.
type RelationStore interface {
	RelationWriter
	RunInTx(ctx context.Context, fn func(ctx context.Context, w RelationWriter) error) error
	Atomic() bool
}
