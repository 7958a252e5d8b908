package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSelfRelation rejects a follow edge from a user to itself.
	ErrSelfRelation = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing rejects a duplicate follow edge.
	ErrAlreadyFollowing = errors.New("already following this user")
	// ErrNotFollowing rejects removal of an edge that does not exist.
	ErrNotFollowing = errors.New("not following this user")
)

// Roles used by UserNotFoundError.
const (
	RoleFollower = "follower"
	RoleFollowed = "followed"
	RoleTarget   = "target"
)

// UserNotFoundError names the side of a relation whose account is missing or inactive.
type UserNotFoundError struct {
	Role   string
	UserID int64
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("%s user %d not found", e.Role, e.UserID)
}

// Is makes UserNotFoundError match ErrNotFound.
func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps a persistence failure. Partial is set when one of two
// writes is durable and the other is not, leaving the graph asymmetric
// until reconciled.
type StorageError struct {
	Op      string
	Partial bool
	Err     error
}

func (e *StorageError) Error() string {
	if e.Partial {
		return fmt.Sprintf("partially applied %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsPartial reports whether err carries a partially applied StorageError.
func IsPartial(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Partial
}
