package model

import (
	"context"
	"time"
)

// AccountStatusActive marks accounts that can be followed and viewed.
const AccountStatusActive = "activo"

// UserStore defines read access to user rows.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (User, error)
	Snapshot(ctx context.Context) ([]User, error)
}

// User represents a stored user with its follow adjacency lists.
type User struct {
	ID          int64
	Username    string
	Email       string
	Bio         *string
	Institution *string
	School      *string
	Faculty     *string
	Kind        string
	Status      string
	CreatedAt   time.Time
	Following   IDList
	Followers   IDList
}

// IsActive reports whether the account is in the active lifecycle state.
func (u User) IsActive() bool {
	return u.Status == AccountStatusActive
}
