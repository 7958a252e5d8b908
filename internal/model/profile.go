package model

import (
	"context"
	"time"
)

// PublicationStatusPublished marks publications visible on profiles.
const PublicationStatusPublished = "publicado"

// PublicationStore lists a user's publications.
type PublicationStore interface {
	ListPublished(ctx context.Context, userID int64) ([]Publication, error)
}

// Publication is a summary of a published item.
type Publication struct {
	ID          int64     `json:"id"`
	Description *string   `json:"description"`
	FileName    *string   `json:"file_name"`
	FileType    *string   `json:"file_type"`
	Date        time.Time `json:"date"`
}

// PublicProfile is the read-only view of an account, derived per request.
type PublicProfile struct {
	ID                int64         `json:"id"`
	Username          string        `json:"username"`
	Email             string        `json:"email"`
	Bio               *string       `json:"bio"`
	Institution       *string       `json:"institution"`
	School            *string       `json:"school"`
	Faculty           *string       `json:"faculty"`
	Kind              string        `json:"kind"`
	CreatedAt         time.Time     `json:"created_at"`
	Following         IDList        `json:"following"`
	Followers         IDList        `json:"followers"`
	Publications      []Publication `json:"publications"`
	FollowersCount    int           `json:"followers_count"`
	FollowingCount    int           `json:"following_count"`
	PublicationsCount int           `json:"publications_count"`
}

// ProfileCache stores computed public profiles. Implementations must treat
// a miss as (PublicProfile{}, false, nil).
//
// Every Invalidate bumps the version of each given user. A profile built
// from rows read after Version returned v is stored by Set only while the
// version is still v, so a fill racing with a write is dropped.
type ProfileCache interface {
	Get(ctx context.Context, userID int64) (PublicProfile, bool, error)
	Version(ctx context.Context, userID int64) (uint64, error)
	Set(ctx context.Context, profile PublicProfile, version uint64) (bool, error)
	Invalidate(ctx context.Context, userIDs ...int64) error
}
