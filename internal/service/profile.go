package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/metrics"
	"github.com/dtroode/socialgraph-server/internal/model"
)

// Profile composes public profiles. It never writes to the user store.
type Profile struct {
	userStore        model.UserStore
	publicationStore model.PublicationStore
	cache            model.ProfileCache
	logger           *logger.Logger
}

// NewProfile creates a Profile aggregator. cache may be nil.
func NewProfile(
	userStore model.UserStore,
	publicationStore model.PublicationStore,
	cache model.ProfileCache,
	logger *logger.Logger,
) *Profile {
	return &Profile{
		userStore:        userStore,
		publicationStore: publicationStore,
		cache:            cache,
		logger:           logger,
	}
}

// GetPublicProfile returns the public view of an active account.
func (s *Profile) GetPublicProfile(ctx context.Context, targetID int64) (model.PublicProfile, error) {
	if cached, ok := s.fromCache(ctx, targetID); ok {
		return cached, nil
	}
	version, fill := s.cacheVersion(ctx, targetID)

	user, err := s.userStore.GetByID(ctx, targetID)
	if errors.Is(err, model.ErrNotFound) {
		return model.PublicProfile{}, &model.UserNotFoundError{Role: model.RoleTarget, UserID: targetID}
	}
	if err != nil {
		s.logger.Error("Profile service: failed to get user",
			"user_id", targetID,
			"error", err.Error())
		return model.PublicProfile{}, &model.StorageError{Op: fmt.Sprintf("get user %d", targetID), Err: err}
	}
	if !user.IsActive() {
		return model.PublicProfile{}, &model.UserNotFoundError{Role: model.RoleTarget, UserID: targetID}
	}

	publications, err := s.publicationStore.ListPublished(ctx, targetID)
	if err != nil {
		s.logger.Error("Profile service: failed to list publications",
			"user_id", targetID,
			"error", err.Error())
		return model.PublicProfile{}, &model.StorageError{Op: fmt.Sprintf("list publications of user %d", targetID), Err: err}
	}

	profile := buildPublicProfile(user, publications)
	if fill {
		s.fillCache(ctx, profile, version)
	}

	return profile, nil
}

// cacheVersion must run before the user row is read; a write committed after
// that read bumps the version and the fill is dropped.
func (s *Profile) cacheVersion(ctx context.Context, targetID int64) (uint64, bool) {
	if s.cache == nil {
		return 0, false
	}

	version, err := s.cache.Version(ctx, targetID)
	if err != nil {
		s.logger.Warn("Profile service: failed to read cache version",
			"user_id", targetID,
			"error", err.Error())
		return 0, false
	}

	return version, true
}

func (s *Profile) fillCache(ctx context.Context, profile model.PublicProfile, version uint64) {
	stored, err := s.cache.Set(ctx, profile, version)
	if err != nil {
		s.logger.Warn("Profile service: failed to cache profile",
			"user_id", profile.ID,
			"error", err.Error())
		return
	}
	if !stored {
		metrics.RecordProfileCache("stale")
		s.logger.Debug("Profile service: profile changed while loading, not cached",
			"user_id", profile.ID)
	}
}

func (s *Profile) fromCache(ctx context.Context, targetID int64) (model.PublicProfile, bool) {
	if s.cache == nil {
		return model.PublicProfile{}, false
	}

	profile, ok, err := s.cache.Get(ctx, targetID)
	switch {
	case err != nil:
		metrics.RecordProfileCache("error")
		s.logger.Warn("Profile service: cache lookup failed",
			"user_id", targetID,
			"error", err.Error())
		return model.PublicProfile{}, false
	case !ok:
		metrics.RecordProfileCache("miss")
		return model.PublicProfile{}, false
	default:
		metrics.RecordProfileCache("hit")
		return profile, true
	}
}

// buildPublicProfile derives the counts from the collections themselves,
// never from a stored counter.
func buildPublicProfile(user model.User, publications []model.Publication) model.PublicProfile {
	if publications == nil {
		publications = []model.Publication{}
	}
	following := user.Following.Clone()
	followers := user.Followers.Clone()

	return model.PublicProfile{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Bio:               user.Bio,
		Institution:       user.Institution,
		School:            user.School,
		Faculty:           user.Faculty,
		Kind:              user.Kind,
		CreatedAt:         user.CreatedAt,
		Following:         following,
		Followers:         followers,
		Publications:      publications,
		FollowersCount:    followers.Len(),
		FollowingCount:    following.Len(),
		PublicationsCount: len(publications),
	}
}
