package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/metrics"
	"github.com/dtroode/socialgraph-server/internal/model"
)

// Ledger owns the follow relation and keeps both adjacency lists symmetric.
type Ledger struct {
	userStore     model.UserStore
	relationStore model.RelationStore
	cache         model.ProfileCache
	logger        *logger.Logger
}

// NewLedger creates a Ledger. cache may be nil.
func NewLedger(
	userStore model.UserStore,
	relationStore model.RelationStore,
	cache model.ProfileCache,
	logger *logger.Logger,
) *Ledger {
	return &Ledger{
		userStore:     userStore,
		relationStore: relationStore,
		cache:         cache,
		logger:        logger,
	}
}

// Follow records that followerID follows followedID. Both accounts must exist and be active.
func (l *Ledger) Follow(ctx context.Context, followerID, followedID int64) (err error) {
	defer func() { metrics.RecordRelationOp("follow", err) }()

	l.logger.Debug("Ledger service: starting follow",
		"follower_id", followerID,
		"followed_id", followedID)

	if followerID == followedID {
		return model.ErrSelfRelation
	}

	follower, err := l.loadUser(ctx, followerID, model.RoleFollower, true)
	if err != nil {
		return err
	}
	if _, err := l.loadUser(ctx, followedID, model.RoleFollowed, true); err != nil {
		return err
	}

	if follower.Following.Contains(followedID) {
		return model.ErrAlreadyFollowing
	}

	if err := l.mutate(ctx, "follow", followerID, followedID, true); err != nil {
		return err
	}

	l.logger.Info("Ledger service: user followed",
		"follower_id", followerID,
		"followed_id", followedID)

	return nil
}

// Unfollow removes the edge followerID -> followedID. Inactive accounts are
// accepted so edges towards deactivated users can still be dropped.
func (l *Ledger) Unfollow(ctx context.Context, followerID, followedID int64) (err error) {
	defer func() { metrics.RecordRelationOp("unfollow", err) }()

	l.logger.Debug("Ledger service: starting unfollow",
		"follower_id", followerID,
		"followed_id", followedID)

	if followerID == followedID {
		return model.ErrSelfRelation
	}

	follower, err := l.loadUser(ctx, followerID, model.RoleFollower, false)
	if err != nil {
		return err
	}
	if _, err := l.loadUser(ctx, followedID, model.RoleFollowed, false); err != nil {
		return err
	}

	if !follower.Following.Contains(followedID) {
		return model.ErrNotFollowing
	}

	if err := l.mutate(ctx, "unfollow", followerID, followedID, false); err != nil {
		return err
	}

	l.logger.Info("Ledger service: user unfollowed",
		"follower_id", followerID,
		"followed_id", followedID)

	return nil
}

// IsFollowing reports whether b is in the persisted following list of a.
func (l *Ledger) IsFollowing(ctx context.Context, a, b int64) (bool, error) {
	user, err := l.loadUser(ctx, a, model.RoleFollower, false)
	if err != nil {
		return false, err
	}

	return user.Following.Contains(b), nil
}

// mutate writes following(followerID) first and followers(followedID) second.
// The second write's outcome decides whether a failure is partial.
func (l *Ledger) mutate(ctx context.Context, op string, followerID, followedID int64, adding bool) error {
	firstApplied := false

	err := l.relationStore.RunInTx(ctx, func(ctx context.Context, w model.RelationWriter) error {
		write := w.Remove
		if adding {
			write = w.Add
		}

		changed, err := write(ctx, followerID, model.ListFollowing, followedID)
		if err != nil {
			return &model.StorageError{Op: fmt.Sprintf("update following of user %d", followerID), Err: err}
		}
		if !changed {
			// A concurrent request applied the same edge change first.
			if adding {
				return model.ErrAlreadyFollowing
			}
			return model.ErrNotFollowing
		}
		firstApplied = true

		changed, err = write(ctx, followedID, model.ListFollowers, followerID)
		if err != nil {
			return &model.StorageError{Op: fmt.Sprintf("update followers of user %d", followedID), Err: err}
		}
		if !changed {
			l.logger.Warn("Ledger service: followers list already reflected the change",
				"op", op,
				"follower_id", followerID,
				"followed_id", followedID)
		}

		return nil
	})

	if err == nil || firstApplied {
		l.invalidate(ctx, followerID, followedID)
	}
	if err == nil {
		return nil
	}

	if errors.Is(err, model.ErrAlreadyFollowing) || errors.Is(err, model.ErrNotFollowing) {
		return err
	}

	var storageErr *model.StorageError
	if !errors.As(err, &storageErr) {
		storageErr = &model.StorageError{Op: op, Err: err}
	}
	if firstApplied && !l.relationStore.Atomic() {
		storageErr.Partial = true
		l.logger.Error("Ledger service: graph left asymmetric, reconciliation required",
			"op", op,
			"follower_id", followerID,
			"followed_id", followedID,
			"error", storageErr.Err.Error())
	} else {
		l.logger.Error("Ledger service: storage failure",
			"op", op,
			"follower_id", followerID,
			"followed_id", followedID,
			"error", storageErr.Err.Error())
	}

	return storageErr
}

func (l *Ledger) loadUser(ctx context.Context, id int64, role string, requireActive bool) (model.User, error) {
	user, err := l.userStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, &model.UserNotFoundError{Role: role, UserID: id}
	}
	if err != nil {
		return model.User{}, &model.StorageError{Op: fmt.Sprintf("get %s user %d", role, id), Err: err}
	}

	if requireActive && !user.IsActive() {
		return model.User{}, &model.UserNotFoundError{Role: role, UserID: id}
	}

	return user, nil
}

func (l *Ledger) invalidate(ctx context.Context, ids ...int64) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, ids...); err != nil {
		l.logger.Warn("Ledger service: failed to invalidate cached profiles",
			"user_ids", ids,
			"error", err.Error())
	}
}
