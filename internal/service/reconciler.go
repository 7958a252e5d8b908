package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/metrics"
	"github.com/dtroode/socialgraph-server/internal/model"
)

var errRowChanged = errors.New("row changed since snapshot")

// Reconciler repairs asymmetric, duplicated, self-referencing or dangling
// adjacency entries. The following lists are authoritative.
type Reconciler struct {
	userStore model.UserStore
	relations model.RelationStore
	cache     model.ProfileCache
	archive   model.ReportArchive
	logger    *logger.Logger
	now       func() time.Time

	mu sync.Mutex
}

// NewReconciler creates a Reconciler. cache and archive may be nil.
func NewReconciler(
	userStore model.UserStore,
	relations model.RelationStore,
	cache model.ProfileCache,
	archive model.ReportArchive,
	logger *logger.Logger,
) *Reconciler {
	return &Reconciler{
		userStore: userStore,
		relations: relations,
		cache:     cache,
		archive:   archive,
		logger:    logger,
		now:       time.Now,
	}
}

// Run performs one reconciliation pass. Passes never overlap.
func (r *Reconciler) Run(ctx context.Context) (report model.ReconcileReport, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report.StartedAt = r.now()
	defer func() {
		report.FinishedAt = r.now()
		metrics.RecordReconcile(report, err)
	}()

	users, err := r.userStore.Snapshot(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to snapshot users: %w", err)
	}
	report.UsersScanned = len(users)

	repaired := make([]int64, 0)
	for _, plan := range planRepairs(users) {
		err := r.relations.RunInTx(ctx, func(ctx context.Context, w model.RelationWriter) error {
			return applyRepair(ctx, w, plan)
		})
		if errors.Is(err, errRowChanged) || errors.Is(err, model.ErrTxConflict) {
			report.Conflicts++
			r.logger.Debug("Reconciler: rows changed since snapshot, skipping",
				"user_id", plan.UserID,
				"list", plan.List,
				"reason", err.Error())
			continue
		}
		if err != nil {
			r.invalidate(ctx, repaired)
			return report, fmt.Errorf("failed to repair %s of user %d: %w", plan.List, plan.UserID, err)
		}
		report.Repairs = append(report.Repairs, plan)
		repaired = append(repaired, plan.UserID)
	}
	r.invalidate(ctx, repaired)

	r.logger.Info("Reconciler: pass finished",
		"users_scanned", report.UsersScanned,
		"repairs", len(report.Repairs),
		"conflicts", report.Conflicts)

	report.FinishedAt = r.now()
	r.archiveReport(ctx, report)

	return report, nil
}

// applyRepair swaps one list back to its planned value. A followers list is
// derived from other users' following lists, so each follower whose
// membership changes has its row locked first and must still agree with the
// plan; otherwise a concurrent Follow or Unfollow would be undone.
func applyRepair(ctx context.Context, w model.RelationWriter, plan model.Repair) error {
	if plan.List == model.ListFollowers {
		for _, followerID := range changedMembers(plan.Before, plan.After) {
			following, err := w.LockFollowing(ctx, followerID)
			if err != nil && !errors.Is(err, model.ErrNotFound) {
				return err
			}
			if following.Contains(plan.UserID) != plan.After.Contains(followerID) {
				return errRowChanged
			}
		}
	}

	swapped, err := w.CompareAndSwap(ctx, plan.UserID, plan.List, plan.Before, plan.After)
	if err != nil {
		return err
	}
	if !swapped {
		return errRowChanged
	}

	return nil
}

// changedMembers returns the IDs present in exactly one of the lists, in
// ascending order so rows are always locked in the same order.
func changedMembers(before, after model.IDList) []int64 {
	var out []int64
	for _, id := range before {
		if !after.Contains(id) {
			out = append(out, id)
		}
	}
	for _, id := range after {
		if !before.Contains(id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)

	return slices.Compact(out)
}

// planRepairs computes, from one snapshot, every list that must be rewritten.
func planRepairs(users []model.User) []model.Repair {
	exists := make(map[int64]struct{}, len(users))
	for _, u := range users {
		exists[u.ID] = struct{}{}
	}

	desiredFollowing := make(map[int64]model.IDList, len(users))
	desiredFollowers := make(map[int64]map[int64]struct{}, len(users))
	for _, u := range users {
		desiredFollowers[u.ID] = make(map[int64]struct{})
	}
	for _, u := range users {
		clean := make(model.IDList, 0, len(u.Following))
		for _, id := range u.Following.Normalize() {
			if id == u.ID {
				continue
			}
			if _, ok := exists[id]; !ok {
				continue
			}
			clean = append(clean, id)
			desiredFollowers[id][u.ID] = struct{}{}
		}
		desiredFollowing[u.ID] = clean
	}

	var repairs []model.Repair
	for _, u := range users {
		if want := desiredFollowing[u.ID]; !u.Following.SameSet(want) {
			repairs = append(repairs, model.Repair{
				UserID: u.ID,
				List:   model.ListFollowing,
				Before: u.Following.Clone(),
				After:  want,
			})
		}

		want := mergeFollowers(u.Followers, desiredFollowers[u.ID])
		if !u.Followers.SameSet(want) {
			repairs = append(repairs, model.Repair{
				UserID: u.ID,
				List:   model.ListFollowers,
				Before: u.Followers.Clone(),
				After:  want,
			})
		}
	}

	return repairs
}

// mergeFollowers keeps the current order of valid followers and appends
// missing ones in ascending order.
func mergeFollowers(current model.IDList, desired map[int64]struct{}) model.IDList {
	out := make(model.IDList, 0, len(desired))
	seen := make(map[int64]struct{}, len(desired))
	for _, id := range current {
		if _, ok := desired[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	var missing model.IDList
	for id := range desired {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)

	return append(out, missing...)
}

func (r *Reconciler) invalidate(ctx context.Context, ids []int64) {
	if r.cache == nil || len(ids) == 0 {
		return
	}
	if err := r.cache.Invalidate(ctx, ids...); err != nil {
		r.logger.Warn("Reconciler: failed to invalidate cached profiles",
			"user_ids", ids,
			"error", err.Error())
	}
}

func (r *Reconciler) archiveReport(ctx context.Context, report model.ReconcileReport) {
	if r.archive == nil || len(report.Repairs) == 0 {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		r.logger.Error("Reconciler: failed to encode report", "error", err.Error())
		return
	}

	key := reportKey(report.StartedAt)
	if err := r.archive.Upload(ctx, key, bytes.NewReader(payload), int64(len(payload))); err != nil {
		r.logger.Error("Reconciler: failed to archive report",
			"key", key,
			"error", err.Error())
		return
	}

	r.logger.Info("Reconciler: report archived", "key", key)
}

func reportKey(startedAt time.Time) string {
	return fmt.Sprintf("reconcile/%s.json", startedAt.UTC().Format("20060102T150405.000000000Z"))
}
