package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/socialgraph-server/internal/logger"
)

// RelationService defines follow graph operations.
type RelationService interface {
	Follow(ctx context.Context, followerID, followedID int64) error
	Unfollow(ctx context.Context, followerID, followedID int64) error
	IsFollowing(ctx context.Context, a, b int64) (bool, error)
}

type relationRequest struct {
	FollowedID *int64 `json:"followedId"`
}

// FollowingResponse answers a membership query.
type FollowingResponse struct {
	Following bool `json:"following"`
}

// Relation handles follow and unfollow endpoints.
type Relation struct {
	relationService RelationService
	logger          *logger.Logger
}

func NewRelation(relationService RelationService, logger *logger.Logger) *Relation {
	return &Relation{
		relationService: relationService,
		logger:          logger,
	}
}

// Follow handles POST /users/follow/{followerId}.
func (h *Relation) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, followedID, ok := h.parseEdge(w, r)
	if !ok {
		return
	}

	if err := h.relationService.Follow(r.Context(), followerID, followedID); err != nil {
		handleError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, AckResponse{Success: true, Message: "user followed successfully"})
}

// Unfollow handles POST /users/unfollow/{followerId}.
func (h *Relation) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, followedID, ok := h.parseEdge(w, r)
	if !ok {
		return
	}

	if err := h.relationService.Unfollow(r.Context(), followerID, followedID); err != nil {
		handleError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, AckResponse{Success: true, Message: "user unfollowed successfully"})
}

// IsFollowing handles GET /users/{id}/following/{targetId}.
func (h *Relation) IsFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID, err := pathID(r, "targetId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	following, err := h.relationService.IsFollowing(r.Context(), userID, targetID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, FollowingResponse{Following: following})
}

func (h *Relation) parseEdge(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	followerID, err := pathID(r, "followerId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}

	var req relationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Debug("Relation handler: bad request body", "error", err.Error())
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	if req.FollowedID == nil || *req.FollowedID <= 0 {
		writeError(w, http.StatusBadRequest, "followedId must be a positive integer")
		return 0, 0, false
	}

	return followerID, *req.FollowedID, true
}
