package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/model"
)

// ProfileService composes public profiles.
type ProfileService interface {
	GetPublicProfile(ctx context.Context, targetID int64) (model.PublicProfile, error)
}

// Profile handles the public profile endpoint.
type Profile struct {
	profileService ProfileService
	logger         *logger.Logger
}

func NewProfile(profileService ProfileService, logger *logger.Logger) *Profile {
	return &Profile{
		profileService: profileService,
		logger:         logger,
	}
}

// Get handles GET /users/profile/{id}.
func (h *Profile) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.GetPublicProfile(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
