package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/model"
)

// handleError maps domain errors to HTTP responses.
func handleError(w http.ResponseWriter, err error, log *logger.Logger) {
	var storageErr *model.StorageError

	switch {
	case errors.Is(err, model.ErrSelfRelation),
		errors.Is(err, model.ErrAlreadyFollowing),
		errors.Is(err, model.ErrNotFollowing):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &storageErr):
		log.Error("HTTP handler: storage failure",
			"partial", storageErr.Partial,
			"error", err.Error())
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:        "storage failure",
			Inconsistent: storageErr.Partial,
		})
	default:
		log.Error("HTTP handler: unexpected error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
