package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/model"
)

// ReconcileService repairs the follow graph on demand.
type ReconcileService interface {
	Run(ctx context.Context) (model.ReconcileReport, error)
}

// Admin handles operator endpoints.
type Admin struct {
	reconcileService ReconcileService
	logger           *logger.Logger
}

func NewAdmin(reconcileService ReconcileService, logger *logger.Logger) *Admin {
	return &Admin{
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// Reconcile handles POST /admin/reconcile.
func (h *Admin) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileService.Run(r.Context())
	if err != nil {
		h.logger.Error("Admin handler: reconciliation failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
