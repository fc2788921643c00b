package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mandibook/mandiledger/internal/usecase"
)

// DashboardService defines the behavior needed by DashboardHandler.
type DashboardService interface {
	GetSummary(ctx context.Context, from, to time.Time) (*usecase.Summary, error)
}

// DashboardHandler handles dashboard HTTP requests.
type DashboardHandler struct {
	dashboardUC DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardUC DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC}
}

// Summary returns the aggregated view for a period. Without query
// parameters it covers the current month so far.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	from := parseDateQuery(r, "from", monthStart)
	to := parseDateQuery(r, "to", now)

	summary, err := h.dashboardUC.GetSummary(r.Context(), from, to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
