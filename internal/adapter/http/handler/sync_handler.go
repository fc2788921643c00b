package handler

import (
	"context"
	"net/http"

	"github.com/mandibook/mandiledger/internal/adapter/http/dto"
	"github.com/mandibook/mandiledger/internal/domain"
)

// SyncService defines the behavior needed by SyncHandler.
type SyncService interface {
	SyncData(ctx context.Context) (*domain.SyncLog, error)
	ListRecentLogs(ctx context.Context, limit int) ([]*domain.SyncLog, error)
}

// SyncHandler handles synchronization HTTP requests.
type SyncHandler struct {
	syncUC SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncUC SyncService) *SyncHandler {
	return &SyncHandler{syncUC: syncUC}
}

// SyncNow runs a full reconciliation sweep and reports its outcome.
func (h *SyncHandler) SyncNow(w http.ResponseWriter, r *http.Request) {
	log, err := h.syncUC.SyncData(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "sync failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SyncLogFromDomain(log))
}

// ListLogs lists recent reconciliation sweeps, newest first.
func (h *SyncHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)

	logs, err := h.syncUC.ListRecentLogs(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list sync logs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SyncLogsFromDomain(logs))
}
