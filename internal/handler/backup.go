package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/backup"
	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/store"
)

const backupListLimit = 50

type BackupHandler struct {
	manager     *backup.Manager
	backupStore *store.BackupStore
	logger      *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backupStore: bs, logger: logger}
}

// List handles GET /admin/backups
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupStore.List(backupListLimit)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

// Run handles POST /admin/backups. The backup outlives the request if the
// caller disconnects.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	record, err := h.manager.RunNow(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, backup.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, backup.ErrInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		h.logger.Error("manual backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed: "+err.Error())
	default:
		writeJSON(w, http.StatusCreated, record)
	}
}

// Status handles GET /admin/backups/status
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	count, total, err := h.backupStore.Stats()
	if err != nil {
		h.logger.Error("backup stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load backup stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      h.manager.Status(),
		"count":       count,
		"total_bytes": total,
	})
}
