package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"studystreak/internal/service"
)

// DataHandler handles backup export and import requests
type DataHandler struct {
	backupService *service.BackupService
}

// NewDataHandler creates a new data handler
func NewDataHandler(backupService *service.BackupService) *DataHandler {
	return &DataHandler{backupService: backupService}
}

func (h *DataHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return false
	}
	if !user.IsAdmin {
		respondWithError(w, http.StatusForbidden, "Admin access required", "", nil)
		return false
	}
	return true
}

// Export streams a full database backup as a JSON download
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	filename := fmt.Sprintf("studystreak-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.backupService.ExportToWriter(w); err != nil {
		// Headers are already written; all we can do is log
		log.Printf("Failed to export backup: %v", err)
	}
}

// Import restores a database backup from an uploaded JSON file
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)

	if err := h.backupService.ImportFromReader(r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Import failed", "Failed to import backup", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
