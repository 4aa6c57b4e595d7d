package api

import (
	"net/http"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
)

// handleListActivity returns activity trail records, newest first. Admin only.
func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	since, ok := parseTimeParam(r, "since", time.Time{})
	if !ok {
		writeValidationError(w, "since must be RFC 3339")
		return
	}

	records, err := s.activity.List(r.Context(), since, parseLimit(r, 0))
	if err != nil {
		s.logger.Error("activity list failed", "error", err)
		writePersistenceError(w, "failed to list activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// handleExportActivity serves an Excel workbook of the activity trail.
// Admin only; defaults to the last 30 days.
func (s *Server) handleExportActivity(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	since, ok := parseTimeParam(r, "since", time.Now().UTC().AddDate(0, 0, -30))
	if !ok {
		writeValidationError(w, "since must be RFC 3339")
		return
	}

	workbook, err := s.reports.ActivityWorkbook(r.Context(), since)
	if err != nil {
		s.logger.Error("activity export failed", "error", err)
		writePersistenceError(w, "failed to generate export")
		return
	}

	serveWorkbook(w, "greengiant-activity.xlsx", workbook)
}
