package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
)

// handleListReadings returns recently stored sensor readings, newest first.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpRead); err != nil {
		writeDomainError(w, err)
		return
	}

	limit := parseLimit(r, 0)
	readings, err := s.readings.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("reading list failed", "error", err)
		writePersistenceError(w, "failed to list readings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"readings": readings,
		"count":    len(readings),
	})
}

// handleExportReadings serves an Excel workbook of readings within a time
// window. Admin only; defaults to the last 7 days.
func (s *Server) handleExportReadings(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpAdminAction); err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	from, ok := parseTimeParam(r, "from", now.AddDate(0, 0, -7))
	if !ok {
		writeValidationError(w, "from must be RFC 3339")
		return
	}
	to, ok := parseTimeParam(r, "to", now)
	if !ok {
		writeValidationError(w, "to must be RFC 3339")
		return
	}

	workbook, err := s.reports.ReadingsWorkbook(r.Context(), from, to)
	if err != nil {
		s.logger.Error("readings export failed", "error", err)
		writePersistenceError(w, "failed to generate export")
		return
	}

	serveWorkbook(w, "greengiant-readings.xlsx", workbook)
}

// handlePiStatus returns the latest controller heartbeat snapshot.
func (s *Server) handlePiStatus(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r.Context())
	if err := auth.Authorize(actor, auth.OpRead); err != nil {
		writeDomainError(w, err)
		return
	}

	status, err := s.status.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// parseLimit reads a limit query parameter, falling back on bad input.
func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}

// parseTimeParam reads an RFC 3339 query parameter. Missing means fallback;
// present but malformed reports failure.
func parseTimeParam(r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// serveWorkbook writes an xlsx attachment response.
func serveWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(data)
}
