package api

import (
	"log/slog"
	"net/http"

	"github.com/HengWoo/TA-flagger/internal/analysis"
	"github.com/HengWoo/TA-flagger/internal/scheduler"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the sugar options analysis API"})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Test route is working"})
}

// handlePayload serves the current snapshot. A failed latest refresh is
// reported as 500 even when an older payload exists.
func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, scheduler.ErrNoSnapshot.Error())
		return
	}
	if snap.Err != nil {
		slog.Error("serving failed snapshot", "component", "api", "request_id", RequestID(r.Context()), "err", snap.Err)
		writeError(w, http.StatusInternalServerError, "unexpected error: "+snap.Err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap.Payload)
}

func (s *Server) handleInspectCSV(w http.ResponseWriter, r *http.Request) {
	if s.csvPath == "" {
		writeError(w, http.StatusNotFound, "no CSV source configured")
		return
	}
	info, err := analysis.InspectCSV(s.csvPath)
	if err != nil {
		slog.Error("inspect csv failed", "component", "api", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "error inspecting CSV: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}
