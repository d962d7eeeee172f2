package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
	Snapshot  healthSnapshot `json:"snapshot"`
}

type healthServices struct {
	Database string `json:"database"`
}

type healthSnapshot struct {
	Ready      bool    `json:"ready"`
	Bars       int     `json:"bars"`
	AgeSeconds float64 `json:"ageSeconds"`
	Error      string  `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disabled"
	if s.db != nil {
		dbStatus = "connected"
		if err := s.db.Ping(r.Context()); err != nil {
			dbStatus = "disconnected"
		}
	}

	var snap healthSnapshot
	if cur := s.snapshots.Current(); cur != nil {
		snap.Ready = cur.Payload != nil
		snap.Bars = cur.Bars
		snap.AgeSeconds = s.snapshots.Age().Seconds()
		if cur.Err != nil {
			snap.Error = cur.Err.Error()
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  healthServices{Database: dbStatus},
		Snapshot:  snap,
	})
}
