package api

import (
	"log/slog"
	"net/http"

	"github.com/HengWoo/TA-flagger/internal/analysis"
	"github.com/HengWoo/TA-flagger/internal/scheduler"
)

// handleTradeStats reads persisted trades when available and otherwise
// summarizes the trades of the current snapshot.
func (s *Server) handleTradeStats(w http.ResponseWriter, r *http.Request) {
	if s.trades != nil {
		stats, err := s.trades.GetStats(r.Context())
		if err != nil {
			slog.Error("fetch trade stats failed", "component", "api", "request_id", RequestID(r.Context()), "err", err)
			writeError(w, http.StatusInternalServerError, "failed to fetch trade stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
		return
	}

	snap := s.snapshots.Current()
	if snap == nil || snap.Payload == nil {
		writeError(w, http.StatusServiceUnavailable, scheduler.ErrNoSnapshot.Error())
		return
	}
	stats, err := analysis.Summarize(snap.Payload.Trades)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to summarize trades")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTradeHistory(w http.ResponseWriter, r *http.Request) {
	if s.trades == nil {
		writeError(w, http.StatusServiceUnavailable, "trade persistence is disabled")
		return
	}

	limit := parseLimit(r, 100)
	trades, err := s.trades.GetRecent(r.Context(), limit)
	if err != nil {
		slog.Error("fetch trade history failed", "component", "api", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trades")
		return
	}
	writeJSON(w, http.StatusOK, trades)
}
