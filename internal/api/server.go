package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/HengWoo/TA-flagger/internal/metrics"
	"github.com/HengWoo/TA-flagger/internal/models"
	"github.com/HengWoo/TA-flagger/internal/scheduler"
)

const maxQueryLimit = 1000

// SnapshotSource exposes the analysis snapshot being served.
type SnapshotSource interface {
	Current() *scheduler.Snapshot
	Age() time.Duration
}

// TradeStore reads persisted trades.
type TradeStore interface {
	GetRecent(ctx context.Context, limit int) ([]models.Trade, error)
	GetStats(ctx context.Context) (*models.TradeStats, error)
}

// Pinger checks database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Port           int
	APIKey         string
	CORSOrigin     string
	CSVPath        string // served by /inspect-csv; empty disables it
	RateLimitRPS   float64
	RateLimitBurst int

	Snapshots SnapshotSource
	Trades    TradeStore // nil when persistence is disabled
	DB        Pinger     // nil when no database is configured
	Metrics   *metrics.Metrics
}

type Server struct {
	snapshots  SnapshotSource
	trades     TradeStore
	db         Pinger
	metrics    *metrics.Metrics
	csvPath    string
	apiKey     string
	handler    http.Handler
	httpServer *http.Server
}

func NewServer(opts Options) *Server {
	s := &Server{
		snapshots: opts.Snapshots,
		trades:    opts.Trades,
		db:        opts.DB,
		metrics:   opts.Metrics,
		csvPath:   opts.CSVPath,
		apiKey:    opts.APIKey,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /test", s.handleTest)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Payload routes
	mux.HandleFunc("GET /api/sugar-options-data", s.handlePayload)
	mux.HandleFunc("GET /inspect-csv", s.handleInspectCSV)

	// Trade routes
	mux.HandleFunc("GET /api/trades/stats", s.handleTradeStats)
	mux.HandleFunc("GET /api/trades/history", s.handleTradeHistory)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var handler http.Handler = s.authMiddleware(mux)
	handler = rateLimitMiddleware(handler, opts.RateLimitRPS, opts.RateLimitBurst, s.metrics)
	handler = corsMiddleware(handler, opts.CORSOrigin)
	handler = requestMiddleware(handler, s.metrics)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	slog.Info("REST API server started",
		"component", "api",
		"addr", "http://localhost"+s.httpServer.Addr,
		"auth", s.apiKey != "",
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- validation helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
