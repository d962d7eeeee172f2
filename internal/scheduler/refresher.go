package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HengWoo/TA-flagger/internal/analysis"
	"github.com/HengWoo/TA-flagger/internal/metrics"
	"github.com/HengWoo/TA-flagger/internal/models"
)

// ErrNoSnapshot means no refresh has completed yet.
var ErrNoSnapshot = errors.New("analysis not ready yet")

// TradeRecorder persists the trades of one snapshot.
type TradeRecorder interface {
	RecordSnapshot(ctx context.Context, trades []models.Trade) (int64, error)
}

// TradeNotifier announces newly closed trades.
type TradeNotifier interface {
	NotifyTrades(ctx context.Context, symbol string, trades []models.Trade) error
}

// Snapshot is the analysis result currently served.
type Snapshot struct {
	Payload *models.Payload
	Bars    int
	BuiltAt time.Time
	// Err is set when the latest refresh failed. Payload then still holds
	// the last good result, if any.
	Err error
}

type RefresherConfig struct {
	Symbol   string
	Schedule string        // cron spec, e.g. "@every 1h"
	Timeout  time.Duration // per refresh
	Recorder TradeRecorder // optional
	Notifier TradeNotifier // optional
	Metrics  *metrics.Metrics
}

// Refresher rebuilds the served snapshot on a cron schedule.
type Refresher struct {
	source analysis.BarSource
	cfg    RefresherConfig

	current   atomic.Pointer[Snapshot]
	refreshMu sync.Mutex

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	wg      sync.WaitGroup
}

func NewRefresher(source analysis.BarSource, cfg RefresherConfig) *Refresher {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1h"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Refresher{source: source, cfg: cfg}
}

// Start runs one refresh in the background and schedules the rest.
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		slog.Warn("refresher already running", "component", "scheduler")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.cfg.Schedule, r.scheduled); err != nil {
		return fmt.Errorf("schedule %q: %w", r.cfg.Schedule, err)
	}
	c.Start()
	r.cron = c
	r.running = true

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.scheduled()
	}()

	slog.Info("refresher started", "component", "scheduler", "schedule", r.cfg.Schedule)
	return nil
}

// Stop halts the schedule and waits for in-flight refreshes.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	c := r.cron
	r.running = false
	r.cron = nil
	r.mu.Unlock()

	<-c.Stop().Done()
	r.wg.Wait()
	slog.Info("refresher stopped", "component", "scheduler")
}

func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Current returns the served snapshot, or nil before the first refresh.
func (r *Refresher) Current() *Snapshot {
	return r.current.Load()
}

// Age is the time since the last successful refresh; zero before one.
func (r *Refresher) Age() time.Duration {
	s := r.current.Load()
	if s == nil || s.BuiltAt.IsZero() {
		return 0
	}
	return time.Since(s.BuiltAt)
}

// RefreshNow rebuilds the snapshot outside the schedule.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	slog.Info("manual refresh triggered", "component", "scheduler")
	return r.refresh(ctx)
}

func (r *Refresher) scheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()
	if err := r.refresh(ctx); err != nil {
		slog.Error("refresh failed", "component", "scheduler", "err", err)
	}
}

func (r *Refresher) refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	start := time.Now()
	prev := r.current.Load()

	payload, bars, err := r.build(ctx)
	if m := r.cfg.Metrics; m != nil {
		m.RefreshDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		failed := &Snapshot{Err: err}
		if prev != nil {
			failed.Payload, failed.Bars, failed.BuiltAt = prev.Payload, prev.Bars, prev.BuiltAt
		}
		r.current.Store(failed)
		r.count("error")
		return err
	}

	r.current.Store(&Snapshot{Payload: payload, Bars: bars, BuiltAt: time.Now()})
	r.count("ok")
	if m := r.cfg.Metrics; m != nil {
		m.SnapshotBars.Set(float64(bars))
		m.SnapshotTrades.Set(float64(len(payload.Trades)))
	}

	slog.Info("snapshot refreshed",
		"component", "scheduler",
		"symbol", r.cfg.Symbol,
		"bars", bars,
		"trades", len(payload.Trades),
		"took", time.Since(start).Round(time.Millisecond),
	)

	if r.cfg.Recorder != nil {
		n, err := r.cfg.Recorder.RecordSnapshot(ctx, payload.Trades)
		if err != nil {
			slog.Error("record trades failed", "component", "scheduler", "err", err)
		} else if m := r.cfg.Metrics; m != nil {
			m.TradesRecorded.Add(float64(n))
		}
	}

	// The first snapshot has nothing to compare against.
	if r.cfg.Notifier != nil && prev != nil && prev.Payload != nil {
		if fresh := NewTrades(prev.Payload.Trades, payload.Trades); len(fresh) > 0 {
			if err := r.cfg.Notifier.NotifyTrades(ctx, r.cfg.Symbol, fresh); err != nil {
				slog.Warn("trade notification failed", "component", "scheduler", "err", err)
			}
		}
	}
	return nil
}

func (r *Refresher) build(ctx context.Context) (*models.Payload, int, error) {
	bars, err := r.source.LoadBars(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load bars: %w", err)
	}
	payload, err := analysis.Run(bars)
	if err != nil {
		return nil, 0, fmt.Errorf("analyze: %w", err)
	}
	return payload, len(bars), nil
}

func (r *Refresher) count(result string) {
	if m := r.cfg.Metrics; m != nil {
		m.RefreshTotal.WithLabelValues(result).Inc()
	}
}

// NewTrades returns the trades of next that prev does not contain.
// Identical trades are matched by multiplicity.
func NewTrades(prev, next []models.Trade) []models.Trade {
	seen := make(map[string]int, len(prev))
	for _, t := range prev {
		seen[tradeKey(t)]++
	}
	var out []models.Trade
	for _, t := range next {
		k := tradeKey(t)
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		out = append(out, t)
	}
	return out
}

func tradeKey(t models.Trade) string {
	return fmt.Sprintf("%s|%s|%g|%g", t.BuyDate, t.SellDate, t.BuyPrice, t.SellPrice)
}
