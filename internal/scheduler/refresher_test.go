package scheduler

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HengWoo/TA-flagger/internal/metrics"
	"github.com/HengWoo/TA-flagger/internal/models"
)

type fakeSource struct {
	mu   sync.Mutex
	bars []models.Bar
	err  error
}

func (f *fakeSource) LoadBars(context.Context) ([]models.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bars, f.err
}

func (f *fakeSource) set(bars []models.Bar, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bars, f.err = bars, err
}

type fakeRecorder struct {
	calls int
	last  []models.Trade
}

func (f *fakeRecorder) RecordSnapshot(_ context.Context, trades []models.Trade) (int64, error) {
	f.calls++
	f.last = trades
	return int64(len(trades)), nil
}

type fakeNotifier struct {
	calls int
}

func (f *fakeNotifier) NotifyTrades(context.Context, string, []models.Trade) error {
	f.calls++
	return nil
}

func bars(n int) []models.Bar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Bar, n)
	for i := range out {
		c := 50 + 5*math.Sin(float64(i)/4)
		out[i] = models.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return out
}

func TestRefreshNow(t *testing.T) {
	src := &fakeSource{bars: bars(80)}
	rec := &fakeRecorder{}
	notif := &fakeNotifier{}
	m := metrics.New(nil)

	r := NewRefresher(src, RefresherConfig{Symbol: "SUGAR", Recorder: rec, Notifier: notif, Metrics: m})
	assert.Nil(t, r.Current())
	assert.Zero(t, r.Age())

	require.NoError(t, r.RefreshNow(context.Background()))

	snap := r.Current()
	require.NotNil(t, snap)
	assert.NoError(t, snap.Err)
	assert.Equal(t, 80, snap.Bars)
	assert.Len(t, snap.Payload.Data, 80)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 0, notif.calls, "first snapshot does not notify")
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RefreshTotal.WithLabelValues("ok")))
	assert.Equal(t, 80.0, promtest.ToFloat64(m.SnapshotBars))
}

func TestRefreshNow_FailureKeepsLastPayload(t *testing.T) {
	src := &fakeSource{bars: bars(30)}
	m := metrics.New(nil)
	r := NewRefresher(src, RefresherConfig{Metrics: m})
	require.NoError(t, r.RefreshNow(context.Background()))
	good := r.Current()

	src.set(nil, errors.New("disk gone"))
	err := r.RefreshNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")

	snap := r.Current()
	require.Error(t, snap.Err)
	assert.Same(t, good.Payload, snap.Payload)
	assert.Equal(t, good.BuiltAt, snap.BuiltAt)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RefreshTotal.WithLabelValues("error")))
}

func TestRefreshNow_EmptySource(t *testing.T) {
	r := NewRefresher(&fakeSource{}, RefresherConfig{})
	err := r.RefreshNow(context.Background())
	require.Error(t, err)
	require.NotNil(t, r.Current())
	assert.Nil(t, r.Current().Payload)
}

func TestStartStop(t *testing.T) {
	r := NewRefresher(&fakeSource{bars: bars(10)}, RefresherConfig{Schedule: "@every 1h"})
	require.NoError(t, r.Start())
	assert.True(t, r.Running())

	require.Eventually(t, func() bool { return r.Current() != nil }, 2*time.Second, 10*time.Millisecond)

	r.Stop()
	assert.False(t, r.Running())
	r.Stop()
}

func TestStart_BadSchedule(t *testing.T) {
	r := NewRefresher(&fakeSource{}, RefresherConfig{Schedule: "whenever"})
	assert.Error(t, r.Start())
	assert.False(t, r.Running())
}

func TestNewTrades(t *testing.T) {
	a := models.Trade{BuyDate: "2024-01-01 00:00:00", SellDate: "2024-01-02 00:00:00", BuyPrice: 1, SellPrice: 2}
	b := models.Trade{BuyDate: "2024-01-01 00:00:00", SellDate: "2024-01-03 00:00:00", BuyPrice: 1, SellPrice: 3}

	assert.Empty(t, NewTrades([]models.Trade{a, b}, []models.Trade{a, b}))
	assert.Equal(t, []models.Trade{b}, NewTrades([]models.Trade{a}, []models.Trade{a, b}))
	assert.Equal(t, []models.Trade{a}, NewTrades([]models.Trade{a}, []models.Trade{a, a}))
	assert.Equal(t, []models.Trade{a, b}, NewTrades(nil, []models.Trade{a, b}))
}
