package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HengWoo/TA-flagger/internal/models"
)

type fetchFunc func(ctx context.Context) (*models.Payload, error)

func (f fetchFunc) Fetch(ctx context.Context) (*models.Payload, error) { return f(ctx) }

func TestSession_StartsLoading(t *testing.T) {
	s := NewSession(fetchFunc(func(context.Context) (*models.Payload, error) {
		return &models.Payload{}, nil
	}))
	assert.IsType(t, Loading{}, s.State())
	assert.False(t, Settled(s.State()))
}

func TestSession_Loaded(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, validBody)
	s := NewSession(NewDashboardClient(srv.URL, "", 5*time.Second))

	var mu sync.Mutex
	var seen []State
	s.OnChange = func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	}

	s.Mount(context.Background())
	st := s.Wait(context.Background())

	loaded, ok := st.(Loaded)
	require.True(t, ok, "expected Loaded, got %T", st)
	assert.Len(t, loaded.Payload.Data, 2)
	assert.Len(t, loaded.Payload.IndicatorData, 1)
	assert.Len(t, loaded.Payload.Signals, 2)
	assert.Len(t, loaded.Payload.Trades, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.IsType(t, Loading{}, seen[0])
	assert.IsType(t, Loaded{}, seen[1])
}

func TestSession_HTTP500(t *testing.T) {
	srv, _ := serve(t, http.StatusInternalServerError, ``)
	s := NewSession(NewDashboardClient(srv.URL, "", 5*time.Second))
	s.Mount(context.Background())

	st := s.Wait(context.Background())
	failed, ok := st.(Failed)
	require.True(t, ok, "expected Failed, got %T", st)
	assert.Contains(t, failed.Message, "500")
	assert.True(t, Settled(st))
}

func TestSession_MalformedPayload(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `{"data":[],"indicatorData":[],"signals":{}}`)
	s := NewSession(NewDashboardClient(srv.URL, "", 5*time.Second))
	s.Mount(context.Background())

	failed, ok := s.Wait(context.Background()).(Failed)
	require.True(t, ok)
	assert.True(t, errors.Is(failed.Err, ErrMalformedPayload))
	assert.Contains(t, failed.Message, "trades")
}

func TestSession_InvalidTradeValues(t *testing.T) {
	body := `{"data":[{"date":"2024-01-01 09:00:00","close":1}],"indicatorData":[],"signals":{},
		"trades":[{"buy_date":"garbage","sell_date":"x","buy_price":null,"sell_price":1,"profit":null,"indicators":["RSI"]}]}`
	srv, _ := serve(t, http.StatusOK, body)
	s := NewSession(NewDashboardClient(srv.URL, "", 5*time.Second))
	s.Mount(context.Background())

	st := s.Wait(context.Background())
	failed, ok := st.(Failed)
	require.True(t, ok, "expected Failed, got %T", st)
	assert.ErrorIs(t, failed.Err, ErrMalformedPayload)
	assert.Contains(t, failed.Message, "trades[0]")
}

func TestSession_UnmountDiscardsResult(t *testing.T) {
	started := make(chan struct{})
	s := NewSession(fetchFunc(func(ctx context.Context) (*models.Payload, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	calls := 0
	s.OnChange = func(State) { calls++ }

	s.Mount(context.Background())
	<-started
	s.Unmount()

	assert.IsType(t, Loading{}, s.State())
	assert.Equal(t, 1, calls, "only the initial Loading is published")
}

func TestSession_UnmountFromCallback(t *testing.T) {
	s := NewSession(fetchFunc(func(context.Context) (*models.Payload, error) {
		return nil, errors.New("connection refused")
	}))

	var unmounted atomic.Bool
	s.OnChange = func(st State) {
		if _, failed := st.(Failed); failed {
			s.Unmount()
			unmounted.Store(true)
		}
	}

	s.Mount(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st := s.Wait(ctx)

	require.NoError(t, ctx.Err(), "Unmount inside OnChange must not block")
	assert.True(t, unmounted.Load())
	assert.IsType(t, Failed{}, st)
}

func TestSession_MountOnce(t *testing.T) {
	var n int
	var mu sync.Mutex
	s := NewSession(fetchFunc(func(context.Context) (*models.Payload, error) {
		mu.Lock()
		n++
		mu.Unlock()
		return &models.Payload{}, nil
	}))

	s.Mount(context.Background())
	s.Mount(context.Background())
	s.Wait(context.Background())
	s.Unmount()
	s.Mount(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestSession_UnmountBeforeMount(t *testing.T) {
	s := NewSession(fetchFunc(func(context.Context) (*models.Payload, error) {
		t.Fatal("fetch must not run")
		return nil, nil
	}))
	s.Unmount()
	s.Mount(context.Background())
	assert.IsType(t, Loading{}, s.Wait(context.Background()))
}
