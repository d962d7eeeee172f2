package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HengWoo/TA-flagger/internal/httputil"
)

const validBody = `{
	"data": [
		{"date": "2024-03-01 10:00:00", "close": 20.5, "SMA_20": null},
		{"date": "2024-03-01 11:00:00", "close": 20.75, "SMA_20": 20.6}
	],
	"indicatorData": [
		{"date": "2024-03-01 11:00:00", "indicator": "RSI", "value": 28.4, "action": "buy"}
	],
	"signals": {
		"RSI": [{"date": "2024-03-01 11:00:00", "close": 20.75, "action": "buy"}],
		"SMA": []
	},
	"trades": [
		{"buy_date": "2024-03-01 11:00:00", "sell_date": "2024-03-02 10:00:00",
		 "buy_price": 20.75, "sell_price": 21.0, "profit": 0.25,
		 "indicators": ["RSI", "BB", "CCI", "WILLR", "Stoch", "EMA"]}
	]
}`

func serve(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetch_Loaded(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, validBody)
	c := NewDashboardClient(srv.URL, "", 5*time.Second)

	p, err := c.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, p.Data, 2)
	assert.Equal(t, "2024-03-01 10:00:00", p.Data[0].Date)
	assert.Nil(t, p.Data[0].Values["SMA_20"])
	v, ok := p.Data[1].Value("SMA_20")
	assert.True(t, ok)
	assert.Equal(t, 20.6, v)

	require.Len(t, p.IndicatorData, 1)
	assert.Equal(t, "RSI", p.IndicatorData[0].Indicator)
	assert.Len(t, p.Signals, 2)
	assert.Len(t, p.Signals["RSI"], 1)
	require.Len(t, p.Trades, 1)
	assert.Equal(t, 0.25, p.Trades[0].Profit)
}

func TestFetch_ServerErrorNotRetried(t *testing.T) {
	srv, hits := serve(t, http.StatusInternalServerError, `{"error":"boom"}`)
	c := NewDashboardClient(srv.URL, "", 5*time.Second)

	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, int32(1), hits.Load())

	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestFetch_ClientError(t *testing.T) {
	srv, _ := serve(t, http.StatusNotFound, `not found`)
	c := NewDashboardClient(srv.URL, "", 5*time.Second)

	_, err := c.Fetch(context.Background())
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_SendsBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(validBody))
	}))
	defer srv.Close()

	_, err := NewDashboardClient(srv.URL, "k3y", 5*time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer k3y", auth)
}

func TestFetch_TransportError(t *testing.T) {
	c := NewDashboardClient("http://127.0.0.1:1/api", "", time.Second)
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard fetch")
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `{"data": [`)
	_, err := NewDashboardClient(srv.URL, "", time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse JSON")
	assert.False(t, errors.Is(err, ErrMalformedPayload))
}

func TestFetch_MissingField(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `{"data": [], "indicatorData": [], "signals": {}}`)
	_, err := NewDashboardClient(srv.URL, "", time.Second).Fetch(context.Background())
	require.ErrorIs(t, err, ErrMalformedPayload)

	var pe *PayloadError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "trades", pe.Field)
}

func TestDefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewDashboardClient("", "", 0).URL())
}
