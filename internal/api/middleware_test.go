package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HengWoo/TA-flagger/internal/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, method, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		key    string
		path   string
		header string
		want   int
	}{
		{"no key configured", "", "/api/trades/stats", "", http.StatusOK},
		{"health is public", "k3y", "/health", "", http.StatusOK},
		{"metrics is public", "k3y", "/metrics", "", http.StatusOK},
		{"missing header", "k3y", "/api/sugar-options-data", "", http.StatusUnauthorized},
		{"wrong key", "k3y", "/api/sugar-options-data", "Bearer nope", http.StatusUnauthorized},
		{"basic scheme", "k3y", "/api/sugar-options-data", "Basic k3y", http.StatusUnauthorized},
		{"valid bearer", "k3y", "/api/sugar-options-data", "Bearer k3y", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Server{apiKey: tc.key}
			rr := serve(s.authMiddleware(okHandler), http.MethodGet, tc.path, tc.header)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int{
		"":            100,
		"?limit=50":   50,
		"?limit=0":    100,
		"?limit=-5":   100,
		"?limit=abc":  100,
		"?limit=1000": 1000,
		"?limit=2000": maxQueryLimit,
	}
	for query, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/trades/history"+query, nil)
		assert.Equal(t, want, parseLimit(req, 100), "query %q", query)
	}
}

func TestCorsMiddleware(t *testing.T) {
	h := corsMiddleware(okHandler, "https://dash.local")

	rr := serve(h, http.MethodGet, "/api/sugar-options-data", "")
	assert.Equal(t, "https://dash.local", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	called := false
	pre := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), "*")
	rr = serve(pre, http.MethodOptions, "/api/sugar-options-data", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, called, "preflight must not reach the handler")
}

func TestRateLimitMiddleware(t *testing.T) {
	m := metrics.New(nil)
	h := rateLimitMiddleware(okHandler, 0.001, 2, m)

	var codes []int
	for range 3 {
		codes = append(codes, serve(h, http.MethodGet, "/api/sugar-options-data", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RateLimited))

	// bucket is empty but health stays reachable
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "").Code)
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	h := rateLimitMiddleware(okHandler, 0, 0, nil)
	for i := range 50 {
		require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/test", "").Code, "request %d", i)
	}
}

func TestRequestMiddleware_ID(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	m := metrics.New(nil)
	h := requestMiddleware(inner, m)

	rr := serve(h, http.MethodGet, "/test", "")
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(requestIDHeader))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RequestsTotal.WithLabelValues("/test", "418")))

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RequestsTotal.WithLabelValues("other", "418")))
}
