package registry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinebun/registry/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	allowed, denied int
	routes          []string
}

func (c *countingRecorder) RecordRateDecision(route string, allowed bool) {
	c.routes = append(c.routes, route)
	if allowed {
		c.allowed++
		return
	}
	c.denied++
}

func TestDefaultKeyFunc_PrefersHeaderWhenSet(t *testing.T) {
	fn := DefaultKeyFunc("X-Client", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Client", " client-123 ")

	assert.Equal(t, "client-123", fn(r))
}

func TestDefaultKeyFunc_TrustXForwardedForUsesFirstIP(t *testing.T) {
	fn := DefaultKeyFunc("", true)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	assert.Equal(t, "1.2.3.4", fn(r))
}

func TestDefaultKeyFunc_IgnoresXForwardedForWhenUntrusted(t *testing.T) {
	fn := DefaultKeyFunc("", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")

	assert.Equal(t, "10.0.0.9", fn(r))
}

func TestDefaultKeyFunc_FallsBackToRawRemoteAddr(t *testing.T) {
	fn := DefaultKeyFunc("", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", fn(r))

	r.RemoteAddr = ""
	assert.Equal(t, "unknown", fn(r))
}

func TestRateLimitMiddleware_AllowsThenRejectsSameKey(t *testing.T) {
	store := infra.NewLimiterStore(0.02, 1)
	rec := &countingRecorder{}

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	h := RateLimitMiddleware(RateLimitOptions{
		Store:               store,
		Recorder:            rec,
		RetryAfter:          1 * time.Second,
		AddRateLimitHeaders: true,
	})(next)

	r1 := httptest.NewRequest(http.MethodPost, "http://example/v1/slots", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	require.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "10.0.0.1", w1.Header().Get("X-RateLimit-Key"))
	assert.Equal(t, "0.02", w1.Header().Get("X-RateLimit-RPS"))
	assert.Equal(t, "1", w1.Header().Get("X-RateLimit-Burst"))

	// segunda deve bloquear (burst=1 e rps bem baixo)
	r2 := httptest.NewRequest(http.MethodPost, "http://example/v1/slots", nil)
	r2.RemoteAddr = "10.0.0.1:9999"
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Equal(t, "1", w2.Header().Get("Retry-After"))

	// outra chave tem seu próprio bucket
	r3 := httptest.NewRequest(http.MethodPost, "http://example/v1/slots", nil)
	r3.RemoteAddr = "10.0.0.2:1234"
	w3 := httptest.NewRecorder()
	h.ServeHTTP(w3, r3)
	assert.Equal(t, http.StatusOK, w3.Code)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, rec.allowed)
	assert.Equal(t, 1, rec.denied)
	assert.Equal(t, []string{UnmatchedRoute, UnmatchedRoute, UnmatchedRoute}, rec.routes)
}

func TestRateLimitMiddleware_NoStoreAllowsEverything(t *testing.T) {
	h := RateLimitMiddleware(RateLimitOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "http://example/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
