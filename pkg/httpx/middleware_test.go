package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagMiddleware(tag string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Order", tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChain_Order(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), tagMiddleware("outer"), tagMiddleware("inner"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// First middleware in the list runs first.
	assert.Equal(t, []string{"outer", "inner"}, rec.Header().Values("X-Order"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestChain_NoMiddleware(t *testing.T) {
	called := false
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestRateLimitByIP(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RateLimitByIP(cfg))

	newReq := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:40000"
		return r
	}

	for i := range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newReq())
		require.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different client is unaffected.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:40000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*http.Request)
		expect string
	}{
		{
			name:   "remote addr",
			setup:  func(r *http.Request) { r.RemoteAddr = "10.1.2.3:1234" },
			expect: "10.1.2.3",
		},
		{
			name: "x-forwarded-for wins",
			setup: func(r *http.Request) {
				r.RemoteAddr = "10.1.2.3:1234"
				r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
			},
			expect: "203.0.113.9",
		},
		{
			name: "x-real-ip",
			setup: func(r *http.Request) {
				r.RemoteAddr = "10.1.2.3:1234"
				r.Header.Set("X-Real-IP", "198.51.100.7")
			},
			expect: "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			assert.Equal(t, tt.expect, IPKeyExtractor(r))
		})
	}
}
