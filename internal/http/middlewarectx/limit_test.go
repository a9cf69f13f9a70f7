package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/tv-manager/internal/http/middlewarectx"
)

func TestRateLimitMiddleware(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	t.Run("allows requests within burst", func(t *testing.T) {
		h := middlewarectx.RateLimitMiddleware(newNoopLogger(), 1, 5)(testHandler)
		for range 5 {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "success", w.Body.String())
		}
	})

	t.Run("blocks requests exceeding rate limit", func(t *testing.T) {
		h := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 1)(testHandler)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "too many requests")
	})

	t.Run("limiters are independent", func(t *testing.T) {
		first := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 1)(testHandler)
		second := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 1)(testHandler)

		w := httptest.NewRecorder()
		first.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		second.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
