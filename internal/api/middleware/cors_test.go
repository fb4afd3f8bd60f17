package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/pkg/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestCORS_PreflightIsAnswered(t *testing.T) {
	h := CORS(nil, logger.NewWithZap(zaptest.NewLogger(t)))(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/non-auth-orders/7", nil)
	req.Header.Set("Origin", "http://shop.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://shop.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestCORS_AllowlistedOrigin(t *testing.T) {
	h := CORS([]string{"http://dashboard.local"}, logger.NewWithZap(zaptest.NewLogger(t)))(okHandler())

	tests := []struct {
		origin string
		want   string
	}{
		{"http://dashboard.local", "http://dashboard.local"},
		{"http://evil.local", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code, tt.origin)
		assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"), tt.origin)
	}
}
