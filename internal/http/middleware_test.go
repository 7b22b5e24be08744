package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"property-agent/internal/contextutil"
)

// checkerFunc adapts a function to handlers.CollectionChecker.
type checkerFunc func() (bool, error)

func (f checkerFunc) CollectionExists(ctx context.Context) (bool, error) {
	return f()
}

func TestLoggerMiddleware(t *testing.T) {
	var capturedLogger *slog.Logger
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedLogger = contextutil.LoggerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	middleware := LoggerMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("LoggerMiddleware() status = %v, want %v", w.Code, http.StatusOK)
	}
	if capturedLogger == nil {
		t.Error("LoggerMiddleware() should add logger to context")
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	middleware := CORS(handler)

	t.Run("sets origin headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("wildcard without origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", w.Code)
		}
	})
}
