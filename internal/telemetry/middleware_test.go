package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusWriterCapturesExplicitStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}

	sw.WriteHeader(http.StatusTeapot)
	sw.WriteHeader(http.StatusOK) // ignored, first write wins

	if sw.statusCode() != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", sw.statusCode())
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418 passed through, got %d", rec.Code)
	}
}

func TestStatusWriterDefaultsToOKOnBody(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}

	if _, err := sw.Write([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if sw.statusCode() != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", sw.statusCode())
	}
}

func TestMetricsMiddlewareServesWrappedHandler(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from wrapped handler, got %d", rec.Code)
	}
}
