package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerMiddlewareLogsRouteAndSession(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	r := chi.NewRouter()
	r.Use(InjectLoggerMiddleware(logger))
	r.Use(RequestLoggerMiddleware())
	r.Get("/sessions/{sessionId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/cfg_42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one completion entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 404, got %s", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["route"] != "/sessions/{sessionId}" {
		t.Fatalf("expected route pattern, got %v", fields["route"])
	}
	if fields["session_id"] != "cfg_42" {
		t.Fatalf("expected session id, got %v", fields["session_id"])
	}
}

func TestRecoveryMiddlewareWritesJSONError(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "internal_server_error" {
		t.Fatalf("unexpected error code %v", body["error"])
	}
}

func TestSanitizeStringDropsControlCharacters(t *testing.T) {
	if got := SanitizeSessionID("cfg\x00_1\x1b"); got != "cfg_1" {
		t.Fatalf("expected control characters removed, got %q", got)
	}
	if got := SanitizeRoute(""); got != "/" {
		t.Fatalf("expected default route, got %q", got)
	}
}
