package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tailor-field/configurator/internal/platform/requestctx"
)

func TestRemoteSpanContext(t *testing.T) {
	sc, ok := remoteSpanContext("105445aa7843bc8bf206b12000100000/1;o=1")
	if !ok {
		t.Fatalf("expected header to parse")
	}
	if sc.TraceID().String() != "105445aa7843bc8bf206b12000100000" {
		t.Fatalf("unexpected trace id %q", sc.TraceID())
	}
	if sc.SpanID().String() != "0000000000000001" {
		t.Fatalf("expected decimal span id, got %q", sc.SpanID())
	}
	if !sc.IsSampled() || !sc.IsRemote() {
		t.Fatalf("expected sampled remote span context")
	}

	hex, ok := remoteSpanContext("105445aa7843bc8bf206b12000100000/a1b2;o=0")
	if !ok || hex.SpanID().String() != "000000000000a1b2" || hex.IsSampled() {
		t.Fatalf("expected unsampled hex span id, got %v %v", hex.SpanID(), ok)
	}

	for _, header := range []string{"", "nope", "short/1", "105445aa7843bc8bf206b12000100000/zz", "105445aa7843bc8bf206b12000100000/0"} {
		if _, ok := remoteSpanContext(header); ok {
			t.Fatalf("expected %q to be rejected", header)
		}
	}
}

func TestTraceMiddlewareStoresTraceInfo(t *testing.T) {
	var seen requestctx.TraceInfo
	handler := TraceMiddleware("tailor-prod")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = requestctx.Trace(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(cloudTraceHeader, "105445aa7843bc8bf206b12000100000/1;o=1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen.ProjectID != "tailor-prod" {
		t.Fatalf("expected project id on trace info, got %q", seen.ProjectID)
	}
	if seen.TraceID != "105445aa7843bc8bf206b12000100000" {
		t.Fatalf("expected remote trace id to be continued, got %q", seen.TraceID)
	}
	if header := rec.Header().Get(cloudTraceHeader); !strings.HasPrefix(header, seen.TraceID+"/") {
		t.Fatalf("expected trace header echoed, got %q", header)
	}
}

func TestTraceMiddlewareTagsMatchedRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := chi.NewRouter()
	router.Use(TraceMiddleware("tailor-prod"))
	router.Put("/sessions/{sessionId}/selections/{stepId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPut, "/sessions/cfg_01/selections/shirt-collar-style", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "PUT /sessions/{sessionId}/selections/{stepId}" {
		t.Fatalf("expected span named after route pattern, got %q", span.Name())
	}
	attrs := make(map[attribute.Key]string)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs["configurator.session_id"] != "cfg_01" || attrs["configurator.step_id"] != "shirt-collar-style" {
		t.Fatalf("expected configurator identifiers on span, got %v", attrs)
	}
	if attrs["http.route"] != "/sessions/{sessionId}/selections/{stepId}" {
		t.Fatalf("expected http.route attribute, got %v", attrs)
	}
	if _, ok := attrs["configurator.product_id"]; ok {
		t.Fatalf("unexpected product id on span without productId param")
	}

	header := rec.Header().Get(cloudTraceHeader)
	remote, ok := remoteSpanContext(header)
	if !ok || remote.TraceID() != span.SpanContext().TraceID() || remote.SpanID() != span.SpanContext().SpanID() {
		t.Fatalf("expected echoed header %q to identify the server span", header)
	}
}
