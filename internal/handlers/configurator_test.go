package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tailor-field/configurator/internal/platform/idempotency"
	"github.com/tailor-field/configurator/internal/repositories/memory"
	"github.com/tailor-field/configurator/internal/services"
)

type recordingCheckout struct {
	mu          sync.Mutex
	submissions []services.OrderSubmission
	err         error
}

func (c *recordingCheckout) PublishOrder(_ context.Context, submission services.OrderSubmission) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.submissions = append(c.submissions, submission)
	return "msg-1", nil
}

type configuratorFixture struct {
	router   http.Handler
	checkout *recordingCheckout
}

func newConfiguratorFixture(t *testing.T, opts ...ConfiguratorOption) configuratorFixture {
	t.Helper()
	catalog, err := services.NewUnifiedCatalogProvider(services.CatalogProviderDeps{Samples: memory.NewSampleCatalog("USD")})
	require.NoError(t, err)

	checkout := &recordingCheckout{}
	ids := 0
	sessions, err := services.NewSessionService(services.SessionServiceDeps{
		Catalog:  catalog,
		Checkout: checkout,
		Defaults: services.DefaultConfiguratorDefaults(),
		Clock:    func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) },
		IDGenerator: func() string {
			ids++
			return strings.Repeat("0", 25) + string(rune('A'+ids))
		},
	})
	require.NoError(t, err)

	h := NewConfiguratorHandlers(sessions, catalog, opts...)
	return configuratorFixture{
		router:   NewRouter(WithConfiguratorRoutes(h.Routes)),
		checkout: checkout,
	}
}

func (f configuratorFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1/configurator"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) sessionPayload {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Session
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	code, _ := body["error"].(string)
	return code
}

func TestConfiguratorHandlersFullFlow(t *testing.T) {
	f := newConfiguratorFixture(t)

	rr := f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "shirt-001"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	session := decodeSession(t, rr)
	require.Equal(t, "ready", session.State)
	require.Equal(t, "sample-shirt", session.ViewerModel)
	require.Len(t, session.Steps, 6)
	require.Equal(t, 7, session.Navigation.TotalSteps)
	require.Equal(t, "Step 1 of 7", session.Navigation.Label)
	require.Equal(t, int64(8999), session.TotalPrice)
	require.Equal(t, "/api/v1/configurator/sessions/"+session.ID, rr.Header().Get("Location"))
	base := "/sessions/" + session.ID

	rr = f.do(t, http.MethodPut, base+"/selections/shirt-collar-style", map[string]string{"option_id": "spread-collar"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session = decodeSession(t, rr)
	require.Equal(t, int64(9999), session.TotalPrice)
	require.Equal(t, "spread", session.Attributes["collarStyle"])
	require.Equal(t, []string{"collar_spread"}, session.Layers.Show)
	require.Equal(t, 1, session.CompletedCustomizations)

	rr = f.do(t, http.MethodPatch, base+"/measurement", map[string]any{
		"size_type":           "custom",
		"custom_measurements": map[string]any{"neck": "15.5", "chest": -3},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session = decodeSession(t, rr)
	require.Equal(t, "custom", session.Measurement.SizeType)
	require.Equal(t, 15.5, session.Measurement.Custom["neck"])
	require.Equal(t, 0.0, session.Measurement.Custom["chest"])
	require.Equal(t, int64(12499), session.TotalPrice)

	rr = f.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "measurement_step_required", errorCode(t, rr))

	rr = f.do(t, http.MethodPost, base+"/navigation", map[string]any{"action": "jump", "index": 6})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session = decodeSession(t, rr)
	require.True(t, session.Navigation.AtMeasurementStep)
	require.Equal(t, "Measurements", session.Navigation.Title)

	rr = f.do(t, http.MethodPost, base+"/submit", map[string]any{"metadata": map[string]string{" channel ": "web"}})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var submitted submissionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &submitted))
	require.True(t, strings.HasPrefix(submitted.SubmissionID, "sub_"))
	require.Equal(t, "msg-1", submitted.MessageID)
	require.Equal(t, int64(12499), submitted.Summary.TotalPrice)
	require.Len(t, submitted.Summary.Customizations, 1)
	require.Equal(t, "Collar Style", submitted.Summary.Customizations[0].Category)

	require.Len(t, f.checkout.submissions, 1)
	require.Equal(t, map[string]string{"channel": "web"}, f.checkout.submissions[0].Metadata)

	rr = f.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "session_not_found", errorCode(t, rr))
}

func TestConfiguratorHandlersChangeProductResets(t *testing.T) {
	f := newConfiguratorFixture(t)
	session := decodeSession(t, f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "shirt-001"}))
	base := "/sessions/" + session.ID

	rr := f.do(t, http.MethodPut, base+"/selections/shirt-fabric-color", map[string]string{"option_id": "navy"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodPut, base+"/product", map[string]string{"product_id": "jacket-001"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session = decodeSession(t, rr)
	require.Equal(t, "jacket-001", session.Product.ID)
	require.Equal(t, "sample-jacket", session.ViewerModel)
	require.Empty(t, session.Selections)
	require.Equal(t, int64(19999), session.TotalPrice)
	require.Equal(t, 0, session.Navigation.Index)
}

func TestConfiguratorHandlersErrors(t *testing.T) {
	f := newConfiguratorFixture(t)

	rr := f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "unknown"})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "no_customization_available", errorCode(t, rr))

	rr = f.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": " "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_request", errorCode(t, rr))

	session := decodeSession(t, f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "pants-001"}))
	base := "/sessions/" + session.ID

	rr = f.do(t, http.MethodPut, base+"/selections/pants-fabric-color", map[string]string{"option_id": "does-not-exist"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "invalid_selection", errorCode(t, rr))

	rr = f.do(t, http.MethodPut, base+"/selections/pants-fabric-color", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPatch, base+"/measurement", map[string]any{"standard_size": "xxxl"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, base+"/navigation", map[string]any{"action": "jump"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, base+"/navigation", map[string]any{"action": "sideways"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, base+"/navigation", map[string]any{"action": "jump", "index": 99})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodGet, "/sessions/cfg_missing", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConfiguratorHandlersCheckoutFailure(t *testing.T) {
	f := newConfiguratorFixture(t)
	f.checkout.err = errors.New("topic unreachable")

	session := decodeSession(t, f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "shirt-001"}))
	base := "/sessions/" + session.ID
	rr := f.do(t, http.MethodPost, base+"/navigation", map[string]any{"action": "jump", "index": 6})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "checkout_unavailable", errorCode(t, rr))
}

func TestConfiguratorHandlersSessionCreateLimit(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f := newConfiguratorFixture(t, WithSessionCreateLimit(1, time.Minute, func() time.Time { return now }))

	rr := f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "shirt-001"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "shirt-001"})
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "rate_limited", errorCode(t, rr))
}

func TestConfiguratorHandlersCatalogRoutes(t *testing.T) {
	f := newConfiguratorFixture(t)

	rr := f.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var products productsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &products))
	require.Len(t, products.Products, 3)

	rr = f.do(t, http.MethodGet, "/products/pants-001/steps", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var steps productStepsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &steps))
	require.Equal(t, "Premium Chinos", steps.Product.Name)
	require.Equal(t, "sample-pants", steps.ViewerModel)
	require.NotEmpty(t, steps.Steps)

	rr = f.do(t, http.MethodGet, "/products/unknown/steps", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, "/sizing", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sizing struct {
		StandardSizes []map[string]string `json:"standard_sizes"`
		FitTypes      []map[string]string `json:"fit_types"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sizing))
	require.Len(t, sizing.StandardSizes, 6)
	require.Len(t, sizing.FitTypes, 3)
}

func TestConfiguratorHandlersSubmitIdempotency(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	store := idempotency.NewMemoryStore()
	f := newConfiguratorFixture(t, WithSubmitIdempotency(store,
		idempotency.WithTTL(time.Hour),
		idempotency.WithClock(func() time.Time { return now }),
	))

	session := decodeSession(t, f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "shirt-001"}))
	base := "/api/v1/configurator/sessions/" + session.ID
	rr := f.do(t, http.MethodPost, "/sessions/"+session.ID+"/navigation", map[string]any{"action": "jump", "index": 6})
	require.Equal(t, http.StatusOK, rr.Code)

	submit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, base+"/submit", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(idempotency.DefaultHeader, "checkout-1")
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	first := submit()
	require.Equal(t, http.StatusAccepted, first.Code, first.Body.String())
	second := submit()
	require.Equal(t, http.StatusAccepted, second.Code)
	require.Equal(t, "true", second.Header().Get("X-Idempotent-Replay"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Len(t, f.checkout.submissions, 1)
}

func TestConfiguratorHandlersSubmitRequiresConfiguredKey(t *testing.T) {
	f := newConfiguratorFixture(t, WithSubmitIdempotency(idempotency.NewMemoryStore(),
		idempotency.WithHeader("X-Submit-Key"),
		idempotency.WithRequiredKey(),
	))

	session := decodeSession(t, f.do(t, http.MethodPost, "/sessions", map[string]string{"product_id": "shirt-001"}))
	rr := f.do(t, http.MethodPost, "/sessions/"+session.ID+"/navigation", map[string]any{"action": "jump", "index": 6})
	require.Equal(t, http.StatusOK, rr.Code)

	submit := func(header, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/configurator/sessions/"+session.ID+"/submit", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		if header != "" {
			req.Header.Set(header, key)
		}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rr = submit(idempotency.DefaultHeader, "checkout-1")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "idempotency_key_required", errorCode(t, rr))
	require.Empty(t, f.checkout.submissions)

	rr = submit("X-Submit-Key", "checkout-1")
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	require.Len(t, f.checkout.submissions, 1)
}

func TestConfiguratorHandlersProductPagination(t *testing.T) {
	f := newConfiguratorFixture(t)

	rr := f.do(t, http.MethodGet, "/products?page_size=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var first productsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextPageToken)

	rr = f.do(t, http.MethodGet, "/products?page_size=2&page_token="+first.NextPageToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var second productsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	require.Len(t, second.Products, 1)
	require.Equal(t, "jacket-001", second.Products[0].ID)
	require.Empty(t, second.NextPageToken)

	rr = f.do(t, http.MethodGet, "/products?page_size=zero", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
