package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/tailor-field/configurator/internal/domain"
	"github.com/tailor-field/configurator/internal/platform/httpx"
	"github.com/tailor-field/configurator/internal/platform/idempotency"
	"github.com/tailor-field/configurator/internal/platform/pagination"
	"github.com/tailor-field/configurator/internal/platform/requestctx"
	"github.com/tailor-field/configurator/internal/services"
)

const (
	defaultProductPageSize = 24
	maxProductPageSize     = 100
)

// CatalogReader is the read side of the catalog exposed to buyers.
type CatalogReader interface {
	services.CatalogProvider
	services.ProductLister
}

// ConfiguratorHandlers exposes configurator sessions and the catalog they draw from.
type ConfiguratorHandlers struct {
	sessions services.SessionService
	catalog  CatalogReader
	limiter  rateLimiter
	// submitGuard wraps the submit route; nil leaves it unguarded.
	submitGuard func(http.Handler) http.Handler
}

// ConfiguratorOption customises ConfiguratorHandlers.
type ConfiguratorOption func(*ConfiguratorHandlers)

// WithSessionCreateLimit bounds how many sessions one client address may open per window.
func WithSessionCreateLimit(limit int, window time.Duration, clock func() time.Time) ConfiguratorOption {
	return func(h *ConfiguratorHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, clock)
	}
}

// WithSubmitIdempotency replays the stored submit response when a client retries with the same
// key for the same session, so a retried submission is not published twice.
func WithSubmitIdempotency(store idempotency.Store, opts ...idempotency.MiddlewareOption) ConfiguratorOption {
	return func(h *ConfiguratorHandlers) {
		if store == nil {
			return
		}
		scoped := append([]idempotency.MiddlewareOption{
			idempotency.WithScope(func(r *http.Request) string {
				return chi.URLParam(r, "sessionId")
			}),
		}, opts...)
		h.submitGuard = idempotency.Middleware(store, scoped...)
	}
}

// NewConfiguratorHandlers constructs the handlers. A nil catalog disables the catalog routes.
func NewConfiguratorHandlers(sessions services.SessionService, catalog CatalogReader, opts ...ConfiguratorOption) *ConfiguratorHandlers {
	h := &ConfiguratorHandlers{
		sessions: sessions,
		catalog:  catalog,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes wires the /configurator endpoints onto the provided router.
func (h *ConfiguratorHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/sessions", h.createSession)
	r.Route("/sessions/{sessionId}", func(rt chi.Router) {
		rt.Get("/", h.getSession)
		rt.Delete("/", h.closeSession)
		rt.Put("/product", h.changeProduct)
		rt.Post("/reload", h.reloadCatalog)
		rt.Put("/selections/{stepId}", h.selectOption)
		rt.Patch("/measurement", h.updateMeasurement)
		rt.Post("/navigation", h.navigate)
		if h.submitGuard != nil {
			rt.With(h.submitGuard).Post("/submit", h.submit)
		} else {
			rt.Post("/submit", h.submit)
		}
	})
	r.Get("/products", h.listProducts)
	r.Get("/products/{productId}/steps", h.productSteps)
	r.Get("/sizing", h.sizing)
}

type productRequest struct {
	ProductID string `json:"product_id"`
}

type selectionRequest struct {
	OptionID string `json:"option_id"`
	Color    string `json:"color"`
}

type measurementRequest struct {
	SizeType     *string        `json:"size_type"`
	StandardSize *string        `json:"standard_size"`
	FitType      *string        `json:"fit_type"`
	Custom       map[string]any `json:"custom_measurements"`
}

type navigationRequest struct {
	Action string `json:"action"`
	Index  *int   `json:"index"`
}

type submitRequest struct {
	Metadata map[string]string `json:"metadata"`
}

func (h *ConfiguratorHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sessions == nil {
		writeServiceUnavailable(ctx, w)
		return
	}
	if h.limiter != nil && !h.limiter.Allow(clientKey(r)) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many sessions opened; retry later", http.StatusTooManyRequests))
		return
	}

	var req productRequest
	if !decodeRequest(ctx, w, r, &req, false) {
		return
	}
	view, err := h.sessions.CreateSession(ctx, services.CreateSessionCommand{ProductID: req.ProductID})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+view.SessionID)
	writeSessionResponse(w, http.StatusCreated, view)
}

func (h *ConfiguratorHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.GetSession(ctx, sessionID)
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeSessionResponse(w, http.StatusOK, view)
}

func (h *ConfiguratorHandlers) closeSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	if err := h.sessions.CloseSession(ctx, sessionID); err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConfiguratorHandlers) changeProduct(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeRequest(ctx, w, r, &req, false) {
		return
	}
	view, err := h.sessions.ChangeProduct(ctx, services.ChangeProductCommand{SessionID: sessionID, ProductID: req.ProductID})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeSessionResponse(w, http.StatusOK, view)
}

func (h *ConfiguratorHandlers) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.ReloadCatalog(ctx, sessionID)
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeSessionResponse(w, http.StatusOK, view)
}

func (h *ConfiguratorHandlers) selectOption(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	var req selectionRequest
	if !decodeRequest(ctx, w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.OptionID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "option_id is required", http.StatusBadRequest))
		return
	}
	view, err := h.sessions.SelectOption(ctx, services.SelectOptionCommand{
		SessionID: sessionID,
		StepID:    chi.URLParam(r, "stepId"),
		OptionID:  strings.TrimSpace(req.OptionID),
		Color:     strings.TrimSpace(req.Color),
	})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeSessionResponse(w, http.StatusOK, view)
}

func (h *ConfiguratorHandlers) updateMeasurement(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	var req measurementRequest
	if !decodeRequest(ctx, w, r, &req, false) {
		return
	}
	view, err := h.sessions.UpdateMeasurement(ctx, services.UpdateMeasurementCommand{
		SessionID:    sessionID,
		SizeType:     req.SizeType,
		StandardSize: req.StandardSize,
		FitType:      req.FitType,
		Custom:       req.Custom,
	})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeSessionResponse(w, http.StatusOK, view)
}

func (h *ConfiguratorHandlers) navigate(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	var req navigationRequest
	if !decodeRequest(ctx, w, r, &req, false) {
		return
	}
	cmd := services.NavigateCommand{
		SessionID: sessionID,
		Action:    services.NavigationAction(strings.ToLower(strings.TrimSpace(req.Action))),
	}
	if cmd.Action == services.NavigateJump {
		if req.Index == nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "index is required for jump", http.StatusBadRequest))
			return
		}
		cmd.Index = *req.Index
	}
	view, err := h.sessions.Navigate(ctx, cmd)
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeSessionResponse(w, http.StatusOK, view)
}

func (h *ConfiguratorHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if !decodeRequest(ctx, w, r, &req, true) {
		return
	}
	result, err := h.sessions.Submit(ctx, services.SubmitCommand{SessionID: sessionID, Metadata: req.Metadata})
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusAccepted, submissionResponse{
		SubmissionID: result.Submission.SubmissionID,
		SessionID:    result.Submission.SessionID,
		ProductID:    result.Submission.ProductID,
		MessageID:    result.MessageID,
		Summary:      buildSummaryPayload(result.Submission.Summary),
		SubmittedAt:  formatTime(result.Submission.SubmittedAt),
	})
}

func (h *ConfiguratorHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeServiceUnavailable(ctx, w)
		return
	}
	params, err := pagination.FromRequest(r, pagination.Options{DefaultPageSize: defaultProductPageSize, MaxPageSize: maxProductPageSize})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "product catalog is unavailable", http.StatusServiceUnavailable))
		return
	}
	page, next := pagination.Slice(products, params)
	payload := productsResponse{Products: make([]productPayload, 0, len(page)), NextPageToken: next}
	for _, product := range page {
		payload.Products = append(payload.Products, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ConfiguratorHandlers) productSteps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		writeServiceUnavailable(ctx, w)
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	product, err := h.catalog.LookupProduct(ctx, productID)
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	steps, err := h.catalog.FetchSteps(ctx, product.ID)
	if err != nil {
		writeConfiguratorError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, productStepsResponse{
		Product:     buildProductPayload(product),
		ViewerModel: domain.ViewerModelFor(product.ProductType),
		Steps:       buildStepPayloads(steps),
	})
}

func (h *ConfiguratorHandlers) sizing(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, sizingResponse{
		StandardSizes: domain.StandardSizes,
		FitTypes:      domain.FitTypes,
	})
}

// sessionContext resolves the session id path parameter and tags the request logger with it.
func (h *ConfiguratorHandlers) sessionContext(w http.ResponseWriter, r *http.Request) (context.Context, string, bool) {
	ctx := r.Context()
	if h.sessions == nil {
		writeServiceUnavailable(ctx, w)
		return ctx, "", false
	}
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if sessionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "session id is required", http.StatusBadRequest))
		return ctx, "", false
	}
	return requestctx.WithSessionID(ctx, sessionID), sessionID, true
}

func decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := decodeJSONBody(r, dst, optional)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
	return false
}

func writeConfiguratorError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrInvalidSelection):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_selection", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrSessionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("session_not_found", "session not found or expired", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogFetch):
		httpx.WriteError(ctx, w, httpx.NewError("no_customization_available", "no customization available for this product", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogNotLoaded):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_not_loaded", "customization options are not loaded; reload the catalog", http.StatusConflict))
	case errors.Is(err, services.ErrNotAtMeasurementStep):
		httpx.WriteError(ctx, w, httpx.NewError("measurement_step_required", "submit is only available on the measurement step", http.StatusConflict))
	case errors.Is(err, services.ErrSessionLimit):
		httpx.WriteError(ctx, w, httpx.NewError("session_limit_reached", "too many active sessions; retry later", http.StatusServiceUnavailable))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout is unavailable; retry later", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("configurator_error", "configurator request failed", http.StatusInternalServerError))
	}
}

func writeServiceUnavailable(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("configurator_unavailable", "configurator service is unavailable", http.StatusServiceUnavailable))
}

func clientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
