package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	domain "github.com/tailor-field/configurator/internal/domain"
	"github.com/tailor-field/configurator/internal/platform/requestctx"
	"github.com/tailor-field/configurator/internal/platform/textutil"
)

const (
	sessionIDPrefix    = "cfg_"
	submissionIDPrefix = "sub_"

	defaultSessionTTL  = 2 * time.Hour
	defaultMaxSessions = 10000

	metricNamespace = "github.com/tailor-field/configurator/internal/services"
)

var sessionTracer = otel.Tracer("github.com/tailor-field/configurator/internal/services/session")

// SessionServiceDeps wires the dependencies required by the session service.
type SessionServiceDeps struct {
	Catalog     CatalogProvider
	Checkout    CheckoutPublisher
	Defaults    ConfiguratorDefaults
	TTL         time.Duration
	MaxSessions int
	Clock       func() time.Time
	IDGenerator func() string
	Meter       metric.Meter
}

type session struct {
	mu        sync.Mutex
	id        string
	engine    *Configurator
	expiresAt time.Time
}

type sessionMetrics struct {
	catalogFetches metric.Int64Counter
	selections     metric.Int64Counter
	submissions    metric.Int64Counter
}

type sessionService struct {
	catalog     CatalogProvider
	checkout    CheckoutPublisher
	defaults    ConfiguratorDefaults
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	newID       func() string
	metrics     sessionMetrics

	mu       sync.Mutex
	sessions map[string]*session
}

var _ SessionService = (*sessionService)(nil)

// NewSessionService constructs a SessionService validating required dependencies.
func NewSessionService(deps SessionServiceDeps) (SessionService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("session service: catalog provider is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	maxSessions := deps.MaxSessions
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}
	metrics, err := newSessionMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("session service: register metrics: %w", err)
	}

	return &sessionService{
		catalog:     deps.Catalog,
		checkout:    deps.Checkout,
		defaults:    deps.Defaults.normalise(),
		ttl:         ttl,
		maxSessions: maxSessions,
		now: func() time.Time {
			return clock().UTC()
		},
		newID:    idGen,
		metrics:  metrics,
		sessions: make(map[string]*session),
	}, nil
}

func newSessionMetrics(meter metric.Meter) (sessionMetrics, error) {
	fetches, err := meter.Int64Counter(
		"configurator.catalog.fetches",
		metric.WithDescription("Catalog fetch results applied to sessions, by outcome"),
	)
	if err != nil {
		return sessionMetrics{}, err
	}
	selections, err := meter.Int64Counter(
		"configurator.selections",
		metric.WithDescription("Accepted and rejected option selections"),
	)
	if err != nil {
		return sessionMetrics{}, err
	}
	submissions, err := meter.Int64Counter(
		"configurator.submissions",
		metric.WithDescription("Order submissions handed to checkout, by outcome"),
	)
	if err != nil {
		return sessionMetrics{}, err
	}
	return sessionMetrics{
		catalogFetches: fetches,
		selections:     selections,
		submissions:    submissions,
	}, nil
}

func (s *sessionService) CreateSession(ctx context.Context, cmd CreateSessionCommand) (SessionView, error) {
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return SessionView{}, fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}

	product, err := s.catalog.LookupProduct(ctx, productID)
	if err != nil {
		return SessionView{}, err
	}

	sess, err := s.register()
	if err != nil {
		return SessionView{}, err
	}
	requestctx.Logger(ctx).Info("configurator: session created",
		zap.String("sessionID", sess.id),
		zap.String("productID", product.ID),
	)
	return s.load(ctx, sess, product), nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionID string) (SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

func (s *sessionService) ChangeProduct(ctx context.Context, cmd ChangeProductCommand) (SessionView, error) {
	sess, err := s.lookup(cmd.SessionID)
	if err != nil {
		return SessionView{}, err
	}
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return SessionView{}, fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	product, err := s.catalog.LookupProduct(ctx, productID)
	if err != nil {
		return SessionView{}, err
	}
	return s.load(ctx, sess, product), nil
}

func (s *sessionService) ReloadCatalog(ctx context.Context, sessionID string) (SessionView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	product := sess.engine.Product()
	sess.mu.Unlock()
	if product.ID == "" {
		return SessionView{}, ErrCatalogNotLoaded
	}
	return s.load(ctx, sess, product), nil
}

func (s *sessionService) SelectOption(ctx context.Context, cmd SelectOptionCommand) (SessionView, error) {
	sess, err := s.lookup(cmd.SessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	_, err = sess.engine.Select(cmd.StepID, cmd.OptionID, cmd.Color)
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	s.metrics.selections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("product_id", sess.engine.Product().ID),
	))
	if err != nil {
		return SessionView{}, err
	}
	return s.viewLocked(sess), nil
}

func (s *sessionService) UpdateMeasurement(ctx context.Context, cmd UpdateMeasurementCommand) (SessionView, error) {
	sess, err := s.lookup(cmd.SessionID)
	if err != nil {
		return SessionView{}, err
	}
	update, err := ParseMeasurementUpdate(cmd)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.engine.UpdateMeasurement(update); err != nil {
		return SessionView{}, err
	}
	return s.viewLocked(sess), nil
}

func (s *sessionService) Navigate(ctx context.Context, cmd NavigateCommand) (SessionView, error) {
	sess, err := s.lookup(cmd.SessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch cmd.Action {
	case NavigateNext:
		sess.engine.Next()
	case NavigatePrev:
		sess.engine.Prev()
	case NavigateJump:
		if err := sess.engine.JumpTo(cmd.Index); err != nil {
			return SessionView{}, err
		}
	default:
		return SessionView{}, fmt.Errorf("%w: unknown navigation action %q", ErrInvalidInput, cmd.Action)
	}
	return s.viewLocked(sess), nil
}

func (s *sessionService) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	sess, err := s.lookup(cmd.SessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	summary, err := sess.engine.PrepareSubmission()
	if err != nil {
		return SubmitResult{}, err
	}
	if s.checkout == nil {
		return SubmitResult{}, ErrCheckoutUnavailable
	}

	product := sess.engine.Product()
	submission := domain.OrderSubmission{
		SubmissionID: submissionIDPrefix + s.newID(),
		SessionID:    sess.id,
		ProductID:    product.ID,
		Summary:      summary,
		Metadata:     textutil.SanitizeMetadata(cmd.Metadata),
		SubmittedAt:  s.now(),
	}

	ctx, span := sessionTracer.Start(ctx, "configurator.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("configurator.session_id", sess.id),
		attribute.String("configurator.submission_id", submission.SubmissionID),
		attribute.Int64("configurator.total_price", summary.TotalPrice),
	)

	messageID, err := s.checkout.PublishOrder(ctx, submission)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout publish failed")
		s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failed")))
		requestctx.Logger(ctx).Error("configurator: checkout handoff failed",
			zap.String("sessionID", sess.id),
			zap.String("submissionID", submission.SubmissionID),
			zap.Error(err),
		)
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}

	s.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "published")))
	requestctx.Logger(ctx).Info("configurator: order submitted",
		zap.String("sessionID", sess.id),
		zap.String("submissionID", submission.SubmissionID),
		zap.String("messageID", messageID),
		zap.Int64("totalPrice", summary.TotalPrice),
	)
	return SubmitResult{Submission: submission, MessageID: messageID}, nil
}

func (s *sessionService) CloseSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// load resets the session for product and applies the fetch result unless a newer load superseded it.
func (s *sessionService) load(ctx context.Context, sess *session, product ProductInfo) SessionView {
	sess.mu.Lock()
	ticket := sess.engine.BeginLoad(product)
	sess.mu.Unlock()

	steps, fetchErr := s.catalog.FetchSteps(ctx, product.ID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	applyErr := sess.engine.ApplyCatalog(ticket, steps, fetchErr)
	outcome := "loaded"
	logger := requestctx.Logger(ctx)
	switch {
	case errors.Is(applyErr, ErrStaleCatalog):
		outcome = "stale"
		logger.Debug("configurator: discarded stale catalog result",
			zap.String("sessionID", sess.id),
			zap.String("productID", ticket.ProductID),
		)
	case applyErr != nil:
		outcome = "unavailable"
		logger.Warn("configurator: catalog unavailable",
			zap.String("sessionID", sess.id),
			zap.String("productID", ticket.ProductID),
			zap.Error(applyErr),
		)
	}
	s.metrics.catalogFetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return s.viewLocked(sess)
}

func (s *sessionService) register() (*session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.sessions {
		if !now.Before(existing.expiresAt) {
			delete(s.sessions, id)
		}
	}
	if len(s.sessions) >= s.maxSessions {
		return nil, ErrSessionLimit
	}

	sess := &session{
		id:        sessionIDPrefix + s.newID(),
		engine:    NewConfigurator(s.defaults),
		expiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.id] = sess
	return sess, nil
}

func (s *sessionService) lookup(sessionID string) (*session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !now.Before(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, ErrSessionNotFound
	}
	sess.expiresAt = now.Add(s.ttl)
	return sess, nil
}

func (s *sessionService) viewLocked(sess *session) SessionView {
	engine := sess.engine
	product := engine.Product()
	total := engine.TotalSteps()
	index := engine.CurrentIndex()
	completion := engine.Completion()

	ready := make([]bool, total)
	for i := range ready {
		ready[i] = engine.Ready(i)
	}

	attrs := engine.Attributes()
	selections := engine.Selections()
	view := SessionView{
		SessionID:   sess.id,
		Product:     product,
		ViewerModel: domain.ViewerModelFor(product.ProductType),
		State:       engine.State(),
		Steps:       engine.Steps(),
		Selections:  selections,
		Measurement: engine.Measurement(),
		Navigation: NavigationView{
			Index:             index,
			TotalSteps:        total,
			Label:             fmt.Sprintf("Step %d of %d", index+1, total),
			CompletedLabel:    fmt.Sprintf("%d of %d completed", completion.Completed, total),
			Title:             engine.CurrentStepTitle(),
			AtMeasurementStep: engine.AtMeasurementStep(),
			StepReady:         ready,
		},
		TotalPrice:              engine.TotalPrice(),
		Completion:              completion,
		Attributes:              attrs.ToMap(),
		Layers:                  engine.Layers(),
		CompletedCustomizations: len(selections),
		ExpiresAt:               sess.expiresAt,
	}
	if err := engine.LoadError(); err != nil {
		view.Error = err.Error()
	}
	if engine.State() == StateReady {
		summary := engine.Summary()
		view.Summary = &summary
	}
	return view
}
