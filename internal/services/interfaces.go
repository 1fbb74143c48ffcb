package services

import (
	"context"
	"time"

	domain "github.com/tailor-field/configurator/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	CustomizationStep   = domain.CustomizationStep
	CustomizationOption = domain.CustomizationOption
	Selection           = domain.Selection
	MeasurementProfile  = domain.MeasurementProfile
	ProductInfo         = domain.ProductInfo
	OrderSummary        = domain.OrderSummary
	OrderSubmission     = domain.OrderSubmission
)

// CatalogStepProvider resolves the ordered customization steps offered for a product.
// Implementations return ErrCatalogFetch (or a wrapped cause) when the product has nothing to configure.
type CatalogStepProvider interface {
	FetchSteps(ctx context.Context, productID string) ([]CustomizationStep, error)
}

// ProductLookup resolves product metadata for a configurator session.
type ProductLookup interface {
	LookupProduct(ctx context.Context, productID string) (ProductInfo, error)
}

// CatalogProvider combines product lookup and step retrieval.
type CatalogProvider interface {
	CatalogStepProvider
	ProductLookup
}

// ProductLister enumerates the products a buyer can open a session for.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]ProductInfo, error)
}

// CheckoutPublisher receives finished order submissions. It is invoked exactly once per submit.
type CheckoutPublisher interface {
	PublishOrder(ctx context.Context, submission OrderSubmission) (string, error)
}

// SessionService manages buyer configurator sessions.
type SessionService interface {
	CreateSession(ctx context.Context, cmd CreateSessionCommand) (SessionView, error)
	GetSession(ctx context.Context, sessionID string) (SessionView, error)
	ChangeProduct(ctx context.Context, cmd ChangeProductCommand) (SessionView, error)
	ReloadCatalog(ctx context.Context, sessionID string) (SessionView, error)
	SelectOption(ctx context.Context, cmd SelectOptionCommand) (SessionView, error)
	UpdateMeasurement(ctx context.Context, cmd UpdateMeasurementCommand) (SessionView, error)
	Navigate(ctx context.Context, cmd NavigateCommand) (SessionView, error)
	Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error)
	CloseSession(ctx context.Context, sessionID string) error
}

// CreateSessionCommand opens a session for a product.
type CreateSessionCommand struct {
	ProductID string
}

// ChangeProductCommand switches an existing session to another product, discarding all state.
type ChangeProductCommand struct {
	SessionID string
	ProductID string
}

// SelectOptionCommand chooses an option for a step. Color overrides the option's own color when set.
type SelectOptionCommand struct {
	SessionID string
	StepID    string
	OptionID  string
	Color     string
}

// UpdateMeasurementCommand carries a partial measurement update. Custom values are raw caller input
// and are coerced to non-negative numbers.
type UpdateMeasurementCommand struct {
	SessionID    string
	SizeType     *string
	StandardSize *string
	FitType      *string
	Custom       map[string]any
}

// NavigationAction names a navigation transition.
type NavigationAction string

const (
	NavigateNext NavigationAction = "next"
	NavigatePrev NavigationAction = "prev"
	NavigateJump NavigationAction = "jump"
)

// NavigateCommand moves the session's current step.
type NavigateCommand struct {
	SessionID string
	Action    NavigationAction
	Index     int
}

// SubmitCommand hands the session's order summary to checkout.
type SubmitCommand struct {
	SessionID string
	Metadata  map[string]string
}

// SubmitResult reports the accepted submission.
type SubmitResult struct {
	Submission OrderSubmission
	MessageID  string
}

// NavigationView is the navigation portion of a session view.
type NavigationView struct {
	Index             int
	TotalSteps        int
	Label             string
	CompletedLabel    string
	Title             string
	AtMeasurementStep bool
	StepReady         []bool
}

// SessionView is a read-only snapshot of a configurator session and its derived values.
type SessionView struct {
	SessionID   string
	Product     ProductInfo
	ViewerModel string
	State       ConfiguratorState
	Error       string
	Steps       []CustomizationStep
	Selections  []Selection
	Measurement MeasurementProfile
	Navigation  NavigationView
	TotalPrice  int64
	Completion  domain.Completion
	Attributes  map[string]string
	Layers      domain.LayerDirectives
	Summary     *OrderSummary
	// CompletedCustomizations counts customization steps with a selection, excluding measurement.
	CompletedCustomizations int
	ExpiresAt               time.Time
}
