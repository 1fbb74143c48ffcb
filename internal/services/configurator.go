package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/tailor-field/configurator/internal/domain"
)

// ConfiguratorState tracks the catalog lifecycle of a session.
type ConfiguratorState string

const (
	// StateIdle means no product has been requested yet.
	StateIdle ConfiguratorState = "idle"
	// StateLoading means a catalog fetch is in flight.
	StateLoading ConfiguratorState = "loading"
	// StateReady means steps are loaded and selections may be made.
	StateReady ConfiguratorState = "ready"
	// StateUnavailable means the last fetch failed; only an explicit reload recovers.
	StateUnavailable ConfiguratorState = "unavailable"
)

const measurementStepTitle = "Measurements"

// ConfiguratorDefaults are the per-session initial values.
type ConfiguratorDefaults struct {
	StandardSize    string
	FitType         string
	CustomSurcharge int64
	Currency        string
}

// DefaultConfiguratorDefaults returns the built-in defaults.
func DefaultConfiguratorDefaults() ConfiguratorDefaults {
	return ConfiguratorDefaults{
		StandardSize:    "m",
		FitType:         "regular",
		CustomSurcharge: DefaultCustomSizingSurcharge,
		Currency:        "USD",
	}
}

func (d ConfiguratorDefaults) normalise() ConfiguratorDefaults {
	fallback := DefaultConfiguratorDefaults()
	if strings.TrimSpace(d.StandardSize) == "" {
		d.StandardSize = fallback.StandardSize
	}
	if strings.TrimSpace(d.FitType) == "" {
		d.FitType = fallback.FitType
	}
	if d.CustomSurcharge < 0 {
		d.CustomSurcharge = 0
	}
	if strings.TrimSpace(d.Currency) == "" {
		d.Currency = fallback.Currency
	}
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	return d
}

func (d ConfiguratorDefaults) profile() domain.MeasurementProfile {
	return domain.MeasurementProfile{
		SizeType:     domain.SizeTypeStandard,
		StandardSize: d.StandardSize,
		FitType:      d.FitType,
		Custom:       &domain.CustomMeasurements{},
	}
}

// LoadTicket identifies one catalog request. Only the ticket of the most recent request can be applied.
type LoadTicket struct {
	ProductID  string
	generation uint64
}

// Configurator is the state of one buyer's configuration. It is not safe for concurrent use.
type Configurator struct {
	defaults ConfiguratorDefaults

	state      ConfiguratorState
	generation uint64
	product    domain.ProductInfo
	loadErr    error

	steps   []domain.CustomizationStep
	store   *SelectionStore
	profile domain.MeasurementProfile
	nav     Navigator
}

// NewConfigurator returns an idle configurator using defaults.
func NewConfigurator(defaults ConfiguratorDefaults) *Configurator {
	defaults = defaults.normalise()
	c := &Configurator{defaults: defaults}
	c.reset(domain.ProductInfo{})
	c.state = StateIdle
	return c
}

func (c *Configurator) reset(product domain.ProductInfo) {
	if strings.TrimSpace(product.Currency) == "" {
		product.Currency = c.defaults.Currency
	}
	c.product = product
	c.loadErr = nil
	c.steps = nil
	c.store = NewSelectionStore(nil)
	c.profile = c.defaults.profile()
	c.nav = NewNavigator(1)
}

// BeginLoad discards all session state for product and returns the ticket the fetch result must be applied with.
func (c *Configurator) BeginLoad(product domain.ProductInfo) LoadTicket {
	c.generation++
	c.reset(product)
	c.state = StateLoading
	return LoadTicket{ProductID: product.ID, generation: c.generation}
}

// ApplyCatalog installs a fetch result. Results for superseded tickets are discarded with ErrStaleCatalog.
// A failed or empty fetch, or one whose step ids are blank or repeated, moves the configurator to
// StateUnavailable and returns a CatalogFetchError.
func (c *Configurator) ApplyCatalog(ticket LoadTicket, steps []domain.CustomizationStep, fetchErr error) error {
	if ticket.generation != c.generation || c.state != StateLoading {
		return fmt.Errorf("%w: product %q", ErrStaleCatalog, ticket.ProductID)
	}
	if fetchErr == nil {
		fetchErr = validateStepIDs(steps)
	}
	if fetchErr != nil || len(steps) == 0 {
		var cfe *CatalogFetchError
		if !errors.As(fetchErr, &cfe) {
			cfe = &CatalogFetchError{ProductID: ticket.ProductID, Err: fetchErr}
		}
		c.state = StateUnavailable
		c.loadErr = cfe
		return cfe
	}

	loaded := cloneSteps(steps)
	c.steps = loaded
	c.store = NewSelectionStore(loaded)
	c.nav = NewNavigator(len(loaded) + 1)
	c.state = StateReady
	return nil
}

// Load fetches and applies steps for product in one call.
func (c *Configurator) Load(ctx context.Context, product domain.ProductInfo, provider CatalogStepProvider) error {
	if provider == nil {
		return errors.New("configurator: catalog provider is required")
	}
	ticket := c.BeginLoad(product)
	steps, err := provider.FetchSteps(ctx, product.ID)
	return c.ApplyCatalog(ticket, steps, err)
}

// Reload retries the current product. All state is reset, as for a product change.
func (c *Configurator) Reload(ctx context.Context, provider CatalogStepProvider) error {
	return c.Load(ctx, c.product, provider)
}

// State returns the catalog lifecycle state.
func (c *Configurator) State() ConfiguratorState { return c.state }

// LoadError returns the error that made the configurator unavailable, if any.
func (c *Configurator) LoadError() error { return c.loadErr }

// Product returns the current product.
func (c *Configurator) Product() domain.ProductInfo { return c.product }

// Steps returns the loaded customization steps.
func (c *Configurator) Steps() []domain.CustomizationStep { return c.steps }

// Defaults returns the defaults the configurator was built with.
func (c *Configurator) Defaults() ConfiguratorDefaults { return c.defaults }

// Select records a choice for a step.
func (c *Configurator) Select(stepID, optionID, color string) (domain.Selection, error) {
	if c.state != StateReady {
		return domain.Selection{}, ErrCatalogNotLoaded
	}
	return c.store.Select(stepID, optionID, color)
}

// Selections returns the active selections in insertion order.
func (c *Configurator) Selections() []domain.Selection { return c.store.Ordered() }

// Measurement returns a copy of the measurement profile.
func (c *Configurator) Measurement() domain.MeasurementProfile { return c.profile.Clone() }

// UpdateMeasurement merges a partial update into the measurement profile.
func (c *Configurator) UpdateMeasurement(update domain.MeasurementUpdate) error {
	if update.SizeType != nil && !update.SizeType.Valid() {
		return fmt.Errorf("%w: unknown size type %q", ErrInvalidInput, *update.SizeType)
	}
	if update.StandardSize != nil && !domain.IsStandardSize(*update.StandardSize) {
		return fmt.Errorf("%w: unknown standard size %q", ErrInvalidInput, *update.StandardSize)
	}
	if update.FitType != nil && !domain.IsFitType(*update.FitType) {
		return fmt.Errorf("%w: unknown fit type %q", ErrInvalidInput, *update.FitType)
	}
	c.profile = ApplyMeasurementUpdate(c.profile, update)
	return nil
}

// TotalPrice returns the current total in minor units.
func (c *Configurator) TotalPrice() int64 {
	return ComputeTotal(c.product.BasePrice, c.store.Ordered(), c.profile, c.defaults.CustomSurcharge)
}

// Completion returns aggregate progress including the measurement step. Until a catalog is loaded
// nothing counts as completed.
func (c *Configurator) Completion() domain.Completion {
	if c.state != StateReady {
		return domain.Completion{TotalSteps: c.nav.TotalSteps()}
	}
	return CompletionOf(c.store.Len(), c.profile, c.nav.TotalSteps())
}

// Ready reports whether the step at index is complete. The last index is the measurement step.
func (c *Configurator) Ready(index int) bool {
	if c.state != StateReady {
		return false
	}
	switch {
	case index >= 0 && index < len(c.steps):
		return c.store.IsComplete(index)
	case index == len(c.steps):
		return MeasurementSatisfied(c.profile)
	}
	return false
}

// Attributes returns the semantic visual attributes derived from the selections.
func (c *Configurator) Attributes() domain.VisualAttributes {
	return MapAttributes(c.steps, c.store.Ordered())
}

// Layers returns the merged layer directives.
func (c *Configurator) Layers() domain.LayerDirectives {
	return MergeLayers(c.store.Ordered())
}

// Summary builds the order summary for the current state.
func (c *Configurator) Summary() domain.OrderSummary {
	return BuildOrderSummary(OrderSummaryInput{
		Product:    c.product,
		Steps:      c.steps,
		Selections: c.store.Ordered(),
		Profile:    c.profile,
		Surcharge:  c.defaults.CustomSurcharge,
	})
}

// CurrentIndex returns the navigation index.
func (c *Configurator) CurrentIndex() int { return c.nav.Index() }

// TotalSteps returns the customization steps plus the measurement step.
func (c *Configurator) TotalSteps() int { return c.nav.TotalSteps() }

// AtMeasurementStep reports whether the configurator is on the last step.
func (c *Configurator) AtMeasurementStep() bool { return c.nav.AtMeasurementStep() }

// Next moves forward one step.
func (c *Configurator) Next() int { return c.nav.Next() }

// Prev moves back one step.
func (c *Configurator) Prev() int { return c.nav.Prev() }

// JumpTo moves to index.
func (c *Configurator) JumpTo(index int) error { return c.nav.JumpTo(index) }

// CurrentStepTitle returns the name of the current step, or "Measurements" for the last step.
func (c *Configurator) CurrentStepTitle() string {
	index := c.nav.Index()
	if index < len(c.steps) {
		return c.steps[index].Name
	}
	return measurementStepTitle
}

// PrepareSubmission returns the summary to hand to checkout. It is only available on the measurement
// step of a ready configurator.
func (c *Configurator) PrepareSubmission() (domain.OrderSummary, error) {
	if c.state != StateReady {
		return domain.OrderSummary{}, ErrCatalogNotLoaded
	}
	if !c.nav.AtMeasurementStep() {
		return domain.OrderSummary{}, ErrNotAtMeasurementStep
	}
	return c.Summary(), nil
}

func validateStepIDs(steps []domain.CustomizationStep) error {
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		if strings.TrimSpace(step.ID) == "" {
			return fmt.Errorf("step %q has no id", step.Name)
		}
		if _, dup := seen[step.ID]; dup {
			return fmt.Errorf("duplicate step id %q", step.ID)
		}
		seen[step.ID] = struct{}{}
	}
	return nil
}

func cloneSteps(steps []domain.CustomizationStep) []domain.CustomizationStep {
	out := make([]domain.CustomizationStep, len(steps))
	for i, step := range steps {
		options := make([]domain.CustomizationOption, len(step.Options))
		for j, option := range step.Options {
			option.Layers = option.Layers.Clone()
			options[j] = option
		}
		step.Options = options
		out[i] = step
	}
	return out
}
