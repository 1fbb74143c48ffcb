package services

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogFetch signals the catalog provider failed or returned no steps for the product.
	ErrCatalogFetch = errors.New("configurator: no customization available")
	// ErrInvalidSelection signals a selection referencing a step or option absent from the loaded catalog.
	ErrInvalidSelection = errors.New("configurator: invalid selection")
	// ErrCatalogNotLoaded indicates the operation requires a successfully loaded catalog.
	ErrCatalogNotLoaded = errors.New("configurator: catalog not loaded")
	// ErrStaleCatalog indicates a fetch result arrived for a product that is no longer current.
	ErrStaleCatalog = errors.New("configurator: stale catalog result")
	// ErrNotAtMeasurementStep indicates submit was attempted before reaching the measurement step.
	ErrNotAtMeasurementStep = errors.New("configurator: submit is only available on the measurement step")
	// ErrInvalidInput indicates malformed caller input such as unknown size ids or navigation actions.
	ErrInvalidInput = errors.New("configurator: invalid input")
	// ErrCheckoutUnavailable indicates no checkout collaborator is configured.
	ErrCheckoutUnavailable = errors.New("configurator: checkout unavailable")
	// ErrSessionNotFound indicates the session id is unknown or expired.
	ErrSessionNotFound = errors.New("configurator: session not found")
	// ErrSessionLimit indicates the registry refused to open another session.
	ErrSessionLimit = errors.New("configurator: session limit reached")
)

// CatalogFetchError carries the product id and underlying cause of a failed catalog load.
type CatalogFetchError struct {
	ProductID string
	Err       error
}

func (e *CatalogFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s for product %q", ErrCatalogFetch.Error(), e.ProductID)
	}
	return fmt.Sprintf("%s for product %q: %v", ErrCatalogFetch.Error(), e.ProductID, e.Err)
}

func (e *CatalogFetchError) Unwrap() error { return e.Err }

// Is matches ErrCatalogFetch.
func (e *CatalogFetchError) Is(target error) bool { return target == ErrCatalogFetch }

// InvalidSelectionError identifies the offending step/option pair.
type InvalidSelectionError struct {
	StepID   string
	OptionID string
	Reason   string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("%s: step %q option %q: %s", ErrInvalidSelection.Error(), e.StepID, e.OptionID, e.Reason)
}

// Is matches ErrInvalidSelection.
func (e *InvalidSelectionError) Is(target error) bool { return target == ErrInvalidSelection }
