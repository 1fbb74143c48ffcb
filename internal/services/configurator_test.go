package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/tailor-field/configurator/internal/domain"
)

type stubStepProvider struct {
	steps []domain.CustomizationStep
	err   error
	calls int
}

func (s *stubStepProvider) FetchSteps(context.Context, string) ([]domain.CustomizationStep, error) {
	s.calls++
	return s.steps, s.err
}

func readyConfigurator(t *testing.T) *Configurator {
	t.Helper()
	c := NewConfigurator(DefaultConfiguratorDefaults())
	if err := c.Load(context.Background(), testProduct(), &stubStepProvider{steps: testSteps()}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestConfiguratorDefaults(t *testing.T) {
	c := readyConfigurator(t)

	profile := c.Measurement()
	if profile.SizeType != domain.SizeTypeStandard || profile.StandardSize != "m" || profile.FitType != "regular" {
		t.Fatalf("unexpected default profile %+v", profile)
	}
	if c.TotalSteps() != len(testSteps())+1 {
		t.Fatalf("expected %d total steps, got %d", len(testSteps())+1, c.TotalSteps())
	}
	if c.TotalPrice() != 8999 {
		t.Fatalf("expected base price only, got %d", c.TotalPrice())
	}
	if c.CurrentStepTitle() != "Fabric" {
		t.Fatalf("expected first step title, got %q", c.CurrentStepTitle())
	}
}

func TestConfiguratorCompletionQuarter(t *testing.T) {
	steps := testSteps()[:3]
	c := NewConfigurator(DefaultConfiguratorDefaults())
	if err := c.Load(context.Background(), testProduct(), &stubStepProvider{steps: steps}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.UpdateMeasurement(domain.MeasurementUpdate{SizeType: sizeTypePtr(domain.SizeTypeCustom)}); err != nil {
		t.Fatalf("UpdateMeasurement: %v", err)
	}
	if _, err := c.Select("fabric", "navy", ""); err != nil {
		t.Fatalf("Select: %v", err)
	}

	completion := c.Completion()
	if completion.TotalSteps != 4 || completion.Completed != 1 || completion.Percent != 25 {
		t.Fatalf("expected 1 of 4 at 25%%, got %+v", completion)
	}
	if c.Ready(3) {
		t.Fatal("measurement step must not be ready with zero custom measurements")
	}
	if !c.Ready(0) || c.Ready(1) {
		t.Fatal("unexpected per-step readiness")
	}
}

func TestConfiguratorCompletionZeroUntilCatalogLoaded(t *testing.T) {
	c := NewConfigurator(DefaultConfiguratorDefaults())
	assertNoProgress := func(label string) {
		t.Helper()
		completion := c.Completion()
		if completion.Completed != 0 || completion.Percent != 0 || completion.TotalSteps != 1 {
			t.Fatalf("%s: expected no progress, got %+v", label, completion)
		}
		if c.Ready(0) {
			t.Fatalf("%s: measurement step must not report ready", label)
		}
	}

	assertNoProgress("idle")
	c.BeginLoad(testProduct())
	assertNoProgress("loading")
	if err := c.Load(context.Background(), testProduct(), &stubStepProvider{err: errors.New("timeout")}); err == nil {
		t.Fatal("expected fetch failure")
	}
	assertNoProgress("unavailable")
}

func TestConfiguratorStaleTicketDiscarded(t *testing.T) {
	c := NewConfigurator(DefaultConfiguratorDefaults())

	first := c.BeginLoad(domain.ProductInfo{ID: "shirt-001", BasePrice: 8999})
	second := c.BeginLoad(domain.ProductInfo{ID: "pants-001", BasePrice: 7999})

	if err := c.ApplyCatalog(first, testSteps(), nil); !errors.Is(err, ErrStaleCatalog) {
		t.Fatalf("expected ErrStaleCatalog, got %v", err)
	}
	if c.State() != StateLoading {
		t.Fatalf("stale result must not change state, got %s", c.State())
	}
	pantsSteps := testSteps()[:2]
	if err := c.ApplyCatalog(second, pantsSteps, nil); err != nil {
		t.Fatalf("ApplyCatalog: %v", err)
	}
	if c.Product().ID != "pants-001" || len(c.Steps()) != 2 {
		t.Fatalf("expected pants catalog installed, got %s with %d steps", c.Product().ID, len(c.Steps()))
	}
	if err := c.ApplyCatalog(second, pantsSteps, nil); !errors.Is(err, ErrStaleCatalog) {
		t.Fatalf("expected re-applied ticket to be stale, got %v", err)
	}
}

func TestConfiguratorCatalogFetchFailure(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubStepProvider
	}{
		{name: "provider error", provider: &stubStepProvider{err: errors.New("network down")}},
		{name: "empty catalog", provider: &stubStepProvider{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConfigurator(DefaultConfiguratorDefaults())
			err := c.Load(context.Background(), testProduct(), tc.provider)
			if !errors.Is(err, ErrCatalogFetch) {
				t.Fatalf("expected ErrCatalogFetch, got %v", err)
			}
			var fetchErr *CatalogFetchError
			if !errors.As(err, &fetchErr) || fetchErr.ProductID != "shirt-001" {
				t.Fatalf("expected CatalogFetchError for shirt-001, got %v", err)
			}
			if c.State() != StateUnavailable {
				t.Fatalf("expected unavailable state, got %s", c.State())
			}
			if _, err := c.Select("fabric", "white", ""); !errors.Is(err, ErrCatalogNotLoaded) {
				t.Fatalf("expected ErrCatalogNotLoaded, got %v", err)
			}
			if tc.provider.calls != 1 {
				t.Fatalf("expected no automatic retry, got %d calls", tc.provider.calls)
			}

			tc.provider.err = nil
			tc.provider.steps = testSteps()
			if err := c.Reload(context.Background(), tc.provider); err != nil {
				t.Fatalf("Reload: %v", err)
			}
			if c.State() != StateReady {
				t.Fatalf("expected ready after reload, got %s", c.State())
			}
		})
	}
}

func TestConfiguratorRejectsCatalogWithInvalidStepIDs(t *testing.T) {
	duplicate := testSteps()
	duplicate[1].ID = duplicate[0].ID
	blank := testSteps()
	blank[2].ID = " "

	for name, steps := range map[string][]domain.CustomizationStep{"duplicate": duplicate, "blank": blank} {
		t.Run(name, func(t *testing.T) {
			c := NewConfigurator(DefaultConfiguratorDefaults())
			err := c.Load(context.Background(), testProduct(), &stubStepProvider{steps: steps})
			var fetchErr *CatalogFetchError
			if !errors.As(err, &fetchErr) || fetchErr.ProductID != "shirt-001" {
				t.Fatalf("expected CatalogFetchError, got %v", err)
			}
			if c.State() != StateUnavailable || len(c.Steps()) != 0 {
				t.Fatalf("expected unavailable configurator without steps, got %s with %d", c.State(), len(c.Steps()))
			}
		})
	}
}

func TestConfiguratorProductChangeResetsState(t *testing.T) {
	c := readyConfigurator(t)
	if _, err := c.Select("collar", "spread", ""); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := c.UpdateMeasurement(domain.MeasurementUpdate{StandardSize: stringPtr("xl")}); err != nil {
		t.Fatalf("UpdateMeasurement: %v", err)
	}
	c.Next()

	if err := c.Load(context.Background(), domain.ProductInfo{ID: "pants-001", BasePrice: 7999}, &stubStepProvider{steps: testSteps()}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Selections()) != 0 {
		t.Fatal("expected selections cleared")
	}
	if c.Measurement().StandardSize != "m" {
		t.Fatalf("expected default size restored, got %q", c.Measurement().StandardSize)
	}
	if c.CurrentIndex() != 0 {
		t.Fatalf("expected index reset, got %d", c.CurrentIndex())
	}
	if c.Product().Currency != "USD" {
		t.Fatalf("expected default currency, got %q", c.Product().Currency)
	}
}

func TestConfiguratorSubmitOnlyAtMeasurementStep(t *testing.T) {
	c := readyConfigurator(t)
	if _, err := c.PrepareSubmission(); !errors.Is(err, ErrNotAtMeasurementStep) {
		t.Fatalf("expected ErrNotAtMeasurementStep, got %v", err)
	}
	if err := c.JumpTo(c.TotalSteps() - 1); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if c.CurrentStepTitle() != "Measurements" {
		t.Fatalf("expected Measurements title, got %q", c.CurrentStepTitle())
	}
	summary, err := c.PrepareSubmission()
	if err != nil {
		t.Fatalf("PrepareSubmission: %v", err)
	}
	if summary.TotalPrice != c.TotalPrice() {
		t.Fatalf("expected summary total %d, got %d", c.TotalPrice(), summary.TotalPrice)
	}
}

func TestConfiguratorUpdateMeasurementRejectsUnknownSize(t *testing.T) {
	c := readyConfigurator(t)
	if err := c.UpdateMeasurement(domain.MeasurementUpdate{FitType: stringPtr("baggy")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if c.Measurement().FitType != "regular" {
		t.Fatal("rejected update must not change the profile")
	}
}

func sizeTypePtr(v domain.SizeType) *domain.SizeType { return &v }
