package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	domain "github.com/tailor-field/configurator/internal/domain"
	"github.com/tailor-field/configurator/internal/platform/requestctx"
	"github.com/tailor-field/configurator/internal/repositories"
)

const (
	clothingTypeStepFabric = "fabric"
	clothingTypeStepStyle  = "style"
)

var catalogTracer = otel.Tracer("github.com/tailor-field/configurator/internal/services/catalog")

// SampleCatalog is the in-process catalog consulted before Firestore.
type SampleCatalog interface {
	Product(productID string) (ProductInfo, bool)
	Steps(productID string) ([]CustomizationStep, bool)
	Products() []ProductInfo
}

// CatalogProviderDeps wires the catalog sources.
type CatalogProviderDeps struct {
	Samples       SampleCatalog
	ClothingTypes repositories.ClothingTypeRepository
	FetchTimeout  time.Duration
	Currency      string
}

// UnifiedCatalogProvider serves sample products first and admin-authored clothing types second.
type UnifiedCatalogProvider struct {
	samples       SampleCatalog
	clothingTypes repositories.ClothingTypeRepository
	timeout       time.Duration
	currency      string
}

var (
	_ CatalogProvider = (*UnifiedCatalogProvider)(nil)
	_ ProductLister   = (*UnifiedCatalogProvider)(nil)
)

// NewUnifiedCatalogProvider requires at least one catalog source.
func NewUnifiedCatalogProvider(deps CatalogProviderDeps) (*UnifiedCatalogProvider, error) {
	if deps.Samples == nil && deps.ClothingTypes == nil {
		return nil, errors.New("catalog provider: at least one catalog source is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "USD"
	}
	return &UnifiedCatalogProvider{
		samples:       deps.Samples,
		clothingTypes: deps.ClothingTypes,
		timeout:       deps.FetchTimeout,
		currency:      currency,
	}, nil
}

// LookupProduct resolves product metadata. Unknown products yield a CatalogFetchError.
func (p *UnifiedCatalogProvider) LookupProduct(ctx context.Context, productID string) (ProductInfo, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ProductInfo{}, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if p.samples != nil {
		if info, ok := p.samples.Product(productID); ok {
			return info, nil
		}
	}
	ct, err := p.findClothingType(ctx, productID)
	if err != nil {
		return ProductInfo{}, err
	}
	return p.clothingTypeProduct(ct), nil
}

// ListProducts returns the sample products followed by active clothing types ordered by name.
// A Firestore failure is returned only when there are no sample products to fall back on.
func (p *UnifiedCatalogProvider) ListProducts(ctx context.Context) ([]ProductInfo, error) {
	var products []ProductInfo
	seen := make(map[string]struct{})
	if p.samples != nil {
		for _, info := range p.samples.Products() {
			seen[info.ID] = struct{}{}
			products = append(products, info)
		}
	}
	if p.clothingTypes == nil {
		return products, nil
	}

	listCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		listCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	types, err := p.clothingTypes.ListActive(listCtx)
	if err != nil {
		if len(products) == 0 {
			return nil, fmt.Errorf("catalog provider: list clothing types: %w", err)
		}
		requestctx.Logger(ctx).Warn("catalog: listing clothing types failed, serving samples only", zap.Error(err))
		return products, nil
	}
	for _, ct := range types {
		if _, dup := seen[ct.ID]; dup || !ct.Active {
			continue
		}
		products = append(products, p.clothingTypeProduct(ct))
	}
	return products, nil
}

// FetchSteps returns the ordered steps for productID. An empty result is a CatalogFetchError.
func (p *UnifiedCatalogProvider) FetchSteps(ctx context.Context, productID string) ([]CustomizationStep, error) {
	ctx, span := catalogTracer.Start(ctx, "catalog.fetch_steps")
	defer span.End()
	span.SetAttributes(attribute.String("configurator.product_id", productID))

	steps, source, err := p.fetchSteps(ctx, strings.TrimSpace(productID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog fetch failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("configurator.catalog_source", source),
		attribute.Int("configurator.step_count", len(steps)),
	)
	return steps, nil
}

func (p *UnifiedCatalogProvider) fetchSteps(ctx context.Context, productID string) ([]CustomizationStep, string, error) {
	if productID == "" {
		return nil, "", &CatalogFetchError{ProductID: productID, Err: ErrInvalidInput}
	}
	if p.samples != nil {
		if steps, ok := p.samples.Steps(productID); ok {
			if len(steps) == 0 {
				return nil, "sample", &CatalogFetchError{ProductID: productID}
			}
			return steps, "sample", nil
		}
	}
	ct, err := p.findClothingType(ctx, productID)
	if err != nil {
		return nil, "firestore", err
	}
	steps := ClothingTypeSteps(ct)
	if len(steps) == 0 {
		return nil, "firestore", &CatalogFetchError{ProductID: productID}
	}
	return steps, "firestore", nil
}

func (p *UnifiedCatalogProvider) findClothingType(ctx context.Context, productID string) (domain.ClothingType, error) {
	if p.clothingTypes == nil {
		return domain.ClothingType{}, &CatalogFetchError{ProductID: productID, Err: errors.New("product not found")}
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ct, err := p.clothingTypes.FindByID(ctx, productID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			requestctx.Logger(ctx).Warn("catalog: clothing type lookup failed",
				zap.String("productID", productID),
				zap.Error(err),
			)
		}
		return domain.ClothingType{}, &CatalogFetchError{ProductID: productID, Err: err}
	}
	if !ct.Active {
		return domain.ClothingType{}, &CatalogFetchError{ProductID: productID, Err: errors.New("product is not active")}
	}
	return ct, nil
}

func (p *UnifiedCatalogProvider) clothingTypeProduct(ct domain.ClothingType) ProductInfo {
	currency := strings.ToUpper(strings.TrimSpace(ct.Currency))
	if currency == "" {
		currency = p.currency
	}
	return ProductInfo{
		ID:          ct.ID,
		Name:        ct.Name,
		BasePrice:   ct.BasePrice,
		Currency:    currency,
		ProductType: strings.ToLower(strings.TrimSpace(ct.Category)),
	}
}

// ClothingTypeSteps converts an admin-authored clothing type into customization steps. Step ids are
// "<clothingTypeId>-<type>"; a repeated type gets its 1-based position appended so ids stay unique.
func ClothingTypeSteps(ct domain.ClothingType) []CustomizationStep {
	steps := make([]CustomizationStep, 0, len(ct.Steps))
	typeCounts := make(map[string]int, len(ct.Steps))
	for _, src := range ct.Steps {
		typeCounts[strings.ToLower(strings.TrimSpace(src.Type))]++
	}
	used := make(map[string]struct{}, len(ct.Steps))
	for i, src := range ct.Steps {
		stepType := strings.ToLower(strings.TrimSpace(src.Type))
		stepID := fmt.Sprintf("%s-%s", ct.ID, stepType)
		if typeCounts[stepType] > 1 {
			stepID = fmt.Sprintf("%s-%d", stepID, i+1)
		}
		for suffix := 2; ; suffix++ {
			if _, taken := used[stepID]; !taken {
				break
			}
			stepID = fmt.Sprintf("%s-%s-%d-%d", ct.ID, stepType, i+1, suffix)
		}
		used[stepID] = struct{}{}
		category := clothingTypeStepStyle
		if stepType == clothingTypeStepFabric {
			category = clothingTypeStepFabric
		}

		options := make([]CustomizationOption, 0, len(src.Options))
		for _, opt := range src.Options {
			value := firstNonEmpty(opt.Color, opt.MaterialMapping, opt.ID)
			option := CustomizationOption{
				ID:        opt.ID,
				Name:      opt.Name,
				Value:     value,
				Price:     opt.Price,
				Thumbnail: opt.Image,
				Color:     opt.Color,
			}
			if opt.MaterialMapping != "" {
				option.Layers = &domain.LayerDirectives{Show: []string{opt.MaterialMapping}, Hide: []string{}}
			}
			options = append(options, option)
		}

		steps = append(steps, CustomizationStep{
			ID:       stepID,
			Name:     src.Title,
			Kind:     stepKindFor(stepType),
			Category: category,
			Options:  options,
		})
	}
	return steps
}

func stepKindFor(stepType string) domain.StepKind {
	switch stepType {
	case clothingTypeStepFabric:
		return domain.StepKindTexture
	case clothingTypeStepStyle:
		return domain.StepKindComponent
	}
	if kind := domain.StepKind(stepType); kind.Valid() {
		return kind
	}
	return domain.StepKindComponent
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
