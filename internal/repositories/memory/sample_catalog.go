// Package memory provides the built-in sample catalog used for demos and as the first catalog source.
package memory

import (
	domain "github.com/tailor-field/configurator/internal/domain"
)

type sampleProduct struct {
	info  domain.ProductInfo
	steps []domain.CustomizationStep
}

// SampleCatalog serves a fixed set of products and their customization steps.
type SampleCatalog struct {
	products map[string]sampleProduct
	order    []string
}

// NewSampleCatalog returns the built-in shirt, pants and jacket samples priced in currency.
func NewSampleCatalog(currency string) *SampleCatalog {
	if currency == "" {
		currency = "USD"
	}
	catalog := &SampleCatalog{products: make(map[string]sampleProduct)}
	catalog.add(domain.ProductInfo{ID: "shirt-001", Name: "Premium Custom Shirt", BasePrice: 8999, Currency: currency, ProductType: "shirt"}, shirtSteps())
	catalog.add(domain.ProductInfo{ID: "pants-001", Name: "Premium Chinos", BasePrice: 7999, Currency: currency, ProductType: "pants"}, pantsSteps())
	catalog.add(domain.ProductInfo{ID: "jacket-001", Name: "Premium Blazer", BasePrice: 19999, Currency: currency, ProductType: "jacket"}, jacketSteps())
	return catalog
}

func (c *SampleCatalog) add(info domain.ProductInfo, steps []domain.CustomizationStep) {
	c.products[info.ID] = sampleProduct{info: info, steps: steps}
	c.order = append(c.order, info.ID)
}

// Product returns the sample product metadata.
func (c *SampleCatalog) Product(productID string) (domain.ProductInfo, bool) {
	if c == nil {
		return domain.ProductInfo{}, false
	}
	product, ok := c.products[productID]
	return product.info, ok
}

// Steps returns a copy of the sample steps for productID.
func (c *SampleCatalog) Steps(productID string) ([]domain.CustomizationStep, bool) {
	if c == nil {
		return nil, false
	}
	product, ok := c.products[productID]
	if !ok {
		return nil, false
	}
	out := make([]domain.CustomizationStep, len(product.steps))
	for i, step := range product.steps {
		options := make([]domain.CustomizationOption, len(step.Options))
		for j, option := range step.Options {
			option.Layers = option.Layers.Clone()
			options[j] = option
		}
		step.Options = options
		out[i] = step
	}
	return out, true
}

// Products lists the sample products in catalog order.
func (c *SampleCatalog) Products() []domain.ProductInfo {
	if c == nil {
		return nil
	}
	out := make([]domain.ProductInfo, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id].info)
	}
	return out
}

func show(layers ...string) *domain.LayerDirectives {
	return &domain.LayerDirectives{Show: layers, Hide: []string{}}
}

func showHide(showLayers, hideLayers []string) *domain.LayerDirectives {
	return &domain.LayerDirectives{Show: showLayers, Hide: hideLayers}
}

func shirtSteps() []domain.CustomizationStep {
	return []domain.CustomizationStep{
		{
			ID: "shirt-fabric-color", Name: "Fabric Color", Kind: domain.StepKindColor, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "white", Name: "Classic White", Value: "white", Color: "#FFFFFF"},
				{ID: "light-blue", Name: "Light Blue", Value: "light-blue", Color: "#ADD8E6", Price: 500},
				{ID: "navy", Name: "Navy", Value: "navy", Color: "#1F2A44", Price: 800},
				{ID: "pink", Name: "Soft Pink", Value: "pink", Color: "#F4C2C2", Price: 500},
			},
		},
		{
			ID: "shirt-fabric-type", Name: "Fabric Type", Kind: domain.StepKindTexture, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "cotton", Name: "Cotton Poplin", Value: "cotton"},
				{ID: "oxford", Name: "Oxford Weave", Value: "oxford", Price: 1000},
				{ID: "linen", Name: "Linen", Value: "linen", Price: 1500},
				{ID: "twill", Name: "Twill", Value: "twill", Price: 1200},
			},
		},
		{
			ID: "shirt-collar-style", Name: "Collar Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "classic-collar", Name: "Classic Collar", Value: "classic", Layers: showHide([]string{"collar_classic"}, []string{"collar_button_down", "collar_spread"})},
				{ID: "button-down-collar", Name: "Button Down Collar", Value: "button-down", Price: 500, Layers: showHide([]string{"collar_button_down"}, []string{"collar_classic", "collar_spread"})},
				{ID: "spread-collar", Name: "Spread Collar", Value: "spread", Price: 1000, Layers: showHide([]string{"collar_spread"}, []string{"collar_classic", "collar_button_down"})},
			},
		},
		{
			ID: "shirt-button-style", Name: "Button Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "standard-buttons", Name: "Standard Button Style", Value: "standard"},
				{ID: "mother-of-pearl", Name: "Pearl Button Style", Value: "pearl", Price: 1500},
				{ID: "hidden-placket", Name: "Hidden Button Configuration", Value: "hidden", Price: 800, Layers: show("placket_hidden")},
			},
		},
		{
			ID: "shirt-cuff-style", Name: "Cuff Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "barrel-cuffs", Name: "Barrel Cuff", Value: "barrel", Layers: show("cuff_barrel")},
				{ID: "french-cuffs", Name: "French Cuff", Value: "french", Price: 1200, Layers: show("cuff_french")},
				{ID: "sleeve-button-single", Name: "Sleeve Button Style Single", Value: "single"},
			},
		},
		{
			ID: "shirt-back-style", Name: "Back Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "plain-back", Name: "Plain Back", Value: "plain"},
				{ID: "box-pleat", Name: "Box Pleat", Value: "box-pleat", Price: 300, Layers: show("back_box_pleat")},
				{ID: "side-pleats", Name: "Side Pleats", Value: "side-pleats", Price: 300, Layers: show("back_side_pleats")},
			},
		},
	}
}

func pantsSteps() []domain.CustomizationStep {
	return []domain.CustomizationStep{
		{
			ID: "pants-fabric-color", Name: "Fabric Color", Kind: domain.StepKindColor, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "khaki", Name: "Main Khaki", Value: "khaki", Color: "#C3B091"},
				{ID: "charcoal", Name: "Main Charcoal", Value: "charcoal", Color: "#36454F", Price: 500},
				{ID: "olive", Name: "Main Olive", Value: "olive", Color: "#556B2F", Price: 500},
			},
		},
		{
			ID: "pants-fabric-type", Name: "Fabric Type", Kind: domain.StepKindTexture, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "chino-twill", Name: "Chino Twill", Value: "twill"},
				{ID: "stretch-cotton", Name: "Stretch Cotton", Value: "stretch", Price: 1000},
			},
		},
		{
			ID: "pants-pocket-style", Name: "Pocket Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "slant-pockets", Name: "Slant Pocket", Value: "slant", Layers: show("pocket_slant")},
				{ID: "welt-pockets", Name: "Welt Pocket", Value: "welt", Price: 500, Layers: show("pocket_welt")},
			},
		},
		{
			ID: "pants-cuff-style", Name: "Hem Finish", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "plain-hem", Name: "Plain Hem", Value: "plain"},
				{ID: "turn-up", Name: "Turn-up Cuff", Value: "turn-up", Price: 800, Layers: show("hem_turn_up")},
			},
		},
		{
			ID: "pants-waistband", Name: "Waistband", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "belt-loops", Name: "Waistband Belt Loops", Value: "belt-loops", Layers: show("waistband_loops")},
				{ID: "side-adjusters", Name: "Waistband Side Adjusters", Value: "side-adjusters", Price: 1200, Layers: showHide([]string{"waistband_adjusters"}, []string{"waistband_loops"})},
			},
		},
	}
}

func jacketSteps() []domain.CustomizationStep {
	return []domain.CustomizationStep{
		{
			ID: "jacket-fabric-color", Name: "Fabric Color", Kind: domain.StepKindColor, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "navy", Name: "Fabric Navy", Value: "navy", Color: "#1F2A44"},
				{ID: "charcoal", Name: "Fabric Charcoal", Value: "charcoal", Color: "#36454F"},
				{ID: "camel", Name: "Fabric Camel", Value: "camel", Color: "#C19A6B", Price: 2000},
			},
		},
		{
			ID: "jacket-fabric-type", Name: "Fabric Type", Kind: domain.StepKindTexture, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "wool", Name: "Worsted Wool", Value: "wool"},
				{ID: "tweed", Name: "Tweed", Value: "tweed", Price: 3000},
				{ID: "linen-blend", Name: "Linen Blend", Value: "linen", Price: 2000},
			},
		},
		{
			ID: "jacket-lapel-style", Name: "Lapel Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "notch-lapel", Name: "Notch Lapel", Value: "notch", Layers: show("lapel_notch")},
				{ID: "peak-lapel", Name: "Peak Lapel", Value: "peak", Price: 1500, Layers: show("lapel_peak")},
			},
		},
		{
			ID: "jacket-button-style", Name: "Button Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "two-button", Name: "Two Button Configuration", Value: "2"},
				{ID: "three-button", Name: "Three Button Configuration", Value: "3", Price: 1000},
				{ID: "horn-buttons", Name: "Horn Button Color", Value: "horn", Color: "#3B2F2F", Price: 1500},
			},
		},
		{
			ID: "jacket-pocket-style", Name: "Pocket Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "flap-pockets", Name: "Flap Pocket", Value: "flap", Layers: show("pocket_flap")},
				{ID: "patch-pockets", Name: "Patch Pocket", Value: "patch", Price: 1000, Layers: show("pocket_patch")},
			},
		},
		{
			ID: "jacket-lining", Name: "Lining", Kind: domain.StepKindColor, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "lining-navy", Name: "Lining Navy", Value: "navy", Color: "#1F2A44"},
				{ID: "lining-burgundy", Name: "Lining Burgundy", Value: "burgundy", Color: "#800020", Price: 1500},
			},
		},
	}
}
