package services

import (
	domain "github.com/tailor-field/configurator/internal/domain"
)

func testSteps() []domain.CustomizationStep {
	return []domain.CustomizationStep{
		{
			ID: "fabric", Name: "Fabric", Kind: domain.StepKindColor, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "white", Name: "Main Fabric", Value: "white", Color: "#FFFFFF"},
				{ID: "navy", Name: "Main Fabric Navy", Value: "navy", Color: "#000080", Price: 800},
			},
		},
		{
			ID: "collar", Name: "Collar Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "classic", Name: "Classic Collar", Value: "classic", Layers: &domain.LayerDirectives{Show: []string{"collar_classic"}, Hide: []string{"collar_spread"}}},
				{ID: "spread", Name: "Spread Collar", Value: "spread", Price: 1000, Layers: &domain.LayerDirectives{Show: []string{"collar_spread"}, Hide: []string{"collar_classic"}}},
			},
		},
		{
			ID: "cuff", Name: "Cuff Style", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "barrel", Name: "Barrel Cuff", Value: "barrel"},
				{ID: "french", Name: "French Cuff", Value: "french", Price: 1200},
			},
		},
		{
			ID: "sleeve", Name: "Sleeve Detail", Kind: domain.StepKindComponent, Category: "style",
			Options: []domain.CustomizationOption{
				{ID: "single", Name: "Sleeve Button Style", Value: "single"},
			},
		},
		{
			ID: "texture", Name: "Fabric Type", Kind: domain.StepKindTexture, Category: "fabric",
			Options: []domain.CustomizationOption{
				{ID: "linen", Name: "Linen", Value: "linen", Price: 1500},
			},
		},
	}
}

func testProduct() domain.ProductInfo {
	return domain.ProductInfo{ID: "shirt-001", Name: "Premium Custom Shirt", BasePrice: 8999, Currency: "USD", ProductType: "shirt"}
}

func stringPtr(s string) *string { return &s }
