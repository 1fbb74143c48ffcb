package services

import domain "github.com/tailor-field/configurator/internal/domain"

const unknownCategory = "Unknown"

// OrderSummaryInput is the state snapshot an order summary is built from.
type OrderSummaryInput struct {
	Product    domain.ProductInfo
	Steps      []domain.CustomizationStep
	Selections []domain.Selection
	Profile    domain.MeasurementProfile
	Surcharge  int64
}

// BuildOrderSummary snapshots the configuration for checkout. It has no side effects.
func BuildOrderSummary(in OrderSummaryInput) domain.OrderSummary {
	names := make(map[string]string, len(in.Steps))
	for _, step := range in.Steps {
		names[step.ID] = step.Name
	}

	lines := make([]domain.OrderCustomization, 0, len(in.Selections))
	for _, sel := range in.Selections {
		category, ok := names[sel.StepID]
		if !ok {
			category = unknownCategory
		}
		lines = append(lines, domain.OrderCustomization{
			Category: category,
			Value:    sel.Value,
			Price:    sel.Price,
		})
	}

	return domain.OrderSummary{
		ProductName:    in.Product.Name,
		BasePrice:      in.Product.BasePrice,
		Currency:       in.Product.Currency,
		Customizations: lines,
		Measurement:    in.Profile.Clone(),
		TotalPrice:     ComputeTotal(in.Product.BasePrice, in.Selections, in.Profile, in.Surcharge),
	}
}
