package services

import (
	"math"

	domain "github.com/tailor-field/configurator/internal/domain"
)

// DefaultCustomSizingSurcharge is 25.00 in minor units.
const DefaultCustomSizingSurcharge int64 = 2500

// ComputeTotal returns basePrice plus every selection price, plus surcharge when the profile uses custom sizing.
func ComputeTotal(basePrice int64, selections []domain.Selection, profile domain.MeasurementProfile, surcharge int64) int64 {
	total := basePrice
	for _, sel := range selections {
		total += sel.Price
	}
	if profile.SizeType == domain.SizeTypeCustom {
		total += surcharge
	}
	return total
}

// MeasurementSatisfied reports whether the measurement step counts as complete.
func MeasurementSatisfied(profile domain.MeasurementProfile) bool {
	switch profile.SizeType {
	case domain.SizeTypeStandard:
		return profile.StandardSize != "" && profile.FitType != ""
	case domain.SizeTypeCustom:
		return profile.Custom != nil && profile.Custom.AnyPositive()
	}
	return false
}

// CompletionOf derives aggregate progress. totalSteps includes the measurement step.
func CompletionOf(selectedSteps int, profile domain.MeasurementProfile, totalSteps int) domain.Completion {
	completed := selectedSteps
	if MeasurementSatisfied(profile) {
		completed++
	}
	percent := 0
	if totalSteps > 0 {
		percent = int(math.Round(100 * float64(completed) / float64(totalSteps)))
	}
	return domain.Completion{
		Completed:  completed,
		TotalSteps: totalSteps,
		Percent:    percent,
	}
}
