package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	domain "github.com/tailor-field/configurator/internal/domain"
)

// CoerceMeasurement converts caller input into a measurement value. Only numbers and numeric strings
// are accepted; booleans, containers and anything that is not a finite, non-negative number become zero.
func CoerceMeasurement(raw any) float64 {
	switch v := raw.(type) {
	case string:
		raw = strings.TrimSpace(v)
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
	default:
		return 0
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// ParseMeasurementUpdate validates identifiers and coerces numeric input into a domain update.
func ParseMeasurementUpdate(cmd UpdateMeasurementCommand) (domain.MeasurementUpdate, error) {
	var update domain.MeasurementUpdate

	if cmd.SizeType != nil {
		sizeType := domain.SizeType(strings.ToLower(strings.TrimSpace(*cmd.SizeType)))
		if !sizeType.Valid() {
			return domain.MeasurementUpdate{}, fmt.Errorf("%w: unknown size type %q", ErrInvalidInput, *cmd.SizeType)
		}
		update.SizeType = &sizeType
	}
	if cmd.StandardSize != nil {
		size := strings.ToLower(strings.TrimSpace(*cmd.StandardSize))
		if !domain.IsStandardSize(size) {
			return domain.MeasurementUpdate{}, fmt.Errorf("%w: unknown standard size %q", ErrInvalidInput, *cmd.StandardSize)
		}
		update.StandardSize = &size
	}
	if cmd.FitType != nil {
		fit := strings.ToLower(strings.TrimSpace(*cmd.FitType))
		if !domain.IsFitType(fit) {
			return domain.MeasurementUpdate{}, fmt.Errorf("%w: unknown fit type %q", ErrInvalidInput, *cmd.FitType)
		}
		update.FitType = &fit
	}
	if len(cmd.Custom) > 0 {
		update.Custom = make(map[domain.MeasurementField]float64, len(cmd.Custom))
		for key, raw := range cmd.Custom {
			field := domain.MeasurementField(strings.ToLower(strings.TrimSpace(key)))
			var probe domain.CustomMeasurements
			if !probe.Set(field, 0) {
				return domain.MeasurementUpdate{}, fmt.Errorf("%w: unknown measurement %q", ErrInvalidInput, key)
			}
			update.Custom[field] = CoerceMeasurement(raw)
		}
	}
	return update, nil
}

// ApplyMeasurementUpdate merges update into profile and returns the result. Fields absent from the
// update keep their previous values.
func ApplyMeasurementUpdate(profile domain.MeasurementProfile, update domain.MeasurementUpdate) domain.MeasurementProfile {
	next := profile.Clone()
	if update.SizeType != nil {
		next.SizeType = *update.SizeType
	}
	if update.StandardSize != nil {
		next.StandardSize = *update.StandardSize
	}
	if update.FitType != nil {
		next.FitType = *update.FitType
	}
	if len(update.Custom) > 0 {
		if next.Custom == nil {
			next.Custom = &domain.CustomMeasurements{}
		}
		for field, value := range update.Custom {
			if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
				value = 0
			}
			next.Custom.Set(field, value)
		}
	}
	return next
}
