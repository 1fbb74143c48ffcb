package services

import (
	"strings"

	domain "github.com/tailor-field/configurator/internal/domain"
)

// SelectionStore holds at most one selection per loaded step and remembers the order in which
// steps were first selected.
type SelectionStore struct {
	steps     []domain.CustomizationStep
	byStep    map[string]domain.Selection
	insertion []string
}

// NewSelectionStore binds an empty store to the loaded steps.
func NewSelectionStore(steps []domain.CustomizationStep) *SelectionStore {
	return &SelectionStore{
		steps:  steps,
		byStep: make(map[string]domain.Selection),
	}
}

// Select records optionID as the choice for stepID. A non-empty colorOverride replaces the option's color.
func (s *SelectionStore) Select(stepID, optionID, colorOverride string) (domain.Selection, error) {
	stepID = strings.TrimSpace(stepID)
	optionID = strings.TrimSpace(optionID)

	step, ok := s.Step(stepID)
	if !ok {
		return domain.Selection{}, &InvalidSelectionError{StepID: stepID, OptionID: optionID, Reason: "unknown step"}
	}
	option, ok := step.Option(optionID)
	if !ok {
		return domain.Selection{}, &InvalidSelectionError{StepID: stepID, OptionID: optionID, Reason: "unknown option"}
	}
	if option.Price < 0 {
		return domain.Selection{}, &InvalidSelectionError{StepID: stepID, OptionID: optionID, Reason: "negative price"}
	}

	color := option.Color
	if override := strings.TrimSpace(colorOverride); override != "" {
		color = override
	}

	selection := domain.Selection{
		StepID:   step.ID,
		OptionID: option.ID,
		Price:    option.Price,
		Value:    option.Value,
		Color:    color,
		Layers:   option.Layers.Clone(),
	}
	if _, exists := s.byStep[step.ID]; !exists {
		s.insertion = append(s.insertion, step.ID)
	}
	s.byStep[step.ID] = selection
	return selection, nil
}

// Step resolves a loaded step by id.
func (s *SelectionStore) Step(stepID string) (domain.CustomizationStep, bool) {
	for _, step := range s.steps {
		if step.ID == stepID {
			return step, true
		}
	}
	return domain.CustomizationStep{}, false
}

// Get returns the selection for stepID.
func (s *SelectionStore) Get(stepID string) (domain.Selection, bool) {
	sel, ok := s.byStep[stepID]
	return sel, ok
}

// IsComplete reports whether the customization step at stepIndex has a selection.
// Indices outside the customization steps report false.
func (s *SelectionStore) IsComplete(stepIndex int) bool {
	if stepIndex < 0 || stepIndex >= len(s.steps) {
		return false
	}
	_, ok := s.byStep[s.steps[stepIndex].ID]
	return ok
}

// Len returns the number of steps with an active selection.
func (s *SelectionStore) Len() int {
	return len(s.byStep)
}

// Ordered returns the active selections in insertion order.
func (s *SelectionStore) Ordered() []domain.Selection {
	out := make([]domain.Selection, 0, len(s.insertion))
	for _, stepID := range s.insertion {
		out = append(out, s.byStep[stepID])
	}
	return out
}

// Steps returns the steps the store was bound to.
func (s *SelectionStore) Steps() []domain.CustomizationStep {
	return s.steps
}
