package services

import "fmt"

// Navigator tracks the current step index over the customization steps plus the trailing
// measurement step. Navigation carries no completion precondition.
type Navigator struct {
	index      int
	totalSteps int
}

// NewNavigator starts at index 0. totalSteps is the number of customization steps plus one.
func NewNavigator(totalSteps int) Navigator {
	if totalSteps < 1 {
		totalSteps = 1
	}
	return Navigator{totalSteps: totalSteps}
}

// Index returns the current step index.
func (n Navigator) Index() int { return n.index }

// TotalSteps returns the number of navigable steps.
func (n Navigator) TotalSteps() int { return n.totalSteps }

// MeasurementIndex returns the index of the measurement step.
func (n Navigator) MeasurementIndex() int { return n.totalSteps - 1 }

// AtMeasurementStep reports whether the submit transition is available.
func (n Navigator) AtMeasurementStep() bool { return n.index == n.MeasurementIndex() }

// Next advances one step, staying on the last step.
func (n *Navigator) Next() int {
	if n.index < n.totalSteps-1 {
		n.index++
	}
	return n.index
}

// Prev goes back one step, staying on the first step.
func (n *Navigator) Prev() int {
	if n.index > 0 {
		n.index--
	}
	return n.index
}

// JumpTo moves directly to index i.
func (n *Navigator) JumpTo(i int) error {
	if i < 0 || i >= n.totalSteps {
		return fmt.Errorf("%w: step index %d out of range [0,%d)", ErrInvalidInput, i, n.totalSteps)
	}
	n.index = i
	return nil
}
