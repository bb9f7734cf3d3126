package wizard

import "errors"

// ErrNoSteps is returned when a wizard is built without steps.
var ErrNoSteps = errors.New("wizard needs at least one step")

// Wizard is an ordered list of step titles and the current position.
type Wizard struct {
	Steps   []string
	Current int
}

// New creates a wizard positioned at step index current, clamped into range.
// PRE: len(steps) > 0
// POST: 0 <= Current < len(Steps)
func New(steps []string, current int) (Wizard, error) {
	if len(steps) == 0 {
		return Wizard{}, ErrNoSteps
	}
	w := Wizard{Steps: steps}
	w.Current = w.clamp(current)
	return w, nil
}

// Next advances one step, stopping at the last.
func (w *Wizard) Next() { w.Current = w.clamp(w.Current + 1) }

// Back returns one step, stopping at the first.
func (w *Wizard) Back() { w.Current = w.clamp(w.Current - 1) }

// IsFirst reports whether the current step is the first.
func (w Wizard) IsFirst() bool { return w.Current == 0 }

// IsLast reports whether the current step is the last.
func (w Wizard) IsLast() bool { return w.Current == len(w.Steps)-1 }

// Title returns the current step's title.
func (w Wizard) Title() string { return w.Steps[w.Current] }

// Number returns the 1-indexed current step.
func (w Wizard) Number() int { return w.Current + 1 }

// Progress returns completion as a whole percentage; the first step is 0
// and the last is 100.
func (w Wizard) Progress() int {
	if len(w.Steps) <= 1 {
		return 100
	}
	return w.Current * 100 / (len(w.Steps) - 1)
}

func (w Wizard) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(w.Steps) {
		return len(w.Steps) - 1
	}
	return i
}
