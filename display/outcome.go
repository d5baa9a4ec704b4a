package display

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ApplyOutcome classifies a user-initiated apply.
type ApplyOutcome int

const (
	// OutcomeError means the mode or the scale command failed.
	OutcomeError ApplyOutcome = iota
	// OutcomeDefaultRestored means both defaults were applied; no
	// confirmation is needed.
	OutcomeDefaultRestored
	// OutcomeChanged means a non-default setting was applied and the user
	// has to confirm it.
	OutcomeChanged
)

// String returns a human-readable representation of the outcome.
func (o ApplyOutcome) String() string {
	switch o {
	case OutcomeError:
		return "Error"
	case OutcomeDefaultRestored:
		return "DefaultRestored"
	case OutcomeChanged:
		return "Changed"
	default:
		return "Unknown"
	}
}

// Classify decides the outcome of an apply from the two selected indices
// and whether each command succeeded. Nothing else feeds the decision.
func Classify(modeIndex, scaleIndex int, modeOK, scaleOK bool) ApplyOutcome {
	if !modeOK || !scaleOK {
		return OutcomeError
	}
	if modeIndex == 0 && scaleIndex == 0 {
		return OutcomeDefaultRestored
	}
	return OutcomeChanged
}

// Action names what produced an ApplyResult.
type Action string

const (
	ActionApply Action = "apply"
	ActionReset Action = "reset"
)

// ApplyResult records one apply or reset.
type ApplyResult struct {
	// ID correlates log lines and journal rows of one operation.
	ID         uuid.UUID
	Action     Action
	Output     string
	Time       time.Time
	ModeIndex  int
	ScaleIndex int
	Mode       DisplayMode
	Scale      ScaleOption
	// ModeErr and ScaleErr hold the reason each step failed, if it did.
	ModeErr  error
	ScaleErr error
	Outcome  ApplyOutcome
}

// Err joins the step errors; nil when both steps succeeded.
func (r ApplyResult) Err() error {
	return errors.Join(r.ModeErr, r.ScaleErr)
}
