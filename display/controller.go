package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yllada/display-panel/common"
)

// ControllerState is the lifecycle state of a Controller.
type ControllerState int

const (
	// StateUninitialized means Init has not completed yet.
	StateUninitialized ControllerState = iota
	// StateReady means the controller accepts apply and reset requests.
	StateReady
	// StateApplying means a probe, apply or reset is in flight.
	StateApplying
)

// String returns a human-readable representation of the state.
func (s ControllerState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateApplying:
		return "Applying"
	default:
		return "Unknown"
	}
}

// NoSelection marks a selection that could not be matched.
const NoSelection = -1

// Journal receives every apply and reset result.
type Journal interface {
	Record(ctx context.Context, result ApplyResult) error
}

// Controller orchestrates the registry, the prober and the applier for a
// single output device.
type Controller struct {
	mu       sync.Mutex
	output   string
	registry Registry
	prober   Prober
	applier  Applier
	journal  Journal

	state       ControllerState
	resolutions OptionSet[DisplayMode]
	scales      OptionSet[ScaleOption]
	modeIndex   int
	scaleIndex  int

	onChanged  func(ApplyResult)
	onRestored func(ApplyResult)
	onError    func(ApplyResult)
}

// NewController creates a controller for output.
func NewController(output string, registry Registry, prober Prober, applier Applier) *Controller {
	return &Controller{
		output:     output,
		registry:   registry,
		prober:     prober,
		applier:    applier,
		state:      StateUninitialized,
		modeIndex:  NoSelection,
		scaleIndex: NoSelection,
	}
}

// SetJournal sets where results are recorded. Nil disables recording.
func (c *Controller) SetJournal(journal Journal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.journal = journal
}

// SetOnChanged sets the callback for applied non-default settings that
// need confirmation.
func (c *Controller) SetOnChanged(callback func(ApplyResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChanged = callback
}

// SetOnRestored sets the callback for a reset to defaults.
func (c *Controller) SetOnRestored(callback func(ApplyResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRestored = callback
}

// SetOnError sets the callback for a failed apply.
func (c *Controller) SetOnError(callback func(ApplyResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// Output returns the output device the controller targets.
func (c *Controller) Output() string {
	return c.output
}

// State returns the current lifecycle state.
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resolutions returns the supported resolution set.
func (c *Controller) Resolutions() OptionSet[DisplayMode] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolutions
}

// Scales returns the supported scale set.
func (c *Controller) Scales() OptionSet[ScaleOption] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scales
}

// SelectedModeIndex returns the selected resolution index.
func (c *Controller) SelectedModeIndex() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modeIndex, c.modeIndex != NoSelection
}

// SelectedScaleIndex returns the selected scale index.
func (c *Controller) SelectedScaleIndex() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scaleIndex, c.scaleIndex != NoSelection
}

// Init populates both option sets and selects the indices matching the
// probed state. A failed probe is logged and leaves both selections unset;
// Init still moves the controller to Ready.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateApplying {
		c.mu.Unlock()
		return common.ErrBusy
	}
	c.state = StateApplying
	c.mu.Unlock()

	resolutions := c.registry.PopulateResolutions(ctx)
	scales := c.registry.PopulateScales(ctx)
	common.LogDebug("Registry: %d resolutions, %d scales", resolutions.Len(), scales.Len())

	c.mu.Lock()
	c.resolutions = resolutions
	c.scales = scales
	c.mu.Unlock()

	if _, err := c.refresh(ctx); err != nil {
		common.LogError("Failed to read current display settings: %v", err)
	}

	c.mu.Lock()
	c.state = StateReady
	c.mu.Unlock()
	return nil
}

// Refresh re-probes the output and re-selects the matching indices.
// Values that are not in the option sets leave the selection unset.
func (c *Controller) Refresh(ctx context.Context) (ProbedState, error) {
	if err := c.begin(); err != nil {
		return ProbedState{Output: c.output}, err
	}
	defer c.end()

	return c.refresh(ctx)
}

func (c *Controller) refresh(ctx context.Context) (ProbedState, error) {
	state, err := ProbeState(ctx, c.prober, c.output)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.modeIndex = NoSelection
	c.scaleIndex = NoSelection
	if err != nil {
		return state, err
	}

	if state.Mode != nil {
		if i, ok := c.resolutions.IndexOf(*state.Mode); ok {
			common.LogDebug("Found %s at index: %d", *state.Mode, i)
			c.modeIndex = i
		} else {
			common.LogWarn("Resolution %s: %v", *state.Mode, common.ErrMatchNotFound)
		}
	}
	if state.Scale != nil {
		if i, ok := c.scales.IndexOf(*state.Scale); ok {
			common.LogDebug("Found %s at index: %d", *state.Scale, i)
			c.scaleIndex = i
		} else {
			common.LogWarn("Scale %s: %v", *state.Scale, common.ErrMatchNotFound)
		}
	}
	return state, nil
}

// Apply applies the selected mode and scale indices and classifies the
// outcome. Both commands run even when the first one fails; a failure
// leaves the other half applied. The returned error is only set when
// nothing ran: the controller is not ready, busy, or an index is invalid.
func (c *Controller) Apply(ctx context.Context, modeIndex, scaleIndex int) (ApplyResult, error) {
	if err := c.begin(); err != nil {
		return ApplyResult{}, err
	}

	mode, scale, err := c.lookup(modeIndex, scaleIndex)
	if err != nil {
		c.end()
		return ApplyResult{}, err
	}

	result := c.run(ctx, ActionApply, modeIndex, scaleIndex, mode, scale)
	c.end()

	switch result.Outcome {
	case OutcomeError:
		common.LogError("Display settings not applied [%s]: %v", result.ID, result.Err())
		c.emit(signalError, result)
	case OutcomeChanged:
		common.LogInfo("Display settings changed to %s at %s [%s]", mode, scale, result.ID)
		c.emit(signalChanged, result)
	default:
		common.LogInfo("Default display settings applied [%s]", result.ID)
	}
	return result, nil
}

// ResetToDefault selects index 0 for both sets, applies it and fires the
// restored callback whatever the two commands returned. Failures are still
// logged and carried in the result.
func (c *Controller) ResetToDefault(ctx context.Context) (ApplyResult, error) {
	if err := c.begin(); err != nil {
		return ApplyResult{}, err
	}

	var result ApplyResult
	mode, scale, err := c.lookup(0, 0)
	if err != nil {
		// No default to restore; the selection is left alone.
		result = c.newResult(ActionReset, 0, 0, "", "")
		result.ModeErr = err
		result.Outcome = Classify(0, 0, false, true)
		c.record(ctx, result)
	} else {
		result = c.run(ctx, ActionReset, 0, 0, mode, scale)
	}
	c.end()

	if err := result.Err(); err != nil {
		common.LogWarn("Reset to defaults incomplete [%s]: %v", result.ID, err)
	} else {
		common.LogInfo("Display settings reset to defaults [%s]", result.ID)
	}
	c.emit(signalRestored, result)
	return result, nil
}

// run executes both steps, updates the selection and records the result.
func (c *Controller) run(ctx context.Context, action Action, modeIndex, scaleIndex int, mode DisplayMode, scale ScaleOption) ApplyResult {
	result := c.newResult(action, modeIndex, scaleIndex, mode, scale)

	c.mu.Lock()
	c.modeIndex = modeIndex
	c.scaleIndex = scaleIndex
	c.mu.Unlock()

	result.ModeErr = c.applier.ApplyMode(ctx, c.output, mode, modeIndex > 0)
	result.ScaleErr = c.applier.ApplyScale(ctx, c.output, scaleIndex)
	result.Outcome = Classify(modeIndex, scaleIndex, result.ModeErr == nil, result.ScaleErr == nil)

	c.record(ctx, result)
	return result
}

func (c *Controller) newResult(action Action, modeIndex, scaleIndex int, mode DisplayMode, scale ScaleOption) ApplyResult {
	return ApplyResult{
		ID:         uuid.New(),
		Action:     action,
		Output:     c.output,
		Time:       time.Now(),
		ModeIndex:  modeIndex,
		ScaleIndex: scaleIndex,
		Mode:       mode,
		Scale:      scale,
	}
}

// record appends result to the journal, if one is set.
func (c *Controller) record(ctx context.Context, result ApplyResult) {
	c.mu.Lock()
	journal := c.journal
	c.mu.Unlock()

	if journal == nil {
		return
	}
	if err := journal.Record(ctx, result); err != nil {
		common.LogWarn("Failed to record %s [%s]: %v", result.Action, result.ID, err)
	}
}

// lookup validates both indices against the option sets.
func (c *Controller) lookup(modeIndex, scaleIndex int) (DisplayMode, ScaleOption, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mode, ok := c.resolutions.At(modeIndex)
	if !ok {
		return "", "", fmt.Errorf("%w: resolution %d of %d", common.ErrInvalidIndex, modeIndex, c.resolutions.Len())
	}
	scale, ok := c.scales.At(scaleIndex)
	if !ok {
		return "", "", fmt.Errorf("%w: scale %d of %d", common.ErrInvalidIndex, scaleIndex, c.scales.Len())
	}
	return mode, scale, nil
}

// begin moves Ready to Applying.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateUninitialized:
		return common.ErrNotInitialized
	case StateApplying:
		return common.ErrBusy
	}
	c.state = StateApplying
	return nil
}

// end moves Applying back to Ready.
func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReady
}

type signal int

const (
	signalChanged signal = iota
	signalRestored
	signalError
)

// emit runs the callback for s outside the lock, after the controller is
// back in Ready, so a callback may start another operation.
func (c *Controller) emit(s signal, result ApplyResult) {
	c.mu.Lock()
	var cb func(ApplyResult)
	switch s {
	case signalChanged:
		cb = c.onChanged
	case signalRestored:
		cb = c.onRestored
	case signalError:
		cb = c.onError
	}
	c.mu.Unlock()

	if cb != nil {
		cb(result)
	}
}
