package display

import (
	"context"

	"github.com/yllada/display-panel/common"
)

// DefaultResolutions is the static resolution list of the panel.
// Index 0 is the native mode of the built-in panel.
var DefaultResolutions = []DisplayMode{"1920x1200", "1936x1203", "1952x1217", "2104x1236"}

// Registry produces the supported option sets. Implementations may read a
// fixed list or ask the hardware; the controller does not care which.
type Registry interface {
	PopulateResolutions(ctx context.Context) OptionSet[DisplayMode]
	PopulateScales(ctx context.Context) OptionSet[ScaleOption]
}

// StaticRegistry serves fixed lists.
type StaticRegistry struct {
	resolutions []DisplayMode
	scales      []ScaleOption
}

// NewStaticRegistry creates a registry with the given resolutions and the
// default scales. A nil or empty list selects DefaultResolutions.
func NewStaticRegistry(resolutions []DisplayMode) *StaticRegistry {
	if len(resolutions) == 0 {
		resolutions = DefaultResolutions
	}
	return &StaticRegistry{
		resolutions: resolutions,
		scales:      DefaultScales,
	}
}

// PopulateResolutions returns the configured resolutions.
func (r *StaticRegistry) PopulateResolutions(context.Context) OptionSet[DisplayMode] {
	return NewOptionSet(r.resolutions...)
}

// PopulateScales returns the scale options.
func (r *StaticRegistry) PopulateScales(context.Context) OptionSet[ScaleOption] {
	return NewOptionSet(r.scales...)
}

// ProbedRegistry reads the resolution list from the modes the query tool
// reports for one output, falling back to another registry when the probe
// fails or lists nothing.
type ProbedRegistry struct {
	prober   Prober
	output   string
	fallback Registry
}

// NewProbedRegistry creates a hardware-probed registry.
func NewProbedRegistry(prober Prober, output string, fallback Registry) *ProbedRegistry {
	return &ProbedRegistry{
		prober:   prober,
		output:   output,
		fallback: fallback,
	}
}

// PopulateResolutions probes the output for its mode list.
func (r *ProbedRegistry) PopulateResolutions(ctx context.Context) OptionSet[DisplayMode] {
	text, err := r.prober.Probe(ctx)
	if err != nil {
		common.LogWarn("Could not probe supported modes, using static list: %v", err)
		return r.fallback.PopulateResolutions(ctx)
	}

	modes := ExtractModes(text, r.output)
	if len(modes) == 0 {
		common.LogWarn("No modes listed for %s, using static list", r.output)
		return r.fallback.PopulateResolutions(ctx)
	}

	common.LogDebug("Probed %d modes for %s", len(modes), r.output)
	return NewOptionSet(modes...)
}

// PopulateScales delegates to the fallback registry; the tool does not
// report supported scales.
func (r *ProbedRegistry) PopulateScales(ctx context.Context) OptionSet[ScaleOption] {
	return r.fallback.PopulateScales(ctx)
}
