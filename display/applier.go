package display

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yllada/display-panel/common"
)

// Applier changes the live settings of an output.
// A nil error means the tool exited with status 0.
type Applier interface {
	ApplyMode(ctx context.Context, output string, mode DisplayMode, custom bool) error
	ApplyScale(ctx context.Context, output string, index int) error
}

// CommandApplier runs the display tool's mutation forms:
//
//	--output <output> --mode <WxH>
//	--output <output> --custom-mode <WxH@rate>
//	--output <output> --scale <multiplier>
type CommandApplier struct {
	runner      CommandRunner
	refreshRate int
}

// NewCommandApplier creates an applier. refreshRate is appended to every
// custom mode; zero selects common.DefaultRefreshRate.
func NewCommandApplier(runner CommandRunner, refreshRate int) *CommandApplier {
	if refreshRate <= 0 {
		refreshRate = common.DefaultRefreshRate
	}
	return &CommandApplier{
		runner:      runner,
		refreshRate: refreshRate,
	}
}

// ApplyMode sets the output mode. custom selects the --custom-mode form
// with the fixed refresh rate; otherwise the preset --mode form is used.
func (a *CommandApplier) ApplyMode(ctx context.Context, output string, mode DisplayMode, custom bool) error {
	args := []string{"--output", output}
	if custom {
		args = append(args, "--custom-mode", mode.WithRefresh(a.refreshRate))
	} else {
		args = append(args, "--mode", string(mode))
	}

	stdout, err := a.runner.Run(ctx, args...)
	if err != nil {
		common.LogError("Failed to set mode %s on %s: %v", mode, output, err)
		return fmt.Errorf("%w: %w", common.ErrApplyFailed, err)
	}
	common.LogDebug("Mode output: %s", stdout)
	return nil
}

// ApplyScale sets the output scale for a scale index, see ScaleMultiplier.
func (a *CommandApplier) ApplyScale(ctx context.Context, output string, index int) error {
	factor := strconv.FormatFloat(ScaleMultiplier(index), 'f', -1, 64)

	stdout, err := a.runner.Run(ctx, "--output", output, "--scale", factor)
	if err != nil {
		common.LogError("Failed to set scale %s on %s: %v", factor, output, err)
		return fmt.Errorf("%w: %w", common.ErrApplyFailed, err)
	}
	common.LogDebug("Scale output: %s", stdout)
	return nil
}
