// Package cli provides command-line interface functionality for Display
// Panel. It prints the current state and applies settings from the
// terminal without starting the interactive panel.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yllada/display-panel/common"
	"github.com/yllada/display-panel/display"
	"github.com/yllada/display-panel/history"
)

// Controller is the part of display.Controller the CLI drives.
type Controller interface {
	Output() string
	Resolutions() display.OptionSet[display.DisplayMode]
	Scales() display.OptionSet[display.ScaleOption]
	SelectedModeIndex() (int, bool)
	SelectedScaleIndex() (int, bool)
	Refresh(ctx context.Context) (display.ProbedState, error)
	Apply(ctx context.Context, modeIndex, scaleIndex int) (display.ApplyResult, error)
	ResetToDefault(ctx context.Context) (display.ApplyResult, error)
}

// HistoryReader reads the apply journal.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// CLI represents the command-line interface.
type CLI struct {
	controller Controller
	history    HistoryReader

	out            io.Writer
	in             io.Reader
	confirmTimeout time.Duration
}

// New creates a new CLI instance. history may be nil when the journal is
// disabled.
func New(controller Controller, history HistoryReader) *CLI {
	return &CLI{
		controller:     controller,
		history:        history,
		out:            os.Stdout,
		in:             os.Stdin,
		confirmTimeout: common.ConfirmTimeout,
	}
}

// Status probes the output and shows the current settings.
func (c *CLI) Status(ctx context.Context) error {
	state, err := c.controller.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to read display settings: %w", err)
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPUT\tRESOLUTION\tSCALE")
	fmt.Fprintln(w, "------\t----------\t-----")

	mode := "-"
	if state.Mode != nil {
		mode = state.Mode.String()
		if i, ok := c.controller.SelectedModeIndex(); ok {
			mode += fmt.Sprintf(" [%d]", i)
		} else {
			mode += " (unsupported)"
		}
	}
	scale := "-"
	if state.Scale != nil {
		scale = state.Scale.String()
		if i, ok := c.controller.SelectedScaleIndex(); ok {
			scale += fmt.Sprintf(" [%d]", i)
		} else {
			scale += " (unsupported)"
		}
	}

	fmt.Fprintf(w, "%s\t%s\t%s\n", state.Output, mode, scale)
	return w.Flush()
}

// ListOptions lists the supported resolutions and scales with their
// indices. The current selection is marked with an asterisk.
func (c *CLI) ListOptions() error {
	modeIndex, _ := c.controller.SelectedModeIndex()
	scaleIndex, _ := c.controller.SelectedScaleIndex()

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tRESOLUTION\tCURRENT")
	fmt.Fprintln(w, "-----\t----------\t-------")
	for i, mode := range c.controller.Resolutions().Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i, mode, marker(i == modeIndex))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "INDEX\tSCALE\tCURRENT")
	fmt.Fprintln(w, "-----\t-----\t-------")
	for i, scale := range c.controller.Scales().Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i, scale, marker(i == scaleIndex))
	}
	return w.Flush()
}

// Apply applies a resolution and a scale, each given as a value or an
// index. An empty argument keeps the current selection, or the default
// when nothing is selected. Changed settings are reverted unless the user
// keeps them within the confirmation timeout; keep skips the question.
func (c *CLI) Apply(ctx context.Context, modeArg, scaleArg string, keep bool) error {
	modeIndex, err := c.modeIndex(modeArg)
	if err != nil {
		return err
	}
	scaleIndex, err := c.scaleIndex(scaleArg)
	if err != nil {
		return err
	}

	result, err := c.controller.Apply(ctx, modeIndex, scaleIndex)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case display.OutcomeError:
		fmt.Fprintf(c.out, "✗ Display settings not applied on %s\n", result.Output)
		return fmt.Errorf("%w: %w", common.ErrApplyFailed, result.Err())
	case display.OutcomeDefaultRestored:
		fmt.Fprintf(c.out, "✓ Default settings applied: %s at %s\n", result.Mode, result.Scale)
		return nil
	}

	fmt.Fprintf(c.out, "✓ Applied %s at %s on %s\n", result.Mode, result.Scale, result.Output)
	if keep || c.confirm(ctx) {
		fmt.Fprintln(c.out, "Settings kept.")
		return nil
	}
	return c.revert(ctx)
}

// Reset restores the default resolution and scale.
func (c *CLI) Reset(ctx context.Context) error {
	result, err := c.controller.ResetToDefault(ctx)
	if err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		fmt.Fprintf(c.out, "Warning: defaults only partly restored: %v\n", err)
		return fmt.Errorf("%w: %w", common.ErrApplyFailed, err)
	}
	fmt.Fprintf(c.out, "✓ Default settings restored: %s at %s\n", result.Mode, result.Scale)
	return nil
}

// History shows the last limit journal entries, newest first.
func (c *CLI) History(ctx context.Context, limit int) error {
	if c.history == nil {
		fmt.Fprintln(c.out, "History is disabled.")
		return nil
	}

	entries, err := c.history.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No display changes recorded.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tACTION\tRESOLUTION\tSCALE\tOUTCOME")
	fmt.Fprintln(w, "--\t----\t------\t----------\t-----\t-------")
	for _, e := range entries {
		// Truncate ID for display
		shortID := e.ID.String()[:8]
		outcome := e.Outcome
		if e.Failed() {
			outcome += ": " + strings.TrimSpace(e.ModeError+" "+e.ScaleError)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID, e.Time.Local().Format("2006-01-02 15:04:05"), e.Action, e.Mode, e.Scale, outcome)
	}
	return w.Flush()
}

// revert restores defaults even when ctx was cancelled by an interrupt
// during the prompt.
func (c *CLI) revert(ctx context.Context) error {
	fmt.Fprintln(c.out, "Restoring default settings...")
	restoreCtx, cancel := common.DetachedContext(ctx)
	defer cancel()
	return c.Reset(restoreCtx)
}

// confirm asks whether to keep the applied settings. No answer within the
// timeout, end of input or anything but yes means no.
func (c *CLI) confirm(ctx context.Context) bool {
	fmt.Fprintf(c.out, "Keep these settings? [y/N] (reverting in %s) ", formatDuration(c.confirmTimeout))

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(c.in).ReadString('\n')
		answer <- line
	}()

	timer := time.NewTimer(c.confirmTimeout)
	defer timer.Stop()

	select {
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		fmt.Fprintln(c.out)
		return false
	case <-timer.C:
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "No answer.")
		return false
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return false
	}
}

func (c *CLI) modeIndex(arg string) (int, error) {
	if arg == "" {
		return currentOrDefault(c.controller.SelectedModeIndex()), nil
	}
	if i, err := strconv.Atoi(arg); err == nil {
		return i, nil
	}

	mode, err := display.ParseDisplayMode(arg)
	if err != nil {
		return 0, err
	}
	i, ok := c.controller.Resolutions().IndexOf(mode)
	if !ok {
		return 0, fmt.Errorf("resolution %s: %w", mode, common.ErrMatchNotFound)
	}
	return i, nil
}

func (c *CLI) scaleIndex(arg string) (int, error) {
	if arg == "" {
		return currentOrDefault(c.controller.SelectedScaleIndex()), nil
	}
	if !strings.HasSuffix(arg, "%") {
		i, err := strconv.Atoi(arg)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", common.ErrInvalidScale, arg)
		}
		return i, nil
	}

	scale := display.ScaleOption(strings.TrimSpace(arg))
	i, ok := c.controller.Scales().IndexOf(scale)
	if !ok {
		return 0, fmt.Errorf("scale %s: %w", scale, common.ErrMatchNotFound)
	}
	return i, nil
}

func currentOrDefault(i int, ok bool) int {
	if !ok {
		return 0
	}
	return i
}

func marker(selected bool) string {
	if selected {
		return "*"
	}
	return ""
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`Display Panel - Command Line Interface

Usage:
  display-panel [OPTIONS]

Options:
  --version           Show version and exit
  --verbose           Enable verbose logging
  --config PATH       Use another configuration file
  --status            Show the current resolution and scale
  --list              List supported resolutions and scales
  --mode MODE         Apply a resolution (WxH or index)
  --scale SCALE       Apply a scale (N% or index)
  --yes               Keep changed settings without asking
  --reset             Restore the default resolution and scale
  --history [N]       Show the last N display changes (default 10)
  --help              Show this help message

Examples:
  display-panel --list
  display-panel --mode 1936x1203 --scale 125%
  display-panel --mode 2 --yes
  display-panel --reset

Notes:
  - Changed settings are reverted after 15s unless you keep them
  - Run without options on a terminal to open the interactive panel`)
}
