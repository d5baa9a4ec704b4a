// Package tui is the interactive terminal panel: two option lists, apply
// and reset, and the countdown that restores defaults unless changed
// settings are kept.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/display-panel/common"
	"github.com/yllada/display-panel/display"
)

// Controller is the part of display.Controller the panel drives.
type Controller interface {
	Output() string
	Resolutions() display.OptionSet[display.DisplayMode]
	Scales() display.OptionSet[display.ScaleOption]
	SelectedModeIndex() (int, bool)
	SelectedScaleIndex() (int, bool)
	Apply(ctx context.Context, modeIndex, scaleIndex int) (display.ApplyResult, error)
	ResetToDefault(ctx context.Context) (display.ApplyResult, error)
}

type pane int

const (
	paneResolutions pane = iota
	paneScales
)

type model struct {
	ctx        context.Context
	controller Controller
	keys       keyMap
	help       help.Model
	spinner    spinner.Model

	focus       pane
	modeCursor  int
	scaleCursor int

	busy       bool
	confirming bool
	remaining  time.Duration
	timeout    time.Duration
	// generation invalidates countdown ticks of an earlier confirmation.
	generation int

	// quitting defers the quit until an in-flight operation returns.
	quitting bool
	// pending is shared by every copy of the model and outlives the program.
	pending *pendingRevert

	status string
	err    error
}

// pendingRevert is set while applied settings are not confirmed, from the
// start of an apply until the user keeps them or defaults are restored.
type pendingRevert struct {
	mu     sync.Mutex
	active bool
}

func (p *pendingRevert) set(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = active
}

func (p *pendingRevert) isActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

type resultMsg struct {
	action display.Action
	result display.ApplyResult
	err    error
}

type countdownMsg struct {
	generation int
}

func newModel(ctx context.Context, controller Controller) model {
	m := model{
		ctx:        ctx,
		controller: controller,
		keys:       defaultKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(cursorStyle)),
		timeout:    common.ConfirmTimeout,
		pending:    &pendingRevert{},
	}
	m.syncCursors()
	return m
}

// syncCursors moves both cursors to the controller's selection.
func (m *model) syncCursors() {
	if i, ok := m.controller.SelectedModeIndex(); ok {
		m.modeCursor = i
	}
	if i, ok := m.controller.SelectedScaleIndex(); ok {
		m.scaleCursor = i
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		return m.handleResult(msg)

	case countdownMsg:
		if !m.confirming || msg.generation != m.generation {
			return m, nil
		}
		m.remaining -= time.Second
		if m.remaining <= 0 {
			m.confirming = false
			m.status = "No answer, restoring defaults"
			return m.startReset()
		}
		return m, m.countdown()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		switch {
		case m.confirming:
			// Unconfirmed settings do not outlive the panel.
			m.confirming = false
			m.busy = true
			return m, m.restoreAndQuit()
		case m.busy:
			m.quitting = true
			m.status = "Quitting..."
			return m, nil
		}
		return m, tea.Quit
	}

	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Keep):
			m.confirming = false
			m.pending.set(false)
			m.status = "Settings kept"
		case key.Matches(msg, m.keys.Revert):
			m.confirming = false
			return m.startReset()
		}
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Switch):
		if m.focus == paneResolutions {
			m.focus = paneScales
		} else {
			m.focus = paneResolutions
		}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Apply):
		return m.startApply()
	case key.Matches(msg, m.keys.Reset):
		return m.startReset()
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	if m.focus == paneResolutions {
		m.modeCursor = clamp(m.modeCursor+delta, m.controller.Resolutions().Len())
	} else {
		m.scaleCursor = clamp(m.scaleCursor+delta, m.controller.Scales().Len())
	}
}

func (m model) startApply() (tea.Model, tea.Cmd) {
	m.pending.set(true)
	m.busy = true
	m.err = nil
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, m.apply(m.modeCursor, m.scaleCursor))
}

func (m model) startReset() (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.reset())
}

func (m model) apply(modeIndex, scaleIndex int) tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		result, err := controller.Apply(ctx, modeIndex, scaleIndex)
		return resultMsg{action: display.ActionApply, result: result, err: err}
	}
}

// reset restores defaults under a detached context so a cancelled panel
// context cannot stop it.
func (m model) reset() tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		restoreCtx, cancel := common.DetachedContext(ctx)
		defer cancel()
		result, err := controller.ResetToDefault(restoreCtx)
		return resultMsg{action: display.ActionReset, result: result, err: err}
	}
}

func (m model) restoreAndQuit() tea.Cmd {
	ctx, controller, pending := m.ctx, m.controller, m.pending
	return func() tea.Msg {
		if err := restoreDefaults(ctx, controller, pending); err != nil {
			common.LogError("Failed to restore defaults on quit: %v", err)
		}
		return tea.Quit()
	}
}

// restoreDefaults resets the output when applied settings were never
// confirmed. It ignores the cancellation of ctx and waits for an apply
// still in flight to finish.
func restoreDefaults(ctx context.Context, controller Controller, pending *pendingRevert) error {
	if !pending.isActive() {
		return nil
	}

	restoreCtx, cancel := common.DetachedContext(ctx)
	defer cancel()

	for {
		result, err := controller.ResetToDefault(restoreCtx)
		if errors.Is(err, common.ErrBusy) {
			select {
			case <-restoreCtx.Done():
				return restoreCtx.Err()
			case <-time.After(50 * time.Millisecond):
				continue
			}
		}
		if err != nil {
			return err
		}
		pending.set(false)
		common.LogInfo("Unconfirmed display settings reverted [%s]", result.ID)
		return result.Err()
	}
}

func (m model) countdown() tea.Cmd {
	generation := m.generation
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{generation: generation}
	})
}

func (m model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.syncCursors()

	result := msg.result
	changed := msg.action == display.ActionApply && msg.err == nil && result.Outcome == display.OutcomeChanged
	switch {
	case msg.action == display.ActionApply:
		m.pending.set(changed)
	case msg.err == nil:
		m.pending.set(false)
	}

	if m.quitting {
		if changed {
			m.busy = true
			return m, m.restoreAndQuit()
		}
		return m, tea.Quit
	}

	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	if msg.action == display.ActionReset {
		if err := result.Err(); err != nil {
			m.err = fmt.Errorf("defaults only partly restored: %w", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Defaults restored: %s at %s", result.Mode, result.Scale)
		return m, nil
	}

	switch result.Outcome {
	case display.OutcomeError:
		m.err = result.Err()
		return m, nil
	case display.OutcomeDefaultRestored:
		m.status = fmt.Sprintf("Default settings applied: %s at %s", result.Mode, result.Scale)
		return m, nil
	}

	m.status = fmt.Sprintf("Applied %s at %s", result.Mode, result.Scale)
	m.confirming = true
	m.remaining = m.timeout
	m.generation++
	return m, m.countdown()
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(common.AppName + " · " + m.controller.Output()))
	sb.WriteString("\n\n")

	modeIndex, modeOK := m.controller.SelectedModeIndex()
	scaleIndex, scaleOK := m.controller.SelectedScaleIndex()

	resolutions := renderList("Resolution", m.controller.Resolutions().Items(), m.modeCursor, modeIndex, modeOK)
	scales := renderList("Scale", m.controller.Scales().Items(), m.scaleCursor, scaleIndex, scaleOK)

	left, right := paneStyle, paneStyle
	if m.focus == paneResolutions {
		left = focusedPaneStyle
	} else {
		right = focusedPaneStyle
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left.Render(resolutions), " ", right.Render(scales)))
	sb.WriteString("\n\n")

	switch {
	case m.busy:
		sb.WriteString(m.spinner.View() + " Applying...")
	case m.confirming:
		sb.WriteString(confirmStyle.Render(fmt.Sprintf("Keep these settings? Reverting in %ds", int(m.remaining.Seconds()))))
	case m.err != nil:
		sb.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.status != "":
		sb.WriteString(statusStyle.Render(m.status))
	}
	sb.WriteString("\n\n")

	if m.confirming {
		sb.WriteString(m.help.ShortHelpView(m.keys.confirmHelp()))
	} else {
		sb.WriteString(m.help.View(m.keys))
	}
	return sb.String()
}

func renderList[T fmt.Stringer](title string, items []T, cursor, selected int, selectedOK bool) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	for i, item := range items {
		sb.WriteString("\n")
		line := "  " + item.String()
		if i == cursor {
			line = cursorStyle.Render("> " + item.String())
		}
		if selectedOK && i == selected {
			line += currentStyle.Render(" ●")
		}
		sb.WriteString(line)
	}
	if len(items) == 0 {
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("  none"))
	}
	return sb.String()
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// Run starts the panel and blocks until the user quits or ctx is
// cancelled. Settings applied but not kept are reverted before it returns.
func Run(ctx context.Context, controller Controller) error {
	m := newModel(ctx, controller)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	if rerr := restoreDefaults(ctx, controller, m.pending); rerr != nil {
		common.LogError("Failed to restore defaults: %v", rerr)
	}
	return err
}
