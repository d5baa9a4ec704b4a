// Package display implements the display configuration controller for
// Display Panel.
//
// The package discovers the active mode and scale of one output device from
// the text printed by a query tool (wlr-randr), reconciles that text with
// the list of options the panel offers, and applies selections by running
// the tool's mutation forms.
//
// # Architecture
//
//   - Registry: produces the ordered resolution and scale option sets
//   - Prober: runs the read-only query and returns its text
//   - ExtractMode / ExtractScale: pull the current values out of that text
//   - Applier: runs the mutation commands for a mode or a scale
//   - Controller: ties the above together and classifies apply outcomes
//
// # Apply Flow
//
//  1. Controller.Init populates both option sets and probes current state
//  2. The presentation layer shows the two selected indices
//  3. The user picks new indices; the presentation layer calls Apply
//  4. Apply runs the mode and scale commands and classifies the outcome
//  5. Changed fires the confirmation callback, failures fire the error one
//
// Index 0 of every option set is the default: native mode and 100% scale.
//
// # Thread Safety
//
// Controller methods are safe for concurrent use, but only one apply or
// probe runs at a time; a second Apply while one is in flight returns
// common.ErrBusy instead of queueing.
package display
