// Package common provides shared constants, types, and utilities
// used across the Display Panel application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "ae.tii.ghaf.displaypanel"
	// AppName is the display name of the application.
	AppName = "Display Panel"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "display-panel"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	HistoryFileName = "history.db"
	LogFileName     = "display-panel.log"
)

// Display defaults.
const (
	// DefaultOutput is the output device targeted by every command.
	DefaultOutput = "eDP-1"
	// DefaultTool is the executable used to query and change the output.
	DefaultTool = "wlr-randr"
	// DefaultSearchPath is the only PATH the tool is resolved and run with.
	DefaultSearchPath = "/run/current-system/sw/bin"
	// DefaultRefreshRate is appended to every custom mode (WxH@60).
	DefaultRefreshRate = 60
)

// Default timeouts.
const (
	// CommandTimeout bounds every external command.
	CommandTimeout = 10 * time.Second
	// ConfirmTimeout is how long the user has to keep changed settings
	// before defaults are restored.
	ConfirmTimeout = 15 * time.Second
	// RestoreTimeout bounds a reset to defaults, one mode and one scale
	// command.
	RestoreTimeout = 2 * CommandTimeout
)

// Resolution sources.
const (
	ResolutionSourceStatic = "static"
	ResolutionSourceProbe  = "probe"
)
