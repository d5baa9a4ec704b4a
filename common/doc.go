// Package common provides shared constants, errors, logging and utilities
// used throughout the Display Panel application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: output device, tool path, search path and timeouts
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Logger: Leveled logging to stdout and a rotated log file
//   - Utils: Config and data directory helpers, detached restore context
//
// # Usage
//
//	common.LogInfo("Applying %s on %s", mode, common.DefaultOutput)
//
//	if errors.Is(err, common.ErrNonZeroExit) {
//	    // The tool ran and rejected the request
//	}
package common
