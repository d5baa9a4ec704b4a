// Package main provides the entry point for Display Panel, a resolution
// and scale switcher for the built-in panel of a Wayland (wlroots) session.
// It drives wlr-randr for a single output, asks the user to keep changed
// settings and restores the defaults otherwise.
//
// Usage:
//
//	display-panel [options]
//
// Environment:
//
//	The wlr-randr tool must be installed in the configured search path
//	(default /run/current-system/sw/bin) and WAYLAND_DISPLAY must be set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/godbus/dbus/v5"
	"golang.org/x/term"

	"github.com/yllada/display-panel/cli"
	"github.com/yllada/display-panel/common"
	"github.com/yllada/display-panel/config"
	"github.com/yllada/display-panel/desktop"
	"github.com/yllada/display-panel/display"
	"github.com/yllada/display-panel/history"
	"github.com/yllada/display-panel/tui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	configPath  = flag.String("config", "", "Path to the configuration file")

	// CLI flags
	showStatus  = flag.Bool("status", false, "Show the current resolution and scale")
	listOptions = flag.Bool("list", false, "List supported resolutions and scales")
	modeArg     = flag.String("mode", "", "Apply a resolution (WxH or index)")
	scaleArg    = flag.String("scale", "", "Apply a scale (N% or index)")
	keep        = flag.Bool("yes", false, "Keep changed settings without asking")
	reset       = flag.Bool("reset", false, "Restore the default resolution and scale")
	showHistory = flag.Bool("history", false, "Show recent display changes")
)

const defaultHistoryLimit = 10

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	// Handle help flag
	if *showHelp {
		cli.PrintHelp()
		return 0
	}

	// Handle version flag
	if *showVersion {
		fmt.Printf("Display Panel v%s\n", appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		return 0
	}

	cliMode := *showStatus || *listOptions || *modeArg != "" || *scaleArg != "" || *reset || *showHistory
	tuiMode := !cliMode && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))

	// Initialize logger with file output
	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:          logLevel,
		EnableFile:     true,
		DisableConsole: tuiMode,
		MaxSizeMB:      5,
		MaxBackups:     5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals (SIGINT, SIGTERM)
	setupSignalHandler(cancel)

	cfg, err := loadConfig()
	if err != nil {
		common.LogError("Failed to load configuration: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	app := newApp(ctx, cfg)
	defer app.close()

	if err := app.controller.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if tuiMode {
		common.LogInfo("Starting %s v%s on %s", common.AppName, appVersion, cfg.Output)
		if err := tui.Run(ctx, app.controller); err != nil {
			common.LogError("Panel exited: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runCLI(ctx, app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app holds the wired components and the resources to release on exit.
type app struct {
	controller *display.Controller
	journal    *history.Journal
	bus        *dbus.Conn
}

// newApp wires the runner, registry, controller and the optional journal,
// notifications and taskbar reload. Optional parts that fail to start are
// logged and left out.
func newApp(ctx context.Context, cfg *config.Config) *app {
	runner := display.NewRunner(cfg.Tool, cfg.SearchPath, cfg.CommandTimeout)
	prober := display.NewCommandProber(runner)

	var registry display.Registry = display.NewStaticRegistry(cfg.DisplayModes())
	if cfg.ResolutionSource == common.ResolutionSourceProbe {
		registry = display.NewProbedRegistry(prober, cfg.Output, registry)
	}

	a := &app{
		controller: display.NewController(cfg.Output, registry, prober, display.NewCommandApplier(runner, cfg.RefreshRate)),
	}

	if cfg.History {
		if journal, err := openJournal(); err != nil {
			common.LogWarn("History disabled: %v", err)
		} else {
			a.journal = journal
			a.controller.SetJournal(journal)
		}
	}

	if !cfg.Notifications && cfg.TaskbarUnit == "" {
		return a
	}

	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		common.LogWarn("Session bus unavailable, notifications and taskbar reload disabled: %v", err)
		return a
	}
	a.bus = bus

	var onChanged, onRestored, onError []func(display.ApplyResult)
	if cfg.Notifications {
		notifier := desktop.NewNotifier(bus)
		onChanged = append(onChanged, notifier.NotifyChanged)
		onRestored = append(onRestored, notifier.NotifyRestored)
		onError = append(onError, notifier.NotifyError)
	}
	if cfg.TaskbarUnit != "" {
		reload := desktop.NewUnitReloader(bus, cfg.TaskbarUnit).ReloadOnScale(ctx)
		onChanged = append(onChanged, reload)
		onRestored = append(onRestored, reload)
	}

	a.controller.SetOnChanged(chain(onChanged))
	a.controller.SetOnRestored(chain(onRestored))
	a.controller.SetOnError(chain(onError))
	return a
}

func (a *app) close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			common.LogWarn("Failed to close history: %v", err)
		}
	}
	if a.bus != nil {
		a.bus.Close()
	}
}

// historyReader returns the journal, or nil when history is disabled.
func (a *app) historyReader() cli.HistoryReader {
	if a.journal == nil {
		return nil
	}
	return a.journal
}

// chain runs every callback in order; nil when there are none.
func chain(callbacks []func(display.ApplyResult)) func(display.ApplyResult) {
	if len(callbacks) == 0 {
		return nil
	}
	return func(result display.ApplyResult) {
		for _, cb := range callbacks {
			cb(result)
		}
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}

func openJournal() (*history.Journal, error) {
	dataDir, err := common.GetDataDir()
	if err != nil {
		return nil, err
	}
	return history.Open(filepath.Join(dataDir, common.HistoryFileName))
}

// runCLI handles command-line interface operations.
// It accepts a context for graceful shutdown support.
func runCLI(ctx context.Context, a *app) error {
	cliApp := cli.New(a.controller, a.historyReader())

	// Check if context is already cancelled before proceeding
	select {
	case <-ctx.Done():
		common.LogInfo("Operation cancelled before execution")
		return ctx.Err()
	default:
	}

	switch {
	case *reset:
		return cliApp.Reset(ctx)
	case *modeArg != "" || *scaleArg != "":
		return cliApp.Apply(ctx, *modeArg, *scaleArg, *keep)
	case *listOptions:
		return cliApp.ListOptions()
	case *showHistory:
		limit := defaultHistoryLimit
		if arg := flag.Arg(0); arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid history limit: %q", arg)
			}
			limit = n
		}
		return cliApp.History(ctx, limit)
	default:
		return cliApp.Status(ctx)
	}
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}
