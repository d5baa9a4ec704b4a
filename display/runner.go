package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yllada/display-panel/common"
)

// CommandRunner runs the display tool with the given arguments and returns
// its standard output.
type CommandRunner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CommandError describes a failed tool invocation. It unwraps to
// common.ErrExecutionFailed or common.ErrNonZeroExit.
type CommandError struct {
	// Args is the argument list the tool was called with.
	Args []string
	// Kind is ErrExecutionFailed or ErrNonZeroExit.
	Kind error
	// ExitCode is the process exit status, -1 when it never ran to completion.
	ExitCode int
	// Stderr is the captured standard error, decoded permissively.
	Stderr string
	// Err is the underlying exec or context error.
	Err error
}

func (e *CommandError) Error() string {
	cmd := strings.TrimSpace(strings.Join(e.Args, " "))
	if cmd == "" {
		cmd = "(no arguments)"
	}
	if errors.Is(e.Kind, common.ErrNonZeroExit) {
		if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
			return fmt.Sprintf("%s: exit status %d: %s", cmd, e.ExitCode, stderr)
		}
		return fmt.Sprintf("%s: exit status %d", cmd, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v: %v", cmd, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Runner executes a fixed tool resolved inside a restricted search path.
type Runner struct {
	// Tool is the executable name or absolute path.
	Tool string
	// SearchPath is the PATH used to resolve Tool and passed to the process.
	SearchPath string
	// Timeout bounds a single invocation; zero means common.CommandTimeout.
	Timeout time.Duration
}

// NewRunner creates a runner for tool resolved within searchPath.
func NewRunner(tool, searchPath string, timeout time.Duration) *Runner {
	return &Runner{
		Tool:       tool,
		SearchPath: searchPath,
		Timeout:    timeout,
	}
}

// Run executes the tool and returns stdout when it exits with status 0.
// Spawn failures and timeouts are ErrExecutionFailed; any other exit
// status is ErrNonZeroExit carrying the captured stderr.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	path, err := r.lookTool()
	if err != nil {
		return "", &CommandError{Args: args, Kind: common.ErrExecutionFailed, ExitCode: -1, Err: err}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = common.CommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = r.environ()
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	common.LogDebug("Running: %s %s", r.Tool, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &CommandError{
				Args:     args,
				Kind:     common.ErrExecutionFailed,
				ExitCode: -1,
				Stderr:   decode(stderr.Bytes()),
				Err:      ctxErr,
			}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{
				Args:     args,
				Kind:     common.ErrNonZeroExit,
				ExitCode: exitErr.ExitCode(),
				Stderr:   decode(stderr.Bytes()),
				Err:      err,
			}
		}
		return "", &CommandError{Args: args, Kind: common.ErrExecutionFailed, ExitCode: -1, Err: err}
	}

	return decode(stdout.Bytes()), nil
}

// lookTool resolves Tool against SearchPath only, never the caller's PATH.
func (r *Runner) lookTool() (string, error) {
	if r.Tool == "" {
		return "", errors.New("no tool configured")
	}
	if strings.Contains(r.Tool, "/") {
		if err := checkExecutable(r.Tool); err != nil {
			return "", err
		}
		return r.Tool, nil
	}

	for _, dir := range filepath.SplitList(r.SearchPath) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, r.Tool)
		if checkExecutable(candidate) == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found in %s: %w", r.Tool, r.SearchPath, exec.ErrNotFound)
}

// environ returns the inherited environment with PATH replaced, so the
// tool still sees WAYLAND_DISPLAY and XDG_RUNTIME_DIR.
func (r *Runner) environ() []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+r.SearchPath)
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0111 == 0 {
		return fmt.Errorf("%s: %w", path, os.ErrPermission)
	}
	return nil
}

// decode turns process output into a string, replacing invalid UTF-8.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
