package display

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yllada/display-panel/common"
)

// writeTool creates an executable shell script named tool in a fresh
// directory and returns that directory.
func writeTool(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, "wlr-randr"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunner_Success(t *testing.T) {
	dir := writeTool(t, `echo "args: $*"`)
	runner := NewRunner("wlr-randr", dir, time.Second)

	out, err := runner.Run(context.Background(), "--output", "eDP-1", "--scale", "1.25")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(out) != "args: --output eDP-1 --scale 1.25" {
		t.Errorf("Run() = %q", out)
	}
}

func TestRunner_RestrictedPath(t *testing.T) {
	dir := writeTool(t, `echo "$PATH"`)
	t.Setenv("PATH", "/usr/bin:/bin")

	runner := NewRunner("wlr-randr", dir, time.Second)
	out, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("tool saw PATH=%q, want %q", strings.TrimSpace(out), dir)
	}
}

func TestRunner_NotInSearchPath(t *testing.T) {
	toolDir := writeTool(t, `echo found`)
	t.Setenv("PATH", toolDir)

	// The tool is on the caller's PATH but not in the search path.
	runner := NewRunner("wlr-randr", t.TempDir(), time.Second)
	_, err := runner.Run(context.Background())

	if !errors.Is(err, common.ErrExecutionFailed) {
		t.Fatalf("Run() error = %v, want ErrExecutionFailed", err)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.ExitCode != -1 {
		t.Errorf("Run() error = %#v, want CommandError with exit code -1", err)
	}
}

func TestRunner_NonZeroExit(t *testing.T) {
	dir := writeTool(t, `echo "output eDP-1 not found" >&2; exit 3`)
	runner := NewRunner("wlr-randr", dir, time.Second)

	_, err := runner.Run(context.Background(), "--output", "eDP-1", "--mode", "1920x1200")
	if !errors.Is(err, common.ErrNonZeroExit) {
		t.Fatalf("Run() error = %v, want ErrNonZeroExit", err)
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error should be a *CommandError, got %T", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if !strings.Contains(cmdErr.Stderr, "output eDP-1 not found") {
		t.Errorf("Stderr = %q", cmdErr.Stderr)
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Errorf("Error() = %q, want exit status in message", err.Error())
	}
}

func TestRunner_Timeout(t *testing.T) {
	dir := writeTool(t, `while :; do :; done`)
	runner := NewRunner("wlr-randr", dir, 100*time.Millisecond)

	start := time.Now()
	_, err := runner.Run(context.Background())

	if !errors.Is(err, common.ErrExecutionFailed) {
		t.Fatalf("Run() error = %v, want ErrExecutionFailed", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded in chain", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run() took %v, the timeout was not enforced", elapsed)
	}
}

func TestRunner_InvalidUTF8(t *testing.T) {
	dir := writeTool(t, `printf '\377ok'`)
	runner := NewRunner("wlr-randr", dir, time.Second)

	out, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "�ok" {
		t.Errorf("Run() = %q, want replacement character then ok", out)
	}
}

func TestRunner_AbsoluteTool(t *testing.T) {
	dir := writeTool(t, `echo absolute`)
	runner := NewRunner(filepath.Join(dir, "wlr-randr"), "/nonexistent", time.Second)

	out, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(out) != "absolute" {
		t.Errorf("Run() = %q", out)
	}
}

func TestRunner_NotExecutable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "wlr-randr"), []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner("wlr-randr", dir, time.Second)
	if _, err := runner.Run(context.Background()); !errors.Is(err, common.ErrExecutionFailed) {
		t.Errorf("Run() error = %v, want ErrExecutionFailed", err)
	}
}
