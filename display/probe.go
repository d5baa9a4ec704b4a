package display

import (
	"bufio"
	"context"
	"regexp"
	"strings"

	"github.com/yllada/display-panel/common"
)

// Prober runs the read-only query and returns its raw text.
type Prober interface {
	Probe(ctx context.Context) (string, error)
}

// ProbedState is the active mode and scale of one output, as read from a
// single query. A nil field means the value could not be found.
type ProbedState struct {
	Output string
	Mode   *DisplayMode
	Scale  *ScaleOption
}

// CommandProber queries the display tool with no arguments.
type CommandProber struct {
	runner CommandRunner
}

// NewCommandProber creates a prober backed by runner.
func NewCommandProber(runner CommandRunner) *CommandProber {
	return &CommandProber{runner: runner}
}

// Probe runs the query tool and returns its standard output.
func (p *CommandProber) Probe(ctx context.Context) (string, error) {
	return p.runner.Run(ctx)
}

var (
	currentModePattern = regexp.MustCompile(`(?m)^[ \t]*(\d+x\d+)\s*px\b[^\n]*\bcurrent\b`)
	anyModePattern     = regexp.MustCompile(`(?m)^[ \t]*(\d+x\d+)\s*px\b([^\n]*)$`)
	scalePattern       = regexp.MustCompile(`(?m)^[ \t]*Scale:\s*([\d.]+)`)
	modeLinePattern    = regexp.MustCompile(`^\d+x\d+`)
)

// isOutputHeader reports whether an unindented line starts a new output.
// Property lines carry a colon before any quoted description and mode
// lines start with WxH.
func isOutputHeader(line string) bool {
	if strings.TrimSpace(line) == "" || modeLinePattern.MatchString(line) {
		return false
	}
	name, _, _ := strings.Cut(line, `"`)
	return !strings.Contains(name, ":")
}

// deviceBlock returns the lines describing output, from its header line up
// to the next output header. The header is the unindented line whose first
// field is the output name. Unindented property and mode lines stay in the
// block.
func deviceBlock(text, output string) (string, bool) {
	var (
		block strings.Builder
		found bool
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		indented := line != "" && (line[0] == ' ' || line[0] == '\t')

		if found {
			if !indented && isOutputHeader(line) {
				break
			}
			block.WriteString(line)
			block.WriteByte('\n')
			continue
		}

		if !indented {
			fields := strings.Fields(line)
			if len(fields) > 0 && fields[0] == output {
				found = true
				block.WriteString(line)
				block.WriteByte('\n')
			}
		}
	}
	return block.String(), found
}

// ExtractMode returns the mode marked "current" in the block for output.
func ExtractMode(text, output string) (DisplayMode, bool) {
	block, ok := deviceBlock(text, output)
	if !ok {
		return "", false
	}
	m := currentModePattern.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	mode, err := ParseDisplayMode(m[1])
	if err != nil {
		return "", false
	}
	return mode, true
}

// ExtractScale returns the scale field of the block for output, formatted
// as a percentage option.
func ExtractScale(text, output string) (ScaleOption, bool) {
	block, ok := deviceBlock(text, output)
	if !ok {
		return "", false
	}
	m := scalePattern.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	scale, err := ParseScale(m[1])
	if err != nil {
		return "", false
	}
	return scale, true
}

// ExtractModes lists every distinct mode in the block for output. The
// preferred (native) mode comes first so it lands on index 0, then the
// current one, then the rest in the order the tool printed them.
func ExtractModes(text, output string) []DisplayMode {
	block, ok := deviceBlock(text, output)
	if !ok {
		return nil
	}

	var current, preferred DisplayMode
	var all []DisplayMode
	seen := make(map[DisplayMode]bool)

	for _, m := range anyModePattern.FindAllStringSubmatch(block, -1) {
		mode, err := ParseDisplayMode(m[1])
		if err != nil {
			continue
		}
		flags := m[2]
		if current == "" && strings.Contains(flags, "current") {
			current = mode
		}
		if preferred == "" && strings.Contains(flags, "preferred") {
			preferred = mode
		}
		if !seen[mode] {
			seen[mode] = true
			all = append(all, mode)
		}
	}

	ordered := make([]DisplayMode, 0, len(all))
	for _, head := range []DisplayMode{preferred, current} {
		if head != "" {
			if _, dup := IndexOf(ordered, head); !dup {
				ordered = append(ordered, head)
			}
		}
	}
	for _, mode := range all {
		if _, dup := IndexOf(ordered, mode); !dup {
			ordered = append(ordered, mode)
		}
	}
	return ordered
}

// ProbeState runs the query and extracts the current mode and scale for
// output. Missing values are logged as warnings, not returned as errors.
func ProbeState(ctx context.Context, prober Prober, output string) (ProbedState, error) {
	state := ProbedState{Output: output}

	text, err := prober.Probe(ctx)
	if err != nil {
		return state, err
	}

	if mode, ok := ExtractMode(text, output); ok {
		common.LogDebug("Current resolution: %s", mode)
		state.Mode = &mode
	} else {
		common.LogWarn("No current resolution found for %s", output)
	}

	if scale, ok := ExtractScale(text, output); ok {
		common.LogDebug("Current scale: %s", scale)
		state.Scale = &scale
	} else {
		common.LogWarn("No current scale found for %s", output)
	}

	return state, nil
}
