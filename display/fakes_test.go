package display

import (
	"context"
	"strings"
	"sync"
)

const sampleOutput = `HDMI-A-1 "Dell Inc. DELL U2719D (HDMI-A-1)"
  Make: Dell Inc.
  Model: DELL U2719D
  Enabled: yes
  Modes:
    2560x1440 px, 59.951000 Hz (preferred, current)
    1920x1080 px, 60.000000 Hz
  Scale: 1.500000
eDP-1 "Sharp Corporation 0x1515 (eDP-1)"
  Make: Sharp Corporation
  Model: 0x1515
  Physical size: 300x190 mm
  Enabled: yes
  Modes:
    1920x1200 px, 60.002998 Hz (preferred, current)
    1920x1200 px, 48.001999 Hz
    1280x800 px, 60.000000 Hz
  Position: 0,0
  Transform: normal
  Scale: 1.250000
  Adaptive Sync: disabled
`

// eDP-1 has no current mode; the next output does.
const inactiveOutput = `eDP-1 "Sharp Corporation 0x1515 (eDP-1)"
  Enabled: no
  Modes:
    1920x1200 px, 60.002998 Hz (preferred)
HDMI-A-1 "Dell Inc. DELL U2719D (HDMI-A-1)"
  Enabled: yes
  Modes:
    2560x1440 px, 59.951000 Hz (preferred, current)
  Scale: 1.000000
`

type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	stdout string
	errFor func(args []string) error
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), args...))
	if f.errFor != nil {
		if err := f.errFor(args); err != nil {
			return "", err
		}
	}
	return f.stdout, nil
}

func (f *fakeRunner) commandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, strings.Join(c, " "))
	}
	return lines
}

type fakeProber struct {
	text  string
	err   error
	calls int
}

func (f *fakeProber) Probe(context.Context) (string, error) {
	f.calls++
	return f.text, f.err
}

type applyCall struct {
	mode   DisplayMode
	custom bool
	scale  int
}

type fakeApplier struct {
	mu       sync.Mutex
	modeErr  error
	scaleErr error
	modes    []applyCall
	scales   []int
	block    chan struct{}
	entered  chan struct{}
}

func (f *fakeApplier) ApplyMode(_ context.Context, _ string, mode DisplayMode, custom bool) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, applyCall{mode: mode, custom: custom})
	return f.modeErr
}

func (f *fakeApplier) ApplyScale(_ context.Context, _ string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scales = append(f.scales, index)
	return f.scaleErr
}

type fakeJournal struct {
	results []ApplyResult
	err     error
}

func (f *fakeJournal) Record(_ context.Context, result ApplyResult) error {
	f.results = append(f.results, result)
	return f.err
}
