package display

import (
	"errors"
	"testing"

	"github.com/yllada/display-panel/common"
)

func TestParseDisplayMode(t *testing.T) {
	tests := []struct {
		input   string
		want    DisplayMode
		wantErr bool
	}{
		{"1920x1200", "1920x1200", false},
		{" 2104x1236 ", "2104x1236", false},
		{"7680x4320", "7680x4320", false},
		{"0x1200", "", true},
		{"1920x0", "", true},
		{"1920X1200", "", true},
		{"1920x1200@60", "", true},
		{"-1920x1200", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDisplayMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, common.ErrInvalidMode) {
					t.Errorf("ParseDisplayMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDisplayMode(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDisplayMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayMode_WithRefresh(t *testing.T) {
	mode := DisplayMode("1936x1203")

	if got := mode.WithRefresh(60); got != "1936x1203@60" {
		t.Errorf("WithRefresh(60) = %v, want 1936x1203@60", got)
	}
}

func TestScaleMultiplier(t *testing.T) {
	tests := []struct {
		index int
		want  float64
	}{
		{0, 1.0},
		{1, 1.25},
		{2, 1.5},
		{3, 1.0},
		{-1, 1.0},
		{100, 1.0},
	}

	for _, tt := range tests {
		if got := ScaleMultiplier(tt.index); got != tt.want {
			t.Errorf("ScaleMultiplier(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestParseScale(t *testing.T) {
	tests := []struct {
		input   string
		want    ScaleOption
		wantErr bool
	}{
		{"1.25", "125%", false},
		{"1.000000", "100%", false},
		{"1.5", "150%", false},
		{"2", "200%", false},
		{"abc", "", true},
		{"0", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScale(tt.input)
			if tt.wantErr {
				if !errors.Is(err, common.ErrInvalidScale) {
					t.Errorf("ParseScale(%q) error = %v, want ErrInvalidScale", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScale(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseScale(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIndexOf_EveryPosition(t *testing.T) {
	set := NewOptionSet(DefaultResolutions...)

	for i := 0; i < set.Len(); i++ {
		value, _ := set.At(i)
		got, ok := set.IndexOf(value)
		if !ok || got != i {
			t.Errorf("IndexOf(%v) = %d, %v; want %d, true", value, got, ok, i)
		}
	}
}

func TestIndexOf_Absent(t *testing.T) {
	scales := NewOptionSet(DefaultScales...)

	for _, value := range []ScaleOption{"175%", "125", "", "125 %"} {
		if i, ok := scales.IndexOf(value); ok {
			t.Errorf("IndexOf(%q) = %d, want not found", value, i)
		}
	}
}

func TestIndexOf_FirstMatchCaseSensitive(t *testing.T) {
	items := []string{"eDP-1", "HDMI-A-1", "eDP-1"}

	if i, ok := IndexOf(items, "eDP-1"); !ok || i != 0 {
		t.Errorf("IndexOf(eDP-1) = %d, %v; want 0, true", i, ok)
	}
	if _, ok := IndexOf(items, "edp-1"); ok {
		t.Error("IndexOf should be case-sensitive")
	}
	if _, ok := IndexOf([]string{}, "eDP-1"); ok {
		t.Error("IndexOf on an empty set should not match")
	}
}

func TestOptionSet_CopiesInput(t *testing.T) {
	items := []DisplayMode{"1920x1200", "1280x800"}
	set := NewOptionSet(items...)
	items[0] = "640x480"

	if got, _ := set.At(0); got != "1920x1200" {
		t.Errorf("At(0) = %v, the set must not alias its input", got)
	}

	out := set.Items()
	out[1] = "640x480"
	if got, _ := set.At(1); got != "1280x800" {
		t.Errorf("At(1) = %v, Items must return a copy", got)
	}

	if _, ok := set.At(2); ok {
		t.Error("At(2) should be out of range")
	}
	if _, ok := set.At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
}
