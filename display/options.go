package display

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yllada/display-panel/common"
)

// DisplayMode is a resolution in the form "{width}x{height}".
type DisplayMode string

var modePattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// ParseDisplayMode validates text as a WxH resolution with positive sides.
func ParseDisplayMode(text string) (DisplayMode, error) {
	text = strings.TrimSpace(text)
	m := modePattern.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidMode, text)
	}
	for _, side := range m[1:] {
		n, err := strconv.ParseUint(side, 10, 32)
		if err != nil || n == 0 {
			return "", fmt.Errorf("%w: %q", common.ErrInvalidMode, text)
		}
	}
	return DisplayMode(text), nil
}

// WithRefresh returns the custom-mode argument "WxH@rate".
func (m DisplayMode) WithRefresh(rate int) string {
	return fmt.Sprintf("%s@%d", m, rate)
}

// String implements fmt.Stringer.
func (m DisplayMode) String() string {
	return string(m)
}

// ScaleOption is a percentage label such as "125%".
type ScaleOption string

// DefaultScales are the scale options offered by the panel, index 0 first.
var DefaultScales = []ScaleOption{"100%", "125%", "150%"}

// scaleMultipliers maps a scale index to the multiplier passed to the tool.
var scaleMultipliers = map[int]float64{
	0: 1.0,
	1: 1.25,
	2: 1.5,
}

// ScaleMultiplier returns the multiplier for a scale index.
// Any index outside the table means no scaling.
func ScaleMultiplier(index int) float64 {
	if f, ok := scaleMultipliers[index]; ok {
		return f
	}
	return 1.0
}

// ScaleFromMultiplier formats a multiplier as a percentage option:
// 1.25 becomes "125%".
func ScaleFromMultiplier(f float64) ScaleOption {
	return ScaleOption(fmt.Sprintf("%d%%", int(math.Round(f*100))))
}

// ParseScale parses a decimal multiplier as printed by the query tool.
func ParseScale(text string) (ScaleOption, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidScale, text)
	}
	return ScaleFromMultiplier(f), nil
}

// String implements fmt.Stringer.
func (s ScaleOption) String() string {
	return string(s)
}

// OptionSet is an ordered list of selectable options. Position is the
// identifier used to select and apply an option, so a set is never
// reordered once built; it is only ever replaced as a whole.
type OptionSet[T comparable] struct {
	items []T
}

// NewOptionSet builds a set from items, copying the slice.
func NewOptionSet[T comparable](items ...T) OptionSet[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return OptionSet[T]{items: cp}
}

// Len returns the number of options.
func (s OptionSet[T]) Len() int {
	return len(s.items)
}

// At returns the option at index i.
func (s OptionSet[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(s.items) {
		return zero, false
	}
	return s.items[i], true
}

// Items returns a copy of the options in order.
func (s OptionSet[T]) Items() []T {
	cp := make([]T, len(s.items))
	copy(cp, s.items)
	return cp
}

// IndexOf returns the position of value in the set.
func (s OptionSet[T]) IndexOf(value T) (int, bool) {
	return IndexOf(s.items, value)
}

// IndexOf scans items for the first exact match of value.
func IndexOf[T comparable](items []T, value T) (int, bool) {
	for i, item := range items {
		if item == value {
			return i, true
		}
	}
	return -1, false
}
