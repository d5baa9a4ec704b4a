package display

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestStaticRegistry_Defaults(t *testing.T) {
	reg := NewStaticRegistry(nil)
	ctx := context.Background()

	resolutions := reg.PopulateResolutions(ctx).Items()
	if !reflect.DeepEqual(resolutions, DefaultResolutions) {
		t.Errorf("PopulateResolutions() = %v, want %v", resolutions, DefaultResolutions)
	}

	scales := reg.PopulateScales(ctx).Items()
	want := []ScaleOption{"100%", "125%", "150%"}
	if !reflect.DeepEqual(scales, want) {
		t.Errorf("PopulateScales() = %v, want %v", scales, want)
	}
}

func TestStaticRegistry_Custom(t *testing.T) {
	reg := NewStaticRegistry([]DisplayMode{"2560x1600", "1920x1200"})

	got := reg.PopulateResolutions(context.Background())
	if first, _ := got.At(0); first != "2560x1600" {
		t.Errorf("At(0) = %v, want 2560x1600", first)
	}
	if got.Len() != 2 {
		t.Errorf("Len() = %d, want 2", got.Len())
	}
}

func TestProbedRegistry(t *testing.T) {
	fallback := NewStaticRegistry(nil)
	ctx := context.Background()

	t.Run("probed modes", func(t *testing.T) {
		reg := NewProbedRegistry(&fakeProber{text: sampleOutput}, "eDP-1", fallback)
		got := reg.PopulateResolutions(ctx).Items()
		want := []DisplayMode{"1920x1200", "1280x800"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("PopulateResolutions() = %v, want %v", got, want)
		}
	})

	t.Run("probe error falls back", func(t *testing.T) {
		reg := NewProbedRegistry(&fakeProber{err: errors.New("boom")}, "eDP-1", fallback)
		got := reg.PopulateResolutions(ctx).Items()
		if !reflect.DeepEqual(got, DefaultResolutions) {
			t.Errorf("PopulateResolutions() = %v, want fallback %v", got, DefaultResolutions)
		}
	})

	t.Run("unknown output falls back", func(t *testing.T) {
		reg := NewProbedRegistry(&fakeProber{text: sampleOutput}, "DP-9", fallback)
		if got := reg.PopulateResolutions(ctx).Len(); got != len(DefaultResolutions) {
			t.Errorf("PopulateResolutions().Len() = %d, want %d", got, len(DefaultResolutions))
		}
	})

	t.Run("scales come from fallback", func(t *testing.T) {
		reg := NewProbedRegistry(&fakeProber{text: sampleOutput}, "eDP-1", fallback)
		if got := reg.PopulateScales(ctx).Len(); got != 3 {
			t.Errorf("PopulateScales().Len() = %d, want 3", got)
		}
	})
}
