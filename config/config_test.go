package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yllada/display-panel/common"
	"github.com/yllada/display-panel/display"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output != "eDP-1" {
		t.Errorf("Output = %q, want eDP-1", cfg.Output)
	}
	if cfg.Tool != "wlr-randr" {
		t.Errorf("Tool = %q, want wlr-randr", cfg.Tool)
	}
	if cfg.RefreshRate != 60 {
		t.Errorf("RefreshRate = %d, want 60", cfg.RefreshRate)
	}
	if cfg.CommandTimeout != 10*time.Second {
		t.Errorf("CommandTimeout = %s, want 10s", cfg.CommandTimeout)
	}
	if len(cfg.Resolutions) != 4 || cfg.Resolutions[0] != "1920x1200" {
		t.Errorf("Resolutions = %v", cfg.Resolutions)
	}
	if !cfg.Notifications || !cfg.History {
		t.Error("notifications and history should be enabled by default")
	}
}

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !common.FileExists(path) {
		t.Fatal("LoadFrom() should write the default file")
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	// Reading the written file back gives the same values.
	again, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("second LoadFrom() error = %v", err)
	}
	if again.CommandTimeout != cfg.CommandTimeout || again.Output != cfg.Output {
		t.Errorf("reloaded config = %+v, want %+v", again, cfg)
	}
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "partial file keeps defaults",
			content: `output: HDMI-A-1
command_timeout: 3s
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Output != "HDMI-A-1" {
					t.Errorf("Output = %q", cfg.Output)
				}
				if cfg.CommandTimeout != 3*time.Second {
					t.Errorf("CommandTimeout = %s", cfg.CommandTimeout)
				}
				if cfg.Tool != "wlr-randr" {
					t.Errorf("Tool = %q, want default", cfg.Tool)
				}
			},
		},
		{
			name:    "unknown field",
			content: "theme: dark\n",
			wantErr: true,
		},
		{
			name:    "bad resolution",
			content: "resolutions: [\"1920x\"]\n",
			wantErr: true,
		},
		{
			name:    "zero refresh rate",
			content: "refresh_rate: 0\n",
			wantErr: true,
		},
		{
			name:    "negative timeout",
			content: "command_timeout: -1s\n",
			wantErr: true,
		},
		{
			name:    "unknown resolution source",
			content: "resolution_source: edid\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.ResolutionSource != common.ResolutionSourceStatic {
					t.Errorf("ResolutionSource = %q, want static", cfg.ResolutionSource)
				}
			},
		},
		{
			name:    "empty resolution list",
			content: "resolutions: []\n",
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.Resolutions) != len(display.DefaultResolutions) {
					t.Errorf("Resolutions = %v, want defaults", cfg.Resolutions)
				}
			},
		},
		{
			name: "custom resolutions",
			content: `resolution_source: probe
resolutions:
  - 2560x1440
  - 1920x1080
`,
			check: func(t *testing.T, cfg *Config) {
				modes := cfg.DisplayModes()
				if len(modes) != 2 || modes[0] != "2560x1440" {
					t.Errorf("DisplayModes() = %v", modes)
				}
				if cfg.ResolutionSource != common.ResolutionSourceProbe {
					t.Errorf("ResolutionSource = %q", cfg.ResolutionSource)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadFrom(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, common.ErrConfigLoad) {
					t.Errorf("error should wrap ErrConfigLoad: %v", err)
				}
				return
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	cfg.TaskbarUnit = "ghaf-taskbar"
	cfg.Notifications = false
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TaskbarUnit != "ghaf-taskbar" || loaded.Notifications {
		t.Errorf("saved values not loaded back: %+v", loaded)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, ".config", "display-panel", "config.yaml")
	if path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}
