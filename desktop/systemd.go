package desktop

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/yllada/display-panel/common"
	"github.com/yllada/display-panel/display"
)

const (
	systemdName       = "org.freedesktop.systemd1"
	systemdPath       = "/org/freedesktop/systemd1"
	systemdReloadUnit = systemdName + ".Manager.ReloadUnit"
)

// UnitReloader reloads a systemd user unit, the taskbar, so it picks up a
// new output scale.
type UnitReloader struct {
	obj  busObject
	unit string
}

// NewUnitReloader creates a reloader for unit on the session bus. A unit
// without a suffix is taken to be a service.
func NewUnitReloader(conn *dbus.Conn, unit string) *UnitReloader {
	return newUnitReloader(conn.Object(systemdName, dbus.ObjectPath(systemdPath)), unit)
}

func newUnitReloader(obj busObject, unit string) *UnitReloader {
	if !strings.Contains(unit, ".") {
		unit += ".service"
	}
	return &UnitReloader{obj: obj, unit: unit}
}

// Unit returns the full unit name.
func (r *UnitReloader) Unit() string {
	return r.unit
}

// Reload queues a reload job for the unit.
func (r *UnitReloader) Reload(ctx context.Context) error {
	call := r.obj.CallWithContext(ctx, systemdReloadUnit, 0, r.unit, "replace")
	if call.Err != nil {
		return fmt.Errorf("reload %s: %w", r.unit, call.Err)
	}

	var job dbus.ObjectPath
	if err := call.Store(&job); err != nil {
		return fmt.Errorf("reload %s: %w", r.unit, err)
	}
	common.LogDebug("Queued reload of %s: %s", r.unit, job)
	return nil
}

// ReloadOnScale returns a callback that reloads the unit after a result
// whose scale command succeeded.
func (r *UnitReloader) ReloadOnScale(ctx context.Context) func(display.ApplyResult) {
	return func(result display.ApplyResult) {
		if result.ScaleErr != nil {
			return
		}
		if err := r.Reload(ctx); err != nil {
			common.LogWarn("Failed to reload taskbar: %v", err)
		}
	}
}
