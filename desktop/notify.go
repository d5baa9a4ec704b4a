// Package desktop talks to the user's desktop session over D-Bus:
// notifications for apply outcomes and reloading the taskbar unit after a
// scale change.
package desktop

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/yllada/display-panel/common"
	"github.com/yllada/display-panel/display"
)

const (
	notificationsName   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsNotify = notificationsName + ".Notify"
)

// NotificationType represents the type of notification.
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// Notification represents a desktop notification.
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

// icon returns the explicit icon or the default for the notification type.
func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	switch n.Type {
	case NotificationWarning:
		return "dialog-warning"
	case NotificationError:
		return "dialog-error"
	default:
		return "video-display"
	}
}

// urgency maps the type to the freedesktop urgency hint (0 low, 1 normal,
// 2 critical).
func (n Notification) urgency() byte {
	switch n.Type {
	case NotificationError:
		return 2
	case NotificationWarning:
		return 1
	default:
		return 0
	}
}

// busObject is the part of dbus.BusObject the package calls.
type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier sends notifications through org.freedesktop.Notifications.
type Notifier struct {
	obj     busObject
	appName string
}

// NewNotifier creates a notifier on the session bus connection.
func NewNotifier(conn *dbus.Conn) *Notifier {
	return newNotifier(conn.Object(notificationsName, dbus.ObjectPath(notificationsPath)))
}

func newNotifier(obj busObject) *Notifier {
	return &Notifier{obj: obj, appName: common.AppName}
}

// Show displays n and returns the id the notification server assigned.
func (n *Notifier) Show(ctx context.Context, notification Notification) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(notification.urgency()),
		"desktop-entry": dbus.MakeVariant(common.AppID),
	}

	call := n.obj.CallWithContext(ctx, notificationsNotify, 0,
		n.appName,
		uint32(0),
		notification.icon(),
		notification.Title,
		notification.Message,
		[]string{},
		hints,
		int32(-1),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

// NotifyChanged asks the user to confirm the new settings.
func (n *Notifier) NotifyChanged(result display.ApplyResult) {
	n.send(Notification{
		Title:   "Display Settings Changed",
		Message: fmt.Sprintf("%s at %s on %s. Keep these settings within %s or defaults are restored.", result.Mode, result.Scale, result.Output, common.ConfirmTimeout),
		Type:    NotificationSuccess,
	})
}

// NotifyRestored reports a reset to defaults.
func (n *Notifier) NotifyRestored(result display.ApplyResult) {
	notification := Notification{
		Title:   "Default Display Settings Restored",
		Message: fmt.Sprintf("%s at %s on %s", result.Mode, result.Scale, result.Output),
		Type:    NotificationInfo,
	}
	if err := result.Err(); err != nil {
		notification.Type = NotificationWarning
		notification.Message += ": " + err.Error()
	}
	n.send(notification)
}

// NotifyError reports a failed apply with its reason.
func (n *Notifier) NotifyError(result display.ApplyResult) {
	n.send(Notification{
		Title:   "Display Settings Not Applied",
		Message: result.Err().Error(),
		Type:    NotificationError,
	})
}

func (n *Notifier) send(notification Notification) {
	if _, err := n.Show(context.Background(), notification); err != nil {
		common.LogWarn("Error showing notification: %v", err)
	}
}
