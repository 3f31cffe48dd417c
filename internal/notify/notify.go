// Package notify sends desktop notifications through beeep.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"lefocus-cli/internal/logger"
)

type notifyFunc func(title, message string, icon any) error

var (
	mu       sync.Mutex
	notifier notifyFunc = beeep.Notify
)

// SetNotifier replaces the platform notifier. Tests use it to avoid real
// notifications.
func SetNotifier(fn func(title, message string, icon any) error) {
	mu.Lock()
	defer mu.Unlock()
	notifier = fn
}

// ResetNotifier restores beeep.Notify.
func ResetNotifier() {
	SetNotifier(beeep.Notify)
}

// Send shows a notification. An empty icon lets beeep pick the platform default.
func Send(title, message string) error {
	mu.Lock()
	fn := notifier
	mu.Unlock()

	log := logger.Component("notify")
	log.Debug("sending notification", "title", title, "message", message)
	if err := fn(title, message, ""); err != nil {
		log.Warn("notification failed", "err", err)
		return err
	}
	return nil
}

// CountdownComplete announces a finished focus session of length target.
func CountdownComplete(target time.Duration, label string) error {
	msg := fmt.Sprintf("%s focus session complete", target.Round(time.Minute))
	if label != "" {
		msg = fmt.Sprintf("%s (%s)", msg, label)
	}
	return Send("LeFocus", msg)
}
