// Package notify keeps transient toast notifications.
package notify

import (
	"sync"
	"time"

	"github.com/Iampro1712/apiconsole/internal/types"
)

// DisplayDuration is how long a notification stays visible
const DisplayDuration = 3 * time.Second

// Notifier receives user-facing notifications
type Notifier interface {
	Notify(message string, severity types.Severity) types.Notification
}

// Center is a Notifier holding the currently visible notifications
type Center struct {
	mu       sync.Mutex
	nextID   int
	active   []types.Notification
	duration time.Duration
	now      func() time.Time
	onNotify func(types.Notification)
}

// Option configures a Center
type Option func(*Center)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// WithDuration overrides DisplayDuration
func WithDuration(d time.Duration) Option {
	return func(c *Center) { c.duration = d }
}

// WithHook is called for each new notification
func WithHook(fn func(types.Notification)) Option {
	return func(c *Center) { c.onNotify = fn }
}

// NewCenter creates an empty Center
func NewCenter(opts ...Option) *Center {
	c := &Center{duration: DisplayDuration, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify records a notification that expires after the display duration
func (c *Center) Notify(message string, severity types.Severity) types.Notification {
	if severity == "" {
		severity = types.SeverityInfo
	}

	c.mu.Lock()
	c.nextID++
	now := c.now()
	n := types.Notification{
		ID:        c.nextID,
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(c.duration),
	}
	c.active = append(c.active, n)
	hook := c.onNotify
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return n
}

// Active prunes expired notifications and returns the visible ones, oldest first
func (c *Center) Active() []types.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.active[:0]
	for _, n := range c.active {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.active = kept

	return append([]types.Notification(nil), kept...)
}

// Dismiss removes a notification before it expires
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

// SetHook replaces the hook called for each new notification
func (c *Center) SetHook(fn func(types.Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNotify = fn
}

// Duration returns the display duration
func (c *Center) Duration() time.Duration {
	return c.duration
}

// Discard is a Notifier that drops everything
type Discard struct{}

func (Discard) Notify(message string, severity types.Severity) types.Notification {
	return types.Notification{Message: message, Severity: severity}
}
