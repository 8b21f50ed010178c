// Package notify holds the notification sinks: a bounded feed that backs the
// notification area of the HTTP API, and a fan-out that delivers to several
// sinks at once.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// DefaultCapacity is how many notifications a Feed keeps.
const DefaultCapacity = 50

// Feed keeps the most recent notifications in a ring buffer and logs each one.
// Entries older than the TTL are hidden from Recent.
type Feed struct {
	mu    sync.Mutex
	items []ports.Notification
	next  int
	full  bool
	ttl   time.Duration
	now   func() time.Time
}

// NewFeed creates a feed holding up to capacity entries. A zero ttl keeps
// entries until they are overwritten.
func NewFeed(capacity int, ttl time.Duration) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Feed{
		items: make([]ports.Notification, capacity),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Notify implements ports.Notifier.
func (f *Feed) Notify(ctx context.Context, n ports.Notification) {
	if n.Time.IsZero() {
		n.Time = f.now()
	}

	logging.FromContext(ctx).Log(ctx, levelFor(n.Level), "notification",
		slog.String("level", string(n.Level)),
		slog.String("message", n.Message))

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[f.next] = n
	f.next = (f.next + 1) % len(f.items)

	if f.next == 0 {
		f.full = true
	}
}

// Recent returns up to limit live notifications, newest first. A limit of
// zero or less returns all of them.
func (f *Feed) Recent(limit int) []ports.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	size := f.next
	if f.full {
		size = len(f.items)
	}

	if limit <= 0 || limit > size {
		limit = size
	}

	cutoff := time.Time{}
	if f.ttl > 0 {
		cutoff = f.now().Add(-f.ttl)
	}

	out := make([]ports.Notification, 0, limit)

	for i := range size {
		if len(out) == limit {
			break
		}

		n := f.items[(f.next-1-i+len(f.items))%len(f.items)]
		if n.Time.Before(cutoff) {
			break
		}

		out = append(out, n)
	}

	return out
}

// Clear drops every entry.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.items)
	f.next = 0
	f.full = false
}

func levelFor(l ports.NotificationLevel) slog.Level {
	switch l {
	case ports.NotificationError:
		return slog.LevelError
	case ports.NotificationWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Fanout delivers each notification to every sink in order.
type Fanout []ports.Notifier

// Notify implements ports.Notifier.
func (f Fanout) Notify(ctx context.Context, n ports.Notification) {
	for _, sink := range f {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}
