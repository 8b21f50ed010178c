// Package ports defines the contracts between the quote application core and its
// adapters. Storage, the remote list, user notification and display each sit
// behind a small interface so the core can run under the HTTP service, the CLI
// and tests alike.
//
// Port conventions:
//   - Context is the first parameter of anything that may block
//   - Methods take and return domain types, never wire DTOs
//   - Failures are reported with domain errors (ErrUnavailable, ErrStorageWrite, ...)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
)

// KeyValueStore is the persistent storage the collection lives in.
// Values are opaque strings replaced wholesale on every Set.
type KeyValueStore interface {
	// Get returns the value stored under key. found is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// RemoteQuoteSource is the remote list the sync engine reconciles against.
type RemoteQuoteSource interface {
	// FetchQuotes returns at most limit quotes already translated to the domain
	// model. Returns domain.ErrUnavailable if the remote is unreachable.
	FetchQuotes(ctx context.Context, limit int) ([]domain.Quote, error)

	// PushQuote sends a locally created quote upstream. The response is not merged.
	PushQuote(ctx context.Context, q domain.Quote) error
}

// QuotePublisher is notified of every locally added quote.
// Implementations must not block the caller.
type QuotePublisher interface {
	Publish(ctx context.Context, q domain.Quote)
}

// NotificationLevel is the severity of a user notification.
type NotificationLevel string

const (
	// NotificationInfo is a transient confirmation.
	NotificationInfo NotificationLevel = "info"

	// NotificationWarning is a transient problem the user may want to know about.
	NotificationWarning NotificationLevel = "warning"

	// NotificationError demands the user's attention.
	NotificationError NotificationLevel = "error"
)

// Notification is a message for the user.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	Time    time.Time         `json:"time"`
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Renderer projects collection state onto a display surface.
// Renderers hold no state of their own.
type Renderer interface {
	// ShowRandom replaces the single-quote display.
	ShowRandom(ctx context.Context, q domain.Quote)

	// RenderList replaces the list display. An empty slice shows the empty state.
	RenderList(ctx context.Context, quotes []domain.Quote)

	// RenderCategories replaces the category selector.
	RenderCategories(ctx context.Context, categories []string, selected string)
}

// SyncObserver records the outcome of each sync cycle.
type SyncObserver interface {
	ObserveCycle(ctx context.Context, outcome string, duration time.Duration, added, conflicts int)
	ObserveCollectionSize(size int)
}

// NopRenderer discards all output. The HTTP service uses it since clients fetch
// state on demand.
type NopRenderer struct{}

// ShowRandom implements Renderer.
func (NopRenderer) ShowRandom(context.Context, domain.Quote) {}

// RenderList implements Renderer.
func (NopRenderer) RenderList(context.Context, []domain.Quote) {}

// RenderCategories implements Renderer.
func (NopRenderer) RenderCategories(context.Context, []string, string) {}

// NopNotifier discards notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Notification) {}
