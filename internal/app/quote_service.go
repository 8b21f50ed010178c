// Package app contains the application services: the quote controller, its
// store and the sync engine.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// User-facing messages.
const (
	msgAddMissingFields = "Please enter both the quote text and category to add a new quote."
	msgAdded            = "Quote added successfully!"
	msgRemoved          = "Quote removed."
	msgStorageReset     = "Saved quotes were unreadable and have been reset to the defaults."
	msgImportInvalid    = "Invalid JSON file format."
)

// QuoteService owns the in-memory collection and the selected category.
// Every command runs under one mutex, persists, and re-renders before it
// returns, so two commands never interleave.
type QuoteService struct {
	store     *QuoteStore
	publisher ports.QuotePublisher
	notifier  ports.Notifier
	renderer  ports.Renderer
	observer  ports.SyncObserver
	logger    *slog.Logger
	intn      func(n int) int
	now       func() time.Time

	mu       sync.Mutex
	quotes   []domain.Quote
	selected string
}

// QuoteServiceConfig contains the dependencies of the quote service.
// Only Store is required.
type QuoteServiceConfig struct {
	Store     *QuoteStore
	Publisher ports.QuotePublisher
	Notifier  ports.Notifier
	Renderer  ports.Renderer
	Observer  ports.SyncObserver
	Logger    *slog.Logger

	// Intn returns a value in [0, n). Defaults to math/rand/v2.IntN.
	Intn func(n int) int
}

// ImportResult reports what an import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// NewQuoteService panics if Store is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("QuoteService: Store is required")
	}

	svc := &QuoteService{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		notifier:  cfg.Notifier,
		renderer:  cfg.Renderer,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		intn:      cfg.Intn,
		now:       time.Now,
		selected:  domain.CategoryAll,
	}

	if svc.notifier == nil {
		svc.notifier = ports.NopNotifier{}
	}

	if svc.renderer == nil {
		svc.renderer = ports.NopRenderer{}
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	if svc.intn == nil {
		svc.intn = rand.IntN
	}

	return svc
}

// Load restores the collection and selection from the store and renders the
// initial view. The service is usable even when an error is returned: a
// corrupt or unreadable store leaves the defaults in memory.
func (s *QuoteService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.store.Load(ctx)
	s.quotes = quotes

	switch {
	case domain.IsStorageCorrupt(err):
		s.notify(ctx, ports.NotificationError, msgStorageReset)
	case err != nil:
		s.notify(ctx, ports.NotificationError, "Could not load saved quotes: "+err.Error())
	}

	s.selected = s.store.LoadCategory(ctx)
	if !slices.Contains(domain.Categories(s.quotes), s.selected) {
		s.logger.InfoContext(ctx, "stored category no longer present, showing all",
			slog.String("category", s.selected))
		s.selected = domain.CategoryAll
	}

	s.logger.InfoContext(ctx, "quotes loaded",
		slog.Int("count", len(s.quotes)),
		slog.String("category", s.selected))

	s.observeSize()
	s.renderAll(ctx)

	return err
}

// Quotes returns a copy of the whole collection.
func (s *QuoteService) Quotes() []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.quotes)
}

// Selected returns the selected category.
func (s *QuoteService) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected
}

// Get returns the quote with id.
func (s *QuoteService) Get(_ context.Context, id string) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.IndexOf(s.quotes, id)
	if i < 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote", id)
	}

	return s.quotes[i], nil
}

// ShowRandom picks a random quote from the whole collection, displays it and
// returns it. An empty collection yields the placeholder.
func (s *QuoteService) ShowRandom(ctx context.Context) domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := domain.PickRandom(s.quotes, s.intn)
	s.renderer.ShowRandom(ctx, q)

	return q
}

// List returns the quotes in category. An empty category means the current
// selection.
func (s *QuoteService) List(_ context.Context, category string) []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category = strings.TrimSpace(category); category == "" {
		category = s.selected
	}

	return domain.Filter(s.quotes, category)
}

// Categories returns the selector entries and the selected one.
func (s *QuoteService) Categories() (categories []string, selected string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Categories(s.quotes), s.selected
}

// SelectCategory changes and persists the selection, then re-renders the
// list. An empty category selects "all". Unknown categories are rejected.
func (s *QuoteService) SelectCategory(ctx context.Context, category string) error {
	if category = strings.TrimSpace(category); category == "" {
		category = domain.CategoryAll
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	categories := domain.Categories(s.quotes)
	if !slices.Contains(categories, category) {
		return domain.NewNotFoundError("category", category)
	}

	s.selected = category

	if err := s.store.SaveCategory(ctx, category); err != nil {
		s.reportWriteFailure(ctx, err)
	}

	s.renderer.RenderCategories(ctx, categories, s.selected)
	s.renderer.RenderList(ctx, domain.Filter(s.quotes, s.selected))

	return nil
}

// Add validates and appends a new quote, persists and re-renders, then hands
// it to the publisher. A blank author becomes "Unknown".
func (s *QuoteService) Add(ctx context.Context, text, category, author string) (domain.Quote, error) {
	q, err := domain.NewQuote(text, category, author)
	if err != nil {
		s.notify(ctx, ports.NotificationError, msgAddMissingFields)

		return domain.Quote{}, err
	}

	s.mu.Lock()
	s.quotes = append(s.quotes, q)
	s.commit(ctx)
	s.renderer.ShowRandom(ctx, domain.PickRandom(s.quotes, s.intn))
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "quote added",
		slog.String("quote_id", q.ID),
		slog.String("category", q.Category))
	s.notify(ctx, ports.NotificationInfo, msgAdded)

	if s.publisher != nil {
		s.publisher.Publish(ctx, q)
	}

	return q, nil
}

// Remove deletes the quote with id, persists and re-renders.
func (s *QuoteService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := domain.IndexOf(s.quotes, id)
	if i < 0 {
		return domain.NewNotFoundError("quote", id)
	}

	s.quotes = slices.Delete(s.quotes, i, i+1)

	// Removing the last quote of the selected category falls back to all.
	if !slices.Contains(domain.Categories(s.quotes), s.selected) {
		s.selected = domain.CategoryAll
		if err := s.store.SaveCategory(ctx, s.selected); err != nil {
			s.reportWriteFailure(ctx, err)
		}
	}

	s.commit(ctx)

	s.logger.InfoContext(ctx, "quote removed", slog.String("quote_id", id))
	s.notify(ctx, ports.NotificationInfo, msgRemoved)

	return nil
}

// Export serializes the whole collection.
func (s *QuoteService) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	data, err := domain.Export(s.quotes)
	count := len(s.quotes)
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("exporting quotes: %w", err)
	}

	s.logger.InfoContext(ctx, "quotes exported", slog.Int("count", count))

	return data, nil
}

// Import parses data and appends its quotes, skipping ids that already
// exist. An invalid document leaves the collection unchanged.
func (s *QuoteService) Import(ctx context.Context, data []byte) (ImportResult, error) {
	incoming, err := domain.ParseImport(data)
	if err != nil {
		s.logger.WarnContext(ctx, "import rejected", slog.Any("error", err))
		s.notify(ctx, ports.NotificationError, msgImportInvalid+" "+err.Error())

		return ImportResult{}, err
	}

	s.mu.Lock()
	merged, skipped := domain.AppendUnique(s.quotes, incoming)
	result := ImportResult{Imported: len(merged) - len(s.quotes), Skipped: skipped}
	s.quotes = merged
	s.commit(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "quotes imported",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))
	s.notify(ctx, ports.NotificationInfo, result.Message())

	return result, nil
}

// Reconcile merges a remote page into the collection with server-wins,
// persists and re-renders everything.
func (s *QuoteService) Reconcile(ctx context.Context, remote []domain.Quote) domain.MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := domain.Merge(s.quotes, remote)
	s.quotes = result.Quotes
	s.commit(ctx)
	s.renderer.ShowRandom(ctx, domain.PickRandom(s.quotes, s.intn))

	return result
}

// Notify forwards n to the configured notifier, stamping the time if unset.
func (s *QuoteService) Notify(ctx context.Context, n ports.Notification) {
	if n.Time.IsZero() {
		n.Time = s.now()
	}

	s.notifier.Notify(ctx, n)
}

// commit persists the collection and re-renders the categories and the
// filtered list. Caller holds mu.
func (s *QuoteService) commit(ctx context.Context) {
	if err := s.store.Save(ctx, s.quotes); err != nil {
		s.reportWriteFailure(ctx, err)
	}

	s.observeSize()
	s.renderer.RenderCategories(ctx, domain.Categories(s.quotes), s.selected)
	s.renderer.RenderList(ctx, domain.Filter(s.quotes, s.selected))
}

// renderAll draws every surface. Caller holds mu.
func (s *QuoteService) renderAll(ctx context.Context) {
	s.renderer.RenderCategories(ctx, domain.Categories(s.quotes), s.selected)
	s.renderer.RenderList(ctx, domain.Filter(s.quotes, s.selected))
	s.renderer.ShowRandom(ctx, domain.PickRandom(s.quotes, s.intn))
}

func (s *QuoteService) reportWriteFailure(ctx context.Context, err error) {
	s.logger.ErrorContext(ctx, "persisting quotes failed", slog.Any("error", err))
	s.notify(ctx, ports.NotificationError, "Could not save quotes: "+err.Error())
}

func (s *QuoteService) observeSize() {
	if s.observer != nil {
		s.observer.ObserveCollectionSize(len(s.quotes))
	}
}

func (s *QuoteService) notify(ctx context.Context, level ports.NotificationLevel, message string) {
	s.Notify(ctx, ports.Notification{Level: level, Message: message})
}

// Message is the notification text for the import.
func (r ImportResult) Message() string {
	if r.Skipped == 0 {
		return fmt.Sprintf("Quotes imported successfully! (%d added)", r.Imported)
	}

	return fmt.Sprintf("Quotes imported successfully! (%d added, %d skipped as duplicates)", r.Imported, r.Skipped)
}
