package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// Storage keys.
const (
	KeyQuotes           = "quotes"
	KeySelectedCategory = "selectedCategory"
)

// QuoteStore persists the collection and the selected category as JSON
// values in a key-value store. Every save rewrites the whole value.
type QuoteStore struct {
	kv     ports.KeyValueStore
	logger *slog.Logger
}

// NewQuoteStore panics if kv is nil.
func NewQuoteStore(kv ports.KeyValueStore, logger *slog.Logger) *QuoteStore {
	if kv == nil {
		panic("QuoteStore: KeyValueStore is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteStore{kv: kv, logger: logger}
}

// Load returns the persisted collection.
//
// An absent key seeds the defaults and writes them through. An unparsable
// value does the same but also returns a *domain.StorageCorruptError for the
// caller to report. A read failure returns the defaults without writing.
// In every case the returned slice is usable.
func (s *QuoteStore) Load(ctx context.Context) ([]domain.Quote, error) {
	raw, found, err := s.kv.Get(ctx, KeyQuotes)
	if err != nil {
		return domain.DefaultQuotes(), fmt.Errorf("reading %s: %w", KeyQuotes, err)
	}

	if !found {
		s.logger.InfoContext(ctx, "no stored quotes, seeding defaults")

		seed := domain.DefaultQuotes()

		return seed, s.Save(ctx, seed)
	}

	quotes, repaired, err := s.decode(ctx, raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored quotes are corrupt, reseeding", slog.Any("error", err))

		seed := domain.DefaultQuotes()
		corrupt := domain.NewStorageCorruptError(KeyQuotes, err.Error())

		return seed, errors.Join(corrupt, s.Save(ctx, seed))
	}

	if repaired {
		if err := s.Save(ctx, quotes); err != nil {
			return quotes, err
		}
	}

	return quotes, nil
}

// decode parses the stored array. Entries that cannot be used are dropped and
// missing ids or authors are filled in; repaired reports either. A non-empty
// array with no usable entry is corrupt, while an empty one is a collection
// the user emptied.
func (s *QuoteStore) decode(ctx context.Context, raw string) (quotes []domain.Quote, repaired bool, err error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false, err
	}

	if entries == nil {
		return nil, false, errors.New("value is null")
	}

	quotes = make([]domain.Quote, 0, len(entries))

	for i, entry := range entries {
		var q domain.Quote
		if err := json.Unmarshal(entry, &q); err != nil {
			s.logger.WarnContext(ctx, "dropping unreadable stored quote", slog.Int("index", i), slog.Any("error", err))
			repaired = true

			continue
		}

		q.Text = strings.TrimSpace(q.Text)
		q.Category = strings.TrimSpace(q.Category)

		if q.Text == "" || q.Category == "" {
			s.logger.WarnContext(ctx, "dropping stored quote without text or category", slog.Int("index", i))
			repaired = true

			continue
		}

		if q.ID == "" {
			q.ID = domain.NewID()
			repaired = true
		}

		if strings.TrimSpace(q.Author) == "" {
			q.Author = domain.UnknownAuthor
			repaired = true
		}

		quotes = append(quotes, q)
	}

	if len(entries) > 0 && len(quotes) == 0 {
		return nil, false, fmt.Errorf("none of %d stored entries is a usable quote", len(entries))
	}

	if repaired {
		s.logger.InfoContext(ctx, "repaired stored quotes", slog.Int("kept", len(quotes)), slog.Int("stored", len(entries)))
	}

	return quotes, repaired, nil
}

// Save writes the whole collection. Failures are *domain.StorageWriteError.
func (s *QuoteStore) Save(ctx context.Context, quotes []domain.Quote) error {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	data, err := json.Marshal(quotes)
	if err != nil {
		return domain.NewStorageWriteError(KeyQuotes, err)
	}

	if err := s.kv.Set(ctx, KeyQuotes, string(data)); err != nil {
		if domain.IsStorageWrite(err) {
			return err
		}

		return domain.NewStorageWriteError(KeyQuotes, err)
	}

	return nil
}

// LoadCategory returns the persisted selection, or "all" when there is none
// or it cannot be read.
func (s *QuoteStore) LoadCategory(ctx context.Context) string {
	value, found, err := s.kv.Get(ctx, KeySelectedCategory)
	if err != nil {
		s.logger.WarnContext(ctx, "reading selected category", slog.Any("error", err))

		return domain.CategoryAll
	}

	if !found || strings.TrimSpace(value) == "" {
		return domain.CategoryAll
	}

	return value
}

// SaveCategory persists the selection.
func (s *QuoteStore) SaveCategory(ctx context.Context, category string) error {
	if err := s.kv.Set(ctx, KeySelectedCategory, category); err != nil {
		if domain.IsStorageWrite(err) {
			return err
		}

		return domain.NewStorageWriteError(KeySelectedCategory, err)
	}

	return nil
}
