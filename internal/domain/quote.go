// Package domain contains the quote collection model and its rules.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// UnknownAuthor is recorded when a quote arrives without an author.
	UnknownAuthor = "Unknown"

	// RemoteIDPrefix marks quotes that originated on the remote list.
	RemoteIDPrefix = "server-"

	// PlaceholderText is shown in place of a random quote when the collection is empty.
	PlaceholderText = "No quotes available. Add some!"
)

// Quote is one record of the collection.
// The JSON field names are the persisted and exported document format.
type Quote struct {
	// ID is unique within a collection. Locally created quotes get a UUIDv7,
	// remote quotes carry RemoteIDPrefix.
	ID string `json:"id"`

	// Text is the quotation itself.
	Text string `json:"text"`

	// Category groups quotes for filtering.
	Category string `json:"category"`

	// Author is optional.
	Author string `json:"author,omitempty"`
}

// Placeholder is the record displayed when there is nothing to pick from.
var Placeholder = Quote{
	ID:       "placeholder",
	Text:     PlaceholderText,
	Category: "Info",
}

// NewID returns a fresh quote identifier.
// UUIDv7 embeds a millisecond timestamp followed by random bits.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// NewQuote builds a validated quote with a fresh id.
// Text and category are trimmed; a blank author becomes UnknownAuthor.
func NewQuote(text, category, author string) (Quote, error) {
	q := Quote{
		ID:       NewID(),
		Text:     strings.TrimSpace(text),
		Category: strings.TrimSpace(category),
		Author:   strings.TrimSpace(author),
	}
	if q.Author == "" {
		q.Author = UnknownAuthor
	}

	if err := q.Validate(); err != nil {
		return Quote{}, err
	}

	return q, nil
}

// Validate reports whether the required fields are present.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}

	if strings.TrimSpace(q.Category) == "" {
		return NewValidationError("category", "must not be empty")
	}

	return nil
}

// SameContent reports whether two quotes agree on text, category and author.
func (q Quote) SameContent(other Quote) bool {
	return q.Text == other.Text && q.Category == other.Category && q.Author == other.Author
}

// IsRemote reports whether the quote originated on the remote list.
func (q Quote) IsRemote() bool {
	return strings.HasPrefix(q.ID, RemoteIDPrefix)
}

// DisplayAuthor returns the author, falling back to UnknownAuthor.
func (q Quote) DisplayAuthor() string {
	if q.Author == "" {
		return UnknownAuthor
	}

	return q.Author
}

// DefaultQuotes returns the collection used when nothing has been stored yet.
// Seed quotes are already normalized: each carries UnknownAuthor.
func DefaultQuotes() []Quote {
	return []Quote{
		{ID: "seed-1", Text: "The only way to do great work is to love what you do.", Category: "Inspiration", Author: UnknownAuthor},
		{ID: "seed-2", Text: "Innovation distinguishes between a leader and a follower.", Category: "Innovation", Author: UnknownAuthor},
		{ID: "seed-3", Text: "Strive not to be a success, but rather to be of value.", Category: "Motivation", Author: UnknownAuthor},
		{ID: "seed-4", Text: "The future belongs to those who believe in the beauty of their dreams.", Category: "Dreams", Author: UnknownAuthor},
		{ID: "seed-5", Text: "The mind is everything. What you think you become.", Category: "Mindset", Author: UnknownAuthor},
	}
}

// IndexOf returns the position of the quote with the given id, or -1.
func IndexOf(quotes []Quote, id string) int {
	for i := range quotes {
		if quotes[i].ID == id {
			return i
		}
	}

	return -1
}

// PickRandom returns a uniformly chosen quote, or Placeholder when quotes is empty.
// intn must return a value in [0, n).
func PickRandom(quotes []Quote, intn func(n int) int) Quote {
	if len(quotes) == 0 {
		return Placeholder
	}

	return quotes[intn(len(quotes))]
}
