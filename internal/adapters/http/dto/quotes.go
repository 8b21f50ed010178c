package dto

import (
	"time"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// QuoteResponse is the HTTP representation of a quote.
type QuoteResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Author   string `json:"author"`
	Remote   bool   `json:"remote"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:       q.ID,
		Text:     q.Text,
		Category: q.Category,
		Author:   q.DisplayAuthor(),
		Remote:   q.IsRemote(),
	}
}

// QuoteID binds the :id path parameter.
type QuoteID struct {
	ID string `uri:"id" validate:"required,quoteid"`
}

// ListQuotesRequest is the query of GET /quotes.
type ListQuotesRequest struct {
	PaginationRequest

	// Category filters the list. Empty means the selected category.
	Category string `form:"category" validate:"max=100"`
}

// AddQuoteRequest is the body of POST /quotes.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notblank,max=1000"`
	Category string `json:"category" validate:"required,notblank,max=100"`
	Author   string `json:"author"   validate:"max=200"`
}

// SelectCategoryRequest is the body of PUT /categories/selected.
type SelectCategoryRequest struct {
	Category string `json:"category" validate:"required,notblank,max=100"`
}

// CategoriesResponse lists the selector entries.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// ImportResponse reports the outcome of POST /import.
type ImportResponse struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
	Message  string `json:"message"`
}

// SyncResponse describes one sync cycle.
type SyncResponse struct {
	ID         uint64    `json:"id"`
	Trigger    string    `json:"trigger"`
	Outcome    string    `json:"outcome"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
	DurationMS int64     `json:"durationMs"`
	Fetched    int       `json:"fetched"`
	Added      int       `json:"added"`
	Conflicts  int       `json:"conflicts"`
	Error      string    `json:"error,omitempty"`
}

// NotificationsRequest is the query of GET /notifications.
type NotificationsRequest struct {
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// NotificationsResponse is the notification area, newest first.
type NotificationsResponse struct {
	Items []ports.Notification `json:"items"`
}
