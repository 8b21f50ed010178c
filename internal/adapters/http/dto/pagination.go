package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"slices"
)

// Page size bounds for list endpoints.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	// ErrInvalidCursor means the cursor is malformed, was issued for another
	// category, or names a quote that has since been removed.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor marks a first page request.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest holds the paging query parameters.
type PaginationRequest struct {
	// Cursor is the NextCursor of the previous page.
	Cursor string `form:"cursor"`

	// Limit is the page size, 1 to MaxLimit. Zero means DefaultLimit.
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the effective page size.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// PaginatedResponse is one page of a listing.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total"`
}

// CursorData locates a page: the last quote id served and the category the
// listing was filtered by.
type CursorData struct {
	Category string `json:"c"`
	ID       string `json:"id"`
}

// EncodeCursor returns the opaque form of data, or "" for nil.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque cursor. An empty string is ErrNoCursor.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	data := &CursorData{}
	if json.Unmarshal(raw, data) != nil || data.ID == "" {
		return nil, ErrInvalidCursor
	}

	return data, nil
}

// Paginate slices items into the page after req's cursor. Items must keep a
// stable order between calls; idOf names each one.
func Paginate[T any](items []T, req PaginationRequest, category string, idOf func(T) string) (*PaginatedResponse[T], error) {
	start, err := pageStart(items, req.Cursor, category, idOf)
	if err != nil {
		return nil, err
	}

	end := min(start+req.GetLimit(), len(items))

	page := &PaginatedResponse[T]{
		Items:   slices.Clone(items[start:end]),
		HasMore: end < len(items),
		Total:   len(items),
	}

	if page.Items == nil {
		page.Items = []T{}
	}

	if page.HasMore && end > start {
		page.NextCursor = EncodeCursor(&CursorData{Category: category, ID: idOf(items[end-1])})
	}

	return page, nil
}

// pageStart resolves a cursor to the index of the first item to serve.
func pageStart[T any](items []T, cursor, category string, idOf func(T) string) (int, error) {
	data, err := DecodeCursor(cursor)

	switch {
	case errors.Is(err, ErrNoCursor):
		return 0, nil
	case err != nil:
		return 0, err
	case data.Category != category:
		return 0, ErrInvalidCursor
	}

	i := slices.IndexFunc(items, func(item T) bool { return idOf(item) == data.ID })
	if i < 0 {
		return 0, ErrInvalidCursor
	}

	return i + 1, nil
}
