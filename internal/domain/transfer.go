package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Export encodes the collection as an indented JSON array.
// An empty collection exports as [].
func Export(quotes []Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}

	return json.MarshalIndent(quotes, "", "  ")
}

// utf8BOM is the byte order mark some editors write at the start of a
// UTF-8 file.
var utf8BOM = []byte("\xEF\xBB\xBF")

// importRecord mirrors Quote with pointer fields so absent and mistyped
// members can be told apart.
type importRecord struct {
	ID       *string `json:"id"`
	Text     *string `json:"text"`
	Category *string `json:"category"`
	Author   *string `json:"author"`
}

// ParseImport decodes an import document.
// The document must be a JSON array of objects, each with string text and
// category. Missing ids are generated and missing authors become UnknownAuthor.
// Any malformed element rejects the whole document. A leading UTF-8 byte
// order mark is ignored.
func ParseImport(data []byte) ([]Quote, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return nil, NewInvalidFormatError(-1, "document is empty")
	}

	if trimmed[0] != '[' {
		return nil, NewInvalidFormatError(-1, "top-level value must be an array")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, NewInvalidFormatError(-1, err.Error())
	}

	quotes := make([]Quote, 0, len(elements))

	for i, raw := range elements {
		q, err := parseRecord(i, raw)
		if err != nil {
			return nil, err
		}

		quotes = append(quotes, q)
	}

	return quotes, nil
}

func parseRecord(index int, raw json.RawMessage) (Quote, error) {
	element := bytes.TrimSpace(raw)
	if len(element) == 0 || element[0] != '{' {
		return Quote{}, NewInvalidFormatError(index, "element must be an object")
	}

	var rec importRecord
	if err := json.Unmarshal(element, &rec); err != nil {
		return Quote{}, NewInvalidFormatError(index, err.Error())
	}

	if rec.Text == nil || strings.TrimSpace(*rec.Text) == "" {
		return Quote{}, NewInvalidFormatError(index, `missing string field "text"`)
	}

	if rec.Category == nil || strings.TrimSpace(*rec.Category) == "" {
		return Quote{}, NewInvalidFormatError(index, `missing string field "category"`)
	}

	q := Quote{
		Text:     strings.TrimSpace(*rec.Text),
		Category: strings.TrimSpace(*rec.Category),
		Author:   UnknownAuthor,
	}

	if rec.ID != nil && strings.TrimSpace(*rec.ID) != "" {
		q.ID = strings.TrimSpace(*rec.ID)
	} else {
		q.ID = NewID()
	}

	if rec.Author != nil && strings.TrimSpace(*rec.Author) != "" {
		q.Author = strings.TrimSpace(*rec.Author)
	}

	return q, nil
}

// AppendUnique appends incoming quotes whose ids are not already present in
// existing or earlier in incoming. It returns the new collection and the number
// of quotes skipped.
func AppendUnique(existing, incoming []Quote) ([]Quote, int) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, q := range existing {
		seen[q.ID] = struct{}{}
	}

	out := append(make([]Quote, 0, len(existing)+len(incoming)), existing...)
	skipped := 0

	for _, q := range incoming {
		if _, dup := seen[q.ID]; dup {
			skipped++

			continue
		}

		seen[q.ID] = struct{}{}
		out = append(out, q)
	}

	return out, skipped
}
