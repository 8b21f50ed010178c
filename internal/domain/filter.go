package domain

// CategoryAll selects every quote regardless of category.
const CategoryAll = "all"

// Categories returns CategoryAll followed by each distinct category in order of
// first appearance.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	out := []string{CategoryAll}

	for _, q := range quotes {
		if q.Category == CategoryAll {
			continue
		}

		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	return out
}

// Filter returns the quotes in category, keeping their order.
// An empty category or CategoryAll returns a copy of the whole collection.
func Filter(quotes []Quote, category string) []Quote {
	if category == "" || category == CategoryAll {
		return append([]Quote{}, quotes...)
	}

	out := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}
