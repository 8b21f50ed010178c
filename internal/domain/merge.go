package domain

import "fmt"

// MergeResult is the outcome of reconciling the local collection with a remote page.
type MergeResult struct {
	// Quotes is the reconciled collection. It replaces the local one.
	Quotes []Quote

	// Added counts remote quotes that were not present locally.
	Added int

	// Conflicts counts local quotes overwritten by a differing remote version.
	Conflicts int
}

// Changed reports whether the merge altered the collection.
func (r MergeResult) Changed() bool {
	return r.Added > 0 || r.Conflicts > 0
}

// Summary is the user-facing sync message.
func (r MergeResult) Summary() string {
	if !r.Changed() {
		return "Synced with server: no changes."
	}

	return fmt.Sprintf("Synced with server: %d new, %d updated (server wins).", r.Added, r.Conflicts)
}

// Merge reconciles local with remote using server-wins on id collisions.
// Local-only quotes are kept in place, new remote quotes are appended in remote
// order. Within one remote page the first record for an id wins and later
// repeats are ignored, so each id counts at most once. Neither input is
// modified.
func Merge(local, remote []Quote) MergeResult {
	merged := append(make([]Quote, 0, len(local)+len(remote)), local...)

	index := make(map[string]int, len(merged))
	for i, q := range merged {
		index[q.ID] = i
	}

	var result MergeResult

	seen := make(map[string]struct{}, len(remote))

	for _, rq := range remote {
		if _, dup := seen[rq.ID]; dup {
			continue
		}

		seen[rq.ID] = struct{}{}

		i, ok := index[rq.ID]
		if !ok {
			index[rq.ID] = len(merged)
			merged = append(merged, rq)
			result.Added++

			continue
		}

		if !merged[i].SameContent(rq) {
			merged[i] = rq
			result.Conflicts++
		}
	}

	result.Quotes = merged

	return result
}
