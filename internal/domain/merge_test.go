package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name          string
		local         []Quote
		remote        []Quote
		want          []Quote
		wantAdded     int
		wantConflicts int
	}{
		{
			name:          "server wins on conflict",
			local:         []Quote{{ID: "1", Text: "a", Category: "x"}},
			remote:        []Quote{{ID: "1", Text: "b", Category: "x"}},
			want:          []Quote{{ID: "1", Text: "b", Category: "x"}},
			wantConflicts: 1,
		},
		{
			name:      "new remote quote is appended",
			local:     []Quote{{ID: "1", Text: "a", Category: "x"}},
			remote:    []Quote{{ID: "2", Text: "b", Category: "y"}},
			want:      []Quote{{ID: "1", Text: "a", Category: "x"}, {ID: "2", Text: "b", Category: "y"}},
			wantAdded: 1,
		},
		{
			name:   "identical record is not a conflict",
			local:  []Quote{{ID: "1", Text: "a", Category: "x", Author: "z"}},
			remote: []Quote{{ID: "1", Text: "a", Category: "x", Author: "z"}},
			want:   []Quote{{ID: "1", Text: "a", Category: "x", Author: "z"}},
		},
		{
			name:          "author difference counts as conflict",
			local:         []Quote{{ID: "1", Text: "a", Category: "x", Author: "me"}},
			remote:        []Quote{{ID: "1", Text: "a", Category: "x", Author: "User 1"}},
			want:          []Quote{{ID: "1", Text: "a", Category: "x", Author: "User 1"}},
			wantConflicts: 1,
		},
		{
			name:  "local-only records survive in place",
			local: []Quote{{ID: "l1", Text: "mine"}, {ID: "s1", Text: "old"}, {ID: "l2", Text: "also mine"}},
			remote: []Quote{
				{ID: "s1", Text: "new"},
				{ID: "s2", Text: "fresh"},
			},
			want: []Quote{
				{ID: "l1", Text: "mine"},
				{ID: "s1", Text: "new"},
				{ID: "l2", Text: "also mine"},
				{ID: "s2", Text: "fresh"},
			},
			wantAdded:     1,
			wantConflicts: 1,
		},
		{
			name:  "repeated id within one remote page keeps the first",
			local: []Quote{{ID: "1", Text: "a", Category: "x"}},
			remote: []Quote{
				{ID: "2", Text: "first", Category: "y"},
				{ID: "2", Text: "second", Category: "y"},
				{ID: "1", Text: "a", Category: "x"},
				{ID: "1", Text: "changed", Category: "x"},
			},
			want: []Quote{
				{ID: "1", Text: "a", Category: "x"},
				{ID: "2", Text: "first", Category: "y"},
			},
			wantAdded: 1,
		},
		{
			name:   "empty remote keeps local",
			local:  []Quote{{ID: "1"}},
			remote: nil,
			want:   []Quote{{ID: "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Merge(tt.local, tt.remote)

			assert.Equal(t, tt.want, result.Quotes)
			assert.Equal(t, tt.wantAdded, result.Added)
			assert.Equal(t, tt.wantConflicts, result.Conflicts)
		})
	}
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	local := []Quote{{ID: "1", Text: "a"}}
	remote := []Quote{{ID: "1", Text: "b"}}

	Merge(local, remote)

	assert.Equal(t, "a", local[0].Text)
}

func TestMergeResult_Summary(t *testing.T) {
	assert.Equal(t, "Synced with server: no changes.", MergeResult{}.Summary())
	assert.Equal(t, "Synced with server: 3 new, 1 updated (server wins).",
		MergeResult{Added: 3, Conflicts: 1}.Summary())
}
