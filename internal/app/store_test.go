package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/mocks"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func storedQuotes(t *testing.T, kv *memory.Store) []domain.Quote {
	t.Helper()

	raw, found, err := kv.Get(context.Background(), KeyQuotes)
	require.NoError(t, err)
	require.True(t, found, "quotes key was never written")

	var quotes []domain.Quote
	require.NoError(t, json.Unmarshal([]byte(raw), &quotes))

	return quotes
}

func TestNewQuoteStore_PanicsWithoutKV(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteStore(nil, discardLogger())
	})
}

func TestQuoteStore_Load(t *testing.T) {
	tests := []struct {
		name        string
		stored      *string
		want        []domain.Quote
		wantCorrupt bool
		wantWrite   bool
	}{
		{
			name:      "absent seeds defaults",
			want:      domain.DefaultQuotes(),
			wantWrite: true,
		},
		{
			name:   "valid array is returned as is",
			stored: ptr(`[{"id":"a","text":"One","category":"X","author":"Me"}]`),
			want:   []domain.Quote{{ID: "a", Text: "One", Category: "X", Author: "Me"}},
		},
		{
			name:   "empty array stays empty",
			stored: ptr(`[]`),
			want:   []domain.Quote{},
		},
		{
			name:        "garbage reseeds",
			stored:      ptr(`{not json`),
			want:        domain.DefaultQuotes(),
			wantCorrupt: true,
			wantWrite:   true,
		},
		{
			name:        "object instead of array reseeds",
			stored:      ptr(`{"id":"a"}`),
			want:        domain.DefaultQuotes(),
			wantCorrupt: true,
			wantWrite:   true,
		},
		{
			name:        "array of scalars reseeds",
			stored:      ptr(`[1,"x",null]`),
			want:        domain.DefaultQuotes(),
			wantCorrupt: true,
			wantWrite:   true,
		},
		{
			name:        "array with only blank quotes reseeds",
			stored:      ptr(`[{"id":"a","text":"  ","category":"X"}]`),
			want:        domain.DefaultQuotes(),
			wantCorrupt: true,
			wantWrite:   true,
		},
		{
			name:        "null reseeds",
			stored:      ptr(`null`),
			want:        domain.DefaultQuotes(),
			wantCorrupt: true,
			wantWrite:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []memory.Option
			if tt.stored != nil {
				opts = append(opts, memory.WithValue(KeyQuotes, *tt.stored))
			}

			kv := memory.New(opts...)
			store := NewQuoteStore(kv, discardLogger())

			got, err := store.Load(context.Background())

			if tt.wantCorrupt {
				require.Error(t, err)
				assert.True(t, domain.IsStorageCorrupt(err))
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.want, got)

			if tt.wantWrite {
				assert.Equal(t, tt.want, storedQuotes(t, kv))
			}
		})
	}
}

func TestQuoteStore_Load_RepairsEntries(t *testing.T) {
	kv := memory.New(memory.WithValue(KeyQuotes,
		`[{"id":"a","text":" keep ","category":" X "},`+
			`{"text":"no id","category":"Y","author":"Ann"},`+
			`{"id":"b","text":"","category":"X"},`+
			`{"id":"c","text":"no category"},`+
			`42]`))
	store := NewQuoteStore(kv, discardLogger())

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.Quote{ID: "a", Text: "keep", Category: "X", Author: domain.UnknownAuthor}, got[0])
	assert.NotEmpty(t, got[1].ID)
	assert.Equal(t, "no id", got[1].Text)
	assert.Equal(t, "Ann", got[1].Author)

	assert.Equal(t, got, storedQuotes(t, kv), "repairs are written back")
}

func TestQuoteStore_Load_ReadFailure(t *testing.T) {
	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mock.Anything, KeyQuotes).Return("", false, errors.New("disk gone"))

	store := NewQuoteStore(kv, discardLogger())

	got, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Equal(t, domain.DefaultQuotes(), got)
	kv.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuoteStore_Load_CorruptAndWriteFails(t *testing.T) {
	kv := memory.New(memory.WithValue(KeyQuotes, "garbage"), memory.WithQuota(1))
	store := NewQuoteStore(kv, discardLogger())

	got, err := store.Load(context.Background())
	require.Error(t, err)

	assert.True(t, domain.IsStorageCorrupt(err))
	assert.True(t, domain.IsStorageWrite(err))
	assert.Equal(t, domain.DefaultQuotes(), got)
}

func TestQuoteStore_Save(t *testing.T) {
	t.Run("nil writes an empty array", func(t *testing.T) {
		kv := memory.New()
		store := NewQuoteStore(kv, discardLogger())

		require.NoError(t, store.Save(context.Background(), nil))

		raw, _, _ := kv.Get(context.Background(), KeyQuotes)
		assert.Equal(t, "[]", raw)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		kv := memory.New(memory.WithQuota(10))
		store := NewQuoteStore(kv, discardLogger())

		err := store.Save(context.Background(), domain.DefaultQuotes())
		require.Error(t, err)
		assert.True(t, domain.IsStorageWrite(err))
		assert.ErrorIs(t, err, memory.ErrQuotaExceeded)
	})

	t.Run("plain errors are wrapped", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore(t)
		kv.EXPECT().Set(mock.Anything, KeyQuotes, "[]").Return(errors.New("read-only"))

		store := NewQuoteStore(kv, discardLogger())

		err := store.Save(context.Background(), []domain.Quote{})
		require.Error(t, err)

		var writeErr *domain.StorageWriteError
		require.ErrorAs(t, err, &writeErr)
		assert.Equal(t, KeyQuotes, writeErr.Key)
	})
}

func TestQuoteStore_Category(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to all", func(t *testing.T) {
		store := NewQuoteStore(memory.New(), discardLogger())
		assert.Equal(t, domain.CategoryAll, store.LoadCategory(ctx))
	})

	t.Run("round trip", func(t *testing.T) {
		store := NewQuoteStore(memory.New(), discardLogger())

		require.NoError(t, store.SaveCategory(ctx, "Motivation"))
		assert.Equal(t, "Motivation", store.LoadCategory(ctx))
	})

	t.Run("read failure falls back to all", func(t *testing.T) {
		kv := mocks.NewMockKeyValueStore(t)
		kv.EXPECT().Get(mock.Anything, KeySelectedCategory).Return("", false, errors.New("boom"))

		store := NewQuoteStore(kv, discardLogger())
		assert.Equal(t, domain.CategoryAll, store.LoadCategory(ctx))
	})

	t.Run("write failure", func(t *testing.T) {
		store := NewQuoteStore(memory.New(memory.WithQuota(1)), discardLogger())

		err := store.SaveCategory(ctx, "Motivation")
		assert.True(t, domain.IsStorageWrite(err))
	})
}

func ptr[T any](v T) *T {
	return &v
}
