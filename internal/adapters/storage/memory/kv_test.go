package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
)

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, found, err := s.Get(ctx, "quotes")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "quotes", "[]"))
	require.NoError(t, s.Set(ctx, "quotes", `[{"id":"1"}]`))

	v, found, err := s.Get(ctx, "quotes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"1"}]`, v)
}

func TestStore_Quota(t *testing.T) {
	ctx := context.Background()
	s := New(WithQuota(40), WithValue("selectedCategory", "all"))

	require.NoError(t, s.Set(ctx, "quotes", "[]"))

	err := s.Set(ctx, "quotes", `[{"id":"much too long"}]`)
	require.ErrorIs(t, err, domain.ErrStorageWrite)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	v, _, _ := s.Get(ctx, "quotes")
	assert.Equal(t, "[]", v, "failed write leaves the old value")

	s.SetQuota(0)
	require.NoError(t, s.Set(ctx, "quotes", `[{"id":"much too long"}]`))
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()

	_, _, err := s.Get(ctx, "quotes")
	require.ErrorIs(t, err, context.Canceled)

	err = s.Set(ctx, "quotes", "[]")
	require.ErrorIs(t, err, domain.ErrStorageWrite)
}
