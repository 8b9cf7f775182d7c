package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_SetGetExpire(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()

	now := time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_EvictsWhenFull(t *testing.T) {
	c := NewMemoryClient(2)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "new", []byte("3"), time.Hour))

	assert.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	type payload struct{ IDs []int }
	require.NoError(t, SetJSON(ctx, c, Key("search", "sony"), payload{IDs: []int{1, 3}}, time.Minute))

	var got payload
	require.NoError(t, GetJSON(ctx, c, "search:sony", &got))
	assert.Equal(t, []int{1, 3}, got.IDs)

	assert.ErrorIs(t, GetJSON(ctx, c, "search:bose", &got), ErrCacheMiss)
	assert.ErrorIs(t, GetJSON(ctx, Nop{}, "search:sony", &got), ErrCacheMiss)
}
