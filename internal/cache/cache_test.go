package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := New(mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestCache_Roundtrip(t *testing.T) {
	c, _ := newTestCache(t, 30*time.Second)
	ctx := t.Context()

	type payload struct {
		Total  int    `json:"total"`
		Newest string `json:"newest"`
	}

	require.NoError(t, c.Set(ctx, "stats", payload{Total: 7, Newest: "task-1"}))

	var got payload
	require.NoError(t, c.Get(ctx, "stats", &got))
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, "task-1", got.Newest)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c, _ := newTestCache(t, 30*time.Second)

	var got map[string]any
	err := c.Get(t.Context(), "nothing", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t, 30*time.Second)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, "stats", 1))
	require.NoError(t, c.Set(ctx, "recent_tasks", 2))

	require.NoError(t, c.Invalidate(ctx, "stats", "recent_tasks"))

	var got int
	assert.ErrorIs(t, c.Get(ctx, "stats", &got), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "recent_tasks", &got), ErrMiss)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, "stats", 1))

	mr.FastForward(31 * time.Second)

	var got int
	assert.ErrorIs(t, c.Get(ctx, "stats", &got), ErrMiss)
}

func TestNew_UnreachableRedis(t *testing.T) {
	_, err := New("127.0.0.1:1", time.Second)
	assert.Error(t, err)
}
