package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "snap:sol", []byte("a"), time.Second))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("b"), 0))

	b, ok, err := c.GetBytes(ctx, "snap:sol")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), b)

	now = now.Add(2 * time.Second)
	_, ok, _ = c.GetBytes(ctx, "snap:sol")
	assert.False(t, ok)

	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
}

func TestTTLCacheCopiesAndSweeps(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	v := []byte("abc")
	require.NoError(t, c.SetBytes(ctx, "k", v, time.Second))
	v[0] = 'z'
	b, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(b))

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.Sweep())
}
