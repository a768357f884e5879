package httpcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoOp(t *testing.T) {
	cache, err := New("")
	require.NoError(t, err)
	require.False(t, cache.Enabled())

	require.NoError(t, cache.Set(context.Background(), "k", "v", time.Minute))

	var out string
	hit, err := cache.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, cache.InvalidatePrefix(context.Background(), "k"))
	require.NoError(t, cache.Close())
}
