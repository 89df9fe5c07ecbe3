package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// exercise runs the same scenario on any store.
func exercise(t *testing.T, s kv) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "mm.test.items")
	require.NoError(t, err)
	assert.False(t, ok, "missing key")

	require.NoError(t, s.Set(ctx, "mm.test.items", `{"v":1,"items":[]}`))
	require.NoError(t, s.Set(ctx, "mm.test.scenario", `{"v":1,"value":"btc"}`))
	require.NoError(t, s.Set(ctx, "mm.test.items", `{"v":1,"items":[{}]}`))

	v, ok, err := s.Get(ctx, "mm.test.items")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"v":1,"items":[{}]}`, v, "last write wins")

	require.NoError(t, s.Delete(ctx, "mm.test.items", "mm.test.scenario", "mm.test.never"))
	for _, k := range []string{"mm.test.items", "mm.test.scenario"} {
		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
}

func TestMemory(t *testing.T) { exercise(t, NewMemory()) }

func TestDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "state")
	d := NewDir(root)
	exercise(t, d)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temporary file left behind")

	assert.Error(t, d.Set(context.Background(), "../escape", "x"))
}

// TestRedis needs a server, it runs when REDIS_ADDR is set.
func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r, err := NewRedis(context.Background(), RedisOptions{Addr: addr, DB: 15})
	require.NoError(t, err)
	defer r.Close()
	exercise(t, r)
}
