package gridsynth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {

	path := filepath.Join(t.TempDir(), "rotations.bin")

	cache := NewCache(path)
	require.Equal(t, 0, cache.Len())

	seed := int64(3)

	cache.Store(0.5, 1e-3, nil, "HTSHT")
	cache.Store(0.5, 1e-3, &seed, "THTH")
	cache.Store(1.5, 1e-6, nil, "I")
	require.Equal(t, 3, cache.Len())

	require.NoError(t, cache.Save())

	loaded := NewCache(path)
	require.Equal(t, 3, loaded.Len())

	seq, ok := loaded.Lookup(0.5, 1e-3, nil)
	require.True(t, ok)
	require.Equal(t, Sequence("HTSHT"), seq)

	seq, ok = loaded.Lookup(0.5, 1e-3, &seed)
	require.True(t, ok)
	require.Equal(t, Sequence("THTH"), seq)

	// Same angle, different error or seed.
	_, ok = loaded.Lookup(0.5, 1e-4, nil)
	require.False(t, ok)

	other := int64(4)
	_, ok = loaded.Lookup(0.5, 1e-3, &other)
	require.False(t, ok)
}

func TestCacheCorrupt(t *testing.T) {

	dir := t.TempDir()

	path := filepath.Join(dir, "garbage.bin")
	require.NoError(t, os.WriteFile(path, []byte("not snappy"), 0o644))
	require.Equal(t, 0, NewCache(path).Len())

	path = filepath.Join(dir, "badmagic.bin")
	require.NoError(t, os.WriteFile(path, snappy.Encode(nil, []byte("XXXX....")), 0o644))
	require.Equal(t, 0, NewCache(path).Len())
}
