package gridsynth

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/OrtegaSA/cqc-qhe-repo/utils/buffer"
)

const keySize = 32

// cacheMagic identifies a persisted rotation cache.
var cacheMagic = [4]byte{'C', 'Q', 'R', '1'}

// cacheKey derives the cache key of a synthesis request.
func cacheKey(theta, eps float64, seed *int64) (key [keySize]byte) {

	h := blake3.New()

	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(theta))
	h.Write(b[:])
	binary.BigEndian.PutUint64(b[:], math.Float64bits(eps))
	h.Write(b[:])

	if seed != nil {
		h.Write([]byte{1})
		binary.BigEndian.PutUint64(b[:], uint64(*seed))
		h.Write(b[:])
	} else {
		h.Write([]byte{0})
	}

	copy(key[:], h.Sum(nil))

	return
}

// Cache memoizes synthesized sequences across calls and runs, keyed by the
// angle, error and seed of the request. It persists as a snappy-compressed
// file, by default the one at [DefaultCachePath]. All methods are safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[[keySize]byte]Sequence
}

// DefaultCachePath returns the location of the per-user rotation cache.
func DefaultCachePath() (string, error) {

	home, err := Home()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, "cache", "rotations.bin"), nil
}

// NewCache loads the cache persisted at path. A missing, unreadable or
// corrupt file starts an empty cache.
func NewCache(path string) *Cache {

	c := &Cache{
		path:    path,
		entries: map[[keySize]byte]Sequence{},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return c
	}

	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		return c
	}

	entries, err := decodeEntries(decoded)
	if err != nil {
		return c
	}

	c.entries = entries

	return c
}

// Len returns the number of cached sequences.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Lookup returns the sequence cached for the given request, if any.
func (c *Cache) Lookup(theta, eps float64, seed *int64) (Sequence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq, ok := c.entries[cacheKey(theta, eps, seed)]
	return seq, ok
}

// Store caches the sequence for the given request. [Cache.Save] persists it.
func (c *Cache) Store(theta, eps float64, seed *int64, seq Sequence) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(theta, eps, seed)] = seq
}

// Save persists the cache to its file, creating the parent directory if
// needed.
func (c *Cache) Save() error {

	c.mu.Lock()
	decoded, err := encodeEntries(c.entries)
	c.mu.Unlock()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errors.Wrap(err, "cannot create the cache directory")
	}

	return errors.Wrap(os.WriteFile(c.path, snappy.Encode(nil, decoded), 0o644), "cannot write the cache file")
}

func encodeEntries(entries map[[keySize]byte]Sequence) ([]byte, error) {

	size := 4 + 4
	for _, seq := range entries {
		size += keySize + 4 + len(seq)
	}

	w := buffer.NewBufferSize(size)

	if _, err := buffer.WriteUint8Slice(w, cacheMagic[:]); err != nil {
		return nil, err
	}

	if _, err := buffer.WriteUint32(w, uint32(len(entries))); err != nil {
		return nil, err
	}

	for key, seq := range entries {

		if _, err := buffer.WriteUint8Slice(w, key[:]); err != nil {
			return nil, err
		}

		if _, err := buffer.WriteString(w, string(seq)); err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

func decodeEntries(decoded []byte) (map[[keySize]byte]Sequence, error) {

	r := buffer.NewBuffer(decoded)

	var magic [4]byte
	if _, err := buffer.ReadUint8Slice(r, magic[:]); err != nil {
		return nil, err
	}

	if magic != cacheMagic {
		return nil, errors.Errorf("invalid magic number %v", magic)
	}

	var count uint32
	if _, err := buffer.ReadUint32(r, &count); err != nil {
		return nil, err
	}

	entries := make(map[[keySize]byte]Sequence, count)

	for i := uint32(0); i < count; i++ {

		var key [keySize]byte
		if _, err := buffer.ReadUint8Slice(r, key[:]); err != nil {
			return nil, err
		}

		var raw string
		if _, err := buffer.ReadString(r, &raw); err != nil {
			return nil, err
		}

		seq, err := ParseSequence(raw)
		if err != nil {
			return nil, err
		}

		entries[key] = seq
	}

	return entries, nil
}
