package buffer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ReadUint8 reads a byte from r into c.
func ReadUint8(r Reader, c *uint8) (n int, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint8: c is nil")
	}

	var bb = [1]byte{}

	if n, err = r.Read(bb[:]); err != nil {
		return
	}

	*c = bb[0]

	return n, nil
}

// ReadUint8Slice reads a slice of bytes from r into c.
func ReadUint8Slice(r Reader, c []uint8) (n int, err error) {
	return r.Read(c)
}

// ReadUint32 reads a uint32 from r into c.
func ReadUint32(r Reader, c *uint32) (n int, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint32: c is nil")
	}

	var bb = [4]byte{}

	if n, err = r.Read(bb[:]); err != nil {
		return
	}

	*c = binary.LittleEndian.Uint32(bb[:])

	return n, nil
}

// ReadUint32Slice reads a slice of uint32 from r into c.
func ReadUint32Slice(r Reader, c []uint32) (n int, err error) {

	// c is empty, return
	if len(c) == 0 {
		return
	}

	var slice []byte

	// Avoid EOF
	size := r.Size()
	if len(c)<<2 < size {
		size = len(c) << 2
	}

	// Then returns the writen bytes
	if slice, err = r.Peek(size); err != nil {
		return
	}

	buffered := len(slice) >> 2

	// If the slice to write on is equal or smaller than the amount peaked
	if N := len(c); N <= buffered {

		for i, j := 0, 0; i < N; i, j = i+1, j+4 {
			c[i] = binary.LittleEndian.Uint32(slice[j:])
		}

		return r.Discard(N << 2) // Discards what was read
	}

	// Decodes the maximum
	for i, j := 0, 0; i < buffered; i, j = i+1, j+4 {
		c[i] = binary.LittleEndian.Uint32(slice[j:])
	}

	// Discard what was peeked
	var inc int
	if inc, err = r.Discard(len(slice)); err != nil {
		return n + inc, err
	}

	n += inc

	// Recurses on the remaining slice to fill
	if inc, err = ReadUint32Slice(r, c[buffered:]); err != nil {
		return n + inc, err
	}

	return n + inc, nil
}

// ReadUint64 reads a uint64 from r into c.
func ReadUint64(r Reader, c *uint64) (n int, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint64: c is nil")
	}

	var bb = [8]byte{}

	if n, err = r.Read(bb[:]); err != nil {
		return
	}

	*c = binary.LittleEndian.Uint64(bb[:])

	return n, nil
}

// ReadInt reads an int encoded as a uint64 from r into c.
func ReadInt(r Reader, c *int) (n int, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadInt: c is nil")
	}

	var v uint64
	if n, err = ReadUint64(r, &v); err != nil {
		return
	}

	*c = int(v)

	return n, nil
}

// ReadFloat64 reads a float64 from r into c.
func ReadFloat64(r Reader, c *float64) (n int, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadFloat64: c is nil")
	}

	var v uint64
	if n, err = ReadUint64(r, &v); err != nil {
		return
	}

	*c = math.Float64frombits(v)

	return n, nil
}

// ReadFloat64Slice reads a slice of float64 from r into c.
func ReadFloat64Slice(r Reader, c []float64) (n int, err error) {

	var inc int
	for i := range c {
		if inc, err = ReadFloat64(r, &c[i]); err != nil {
			return n + inc, err
		}
		n += inc
	}

	return
}

// ReadString reads a length-prefixed string from r into c.
func ReadString(r Reader, c *string) (n int, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadString: c is nil")
	}

	var size uint32
	if n, err = ReadUint32(r, &size); err != nil {
		return
	}

	bb := make([]byte, size)

	var inc int
	if inc, err = ReadUint8Slice(r, bb); err != nil {
		return n + inc, err
	}

	*c = string(bb)

	return n + inc, nil
}
