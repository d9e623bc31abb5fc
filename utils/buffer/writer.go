package buffer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Write writes a slice of bytes to w.
func Write(w Writer, c []byte) (n int64, err error) {
	nint, err := w.Write(c)
	return int64(nint), err
}

// WriteUint8 writes a byte c to w.
func WriteUint8(w Writer, c uint8) (n int64, err error) {

	if w.Available() == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available() == 0 {
			return 0, fmt.Errorf("cannot WriteUint8: available buffer is zero even after flush")
		}
	}

	nint, err := w.Write([]byte{c})

	return int64(nint), err
}

// WriteUint8Slice writes a slice of bytes c to w.
func WriteUint8Slice(w Writer, c []uint8) (n int64, err error) {

	if len(c) == 0 {
		return
	}

	// Remaining available space in the internal buffer
	available := w.Available()

	if available == 0 {

		if err = w.Flush(); err != nil {
			return
		}

		available = w.Available()

		if available == 0 {
			return 0, fmt.Errorf("cannot WriteUint8Slice: available buffer is zero even after flush")
		}
	}

	buf := w.AvailableBuffer()

	if N := len(c); N <= available { // If there is enough space in the available buffer
		buf = buf[:N]

		copy(buf, c)

		nint, err := w.Write(buf)

		return int64(nint), err
	}

	// First fills the space
	buf = buf[:available]

	copy(buf, c)

	var inc int
	if inc, err = w.Write(buf); err != nil {
		return n + int64(inc), err
	}

	n += int64(inc)

	// Flushes
	if err = w.Flush(); err != nil {
		return n, err
	}

	// Then recurses on itself with the remaining slice
	var inc64 int64
	inc64, err = WriteUint8Slice(w, c[available:])

	return n + inc64, err
}

// WriteUint32 writes a uint32 c into w.
func WriteUint32(w Writer, c uint32) (n int64, err error) {

	if w.Available()>>2 == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available()>>2 == 0 {
			return 0, fmt.Errorf("cannot WriteUint32: available buffer/4 is zero even after flush")
		}
	}

	buf := w.AvailableBuffer()[:4]
	binary.LittleEndian.PutUint32(buf, c)
	nint, err := w.Write(buf)
	return int64(nint), err
}

// WriteUint32Slice writes a slice of uint32 c into w.
func WriteUint32Slice(w Writer, c []uint32) (n int64, err error) {

	if len(c) == 0 {
		return
	}

	// Remaining available space in the internal buffer
	available := w.Available() >> 2

	if available == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		available = w.Available() >> 2

		if available == 0 {
			return 0, fmt.Errorf("cannot WriteUint32Slice: available buffer/4 is zero even after flush")
		}
	}

	buf := w.AvailableBuffer()

	if N := len(c); N <= available { // If there is enough space in the available buffer
		buf = buf[:N<<2]
		for i := 0; i < N; i++ {
			binary.LittleEndian.PutUint32(buf[i<<2:], c[i])
		}

		nint, err := w.Write(buf)

		return int64(nint), err
	}

	// First fills the space
	buf = buf[:available<<2]
	for i := 0; i < available; i++ {
		binary.LittleEndian.PutUint32(buf[i<<2:], c[i])
	}

	var inc int
	if inc, err = w.Write(buf); err != nil {
		return n + int64(inc), err
	}

	n += int64(inc)

	// Flushes
	if err = w.Flush(); err != nil {
		return n, err
	}

	// Then recurses on itself with the remaining slice
	var inc64 int64
	inc64, err = WriteUint32Slice(w, c[available:])

	return n + inc64, err
}

// WriteUint64 writes a uint64 c into w.
func WriteUint64(w Writer, c uint64) (n int64, err error) {

	if w.Available()>>3 == 0 {
		if err = w.Flush(); err != nil {
			return
		}

		if w.Available()>>3 == 0 {
			return 0, fmt.Errorf("cannot WriteUint64: available buffer/8 is zero even after flush")
		}
	}

	buf := w.AvailableBuffer()[:8]

	binary.LittleEndian.PutUint64(buf, c)

	nint, err := w.Write(buf)

	return int64(nint), err
}

// WriteInt writes an int c into w, encoded as a uint64.
func WriteInt(w Writer, c int) (n int64, err error) {
	return WriteUint64(w, uint64(c))
}

// WriteFloat64 writes a float64 c into w, encoded as its IEEE 754 binary
// representation.
func WriteFloat64(w Writer, c float64) (n int64, err error) {
	return WriteUint64(w, math.Float64bits(c))
}

// WriteFloat64Slice writes a slice of float64 c into w.
func WriteFloat64Slice(w Writer, c []float64) (n int64, err error) {

	var inc int64
	for i := range c {
		if inc, err = WriteFloat64(w, c[i]); err != nil {
			return n + inc, err
		}
		n += inc
	}

	return
}

// WriteString writes a length-prefixed string c into w.
func WriteString(w Writer, c string) (n int64, err error) {

	if n, err = WriteUint32(w, uint32(len(c))); err != nil {
		return
	}

	var inc int64
	inc, err = WriteUint8Slice(w, []byte(c))

	return n + inc, err
}
