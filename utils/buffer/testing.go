package buffer

import (
	"encoding"
	"io"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestInterface is the interface that serializable objects of this module
// implement.
type TestInterface interface {
	io.WriterTo
	io.ReaderFrom
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	BinarySize() int
}

// RequireSerializerCorrect checks that the given object correctly implements
// the TestInterface: WriteTo must write exactly BinarySize() bytes, ReadFrom
// and UnmarshalBinary must each reconstruct an object equal to the original.
func RequireSerializerCorrect(t *testing.T, object TestInterface) {

	t.Helper()

	size := object.BinarySize()

	buf := NewBufferSize(size)

	n, err := object.WriteTo(buf)
	require.NoError(t, err)
	require.Equal(t, int64(size), n)

	receiver := reflect.New(reflect.TypeOf(object).Elem()).Interface().(TestInterface)

	n, err = receiver.ReadFrom(NewBuffer(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, int64(size), n)
	require.True(t, cmp.Equal(object, receiver))

	p, err := object.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, size, len(p))

	receiver = reflect.New(reflect.TypeOf(object).Elem()).Interface().(TestInterface)
	require.NoError(t, receiver.UnmarshalBinary(p))
	require.True(t, cmp.Equal(object, receiver))
}
