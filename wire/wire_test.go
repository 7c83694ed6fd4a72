package wire

import (
	"testing"

	"github.com/glme-go/glme/buffer"
	"github.com/glme-go/glme/errs"
	"github.com/glme-go/glme/registry"
	"github.com/stretchr/testify/require"
)

func TestBoolRoundTrip(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteBool(b, true))
	require.NoError(t, WriteBool(b, false))

	got, err := ReadBool(b)
	require.NoError(t, err)
	require.True(t, got)

	got, err = ReadBool(b)
	require.NoError(t, err)
	require.False(t, got)
}

func TestIntRoundTrip(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteInt(b, -12345))
	v, err := ReadInt(b)
	require.NoError(t, err)
	require.Equal(t, int64(-12345), v)
}

func TestUintRoundTrip(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteUint(b, 1<<40))
	v, err := ReadUint(b)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), v)
}

func TestFloatRoundTrip(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteFloat(b, 3.14159))
	v, err := ReadFloat(b)
	require.NoError(t, err)
	require.InDelta(t, 3.14159, v, 1e-12)
}

func TestComplexRoundTrip(t *testing.T) {
	b := buffer.New(0)
	c := complex(1.5, -2.5)
	require.NoError(t, WriteComplex(b, c))
	v, err := ReadComplex(b)
	require.NoError(t, err)
	require.Equal(t, c, v)
}

func TestVectorRoundTripAlloc(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteVector(b, []byte{1, 2, 3, 4}))

	v, err := ReadVector(b, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, v)
}

func TestVectorRoundTripFixedDst(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteVector(b, []byte{1, 2, 3}))

	dst := make([]byte, 5)
	v, err := ReadVector(b, dst, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 0, 0}, v)
}

func TestVectorZeroLengthBoundary(t *testing.T) {
	// B2: decoding a zero-length vector advances the cursor by exactly
	// 1 (tag) + 1 (zero length) and produces no payload bytes.
	b := buffer.New(0)
	require.NoError(t, WriteVector(b, nil))
	require.Equal(t, 2, b.Len())

	v, err := ReadVector(b, nil, nil)
	require.NoError(t, err)
	require.Empty(t, v)
	require.Equal(t, 2, b.ReadPos())
}

func TestStringRoundTrip(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteString(b, "hello"))
	s, err := ReadString(b)
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestStringEmptyRoundTrip(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteString(b, ""))
	s, err := ReadString(b)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestVectorStringTagTolerance(t *testing.T) {
	// A vector tag may be read as a string and vice versa: both are
	// length-prefixed byte payloads and the wire makes no distinction.
	b := buffer.New(0)
	require.NoError(t, WriteVector(b, []byte("hi")))
	s, err := ReadString(b)
	require.NoError(t, err)
	require.Equal(t, "hi", s)

	b2 := buffer.New(0)
	require.NoError(t, WriteString(b2, "hi"))
	v, err := ReadVector(b2, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), v)
}

func TestArrayRoundTrip(t *testing.T) {
	b := buffer.New(0)
	elems := []int64{10, -20, 30}
	require.NoError(t, WriteArrayHeader(b, registry.BuiltinInt, len(elems)))
	for _, e := range elems {
		require.NoError(t, WriteIntValue(b, e))
	}

	elemType, count, err := ReadArrayHeader(b)
	require.NoError(t, err)
	require.Equal(t, registry.BuiltinInt, elemType)
	require.Equal(t, len(elems), count)

	got := make([]int64, count)
	for i := range got {
		v, err := ReadIntValue(b)
		require.NoError(t, err)
		got[i] = v
	}
	require.Equal(t, elems, got)
}

func TestReadWrongTagIsTypeError(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteInt(b, 1))

	_, err := ReadBool(b)
	require.ErrorIs(t, err, errs.ErrType)
}

func TestReadUnderflowPropagates(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, b.WriteByte(Tag(registry.BuiltinInt)))

	_, err := ReadInt(b)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrUnderflow)
}

func TestReadTagUnderflowOnEmptyBuffer(t *testing.T) {
	b := buffer.New(0)
	_, err := ReadInt(b)
	require.ErrorIs(t, err, errs.ErrUnderflow)
}

func TestVectorUnderflowOnTruncatedPayload(t *testing.T) {
	b := buffer.New(0)
	require.NoError(t, WriteVector(b, []byte{1, 2, 3, 4, 5}))
	full := b.Bytes()

	truncated := buffer.Wrap(append([]byte(nil), full[:len(full)-2]...), len(full)-2)
	_, err := ReadVector(truncated, nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrUnderflow)

	n, ok := errs.DeficitOf(err)
	require.True(t, ok)
	require.Equal(t, 2, n)
}
