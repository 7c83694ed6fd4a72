package buffer

import (
	"testing"

	"github.com/glme-go/glme/errs"
	"github.com/stretchr/testify/require"
)

func TestNewBufferIsOwned(t *testing.T) {
	b := New(0)
	require.True(t, b.IsOwned())
	require.Equal(t, 0, b.Len())
	require.Equal(t, 0, b.Cap())
}

func TestWriteGrows(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Write([]byte("hello")))
	require.Equal(t, []byte("hello"), b.Bytes())
	require.Equal(t, 5, b.Len())
}

func TestWriteExactCapacityNoResize(t *testing.T) {
	// B1: encoding a byte region of length exactly equal to remaining
	// capacity succeeds without resize.
	region := make([]byte, 5)
	b := Wrap(region, 0)
	require.NoError(t, b.Write([]byte("hello")))
	require.False(t, b.IsOwned())
	require.Equal(t, "hello", string(b.Bytes()))
}

func TestBorrowedBufferRefusesResize(t *testing.T) {
	// B4: a borrowed Buffer refuses resize; encoding into it returns
	// OVERFLOW with the required deficit.
	region := make([]byte, 3)
	b := Wrap(region, 3) // non-empty borrowed: no spare capacity
	err := b.Write([]byte("x"))
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrOverflow)

	n, ok := errs.DeficitOf(err)
	require.True(t, ok)
	require.Equal(t, 1, n)
}

func TestEmptyBorrowedBufferMayGrow(t *testing.T) {
	region := make([]byte, 0)
	b := Wrap(region, 0)
	require.NoError(t, b.Write([]byte("grown")))
	require.True(t, b.IsOwned()) // reallocation transferred ownership
}

func TestReadWriteCursors(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Write([]byte("abcdef")))

	p := make([]byte, 3)
	n := b.Read(p)
	require.Equal(t, 3, n)
	require.Equal(t, "abc", string(p))
	require.Equal(t, 3, b.ReadPos())

	b.Pushback(1)
	require.Equal(t, 2, b.ReadPos())

	b.Seek(0)
	require.Equal(t, 0, b.ReadPos())

	b.Reset()
	require.Equal(t, 0, b.ReadPos())
}

func TestPeekAndAdvance(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Write([]byte{0x01, 0x02, 0x03}))

	got, ok := b.Peek(2)
	require.True(t, ok)
	require.Equal(t, []byte{0x01, 0x02}, got)
	require.Equal(t, 0, b.ReadPos()) // Peek does not advance

	b.Advance(2)
	require.Equal(t, 2, b.ReadPos())

	_, ok = b.Peek(5)
	require.False(t, ok)
}

func TestClearRetainsCapacity(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Write([]byte("hello")))
	cap0 := b.Cap()

	b.Clear()
	require.Equal(t, 0, b.Len())
	require.Equal(t, 0, b.ReadPos())
	require.Equal(t, cap0, b.Cap())
}

func TestDisownOwn(t *testing.T) {
	b := New(4)
	b.Disown()
	require.False(t, b.IsOwned())

	err := b.Write([]byte("too long"))
	require.Error(t, err)

	b.Own()
	require.True(t, b.IsOwned())
	require.NoError(t, b.Write([]byte("ok")))
}

func TestCloseReleasesOwnedStorage(t *testing.T) {
	b := New(16)
	require.NoError(t, b.Write([]byte("data")))
	b.Close()
	require.Equal(t, 0, b.Len())
	require.Equal(t, 0, b.Cap())
}

func TestCloseKeepsBorrowedStorage(t *testing.T) {
	region := make([]byte, 16)
	b := Wrap(region, 4)
	b.Close()
	require.Equal(t, 0, b.Len()) // cursor zeroed
	require.Len(t, region, 16)   // caller's region untouched
}

func TestNewPooledIsOwnedAndGrows(t *testing.T) {
	b := NewPooled()
	require.True(t, b.IsOwned())
	require.Equal(t, 0, b.Len())
	require.NoError(t, b.Write([]byte("hello")))
	require.Equal(t, "hello", string(b.Bytes()))
}

func TestClosePooledBufferReturnsToFreelist(t *testing.T) {
	b := NewPooled()
	require.NoError(t, b.Write([]byte("data")))
	b.Close()
	require.Equal(t, 0, b.Len())
	require.Equal(t, 0, b.Cap())

	// A second pooled buffer may reuse the freelist slot the first
	// returned; either way it starts out empty and owned like any other.
	b2 := NewPooled()
	require.True(t, b2.IsOwned())
	require.Equal(t, 0, b2.Len())
}

func TestReserveFillsExactly(t *testing.T) {
	b := New(0)
	dst := b.Reserve(3)
	require.Len(t, dst, 3)
	dst[0], dst[1], dst[2] = 1, 2, 3
	require.Equal(t, []byte{1, 2, 3}, b.Bytes())
}
