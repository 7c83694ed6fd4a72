package glme

import (
	"bytes"
	"testing"

	"github.com/glme-go/glme/buffer"
	"github.com/glme-go/glme/compress"
	"github.com/glme-go/glme/record"
	"github.com/glme-go/glme/wire"
	"github.com/stretchr/testify/require"
)

type point struct {
	x, y int64
}

func pointFields() []record.FieldDesc[point] {
	return []record.FieldDesc[point]{
		{
			IsAbsent:   func(p *point) bool { return p.x == 0 },
			Encode:     func(b *buffer.Buffer, p *point) error { return wire.WriteInt(b, p.x) },
			Decode:     func(b *buffer.Buffer, p *point) error { v, err := wire.ReadInt(b); p.x = v; return err },
			SetDefault: func(p *point) { p.x = 0 },
		},
		{
			IsAbsent:   func(p *point) bool { return p.y == 0 },
			Encode:     func(b *buffer.Buffer, p *point) error { return wire.WriteInt(b, p.y) },
			Decode:     func(b *buffer.Buffer, p *point) error { v, err := wire.ReadInt(b); p.y = v; return err },
			SetDefault: func(p *point) { p.y = 0 },
		},
	}
}

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	typeID := TypeID("glme_test.point")
	in := point{x: 3, y: -4}

	var buf bytes.Buffer
	n, err := EncodeMessage(&buf, compress.None, func(b *buffer.Buffer) error {
		return record.Encode(b, typeID, &in, pointFields())
	})
	require.NoError(t, err)
	require.Positive(t, n)

	var out point
	err = DecodeMessage(&buf, 0, func(b *buffer.Buffer) error {
		id, err := record.Decode(b, &out, pointFields())
		require.Equal(t, typeID, id)

		return err
	})
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestEncodeDecodeMessageWithCompression(t *testing.T) {
	typeID := TypeID("glme_test.point")
	in := point{x: 1000, y: 2000}

	var buf bytes.Buffer
	_, err := EncodeMessage(&buf, compress.S2, func(b *buffer.Buffer) error {
		return record.Encode(b, typeID, &in, pointFields())
	})
	require.NoError(t, err)

	var out point
	err = DecodeMessage(&buf, 0, func(b *buffer.Buffer) error {
		_, err := record.Decode(b, &out, pointFields())

		return err
	})
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestTypeIDIsStable(t *testing.T) {
	require.Equal(t, TypeID("glme_test.point"), TypeID("glme_test.point"))
}
