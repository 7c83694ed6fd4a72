// Package glme provides a gob-compatible binary message serialization
// library: variable-length integers, a growable byte buffer, a typed
// value layer, field-delta record framing, a type registry, and
// length-prefixed stream framing with optional payload compression.
//
// # Basic usage
//
// Encoding a record and writing it as a framed stream message:
//
//	type Point struct{ X, Y int64 }
//
//	pointFields := []record.FieldDesc[Point]{
//		{
//			IsAbsent:   func(p *Point) bool { return p.X == 0 },
//			Encode:     func(b *buffer.Buffer, p *Point) error { return wire.WriteInt(b, p.X) },
//			Decode:     func(b *buffer.Buffer, p *Point) error { v, err := wire.ReadInt(b); p.X = v; return err },
//			SetDefault: func(p *Point) { p.X = 0 },
//		},
//		// ... Y field ...
//	}
//
//	n, err := glme.EncodeMessage(w, compress.None, func(b *buffer.Buffer) error {
//		return record.Encode(b, glme.TypeID("demo.point"), &Point{X: 1, Y: 2}, pointFields)
//	})
//
// # Package structure
//
// This package provides convenience wrappers around stream, buffer, and
// registry for the common case of encoding one record into one framed
// message. For fine-grained control (reusing buffers across many
// messages, sharing a registry across goroutines, custom allocators),
// use those packages directly.
package glme

import (
	"io"

	"github.com/glme-go/glme/buffer"
	"github.com/glme-go/glme/compress"
	"github.com/glme-go/glme/registry"
	"github.com/glme-go/glme/stream"
)

// TypeID derives a type id from a human-readable type name, for callers
// who would rather name a record type than hand-assign an integer. See
// registry.NameToID for collision handling.
func TypeID(name string) registry.TypeID {
	return registry.NameToID(name)
}

// EncodeMessage takes a Buffer with pooled storage (buffer.NewPooled),
// calls encode to fill it, then writes it to w as one framed stream
// message via stream.WriteMessage. The buffer is closed before returning,
// which hands its storage back to the pool.
// codec selects optional payload compression (compress.None to disable).
func EncodeMessage(w io.Writer, codec compress.CodecID, encode func(*buffer.Buffer) error) (int, error) {
	b := buffer.NewPooled()
	defer b.Close()

	if err := encode(b); err != nil {
		return 0, err
	}

	return stream.WriteMessage(w, b.Bytes(), codec)
}

// DecodeMessage reads one framed stream message from r via
// stream.ReadMessage (rejecting messages whose decoded length exceeds
// max, or unbounded if max is 0), wraps the payload in a read-only
// Buffer, and calls decode to consume it.
func DecodeMessage(r io.Reader, max int, decode func(*buffer.Buffer) error) error {
	payload, err := stream.ReadMessage(r, max)
	if err != nil {
		return err
	}

	b := buffer.Wrap(payload, len(payload))

	return decode(b)
}
