// Package compress provides optional payload compression for framed
// stream messages.
//
// A Codec is a paired Compressor/Decompressor. The package assigns each
// built-in codec a one-byte CodecID so a reader can recover which codec
// produced a payload without out-of-band configuration; stream framing
// (see the stream package) writes that id as the first byte of a frame.
package compress

import "fmt"

// Compressor compresses a byte payload.
//
// Memory management: the returned slice is newly allocated and owned by
// the caller; the input slice is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte payload produced by the matching
// Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines compression and decompression.
type Codec interface {
	Compressor
	Decompressor
}

// CodecID identifies a Codec on the wire: the leading byte of a stream
// frame (see stream.WriteMessage/ReadMessage).
type CodecID byte

const (
	// None passes payloads through unmodified.
	None CodecID = iota
	// Zstd compresses with pure-Go Zstandard, favoring ratio over speed.
	Zstd
	// S2 compresses with Snappy-compatible S2, favoring speed over ratio.
	S2
	// LZ4 compresses with LZ4 block format.
	LZ4
)

func (id CodecID) String() string {
	switch id {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", byte(id))
	}
}

var builtinCodecs = map[CodecID]Codec{
	None: NewNoOpCodec(),
	Zstd: NewZstdCodec(),
	S2:   NewS2Codec(),
	LZ4:  NewLZ4Codec(),
}

var namesToID = map[string]CodecID{
	"none": None,
	"zstd": Zstd,
	"s2":   S2,
	"lz4":  LZ4,
}

// ByID returns the built-in Codec registered for id.
func ByID(id CodecID) (Codec, error) {
	if c, ok := builtinCodecs[id]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("compress: unknown codec id %d", byte(id))
}

// IDOf resolves a codec name ("none", "zstd", "s2", "lz4") to its CodecID,
// for callers that would rather configure a codec by name than by the raw
// byte value.
func IDOf(name string) (CodecID, bool) {
	id, ok := namesToID[name]

	return id, ok
}
