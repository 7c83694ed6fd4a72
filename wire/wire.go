// Package wire implements the typed value layer described in section 4.3
// of the wire format: one-byte tags for base-typed scalars, length-prefixed
// vectors and strings, and element-typed arrays.
//
// Each base type has a tagged form (tag byte, then payload; used wherever a
// value's type is not already known from context) and an untagged "value"
// form (payload only; used inside arrays and for record fields whose type
// the field descriptor already pins down).
package wire

import (
	"github.com/glme-go/glme/buffer"
	"github.com/glme-go/glme/errs"
	"github.com/glme-go/glme/registry"
	"github.com/glme-go/glme/varint"
)

// Tag returns the one-byte wire tag for id: (id << 1). The shift reserves
// the low bit for future use; signed tags are not used at this layer, per
// the spec's explicit instruction not to re-introduce a signed tag bit.
func Tag(id registry.TypeID) byte {
	return byte(id << 1)
}

// untag recovers the type id a tag byte names.
func untag(t byte) registry.TypeID {
	return registry.TypeID(t >> 1)
}

func writeTag(b *buffer.Buffer, id registry.TypeID) error {
	return b.WriteByte(Tag(id))
}

// expectTag reads and consumes one tag byte, checking it against want. If
// tolerate is also an acceptable tag (the vector/string cross-tolerance
// rule), either passes.
func expectTag(b *buffer.Buffer, want registry.TypeID, tolerate registry.TypeID) error {
	peek, ok := b.Peek(1)
	if !ok {
		return errs.Underflow(1)
	}

	got := untag(peek[0])
	if got != want && got != tolerate {
		return errs.ErrType
	}
	b.Advance(1)

	return nil
}

// WriteBool writes a tagged boolean: tag(BuiltinBool) then a single 0/1 byte.
func WriteBool(b *buffer.Buffer, v bool) error {
	if err := writeTag(b, registry.BuiltinBool); err != nil {
		return err
	}

	return WriteBoolValue(b, v)
}

// WriteBoolValue writes the untagged payload of a boolean value.
func WriteBoolValue(b *buffer.Buffer, v bool) error {
	c := byte(0)
	if v {
		c = 1
	}

	return b.WriteByte(c)
}

// ReadBool reads a tagged boolean written by WriteBool.
func ReadBool(b *buffer.Buffer) (bool, error) {
	if err := expectTag(b, registry.BuiltinBool, registry.BuiltinBool); err != nil {
		return false, err
	}

	return ReadBoolValue(b)
}

// ReadBoolValue reads the untagged payload of a boolean value.
func ReadBoolValue(b *buffer.Buffer) (bool, error) {
	peek, ok := b.Peek(1)
	if !ok {
		return false, errs.Underflow(1)
	}
	b.Advance(1)

	return peek[0] != 0, nil
}

// WriteInt writes a tagged signed integer: tag(BuiltinInt) then a zigzag
// varint.
func WriteInt(b *buffer.Buffer, v int64) error {
	if err := writeTag(b, registry.BuiltinInt); err != nil {
		return err
	}

	return WriteIntValue(b, v)
}

// WriteIntValue writes the untagged zigzag-varint payload of a signed
// integer value.
func WriteIntValue(b *buffer.Buffer, v int64) error {
	return writeVarint(b, varint.MaxLen, func(dst []byte) int {
		return varint.EncodeInt(dst, v)
	})
}

// ReadInt reads a tagged signed integer written by WriteInt.
func ReadInt(b *buffer.Buffer) (int64, error) {
	if err := expectTag(b, registry.BuiltinInt, registry.BuiltinInt); err != nil {
		return 0, err
	}

	return ReadIntValue(b)
}

// ReadIntValue reads the untagged zigzag-varint payload of a signed
// integer value.
func ReadIntValue(b *buffer.Buffer) (int64, error) {
	return readVarint(b, varint.DecodeInt)
}

// WriteUint writes a tagged unsigned integer: tag(BuiltinUint) then a
// varint.
func WriteUint(b *buffer.Buffer, v uint64) error {
	if err := writeTag(b, registry.BuiltinUint); err != nil {
		return err
	}

	return WriteUintValue(b, v)
}

// WriteUintValue writes the untagged varint payload of an unsigned integer
// value.
func WriteUintValue(b *buffer.Buffer, v uint64) error {
	return writeVarint(b, varint.MaxLen, func(dst []byte) int {
		return varint.EncodeUint(dst, v)
	})
}

// ReadUint reads a tagged unsigned integer written by WriteUint.
func ReadUint(b *buffer.Buffer) (uint64, error) {
	if err := expectTag(b, registry.BuiltinUint, registry.BuiltinUint); err != nil {
		return 0, err
	}

	return ReadUintValue(b)
}

// ReadUintValue reads the untagged varint payload of an unsigned integer
// value.
func ReadUintValue(b *buffer.Buffer) (uint64, error) {
	return readVarint(b, varint.DecodeUint)
}

// WriteFloat writes a tagged double: tag(BuiltinFloat) then a
// byte-reversed double encoded as a varint.
func WriteFloat(b *buffer.Buffer, v float64) error {
	if err := writeTag(b, registry.BuiltinFloat); err != nil {
		return err
	}

	return WriteFloatValue(b, v)
}

// WriteFloatValue writes the untagged payload of a double value.
func WriteFloatValue(b *buffer.Buffer, v float64) error {
	return writeVarint(b, varint.MaxLen, func(dst []byte) int {
		return varint.EncodeFloat64(dst, v)
	})
}

// ReadFloat reads a tagged double written by WriteFloat.
func ReadFloat(b *buffer.Buffer) (float64, error) {
	if err := expectTag(b, registry.BuiltinFloat, registry.BuiltinFloat); err != nil {
		return 0, err
	}

	return ReadFloatValue(b)
}

// ReadFloatValue reads the untagged payload of a double value.
func ReadFloatValue(b *buffer.Buffer) (float64, error) {
	return readVarint(b, varint.DecodeFloat64)
}

// WriteComplex writes a tagged complex128: tag(BuiltinComplex) then two
// doubles (real, imaginary).
func WriteComplex(b *buffer.Buffer, v complex128) error {
	if err := writeTag(b, registry.BuiltinComplex); err != nil {
		return err
	}

	return WriteComplexValue(b, v)
}

// WriteComplexValue writes the untagged payload of a complex128 value.
func WriteComplexValue(b *buffer.Buffer, v complex128) error {
	return writeVarint(b, 2*varint.MaxLen, func(dst []byte) int {
		return varint.EncodeComplex128(dst, v)
	})
}

// ReadComplex reads a tagged complex128 written by WriteComplex.
func ReadComplex(b *buffer.Buffer) (complex128, error) {
	if err := expectTag(b, registry.BuiltinComplex, registry.BuiltinComplex); err != nil {
		return 0, err
	}

	return ReadComplexValue(b)
}

// ReadComplexValue reads the untagged payload of a complex128 value.
func ReadComplexValue(b *buffer.Buffer) (complex128, error) {
	return readVarint(b, varint.DecodeComplex128)
}

// WriteVector writes a tagged byte vector: tag(BuiltinVector), a
// length-varint, then the raw bytes.
func WriteVector(b *buffer.Buffer, data []byte) error {
	if err := writeTag(b, registry.BuiltinVector); err != nil {
		return err
	}

	return WriteVectorValue(b, data)
}

// WriteVectorValue writes the untagged length-prefixed payload of a byte
// vector.
func WriteVectorValue(b *buffer.Buffer, data []byte) error {
	if err := WriteUintValue(b, uint64(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	return b.Write(data)
}

// ReadVector reads a tagged byte vector written by WriteVector or
// WriteString (vector/string tags are mutually tolerated per section 4.3).
//
// dst, if non-nil, receives min(len(decoded), len(dst)) bytes, zero-filling
// any remainder, and no allocation occurs. If dst is nil, a fresh slice of
// exactly the decoded length is allocated via alloc (or make, if alloc is
// nil).
func ReadVector(b *buffer.Buffer, dst []byte, alloc func(n int) []byte) ([]byte, error) {
	if err := expectTag(b, registry.BuiltinVector, registry.BuiltinString); err != nil {
		return nil, err
	}

	return ReadVectorValue(b, dst, alloc)
}

// ReadVectorValue reads the untagged length-prefixed payload of a byte
// vector, with the same dst/alloc semantics as ReadVector.
func ReadVectorValue(b *buffer.Buffer, dst []byte, alloc func(n int) []byte) ([]byte, error) {
	n, err := ReadUintValue(b)
	if err != nil {
		return nil, err
	}
	length := int(n)

	payload, ok := b.Peek(length)
	if !ok {
		return nil, errs.Underflow(length - b.Remaining())
	}
	b.Advance(length)

	if dst != nil {
		copied := copy(dst, payload)
		for i := copied; i < len(dst); i++ {
			dst[i] = 0
		}

		return dst, nil
	}

	if alloc == nil {
		alloc = func(n int) []byte { return make([]byte, n) }
	}
	out := alloc(length)
	if out == nil && length > 0 {
		return nil, errs.ErrNoMemory
	}
	copy(out, payload)

	return out, nil
}

// WriteString writes a tagged string: tag(BuiltinString), a length-varint,
// then the UTF-8 bytes with no NUL terminator (per the spec's documented
// choice between the two divergent encodings in the original source: this
// implementation picks the NUL-excluding form).
func WriteString(b *buffer.Buffer, s string) error {
	if err := writeTag(b, registry.BuiltinString); err != nil {
		return err
	}

	return WriteStringValue(b, s)
}

// WriteStringValue writes the untagged length-prefixed payload of a
// string.
func WriteStringValue(b *buffer.Buffer, s string) error {
	if err := WriteUintValue(b, uint64(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}

	return b.Write([]byte(s))
}

// ReadString reads a tagged string written by WriteString or WriteVector.
func ReadString(b *buffer.Buffer) (string, error) {
	if err := expectTag(b, registry.BuiltinString, registry.BuiltinVector); err != nil {
		return "", err
	}

	return ReadStringValue(b)
}

// ReadStringValue reads the untagged length-prefixed payload of a string.
func ReadStringValue(b *buffer.Buffer) (string, error) {
	n, err := ReadUintValue(b)
	if err != nil {
		return "", err
	}
	length := int(n)

	payload, ok := b.Peek(length)
	if !ok {
		return "", errs.Underflow(length - b.Remaining())
	}
	b.Advance(length)

	return string(payload), nil
}

// WriteArrayHeader writes tag(BuiltinArray), the element type id as a
// signed varint, and the element count as an unsigned varint. The caller
// then writes count payloads itself, in the element type's untagged value
// form (or via WriteArrayHeader recursively, for arrays of arrays).
func WriteArrayHeader(b *buffer.Buffer, elemType registry.TypeID, count int) error {
	if err := writeTag(b, registry.BuiltinArray); err != nil {
		return err
	}
	if err := WriteIntValue(b, int64(elemType)); err != nil {
		return err
	}

	return WriteUintValue(b, uint64(count))
}

// ReadArrayHeader reads a header written by WriteArrayHeader, returning the
// element type id and count. The caller then reads count payloads itself.
func ReadArrayHeader(b *buffer.Buffer) (elemType registry.TypeID, count int, err error) {
	if err := expectTag(b, registry.BuiltinArray, registry.BuiltinArray); err != nil {
		return 0, 0, err
	}

	id, err := ReadIntValue(b)
	if err != nil {
		return 0, 0, err
	}

	n, err := ReadUintValue(b)
	if err != nil {
		return 0, 0, err
	}

	return registry.TypeID(id), int(n), nil
}

// writeVarint encodes via fn into a small stack buffer sized maxLen, then
// writes the result through the buffer (so buffer growth is the only
// allocation path, never a temporary slice per call).
func writeVarint(b *buffer.Buffer, maxLen int, fn func(dst []byte) int) error {
	var tmp [2 * varint.MaxLen]byte
	n := fn(tmp[:maxLen])
	if n < 0 {
		return errs.Overflow(-n)
	}

	return b.Write(tmp[:n])
}

// readVarint decodes via fn from the buffer's unread bytes, advancing the
// read cursor by the number of bytes consumed on success.
func readVarint[T any](b *buffer.Buffer, fn func(src []byte) (T, int)) (T, error) {
	v, n := fn(b.Unread())
	if n < 0 {
		var zero T

		return zero, errs.Underflow(-n - b.Remaining())
	}
	b.Advance(n)

	return v, nil
}
