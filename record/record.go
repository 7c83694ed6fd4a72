// Package record implements the field-delta record ("struct") framing
// described in section 4.4 of the wire format.
//
// A record type is declared by a caller as a []FieldDesc[T]: one descriptor
// per field, in the order fields are numbered starting from 1. The package
// itself never uses reflection; each descriptor supplies the closures that
// know how to test, encode, decode, and default-reset its one field. This
// mirrors the original C implementation's per-field function-pointer
// tables, expressed here as Go generics over the record's struct type.
package record

import (
	"github.com/glme-go/glme/buffer"
	"github.com/glme-go/glme/errs"
	"github.com/glme-go/glme/registry"
	"github.com/glme-go/glme/varint"
	"github.com/glme-go/glme/wire"
)

// FieldDesc describes one declared field of a record type T.
type FieldDesc[T any] struct {
	// IsAbsent reports whether rec's field currently holds its declared
	// default value (a null pointer, empty string, zero-size array, or
	// whatever the caller decides "default" means for this field). Absent
	// fields are omitted from the wire and their on-wire delta is folded
	// into the next emitted field.
	IsAbsent func(rec *T) bool

	// Encode writes the field's payload in its typed (tagged) wire form.
	// It must not write the field's offset or the record terminator;
	// EncodeValue does that.
	Encode func(b *buffer.Buffer, rec *T) error

	// Decode reads the field's payload, which EncodeValue guarantees
	// starts at a tag byte matching the field's category (a mismatched tag
	// surfaces as errs.ErrType from the wire package's own tag check). If
	// Decode allocates memory for the field and then fails partway through,
	// it must release that allocation itself before returning, per
	// section 4.4's "partial decodes release any memory the decoder
	// allocated for the aborted field".
	Decode func(b *buffer.Buffer, rec *T) error

	// SetDefault restores rec's field to its declared default. Called when
	// the field is absent on the wire (skipped by the encoder, or trailing
	// after the terminator).
	SetDefault func(rec *T)
}

// EncodeValue writes fields' field-sequence and terminator for rec: the
// value form of section 4.4, used both for top-level records (after
// Encode writes the outer type id) and for embedded/pointer record fields
// nested inside another record.
func EncodeValue[T any](b *buffer.Buffer, rec *T, fields []FieldDesc[T]) error {
	delta := 1
	for _, f := range fields {
		if f.IsAbsent(rec) {
			delta++

			continue
		}

		if err := wire.WriteUintValue(b, uint64(delta)); err != nil {
			return err
		}
		if err := f.Encode(b, rec); err != nil {
			return err
		}
		delta = 1
	}

	return wire.WriteUintValue(b, 0) // terminator
}

// Encode writes typeID as a signed varint (the outer form's type id) then
// rec's field sequence, implementing section 4.4's "outer form: type-id |
// field-sequence | 0x00".
func Encode[T any](b *buffer.Buffer, typeID registry.TypeID, rec *T, fields []FieldDesc[T]) error {
	if err := wire.WriteIntValue(b, int64(typeID)); err != nil {
		return err
	}

	return EncodeValue(b, rec, fields)
}

// peekOffset peeks the next unsigned varint in b without consuming it,
// returning its value and encoded length.
func peekOffset(b *buffer.Buffer) (uint64, int, error) {
	v, n := varint.DecodeUint(b.Unread())
	if n < 0 {
		return 0, 0, errs.Underflow(-n - b.Remaining())
	}

	return v, n, nil
}

// DecodeValue reads a field-sequence and terminator into rec, implementing
// section 4.4's decoder discipline: a running delta tracks the next
// expected on-wire field number; fields whose on-wire offset exceeds the
// current delta are absent and restored to their default.
func DecodeValue[T any](b *buffer.Buffer, rec *T, fields []FieldDesc[T]) error {
	delta := 1 // 0 once the terminator has been consumed

	for i := range fields {
		f := &fields[i]

		if delta == 0 {
			f.SetDefault(rec)

			continue
		}

		offset, n, err := peekOffset(b)
		if err != nil {
			return err
		}

		switch {
		case offset == 0:
			b.Advance(n)
			delta = 0
			f.SetDefault(rec)
		case int(offset) > delta:
			delta++
			f.SetDefault(rec)
		case int(offset) == delta:
			b.Advance(n)
			if err := f.Decode(b, rec); err != nil {
				return err
			}
			delta = 1
		default:
			// offset < delta is impossible for a well-formed stream: deltas
			// are monotonically consumed field-by-field and never rewind.
			return errs.ErrInvalid
		}
	}

	if delta != 0 {
		offset, n, err := peekOffset(b)
		if err != nil {
			return err
		}
		if offset != 0 {
			// Trailing on-wire fields beyond the declared field list: schema
			// evolution (renaming/adding fields across versions) is an
			// explicit non-goal, so this is reported rather than skipped.
			return errs.ErrInvalid
		}
		b.Advance(n)
	}

	return nil
}

// Decode requires and consumes a signed-varint type id (the outer form's
// type id) and returns it, then decodes rec's field sequence via
// DecodeValue. The caller may compare the returned id against an expected
// value, or use it to pick which fields to decode for a polymorphic field.
func Decode[T any](b *buffer.Buffer, rec *T, fields []FieldDesc[T]) (registry.TypeID, error) {
	id, err := wire.ReadIntValue(b)
	if err != nil {
		return 0, err
	}
	if err := DecodeValue(b, rec, fields); err != nil {
		return 0, err
	}

	return registry.TypeID(id), nil
}

// EncodeEmbedded writes typeID then rec's field sequence, for use inside a
// FieldDesc.Encode closure implementing section 4.4(d)/(e): an embedded
// record, or a non-null record-pointer field.
func EncodeEmbedded[T any](b *buffer.Buffer, typeID registry.TypeID, rec *T, fields []FieldDesc[T]) error {
	return Encode(b, typeID, rec, fields)
}

// DecodeEmbedded consumes the nested record's type id and decodes its
// field sequence into rec, for use inside a FieldDesc.Decode closure. The
// type id itself is discarded; a caller that needs polymorphic dispatch on
// it should use DecodeDynamic instead.
func DecodeEmbedded[T any](b *buffer.Buffer, rec *T, fields []FieldDesc[T]) error {
	_, err := Decode(b, rec, fields)

	return err
}

// AllocateFor allocates explicitSize bytes through reg, falling back to
// reg's registered size for typeID if explicitSize is 0. Implements
// section 4.4(e)'s "allocate storage (using the registry's type size if
// not supplied)" for a record-pointer field the caller does not know the
// size of ahead of time.
//
// Returns errs.ErrNoSize if no size is available, or errs.ErrNoMemory if
// the registry's allocator returns nil.
func AllocateFor(reg *registry.Registry, typeID registry.TypeID, explicitSize int) ([]byte, error) {
	size := explicitSize
	if size == 0 {
		if reg == nil {
			return nil, errs.ErrNoSize
		}
		spec, ok := reg.Find(typeID)
		if !ok || spec.Size == 0 {
			return nil, errs.ErrNoSize
		}
		size = spec.Size
	}

	out := reg.Allocate(size)
	if out == nil {
		return nil, errs.ErrNoMemory
	}

	return out, nil
}

// EncodeDynamic writes typeID then val's encoded form via encodeFn, or, if
// encodeFn is nil, via reg's registered encoder for typeID. Used for
// record-pointer fields whose concrete type is chosen at runtime rather
// than known statically by the FieldDesc.
//
// Returns errs.ErrNoEncoder if encodeFn is nil and reg has no encoder for
// typeID.
func EncodeDynamic(b *buffer.Buffer, typeID registry.TypeID, val any, reg *registry.Registry, encodeFn registry.EncodeFunc) error {
	if encodeFn == nil {
		if reg == nil {
			return errs.ErrNoEncoder
		}
		spec, ok := reg.Find(typeID)
		if !ok || spec.Encode == nil {
			return errs.ErrNoEncoder
		}
		encodeFn = spec.Encode
	}

	if err := wire.WriteIntValue(b, int64(typeID)); err != nil {
		return err
	}

	return encodeFn(b, val)
}

// DecodeDynamic reads a type id, then decodes via decodeFn, or, if
// decodeFn is nil, via reg's registered decoder for the type id just read.
//
// Returns errs.ErrNoDecoder if decodeFn is nil and reg has no decoder for
// the on-wire type id.
func DecodeDynamic(b *buffer.Buffer, reg *registry.Registry, decodeFn registry.DecodeFunc) (registry.TypeID, any, error) {
	raw, err := wire.ReadIntValue(b)
	if err != nil {
		return 0, nil, err
	}
	typeID := registry.TypeID(raw)

	if decodeFn == nil {
		if reg == nil {
			return typeID, nil, errs.ErrNoDecoder
		}
		spec, ok := reg.Find(typeID)
		if !ok || spec.Decode == nil {
			return typeID, nil, errs.ErrNoDecoder
		}
		decodeFn = spec.Decode
	}

	val, err := decodeFn(b)

	return typeID, val, err
}
