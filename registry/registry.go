// Package registry implements the type registry described in section 4.5
// of the wire format: a finite table mapping a user type id to
// {element size, encoder function, decoder function}, plus four allocator
// callbacks the record layer routes decode-time allocations through.
//
// Lookup is a linear scan, grounded on the teacher's small
// factory-by-key maps (compress.CreateCodec/GetCodec): the expected
// cardinality is tens of registered record types, where a linear scan is
// simpler and no slower in practice than a hash map.
package registry

import (
	"github.com/glme-go/glme/buffer"
	"github.com/glme-go/glme/errs"
	"github.com/glme-go/glme/internal/hash"
	"github.com/glme-go/glme/internal/options"
)

// TypeID names a type on the wire. The range 1..15 is reserved for
// built-in categories (see the Builtin* constants); 16..2^31-1 names
// user-assigned record types; 0 means "any"/unspecified.
type TypeID uint32

// Builtin type ids, per section 3's "Type identifier" entity.
const (
	BuiltinAny     TypeID = 0
	BuiltinBool    TypeID = 1
	BuiltinInt     TypeID = 2
	BuiltinUint    TypeID = 3
	BuiltinFloat   TypeID = 4
	BuiltinVector  TypeID = 5
	BuiltinString  TypeID = 6
	BuiltinComplex TypeID = 7
	BuiltinArray   TypeID = 10

	// FirstUserID is the smallest type id a caller may assign to a record
	// type; ids below it are reserved for the built-in categories.
	FirstUserID TypeID = 16
)

// NameToID derives a likely-unique user type id from a human-readable type
// name, for callers who would rather name a type than hand-assign an
// integer. See registry.Register for what happens if the derived id
// collides with one already in use.
func NameToID(name string) TypeID {
	return TypeID(hash.TypeID(name))
}

// EncodeFunc encodes val's fields into b. Invoked by the record layer for
// embedded/pointer record fields whose type the caller did not supply an
// explicit encoder for.
type EncodeFunc func(b *buffer.Buffer, val any) error

// DecodeFunc decodes a value of the spec's type from b. Invoked by the
// record layer for record-pointer fields whose caller did not supply an
// explicit decoder.
type DecodeFunc func(b *buffer.Buffer) (any, error)

// TypeSpec associates a user type id with its element size (used to size
// decode-time allocations when a caller omits an explicit size) and its
// encoder/decoder pair.
type TypeSpec struct {
	ID      TypeID
	Size    int // element size in bytes; 0 if the type has no fixed size
	Encode  EncodeFunc
	Decode  DecodeFunc
}

// Allocator bundles the four allocator callbacks a Registry routes
// decode-time allocations through, so a caller may install an arena or an
// instrumented allocator. A nil field falls back to the platform default
// (make/nil, respectively).
type Allocator struct {
	Alloc     func(n int) []byte
	Free      func([]byte)
	Resize    func(b []byte, n int) []byte
	ZeroAlloc func(n int) []byte
}

func defaultAllocator() Allocator {
	return Allocator{
		Alloc: func(n int) []byte { return make([]byte, n) },
		Free:  func([]byte) {},
		Resize: func(b []byte, n int) []byte {
			out := make([]byte, n)
			copy(out, b)

			return out
		},
		ZeroAlloc: func(n int) []byte { return make([]byte, n) },
	}
}

// Registry is a finite table of TypeSpecs plus an Allocator. It is safe to
// share read-only across concurrent Buffers once populated; Register and
// Unregister are not safe to call while any Buffer is actively encoding or
// decoding against it, per spec.md section 5.
type Registry struct {
	specs     []TypeSpec
	capacity  int // 0 means unbounded (owns a growable table)
	owns      bool
	allocator Allocator
}

var _ buffer.Registry = (*Registry)(nil)

// New creates an empty registry backed by a growable table it owns.
func New() *Registry {
	return &Registry{
		owns:      true,
		allocator: defaultAllocator(),
	}
}

// NewFixed creates an empty registry with room for at most capacity type
// specs, per section 4.5's "Stores up to N type-spec records (N chosen at
// init)". Register returns errs.ErrRegistryFull once the table is full.
func NewFixed(capacity int) *Registry {
	return &Registry{
		specs:     make([]TypeSpec, 0, capacity),
		capacity:  capacity,
		owns:      true,
		allocator: defaultAllocator(),
	}
}

// Opt configures a Registry at construction time via NewWithOptions.
type Opt = options.Option[*Registry]

// WithCapacity bounds a registry to capacity slots, equivalent to
// NewFixed(capacity). capacity <= 0 leaves the registry growable.
func WithCapacity(capacity int) Opt {
	return options.NoError(func(r *Registry) {
		if capacity > 0 {
			r.specs = make([]TypeSpec, 0, capacity)
			r.capacity = capacity
		}
	})
}

// WithAllocatorOption installs a's non-nil callbacks as the registry's
// allocator, equivalent to calling WithAllocator after construction.
func WithAllocatorOption(a Allocator) Opt {
	return options.NoError(func(r *Registry) {
		r.WithAllocator(a)
	})
}

// NewWithOptions creates an empty, growable registry and applies opts to
// it in order, for callers who prefer composing options.Option values
// (e.g. building the option list from configuration) over chaining
// New/NewFixed/WithAllocator calls directly.
func NewWithOptions(opts ...Opt) (*Registry, error) {
	r := New()
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// WithAllocator replaces the registry's allocator callbacks. Any nil field
// in a falls back to the platform default.
func (r *Registry) WithAllocator(a Allocator) *Registry {
	if a.Alloc != nil {
		r.allocator.Alloc = a.Alloc
	}
	if a.Free != nil {
		r.allocator.Free = a.Free
	}
	if a.Resize != nil {
		r.allocator.Resize = a.Resize
	}
	if a.ZeroAlloc != nil {
		r.allocator.ZeroAlloc = a.ZeroAlloc
	}

	return r
}

// Find returns the spec registered for id, or false if none is.
func (r *Registry) Find(id TypeID) (TypeSpec, bool) {
	for i := range r.specs {
		if r.specs[i].ID == id {
			return r.specs[i], true
		}
	}

	return TypeSpec{}, false
}

// Register places spec into the registry, reusing the first free slot (an
// entry whose ID was zeroed by Unregister) if one exists, or appending
// otherwise.
//
// Returns the slot index, or an error if spec.ID is already registered, is
// zero (0 means "any", never a live entry's id per section 3's type-spec
// invariant), or the table is fixed-capacity and full.
func (r *Registry) Register(spec TypeSpec) (int, error) {
	if spec.ID == BuiltinAny {
		return -1, errs.ErrInvalid
	}

	free := -1
	for i := range r.specs {
		if r.specs[i].ID == spec.ID {
			return -1, errs.ErrInvalid
		}
		if r.specs[i].ID == BuiltinAny && free == -1 {
			free = i
		}
	}

	if free != -1 {
		r.specs[free] = spec

		return free, nil
	}

	if r.capacity > 0 && len(r.specs) >= r.capacity {
		return -1, errs.ErrRegistryFull
	}

	r.specs = append(r.specs, spec)

	return len(r.specs) - 1, nil
}

// Unregister marks the slot holding id free by zeroing its ID, so a later
// Register call can reuse the slot.
func (r *Registry) Unregister(id TypeID) {
	for i := range r.specs {
		if r.specs[i].ID == id {
			r.specs[i] = TypeSpec{}

			return
		}
	}
}

// Release frees the registry's table if it owns it. After Release, the
// registry holds no specs.
func (r *Registry) Release() {
	if r.owns {
		r.specs = nil
	}
}

// Allocate returns a zeroed byte slice of n bytes via the registry's
// ZeroAlloc allocator, or nil if the allocator itself returns nil (the
// caller should treat that as errs.ErrNoMemory). It implements
// buffer.Registry so a *Registry can be stored directly in a Buffer's
// Registry field.
func (r *Registry) Allocate(n int) []byte {
	return r.allocator.ZeroAlloc(n)
}

// Free returns b to the registry's allocator.
func (r *Registry) Free(b []byte) {
	r.allocator.Free(b)
}

// Resize grows or shrinks b to n bytes via the registry's allocator.
func (r *Registry) Resize(b []byte, n int) []byte {
	return r.allocator.Resize(b, n)
}
