// Package buffer implements the growable byte buffer described in section
// 4.2 of the wire format: a contiguous byte region with a write cursor, a
// read cursor, and an ownership flag distinguishing owned memory (grown by
// reallocation) from borrowed memory (never reallocated).
//
// A Buffer additionally carries a pointer to an optional type registry, an
// opaque user-context slot, and a last-error slot, so that the record
// layer (which needs the registry for allocation) and callers (who may
// want to thread state through nested decodes, e.g. to patch back-pointers
// in a decoded tree) have somewhere to put that state without a parallel
// parameter on every call.
package buffer

import (
	"github.com/glme-go/glme/errs"
	"github.com/glme-go/glme/internal/pool"
)

// Buffer is a single-owner, growable byte region with independent read and
// write cursors. It is not safe for concurrent use; distinct Buffers may be
// used in parallel.
type Buffer struct {
	data   []byte // data[:w] is filled; cap(data) is the region's capacity
	w      int    // write cursor: 0 <= w <= cap(data)
	r      int    // read cursor: 0 <= r <= w
	own    bool   // true if this Buffer may reallocate data
	pooled bool   // true if data was sourced from pool.Get and should return there on Close

	// Registry resolves encoder/decoder functions and allocation sizes for
	// record-pointer fields the record layer decodes. Nil if the caller
	// never needs automatic decode-time allocation.
	Registry Registry

	// Context is an opaque slot for caller state, e.g. a decoder can thread
	// a pointer here to let a decoded tree's children link back to their
	// parent once decode of the whole tree completes (see spec.md section 9
	// on recursion and pointer graphs).
	Context any

	err error // last error recorded by a failed operation
}

// Registry is the subset of registry.Registry the buffer needs to expose
// to callers without importing the registry package (which itself does
// not depend on buffer), avoiding an import cycle between the two.
type Registry interface {
	// Allocate returns a zeroed byte slice of n bytes, or nil on failure.
	Allocate(n int) []byte
}

// New allocates a Buffer with the given initial capacity (possibly 0),
// marked owned: it will grow by reallocation as needed.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}

	return &Buffer{
		data: make([]byte, 0, capacity),
		own:  true,
	}
}

// NewPooled allocates a Buffer backed by a slice drawn from internal/pool's
// freelist (see pool.Get) instead of a fresh make, for callers making many
// short-lived encode calls in succession (e.g. glme.EncodeMessage). The
// buffer is marked owned like New; Close returns its storage to the
// freelist instead of discarding it, via pool.Put.
func NewPooled() *Buffer {
	return &Buffer{
		data:   pool.Get(),
		own:    true,
		pooled: true,
	}
}

// Wrap creates a Buffer over an external region, marked borrowed: it will
// never reallocate the region (a zero-length region has no storage to
// keep, so Grow replaces it with owned storage). The first filled bytes of region are treated as
// meaningful data already present in the buffer (available for reading);
// the rest is spare capacity available for writes up to len(region).
//
// Panics if filled is out of [0, len(region)], a programming error at the
// call site rather than a recoverable runtime condition.
func Wrap(region []byte, filled int) *Buffer {
	if filled < 0 || filled > len(region) {
		panic("buffer: filled out of range")
	}

	return &Buffer{
		data: region[:filled:len(region)],
		w:    filled,
		own:  false,
	}
}

// Len returns the number of filled bytes (the write cursor position).
func (b *Buffer) Len() int { return b.w }

// Cap returns the buffer's current capacity.
func (b *Buffer) Cap() int { return cap(b.data) }

// ReadPos returns the current read cursor position.
func (b *Buffer) ReadPos() int { return b.r }

// Remaining returns the number of unread filled bytes (w - r).
func (b *Buffer) Remaining() int { return b.w - b.r }

// Bytes returns the filled region of the buffer. The caller must not
// retain the slice across a call that may reallocate (Grow on an owned,
// growing buffer).
func (b *Buffer) Bytes() []byte { return b.data[:b.w] }

// Unread returns the unread suffix of the filled region, data[r:w].
func (b *Buffer) Unread() []byte { return b.data[b.r:b.w] }

// IsOwned reports whether the buffer may reallocate its storage.
func (b *Buffer) IsOwned() bool { return b.own }

// Err returns the last error recorded by a failed operation. It is not
// cleared automatically; call ClearErr to clear it.
func (b *Buffer) Err() error { return b.err }

// ClearErr clears the last-error slot.
func (b *Buffer) ClearErr() { b.err = nil }

func (b *Buffer) setErr(err error) error {
	b.err = err

	return err
}

// Grow ensures at least extra bytes of spare write capacity exist beyond
// the write cursor, reallocating if necessary.
//
// This implements section 4.2's resize(delta) contract: an owned buffer
// (or a borrowed one with no storage at all, which has nothing to
// preserve) grows in a single step by max(cap, 1024 bytes), or by extra if
// that is larger; a borrowed buffer with storage refuses to grow and
// records an errs.Overflow error carrying the number of bytes it is short.
//
// Returns the buffer's new capacity, or 0 on failure (err is set).
func (b *Buffer) Grow(extra int) int {
	if extra <= 0 {
		return cap(b.data)
	}

	if cap(b.data)-b.w >= extra {
		return cap(b.data)
	}

	if !b.own && cap(b.data) > 0 {
		b.setErr(errs.Overflow(extra - (cap(b.data) - b.w)))

		return 0
	}

	grown := pool.Grow(b.data, extra)
	if cap(grown)-b.w < extra {
		// pool.Grow adds at least extra bytes, so this is not expected; a
		// shortfall is reported as overflow rather than retried.
		b.setErr(errs.Overflow(extra - (cap(grown) - b.w)))

		return 0
	}

	b.data = grown
	b.own = true // a storage-less borrowed buffer that just grew now owns its storage

	return cap(b.data)
}

// Write appends p to the buffer, growing as needed. Returns
// errs.ErrOverflow (via Grow) if the buffer cannot grow enough.
func (b *Buffer) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}

	if b.Grow(len(p)) == 0 {
		return b.err
	}

	b.data = b.data[:b.w+len(p)]
	copy(b.data[b.w:], p)
	b.w += len(p)

	return nil
}

// WriteByte appends a single byte, growing as needed.
func (b *Buffer) WriteByte(c byte) error {
	if b.Grow(1) == 0 {
		return b.err
	}

	b.data = b.data[:b.w+1]
	b.data[b.w] = c
	b.w++

	return nil
}

// Reserve grows the buffer by n bytes and returns the writable slice for
// those n bytes, advancing the write cursor past them. The caller must
// fill every byte of the returned slice itself. Returns nil if growth
// failed (err is set).
func (b *Buffer) Reserve(n int) []byte {
	if b.Grow(n) == 0 {
		return nil
	}

	start := b.w
	b.data = b.data[:b.w+n]
	b.w += n

	return b.data[start:b.w]
}

// Read copies up to len(p) unread bytes into p, advancing the read cursor,
// and returns the number of bytes copied.
func (b *Buffer) Read(p []byte) int {
	n := copy(p, b.data[b.r:b.w])
	b.r += n

	return n
}

// Peek returns the next n unread bytes without advancing the read cursor.
// Returns nil, false if fewer than n bytes remain.
func (b *Buffer) Peek(n int) ([]byte, bool) {
	if b.w-b.r < n {
		return nil, false
	}

	return b.data[b.r : b.r+n], true
}

// Advance moves the read cursor forward by n bytes without returning them.
// Clamped so the cursor never exceeds the write cursor.
func (b *Buffer) Advance(n int) {
	b.r += n
	if b.r > b.w {
		b.r = b.w
	}
}

// Reset sets the read cursor to 0, so previously written data can be
// re-read from the start.
func (b *Buffer) Reset() { b.r = 0 }

// Seek sets the read cursor to min(p, Len()).
func (b *Buffer) Seek(p int) {
	if p < 0 {
		p = 0
	}
	if p > b.w {
		p = b.w
	}
	b.r = p
}

// Pushback moves the read cursor back by min(n, ReadPos()), re-exposing
// previously read bytes to the next Read/Peek.
func (b *Buffer) Pushback(n int) {
	if n > b.r {
		n = b.r
	}
	b.r -= n
}

// Clear resets both cursors to 0, retaining capacity, so the buffer can be
// reused for a fresh encode without reallocating.
func (b *Buffer) Clear() {
	b.w = 0
	b.r = 0
	b.data = b.data[:0]
}

// Disown flips the buffer to borrowed: it will refuse to grow past its
// current capacity from this point on.
func (b *Buffer) Disown() { b.own = false }

// Own flips the buffer to owned: it may grow by reallocation.
func (b *Buffer) Own() { b.own = true }

// Close releases the buffer's storage if it is owned; a borrowed buffer's
// storage outlives Close since the caller owns it. Storage obtained via
// NewPooled is returned to the freelist (pool.Put) instead of being
// discarded. Both cursors are zeroed either way.
func (b *Buffer) Close() {
	if b.own {
		if b.pooled {
			pool.Put(b.data)
			b.pooled = false
		}
		b.data = nil
	}
	b.w = 0
	b.r = 0
}
