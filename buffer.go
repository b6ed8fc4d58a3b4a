// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

// Buffer is a fixed-capacity byte region with indexed load/store and bulk
// range copy. Capacity never changes over a Buffer's lifetime.
//
// Buffer identity is significant: two distinct Buffers are never equal even
// if their contents match. Input and Output hand Buffer pointers directly
// to fill/flush hooks, and callers may compare those pointers to verify a
// zero-copy transfer actually happened — do not copy a Buffer by value.
type Buffer struct {
	data   []byte
	tag    uint64 // sequence number assigned by the owning Pool, for leak tracking
	origin uint64 // id of the Pool this Buffer was borrowed from; 0 for user-owned
}

// EMPTY is a zero-capacity sentinel Buffer for uninitialized references.
// No operation other than identity comparison (pointer equality with EMPTY)
// is valid on it.
var EMPTY = &Buffer{}

// NewBuffer wraps data as a Buffer without copying it. The returned Buffer
// is user-owned: it did not come from a Pool and Recycle will reject it with
// ErrForeignBuffer. This is the escape hatch Output.WriteBuffer needs to
// forward a caller-supplied payload straight to a flush hook.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// newPooledBuffer wraps data (freshly allocated by a Pool) as a Buffer
// tagged with the pool's id and a per-buffer sequence number, the two
// fields Pool.Recycle needs to tell a foreign Buffer from a double-recycle.
func newPooledBuffer(data []byte, tag, origin uint64) *Buffer {
	return &Buffer{data: data, tag: tag, origin: origin}
}

// Capacity returns the Buffer's fixed byte capacity.
func (b *Buffer) Capacity() int { return len(b.data) }

// Get returns the byte stored at index i.
func (b *Buffer) Get(i int) (byte, error) {
	if i < 0 || i >= len(b.data) {
		return 0, ErrOutOfRange
	}
	return b.data[i], nil
}

// Set stores v at index i.
func (b *Buffer) Set(i int, v byte) error {
	if i < 0 || i >= len(b.data) {
		return ErrOutOfRange
	}
	b.data[i] = v
	return nil
}

// Bytes returns a view of b.data[start:end]. The slice shares storage with
// the Buffer: it is the mechanism fill/flush hooks use to read or write a
// range in bulk (see the external fill/flush contract), and the one Input
// and Output use internally for bulk copies. Callers must not retain the
// returned slice past the point the Buffer could be recycled.
func (b *Buffer) Bytes(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(b.data) {
		return nil, ErrOutOfRange
	}
	return b.data[start:end], nil
}

// CopyTo copies b[srcStart:srcEnd] into dest starting at destStart.
// Overlapping copies (dest == b) are unsupported.
func (b *Buffer) CopyTo(dest *Buffer, srcStart, srcEnd, destStart int) error {
	if srcStart < 0 || srcEnd < srcStart || srcEnd > len(b.data) {
		return ErrOutOfRange
	}
	n := srcEnd - srcStart
	if destStart < 0 || destStart+n > len(dest.data) {
		return ErrOutOfRange
	}
	copy(dest.data[destStart:destStart+n], b.data[srcStart:srcEnd])
	return nil
}
