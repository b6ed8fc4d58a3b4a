// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

import "io"

// Flusher is the sink-provided hook Output uses to drain a Buffer.
// startIndex/endIndex bound the range of valid bytes. Flusher may return
// any error, which Output propagates verbatim; it must not retain buf past
// return.
type Flusher func(buf *Buffer, startIndex, endIndex int) error

// outputSlot is the Buffer Output is currently accumulating writes into.
type outputSlot struct {
	buf        *Buffer
	writeIndex int
}

// Output is a push-based writer that accumulates typed writes into pooled
// Buffers and flushes them downstream. It is not safe for concurrent use.
type Output struct {
	pool       BufferPool
	bufferSize int
	flush      Flusher
	sink       io.Closer

	cur    *outputSlot
	closed bool
}

// NewOutput builds an Output that borrows Buffers of bufferSize bytes from
// pool and drains them by calling flush. sink, if non-nil, is closed when
// the Output is closed. bufferSize must match the capacity Buffers borrowed
// from pool actually have; it is used only to decide when WriteBuffer's
// direct-forward bypass applies.
func NewOutput(pool BufferPool, bufferSize int, flush Flusher, sink io.Closer) *Output {
	return &Output{pool: pool, bufferSize: bufferSize, flush: flush, sink: sink}
}

// WriteByte appends one byte, borrowing a Buffer if none is current, and
// flushing when the current Buffer fills.
func (o *Output) WriteByte(b byte) error {
	if o.closed {
		return ErrClosed
	}
	if o.cur == nil {
		buf, err := o.pool.Borrow()
		if err != nil {
			return err
		}
		o.cur = &outputSlot{buf: buf}
	}
	if err := o.cur.buf.Set(o.cur.writeIndex, b); err != nil {
		return err
	}
	o.cur.writeIndex++
	if o.cur.writeIndex == o.cur.buf.Capacity() {
		return o.flushCurrent()
	}
	return nil
}

// WriteBuffer appends the bytes of src. When src is too large to fit in a
// single pooled Buffer, Output flushes its current Buffer and forwards src
// directly to flush, without first copying it into a pooled Buffer.
func (o *Output) WriteBuffer(src *Buffer) error {
	if o.closed {
		return ErrClosed
	}
	n := src.Capacity()
	if n == 0 {
		return nil
	}
	if n > o.bufferSize {
		if err := o.flushCurrent(); err != nil {
			return err
		}
		return o.flush(src, 0, n)
	}
	data, _ := src.Bytes(0, n)
	return o.writeBytes(data)
}

func (o *Output) writeBytes(p []byte) error {
	off := 0
	for off < len(p) {
		if o.cur == nil {
			buf, err := o.pool.Borrow()
			if err != nil {
				return err
			}
			o.cur = &outputSlot{buf: buf}
		}
		room := o.cur.buf.Capacity() - o.cur.writeIndex
		take := len(p) - off
		if take > room {
			take = room
		}
		dst, _ := o.cur.buf.Bytes(o.cur.writeIndex, o.cur.writeIndex+take)
		copy(dst, p[off:off+take])
		o.cur.writeIndex += take
		off += take
		if o.cur.writeIndex == o.cur.buf.Capacity() {
			if err := o.flushCurrent(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushCurrent flushes the current Buffer, if any has writeIndex > 0, and
// releases it back to the pool. On a flush error, the current Buffer is
// left in place with undefined contents so Close can still recycle it.
func (o *Output) flushCurrent() error {
	if o.cur == nil || o.cur.writeIndex == 0 {
		return nil
	}
	buf := o.cur.buf
	n := o.cur.writeIndex
	if err := o.flush(buf, 0, n); err != nil {
		return err
	}
	o.cur = nil
	return o.pool.Recycle(buf)
}

// acceptTransfer is the Output-side half of the Input->Output zero-copy
// bridge: it flushes whatever the Output was accumulating first (to
// preserve delivery order), then hands buf straight to flush without
// touching Output's own pool.
func (o *Output) acceptTransfer(buf *Buffer, start, end int) error {
	if o.closed {
		return ErrClosed
	}
	if err := o.flushCurrent(); err != nil {
		return err
	}
	return o.flush(buf, start, end)
}

// Flush flushes the current Buffer (if any) to the external consumer and
// releases it.
func (o *Output) Flush() error {
	if o.closed {
		return ErrClosed
	}
	return o.flushCurrent()
}

// Close flushes any pending bytes, recycles the current Buffer regardless
// of whether that flush succeeded, and closes the external sink. Close is
// idempotent; every other operation on a closed Output fails.
func (o *Output) Close() error {
	if o.closed {
		return nil
	}
	ferr := o.flushCurrent()
	o.closed = true
	if o.cur != nil {
		_ = o.pool.Recycle(o.cur.buf)
		o.cur = nil
	}
	if o.sink != nil {
		if serr := o.sink.Close(); serr != nil && ferr == nil {
			return serr
		}
	}
	return ferr
}
