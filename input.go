// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

import (
	"io"

	"github.com/eapache/queue"
)

// Filler is the source-provided hook Input uses to populate a Buffer.
// startIndex and endIndex bound the writable range; count is in
// [0, endIndex-startIndex]. A return of (0, nil) signals EOF. Filler may
// return any other error, which Input propagates verbatim.
type Filler func(buf *Buffer, startIndex, endIndex int) (int, error)

// inputSlot is one Buffer in the Input's FIFO, together with the range of
// bytes in it that are still unconsumed: [readIndex, writeIndex).
type inputSlot struct {
	buf        *Buffer
	readIndex  int
	writeIndex int
}

// checkpoint is the state Preview needs to replay everything read during
// its block. savedLen is the FIFO length when the checkpoint was taken;
// readIdx holds the actual readIndex of each of those savedLen slots at
// that moment. Only assuming the front slot (position 0) can be partially
// consumed breaks under nesting: an outer preview's block can read across a
// buffer boundary before starting an inner preview, leaving a partially
// consumed slot at position 1 or beyond when the inner checkpoint is taken.
// Recording every slot's actual readIndex, not just the front one's, keeps
// restore correct regardless of nesting depth.
type checkpoint struct {
	savedLen int
	readIdx  []int
}

// Input is a pull-based reader that lazily fills pooled Buffers from fill
// on demand. It is not safe for concurrent use.
type Input struct {
	pool BufferPool
	fill Filler
	src  io.Closer

	fifo        *queue.Queue
	eofSeen     bool
	closed      bool
	checkpoints []checkpoint
}

// NewInput builds an Input that borrows Buffers from pool and populates
// them by calling fill. src, if non-nil, is closed when the Input is
// closed.
func NewInput(pool BufferPool, fill Filler, src io.Closer) *Input {
	return &Input{pool: pool, fill: fill, src: src, fifo: queue.New()}
}

// fillOne borrows a fresh Buffer and runs one fill attempt over its full
// capacity. On EOF (count == 0) the borrowed Buffer is recycled unused and
// eofSeen is latched. On a Filler error, the borrowed Buffer is recycled
// untouched before the error propagates — no partial bytes become visible.
func (in *Input) fillOne() (int, error) {
	buf, err := in.pool.Borrow()
	if err != nil {
		return 0, err
	}
	n, ferr := in.fill(buf, 0, buf.Capacity())
	if ferr != nil {
		_ = in.pool.Recycle(buf)
		return 0, ferr
	}
	if n <= 0 {
		in.eofSeen = true
		_ = in.pool.Recycle(buf)
		return 0, nil
	}
	in.fifo.Add(&inputSlot{buf: buf, writeIndex: n})
	return n, nil
}

// currentSlot scans the FIFO from the front for the first slot with unread
// bytes. During a preview, fully-consumed slots are retained (not popped)
// for replay, so this scan may walk past several of them.
func (in *Input) currentSlot() *inputSlot {
	n := in.fifo.Length()
	for i := 0; i < n; i++ {
		slot := in.fifo.Get(i).(*inputSlot)
		if slot.readIndex < slot.writeIndex {
			return slot
		}
	}
	return nil
}

// ensureReadable returns the current readable slot, filling as needed. A
// nil slot with a nil error means EOF.
func (in *Input) ensureReadable() (*inputSlot, error) {
	for {
		if slot := in.currentSlot(); slot != nil {
			return slot, nil
		}
		if in.eofSeen {
			return nil, nil
		}
		if _, err := in.fillOne(); err != nil {
			return nil, err
		}
	}
}

// available returns the total number of unread bytes currently buffered.
func (in *Input) available() int {
	total := 0
	n := in.fifo.Length()
	for i := 0; i < n; i++ {
		slot := in.fifo.Get(i).(*inputSlot)
		total += slot.writeIndex - slot.readIndex
	}
	return total
}

// reclaim pops and recycles fully-consumed slots from the front of the
// FIFO. It is a no-op while a preview is in progress: consumed slots must
// stay in place so they can be replayed when the preview returns.
func (in *Input) reclaim() {
	if len(in.checkpoints) > 0 {
		return
	}
	for in.fifo.Length() > 0 {
		slot := in.fifo.Peek().(*inputSlot)
		if slot.readIndex < slot.writeIndex {
			break
		}
		in.fifo.Remove()
		_ = in.pool.Recycle(slot.buf)
	}
}

// ReadByte returns the next byte, or io.EOF if the Input is exhausted.
func (in *Input) ReadByte() (byte, error) {
	if in.closed {
		return 0, ErrClosed
	}
	slot, err := in.ensureReadable()
	if err != nil {
		return 0, err
	}
	if slot == nil {
		return 0, io.EOF
	}
	b, _ := slot.buf.Get(slot.readIndex)
	slot.readIndex++
	in.reclaim()
	return b, nil
}

// ReadByteArray reads exactly n bytes when n >= 0 (failing with
// ErrShortRead if EOF arrives first), or all remaining bytes when n < 0.
func (in *Input) ReadByteArray(n int) ([]byte, error) {
	if in.closed {
		return nil, ErrClosed
	}
	if n >= 0 {
		out := make([]byte, n)
		if err := in.readFull(out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var out []byte
	for {
		slot, err := in.ensureReadable()
		if err != nil {
			return out, err
		}
		if slot == nil {
			return out, nil
		}
		chunk, _ := slot.buf.Bytes(slot.readIndex, slot.writeIndex)
		out = append(out, chunk...)
		slot.readIndex = slot.writeIndex
		in.reclaim()
	}
}

func (in *Input) readFull(p []byte) error {
	off := 0
	for off < len(p) {
		slot, err := in.ensureReadable()
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrShortRead
		}
		avail := slot.writeIndex - slot.readIndex
		need := len(p) - off
		take := avail
		if take > need {
			take = need
		}
		chunk, _ := slot.buf.Bytes(slot.readIndex, slot.readIndex+take)
		copy(p[off:off+take], chunk)
		slot.readIndex += take
		off += take
		in.reclaim()
	}
	return nil
}

// EOF reports whether no buffered bytes remain and a fill attempt returned
// 0.
func (in *Input) EOF() (bool, error) {
	if in.closed {
		return false, ErrClosed
	}
	slot, err := in.ensureReadable()
	if err != nil {
		return false, err
	}
	return slot == nil, nil
}

// Prefetch ensures at least n bytes are buffered. It returns false (not an
// error) if EOF arrives before n bytes are available.
func (in *Input) Prefetch(n int) (bool, error) {
	if in.closed {
		return false, ErrClosed
	}
	for {
		if in.available() >= n {
			return true, nil
		}
		if in.eofSeen {
			return false, nil
		}
		if _, err := in.fillOne(); err != nil {
			return false, err
		}
	}
}

// Discard consumes and drops exactly n bytes. It fails with ErrShortRead if
// fewer than n bytes are available before EOF.
func (in *Input) Discard(n int) error {
	if in.closed {
		return ErrClosed
	}
	if n < 0 {
		return ErrOutOfRange
	}
	ok, err := in.Prefetch(n)
	if err != nil {
		return err
	}
	if !ok {
		return ErrShortRead
	}
	remaining := n
	for remaining > 0 {
		slot := in.currentSlot()
		take := slot.writeIndex - slot.readIndex
		if take > remaining {
			take = remaining
		}
		slot.readIndex += take
		remaining -= take
	}
	in.reclaim()
	return nil
}

// ReadUntil consumes bytes up to but not including the first byte for which
// pred returns true, returning the count consumed. It does not fail on EOF
// before pred matches; it simply returns what it saw. The matching byte (if
// any) remains the next ReadByte.
func (in *Input) ReadUntil(pred func(byte) bool) (int, error) {
	if in.closed {
		return 0, ErrClosed
	}
	count := 0
	for {
		slot, err := in.ensureReadable()
		if err != nil {
			return count, err
		}
		if slot == nil {
			return count, nil
		}
		b, _ := slot.buf.Get(slot.readIndex)
		if pred(b) {
			return count, nil
		}
		slot.readIndex++
		count++
		in.reclaim()
	}
}

// Preview runs block with reads that do not consume from the outer stream:
// on return, every byte block read (from buffers that existed beforehand or
// from buffers filled during the call) becomes readable again. Preview
// nests: an inner preview restores to the inner checkpoint on return, the
// outer checkpoint on its own return.
//
// Preview fails if the Input is closed, or if it is empty and the very
// first fill attempt yields zero bytes (a true EOF with nothing buffered).
// A single successful priming fill satisfies the precondition otherwise.
func (in *Input) Preview(block func() error) error {
	if in.closed {
		return ErrClosed
	}
	if in.available() == 0 {
		if in.eofSeen {
			return ErrPreview
		}
		n, err := in.fillOne()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPreview
		}
	}

	cp := checkpoint{savedLen: in.fifo.Length()}
	if cp.savedLen > 0 {
		cp.readIdx = make([]int, cp.savedLen)
		for i := 0; i < cp.savedLen; i++ {
			cp.readIdx[i] = in.fifo.Get(i).(*inputSlot).readIndex
		}
	}
	in.checkpoints = append(in.checkpoints, cp)

	blockErr := block()

	in.restore(cp)
	if len(in.checkpoints) > 0 {
		in.checkpoints = in.checkpoints[:len(in.checkpoints)-1]
	}
	in.reclaim()
	return blockErr
}

// restore rewinds every slot present at cp's time back to its actual
// pre-preview readIndex (cp.readIdx[i], captured when the checkpoint was
// taken — any of those slots, not just the front one, may already have
// been partially consumed by an enclosing preview); every slot appended
// since the checkpoint was taken was fully unread at that time and goes
// back to 0.
func (in *Input) restore(cp checkpoint) {
	n := in.fifo.Length()
	for i := 0; i < n; i++ {
		slot := in.fifo.Get(i).(*inputSlot)
		if i < cp.savedLen {
			slot.readIndex = cp.readIdx[i]
		} else {
			slot.readIndex = 0
		}
	}
}

// Close recycles every Buffer still held (regardless of preview depth),
// closes the source if one was given, and marks the Input terminal. Close
// is idempotent; every other operation on a closed Input fails, except
// CopyAll/CopyN which report zero bytes transferred instead of an error.
func (in *Input) Close() error {
	if in.closed {
		return nil
	}
	in.closed = true
	for in.fifo.Length() > 0 {
		slot := in.fifo.Remove().(*inputSlot)
		_ = in.pool.Recycle(slot.buf)
	}
	in.checkpoints = nil
	if in.src != nil {
		return in.src.Close()
	}
	return nil
}
