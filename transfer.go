// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

// ReadAvailableTo hands the Input's current filled Buffer to out's flush
// path with no intermediate copy: the exact Buffer instance most recently
// passed to fill is the one out.flush receives. If nothing is buffered,
// exactly one fill attempt is made on a freshly borrowed Buffer before
// transferring it. It returns the number of bytes transferred, 0 at EOF.
//
// During a preview, the transferred slot is marked consumed but is not
// recycled to the pool until the preview returns and finds it still spent
// (see reclaim) — this is what makes the transfer replayable inside a
// preview block.
func (in *Input) ReadAvailableTo(out *Output) (int, error) {
	if in.closed {
		return 0, ErrClosed
	}
	slot := in.currentSlot()
	if slot == nil {
		if in.eofSeen {
			return 0, nil
		}
		n, err := in.fillOne()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		slot = in.currentSlot()
	}

	n := slot.writeIndex - slot.readIndex
	if n <= 0 {
		return 0, nil
	}
	if err := out.acceptTransfer(slot.buf, slot.readIndex, slot.writeIndex); err != nil {
		return 0, err
	}
	slot.readIndex = slot.writeIndex
	in.reclaim()
	return n, nil
}

// ReadAvailableToBuffer fills dst directly from offset start via a single
// fill call, bypassing the Input's own pool and FIFO entirely. It returns
// the new write index (start plus the bytes written).
func (in *Input) ReadAvailableToBuffer(dst *Buffer, start int) (int, error) {
	if in.closed {
		return start, ErrClosed
	}
	n, err := in.fill(dst, start, dst.Capacity())
	if err != nil {
		return start, err
	}
	return start + n, nil
}

// CopyAll streams bytes to out via repeated ReadAvailableTo calls until
// EOF, returning the total transferred. If the Input is already closed it
// returns (0, nil) rather than failing, matching Close's terminal-state
// contract for a preview in progress.
func (in *Input) CopyAll(out *Output) (int64, error) {
	if in.closed {
		return 0, nil
	}
	var total int64
	for {
		n, err := in.ReadAvailableTo(out)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		total += int64(n)
	}
}

// CopyN transfers exactly size bytes to out. The final chunk may split a
// Buffer; when it does, only the unread prefix is handed to out (via a
// regular WriteBuffer, not a zero-copy transfer) and the remainder stays in
// the Input's FIFO for later reads. CopyN fails with ErrShortRead if EOF
// arrives before size bytes have been transferred. Like CopyAll, it reports
// (0, nil) rather than failing on an already-closed Input.
func (in *Input) CopyN(out *Output, size int64) (int64, error) {
	if in.closed {
		return 0, nil
	}
	if size <= 0 {
		return 0, nil
	}

	var total int64
	for total < size {
		remaining := size - total
		slot := in.currentSlot()
		if slot == nil {
			if in.eofSeen {
				return total, ErrShortRead
			}
			n, err := in.fillOne()
			if err != nil {
				return total, err
			}
			if n == 0 {
				return total, ErrShortRead
			}
			continue
		}

		avail := int64(slot.writeIndex - slot.readIndex)
		if avail <= remaining {
			n, err := in.ReadAvailableTo(out)
			if err != nil {
				return total, err
			}
			total += int64(n)
			continue
		}

		take := int(remaining)
		chunk, _ := slot.buf.Bytes(slot.readIndex, slot.readIndex+take)
		if err := out.WriteBuffer(NewBuffer(chunk)); err != nil {
			return total, err
		}
		slot.readIndex += take
		total += remaining
		in.reclaim()
	}
	return total, nil
}
