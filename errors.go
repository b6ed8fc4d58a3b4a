// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

import "errors"

// pbuf uses a small set of sentinel errors: plain values compared with
// errors.Is, never wrapped by the core, never swallowed. Failures returned
// by a caller's fill/flush hook are not among these — they propagate
// verbatim and keep whatever identity the caller gave them.

var (
	// ErrOutOfRange is returned by Buffer.Get/Set/CopyTo/Bytes when an index
	// or range falls outside the Buffer's capacity.
	ErrOutOfRange = errors.New("pbuf: index out of range")

	// ErrClosed is returned by any Input or Output operation other than
	// Close once that instance has been closed, except Input.CopyAll and
	// Input.CopyN, which report (0, nil) instead. Close itself is idempotent.
	ErrClosed = errors.New("pbuf: stream is closed")

	// ErrPoolClosed is returned by Borrow once a Pool has been closed.
	ErrPoolClosed = errors.New("pbuf: pool is closed")

	// ErrPoolExhausted is returned by Borrow when the pool's bounded
	// capacity of simultaneously live Buffers is already in use.
	ErrPoolExhausted = errors.New("pbuf: pool capacity exhausted")

	// ErrForeignBuffer is returned by Recycle when the Buffer did not
	// originate from the pool it is being returned to.
	ErrForeignBuffer = errors.New("pbuf: buffer did not originate from this pool")

	// ErrDoubleRecycle is returned by Recycle when the Buffer has already
	// been returned to its pool once.
	ErrDoubleRecycle = errors.New("pbuf: buffer already recycled")

	// ErrLeak is wrapped into the error Pool.Close returns when buffers
	// remain outstanding at close time.
	ErrLeak = errors.New("pbuf: pool closed with outstanding buffers")

	// ErrShortRead is the EOF-underflow error: a caller asked for n bytes
	// (Discard, a sized ReadByteArray, CopyN) and fewer than n were
	// available before EOF.
	ErrShortRead = errors.New("pbuf: fewer bytes available than requested")

	// ErrPreview is returned by Preview when the Input yields zero bytes
	// before any block can run: either it is already at EOF, or the priming
	// fill attempt returned 0.
	ErrPreview = errors.New("pbuf: preview requires at least one available byte")

	// ErrInvalidConfig is returned by pool constructors for a malformed
	// Config (non-positive BufferSize, negative Capacity).
	ErrInvalidConfig = errors.New("pbuf: invalid pool configuration")
)
