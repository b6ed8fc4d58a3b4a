// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

import (
	"fmt"
	"sync/atomic"
)

// SingleShotPool is a BufferPool test double that hands out one
// pre-constructed Buffer exactly once, then fails every subsequent Borrow.
// Recycle verifies the returned instance is identity-equal to the one it
// produced, rejecting anything else as foreign.
type SingleShotPool struct {
	id       uint64
	buf      *Buffer
	borrowed bool
	recycled bool
	closed   bool
}

// NewSingleShotPool builds a single-shot pool around a fresh Buffer of the
// given byte size.
func NewSingleShotPool(size int) *SingleShotPool {
	id := atomic.AddUint64(&poolIDSeq, 1)
	return &SingleShotPool{id: id, buf: newPooledBuffer(make([]byte, size), 1, id)}
}

// Borrow returns the pool's single Buffer on the first call, then fails.
func (p *SingleShotPool) Borrow() (*Buffer, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.borrowed {
		return nil, ErrPoolExhausted
	}
	p.borrowed = true
	return p.buf, nil
}

// Recycle accepts only the exact Buffer instance Borrow produced, and only
// once.
func (p *SingleShotPool) Recycle(b *Buffer) error {
	if b == nil || b.origin != p.id {
		return ErrForeignBuffer
	}
	if !p.borrowed || p.recycled {
		return ErrDoubleRecycle
	}
	p.recycled = true
	return nil
}

// Close reports a leak if the single Buffer was borrowed but never
// recycled.
func (p *SingleShotPool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.borrowed && !p.recycled {
		return fmt.Errorf("%w: 1 buffer outstanding", ErrLeak)
	}
	return nil
}
