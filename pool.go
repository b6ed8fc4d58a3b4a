// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// BufferPool is the pool protocol Input and Output depend on. borrow/
// recycle/close exactly as described in the spec: borrow fails once closed,
// recycle fails for a foreign or already-recycled Buffer, and close reports
// a leak when buffers remain outstanding.
type BufferPool interface {
	Borrow() (*Buffer, error)
	Recycle(b *Buffer) error
	Close() error
}

// Config configures a Pool, the same shape as a plain tunables struct
// handed to a constructor (cmap's ChunkPoolConfig plays the same role for
// its chunk pool).
type Config struct {
	// BufferSize is the byte capacity of every Buffer the pool produces.
	BufferSize int
	// Capacity bounds the number of simultaneously live Buffers. Zero means
	// unbounded: Borrow always produces a fresh Buffer when the free list
	// is empty.
	Capacity int
	// Logger receives diagnostic events (leak on Close, rejected recycles).
	// A nil Logger discards everything; logging never substitutes for the
	// error a call returns.
	Logger *slog.Logger
}

var poolIDSeq uint64

// Pool is a bounded set of Buffers. It need not be safe for concurrent use
// (per the spec's concurrency model), but it must always detect a
// double-recycle or a recycle of a Buffer it never produced.
type Pool struct {
	cfg     Config
	log     *slog.Logger
	id      uint64
	alloc   allocator
	release releaser

	free      []*Buffer
	live      int
	borrowed  map[uint64]*Buffer
	allocated [][]byte // every raw region alloc has produced, for release on Close
	nextSeq   uint64
	closed    bool
}

type allocator func(size int) ([]byte, error)

// releaser gives back a region a non-heap allocator produced (e.g.
// unix.Munmap for mmapAlloc). A nil releaser means alloc's regions need no
// explicit release, which is the case for defaultAlloc's plain make([]byte).
type releaser func([]byte) error

func defaultAlloc(size int) ([]byte, error) { return make([]byte, size), nil }

// New constructs a heap-backed Pool from cfg.
func New(cfg Config) (*Pool, error) {
	return newPool(cfg, defaultAlloc, nil)
}

func newPool(cfg Config, alloc allocator, release releaser) (*Pool, error) {
	if cfg.BufferSize <= 0 || cfg.Capacity < 0 {
		return nil, ErrInvalidConfig
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pool{
		cfg:      cfg,
		log:      log,
		id:       atomic.AddUint64(&poolIDSeq, 1),
		alloc:    alloc,
		release:  release,
		borrowed: make(map[uint64]*Buffer),
	}, nil
}

func trackingKey(tag uint64) uint64 {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], tag)
	return xxhash.Sum64(raw[:])
}

// BorrowBlocking retries Borrow, waiting via a Backoff between attempts,
// while the pool reports ErrPoolExhausted. It gives up and returns that
// error once maxAttempts Borrow calls have failed; maxAttempts <= 0 means
// retry indefinitely. Any other Borrow error (ErrPoolClosed, an allocator
// failure) returns immediately without waiting.
//
// A Pool is not required to be safe for concurrent use, so BorrowBlocking
// only makes progress if capacity frees up some other way between
// attempts — for example, a caller on another goroutine recycling Buffers
// while synchronizing its own access to this Pool.
func (p *Pool) BorrowBlocking(maxAttempts int) (*Buffer, error) {
	var b Backoff
	for attempt := 1; ; attempt++ {
		buf, err := p.Borrow()
		if err == nil {
			return buf, nil
		}
		if !errors.Is(err, ErrPoolExhausted) {
			return nil, err
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return nil, err
		}
		b.Wait()
	}
}

// Borrow returns a Buffer whose contents are undefined: freshly allocated,
// or recycled from a prior borrow.
func (p *Pool) Borrow() (*Buffer, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.cfg.Capacity > 0 && p.live >= p.cfg.Capacity && len(p.free) == 0 {
		return nil, ErrPoolExhausted
	}

	var b *Buffer
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.nextSeq++
		data, err := p.alloc(p.cfg.BufferSize)
		if err != nil {
			return nil, err
		}
		b = newPooledBuffer(data, p.nextSeq, p.id)
		p.live++
		p.allocated = append(p.allocated, data)
	}
	p.borrowed[trackingKey(b.tag)] = b
	return b, nil
}

// Recycle returns b to the free list. It fails if b did not originate from
// p, or if b was already recycled.
func (p *Pool) Recycle(b *Buffer) error {
	if b == nil || b.origin != p.id {
		p.log.Debug("pbuf: rejecting recycle of foreign buffer")
		return ErrForeignBuffer
	}
	key := trackingKey(b.tag)
	if _, ok := p.borrowed[key]; !ok {
		p.log.Debug("pbuf: rejecting double recycle", "tag", b.tag)
		return ErrDoubleRecycle
	}
	delete(p.borrowed, key)
	p.free = append(p.free, b)
	return nil
}

// Close disallows further Borrow calls, releases every region alloc ever
// produced back through release (if the pool has one), and reports a leak
// if any Buffer remains outstanding.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.release != nil {
		for _, data := range p.allocated {
			if err := p.release(data); err != nil {
				p.log.Error("pbuf: failed to release pool region", "error", err)
			}
		}
	}
	if n := len(p.borrowed); n > 0 {
		p.log.Warn("pbuf: pool closed with outstanding buffers", "count", n)
		return fmt.Errorf("%w: %d buffer(s) outstanding", ErrLeak, n)
	}
	return nil
}
