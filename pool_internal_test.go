// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

import "testing"

// TestPool_CloseReleasesAllocatedRegions exercises the release hook a
// non-heap allocator (mmapAlloc on Linux) registers, without depending on
// the platform-gated unix calls themselves: newPool is unexported, so this
// lives in-package rather than in pbuf_test.
func TestPool_CloseReleasesAllocatedRegions(t *testing.T) {
	var released [][]byte
	fakeRelease := func(data []byte) error {
		released = append(released, data)
		return nil
	}

	p, err := newPool(Config{BufferSize: 4, Capacity: 0}, defaultAlloc, fakeRelease)
	if err != nil {
		t.Fatalf("newPool: %v", err)
	}

	b1, err := p.Borrow()
	if err != nil {
		t.Fatalf("Borrow b1: %v", err)
	}
	b2, err := p.Borrow()
	if err != nil {
		t.Fatalf("Borrow b2: %v", err)
	}
	if err := p.Recycle(b1); err != nil {
		t.Fatalf("Recycle b1: %v", err)
	}
	// b2 stays outstanding: Close must still release its region even though
	// it also reports the leak.
	if err := p.Close(); err == nil {
		t.Fatalf("Close: want ErrLeak for outstanding b2, got nil")
	}

	if len(released) != 2 {
		t.Fatalf("released %d regions, want 2", len(released))
	}
	if &released[0][0] != &b1.data[0] || &released[1][0] != &b2.data[0] {
		t.Fatalf("release did not receive the exact regions Borrow produced")
	}
}

// TestPool_CloseWithNilReleaseSkipsRelease confirms a heap-backed Pool
// (release == nil, the New constructor's default) never calls through a nil
// function value on Close.
func TestPool_CloseWithNilReleaseSkipsRelease(t *testing.T) {
	p, err := New(Config{BufferSize: 4, Capacity: 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Borrow(); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if p.release != nil {
		t.Fatalf("release = %v, want nil for a heap-backed pool", p.release)
	}
	if err := p.Close(); err == nil {
		t.Fatalf("Close: want ErrLeak for the outstanding buffer, got nil")
	}
}
