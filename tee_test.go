// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf_test

import (
	"bytes"
	"errors"
	"testing"

	"code.hybscloud.com/pbuf"
)

func TestTeeFiller_MirrorsToSide(t *testing.T) {
	src := []byte("hello")
	pos := 0
	fill := func(buf *pbuf.Buffer, start, end int) (int, error) {
		n := copy(mustBytes(t, buf, start, end), src[pos:])
		pos += n
		return n, nil
	}
	var side bytes.Buffer
	tee := pbuf.TeeFiller(fill, func(buf *pbuf.Buffer, start, end int) error {
		side.Write(mustBytes(t, buf, start, end))
		return nil
	})

	pool, err := pbuf.New(pbuf.Config{BufferSize: 16, Capacity: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := pbuf.NewInput(pool, tee, nil)
	got, err := in.ReadByteArray(-1)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got=%q", got)
	}
	if side.String() != "hello" {
		t.Fatalf("side=%q", side.String())
	}
}

func TestTeeFiller_SideErrorPropagates(t *testing.T) {
	sideErr := errors.New("side write failed")
	fill := func(buf *pbuf.Buffer, start, end int) (int, error) {
		copy(mustBytes(t, buf, start, end), []byte("x"))
		return 1, nil
	}
	tee := pbuf.TeeFiller(fill, func(*pbuf.Buffer, int, int) error { return sideErr })

	pool := pbuf.NewSingleShotPool(16)
	in := pbuf.NewInput(pool, tee, nil)
	_, err := in.ReadByte()
	if !errors.Is(err, sideErr) {
		t.Fatalf("want sideErr, got %v", err)
	}
}

func TestTeeFlusher_MirrorsAndOrders(t *testing.T) {
	var primary, side bytes.Buffer
	flush := func(buf *pbuf.Buffer, start, end int) error {
		primary.Write(mustBytes(t, buf, start, end))
		return nil
	}
	tee := pbuf.TeeFlusher(flush, func(buf *pbuf.Buffer, start, end int) error {
		side.Write(mustBytes(t, buf, start, end))
		return nil
	})

	pool, err := pbuf.New(pbuf.Config{BufferSize: 4, Capacity: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := pbuf.NewOutput(pool, 4, tee, nil)
	for _, b := range []byte("data") {
		if err := out.WriteByte(b); err != nil {
			t.Fatalf("WriteByte: %v", err)
		}
	}
	if err := out.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if primary.String() != "data" || side.String() != "data" {
		t.Fatalf("primary=%q side=%q", primary.String(), side.String())
	}
}

func TestTeeFlusher_SideErrorStopsPrimary(t *testing.T) {
	sideErr := errors.New("side flush failed")
	var primary bytes.Buffer
	flush := func(buf *pbuf.Buffer, start, end int) error {
		primary.Write(mustBytes(t, buf, start, end))
		return nil
	}
	tee := pbuf.TeeFlusher(flush, func(*pbuf.Buffer, int, int) error { return sideErr })

	pool, err := pbuf.New(pbuf.Config{BufferSize: 4, Capacity: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := pbuf.NewOutput(pool, 4, tee, nil)
	_ = out.WriteByte('z')
	if err := out.Flush(); !errors.Is(err, sideErr) {
		t.Fatalf("want sideErr, got %v", err)
	}
	if primary.Len() != 0 {
		t.Fatalf("primary should not have been written: %q", primary.String())
	}
}

func mustBytes(t *testing.T, buf *pbuf.Buffer, start, end int) []byte {
	t.Helper()
	b, err := buf.Bytes(start, end)
	if err != nil {
		t.Fatalf("Bytes(%d,%d): %v", start, end, err)
	}
	return b
}
