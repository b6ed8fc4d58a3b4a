// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package pbuf

import "golang.org/x/sys/unix"

// NewPageAligned constructs a Pool whose Buffers are backed by anonymous
// mmap'd pages instead of the Go heap, for transports that need
// page-aligned memory (e.g. O_DIRECT file I/O, some NIC ring buffers). The
// core Buffer/Pool abstraction otherwise stays allocator-agnostic.
func NewPageAligned(cfg Config) (*Pool, error) {
	return newPool(cfg, mmapAlloc, munmapFree)
}

func mmapAlloc(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func munmapFree(data []byte) error {
	return unix.Munmap(data)
}
