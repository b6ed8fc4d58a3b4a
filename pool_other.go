// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package pbuf

// NewPageAligned falls back to ordinary heap-backed Buffers on platforms
// where anonymous mmap isn't wired in.
func NewPageAligned(cfg Config) (*Pool, error) {
	return newPool(cfg, defaultAlloc, nil)
}
