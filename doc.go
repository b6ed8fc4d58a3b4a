// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pbuf

// Package pbuf provides a pooled, buffered binary I/O layer: a pull-based
// Input that lazily fills fixed-size pooled Buffers from a caller-supplied
// fill hook, and a push-based Output that accumulates writes into pooled
// Buffers and flushes them through a caller-supplied flush hook.
//
// Input and Output are joined by a zero-copy transfer: ReadAvailableTo
// hands an Input's filled Buffer directly to an Output's flush path with no
// intermediate copy, and Preview lets a caller read ahead on an Input with
// a guaranteed, nestable replay of every byte the preview's block consumed.
//
// Neither Input nor Output is safe for concurrent use, and neither
// suspends: fill and flush may themselves block on external I/O, but pbuf
// imposes no scheduling contract on them. Any error fill or flush returns
// propagates verbatim from the public operation that triggered it — pbuf
// never wraps, swallows, or retries on a caller's behalf.
