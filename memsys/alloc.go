// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memsys

import "github.com/gomemsys/memsys/status"

// Allocate requests size bytes from n's backend. Allocating zero bytes
// always returns nil without dispatching to the backend (spec §4.4).
func (n *Node) Allocate(size int) []byte {
	if size == 0 {
		return nil
	}
	return n.backend.Allocate(n, size)
}

// ZeroAllocate requests size zero-filled bytes from n's backend. If the
// backend implements ZeroAllocator, that is used directly; otherwise
// Allocate is used and the result is explicitly zero-filled (mirroring
// apr_sms_calloc's fallback when a backend has no dedicated calloc).
func (n *Node) ZeroAllocate(size int) []byte {
	if size == 0 {
		return nil
	}
	if z, ok := n.backend.(ZeroAllocator); ok {
		return z.ZeroAllocate(n, size)
	}
	buf := n.backend.Allocate(n, size)
	if buf == nil {
		return nil
	}
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Reallocate resizes p to newSize. A nil p behaves like Allocate(newSize);
// a newSize of zero behaves like Free(p) and returns nil. Otherwise the
// backend's Reallocator is dispatched. These edge cases are applied
// before dispatch, exactly as apr_sms_realloc does (spec §4.4, §13).
func (n *Node) Reallocate(p []byte, newSize int) []byte {
	if p == nil {
		return n.Allocate(newSize)
	}
	if newSize == 0 {
		n.Free(p)
		return nil
	}
	r, ok := n.backend.(Reallocator)
	if !ok {
		return nil
	}
	return r.Reallocate(n, p, newSize)
}

// Free releases p back to n's backend. Freeing nil is InvalidArgument.
// If the backend has no Freer, Free is a no-op returning Success: the
// memory will be reclaimed in bulk when a tracking ancestor resets or
// is destroyed (spec §4.4, invariant 4).
func (n *Node) Free(p []byte) status.Status {
	if p == nil {
		return status.InvalidArgument
	}
	if f, ok := n.backend.(Freer); ok {
		return f.Free(n, p)
	}
	return status.Success
}
