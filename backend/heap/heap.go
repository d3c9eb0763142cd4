// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heap implements the plainest possible memsys backend: a
// non-tracking allocator that wraps Go's own allocator. It supplies
// Allocate and Free only, demonstrating the "must provide Free, or
// both Destroy and Reset" half of the data model's invariant 3
// (spec.md §3).
//
// Free is necessarily a no-op beyond bookkeeping: Go has no manual
// deallocation, so the backing storage is reclaimed by the garbage
// collector whether or not Free is called. It is still useful to
// implement, since its presence is what makes a heap.Node eligible to
// anchor a subtree with no tracking ancestor, and its call count is
// directly observable for tests (see the bootstrap-free scenario in
// spec.md §8).
package heap

import (
	"sync"

	"github.com/gomemsys/memsys"
	"github.com/gomemsys/memsys/status"
)

// Node is a non-tracking memsys backend. The zero value is ready to
// use once embedded and passed to memsys.Create (or via New).
type Node struct {
	memsys.Node

	mu        sync.Mutex
	freeCalls int
}

var (
	_ memsys.Allocator = (*Node)(nil)
	_ memsys.Freer     = (*Node)(nil)
)

// New creates a heap-backed node under parent. A nil parent makes the
// new node a root.
func New(parent *memsys.Node) *Node {
	n := &Node{}
	memsys.Create(n, parent)
	return n
}

// Allocate implements memsys.Allocator.
func (n *Node) Allocate(target *memsys.Node, size int) []byte {
	return make([]byte, size)
}

// Free implements memsys.Freer. It only counts the call; Go's GC does
// the actual reclamation once the slice becomes unreachable.
func (n *Node) Free(target *memsys.Node, p []byte) status.Status {
	n.mu.Lock()
	n.freeCalls++
	n.mu.Unlock()
	return status.Success
}

// FreeCalls returns the number of times Free has been dispatched to
// this node, for use in tests that assert on reclamation counts.
func (n *Node) FreeCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.freeCalls
}
