// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memsys

import "github.com/gomemsys/memsys/status"

// Allocator is the one capability every backend must supply. A type
// implements it by embedding Node and defining Allocate on the
// embedding type, the same way an InodeEmbedder in a filesystem tree
// implements the single mandatory Lookup-adjacent behavior and leaves
// everything else optional.
//
// Allocate must return nil when it cannot satisfy the request. The
// facade in alloc.go has already filtered out the size==0 case before
// Allocate is ever called.
type Allocator interface {
	Allocate(n *Node, size int) []byte
}

// ZeroAllocator is implemented by backends that can zero-fill more
// efficiently than allocate-then-memclr (e.g. fresh mmap pages, which
// the kernel already zeroes). If absent, the facade emulates it with
// Allocate plus an explicit zero-fill.
type ZeroAllocator interface {
	ZeroAllocate(n *Node, size int) []byte
}

// Reallocator is implemented by backends that support resizing an
// existing allocation in place or by copy. Required only if callers
// exercise Node.Reallocate; the facade pre-handles the null-pointer and
// zero-size edge cases before dispatching here.
type Reallocator interface {
	Reallocate(n *Node, p []byte, newSize int) []byte
}

// Freer is implemented by backends that can reclaim a single
// allocation by itself. Its absence means memory handed out by this
// node is only reclaimed in bulk, when a tracking ancestor resets or is
// destroyed.
type Freer interface {
	Free(n *Node, p []byte) status.Status
}

// Resetter is implemented by tracking backends: those that can discard
// an entire subtree's worth of allocations in one bulk operation. Its
// presence is literally what "tracking" means (see Node.IsTracking).
type Resetter interface {
	Reset(n *Node) status.Status
}

// PreDestroyer is an optional hook fired after a node's cleanups have
// run and all of its descendants have been torn down, but before the
// node's own storage is reclaimed.
type PreDestroyer interface {
	PreDestroy(n *Node)
}

// Destroyer is implemented by backends that can fully reclaim a node,
// including the Node record's own backing storage. Its presence (and
// that of Resetter) is what invariant 3 in the data model calls
// "tracking" requiring both or neither.
type Destroyer interface {
	Destroy(n *Node)
}

// Locker and Unlocker are optional thread-safety hooks. Absent entries
// are silent no-ops, so callers may always bracket critical sections
// with Node.Lock/Node.Unlock without first checking whether the
// backend cares.
type Locker interface {
	Lock(n *Node)
}

type Unlocker interface {
	Unlock(n *Node)
}

// NodeEmbedder is satisfied automatically by any type that embeds Node:
// Node defines embed() returning itself, so Go's method promotion makes
// the embedding type's pointer satisfy this interface with zero extra
// code. Concrete backends additionally implement Allocator (and any of
// the optional interfaces above) to become usable with Create.
type NodeEmbedder interface {
	Allocator
	embed() *Node
}
