// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memsys implements the hierarchical memory-system framework:
// a tree of allocator Nodes that share lifetime, delegate their own
// bookkeeping allocations to an accounting Node, and support
// user-registered cleanup callbacks fired in a well-defined order at
// reset and destroy.
//
// The framework never allocates raw memory itself; every byte handed to
// a caller, and the Node record itself, comes from a backend supplied
// at Create time. See the backend subpackages (heap, arena, tracking,
// threadsafe) for concrete allocation strategies that plug into this
// contract.
package memsys

// Node is one instance of the hierarchical allocator. It is always
// embedded in a concrete backend's own struct (see NodeEmbedder); there
// is no free-standing *Node that was not produced by Create.
type Node struct {
	// backend is the outer value this Node is embedded in. Optional
	// capabilities (Resetter, Freer, Destroyer, ...) are discovered by
	// type-asserting backend, the same way fs.NodeWrapper discovers
	// which NodeXxxer interfaces a wrapped InodeEmbedder satisfies.
	backend Allocator

	parent      *Node
	firstChild  *Node
	nextSibling *Node

	// backLink addresses the slot that currently refers to this node:
	// either &parent.firstChild, or &precedingSibling.nextSibling.
	// Rewriting *backLink is what makes unlink O(1) regardless of how
	// many siblings precede or follow this node.
	backLink **Node

	// accounting is the node through which this node's own cleanup
	// records are allocated. Invariant: accounting == this node, or
	// accounting.parent == this node.
	accounting *Node

	cleanups *cleanupRecord

	// selfToken stands in for "this Node's own storage" when it must be
	// passed as the pointer argument to a Freer, the way the C source
	// passes mem_sys itself to free_fn(mem_sys, mem_sys). Go has no
	// address-of-self value shaped like a raw allocation, so Create
	// mints a small, node-unique placeholder slice instead.
	selfToken []byte
}

// embed implements NodeEmbedder. Every type that embeds Node gets this
// method promoted automatically, returning a pointer to the Node field
// inside whatever outer struct it lives in.
func (n *Node) embed() *Node {
	return n
}

// EmbeddedNode returns n itself. It exists so code holding a NodeEmbedder
// value (an outer backend struct) can retrieve the *Node without an
// unexported-method type assertion.
func (n *Node) EmbeddedNode() *Node {
	return n
}

// Parent returns n's parent, or nil if n is a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns n's direct children in sibling-list order (most
// recently created first, since Create prepends).
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}

// AccountingNode returns the node through which n allocates its own
// cleanup-record bookkeeping. It is n itself, or a direct child of n.
func (n *Node) AccountingNode() *Node {
	return n.accounting
}

// SetAccountingNode designates child as n's accounting node. child must
// be n itself or one of n's direct children (invariant 1 in the data
// model); violating this is a programmer error caught by DebugAssert,
// not by SetAccountingNode itself, matching the source's lack of a
// runtime check here.
func (n *Node) SetAccountingNode(child *Node) {
	n.accounting = child
}

// Create links a newly embedded Node under parent and returns it ready
// for use. embedder must be a freshly zeroed value whose embedded Node
// has never been linked before; Create does not accept pre-populated
// storage the way the C original's apr_sms_create does, since Go has no
// equivalent of handing over a raw, uninitialized memory block.
//
// If parent is nil, the returned node is a root: its topology fields
// stay nil and it participates in no sibling list.
func Create(embedder NodeEmbedder, parent *Node) *Node {
	n := embedder.embed()
	*n = Node{backend: embedder}
	n.accounting = n
	n.parent = parent
	n.selfToken = make([]byte, 1)

	if parent != nil {
		n.linkUnder(parent)
	}
	return n
}

// linkUnder prepends n to parent's child list, rewriting back-links so
// unlink remains O(1) later. See the backLink field of Node.
func (n *Node) linkUnder(parent *Node) {
	if sibling := parent.firstChild; sibling != nil {
		sibling.backLink = &n.nextSibling
		n.nextSibling = sibling
	}
	n.backLink = &parent.firstChild
	parent.firstChild = n
}

// unlink removes n from whatever sibling list currently references it,
// in O(1) via its back-link. Calling unlink on a root (nil backLink) is
// a no-op.
func (n *Node) unlink() {
	if n.backLink == nil {
		return
	}
	*n.backLink = n.nextSibling
	if n.nextSibling != nil {
		n.nextSibling.backLink = n.backLink
	}
	n.backLink = nil
	n.nextSibling = nil
}

// Lock dispatches to the backend's Lock hook if present; otherwise it
// is a silent no-op, so callers may always bracket critical sections
// without first checking whether the backend cares about
// synchronization (spec §5, §4.6).
func (n *Node) Lock() {
	if l, ok := n.backend.(Locker); ok {
		l.Lock(n)
	}
}

// Unlock dispatches to the backend's Unlock hook if present; see Lock.
func (n *Node) Unlock() {
	if u, ok := n.backend.(Unlocker); ok {
		u.Unlock(n)
	}
}
