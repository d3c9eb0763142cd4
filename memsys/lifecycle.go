// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memsys

import "github.com/gomemsys/memsys/status"

// IsTracking reports whether n's backend supplies a Reset operation.
// Tracking nodes can reclaim their entire subtree's allocations in one
// bulk operation; non-tracking nodes reclaim only what they can Free
// one pointer at a time, or rely on a tracking ancestor entirely.
func (n *Node) IsTracking() bool {
	_, ok := n.backend.(Resetter)
	return ok
}

// runCleanups invokes every cleanup currently registered on n, in LIFO
// order (most recently registered first), without touching the list
// itself. Callers are responsible for clearing n.cleanups afterward if
// appropriate.
func runCleanups(n *Node) {
	for c := n.cleanups; c != nil; c = c.next {
		c.callback(c.data)
	}
}

// descendCleanups walks n's subtree in post-order: for each child, it
// first recurses into that child's own descendants, then runs the
// child's cleanups, then fires the child's PreDestroy hook if present.
// This unwinds the entire subtree's cleanups before any storage is
// reclaimed, without yet reclaiming anything itself (spec §4.5).
func descendCleanups(n *Node) {
	if n == nil {
		return
	}
	for c := n.firstChild; c != nil; c = c.nextSibling {
		descendCleanups(c)
		runCleanups(c)
		if pd, ok := c.backend.(PreDestroyer); ok {
			pd.PreDestroy(c)
		}
	}
}

// Reset discards n's entire subtree and all of n's own cleanup records,
// but preserves n itself. n must be tracking; calling Reset on a
// non-tracking node is a programmer error (undefined behavior in the
// source) and always panics here via assertf.
func (n *Node) Reset() status.Status {
	assertf(n.IsTracking(), "memsys: Reset called on a non-tracking node")

	// Unwind the whole subtree's cleanups and pre-destroy hooks before
	// any storage is reclaimed.
	descendCleanups(n)

	runCleanups(n)
	n.cleanups = nil

	// All descendants, including any accounting child, are about to be
	// reclaimed in bulk by the backend's Reset.
	n.firstChild = nil
	n.accounting = n

	return n.backend.(Resetter).Reset(n)
}

// Destroy tears n down: if n is tracking, its subtree's cleanups run
// and the backend's own bulk reclamation (via Destroy, or the fallback
// chain below) takes care of descendant storage. If n is non-tracking,
// Destroy must recursively tear down every child itself, since nothing
// else will.
func (n *Node) Destroy() status.Status {
	if n.IsTracking() {
		descendCleanups(n)
		runCleanups(n)
	} else {
		n.destroyNonTracking()
	}

	return n.selfReclaim()
}

// destroyNonTracking implements the non-tracking branch of destroy
// (spec §4.5): detach and save the accounting child for last, destroy
// the remaining children in sibling order, then reconcile the node's
// own cleanup records depending on whether the accounting child turned
// out to be tracking.
func (n *Node) destroyNonTracking() {
	if n.accounting != n {
		n.accounting.unlink()
	}

	// Capture each child's next sibling before recursing: the recursive
	// Destroy call unlinks the child, which would otherwise corrupt our
	// walk.
	child := n.firstChild
	for child != nil {
		next := child.nextSibling
		child.Destroy()
		child = next
	}

	accounting := n.accounting
	if accounting.IsTracking() {
		// n itself is non-tracking (we would not be in this method
		// otherwise), so a tracking accounting node must be a detached
		// child. The cleanup records physically live in its storage, but
		// invoking the callbacks does not touch that storage; the
		// accounting child's own Destroy bulk-frees the now-orphaned
		// records afterward. This ordering is preserved exactly from the
		// source (DESIGN.md open question 1).
		runCleanups(n)
		accounting.Destroy()
		n.accounting = n
		return
	}

	for c := n.cleanups; c != nil; {
		next := c.next
		c.callback(c.data)
		accounting.Free(c.storage)
		c = next
	}
	if accounting != n {
		accounting.Destroy()
		n.accounting = n
	}
}

// selfReclaim implements the tail shared by both the tracking and
// non-tracking destroy paths: unlink from the parent, fire PreDestroy,
// then pick a reclamation strategy in the priority order mandated by
// spec §4.5.
func (n *Node) selfReclaim() status.Status {
	n.unlink()

	if pd, ok := n.backend.(PreDestroyer); ok {
		pd.PreDestroy(n)
	}

	if d, ok := n.backend.(Destroyer); ok {
		d.Destroy(n)
		return status.Success
	}

	if n.parent == nil {
		if _, ok := n.backend.(Freer); ok {
			n.Free(n.selfToken)
		}
		return status.Success
	}

	if _, ok := n.parent.backend.(Freer); ok {
		return n.parent.Free(n.selfToken)
	}

	assertf(n.hasTrackingAncestor(), "memsys: node has no Destroy, no Free, and no tracking ancestor to reclaim it")
	return status.Success
}

// hasTrackingAncestor walks n's parent chain looking for a tracking
// node. Used only by debug-sensitive assertions (spec §4.5 step 4,
// §4.6).
func (n *Node) hasTrackingAncestor() bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.IsTracking() {
			return true
		}
	}
	return false
}
