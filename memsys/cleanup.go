// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memsys

import (
	"reflect"

	"github.com/gomemsys/memsys/status"
)

// CleanupFunc is a callback registered against a Node to run at reset
// or destroy time. Its returned Status is propagated to callers of Run,
// but the Lifecycle Engine itself never inspects it: a failing cleanup
// does not abort traversal (spec §5).
type CleanupFunc func(data interface{}) status.Status

// cleanupRecord is one entry of a node's cleanup list. Its storage is
// allocated from the owning node's accounting node, so it dies no later
// than that node does (data model invariant 1).
type cleanupRecord struct {
	next     *cleanupRecord
	data     interface{}
	callback CleanupFunc
	// storage is the accounting-node allocation backing this record.
	// Freed through the same accounting node on Unregister and when a
	// non-tracking node with a non-tracking accounting node is destroyed;
	// otherwise it is reclaimed only in bulk with the accounting node.
	storage []byte
}

// recordSize is a nominal size passed to the accounting allocator for a
// cleanup record. The framework does not know or care what the backend
// actually does with this number; heap-style backends size their
// buffers by it, bump allocators just advance their offset by it.
const recordSize = 32

// Register adds a (data, callback) cleanup pair to n, to run the next
// time n is reset or destroyed. Registration is LIFO: the most recently
// registered cleanup runs first (spec §4.3, §8 P5).
//
// Register fails with InvalidArgument if callback is nil, and with
// OutOfMemory if a cleanup record could not be allocated from n's
// accounting node.
func (n *Node) Register(data interface{}, callback CleanupFunc) status.Status {
	if callback == nil {
		return status.InvalidArgument
	}

	buf := n.accounting.Allocate(recordSize)
	if buf == nil {
		return status.OutOfMemory
	}

	rec := &cleanupRecord{data: data, callback: callback, next: n.cleanups, storage: buf}
	n.cleanups = rec
	return status.Success
}

// Unregister removes the first cleanup matching (data, callback) by
// value equality of data and pointer equality of callback, and frees
// its record through n's accounting node's Free if present (otherwise
// the record leaks harmlessly until the accounting node itself dies).
//
// Unregister fails with NoSuchCleanup if no matching pair is found.
func (n *Node) Unregister(data interface{}, callback CleanupFunc) status.Status {
	rec, ref := n.findCleanup(data, callback)
	if rec == nil {
		return status.NoSuchCleanup
	}

	*ref = rec.next
	n.accounting.Free(rec.storage)
	return status.Success
}

// findCleanup returns the first matching record and the address of the
// list slot that references it (either &n.cleanups or &prev.next), so
// the caller can unlink it in place.
func (n *Node) findCleanup(data interface{}, callback CleanupFunc) (*cleanupRecord, **cleanupRecord) {
	ref := &n.cleanups
	for rec := *ref; rec != nil; rec = *ref {
		if rec.data == data && sameCallback(rec.callback, callback) {
			return rec, ref
		}
		ref = &rec.next
	}
	return nil, nil
}

// Run unregisters (data, callback) from n, ignoring whatever Status
// that unregister produced, then unconditionally invokes callback and
// returns its Status.
//
// This mirrors the original apr_sms_cleanup_run faithfully (see
// DESIGN.md open question 2): calling Run on a pair that was never
// registered still invokes the callback. This is preserved deliberately,
// not a bug to silently fix.
func (n *Node) Run(data interface{}, callback CleanupFunc) status.Status {
	n.Unregister(data, callback)
	return callback(data)
}

// sameCallback compares two CleanupFuncs for the identity Register and
// Unregister callers rely on. Go func values are not comparable with
// ==, so CleanupFunc would not support direct equality; instead the
// underlying code pointers from reflect.Value.Pointer are compared.
// That identifies the function, not the closure instance: two closures
// created from the same function literal compare equal.
func sameCallback(a, b CleanupFunc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
