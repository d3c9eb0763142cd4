// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memsys

import (
	"fmt"
	"os"
)

// IsAncestor reports whether a is an ancestor of b by walking b's
// parent chain. A nil a matches the root of any chain (an orphan or
// the absolute root of a tree), and a node is considered its own
// ancestor: IsAncestor(a, a) is true. Both quirks are preserved
// deliberately from the source (DESIGN.md open question 3).
func IsAncestor(a, b *Node) bool {
	for b != a {
		if b == nil {
			return false
		}
		b = b.parent
	}
	return true
}

// debugEnabled reports whether the MEMSYS_DEBUG environment variable is
// set to "1". DebugAssert does not consult it: its warning is printed
// whenever the condition holds.
func debugEnabled() bool {
	return os.Getenv("MEMSYS_DEBUG") == "1"
}

// DebugAssert verifies the structural invariants from the data model
// (spec §3) against n. It panics on invariants that must always hold,
// and prints a warning (never panics) for the recommendation that a
// non-tracking node have some tracking ancestor, matching
// apr_sms_assert's split between hard asserts and a soft warning.
//
// DebugAssert is never called automatically by the framework; callers
// invoke it from their own debug builds or test suites, the same way
// apr_sms_assert only exists when APR_MEMORY_SYSTEM_DEBUG is defined.
func DebugAssert(n *Node) {
	if n.backend == nil {
		panic("memsys: node has no backend")
	}

	_, hasFree := n.backend.(Freer)
	_, hasDestroy := n.backend.(Destroyer)
	_, hasReset := n.backend.(Resetter)

	if !hasFree && !(hasDestroy && hasReset) {
		panic("memsys: node must provide Free, or both Destroy and Reset")
	}
	if hasDestroy != hasReset {
		panic("memsys: Destroy and Reset must be provided together or not at all")
	}

	if n.accounting != n && n.accounting.parent != n {
		panic("memsys: accounting node must be self or a direct child")
	}

	if n.parent == nil {
		return
	}
	if !n.hasTrackingAncestor() {
		fmt.Fprintf(os.Stderr, "memsys: warning: node %p has no tracking ancestor; its allocations are reclaimable only by explicit Free\n", n)
	}
}

// assertf panics with a formatted message if cond is false. It stands
// in for the source's assert() calls; unlike the C original there is
// no way to compile it out, but callers that want the source's
// opt-in-only behavior should guard calls to operations like Reset
// with their own precondition checks (e.g. IsTracking) before calling
// at all, exactly like the source expects call sites to do.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
