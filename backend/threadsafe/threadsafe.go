// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package threadsafe implements a mutual-exclusion decorator over
// another memsys backend: its Lock and Unlock hooks take and release a
// sync.Mutex, and every other operation is delegated to the wrapped
// backend without taking that mutex, so callers serialize access by
// bracketing operations with Node.Lock/Node.Unlock. It is the Go-native
// substitute for the source's optional per-mem_sys lock pointer
// (spec §5), supplying Lock and
// Unlock rather than a raw mutex handle so callers still go through
// Node.Lock/Node.Unlock.
//
// Go cannot let one decorator type conditionally implement Resetter and
// Destroyer depending on whether the wrapped backend happens to supply
// them (interface satisfaction is static), so this package exposes two
// named constructors instead: Wrap for a plain Allocator(+Freer), and
// WrapTracking for a fully tracking inner backend.
package threadsafe

import (
	"sync"

	"github.com/gomemsys/memsys"
	"github.com/gomemsys/memsys/status"
)

// Node wraps a non-tracking inner backend, adding Lock/Unlock.
type Node struct {
	memsys.Node

	mu    sync.Mutex
	inner memsys.Allocator
}

var (
	_ memsys.Allocator = (*Node)(nil)
	_ memsys.Locker    = (*Node)(nil)
	_ memsys.Unlocker  = (*Node)(nil)
)

// Wrap creates a thread-safe node under parent delegating allocation to
// inner. The returned Node always implements memsys.Freer; its Free
// forwards to inner only when inner implements memsys.Freer.
func Wrap(parent *memsys.Node, inner memsys.Allocator) *Node {
	n := &Node{inner: inner}
	memsys.Create(n, parent)
	return n
}

func (n *Node) Allocate(target *memsys.Node, size int) []byte {
	return n.inner.Allocate(target, size)
}

// Free implements memsys.Freer for every Node, whatever inner is. When
// inner implements memsys.Freer the call is forwarded to it; otherwise
// Free does nothing and returns Success.
func (n *Node) Free(target *memsys.Node, p []byte) status.Status {
	f, ok := n.inner.(memsys.Freer)
	if !ok {
		return status.Success
	}
	return f.Free(target, p)
}

func (n *Node) Lock(target *memsys.Node)   { n.mu.Lock() }
func (n *Node) Unlock(target *memsys.Node) { n.mu.Unlock() }

// TrackingBackend is what WrapTracking requires of its inner node.
type TrackingBackend interface {
	memsys.Allocator
	memsys.Resetter
	memsys.Destroyer
}

// TrackingNode wraps a fully tracking inner backend, adding Lock/Unlock
// as a caller-bracketed critical section the same way the plain Node
// above does: Allocate/Reset/Destroy never take the mutex themselves,
// since sync.Mutex is not reentrant and a caller following the
// documented Lock/Allocate/Unlock bracket would otherwise deadlock
// against itself.
type TrackingNode struct {
	memsys.Node

	mu    sync.Mutex
	inner TrackingBackend
}

var (
	_ memsys.Allocator = (*TrackingNode)(nil)
	_ memsys.Resetter  = (*TrackingNode)(nil)
	_ memsys.Destroyer = (*TrackingNode)(nil)
	_ memsys.Locker    = (*TrackingNode)(nil)
	_ memsys.Unlocker  = (*TrackingNode)(nil)
)

// WrapTracking creates a thread-safe tracking node under parent,
// delegating allocation strategy to inner.
func WrapTracking(parent *memsys.Node, inner TrackingBackend) *TrackingNode {
	n := &TrackingNode{inner: inner}
	memsys.Create(n, parent)
	return n
}

func (n *TrackingNode) Allocate(target *memsys.Node, size int) []byte {
	return n.inner.Allocate(target, size)
}

func (n *TrackingNode) Reset(target *memsys.Node) status.Status {
	return n.inner.Reset(target)
}

func (n *TrackingNode) Destroy(target *memsys.Node) {
	n.inner.Destroy(target)
}

func (n *TrackingNode) Lock(target *memsys.Node)   { n.mu.Lock() }
func (n *TrackingNode) Unlock(target *memsys.Node) { n.mu.Unlock() }
