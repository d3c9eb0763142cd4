// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memsys

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/gomemsys/memsys/status"
)

// fakeBackend is a minimal Allocator used to exercise Node's topology
// and lifecycle machinery without pulling in a concrete backend
// subpackage. It always supplies Reset and Destroy alongside Allocate
// and Free, since Go cannot make a single type conditionally implement
// an interface per instance; tests that need a backend with no
// Resetter at all use nonTrackingFake instead.
type fakeBackend struct {
	Node

	allocs     [][]byte
	freed      [][]byte
	destroyed  bool
	resetN     int
	preDestroy bool
	// destroyedBeforePreDestroy records whether Destroy had already run
	// when PreDestroy fired.
	destroyedBeforePreDestroy bool
}

// newFake and newTrackingFake both return the same always-tracking
// type; the two names exist so call sites read as documentation of
// which capability the test actually exercises.
func newFake(parent *Node) *fakeBackend {
	f := &fakeBackend{}
	Create(f, parent)
	return f
}

func newTrackingFake(parent *Node) *fakeBackend {
	f := &fakeBackend{}
	Create(f, parent)
	return f
}

func (f *fakeBackend) Allocate(n *Node, size int) []byte {
	b := make([]byte, size)
	f.allocs = append(f.allocs, b)
	return b
}

func (f *fakeBackend) Free(n *Node, p []byte) status.Status {
	f.freed = append(f.freed, p)
	return status.Success
}

// Reset and Destroy are always defined, so every fakeBackend is
// tracking; non-tracking tests use the distinct nonTrackingFake type
// below instead.
func (f *fakeBackend) Reset(n *Node) status.Status {
	f.resetN++
	return status.Success
}

func (f *fakeBackend) Destroy(n *Node) {
	f.destroyed = true
}

func (f *fakeBackend) PreDestroy(n *Node) {
	f.preDestroy = true
	f.destroyedBeforePreDestroy = f.destroyed
}

// nonTrackingFake implements only Allocate and Free: no Reset/Destroy
// at the type level, so IsTracking is reliably false.
type nonTrackingFake struct {
	Node

	freed []bool
}

func newNonTracking(parent *Node) *nonTrackingFake {
	f := &nonTrackingFake{}
	Create(f, parent)
	return f
}

func (f *nonTrackingFake) Allocate(n *Node, size int) []byte {
	return make([]byte, size)
}

func (f *nonTrackingFake) Free(n *Node, p []byte) status.Status {
	f.freed = append(f.freed, true)
	return status.Success
}

func TestCreateLinksUnderParent(t *testing.T) {
	parent := newNonTracking(nil)
	child := newNonTracking(parent.EmbeddedNode())

	kids := parent.EmbeddedNode().Children()
	if len(kids) != 1 || kids[0] != child.EmbeddedNode() {
		t.Fatalf("parent.Children() = %v, want [%p]", kids, child.EmbeddedNode())
	}
	if child.EmbeddedNode().Parent() != parent.EmbeddedNode() {
		t.Fatalf("child.Parent() != parent")
	}
}

func TestCreateRootHasNoParent(t *testing.T) {
	root := newNonTracking(nil)
	if root.EmbeddedNode().Parent() != nil {
		t.Fatalf("root.Parent() = %v, want nil", root.EmbeddedNode().Parent())
	}
}

func TestUnlinkRemovesFromSiblingList(t *testing.T) {
	parent := newNonTracking(nil)
	a := newNonTracking(parent.EmbeddedNode())
	b := newNonTracking(parent.EmbeddedNode())
	c := newNonTracking(parent.EmbeddedNode())

	b.EmbeddedNode().unlink()

	kids := parent.EmbeddedNode().Children()
	if len(kids) != 2 {
		t.Fatalf("len(Children()) = %d, want 2", len(kids))
	}
	for _, k := range kids {
		if k == b.EmbeddedNode() {
			t.Fatalf("unlinked node still present in Children()")
		}
	}
	_ = a
	_ = c
}

func TestAccountingNodeDefaultsToSelf(t *testing.T) {
	n := newNonTracking(nil)
	if n.EmbeddedNode().AccountingNode() != n.EmbeddedNode() {
		t.Fatalf("AccountingNode() != self by default")
	}
}

func TestSetAccountingNode(t *testing.T) {
	parent := newNonTracking(nil)
	child := newNonTracking(parent.EmbeddedNode())

	parent.EmbeddedNode().SetAccountingNode(child.EmbeddedNode())
	if parent.EmbeddedNode().AccountingNode() != child.EmbeddedNode() {
		t.Fatalf("AccountingNode() not updated")
	}
}

func TestLockUnlockNoopWithoutLocker(t *testing.T) {
	n := newNonTracking(nil)
	// Must not panic even though nonTrackingFake has no Lock/Unlock.
	n.EmbeddedNode().Lock()
	n.EmbeddedNode().Unlock()
}

type lockingFake struct {
	Node

	locked bool
}

func (f *lockingFake) Allocate(n *Node, size int) []byte { return make([]byte, size) }
func (f *lockingFake) Lock(n *Node)                      { f.locked = true }
func (f *lockingFake) Unlock(n *Node)                    { f.locked = false }

func TestLockDispatchesToLocker(t *testing.T) {
	f := &lockingFake{}
	Create(f, nil)

	f.EmbeddedNode().Lock()
	if !f.locked {
		t.Fatalf("Lock() did not dispatch to backend")
	}
	f.EmbeddedNode().Unlock()
	if f.locked {
		t.Fatalf("Unlock() did not dispatch to backend")
	}
}

// shape is a comparable snapshot of a subtree's topology, depth first
// in sibling order, ignoring everything but shape itself.
type shape struct {
	ChildCount int
	Children   []shape
}

func snapshot(n *Node) shape {
	var s shape
	for _, c := range n.Children() {
		s.Children = append(s.Children, snapshot(c))
	}
	s.ChildCount = len(s.Children)
	return s
}

// TestUnlinkPreservesRemainingTopology builds a small tree, detaches
// one subtree, and checks the remainder's shape against a hand-built
// expectation with pretty.Compare, the same diff tool the corpus uses
// for structural assertions.
func TestUnlinkPreservesRemainingTopology(t *testing.T) {
	root := newNonTracking(nil)
	a := newNonTracking(root.EmbeddedNode())
	newNonTracking(a.EmbeddedNode())
	b := newNonTracking(root.EmbeddedNode())

	b.EmbeddedNode().unlink()

	got := snapshot(root.EmbeddedNode())
	want := shape{
		ChildCount: 1,
		Children: []shape{
			{ChildCount: 1, Children: []shape{{ChildCount: 0}}},
		},
	}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("tree shape after unlink differs: %s", diff)
	}
}
