// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arena implements a tracking bump-pointer pool allocator for
// memsys: one or more mmap'd anonymous slabs that hand out
// monotonically advancing sub-slices, reclaimed in bulk by unmapping
// on Reset and Destroy. It is the "bump/pool allocator that frees only
// on reset" strategy named in spec.md §1.
//
// Grounded on the raw golang.org/x/sys/unix calls loopback_linux.go
// makes for platform resource management; here they back the actual
// storage instead of proxying an on-disk file.
package arena

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/gomemsys/memsys"
	"github.com/gomemsys/memsys/status"
)

// Config tunes the arena's slab size, following the same
// struct-plus-DefaultConfig shape as fs.Options/fs.DefaultOptions.
type Config struct {
	// SlabSize is the size, in bytes, of each mmap'd region. Requests
	// larger than SlabSize get a dedicated slab of their own.
	SlabSize int
}

// DefaultConfig returns the Config used when nil is passed to New.
func DefaultConfig() *Config {
	return &Config{SlabSize: 64 * 1024}
}

type slab struct {
	mem []byte
	off int
}

// Node is a tracking memsys backend: it supplies Allocate, Reset, and
// Destroy, but no Free — individual allocations are never reclaimed on
// their own, only in bulk (spec.md invariant 4).
type Node struct {
	memsys.Node

	cfg   Config
	mu    sync.Mutex
	slabs []*slab
}

var (
	_ memsys.Allocator = (*Node)(nil)
	_ memsys.Resetter  = (*Node)(nil)
	_ memsys.Destroyer = (*Node)(nil)
)

// New creates an arena-backed node under parent. A nil cfg uses
// DefaultConfig.
func New(parent *memsys.Node, cfg *Config) (*Node, error) {
	n, err := newUnlinked(cfg)
	if err != nil {
		return nil, err
	}
	memsys.Create(n, parent)
	return n, nil
}

// NewStandalone builds an arena engine that is never linked into a
// memsys tree of its own. It exists so decorators (backend/tracking,
// backend/threadsafe) can wrap an arena's allocation strategy without
// also giving it a redundant tree position.
func NewStandalone(cfg *Config) (*Node, error) {
	return newUnlinked(cfg)
}

func newUnlinked(cfg *Config) (*Node, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	n := &Node{cfg: *cfg}
	if err := n.growLocked(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) growLocked() error {
	mem, err := unix.Mmap(-1, 0, n.cfg.SlabSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return err
	}
	n.slabs = append(n.slabs, &slab{mem: mem})
	return nil
}

// Allocate implements memsys.Allocator by bumping the offset of the
// current slab, growing a new one (or, for oversize requests, a
// dedicated one) when the current slab is exhausted.
func (n *Node) Allocate(target *memsys.Node, size int) []byte {
	n.mu.Lock()
	defer n.mu.Unlock()

	if size > n.cfg.SlabSize {
		mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil
		}
		n.slabs = append(n.slabs, &slab{mem: mem, off: size})
		return mem
	}

	cur := n.slabs[len(n.slabs)-1]
	if cur.off+size > len(cur.mem) {
		if err := n.growLocked(); err != nil {
			return nil
		}
		cur = n.slabs[len(n.slabs)-1]
	}
	b := cur.mem[cur.off : cur.off+size]
	cur.off += size
	return b
}

// Reset implements memsys.Resetter: every slab past the first is
// unmapped outright, and the first slab's offset returns to zero so
// its pages are reused rather than re-mapped.
func (n *Node) Reset(target *memsys.Node) status.Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range n.slabs[1:] {
		unix.Munmap(s.mem)
	}
	n.slabs = n.slabs[:1]
	n.slabs[0].off = 0
	return status.Success
}

// Destroy implements memsys.Destroyer by unmapping every slab,
// including the node's own Node record's backing memory would be if
// this backend also owned it (it does not: the arena.Node value
// itself is ordinary Go heap memory, only the slabs are mmap'd).
func (n *Node) Destroy(target *memsys.Node) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range n.slabs {
		unix.Munmap(s.mem)
	}
	n.slabs = nil
}
