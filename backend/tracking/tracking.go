// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tracking implements a logging decorator over another tracking
// memsys backend: every Reset and Destroy call is reported to a Logger
// before being delegated to the wrapped backend, and every Allocate call
// is reported after delegation together with whether it succeeded. It
// exists to demonstrate composing backends the way fuse/log.go's leveled logger
// wraps an underlying standard library *log.Logger, adapted here to wrap
// an allocator instead of an output stream.
package tracking

import (
	"log"
	"os"

	"github.com/gomemsys/memsys"
	"github.com/gomemsys/memsys/status"
)

// Logger mirrors fuse.Logger's shape, so *log.Logger satisfies it
// directly without an adapter.
type Logger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

// Backend is what tracking.New requires of the node it wraps: full
// tracking capability plus the base Allocator. A decorator cannot
// conditionally forward Reset/Destroy depending on what the wrapped
// value happens to support, so the constructor's type signature pins
// the requirement down instead (DESIGN.md, decorator/optional-capability
// tension).
type Backend interface {
	memsys.Allocator
	memsys.Resetter
	memsys.Destroyer
}

// Node wraps an inner tracking backend, logging every lifecycle call
// made on it.
type Node struct {
	memsys.Node

	inner  Backend
	logger Logger
}

var (
	_ memsys.Allocator    = (*Node)(nil)
	_ memsys.Resetter     = (*Node)(nil)
	_ memsys.Destroyer    = (*Node)(nil)
	_ memsys.PreDestroyer = (*Node)(nil)
)

// defaultLogger backs New when no Logger is supplied.
var defaultLogger = log.New(os.Stderr, "", log.LstdFlags)

// New creates a logging node under parent, delegating all allocation
// strategy to inner. inner must not otherwise be linked into any memsys
// tree: this Node's embedded memsys.Node is the one tree position both
// share. A nil logger defaults to stderr.
func New(parent *memsys.Node, inner Backend, logger Logger) *Node {
	if logger == nil {
		logger = defaultLogger
	}
	n := &Node{inner: inner, logger: logger}
	memsys.Create(n, parent)
	return n
}

// Allocate implements memsys.Allocator, delegating then logging the
// outcome.
func (n *Node) Allocate(target *memsys.Node, size int) []byte {
	b := n.inner.Allocate(target, size)
	if b == nil {
		n.logger.Printf("memsys/tracking: allocate %d bytes failed", size)
	} else {
		n.logger.Printf("memsys/tracking: allocated %d bytes", size)
	}
	return b
}

// Reset implements memsys.Resetter, logging then delegating.
func (n *Node) Reset(target *memsys.Node) status.Status {
	n.logger.Printf("memsys/tracking: reset")
	return n.inner.Reset(target)
}

// Destroy implements memsys.Destroyer, logging then delegating.
func (n *Node) Destroy(target *memsys.Node) {
	n.logger.Printf("memsys/tracking: destroy")
	n.inner.Destroy(target)
}

// PreDestroy logs that this node is about to be torn down. It runs
// before Destroy, per the lifecycle engine's ordering.
func (n *Node) PreDestroy(target *memsys.Node) {
	n.logger.Printf("memsys/tracking: pre-destroy")
}
