// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command memsysdemo builds a small allocator hierarchy and exercises
// it end to end: a thread-safe arena root, a logging child, cleanup
// registration, and a reset followed by a full destroy.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/gomemsys/memsys"
	"github.com/gomemsys/memsys/backend/arena"
	"github.com/gomemsys/memsys/backend/threadsafe"
	"github.com/gomemsys/memsys/backend/tracking"
	"github.com/gomemsys/memsys/status"
)

func main() {
	debug := flag.Bool("debug", false, "run memsys.DebugAssert against every created node")
	slabSize := flag.Int("slab-size", 0, "arena slab size in bytes (0 uses the default)")
	flag.Parse()

	if *debug {
		os.Setenv("MEMSYS_DEBUG", "1")
	}

	cfg := arena.DefaultConfig()
	if *slabSize > 0 {
		cfg.SlabSize = *slabSize
	}

	rootArena, err := arena.NewStandalone(cfg)
	if err != nil {
		log.Fatalf("arena.NewStandalone: %v", err)
	}
	root := threadsafe.WrapTracking(nil, rootArena)
	if *debug {
		memsys.DebugAssert(root.EmbeddedNode())
	}

	childArena, err := arena.NewStandalone(cfg)
	if err != nil {
		log.Fatalf("arena.NewStandalone: %v", err)
	}
	logger := log.New(os.Stderr, "memsysdemo: ", 0)
	child := tracking.New(root.EmbeddedNode(), childArena, logger)
	if *debug {
		memsys.DebugAssert(child.EmbeddedNode())
	}

	n := child.EmbeddedNode()
	n.Lock()
	buf := n.Allocate(256)
	n.Unlock()
	if buf == nil {
		log.Fatal("allocate failed")
	}

	st := n.Register("greeting", func(data interface{}) status.Status {
		log.Printf("cleanup ran for %v", data)
		return status.Success
	})
	if !st.OK() {
		log.Fatalf("register: %v", st)
	}

	if st := n.Reset(); !st.OK() {
		log.Fatalf("reset: %v", st)
	}

	if st := root.EmbeddedNode().Destroy(); !st.OK() {
		log.Fatalf("destroy: %v", st)
	}

	log.Println("done")
}
