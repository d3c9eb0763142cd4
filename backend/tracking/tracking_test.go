// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tracking

import (
	"testing"

	"github.com/gomemsys/memsys/backend/arena"
)

// recordingLogger captures every Printf call for assertions, the way
// tests elsewhere in the corpus capture output into a []string instead
// of asserting against a real io.Writer.
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Printf(format string, v ...interface{}) {
	r.lines = append(r.lines, format)
}

func (r *recordingLogger) Println(v ...interface{}) {}

func TestAllocateLogsAndDelegates(t *testing.T) {
	inner, err := arena.NewStandalone(&arena.Config{SlabSize: 4096})
	if err != nil {
		t.Fatalf("arena.NewStandalone: %v", err)
	}
	logger := &recordingLogger{}
	n := New(nil, inner, logger)

	b := n.EmbeddedNode().Allocate(32)
	if len(b) != 32 {
		t.Fatalf("len(Allocate(32)) = %d, want 32", len(b))
	}
	if len(logger.lines) != 1 {
		t.Fatalf("logger saw %d lines, want 1", len(logger.lines))
	}
}

func TestResetLogsAndDelegates(t *testing.T) {
	inner, err := arena.NewStandalone(&arena.Config{SlabSize: 64})
	if err != nil {
		t.Fatalf("arena.NewStandalone: %v", err)
	}
	logger := &recordingLogger{}
	n := New(nil, inner, logger)

	n.EmbeddedNode().Allocate(64)
	n.EmbeddedNode().Allocate(64)

	if st := n.EmbeddedNode().Reset(); !st.OK() {
		t.Fatalf("Reset() = %v, want Success", st)
	}
	if len(logger.lines) == 0 {
		t.Fatalf("Reset did not log")
	}
}

func TestDestroyFiresPreDestroyThenDelegates(t *testing.T) {
	inner, err := arena.NewStandalone(nil)
	if err != nil {
		t.Fatalf("arena.NewStandalone: %v", err)
	}
	logger := &recordingLogger{}
	n := New(nil, inner, logger)

	if st := n.EmbeddedNode().Destroy(); !st.OK() {
		t.Fatalf("Destroy() = %v, want Success", st)
	}

	var sawPreDestroy, sawDestroy bool
	for _, l := range logger.lines {
		if l == "memsys/tracking: pre-destroy" {
			if sawDestroy {
				t.Fatalf("logger.lines = %v, want pre-destroy before destroy", logger.lines)
			}
			sawPreDestroy = true
		}
		if l == "memsys/tracking: destroy" {
			sawDestroy = true
		}
	}
	if !sawPreDestroy || !sawDestroy {
		t.Fatalf("logger.lines = %v, want pre-destroy and destroy entries", logger.lines)
	}
}
