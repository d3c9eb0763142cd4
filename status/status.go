// Copyright 2019 the Go-FUSE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package status defines the closed set of result codes returned by the
// memsys framework. Operations never panic for recoverable conditions;
// they return a Status instead, the same way syscall.Errno is used as a
// return value rather than an error channel.
package status

// Status is a small closed taxonomy of result codes. The zero value is
// Success, so a freshly zeroed Status (or a default return value) is
// always success-shaped, and equality comparisons against Success work
// without an explicit import of the constant.
type Status int

const (
	// Success indicates normal completion.
	Success Status = iota
	// InvalidArgument indicates a caller-supplied argument violates a
	// precondition (nil callback, nil pointer to Free).
	InvalidArgument
	// OutOfMemory indicates a cleanup record could not be allocated.
	OutOfMemory
	// NoSuchCleanup indicates Unregister found no matching (data, callback) pair.
	NoSuchCleanup
)

var names = [...]string{
	Success:         "success",
	InvalidArgument: "invalid argument",
	OutOfMemory:     "out of memory",
	NoSuchCleanup:   "no such cleanup",
}

// String returns a short, lower-case description of s.
func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(names) {
		return "status(unknown)"
	}
	return names[s]
}

// Error implements the error interface so a Status can be returned or
// compared anywhere a Go error is expected, without forcing every
// caller to wrap it.
func (s Status) Error() string {
	return s.String()
}

// OK reports whether s is Success.
func (s Status) OK() bool {
	return s == Success
}
