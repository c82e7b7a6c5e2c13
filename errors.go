// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendertask

import (
	"errors"
	"fmt"
)

// Sentinel errors for invariant violations. They are never returned: they
// travel inside an *InvariantError panic raised by [Invariant], because each
// one means the upstream scene preparation produced an inconsistent graph.
var (
	// ErrForwardReference is raised when a task names a child that has not
	// been added to the graph yet.
	ErrForwardReference = errors.New("rendertask: child task referenced before it was added")

	// ErrTargetKindMismatch is raised when a task kind is dispatched to a
	// target that cannot execute it.
	ErrTargetKindMismatch = errors.New("rendertask: task kind is not legal for this target")

	// ErrInvalidClearMode is raised when a clear mode is used on the wrong
	// target kind.
	ErrInvalidClearMode = errors.New("rendertask: clear mode is not legal for this target kind")

	// ErrTextureCacheAliasing is raised when a blit would read from and write
	// to the texture cache in the same pass.
	ErrTextureCacheAliasing = errors.New("rendertask: blit reads from and writes to the texture cache")

	// ErrAllocationTooLarge is raised when a single allocation cannot fit into
	// any slice the atlas is allowed to create.
	ErrAllocationTooLarge = errors.New("rendertask: allocation exceeds maximum slice dimensions")

	// ErrTaskNotPlaced is raised when a task location is used as a source
	// before it has been given a concrete placement.
	ErrTaskNotPlaced = errors.New("rendertask: task has no concrete placement")

	// ErrTaskPlaced is raised when a dynamic task is placed a second time or
	// a non-dynamic task is placed at all.
	ErrTaskPlaced = errors.New("rendertask: task placement is not assignable")

	// ErrMissingInput is raised when a task has fewer children than its
	// kind reads.
	ErrMissingInput = errors.New("rendertask: task is missing an input")

	// ErrPassBuilt is raised when a pass is modified or built after Build.
	ErrPassBuilt = errors.New("rendertask: pass has already been built")

	// ErrTooManyTasks is raised when a graph runs out of task addresses.
	ErrTooManyTasks = errors.New("rendertask: render task graph is full")

	// ErrFixedOverlap is raised when a fixed rect cannot be reserved because
	// dynamic allocations already occupy it.
	ErrFixedOverlap = errors.New("rendertask: fixed rect overlaps dynamic allocations")

	// ErrSavedIndex is raised when saved-target bookkeeping is inconsistent.
	ErrSavedIndex = errors.New("rendertask: inconsistent saved target index")
)

// InvariantError describes a violated scheduling invariant.
type InvariantError struct {
	Err    error
	Detail string
}

func (e *InvariantError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// Invariant aborts the current frame build by panicking with an
// *InvariantError that wraps err. Callers never recover from it.
func Invariant(err error, format string, args ...any) {
	panic(&InvariantError{Err: err, Detail: fmt.Sprintf(format, args...)})
}
