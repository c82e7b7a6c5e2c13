// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package task

import (
	"slices"

	"github.com/gogpu/rendertask"
)

// maxTasks bounds a graph so every task Address is below NoAddress.
const maxTasks = int(NoAddress)

// Graph owns the tasks of one frame. IDs are indices and are never reused.
//
// Graph is not safe for concurrent use.
type Graph struct {
	tasks      []Task
	savedCount uint32
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{tasks: make([]Task, 0, 64)}
}

// Add appends a task. Every child must already be in the graph.
func (g *Graph) Add(kind Kind, location Location, children []ID, clear ClearMode) ID {
	for _, c := range children {
		if int(c) >= len(g.tasks) {
			rendertask.Invariant(rendertask.ErrForwardReference,
				"%s task references child %d, graph has %d tasks", kind.Name(), c, len(g.tasks))
		}
	}
	if len(g.tasks) >= maxTasks {
		rendertask.Invariant(rendertask.ErrTooManyTasks, "graph holds %d tasks", maxTasks)
	}
	id := ID(len(g.tasks)) //nolint:gosec // bounded by maxTasks
	g.tasks = append(g.tasks, Task{
		Kind:      kind,
		Location:  location,
		Children:  slices.Clone(children),
		ClearMode: clear,
	})
	return id
}

// Get returns the task with the given id. The pointer stays valid until the
// next Add.
func (g *Graph) Get(id ID) *Task {
	return &g.tasks[id]
}

// Children returns the direct dependencies of id.
func (g *Graph) Children(id ID) []ID {
	return g.tasks[id].Children
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Address returns the GPU address of id.
func (g *Graph) Address(id ID) Address {
	return Address(id) //nolint:gosec // bounded by maxTasks
}

// SaveTarget allocates a new saved target index.
func (g *Graph) SaveTarget() SavedIndex {
	idx := SavedIndex(g.savedCount)
	g.savedCount++
	return idx
}

// SavedCount returns how many saved indices were allocated.
func (g *Graph) SavedCount() int {
	return int(g.savedCount)
}

// MarkForSaving marks id as saved. Its index is resolved when the pass that
// renders it is built.
func (g *Graph) MarkForSaving(id ID) {
	t := &g.tasks[id]
	if t.saved.state == notSaved {
		t.saved.state = savePending
	}
}

// TaskData returns the GPU record of every task, indexed by Address.
func (g *Graph) TaskData() []Data {
	data := make([]Data, len(g.tasks))
	for i := range g.tasks {
		data[i] = g.tasks[i].data()
	}
	return data
}

// AssignPasses buckets the tasks reachable from root into passes ordered by
// dependency depth. The root lands in the last pass and each task lands in
// the pass before its deepest consumer. A child consumed by a pass that is
// not directly after its own is marked for saving.
func (g *Graph) AssignPasses(root ID) [][]ID {
	depth := make(map[ID]int, len(g.tasks))
	depth[root] = 0
	maxDepth := 0

	// Children always have smaller ids, so walking ids downwards visits every
	// consumer before its children.
	for id := int(root); id >= 0; id-- {
		d, ok := depth[ID(id)] //nolint:gosec // id < len(tasks)
		if !ok {
			continue
		}
		maxDepth = max(maxDepth, d)
		for _, c := range g.tasks[id].Children {
			if cd, seen := depth[c]; !seen || cd < d+1 {
				depth[c] = d + 1
			}
		}
	}

	passes := make([][]ID, maxDepth+1)
	for id := ID(0); int(id) <= int(root); id++ {
		d, ok := depth[id]
		if !ok {
			continue
		}
		p := maxDepth - d
		passes[p] = append(passes[p], id)
	}

	for p, ids := range passes {
		for _, id := range ids {
			for _, c := range g.tasks[id].Children {
				if maxDepth-depth[c] < p-1 {
					g.MarkForSaving(c)
				}
			}
		}
	}
	return passes
}
