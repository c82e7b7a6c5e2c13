// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"
	"testing"

	"github.com/gogpu/rendertask"
)

func batchOf(key Key, ids ...int32) Batch {
	b := Batch{Key: key}
	for _, id := range ids {
		b.Instances = append(b.Instances, inst(id))
	}
	return b
}

func TestContainer_MergeAlphaPreservesOrder(t *testing.T) {
	a, b, c := imageKey(BlendAlpha, 1), imageKey(BlendAlpha, 2), imageKey(BlendAlpha, 3)
	var merged Container
	merged.Merge(nil, []Batch{batchOf(a, 0), batchOf(b, 1)}, image.Rect(0, 0, 10, 10))
	merged.Merge(nil, []Batch{batchOf(b, 2), batchOf(a, 3), batchOf(c, 4)}, image.Rect(10, 0, 20, 10))

	// b merges into index 1; a cannot go back to index 0 and is appended.
	want := [][]int32{{0}, {1, 2}, {3}, {4}}
	if len(merged.AlphaBatches) != len(want) {
		t.Fatalf("alpha batches = %d, want %d", len(merged.AlphaBatches), len(want))
	}
	for i, ids := range want {
		got := merged.AlphaBatches[i].Instances
		if len(got) != len(ids) {
			t.Fatalf("batch %d = %v, want %v", i, got, ids)
		}
		for j := range ids {
			if got[j][0] != ids[j] {
				t.Errorf("batch %d instance %d = %d, want %d", i, j, got[j][0], ids[j])
			}
		}
	}
	if merged.TaskRect != image.Rect(0, 0, 20, 10) {
		t.Errorf("TaskRect = %v", merged.TaskRect)
	}
}

func TestContainer_MergeOpaqueAnyCompatible(t *testing.T) {
	a, b := Key{Kind: KindSolid}, Key{Kind: KindImage}
	var merged Container
	merged.Merge([]Batch{batchOf(a, 0), batchOf(b, 1)}, nil, image.Rectangle{})
	merged.Merge([]Batch{batchOf(a, 2)}, nil, image.Rectangle{})

	if len(merged.OpaqueBatches) != 2 {
		t.Fatalf("opaque batches = %d, want 2", len(merged.OpaqueBatches))
	}
	if n := len(merged.OpaqueBatches[0].Instances); n != 2 {
		t.Errorf("first opaque batch = %d instances, want 2", n)
	}
	if merged.InstanceCount() != 3 || merged.IsEmpty() {
		t.Errorf("InstanceCount = %d", merged.InstanceCount())
	}
}

func TestBuilder_ScissorSelectsContainer(t *testing.T) {
	cfg := NewBuilderConfig(rendertask.DefaultConfig(), screen)
	rect := image.Rect(0, 0, 64, 64)

	var containers []Container
	var merged Container

	mergeable := NewBuilder(cfg, 1, rect, nil, 0)
	mergeable.Add(imageKey(BlendAlpha, 1), rect, inst(0))
	mergeable.Build(&containers, &merged)

	scissor := rect
	isolated := NewBuilder(cfg, 2, rect, &scissor, 0)
	isolated.Add(imageKey(BlendAlpha, 1), rect, inst(1))
	isolated.Build(&containers, &merged)

	if len(containers) != 1 || containers[0].TaskScissorRect == nil {
		t.Fatalf("containers = %+v", containers)
	}
	if len(merged.AlphaBatches) != 1 || merged.TaskScissorRect != nil {
		t.Errorf("merged = %+v", merged)
	}
}
