// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package batch

import (
	"image"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/task"
)

// Container holds the finished batches of one or more picture tasks.
type Container struct {
	OpaqueBatches []Batch
	AlphaBatches  []Batch
	// TaskScissorRect is set for pictures that could not be merged.
	TaskScissorRect *image.Rectangle
	// TaskRect is the union of the task rects drawn by the container.
	TaskRect image.Rectangle
}

// IsEmpty reports whether c has no batches.
func (c *Container) IsEmpty() bool {
	return len(c.OpaqueBatches) == 0 && len(c.AlphaBatches) == 0
}

// InstanceCount returns the number of instances over all batches.
func (c *Container) InstanceCount() int {
	n := 0
	for i := range c.OpaqueBatches {
		n += len(c.OpaqueBatches[i].Instances)
	}
	for i := range c.AlphaBatches {
		n += len(c.AlphaBatches[i].Instances)
	}
	return n
}

// Merge appends the batches of another picture. Opaque batches join any
// compatible batch. Alpha batches join a compatible batch at or after the
// last merge point so relative order is preserved.
func (c *Container) Merge(opaque, alpha []Batch, taskRect image.Rectangle) {
	c.TaskRect = c.TaskRect.Union(taskRect)

	for _, other := range opaque {
		merged := false
		for i := range c.OpaqueBatches {
			if c.OpaqueBatches[i].Key.IsCompatible(other.Key) {
				b := &c.OpaqueBatches[i]
				b.Key.Textures = b.Key.Textures.Combine(other.Key.Textures)
				b.Instances = append(b.Instances, other.Instances...)
				merged = true
				break
			}
		}
		if !merged {
			c.OpaqueBatches = append(c.OpaqueBatches, other)
		}
	}

	minIndex := 0
	for _, other := range alpha {
		found := -1
		for i := minIndex; i < len(c.AlphaBatches); i++ {
			if c.AlphaBatches[i].Key.IsCompatible(other.Key) {
				found = i
				break
			}
		}
		if found < 0 {
			c.AlphaBatches = append(c.AlphaBatches, other)
			minIndex = len(c.AlphaBatches)
			continue
		}
		b := &c.AlphaBatches[found]
		b.Key.Textures = b.Key.Textures.Combine(other.Key.Textures)
		b.Instances = append(b.Instances, other.Instances...)
		minIndex = found
	}
}

// BuilderConfig sizes the batch lists of a Builder.
type BuilderConfig struct {
	ScreenSize    image.Point
	Lookback      int
	BreakAdvanced bool
}

// NewBuilderConfig derives batch list settings from cfg.
func NewBuilderConfig(cfg rendertask.Config, screen image.Point) BuilderConfig {
	return BuilderConfig{
		ScreenSize:    screen,
		Lookback:      cfg.BatchLookbackCount,
		BreakAdvanced: cfg.BreakAdvancedBlendBatches,
	}
}

// Builder collects the instances of one render task.
type Builder struct {
	list        *List
	taskAddress task.Address
	taskRect    image.Rectangle
	scissor     *image.Rectangle
	visMask     task.VisibilityMask
}

// NewBuilder creates a builder for the task at addr drawing into taskRect.
// A non-nil scissor keeps the builder's batches in their own container.
func NewBuilder(cfg BuilderConfig, addr task.Address, taskRect image.Rectangle, scissor *image.Rectangle, mask task.VisibilityMask) *Builder {
	return &Builder{
		list:        NewList(cfg.ScreenSize, cfg.Lookback, cfg.BreakAdvanced),
		taskAddress: addr,
		taskRect:    taskRect,
		scissor:     scissor,
		visMask:     mask,
	}
}

// TaskAddress returns the address instances of this builder write to.
func (b *Builder) TaskAddress() task.Address {
	return b.taskAddress
}

// VisibilityMask returns the tiles this builder accepts primitives for.
func (b *Builder) VisibilityMask() task.VisibilityMask {
	return b.visMask
}

// Add appends an instance.
func (b *Builder) Add(key Key, rect image.Rectangle, inst Instance) {
	b.list.Add(key, rect, inst)
}

// Build finalizes the builder into containers: a scissored builder gets its
// own container, any other is merged into merged.
func (b *Builder) Build(containers *[]Container, merged *Container) {
	opaque, alpha := b.list.Finalize()
	if b.scissor == nil {
		merged.Merge(opaque, alpha, b.taskRect)
		return
	}
	*containers = append(*containers, Container{
		OpaqueBatches:   opaque,
		AlphaBatches:    alpha,
		TaskScissorRect: b.scissor,
		TaskRect:        b.taskRect,
	})
}

// Finish finalizes the builder into a standalone container.
func (b *Builder) Finish() Container {
	opaque, alpha := b.list.Finalize()
	return Container{
		OpaqueBatches:   opaque,
		AlphaBatches:    alpha,
		TaskScissorRect: b.scissor,
		TaskRect:        b.taskRect,
	}
}
