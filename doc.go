// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package rendertask schedules render tasks for a tiled GPU rasterizer.
//
// # Overview
//
// A frame's off-screen work (picture composites, blurs, masks, scaling,
// blits, gradients, borders, line decorations and SVG filter stages) is
// described as a graph of render tasks. The graph is bucketed into passes,
// each pass places its task outputs into shared atlas textures, and every
// target sorts its GPU work into batches a thin presentation layer can
// submit directly.
//
// # Architecture
//
//   - atlas: 2D rectangle packing over texture-array slices
//   - task: render task kinds, locations and the task graph
//   - batch: batch keys, batch lists and primitive batching
//   - target: color, alpha, texture-cache and picture-cache targets
//   - pass: render passes and the finished Frame
//   - present: texture and attachment descriptors for wgpu hal devices
//   - gpucache, resource: the GPU-cache and resource-cache collaborators
//
// This root package holds what every sub-package shares: the logger,
// the configuration and the invariant errors.
//
// # Errors
//
// Invariant violations (a task dispatched to the wrong target kind, a child
// referenced before it exists, a texture-cache read/write alias, an
// allocation that can never fit) are defects in the caller and panic with an
// *InvariantError. Conditions that can legitimately happen at runtime are
// returned as errors or folded into deferred resolves.
package rendertask
