// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pass turns partitioned render tasks into a Frame.
//
// A Pass is one scheduling epoch. Tasks are appended while the pass
// accumulates, then Build assigns every task to a concrete target exactly
// once. The last pass of a frame draws into the framebuffer; every other
// pass renders off screen into color and alpha texture arrays and the
// persistent texture and picture caches.
//
// Basic usage:
//
//	passes := pass.Schedule(cfg, graph, root)
//	b := &pass.Builder{Config: cfg, ScreenSize: screen, Pictures: pictures,
//		Spatial: tree, Resources: images, GPUCache: gc}
//	frame := b.Build(graph, passes)
package pass
