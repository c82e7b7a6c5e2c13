// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package atlas packs render-task outputs into the slices of a texture array.
//
// Each slice is an independent shelf packer. When no existing slice can take
// a request the [Allocator] appends a new slice whose dimensions are the
// larger of the ideal texture dimension and the quantized largest dynamic
// request seen so far. Already placed items are never moved.
package atlas
