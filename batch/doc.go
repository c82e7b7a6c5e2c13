// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package batch groups primitive draw instances into batches that share
// shader, blend and texture state.
//
// A Builder collects the instances of one render task. Opaque primitives go
// to an opaque list that is later drawn front to back; everything else goes
// to an alpha list that keeps painter's order and only merges with an
// earlier batch when no batch in between overlaps the new item. Builders of
// pictures that may share draw calls are merged into one Container; the
// rest keep their own Container with a scissor rect.
//
// Walker visits the primitives of a picture once and feeds every Builder
// whose visibility mask matches, so sibling picture-cache tiles share one
// traversal and one set of primitive headers.
package batch
