// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpucache stores per-frame float blocks that shaders read by
// address.
//
// Every block is four float32 values. A Handle identifies a logical item
// across frames; its blocks are written at most once per frame and the
// address stays valid until the next BeginFrame.
package gpucache

import (
	"fmt"

	"honnef.co/go/safeish"
)

// BlocksPerRow is the width of the backing texture in blocks.
const BlocksPerRow = 1024

// Block is one texel of GPU cache data.
type Block [4]float32

// Address locates a block in the cache texture.
type Address struct {
	U uint16
	V uint16
}

// InvalidAddress marks an address that was never assigned.
var InvalidAddress = Address{U: ^uint16(0), V: ^uint16(0)}

// IsValid reports whether a is a real address.
func (a Address) IsValid() bool {
	return a != InvalidAddress
}

// Index returns the linear block index of a.
func (a Address) Index() int {
	return int(a.V)*BlocksPerRow + int(a.U)
}

// Offset returns the address n blocks after a in the same row.
func (a Address) Offset(n int) Address {
	return addressOf(a.Index() + n)
}

// String implements fmt.Stringer.
func (a Address) String() string {
	if !a.IsValid() {
		return "Address(invalid)"
	}
	return fmt.Sprintf("Address(%d,%d)", a.U, a.V)
}

func addressOf(index int) Address {
	//nolint:gosec // G115: the cache never grows past 65535 rows
	return Address{U: uint16(index % BlocksPerRow), V: uint16(index / BlocksPerRow)}
}

// FrameID counts frames.
type FrameID uint64

// Handle is a stable reference to a cache item. The zero Handle is unused and
// always requests a write.
type Handle struct {
	location *location
}

type location struct {
	frame   FrameID
	address Address
}

// IsValid reports whether h has been written at least once.
func (h *Handle) IsValid() bool {
	return h.location != nil
}

// Cache is a write-once-per-frame block store.
//
// Cache is not safe for concurrent use; it is owned by the frame builder.
type Cache struct {
	frame  FrameID
	blocks []Block
}

// New creates an empty cache at frame 0.
func New() *Cache {
	return &Cache{blocks: make([]Block, 0, BlocksPerRow)}
}

// BeginFrame starts a new frame and discards all blocks of the previous one.
func (c *Cache) BeginFrame() FrameID {
	c.frame++
	c.blocks = c.blocks[:0]
	return c.frame
}

// Frame returns the current frame id.
func (c *Cache) Frame() FrameID {
	return c.frame
}

// Request returns a writer for h, or nil when h was already written this
// frame. The caller must Close the returned request.
func (c *Cache) Request(h *Handle) *Request {
	if h.location != nil && h.location.frame == c.frame {
		return nil
	}
	return &Request{cache: c, handle: h, start: len(c.blocks)}
}

// Address returns the address h was written to this frame, or
// InvalidAddress.
func (c *Cache) Address(h *Handle) Address {
	if h == nil || h.location == nil || h.location.frame != c.frame {
		return InvalidAddress
	}
	return h.location.address
}

// PushPerFrameBlocks appends anonymous blocks that live for this frame only.
func (c *Cache) PushPerFrameBlocks(blocks ...Block) Address {
	addr := addressOf(len(c.blocks))
	c.blocks = append(c.blocks, blocks...)
	return addr
}

// PushDeferredPerFrameBlocks reserves n zero blocks to be patched later in
// the frame, usually once a deferred resolve completes.
func (c *Cache) PushDeferredPerFrameBlocks(n int) Address {
	addr := addressOf(len(c.blocks))
	c.blocks = append(c.blocks, make([]Block, n)...)
	return addr
}

// Patch overwrites a previously pushed block.
func (c *Cache) Patch(addr Address, b Block) {
	c.blocks[addr.Index()] = b
}

// Blocks returns the blocks written this frame in address order.
func (c *Cache) Blocks() []Block {
	return c.blocks
}

// Bytes returns the blocks written this frame as raw bytes for a texture
// upload. The slice aliases the cache and is invalidated by BeginFrame.
func (c *Cache) Bytes() []byte {
	return safeish.SliceCast[[]byte](c.blocks)
}

// Len returns the number of blocks written this frame.
func (c *Cache) Len() int {
	return len(c.blocks)
}

// Request collects the blocks of one handle.
type Request struct {
	cache  *Cache
	handle *Handle
	start  int
	closed bool
}

// Push appends a block.
func (r *Request) Push(b Block) {
	r.cache.blocks = append(r.cache.blocks, b)
}

// PushRect appends a block holding x0, y0, x1, y1.
func (r *Request) PushRect(x0, y0, x1, y1 float32) {
	r.Push(Block{x0, y0, x1, y1})
}

// Close records the handle's address. Closing twice is a no-op.
func (r *Request) Close() Address {
	addr := addressOf(r.start)
	if r.closed {
		return addr
	}
	r.closed = true
	r.handle.location = &location{frame: r.cache.frame, address: addr}
	return addr
}
