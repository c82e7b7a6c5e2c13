// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucache

import "testing"

func TestCache_WriteOncePerFrame(t *testing.T) {
	c := New()
	c.BeginFrame()

	var h Handle
	req := c.Request(&h)
	if req == nil {
		t.Fatal("first Request returned nil")
	}
	req.Push(Block{1, 2, 3, 4})
	req.Push(Block{5, 6, 7, 8})
	addr := req.Close()

	if c.Request(&h) != nil {
		t.Error("second Request in the same frame should be nil")
	}
	if got := c.Address(&h); got != addr {
		t.Errorf("Address = %v, want %v", got, addr)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCache_NewFrameInvalidates(t *testing.T) {
	c := New()
	c.BeginFrame()

	var h Handle
	c.Request(&h).Close()
	c.BeginFrame()

	if c.Address(&h).IsValid() {
		t.Error("address from previous frame should be invalid")
	}
	if c.Request(&h) == nil {
		t.Error("Request in a new frame should not be nil")
	}
	if c.Len() != 0 {
		t.Errorf("Len after BeginFrame = %d, want 0", c.Len())
	}
}

func TestCache_AddressesAreSequential(t *testing.T) {
	c := New()
	c.BeginFrame()

	var a, b Handle
	ra := c.Request(&a)
	ra.PushRect(0, 0, 1, 1)
	ra.PushRect(0, 0, 2, 2)
	ra.Close()
	rb := c.Request(&b)
	rb.PushRect(0, 0, 3, 3)
	rb.Close()

	if got := c.Address(&b).Index(); got != 2 {
		t.Errorf("second handle index = %d, want 2", got)
	}
}

func TestCache_DeferredBlocks(t *testing.T) {
	c := New()
	c.BeginFrame()

	c.PushPerFrameBlocks(Block{9})
	addr := c.PushDeferredPerFrameBlocks(2)
	if addr.Index() != 1 {
		t.Fatalf("deferred address index = %d, want 1", addr.Index())
	}
	c.Patch(addr.Offset(1), Block{1, 1, 1, 1})

	blocks := c.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("len(Blocks) = %d, want 3", len(blocks))
	}
	if blocks[1] != (Block{}) || blocks[2] != (Block{1, 1, 1, 1}) {
		t.Errorf("blocks = %v", blocks)
	}
}

func TestAddress_Layout(t *testing.T) {
	tests := []struct {
		index int
		want  Address
	}{
		{0, Address{0, 0}},
		{1023, Address{1023, 0}},
		{1024, Address{0, 1}},
		{2050, Address{2, 2}},
	}
	for _, tt := range tests {
		got := addressOf(tt.index)
		if got != tt.want {
			t.Errorf("addressOf(%d) = %v, want %v", tt.index, got, tt.want)
		}
		if got.Index() != tt.index {
			t.Errorf("%v.Index() = %d, want %d", got, got.Index(), tt.index)
		}
	}
	if InvalidAddress.IsValid() {
		t.Error("InvalidAddress.IsValid() = true")
	}
}

func TestCache_Bytes(t *testing.T) {
	c := New()
	c.BeginFrame()
	if len(c.Bytes()) != 0 {
		t.Fatalf("empty frame has %d bytes", len(c.Bytes()))
	}
	c.PushPerFrameBlocks(Block{1, 2, 3, 4}, Block{5, 6, 7, 8})

	b := c.Bytes()
	if len(b) != 2*16 {
		t.Fatalf("len(Bytes) = %d, want 32", len(b))
	}
	// 1.0f little-endian is 00 00 80 3f.
	if b[0] != 0 || b[1] != 0 || b[2] != 0x80 || b[3] != 0x3f {
		t.Errorf("first float bytes = % x", b[:4])
	}
}
