// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"image"
	"testing"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/pass"
)

func TestBuildScene_Schedule(t *testing.T) {
	cfg := rendertask.DefaultConfig()
	screen := image.Pt(640, 480)
	g, root, pictures := buildScene(screen, 6, 2)

	passes := pass.Schedule(cfg, g, root)
	if len(passes) != 4 {
		t.Fatalf("passes = %d, want 4", len(passes))
	}
	frame := (&pass.Builder{Config: cfg, ScreenSize: screen, Pictures: pictures}).Build(g, passes)
	if !frame.MustBeDrawn() {
		t.Error("scene with cached lines must be drawn")
	}
	if n := len(passes[2].TextureCacheKeys()); n != 4 {
		t.Errorf("texture cache layers = %d, want 4", n)
	}

	img := occupancy(g, frame, 4)
	if img == nil {
		t.Fatal("no occupancy image")
	}
	if got := img.Bounds().Size(); got != image.Pt(512, 512) {
		t.Errorf("image size = %v", got)
	}
}
