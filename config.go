// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendertask

import (
	"github.com/gogpu/gputypes"
)

// Default scheduling limits.
const (
	// DefaultIdealMaxTextureDimension is the smallest edge of a newly created
	// atlas slice. Large enough that most frames fit one slice, small enough
	// that full-slice clears stay off slow driver paths.
	DefaultIdealMaxTextureDimension = 2048

	// DefaultTextureDimensionMask quantizes oversized slices to 256 texels.
	DefaultTextureDimensionMask = 0xFF

	// DefaultMaxTextureDimension is the hard device limit for a slice edge.
	DefaultMaxTextureDimension = 8192

	// DefaultBatchLookbackCount is how many alpha batches are searched for a
	// compatible key before a new batch is started.
	DefaultBatchLookbackCount = 10
)

// Config holds the frame-build configuration.
type Config struct {
	// IdealMaxTextureDimension is the minimum edge length of a new atlas
	// slice. Default: 2048
	IdealMaxTextureDimension int

	// TextureDimensionMask is the quantization mask applied when a slice must
	// grow past IdealMaxTextureDimension. Must be 2^n-1. Default: 0xFF
	TextureDimensionMask int

	// MaxTextureDimension is the largest slice edge the device supports.
	// Default: 8192
	MaxTextureDimension int

	// BatchLookbackCount bounds the batch search when merging alpha batches.
	// Default: 10
	BatchLookbackCount int

	// BreakAdvancedBlendBatches starts a new batch for every primitive that
	// uses an advanced blend mode.
	BreakAdvancedBlendBatches bool

	// GPUSupportsFastClears is forwarded to render targets so the presenter
	// can choose between full-target and per-rect clears.
	GPUSupportsFastClears bool

	// ColorFormat is the texture format of color targets.
	ColorFormat gputypes.TextureFormat

	// AlphaFormat is the texture format of alpha targets.
	AlphaFormat gputypes.TextureFormat

	// DepthFormat is the depth attachment format for targets with opaque
	// batches.
	DepthFormat gputypes.TextureFormat

	// FramebufferClearColor is the clear color of the terminal pass.
	FramebufferClearColor gputypes.Color
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		IdealMaxTextureDimension: DefaultIdealMaxTextureDimension,
		TextureDimensionMask:     DefaultTextureDimensionMask,
		MaxTextureDimension:      DefaultMaxTextureDimension,
		BatchLookbackCount:       DefaultBatchLookbackCount,
		GPUSupportsFastClears:    true,
		ColorFormat:              gputypes.TextureFormatRGBA8Unorm,
		AlphaFormat:              gputypes.TextureFormatR8Unorm,
		DepthFormat:              gputypes.TextureFormatDepth24PlusStencil8,
		FramebufferClearColor:    gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.IdealMaxTextureDimension < 256 {
		return &ConfigError{Field: "IdealMaxTextureDimension", Reason: "must be at least 256"}
	}
	if c.MaxTextureDimension < c.IdealMaxTextureDimension {
		return &ConfigError{Field: "MaxTextureDimension", Reason: "must be at least IdealMaxTextureDimension"}
	}
	if c.TextureDimensionMask < 0 || c.TextureDimensionMask&(c.TextureDimensionMask+1) != 0 {
		return &ConfigError{Field: "TextureDimensionMask", Reason: "must be one less than a power of 2"}
	}
	if c.BatchLookbackCount < 1 {
		return &ConfigError{Field: "BatchLookbackCount", Reason: "must be at least 1"}
	}
	if c.ColorFormat == c.AlphaFormat {
		return &ConfigError{Field: "AlphaFormat", Reason: "must differ from ColorFormat"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "rendertask: invalid config." + e.Field + ": " + e.Reason
}
