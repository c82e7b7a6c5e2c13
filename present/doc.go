// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package present maps a built Frame onto HAL resources.
//
// It does not record draw calls. It sizes the texture arrays behind each
// target list, derives render-pass attachments from the clear policies of
// each target, and pools the textures across frames so a steady-state
// frame allocates nothing on the device.
//
// The pool works with any HAL device:
//
//	pool, err := present.NewTexturePoolFromProvider(provider)
//	if err != nil {
//	    return err
//	}
//	textures, err := pool.AcquireFrame(cfg, frame)
//	...
//	pool.ReleaseFrame(textures)
package present
