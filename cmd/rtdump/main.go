// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command rtdump builds a synthetic frame and reports its pass schedule.
//
// It partitions a graph of shadowed pictures, clip masks and cached line
// decorations into passes, logs what every pass holds and writes a PNG
// of the color atlas occupancy of the first off-screen pass.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/batch"
	"github.com/gogpu/rendertask/pass"
	"github.com/gogpu/rendertask/task"
)

func main() {
	var (
		width   = flag.Int("width", 1280, "framebuffer width")
		height  = flag.Int("height", 720, "framebuffer height")
		shadows = flag.Int("shadows", 24, "number of blurred drop shadows")
		masks   = flag.Int("masks", 8, "number of clip masks")
		output  = flag.String("output", "atlas.png", "atlas occupancy image, empty to skip")
		scale   = flag.Int("scale", 4, "downscale factor of the occupancy image")
		verbose = flag.Bool("v", false, "log pass building")
	)
	flag.Parse()

	if *verbose {
		rendertask.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := rendertask.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	screen := image.Pt(*width, *height)
	g, root, pictures := buildScene(screen, *shadows, *masks)
	passes := pass.Schedule(cfg, g, root)

	b := &pass.Builder{Config: cfg, ScreenSize: screen, Pictures: pictures}
	frame := b.Build(g, passes)

	for i, p := range frame.Passes {
		attrs := []any{"pass", i, "kind", p.Kind().String(), "tasks", len(p.Tasks())}
		if p.Kind() == pass.OffScreen {
			attrs = append(attrs,
				"color_layers", p.Color.Len(), "color_size", p.Color.TextureSize().String(),
				"alpha_layers", p.Alpha.Len(), "texture_cache", len(p.TextureCacheKeys()))
		} else {
			attrs = append(attrs, "containers", len(p.Framebuffer.AlphaBatchContainers))
		}
		logger.Info("pass", attrs...)
	}
	logger.Info("frame",
		"tasks", len(frame.TaskData), "headers", len(frame.Headers),
		"transforms", len(frame.Transforms), "gpu_blocks", len(frame.GPUBlocks),
		"upload_bytes", len(frame.TaskDataBytes())+len(frame.GPUBlockBytes()),
		"must_be_drawn", frame.MustBeDrawn())

	if *output == "" {
		return
	}
	img := occupancy(g, frame, *scale)
	if img == nil {
		logger.Info("no off-screen color targets, skipping image")
		return
	}
	if err := writePNG(*output, img); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	logger.Info("occupancy image written", "path", *output, "size", img.Bounds().Size().String())
}

// buildScene creates a root picture drawing n blurred shadows, n clip masks
// and one cached underline per shadow.
func buildScene(screen image.Point, shadows, masks int) (*task.Graph, task.ID, batch.PictureList) {
	g := task.NewGraph()
	// Picture 0 is the screen, picture 1 the shape every shadow is cast by.
	pictures := batch.PictureList{{}, {Primitives: []batch.Primitive{
		{Kind: batch.KindSolid, Blend: batch.BlendAlpha, LocalRect: image.Rect(0, 0, 48, 32)},
	}}}
	var children []task.ID

	for i := range shadows {
		size := image.Pt(48+(i*37)%200, 32+(i*53)%150)
		blur := task.BlurTask{StdDeviation: float32(2 + i%5)}
		src := g.Add(&task.Picture{PicIndex: 1, CanMerge: true}, task.Dynamic{Size: size}, nil, task.Transparent)
		v := g.Add(&task.VerticalBlur{BlurTask: blur}, task.Dynamic{Size: size}, []task.ID{src}, task.DontCare)
		h := g.Add(&task.HorizontalBlur{BlurTask: blur}, task.Dynamic{Size: size}, []task.ID{v}, task.DontCare)
		children = append(children, h)

		line := g.Add(&task.LineDecoration{Style: task.LineWavy, WavyLineThickness: 1, LocalSize: [2]float32{float32(size.X), 4}},
			task.TextureCache{Texture: 1, Layer: i % 4, Rect: image.Rect(0, i*4, size.X, i*4+4)}, nil, task.DontCare)
		children = append(children, line)

		pictures[0].Primitives = append(pictures[0].Primitives, batch.Primitive{
			Kind:      batch.KindImage,
			Blend:     batch.BlendPremultipliedAlpha,
			LocalRect: image.Rectangle{Max: size}.Add(image.Pt((i*97)%screen.X, (i*61)%screen.Y)),
			Input:     &h,
		})
	}
	for i := range masks {
		id := g.Add(&task.CacheMask{Clips: []task.ClipItem{{Kind: task.ClipRectangle}}},
			task.Dynamic{Size: image.Pt(64+i*16, 64)}, nil, task.One)
		children = append(children, id)
	}

	root := g.Add(&task.Picture{PicIndex: 0}, task.Fixed{Rect: image.Rectangle{Max: screen}}, children, task.DontCare)
	return g, root, pictures
}

var palette = []color.RGBA{
	{R: 0xE4, G: 0x57, B: 0x2E, A: 0xFF},
	{R: 0x29, G: 0x33, B: 0x5C, A: 0xFF},
	{R: 0xF3, G: 0xA7, B: 0x12, A: 0xFF},
	{R: 0x66, G: 0x9B, B: 0xBC, A: 0xFF},
	{R: 0xA8, G: 0xC6, B: 0x86, A: 0xFF},
}

// occupancy paints every placed color task of the first off-screen pass
// into an image of its atlas and scales it down by scale.
func occupancy(g *task.Graph, f *pass.Frame, scale int) image.Image {
	var first *pass.Pass
	for _, p := range f.Passes {
		if p.Kind() == pass.OffScreen && !p.Color.IsEmpty() {
			first = p
			break
		}
	}
	if first == nil {
		return nil
	}

	size := first.Color.TextureSize()
	layers := first.Color.Len()
	full := image.NewRGBA(image.Rect(0, 0, size.X, size.Y*layers))
	draw.Draw(full, full.Bounds(), image.NewUniform(color.RGBA{A: 0xFF}), image.Point{}, draw.Src)

	for i, id := range first.Tasks() {
		t := g.Get(id)
		if t.Placement() == nil || t.Kind.TargetKind() != task.Color {
			continue
		}
		rect, layer := t.TargetRect()
		rect = rect.Add(image.Pt(0, layer*size.Y))
		draw.Draw(full, rect, image.NewUniform(palette[i%len(palette)]), image.Point{}, draw.Src)
	}

	scale = max(scale, 1)
	dst := image.NewRGBA(image.Rect(0, 0, max(size.X/scale, 1), max(size.Y*layers/scale, 1)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), full, full.Bounds(), draw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
