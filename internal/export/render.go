// Package export renders traced scenes to PNG images.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"github.com/prismanis/prismanis/internal/document"
	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
	"github.com/prismanis/prismanis/internal/shape"
	"github.com/prismanis/prismanis/internal/trace"
)

var ErrBadSize = errors.New("invalid image size")

// Frame is everything drawn in one image. Objects must not be mutated while
// a frame is rendered.
type Frame struct {
	Objects  []*shape.Object
	Segments []trace.Segment
}

type Options struct {
	Width  int
	Height int
	// Scale maps world units to pixels. Zero means 1.
	Scale      float64
	Background color.Color
	RayWidth   float64
}

func DefaultOptions() Options {
	return Options{
		Width:      1280,
		Height:     720,
		Scale:      1,
		Background: color.NRGBA{R: 17, G: 17, B: 17, A: 255},
		RayWidth:   1,
	}
}

// Render draws the frame and writes it as PNG.
func Render(w io.Writer, f Frame, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadSize, opts.Width, opts.Height)
	}
	dc := Draw(f, opts)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Draw paints the frame onto a new context.
func Draw(f Frame, opts Options) *gg.Context {
	dc := gg.NewContext(opts.Width, opts.Height)
	if opts.Background != nil {
		dc.SetColor(opts.Background)
		dc.Clear()
	}
	if opts.Scale > 0 {
		dc.Scale(opts.Scale, opts.Scale)
	}

	for _, o := range f.Objects {
		drawObject(dc, o)
	}

	width := opts.RayWidth
	if width <= 0 {
		width = 1
	}
	dc.SetLineWidth(width)
	for _, seg := range f.Segments {
		if len(seg.Points) < 2 {
			continue
		}
		polyline(dc, seg.Points)
		dc.SetColor(material.WavelengthToRGB(seg.WavelengthNm).RGBA(seg.Energy))
		dc.Stroke()
	}
	return dc
}

func drawObject(dc *gg.Context, o *shape.Object) {
	outline := o.Outline(document.OutlineSteps)
	if len(outline) < 2 {
		return
	}
	polyline(dc, outline)
	dc.ClosePath()
	if fill, err := material.ParseCSS(o.Material.FillColor); err == nil {
		dc.SetColor(fill)
		dc.FillPreserve()
	}
	stroke, err := material.ParseCSS(o.Material.StrokeColor)
	if err != nil {
		stroke = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	dc.SetColor(stroke)
	dc.SetLineWidth(1.5)
	dc.Stroke()
}

func polyline(dc *gg.Context, points []geom.Vec2) {
	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
}
