/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package raster owns pixel buffers and turns vector strokes into pixels.
// Stroking is done by rasterx (the same scanline rasterizer the UI toolkit uses
// for its software painter); scaling and decoding come from golang.org/x/image.
package raster

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"drawingapp/internal/vector"
)

// miterLimit only matters for miter joins; freehand strokes use round joins.
const miterLimit = 4

// Buffer is a width x height RGBA pixel grid with a reusable rasterizer bound to it.
type Buffer struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	stroker *rasterx.Stroker
	filler  *rasterx.Filler
}

// NewBuffer allocates a transparent buffer. Non-positive sizes are clamped to 1.
func NewBuffer(width, height int) *Buffer {
	width = max(width, 1)
	height = max(height, 1)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	sc := rasterx.NewScannerGV(width, height, img, img.Bounds())
	return &Buffer{
		img:     img,
		scanner: sc,
		stroker: rasterx.NewStroker(width, height, sc),
		filler:  rasterx.NewFiller(width, height, sc),
	}
}

// Image returns the backing image. It is reused across frames.
func (b *Buffer) Image() *image.RGBA { return b.img }

// Size returns the buffer dimensions in pixels.
func (b *Buffer) Size() (int, int) { return b.img.Rect.Dx(), b.img.Rect.Dy() }

// Clear resets every pixel to transparent.
func (b *Buffer) Clear() { clear(b.img.Pix) }

// Fill paints every pixel with c, replacing what was there.
func (b *Buffer) Fill(c vector.Color) {
	xdraw.Draw(b.img, b.img.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, xdraw.Src)
}

// Composite draws src over the buffer, aligned at the origin.
func (b *Buffer) Composite(src image.Image) {
	if src == nil {
		return
	}
	xdraw.Draw(b.img, b.img.Bounds(), src, src.Bounds().Min, xdraw.Over)
}

// Clone returns a copy of the current pixels.
func (b *Buffer) Clone() *image.RGBA {
	out := image.NewRGBA(b.img.Rect)
	copy(out.Pix, b.img.Pix)
	return out
}

// StrokePath outlines p with st. Paths whose points all coincide are painted as
// a dot the size of the brush, so a single tap stays visible.
func (b *Buffer) StrokePath(p vector.Path, st vector.Stroke) {
	if p.IsEmpty() || st.Color.A == 0 {
		return
	}
	width := float64(st.Width)
	if width < 1 {
		width = 1 // hairline
	}
	col := st.Color.NRGBA()

	var dots []vector.Pt
	drawn := false
	b.stroker.Clear()
	capper := capFunc(st.Cap)
	b.stroker.SetStroke(fixed.Int26_6(width*64), fixed.Int26_6(miterLimit*64), capper, capper, gapFunc(st.Join), joinMode(st.Join))
	b.stroker.SetColor(col)
	for _, sp := range p.Subpaths() {
		pts := dedupe(sp)
		if len(pts) == 1 {
			dots = append(dots, pts[0])
			continue
		}
		b.stroker.Start(toFixed(pts[0]))
		for _, q := range pts[1:] {
			b.stroker.Line(toFixed(q))
		}
		b.stroker.Stop(false)
		drawn = true
	}
	if drawn {
		b.stroker.Draw()
	}
	b.stroker.Clear()

	if len(dots) == 0 {
		return
	}
	b.filler.Clear()
	b.filler.SetColor(col)
	r := width / 2
	for _, d := range dots {
		x, y := float64(d.X), float64(d.Y)
		if st.Cap == vector.CapRound {
			rasterx.AddCircle(x, y, r, b.filler)
			continue
		}
		// butt and square caps both leave a square footprint for a dot
		b.filler.Start(rasterx.ToFixedP(x-r, y-r))
		b.filler.Line(rasterx.ToFixedP(x+r, y-r))
		b.filler.Line(rasterx.ToFixedP(x+r, y+r))
		b.filler.Line(rasterx.ToFixedP(x-r, y+r))
		b.filler.Stop(true)
	}
	b.filler.Draw()
	b.filler.Clear()
}

// FitCenter scales src to fit a width x height frame keeping its aspect ratio,
// centered on a transparent background.
func FitCenter(src image.Image, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	if src == nil {
		return out
	}
	sb := src.Bounds()
	fit := vector.R(0, 0, float32(width), float32(height)).FitCenter(float32(sb.Dx()), float32(sb.Dy()))
	if fit.Empty() {
		return out
	}
	dr := image.Rect(int(fit.X+0.5), int(fit.Y+0.5), int(fit.X+fit.W+0.5), int(fit.Y+fit.H+0.5))
	xdraw.CatmullRom.Scale(out, dr, src, sb, xdraw.Over, nil)
	return out
}

func toFixed(p vector.Pt) fixed.Point26_6 {
	return rasterx.ToFixedP(float64(p.X), float64(p.Y))
}

// dedupe drops consecutive repeats; the rasterizer has no use for
// zero-length segments.
func dedupe(pts []vector.Pt) []vector.Pt {
	out := make([]vector.Pt, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func capFunc(c vector.LineCap) rasterx.CapFunc {
	switch c {
	case vector.CapRound:
		return rasterx.RoundCap
	case vector.CapSquare:
		return rasterx.SquareCap
	default:
		return rasterx.ButtCap
	}
}

func gapFunc(j vector.LineJoin) rasterx.GapFunc {
	if j == vector.JoinRound {
		return rasterx.RoundGap
	}
	return rasterx.FlatGap
}

func joinMode(j vector.LineJoin) rasterx.JoinMode {
	switch j {
	case vector.JoinRound:
		return rasterx.Round
	case vector.JoinBevel:
		return rasterx.Bevel
	default:
		return rasterx.Miter
	}
}

// At is a small convenience for tests and pickers.
func (b *Buffer) At(x, y int) color.RGBA { return b.img.RGBAAt(x, y) }
