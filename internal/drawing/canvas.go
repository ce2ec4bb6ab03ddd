/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package drawing implements the stroke canvas: pointer sessions build strokes,
// finished strokes go into an undoable history, and every frame is produced by
// replaying that history onto a raster buffer sized to the view.
package drawing

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"

	"drawingapp/internal/raster"
	"drawingapp/internal/undo"
	"drawingapp/internal/vector"
)

// DefaultBrushSize is the brush size used when Settings leaves it unset.
const DefaultBrushSize = 5

var ErrInvalidColor = errors.New("invalid color")

// Settings is the initial drawing configuration.
type Settings struct {
	Color vector.Color
	// BrushSize is resolution independent; it is multiplied by Density.
	BrushSize float32
	// Density converts brush sizes to pixels (1 when unset).
	Density float32
	// MaxHistory caps how many recent strokes can be undone (0 means
	// unlimited). Older strokes stay on the canvas.
	MaxHistory int
}

// Canvas is safe for concurrent use; every method takes the same lock.
type Canvas struct {
	mu sync.Mutex

	density float32
	color   vector.Color
	width   float32

	history *undo.History[Stroke]
	active  Stroke
	drawing bool

	buf      *raster.Buffer
	bg       image.Image
	bgScaled *image.RGBA

	// OnInvalidate is called after every change that affects the next frame.
	// It runs without the canvas lock held. Set it before sharing the canvas.
	OnInvalidate func()
}

func New(s Settings) *Canvas {
	if s.Density <= 0 {
		s.Density = 1
	}
	if s.BrushSize <= 0 {
		s.BrushSize = DefaultBrushSize
	}
	if s.Color == (vector.Color{}) {
		s.Color = vector.Black
	}
	c := &Canvas{
		density: s.Density,
		color:   s.Color,
		width:   s.BrushSize * s.Density,
		history: undo.NewHistory[Stroke](undo.Config{MaxDepth: s.MaxHistory}),
	}
	c.active = c.freshStroke()
	return c
}

func (c *Canvas) freshStroke() Stroke {
	return Stroke{Color: c.color, Width: c.width}
}

func (c *Canvas) invalidate() {
	if fn := c.OnInvalidate; fn != nil {
		fn()
	}
}

// OnSizeChanged allocates a new blank raster buffer. Calling it again with the
// current size keeps the existing buffer.
func (c *Canvas) OnSizeChanged(width, height int) {
	c.mu.Lock()
	if c.buf != nil {
		if w, h := c.buf.Size(); w == width && h == height {
			c.mu.Unlock()
			return
		}
	}
	if width <= 0 || height <= 0 {
		c.buf = nil
	} else {
		c.buf = raster.NewBuffer(width, height)
	}
	c.bgScaled = nil
	c.mu.Unlock()
	c.invalidate()
}

// Size returns the raster size, or false before the first OnSizeChanged.
func (c *Canvas) Size() (int, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf == nil {
		return 0, 0, false
	}
	w, h := c.buf.Size()
	return w, h, true
}

// OnPointerDown starts a stroke at (x, y) using the current color and brush.
// A zero-length first segment makes a tap render as a dot. A second down
// without an up restarts the active stroke.
func (c *Canvas) OnPointerDown(x, y float32) {
	c.mu.Lock()
	c.active = c.freshStroke()
	c.active.Path.MoveTo(x, y)
	c.active.Path.LineTo(x, y)
	c.drawing = true
	c.mu.Unlock()
	c.invalidate()
}

// OnPointerMove appends one segment to the active stroke. Ignored when no
// pointer session is open.
func (c *Canvas) OnPointerMove(x, y float32) {
	c.mu.Lock()
	if !c.drawing {
		c.mu.Unlock()
		return
	}
	c.active.Path.LineTo(x, y)
	c.mu.Unlock()
	c.invalidate()
}

// OnPointerUp commits the active stroke to history, which empties the redo
// buffer, and starts a fresh stroke with the current configuration.
func (c *Canvas) OnPointerUp() {
	c.mu.Lock()
	if !c.drawing {
		c.mu.Unlock()
		return
	}
	done := c.active
	done.ID = uuid.NewString()
	c.history.Push(done)
	c.active = c.freshStroke()
	c.drawing = false
	c.mu.Unlock()
	c.invalidate()
}

// Drawing reports whether a pointer session is open.
func (c *Canvas) Drawing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawing
}

// SetColor changes the color of strokes started afterwards.
func (c *Canvas) SetColor(col vector.Color) {
	c.mu.Lock()
	c.color = col
	c.mu.Unlock()
}

// SetColorHex accepts "#RRGGBB" or "#AARRGGBB".
func (c *Canvas) SetColorHex(s string) error {
	col, err := vector.ParseHex(s)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	c.SetColor(col)
	return nil
}

func (c *Canvas) Color() vector.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// SetBrushThickness sets the brush for strokes started afterwards. The stored
// width is size * density; non-positive sizes are ignored.
func (c *Canvas) SetBrushThickness(size float32) {
	if size <= 0 {
		return
	}
	c.mu.Lock()
	c.width = size * c.density
	c.mu.Unlock()
}

// BrushThickness returns the effective brush width in pixels.
func (c *Canvas) BrushThickness() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// Undo moves the newest stroke to the redo buffer. No-op on empty history.
func (c *Canvas) Undo() bool {
	c.mu.Lock()
	_, ok := c.history.Undo()
	c.mu.Unlock()
	if ok {
		c.invalidate()
	}
	return ok
}

// Redo restores the most recently undone stroke. No-op when nothing was undone.
func (c *Canvas) Redo() bool {
	c.mu.Lock()
	_, ok := c.history.Redo()
	c.mu.Unlock()
	if ok {
		c.invalidate()
	}
	return ok
}

func (c *Canvas) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanUndo()
}

func (c *Canvas) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanRedo()
}

// Len returns the number of finished strokes.
func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Len()
}

// Strokes returns copies of the finished strokes, oldest first.
func (c *Canvas) Strokes() []Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Stroke, 0, c.history.Len())
	c.history.Each(func(s Stroke) { out = append(out, s.Clone()) })
	return out
}

// Restore replaces the history with strokes, dropping redo entries and any
// open pointer session. Strokes without an id get one.
func (c *Canvas) Restore(strokes []Stroke) {
	cp := make([]Stroke, len(strokes))
	for i, s := range strokes {
		cp[i] = s.Clone()
		if cp[i].ID == "" {
			cp[i].ID = uuid.NewString()
		}
	}
	c.mu.Lock()
	c.history.Replace(cp)
	c.active = c.freshStroke()
	c.drawing = false
	c.mu.Unlock()
	c.invalidate()
}

// Clear removes all strokes and redo entries. The background stays.
func (c *Canvas) Clear() {
	c.mu.Lock()
	c.history.Clear()
	c.active = c.freshStroke()
	c.drawing = false
	c.mu.Unlock()
	c.invalidate()
}

// SetBackground sets the image drawn beneath all strokes; nil clears it.
func (c *Canvas) SetBackground(img image.Image) {
	c.mu.Lock()
	c.bg = img
	c.bgScaled = nil
	c.mu.Unlock()
	c.invalidate()
}

func (c *Canvas) Background() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bg
}

// Render replays the background, the history and the active stroke onto the
// raster buffer. It returns false until a size is known. The returned image is
// reused by the next Render.
func (c *Canvas) Render() (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *Canvas) renderLocked() (*image.RGBA, bool) {
	if c.buf == nil {
		return nil, false
	}
	c.buf.Clear()
	if c.bg != nil {
		if c.bgScaled == nil {
			w, h := c.buf.Size()
			c.bgScaled = raster.FitCenter(c.bg, w, h)
		}
		c.buf.Composite(c.bgScaled)
	}
	c.history.Each(func(s Stroke) {
		c.buf.StrokePath(s.Path, s.Style())
	})
	if c.drawing && !c.active.Empty() {
		c.buf.StrokePath(c.active.Path, c.active.Style())
	}
	return c.buf.Image(), true
}

// Snapshot composes the current frame over an opaque base color into a new
// image owned by the caller.
func (c *Canvas) Snapshot(base vector.Color) (*image.RGBA, bool) {
	img, _, ok := c.SnapshotWithCount(base)
	return img, ok
}

// SnapshotWithCount is Snapshot plus the number of finished strokes in the
// frame, both taken under one lock.
func (c *Canvas) SnapshotWithCount(base vector.Color) (*image.RGBA, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame, ok := c.renderLocked()
	if !ok {
		return nil, 0, false
	}
	out := raster.NewBuffer(frame.Rect.Dx(), frame.Rect.Dy())
	base.A = 255
	out.Fill(base)
	out.Composite(frame)
	return out.Image(), c.history.Len(), true
}
