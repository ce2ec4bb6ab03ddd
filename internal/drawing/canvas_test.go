/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package drawing

import (
	"image"
	"image/color"
	"testing"

	"drawingapp/internal/vector"
)

var (
	red  = vector.Color{R: 255, A: 255}
	blue = vector.Color{B: 255, A: 255}
)

func near(c color.RGBA, want vector.Color) bool {
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	return d(c.R, want.R) < 40 && d(c.G, want.G) < 40 && d(c.B, want.B) < 40 && d(c.A, want.A) < 40
}

func draw(c *Canvas, pts ...vector.Pt) {
	c.OnPointerDown(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.OnPointerMove(p.X, p.Y)
	}
	c.OnPointerUp()
}

func TestNewDefaults(t *testing.T) {
	c := New(Settings{Density: 2})
	if got := c.BrushThickness(); got != DefaultBrushSize*2 {
		t.Fatalf("brush = %v, want %v", got, DefaultBrushSize*2)
	}
	if c.Color() != vector.Black {
		t.Fatalf("default color should be black, got %+v", c.Color())
	}
	if c.Len() != 0 || c.CanUndo() || c.CanRedo() {
		t.Fatalf("new canvas should have empty history")
	}
}

func TestSessionsProduceOneStrokeEach(t *testing.T) {
	c := New(Settings{})
	for i := 0; i < 4; i++ {
		draw(c, vector.Pt{X: 1, Y: 1}, vector.Pt{X: 5, Y: float32(i)}, vector.Pt{X: 9, Y: 9})
	}
	if c.Len() != 4 {
		t.Fatalf("len = %d, want 4", c.Len())
	}
	seen := map[string]bool{}
	for _, s := range c.Strokes() {
		if s.ID == "" || seen[s.ID] {
			t.Fatalf("stroke ids must be unique and non-empty: %q", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestMoveWithoutSessionIsIgnored(t *testing.T) {
	c := New(Settings{})
	c.OnPointerMove(3, 3)
	c.OnPointerUp()
	if c.Len() != 0 {
		t.Fatalf("expected no strokes, got %d", c.Len())
	}
}

func TestEveryMoveIsASegment(t *testing.T) {
	c := New(Settings{})
	draw(c, vector.Pt{X: 0, Y: 0}, vector.Pt{X: 1, Y: 0}, vector.Pt{X: 1, Y: 0}, vector.Pt{X: 2, Y: 0})
	// MoveTo + zero-length LineTo + three moves.
	if got := c.Strokes()[0].Path.Len(); got != 5 {
		t.Fatalf("path commands = %d, want 5", got)
	}
}

func TestUndoRedoRestoresExactHistory(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 5})
	draw(c, vector.Pt{X: 1, Y: 1}, vector.Pt{X: 2, Y: 2})
	c.SetColor(blue)
	c.SetBrushThickness(10)
	draw(c, vector.Pt{X: 3, Y: 3}, vector.Pt{X: 4, Y: 4})
	before := c.Strokes()

	if !c.Undo() || c.Len() != 1 || !c.CanRedo() {
		t.Fatalf("undo should move one stroke to redo")
	}
	if !c.Redo() {
		t.Fatalf("redo should succeed")
	}
	after := c.Strokes()
	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		a, b := after[i], before[i]
		if a.ID != b.ID || a.Color != b.Color || a.Width != b.Width || a.Path.Len() != b.Path.Len() {
			t.Fatalf("stroke %d changed across undo/redo: %+v vs %+v", i, a, b)
		}
	}
}

func TestNewStrokeAfterUndoClearsRedo(t *testing.T) {
	c := New(Settings{})
	draw(c, vector.Pt{X: 1, Y: 1})
	c.Undo()
	c.OnPointerDown(5, 5)
	c.OnPointerUp()
	if c.Redo() || c.CanRedo() {
		t.Fatalf("redo should be a no-op after a new stroke")
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func TestEmptyUndoRedoAreNoOps(t *testing.T) {
	c := New(Settings{})
	if c.Undo() || c.Redo() {
		t.Fatalf("undo/redo on empty canvas should report false")
	}
}

func TestRenderBeforeSizeIsDeferred(t *testing.T) {
	c := New(Settings{})
	draw(c, vector.Pt{X: 1, Y: 1}, vector.Pt{X: 2, Y: 2})
	if img, ok := c.Render(); ok || img != nil {
		t.Fatalf("render without a size should be deferred")
	}
	if _, ok := c.Snapshot(vector.White); ok {
		t.Fatalf("snapshot without a size should be deferred")
	}
}

func TestTapRendersDot(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 10})
	c.OnSizeChanged(40, 40)
	c.OnPointerDown(20, 20)
	c.OnPointerUp()
	if s := c.Strokes()[0]; s.Empty() {
		t.Fatalf("tap stroke should have geometry")
	}
	img, ok := c.Render()
	if !ok {
		t.Fatalf("render should succeed once sized")
	}
	if px := img.RGBAAt(20, 20); !near(px, red) {
		t.Fatalf("expected red dot at tap, got %+v", px)
	}
}

func TestStrokesKeepTheirOwnStyle(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 5})
	c.OnSizeChanged(100, 100)
	draw(c, vector.Pt{X: 10, Y: 50}, vector.Pt{X: 50, Y: 50}, vector.Pt{X: 90, Y: 50})
	c.SetColor(blue)
	c.SetBrushThickness(10)
	draw(c, vector.Pt{X: 50, Y: 10}, vector.Pt{X: 50, Y: 90})

	img, _ := c.Render()
	if px := img.RGBAAt(20, 50); !near(px, red) {
		t.Fatalf("stroke A should stay red, got %+v", px)
	}
	if px := img.RGBAAt(50, 50); !near(px, blue) {
		t.Fatalf("stroke B should paint over A, got %+v", px)
	}
	// Blue is 10 wide, red 5: 4px off the vertical line is blue only.
	if px := img.RGBAAt(54, 30); !near(px, blue) {
		t.Fatalf("stroke B should be 10px wide, got %+v", px)
	}
	if px := img.RGBAAt(20, 54); px.A != 0 {
		t.Fatalf("stroke A should be 5px wide, got %+v", px)
	}
	st := c.Strokes()
	if st[0].Color != red || st[0].Width != 5 || st[1].Color != blue || st[1].Width != 10 {
		t.Fatalf("unexpected styles: %+v %+v", st[0], st[1])
	}
}

func TestMidStrokeConfigDoesNotRestyleActive(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 4})
	c.OnPointerDown(1, 1)
	c.SetColor(blue)
	c.SetBrushThickness(12)
	c.OnPointerMove(5, 5)
	c.OnPointerUp()
	s := c.Strokes()[0]
	if s.Color != red || s.Width != 4 {
		t.Fatalf("active stroke should keep its pointer-down style, got %+v", s)
	}
	draw(c, vector.Pt{X: 2, Y: 2})
	if s := c.Strokes()[1]; s.Color != blue || s.Width != 12 {
		t.Fatalf("next stroke should use the new style, got %+v", s)
	}
}

func TestResizeKeepsStrokes(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 6})
	c.OnSizeChanged(800, 600)
	draw(c, vector.Pt{X: 100, Y: 100}, vector.Pt{X: 200, Y: 100})
	c.OnSizeChanged(400, 300)
	img, ok := c.Render()
	if !ok || img.Rect.Dx() != 400 || img.Rect.Dy() != 300 {
		t.Fatalf("render after resize: ok=%v bounds=%v", ok, img.Bounds())
	}
	if c.Len() != 1 {
		t.Fatalf("resize lost strokes")
	}
	if px := img.RGBAAt(150, 100); !near(px, red) {
		t.Fatalf("stroke should be replayed after resize, got %+v", px)
	}
}

func TestOnSizeChangedIsIdempotent(t *testing.T) {
	c := New(Settings{})
	c.OnSizeChanged(30, 20)
	first, _ := c.Render()
	c.OnSizeChanged(30, 20)
	second, _ := c.Render()
	if first != second {
		t.Fatalf("identical size should keep the same buffer")
	}
}

func TestUndoRemovesPixels(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 6})
	c.OnSizeChanged(50, 50)
	draw(c, vector.Pt{X: 5, Y: 25}, vector.Pt{X: 45, Y: 25})
	c.Undo()
	img, _ := c.Render()
	if px := img.RGBAAt(25, 25); px.A != 0 {
		t.Fatalf("undone stroke should not render, got %+v", px)
	}
}

func TestMaxHistoryKeepsEveryStroke(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 4, MaxHistory: 2})
	c.OnSizeChanged(100, 60)
	for _, y := range []float32{10, 30, 50} {
		draw(c, vector.Pt{X: 10, Y: y}, vector.Pt{X: 90, Y: y})
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	img, _ := c.Render()
	if px := img.RGBAAt(50, 10); !near(px, red) {
		t.Fatalf("first stroke lost from the frame: %+v", px)
	}
	if !c.Undo() || !c.Undo() {
		t.Fatalf("two undos should be allowed")
	}
	if c.Undo() || c.CanUndo() {
		t.Fatalf("undo past the cap should be refused")
	}
	img, _ = c.Render()
	if px := img.RGBAAt(50, 10); !near(px, red) || c.Len() != 1 {
		t.Fatalf("first stroke should remain after capped undo: %+v len=%d", px, c.Len())
	}
}

func TestActiveStrokeRendersBeforePointerUp(t *testing.T) {
	c := New(Settings{Color: blue, BrushSize: 6})
	c.OnSizeChanged(50, 50)
	c.OnPointerDown(5, 25)
	c.OnPointerMove(45, 25)
	img, _ := c.Render()
	if px := img.RGBAAt(25, 25); !near(px, blue) {
		t.Fatalf("active stroke should render, got %+v", px)
	}
	if c.Len() != 0 || !c.Drawing() {
		t.Fatalf("active stroke must not be in history yet")
	}
}

func TestBrushThicknessScalesAndIgnoresNonPositive(t *testing.T) {
	c := New(Settings{Density: 1.5})
	c.SetBrushThickness(10)
	if got := c.BrushThickness(); got != 15 {
		t.Fatalf("brush = %v, want 15", got)
	}
	c.SetBrushThickness(0)
	c.SetBrushThickness(-3)
	if got := c.BrushThickness(); got != 15 {
		t.Fatalf("non-positive sizes should be ignored, got %v", got)
	}
}

func TestSetColorHex(t *testing.T) {
	c := New(Settings{})
	if err := c.SetColorHex("#FF0000"); err != nil {
		t.Fatalf("SetColorHex: %v", err)
	}
	if c.Color() != red {
		t.Fatalf("color = %+v", c.Color())
	}
	if err := c.SetColorHex("#zz"); err == nil {
		t.Fatalf("expected error for bad hex")
	}
	if c.Color() != red {
		t.Fatalf("bad hex should not change the color")
	}
}

func TestBackgroundIsBeneathStrokes(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 4})
	c.OnSizeChanged(20, 20)
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(bg.Pix); i += 4 {
		bg.Pix[i+1], bg.Pix[i+3] = 255, 255
	}
	c.SetBackground(bg)
	draw(c, vector.Pt{X: 2, Y: 10}, vector.Pt{X: 18, Y: 10})
	img, _ := c.Render()
	if px := img.RGBAAt(10, 10); !near(px, red) {
		t.Fatalf("stroke should be over the background, got %+v", px)
	}
	if px := img.RGBAAt(10, 3); !near(px, vector.Color{G: 255, A: 255}) {
		t.Fatalf("background should fill the canvas, got %+v", px)
	}
	c.SetBackground(nil)
	img, _ = c.Render()
	if px := img.RGBAAt(10, 3); px.A != 0 {
		t.Fatalf("cleared background should leave transparency, got %+v", px)
	}
}

func TestSnapshotIsOpaqueCopy(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 4})
	c.OnSizeChanged(20, 20)
	draw(c, vector.Pt{X: 2, Y: 10}, vector.Pt{X: 18, Y: 10})
	snap, ok := c.Snapshot(vector.White)
	if !ok {
		t.Fatalf("snapshot failed")
	}
	if px := snap.RGBAAt(10, 2); px != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("base should be white, got %+v", px)
	}
	c.Clear()
	if px := snap.RGBAAt(10, 10); !near(px, red) {
		t.Fatalf("snapshot should be independent of later changes, got %+v", px)
	}
}

func TestSnapshotWithCount(t *testing.T) {
	c := New(Settings{Color: red, BrushSize: 4})
	if _, n, ok := c.SnapshotWithCount(vector.White); ok || n != 0 {
		t.Fatalf("snapshot before size should fail, got n=%d ok=%v", n, ok)
	}
	c.OnSizeChanged(30, 30)
	draw(c, vector.Pt{X: 2, Y: 2}, vector.Pt{X: 28, Y: 2})
	draw(c, vector.Pt{X: 2, Y: 20}, vector.Pt{X: 28, Y: 20})
	c.Undo()
	img, n, ok := c.SnapshotWithCount(vector.White)
	if !ok || n != 1 {
		t.Fatalf("count = %d ok=%v, want 1", n, ok)
	}
	if px := img.RGBAAt(15, 20); !near(px, vector.White) {
		t.Fatalf("undone stroke in snapshot: %+v", px)
	}
}

func TestRestoreReplacesHistory(t *testing.T) {
	c := New(Settings{})
	draw(c, vector.Pt{X: 1, Y: 1})
	c.Undo()
	var p vector.Path
	p.MoveTo(0, 0)
	p.LineTo(3, 3)
	c.Restore([]Stroke{{Path: p, Color: blue, Width: 2}})
	if c.Len() != 1 || c.CanRedo() {
		t.Fatalf("restore should replace history and drop redo")
	}
	if c.Strokes()[0].ID == "" {
		t.Fatalf("restored stroke should get an id")
	}
	p.LineTo(9, 9)
	if c.Strokes()[0].Path.Len() != 2 {
		t.Fatalf("restore must copy paths")
	}
}

func TestInvalidateHook(t *testing.T) {
	c := New(Settings{})
	n := 0
	c.OnInvalidate = func() { n++ }
	c.OnSizeChanged(10, 10)
	c.OnPointerDown(1, 1)
	c.OnPointerMove(2, 2)
	c.OnPointerUp()
	c.Undo()
	c.Redo()
	if n != 6 {
		t.Fatalf("invalidate calls = %d, want 6", n)
	}
	c.Undo()
	c.Undo()
	if n != 7 {
		t.Fatalf("no-op undo should not invalidate, got %d", n)
	}
}
