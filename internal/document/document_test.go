/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drawingapp/internal/drawing"
	"drawingapp/internal/vector"
)

func canvasWithStrokes(t *testing.T) *drawing.Canvas {
	t.Helper()
	c := drawing.New(drawing.Settings{Color: vector.Color{R: 255, A: 255}, BrushSize: 5})
	c.OnPointerDown(1, 2)
	c.OnPointerMove(3, 4)
	c.OnPointerMove(5, 6)
	c.OnPointerUp()
	c.SetColor(vector.Color{B: 255, A: 255})
	c.SetBrushThickness(10)
	c.OnPointerDown(7, 7)
	c.OnPointerUp()
	return c
}

func TestEncodeDecodeKeepsStrokes(t *testing.T) {
	c := canvasWithStrokes(t)
	before := c.Strokes()
	var buf bytes.Buffer
	if err := Encode(&buf, FromStrokes(320, 240, before)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	d, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Version != Version || d.Width != 320 || d.Height != 240 {
		t.Fatalf("unexpected header: %+v", d)
	}
	after, err := d.ToStrokes()
	if err != nil {
		t.Fatalf("ToStrokes: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		a, b := after[i], before[i]
		if a.ID != b.ID || a.Color != b.Color || a.Width != b.Width {
			t.Fatalf("stroke %d differs: %+v vs %+v", i, a, b)
		}
		ap, bp := a.Path.Points(), b.Path.Points()
		if len(ap) != len(bp) {
			t.Fatalf("stroke %d points = %v, want %v", i, ap, bp)
		}
		for j := range ap {
			if ap[j] != bp[j] {
				t.Fatalf("stroke %d point %d = %v, want %v", i, j, ap[j], bp[j])
			}
		}
	}
}

func TestSinglePointBecomesTap(t *testing.T) {
	d := Document{Version: 1, Strokes: []Stroke{{Color: "#FF000000", Width: 3, Points: [][2]float32{{4, 5}}}}}
	st, err := d.ToStrokes()
	if err != nil {
		t.Fatalf("ToStrokes: %v", err)
	}
	if !st[0].Path.Degenerate() || st[0].Path.Len() != 2 {
		t.Fatalf("expected a degenerate two-command path, got %+v", st[0].Path)
	}
	if st[0].ID == "" {
		t.Fatalf("missing id should be generated")
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing strokes": `{"version":1,"width":1,"height":1}`,
		"bad color":       `{"version":1,"width":1,"height":1,"strokes":[{"color":"red","width":2,"points":[[0,0]]}]}`,
		"zero width":      `{"version":1,"width":1,"height":1,"strokes":[{"color":"#000000","width":0,"points":[[0,0]]}]}`,
		"no points":       `{"version":1,"width":1,"height":1,"strokes":[{"color":"#000000","width":1,"points":[]}]}`,
		"wrong version":   `{"version":2,"width":1,"height":1,"strokes":[]}`,
		"not json":        `{`,
	}
	for name, doc := range cases {
		if _, err := Decode(strings.NewReader(doc)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", name, err)
		}
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "drawing.json")
	d := FromStrokes(10, 10, canvasWithStrokes(t).Strokes())
	if err := SaveFile(path, d); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	// Overwrite to exercise replace.
	if err := SaveFile(path, d); err != nil {
		t.Fatalf("SaveFile again: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got.Strokes) != 2 {
		t.Fatalf("strokes = %d, want 2", len(got.Strokes))
	}
}

func TestEmptyDocumentIsValid(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Document{}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := Validate(buf.Bytes()); err != nil {
		t.Fatalf("empty document should validate: %v", err)
	}
}
