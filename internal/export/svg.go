/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"drawingapp/internal/drawing"
	"drawingapp/internal/vector"
)

// WriteSVG writes strokes as round-capped polylines on a width x height
// viewBox. Taps become filled circles. base fills the background; a zero
// color leaves it transparent.
func WriteSVG(w io.Writer, width, height float64, strokes []drawing.Stroke, base vector.Color) error {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", width, height, width, height)
	if base.A != 0 {
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", width, height, svgColor(base))
	}
	for _, s := range strokes {
		if s.Empty() || s.Color.A == 0 {
			continue
		}
		col := svgColor(s.Color)
		op := float64(s.Color.A) / 255
		sw := max(s.Width, 1)
		for _, sp := range s.Path.Subpaths() {
			if degenerate(sp) {
				wf("  <circle cx=\"%g\" cy=\"%g\" r=\"%g\" fill=\"%s\" fill-opacity=\"%.3g\"/>\n", sp[0].X, sp[0].Y, sw/2, col, op)
				continue
			}
			wf("  <polyline fill=\"none\" stroke=\"%s\" stroke-opacity=\"%.3g\" stroke-width=\"%g\" stroke-linecap=\"round\" stroke-linejoin=\"round\" points=\"", col, op, sw)
			for i, p := range sp {
				if i > 0 {
					wf(" ")
				}
				wf("%g,%g", p.X, p.Y)
			}
			wf("\"/>\n")
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// SaveSVG writes the SVG to path, creating parent directories.
func SaveSVG(path string, width, height float64, strokes []drawing.Stroke, base vector.Color) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, width, height, strokes, base); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
