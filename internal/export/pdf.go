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
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"drawingapp/internal/drawing"
	"drawingapp/internal/vector"
	"drawingapp/internal/version"
)

// PDFOptions controls vector export. Units are points; one canvas pixel maps
// to one point.
type PDFOptions struct {
	Title string
	// Base fills the page before the background; zero means white.
	Base vector.Color
	// Background is drawn fit-center beneath the strokes when set.
	Background image.Image
}

// WritePDF writes a single page of width x height points holding strokes as
// vector paths. Taps become filled circles.
func WritePDF(w io.Writer, width, height float64, strokes []drawing.Stroke, opt PDFOptions) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid page size %.0fx%.0f", width, height)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetTitle(opt.Title, true)
	pdf.SetCreator("drawingapp "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	base := opt.Base
	if base == (vector.Color{}) {
		base = vector.White
	}
	setFillColor(pdf, base)
	pdf.Rect(0, 0, width, height, "F")

	if opt.Background != nil {
		if err := placeImage(pdf, opt.Background, width, height); err != nil {
			return err
		}
	}

	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for _, s := range strokes {
		drawStroke(pdf, s)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// SavePDF writes the PDF to path, creating parent directories.
func SavePDF(path string, width, height float64, strokes []drawing.Stroke, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, width, height, strokes, opt); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawStroke(pdf *gofpdf.Fpdf, s drawing.Stroke) {
	if s.Empty() || s.Color.A == 0 {
		return
	}
	width := float64(max(s.Width, 1))
	setDrawColor(pdf, s.Color)
	setFillColor(pdf, s.Color)
	pdf.SetLineWidth(width)
	alpha := float64(s.Color.A) / 255
	if alpha < 1 {
		pdf.SetAlpha(alpha, "Normal")
	}
	for _, sp := range s.Path.Subpaths() {
		if degenerate(sp) {
			pdf.Circle(float64(sp[0].X), float64(sp[0].Y), width/2, "F")
			continue
		}
		pdf.MoveTo(float64(sp[0].X), float64(sp[0].Y))
		for _, p := range sp[1:] {
			pdf.LineTo(float64(p.X), float64(p.Y))
		}
		pdf.DrawPath("D")
	}
	if alpha < 1 {
		pdf.SetAlpha(1, "Normal")
	}
}

func degenerate(pts []vector.Pt) bool {
	for _, p := range pts[1:] {
		if p != pts[0] {
			return false
		}
	}
	return true
}

func placeImage(pdf *gofpdf.Fpdf, img image.Image, width, height float64) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode background: %w", err)
	}
	b := img.Bounds()
	box := vector.R(0, 0, float32(width), float32(height)).FitCenter(float32(b.Dx()), float32(b.Dy()))
	if box.Empty() {
		return nil
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("background", opt, &buf)
	pdf.ImageOptions("background", float64(box.X), float64(box.Y), float64(box.W), float64(box.H), false, opt, 0, "")
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
