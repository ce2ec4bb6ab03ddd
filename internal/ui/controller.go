/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"drawingapp/internal/catalog"
	"drawingapp/internal/config"
	"drawingapp/internal/document"
	"drawingapp/internal/drawing"
	"drawingapp/internal/export"
	applog "drawingapp/internal/log"
	"drawingapp/internal/raster"
	"drawingapp/internal/vector"
)

var ErrNothingToSave = errors.New("canvas has no size yet")

// Controller is the toolkit-independent half of the host: it turns control
// actions (palette, brush chooser, save, gallery import, document menu) into
// canvas operations. The Fyne window only forwards events to it.
type Controller struct {
	Canvas   *drawing.Canvas
	Exporter *export.Exporter
	// Catalog is nil when the export catalog is disabled or failed to open.
	Catalog *catalog.Catalog

	cfg  config.AppConfig
	base vector.Color
	l    *slog.Logger
}

// NewController builds a canvas from cfg. density is the display scale and is
// used unless the config pins one. A catalog that fails to open is logged and
// skipped; exporting still works without it.
func NewController(cfg config.AppConfig, density float32) *Controller {
	l := applog.WithComponent("host")
	if cfg.Canvas.Density > 0 {
		density = cfg.Canvas.Density
	}
	col, err := vector.ParseHex(cfg.Canvas.DefaultColor)
	if err != nil {
		l.Warn("invalid default color, using black", slog.String("color", cfg.Canvas.DefaultColor))
		col = vector.Black
	}
	base, err := vector.ParseHex(cfg.Export.Background)
	if err != nil {
		base = vector.White
	}
	c := &Controller{
		Canvas: drawing.New(drawing.Settings{
			Color:      col,
			BrushSize:  cfg.Canvas.DefaultBrush,
			Density:    density,
			MaxHistory: cfg.Canvas.MaxHistory,
		}),
		cfg:  cfg,
		base: base,
		l:    l,
	}
	c.Exporter = &export.Exporter{Dir: cfg.Export.Dir}
	if cfg.Export.CatalogEnabled() {
		cat, err := catalog.Open(cfg.Export.Catalog)
		if err != nil {
			l.Warn("export catalog unavailable", slog.Any("err", err))
		} else {
			c.Catalog = cat
			c.Exporter.Recorder = cat
		}
	}
	return c
}

// Close releases the catalog.
func (c *Controller) Close() error {
	if c.Catalog == nil {
		return nil
	}
	return c.Catalog.Close()
}

func (c *Controller) Palette() []string { return c.cfg.Canvas.Palette }

func (c *Controller) BrushSizes() []float32 { return c.cfg.Canvas.BrushSizes }

// BaseColor is the opaque color exports are composed over.
func (c *Controller) BaseColor() vector.Color { return c.base }

// SelectColor applies a palette entry.
func (c *Controller) SelectColor(hex string) error {
	if err := c.Canvas.SetColorHex(hex); err != nil {
		c.l.Warn("palette color rejected", slog.String("color", hex), slog.Any("err", err))
		return err
	}
	return nil
}

// SelectBrush applies a brush chooser entry.
func (c *Controller) SelectBrush(size float32) {
	c.Canvas.SetBrushThickness(size)
}

// SaveImage composes the visible frame and exports it in the background.
// done receives exactly one result through deliver.
func (c *Controller) SaveImage(deliver func(func()), done func(export.Result)) {
	if deliver == nil {
		deliver = func(fn func()) { fn() }
	}
	// Strokes drawn while the worker runs are not part of this export.
	frame, strokes, ok := c.Canvas.SnapshotWithCount(c.base)
	if !ok {
		deliver(func() { done(export.Result{Err: ErrNothingToSave}) })
		return
	}
	c.Exporter.SaveAsync(frame, strokes, deliver, func(r export.Result) {
		if r.Err != nil {
			c.l.Error("save image failed", slog.Any("err", r.Err))
		}
		done(r)
	})
}

// ImportBackground decodes a picked gallery image and puts it beneath the strokes.
func (c *Controller) ImportBackground(r io.Reader) error {
	img, format, err := raster.DecodeImage(r)
	if err != nil {
		return err
	}
	c.Canvas.SetBackground(img)
	c.l.Info("background set", slog.String("format", format), slog.Int("w", img.Bounds().Dx()), slog.Int("h", img.Bounds().Dy()))
	return nil
}

func (c *Controller) importBackgroundFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.ImportBackground(f)
}

// OpenDocument replaces the drawing with the strokes stored at path. A
// background named by the document is loaded relative to it when present.
func (c *Controller) OpenDocument(path string) error {
	doc, err := document.LoadFile(path)
	if err != nil {
		return err
	}
	strokes, err := doc.ToStrokes()
	if err != nil {
		return err
	}
	c.Canvas.Restore(strokes)
	c.Canvas.SetBackground(nil)
	if doc.Background != "" {
		bg := doc.Background
		if !filepath.IsAbs(bg) {
			bg = filepath.Join(filepath.Dir(path), bg)
		}
		if err := c.importBackgroundFile(bg); err != nil {
			c.l.Warn("document background not loaded", slog.String("path", bg), slog.Any("err", err))
		}
	}
	c.l.Info("document opened", slog.String("path", path), slog.Int("strokes", len(strokes)))
	return nil
}

// SaveDocument writes the finished strokes to path.
func (c *Controller) SaveDocument(path string) error {
	w, h, _ := c.Canvas.Size()
	if err := document.SaveFile(path, document.FromStrokes(w, h, c.Canvas.Strokes())); err != nil {
		return err
	}
	c.l.Info("document saved", slog.String("path", path))
	return nil
}

// ExportPDF writes the drawing as a vector PDF sized like the canvas.
func (c *Controller) ExportPDF(path string) error {
	w, h, ok := c.Canvas.Size()
	if !ok {
		return ErrNothingToSave
	}
	return export.SavePDF(path, float64(w), float64(h), c.Canvas.Strokes(), export.PDFOptions{
		Title:      filepath.Base(path),
		Base:       c.base,
		Background: c.Canvas.Background(),
	})
}

// ExportSVG writes the strokes as SVG sized like the canvas.
func (c *Controller) ExportSVG(path string) error {
	w, h, ok := c.Canvas.Size()
	if !ok {
		return ErrNothingToSave
	}
	return export.SaveSVG(path, float64(w), float64(h), c.Canvas.Strokes(), c.base)
}

// RecentExports lists catalog entries, newest first. Without a catalog the
// list is empty.
func (c *Controller) RecentExports(ctx context.Context, n int) ([]catalog.Entry, error) {
	if c.Catalog == nil {
		return nil, nil
	}
	return c.Catalog.Recent(ctx, n)
}

// Autosave writes the current strokes as a document into dir. It is used as
// the crash.Autosaver for the UI session.
func (c *Controller) Autosave(dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("autosave-%s.json", time.Now().Format("20060102-150405")))
	if err := c.SaveDocument(path); err != nil {
		return "", err
	}
	return path, nil
}

// LogOptions maps the merged logging config onto logger options.
func LogOptions(cfg config.AppConfig) applog.Options {
	return applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	}
}
