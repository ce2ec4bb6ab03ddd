//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"drawingapp/internal/config"
	"drawingapp/internal/crash"
	"drawingapp/internal/drawing"
	"drawingapp/internal/export"
	applog "drawingapp/internal/log"
	"drawingapp/internal/vector"
)

// Run starts the Fyne drawing window. docPath, when set, is opened at start.
func Run(docPath string) error {
	cfg, cerr := config.Load()
	applog.Init(LogOptions(cfg))
	l := applog.WithComponent("ui")
	if cerr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cerr))
	}
	l.Info("starting UI")

	fyneApp := app.NewWithID("drawingapp")
	w := fyneApp.NewWindow("Drawing App")
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 900), 400)
	winH := max(prefs.IntWithFallback("window.height", 700), 400)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	ctrl := NewController(cfg, w.Canvas().Scale())
	defer ctrl.Close()
	defer crash.Recover(&crash.Session{Dir: filepath.Join(cfg.Export.Dir, "crash"), Save: ctrl})

	status := widget.NewLabel("Ready")
	surface := NewDrawingSurface(ctrl.Canvas)

	// Palette (highlight follows the selection)
	var swatches []*colorSwatch
	selectSwatch := func(sel *colorSwatch) {
		for _, s := range swatches {
			s.setSelected(s == sel)
		}
	}
	paletteBox := container.NewHBox()
	for _, hex := range ctrl.Palette() {
		col, err := vector.ParseHex(hex)
		if err != nil {
			l.Warn("skipping palette entry", slog.String("color", hex))
			continue
		}
		var sw *colorSwatch
		sw = newColorSwatch(col.NRGBA(), func() {
			if err := ctrl.SelectColor(hex); err != nil {
				dialog.ShowError(err, w)
				return
			}
			selectSwatch(sw)
		})
		if col == ctrl.Canvas.Color() {
			sw.selected = true
		}
		swatches = append(swatches, sw)
		paletteBox.Add(sw)
	}

	showBrushDialog := func() {
		var d dialog.Dialog
		box := container.NewVBox(widget.NewLabel("Brush size"))
		for _, size := range ctrl.BrushSizes() {
			box.Add(widget.NewButton(fmt.Sprintf("%g", size), func() {
				ctrl.SelectBrush(size)
				status.SetText(fmt.Sprintf("Brush %g", size))
				d.Hide()
			}))
		}
		d = dialog.NewCustom("Brush", "Cancel", box, w)
		d.Show()
	}

	// Save: progress stays up until the single result arrives, success or not.
	saveImage := func() {
		prog := dialog.NewCustomWithoutButtons("Saving", widget.NewProgressBarInfinite(), w)
		prog.Show()
		status.SetText("Saving…")
		ctrl.SaveImage(fyne.Do, func(r export.Result) {
			prog.Hide()
			if r.Err != nil {
				status.SetText("Save failed.")
				dialog.ShowError(fmt.Errorf("something went wrong while saving the file: %w", r.Err), w)
				return
			}
			status.SetText("Saved " + filepath.Base(r.Path))
			dialog.ShowInformation("Saved", "File saved successfully:\n"+r.Path, w)
		})
	}

	importBackground := func() {
		open := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if rc == nil {
				return
			}
			defer rc.Close()
			if err := ctrl.ImportBackground(rc); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Background: " + rc.URI().Name())
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}))
		open.Show()
	}

	clearDrawing := func() {
		dialog.ShowConfirm("Clear", "Remove all strokes?", func(ok bool) {
			if ok {
				ctrl.Canvas.Clear()
				status.SetText("Cleared.")
			}
		}, w)
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ColorPaletteIcon(), showBrushDialog),
		widget.NewToolbarAction(theme.FileImageIcon(), importBackground),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { ctrl.Canvas.Undo() }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { ctrl.Canvas.Redo() }),
		widget.NewToolbarAction(theme.ContentClearIcon(), clearDrawing),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), saveImage),
	)

	// Document menu
	openDocument := func(path string) {
		if err := ctrl.OpenDocument(path); err != nil {
			l.Error("open document failed", slog.String("path", path), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		addRecentDocument(prefs, path)
		status.SetText("Opened " + filepath.Base(path))
	}
	var setMenu func()
	openItem := fyne.NewMenuItem("Open Drawing…", func() {
		open := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			openDocument(path)
			setMenu()
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		open.Show()
	})
	saveDocItem := fyne.NewMenuItem("Save Drawing…", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if err := ctrl.SaveDocument(path); err != nil {
				dialog.ShowError(err, w)
				return
			}
			addRecentDocument(prefs, path)
			setMenu()
			status.SetText("Saved " + filepath.Base(path))
		}, w)
		save.SetFileName("drawing.json")
		save.Show()
	})
	exportVector := func(title, ext string, write func(string) error) *fyne.MenuItem {
		return fyne.NewMenuItem(title, func() {
			save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				if err := write(path); err != nil {
					dialog.ShowError(err, w)
					return
				}
				dialog.ShowInformation(title, "Exported to "+path, w)
			}, w)
			save.SetFileName("drawing" + ext)
			save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
			save.Show()
		})
	}
	recentExportsItem := fyne.NewMenuItem("Recent Exports…", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := ctrl.RecentExports(ctx, 20)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("%s  %dx%d  %d strokes  %s", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Width, e.Height, e.Strokes, e.Path))
		}
		if len(lines) == 0 {
			lines = append(lines, "No exports yet.")
		}
		scroll := container.NewVScroll(widget.NewLabel(strings.Join(lines, "\n")))
		scroll.SetMinSize(fyne.NewSize(560, 240))
		dialog.NewCustom("Recent Exports", "Close", scroll, w).Show()
	})
	setMenu = func() {
		recentMenu := fyne.NewMenuItem("Open Recent", nil)
		var children []*fyne.MenuItem
		for _, p := range loadRecentDocuments(prefs) {
			children = append(children, fyne.NewMenuItem(p, func() { openDocument(p) }))
		}
		if len(children) == 0 {
			recentMenu.Disabled = true
		} else {
			recentMenu.ChildMenu = fyne.NewMenu("", children...)
		}
		w.SetMainMenu(fyne.NewMainMenu(
			fyne.NewMenu("File",
				openItem, recentMenu, saveDocItem,
				fyne.NewMenuItemSeparator(),
				fyne.NewMenuItem("Save Image", saveImage),
				exportVector("Export PDF…", ".pdf", ctrl.ExportPDF),
				exportVector("Export SVG…", ".svg", ctrl.ExportSVG),
				recentExportsItem,
			),
			fyne.NewMenu("Edit",
				fyne.NewMenuItem("Undo", func() { ctrl.Canvas.Undo() }),
				fyne.NewMenuItem("Redo", func() { ctrl.Canvas.Redo() }),
				fyne.NewMenuItem("Clear", clearDrawing),
				fyne.NewMenuItem("Remove Background", func() { ctrl.Canvas.SetBackground(nil) }),
			),
		))
	}
	setMenu()

	// Shortcuts
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { ctrl.Canvas.Undo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}, func(fyne.Shortcut) { ctrl.Canvas.Redo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { saveImage() })

	bottom := container.NewBorder(nil, nil, nil, status, container.NewHScroll(paletteBox))
	w.SetContent(container.NewBorder(toolbar, bottom, nil, nil, surface))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	if strings.TrimSpace(docPath) != "" {
		openDocument(docPath)
		setMenu()
	}

	w.ShowAndRun()
	return nil
}

// DrawingSurface shows a drawing.Canvas and feeds it pointer events. Drags are
// pointer sessions; a tap is a down immediately followed by an up.
type DrawingSurface struct {
	widget.BaseWidget

	canvas     *drawing.Canvas
	raster     *canvas.Raster
	dragging   bool
	generating bool
}

var (
	_ fyne.Draggable     = (*DrawingSurface)(nil)
	_ fyne.Tappable      = (*DrawingSurface)(nil)
	_ desktop.Cursorable = (*DrawingSurface)(nil)
)

func NewDrawingSurface(c *drawing.Canvas) *DrawingSurface {
	s := &DrawingSurface{canvas: c}
	s.ExtendBaseWidget(s)
	c.OnInvalidate = s.invalidate
	return s
}

func (s *DrawingSurface) invalidate() {
	// The raster generator resizes the canvas; that must not queue another frame.
	if s.generating || s.raster == nil {
		return
	}
	s.raster.Refresh()
}

// generate is the raster callback; w and h are in pixels.
func (s *DrawingSurface) generate(w, h int) image.Image {
	s.generating = true
	defer func() { s.generating = false }()
	s.canvas.OnSizeChanged(w, h)
	if img, ok := s.canvas.Render(); ok {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

// scale maps widget coordinates to raster pixels.
func (s *DrawingSurface) scale() float32 {
	if a := fyne.CurrentApp(); a != nil {
		if c := a.Driver().CanvasForObject(s); c != nil {
			return c.Scale()
		}
	}
	return 1
}

func (s *DrawingSurface) Dragged(e *fyne.DragEvent) {
	k := s.scale()
	if !s.dragging {
		s.dragging = true
		start := e.Position.Subtract(e.Dragged)
		s.canvas.OnPointerDown(start.X*k, start.Y*k)
	}
	s.canvas.OnPointerMove(e.Position.X*k, e.Position.Y*k)
}

func (s *DrawingSurface) DragEnd() {
	if !s.dragging {
		return
	}
	s.dragging = false
	s.canvas.OnPointerUp()
}

func (s *DrawingSurface) Tapped(e *fyne.PointEvent) {
	k := s.scale()
	s.canvas.OnPointerDown(e.Position.X*k, e.Position.Y*k)
	s.canvas.OnPointerUp()
}

func (s *DrawingSurface) Cursor() desktop.Cursor { return desktop.CrosshairCursor }

func (s *DrawingSurface) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	s.raster = canvas.NewRaster(s.generate)
	return &surfaceRenderer{s: s, bg: bg, raster: s.raster, objects: []fyne.CanvasObject{bg, s.raster}}
}

type surfaceRenderer struct {
	s       *DrawingSurface
	bg      *canvas.Rectangle
	raster  *canvas.Raster
	objects []fyne.CanvasObject
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.raster.Resize(size)
}

func (r *surfaceRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 200) }
func (r *surfaceRenderer) Refresh()                     { canvas.Refresh(r.raster) }
func (r *surfaceRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *surfaceRenderer) Destroy()                     {}

// colorSwatch is one palette entry; the selected swatch gets a heavier border.
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func()
	selected bool
}

func newColorSwatch(c color.Color, tapped func()) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) setSelected(v bool) {
	if s.selected == v {
		return
	}
	s.selected = v
	s.Refresh()
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped()
	}
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	border := canvas.NewRectangle(color.Transparent)
	r := &swatchRenderer{s: s, rect: rect, border: border, objects: []fyne.CanvasObject{rect, border}}
	r.Refresh()
	return r
}

type swatchRenderer struct {
	s       *colorSwatch
	rect    *canvas.Rectangle
	border  *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *swatchRenderer) Layout(size fyne.Size) {
	r.rect.Resize(size)
	r.border.Resize(size)
}

func (r *swatchRenderer) MinSize() fyne.Size { return fyne.NewSize(32, 32) }

func (r *swatchRenderer) Refresh() {
	if r.s.selected {
		r.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		r.border.StrokeWidth = 3
	} else {
		r.border.StrokeColor = color.Gray{Y: 150}
		r.border.StrokeWidth = 1
	}
	r.border.Refresh()
	r.rect.Refresh()
}

func (r *swatchRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *swatchRenderer) Destroy()                     {}

// Recent documents (persisted in app preferences)
const recentPrefsKey = "recent.documents"
const recentMax = 10

func loadRecentDocuments(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	// Filter out non-existing paths
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentDocuments(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentDocument(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentDocuments(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentDocuments(p, out)
}
