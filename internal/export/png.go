/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export encodes composed canvas frames and persists them.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"drawingapp/internal/catalog"
	applog "drawingapp/internal/log"
)

// DefaultPrefix names exported files DrawingApp_<unix-seconds>.png.
const DefaultPrefix = "DrawingApp_"

var ErrNoImage = errors.New("no image to export")

// Recorder is told about every successful export.
type Recorder interface {
	Record(ctx context.Context, e catalog.Entry) (int64, error)
}

// Exporter writes frames into Dir. Zero fields fall back to defaults:
// os.TempDir for Dir, DefaultPrefix and time.Now.
type Exporter struct {
	Dir      string
	Prefix   string
	Now      func() time.Time
	Recorder Recorder
}

// Result is the single outcome of an asynchronous save. Path is empty on failure.
type Result struct {
	Path string
	Err  error
}

func (e *Exporter) dir() string {
	if e.Dir != "" {
		return e.Dir
	}
	return os.TempDir()
}

func (e *Exporter) prefix() string {
	if e.Prefix != "" {
		return e.Prefix
	}
	return DefaultPrefix
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// SavePNG encodes img and writes it to a fresh timestamped file. It returns the
// absolute path of the written file. strokes is the stroke count of the frame,
// stored with the catalog entry.
func (e *Exporter) SavePNG(img image.Image, strokes int) (string, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "save_png")
	if img == nil || img.Bounds().Empty() {
		return "", ErrNoImage
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		l.Error("encode failed", slog.Any("err", err))
		return "", fmt.Errorf("encode png: %w", err)
	}
	dir, err := filepath.Abs(e.dir())
	if err != nil {
		return "", fmt.Errorf("resolve export dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create export dir failed", slog.Any("err", err))
		return "", fmt.Errorf("ensure export dir: %w", err)
	}
	created := e.now()
	path, f, err := createUnique(dir, fmt.Sprintf("%s%d", e.prefix(), created.Unix()), ".png")
	if err != nil {
		l.Error("create file failed", slog.Any("err", err))
		return "", err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write png: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close png: %w", err)
	}
	l.Info("exported", slog.String("path", path), slog.Int("bytes", buf.Len()))
	e.record(catalog.Entry{
		Path:      path,
		Format:    "png",
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Strokes:   strokes,
		CreatedAt: created,
	})
	return path, nil
}

// record notifies the Recorder. Failures are logged and never fail the export.
func (e *Exporter) record(ent catalog.Entry) {
	if e.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := e.Recorder.Record(ctx, ent); err != nil {
		applog.WithComponent("export").Warn("record export failed", slog.String("path", ent.Path), slog.Any("err", err))
	}
}

// createUnique opens base+ext exclusively, adding -1, -2, ... when the name is taken.
func createUnique(dir, base, ext string) (string, *os.File, error) {
	for i := 0; i < 1000; i++ {
		name := base + ext
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", base, i, ext)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("create %s: %w", name, err)
		}
	}
	return "", nil, fmt.Errorf("no free file name for %s%s", base, ext)
}

// SaveAsync runs SavePNG on a background goroutine and hands the result to done
// through deliver, which should run its argument on the UI thread (fyne.Do).
// A nil deliver calls done on the worker goroutine. The save cannot be
// cancelled; done is called exactly once.
func (e *Exporter) SaveAsync(img image.Image, strokes int, deliver func(func()), done func(Result)) {
	if deliver == nil {
		deliver = func(fn func()) { fn() }
	}
	go func() {
		res := e.saveRecovered(img, strokes)
		if done != nil {
			deliver(func() { done(res) })
		}
	}()
}

func (e *Exporter) saveRecovered(img image.Image, strokes int) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponent("export").Error("export panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			res = Result{Err: fmt.Errorf("export panicked: %v", r)}
		}
	}()
	path, err := e.SavePNG(img, strokes)
	return Result{Path: path, Err: err}
}
