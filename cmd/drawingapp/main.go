/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"drawingapp/internal/config"
	"drawingapp/internal/crash"
	"drawingapp/internal/document"
	"drawingapp/internal/export"
	applog "drawingapp/internal/log"
	"drawingapp/internal/ui"
	"drawingapp/internal/version"
)

func usage() {
	fmt.Println("Drawing App")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  drawingapp version|-v|--version           Show version")
	fmt.Println("  drawingapp ui [<drawing.json>]             Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  drawingapp render <drawing.json> [<dir>]   Render a drawing to PNG in <dir> (default: export dir)")
	fmt.Println("  drawingapp pdf <drawing.json> <out.pdf>    Export a drawing as PDF")
	fmt.Println("  drawingapp svg <drawing.json> <out.svg>    Export a drawing as SVG")
	fmt.Println("  drawingapp exports [<n>]                   List recent PNG exports")
	fmt.Println("  drawingapp config                          Print the effective configuration path and export dir")
}

func fail(l *slog.Logger, msg string, err error) int {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	return 1
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code. Deferred
// cleanup (catalog close, crash recovery) runs before main exits.
func run(args []string) int {
	cfg, cerr := config.Load()
	applog.Init(ui.LogOptions(cfg))
	l := applog.WithComponent("cli")
	if cerr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cerr))
	}
	sess := &crash.Session{Dir: filepath.Join(cfg.Export.Dir, "crash")}
	defer crash.Recover(sess)

	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 1 {
		usage()
		return 0
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Println("Drawing App")
		fmt.Println(version.String())
	case "ui":
		// The UI installs its own crash session with autosave.
		var doc string
		if len(args) >= 2 {
			doc = args[1]
		}
		if err := ui.Run(doc); err != nil {
			fmt.Println("Error:", err)
			return 1
		}
	case "render":
		if len(args) < 2 {
			fmt.Println("render requires <drawing.json>")
			usage()
			return 2
		}
		ctrl, doc, err := openHeadless(cfg, args[1])
		if err != nil {
			return fail(l, "open document failed", err)
		}
		defer ctrl.Close()
		sess.Save = ctrl
		if len(args) >= 3 {
			ctrl.Exporter.Dir = args[2]
		}
		results := make(chan export.Result, 1)
		ctrl.SaveImage(nil, func(r export.Result) { results <- r })
		r := <-results
		if r.Err != nil {
			return fail(l, "render failed", r.Err)
		}
		fmt.Printf("Rendered %d strokes (%dx%d) to %s\n", len(doc.Strokes), doc.Width, doc.Height, r.Path)
	case "pdf", "svg":
		if len(args) < 3 {
			fmt.Printf("%s requires <drawing.json> and <out>\n", args[0])
			usage()
			return 2
		}
		ctrl, _, err := openHeadless(cfg, args[1])
		if err != nil {
			return fail(l, "open document failed", err)
		}
		defer ctrl.Close()
		out, _ := filepath.Abs(args[2])
		write := ctrl.ExportPDF
		if args[0] == "svg" {
			write = ctrl.ExportSVG
		}
		if err := write(out); err != nil {
			return fail(l, "export failed", err)
		}
		fmt.Println("Exported to", out)
	case "exports":
		n := 20
		if len(args) >= 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v <= 0 {
				fmt.Println("exports expects a positive count")
				return 2
			}
			n = v
		}
		ctrl := ui.NewController(cfg, 1)
		defer ctrl.Close()
		if ctrl.Catalog == nil {
			fmt.Println("Export catalog is disabled.")
			return 0
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := ctrl.RecentExports(ctx, n)
		if err != nil {
			return fail(l, "list exports failed", err)
		}
		if len(entries) == 0 {
			fmt.Println("No exports yet.")
		}
		for _, e := range entries {
			fmt.Printf("%s  %5dx%-5d %4d strokes  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Width, e.Height, e.Strokes, e.Path)
		}
	case "config":
		p, _ := config.ConfigPath()
		fmt.Println("Config file:", p)
		fmt.Println("Export dir: ", cfg.Export.Dir)
		if cfg.Export.CatalogEnabled() {
			fmt.Println("Catalog:    ", cfg.Export.Catalog)
		} else {
			fmt.Println("Catalog:     off")
		}
	default:
		usage()
		return 2
	}
	return 0
}

// openHeadless sizes a canvas to the document and loads its strokes.
func openHeadless(cfg config.AppConfig, path string) (*ui.Controller, document.Document, error) {
	abs, _ := filepath.Abs(path)
	doc, err := document.LoadFile(abs)
	if err != nil {
		return nil, document.Document{}, err
	}
	// Document coordinates are pixels already.
	cfg.Canvas.Density = 1
	ctrl := ui.NewController(cfg, 1)
	ctrl.Canvas.OnSizeChanged(doc.Width, doc.Height)
	if err := ctrl.OpenDocument(abs); err != nil {
		_ = ctrl.Close()
		return nil, document.Document{}, err
	}
	return ctrl, doc, nil
}
