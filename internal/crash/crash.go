/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a fatal panic into a report file plus an autosave of
// the drawing, so a crash never loses more than the stroke in progress.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "drawingapp/internal/log"
	"drawingapp/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Autosaver persists in-memory work into dir and returns the written path.
type Autosaver interface {
	Autosave(dir string) (string, error)
}

// AutosaveFunc adapts a function to Autosaver.
type AutosaveFunc func(dir string) (string, error)

func (f AutosaveFunc) Autosave(dir string) (string, error) { return f(dir) }

// Session describes what to save when the process panics. A nil Session
// still produces a report in the temp directory.
type Session struct {
	// Dir receives crash reports and autosaves; empty means os.TempDir().
	Dir  string
	Save Autosaver
}

func (s *Session) dir() string {
	if s != nil && s.Dir != "" {
		return s.Dir
	}
	return os.TempDir()
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and attempts a crash-safe autosave.
//
// Usage: defer crash.Recover(sess)
func Recover(s *Session) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(s.dir(), r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		if s != nil && s.Save != nil {
			if path, err := autosave(s); err != nil {
				l.Error("autosave failed", slog.Any("err", err))
			} else {
				l.Info("autosave written", slog.String("path", path))
				_, _ = fmt.Fprintf(os.Stderr, "Your drawing was autosaved to: %s\n", path)
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

// autosave runs the Autosaver, containing a second panic from it.
func autosave(s *Session) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("autosave panicked: %v", r)
		}
	}()
	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return "", fmt.Errorf("ensure autosave dir: %w", err)
	}
	return s.Save.Autosave(s.dir())
}

func writeReport(dir string, panicVal any, stack []byte) (string, error) {
	_ = os.MkdirAll(dir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	fname := fmt.Sprintf("crash-%s.log", stamp)
	path := filepath.Join(dir, fname)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Drawing App Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
