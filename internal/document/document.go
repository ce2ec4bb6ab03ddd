/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document saves and loads drawings as JSON so a session can be
// reopened with its strokes intact. Documents are validated against an
// embedded JSON schema before they are decoded.
package document

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	gojsonschema "github.com/xeipuuv/gojsonschema"

	"drawingapp/internal/drawing"
	"drawingapp/internal/vector"
)

// Version is the document format version written by Encode.
const Version = 1

var ErrInvalidDocument = errors.New("invalid drawing document")

//go:embed drawing.schema.json
var schemaJSON []byte

// Schema returns the JSON schema documents are validated against.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

// Document is the on-disk form of a drawing.
type Document struct {
	Version int `json:"version"`
	Width   int `json:"width"`
	Height  int `json:"height"`

	// Background optionally names an image file relative to the document.
	Background string   `json:"background,omitempty"`
	Strokes    []Stroke `json:"strokes"`
}

type Stroke struct {
	ID     string       `json:"id,omitempty"`
	Color  string       `json:"color"`
	Width  float32      `json:"width"`
	Points [][2]float32 `json:"points"`
}

// FromStrokes captures canvas strokes at the given canvas size.
func FromStrokes(width, height int, strokes []drawing.Stroke) Document {
	d := Document{Version: Version, Width: width, Height: height, Strokes: make([]Stroke, 0, len(strokes))}
	for _, s := range strokes {
		if s.Empty() {
			continue
		}
		pts := s.Path.Points()
		ds := Stroke{ID: s.ID, Color: s.Color.Hex(), Width: s.Width, Points: make([][2]float32, len(pts))}
		for i, p := range pts {
			ds.Points[i] = [2]float32{p.X, p.Y}
		}
		d.Strokes = append(d.Strokes, ds)
	}
	return d
}

// ToStrokes rebuilds canvas strokes: the first point starts the path, every
// following point is a line segment. A single point becomes a tap.
func (d Document) ToStrokes() ([]drawing.Stroke, error) {
	out := make([]drawing.Stroke, 0, len(d.Strokes))
	for i, s := range d.Strokes {
		col, err := vector.ParseHex(s.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: stroke %d: %v", ErrInvalidDocument, i, err)
		}
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("%w: stroke %d has no points", ErrInvalidDocument, i)
		}
		var p vector.Path
		p.MoveTo(s.Points[0][0], s.Points[0][1])
		if len(s.Points) == 1 {
			p.LineTo(s.Points[0][0], s.Points[0][1])
		}
		for _, pt := range s.Points[1:] {
			p.LineTo(pt[0], pt[1])
		}
		id := s.ID
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, drawing.Stroke{ID: id, Path: p, Color: col, Width: s.Width})
	}
	return out, nil
}

// Encode writes d as indented JSON.
func Encode(w io.Writer, d Document) error {
	if d.Version == 0 {
		d.Version = Version
	}
	if d.Strokes == nil {
		d.Strokes = []Stroke{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// Decode validates the JSON read from r against the schema, then decodes it.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	if err := Validate(data); err != nil {
		return Document{}, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return d, nil
}

// Validate checks raw JSON against the embedded schema. All violations are
// reported in one error wrapping ErrInvalidDocument.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}

// SaveFile writes d to path through a temp file in the same directory and a
// rename, so readers never see a partial document.
func SaveFile(path string, d Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure document dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	f, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	if err := Encode(f, d); err != nil {
		_ = f.Close()
		_ = os.Remove(temp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(temp)
		return fmt.Errorf("sync temp document: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("close temp document: %w", err)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// LoadFile reads and validates the document at path.
func LoadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
