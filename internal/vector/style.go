/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a non-premultiplied 8-bit RGBA color.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ErrBadHex is returned by ParseHex for malformed color strings.
var ErrBadHex = errors.New("invalid hex color")

// ParseHex parses "#RRGGBB" or "#AARRGGBB" (alpha first, as palette tags are
// written). The leading '#' is optional.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadHex, s)
	}
	if len(h) == 6 {
		v |= 0xFF000000
	}
	return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the color as "#AARRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// FromColor converts any color.Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Stroke describes how a path is outlined.
type Stroke struct {
	Color Color
	Width float32
	Cap   LineCap
	Join  LineJoin
}

// Brush returns the style used for freehand strokes: round caps and joins.
func Brush(c Color, width float32) Stroke {
	return Stroke{Color: c, Width: width, Cap: CapRound, Join: JoinRound}
}
