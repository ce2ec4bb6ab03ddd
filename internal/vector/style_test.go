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
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FFFF0000")
	if err != nil || c != (Color{R: 255, A: 255}) {
		t.Fatalf("ParseHex argb = %+v, %v", c, err)
	}
	c, err = ParseHex("0000ff")
	if err != nil || c != (Color{B: 255, A: 255}) {
		t.Fatalf("ParseHex rgb = %+v, %v", c, err)
	}
	c, err = ParseHex("#80102030")
	if err != nil || c.A != 0x80 || c.R != 0x10 || c.G != 0x20 || c.B != 0x30 {
		t.Fatalf("ParseHex translucent = %+v, %v", c, err)
	}
	for _, bad := range []string{"", "#12345", "#GG0000", "#1234567890"} {
		if _, err := ParseHex(bad); !errors.Is(err, ErrBadHex) {
			t.Fatalf("ParseHex(%q) expected ErrBadHex, got %v", bad, err)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := Color{R: 1, G: 2, B: 3, A: 4}
	if got := c.Hex(); got != "#04010203" {
		t.Fatalf("Hex() = %q", got)
	}
	back, err := ParseHex(c.Hex())
	if err != nil || back != c {
		t.Fatalf("round trip = %+v, %v", back, err)
	}
}

func TestFromColor(t *testing.T) {
	if got := FromColor(color.RGBA{R: 255, A: 255}); got != (Color{R: 255, A: 255}) {
		t.Fatalf("FromColor = %+v", got)
	}
	if got := FromColor(color.Transparent); got != Transparent {
		t.Fatalf("FromColor transparent = %+v", got)
	}
}
