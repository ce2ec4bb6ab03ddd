/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands. Freehand strokes only need MoveTo and LineTo.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
)

type PathCmd struct {
	Op PathOp
	P  Pt
}

// Path is an ordered list of drawing commands. The zero value is an empty path.
type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float32) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, P: Pt{x, y}})
}

// LineTo appends a segment from the current point. Without a current point it
// behaves like MoveTo so the path always starts with one.
func (p *Path) LineTo(x, y float32) {
	if len(p.Cmds) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, P: Pt{x, y}})
}

// Reset drops all commands but keeps the backing array.
func (p *Path) Reset() { p.Cmds = p.Cmds[:0] }

// IsEmpty reports whether the path has no commands.
func (p Path) IsEmpty() bool { return len(p.Cmds) == 0 }

// Len returns the number of commands.
func (p Path) Len() int { return len(p.Cmds) }

// Current returns the last point of the path.
func (p Path) Current() (Pt, bool) {
	if len(p.Cmds) == 0 {
		return Pt{}, false
	}
	return p.Cmds[len(p.Cmds)-1].P, true
}

// Clone returns a deep copy.
func (p Path) Clone() Path {
	if p.Cmds == nil {
		return Path{}
	}
	return Path{Cmds: append([]PathCmd(nil), p.Cmds...)}
}

// Points returns the command points in order, including repeated points.
func (p Path) Points() []Pt {
	out := make([]Pt, len(p.Cmds))
	for i, c := range p.Cmds {
		out[i] = c.P
	}
	return out
}

// Subpaths splits the path at each MoveTo.
func (p Path) Subpaths() [][]Pt {
	var out [][]Pt
	for _, c := range p.Cmds {
		if c.Op == MoveTo || len(out) == 0 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], c.P)
	}
	return out
}

// Degenerate reports whether every point of the path coincides, which is the
// shape a single tap leaves behind.
func (p Path) Degenerate() bool {
	if len(p.Cmds) == 0 {
		return false
	}
	first := p.Cmds[0].P
	for _, c := range p.Cmds[1:] {
		if c.P != first {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the path points.
// A degenerate path yields a zero-size rect at its point.
func (p Path) Bounds() Rect {
	if len(p.Cmds) == 0 {
		return Rect{}
	}
	minX, minY := p.Cmds[0].P.X, p.Cmds[0].P.Y
	maxX, maxY := minX, minY
	for _, c := range p.Cmds[1:] {
		minX = min(minX, c.P.X)
		minY = min(minY, c.P.Y)
		maxX = max(maxX, c.P.X)
		maxY = max(maxY, c.P.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
