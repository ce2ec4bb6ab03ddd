/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package drawing

import "drawingapp/internal/vector"

// Stroke is one finished or in-progress gesture. Color and Width are fixed at
// pointer-down and apply to the whole path. Width is in pixels.
type Stroke struct {
	ID    string
	Path  vector.Path
	Color vector.Color
	Width float32
}

// Clone returns a deep copy; the path commands are not shared.
func (s Stroke) Clone() Stroke {
	s.Path = s.Path.Clone()
	return s
}

// Style returns the pen used to paint the stroke.
func (s Stroke) Style() vector.Stroke { return vector.Brush(s.Color, s.Width) }

// Empty reports whether the stroke has no geometry yet.
func (s Stroke) Empty() bool { return s.Path.IsEmpty() }
