/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 10, 100, 50)
	if !r.Contains(Pt{10, 10}) || !r.Contains(Pt{110, 60}) {
		t.Fatalf("edges should be contained")
	}
	if r.Contains(Pt{9, 10}) {
		t.Fatalf("point left of rect should not be contained")
	}
	in := r.Inset(5)
	if in.X != 15 || in.Y != 15 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestFitCenterKeepsAspect(t *testing.T) {
	// 200x100 content into a 100x100 box: 100x50 centered vertically.
	f := R(0, 0, 100, 100).FitCenter(200, 100)
	if f.X != 0 || f.Y != 25 || f.W != 100 || f.H != 50 {
		t.Fatalf("unexpected fit: %+v", f)
	}
	if !R(0, 0, 100, 100).FitCenter(0, 10).Empty() {
		t.Fatalf("zero-size content should fit to an empty rect")
	}
}

func TestUnion(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(20, -5, 5, 5))
	if u.X != 0 || u.Y != -5 || u.W != 25 || u.H != 15 {
		t.Fatalf("unexpected union: %+v", u)
	}
}
