/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"reflect"
	"testing"
)

func TestUndoRedoBasic(t *testing.T) {
	h := NewHistory[string](Config{})
	h.Push("a")
	h.Push("b")
	if h.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.Len())
	}
	v, ok := h.Undo()
	if !ok || v != "b" {
		t.Fatalf("undo expected 'b', got ok=%v v=%q", ok, v)
	}
	if h.Len() != 1 || h.RedoLen() != 1 {
		t.Fatalf("after undo: len=%d redo=%d", h.Len(), h.RedoLen())
	}
	v, ok = h.Redo()
	if !ok || v != "b" {
		t.Fatalf("redo expected 'b', got ok=%v v=%q", ok, v)
	}
	if got := h.Items(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("items after redo = %v", got)
	}
}

func TestEmptyUndoRedoAreNoops(t *testing.T) {
	h := NewHistory[int](Config{})
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo on empty history should report false")
	}
	if _, ok := h.Redo(); ok {
		t.Fatalf("redo on empty buffer should report false")
	}
	if h.CanUndo() || h.CanRedo() {
		t.Fatalf("empty history cannot undo or redo")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory[int](Config{})
	h.Push(1)
	h.Push(2)
	h.Undo()
	h.Push(3)
	if h.CanRedo() {
		t.Fatalf("push must invalidate redo")
	}
	if got := h.Items(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Fatalf("items = %v", got)
	}
}

func TestRedoOrderIsLIFO(t *testing.T) {
	h := NewHistory[int](Config{})
	for i := 1; i <= 3; i++ {
		h.Push(i)
	}
	h.Undo()
	h.Undo()
	v, _ := h.Redo()
	if v != 2 {
		t.Fatalf("first redo should restore 2, got %d", v)
	}
}

func TestCapsLimitUndoDepthOnly(t *testing.T) {
	h := NewHistory[int](Config{MaxDepth: 2})
	for i := 0; i < 10; i++ {
		h.Push(i)
	}
	if h.Len() != 10 {
		t.Fatalf("cap must not drop entries, len=%d", h.Len())
	}
	for _, want := range []int{9, 8} {
		if v, ok := h.Undo(); !ok || v != want {
			t.Fatalf("undo = %d,%v want %d", v, ok, want)
		}
	}
	if _, ok := h.Undo(); ok || h.CanUndo() {
		t.Fatalf("undo below the cap must be refused")
	}
	if got := h.Items(); !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4, 5, 6, 7}) {
		t.Fatalf("frozen entries changed: %v", got)
	}
	h.Redo()
	h.Redo()
	if h.Len() != 10 || h.CanRedo() {
		t.Fatalf("redo should restore both: len=%d", h.Len())
	}
	// Undo floor moves with new pushes.
	h.Undo()
	h.Push(42)
	h.Undo()
	h.Undo()
	if _, ok := h.Undo(); ok {
		t.Fatalf("floor should follow pushes")
	}
	if h.Len() != 8 {
		t.Fatalf("len = %d, want 8", h.Len())
	}
}

func TestReplaceAndClearResetFloor(t *testing.T) {
	h := NewHistory[int](Config{MaxDepth: 1})
	h.Push(1)
	h.Push(2)
	h.Replace([]int{7, 8, 9})
	if h.Len() != 3 {
		t.Fatalf("replace must keep every entry, len=%d", h.Len())
	}
	if v, ok := h.Undo(); !ok || v != 9 {
		t.Fatalf("undo after replace = %d,%v", v, ok)
	}
	if h.CanUndo() {
		t.Fatalf("only the newest replaced entry is undoable")
	}
	h.Clear()
	h.Push(5)
	if v, ok := h.Undo(); !ok || v != 5 {
		t.Fatalf("clear should reset the floor, got %d,%v", v, ok)
	}
}

func TestReplaceAndClear(t *testing.T) {
	h := NewHistory[int](Config{})
	h.Push(1)
	h.Undo()
	h.Replace([]int{4, 5})
	if h.CanRedo() || h.Len() != 2 {
		t.Fatalf("replace should set entries and drop redo: len=%d redo=%d", h.Len(), h.RedoLen())
	}
	var sum int
	h.Each(func(v int) { sum += v })
	if sum != 9 {
		t.Fatalf("Each visited wrong entries, sum=%d", sum)
	}
	h.Clear()
	if h.Len() != 0 || h.CanRedo() {
		t.Fatalf("clear should empty everything")
	}
}
