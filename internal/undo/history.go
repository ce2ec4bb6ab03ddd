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

// Config controls depth caps.
type Config struct {
	// MaxDepth limits how many of the newest entries can be undone (0 means
	// unlimited). Older entries stay in the history but are frozen.
	MaxDepth int
}

// History is an ordered list of committed entries plus a redo buffer.
// Insertion order is significant: Items returns entries oldest first.
// It is not safe for concurrent use; owners serialize access.
type History[T any] struct {
	cfg   Config
	items []T
	redo  []T
	// floor is the number of leading entries Undo will not remove.
	floor int
}

func NewHistory[T any](cfg Config) *History[T] {
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	return &History[T]{cfg: cfg}
}

// Push commits a new entry. Any new entry invalidates the redo buffer.
func (h *History[T]) Push(v T) {
	h.items = append(h.items, v)
	h.redo = nil
	h.enforceCaps()
}

// Undo moves the most recent entry to the redo buffer.
func (h *History[T]) Undo() (T, bool) {
	var zero T
	if len(h.items) <= h.floor {
		return zero, false
	}
	v := h.items[len(h.items)-1]
	h.items[len(h.items)-1] = zero
	h.items = h.items[:len(h.items)-1]
	h.redo = append(h.redo, v)
	return v, true
}

// Redo restores the most recently undone entry.
func (h *History[T]) Redo() (T, bool) {
	var zero T
	if len(h.redo) == 0 {
		return zero, false
	}
	v := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = zero
	h.redo = h.redo[:len(h.redo)-1]
	h.items = append(h.items, v)
	h.enforceCaps()
	return v, true
}

// Replace swaps all entries for vs and drops the redo buffer.
func (h *History[T]) Replace(vs []T) {
	h.items = append([]T(nil), vs...)
	h.redo = nil
	h.floor = 0
	h.enforceCaps()
}

// Clear drops entries and the redo buffer.
func (h *History[T]) Clear() {
	h.items = nil
	h.redo = nil
	h.floor = 0
}

// Items returns a copy of the committed entries, oldest first.
func (h *History[T]) Items() []T { return append([]T(nil), h.items...) }

// Each calls fn for every committed entry, oldest first, without copying.
func (h *History[T]) Each(fn func(T)) {
	for _, v := range h.items {
		fn(v)
	}
}

func (h *History[T]) Len() int      { return len(h.items) }
func (h *History[T]) RedoLen() int  { return len(h.redo) }
func (h *History[T]) CanUndo() bool { return len(h.items) > h.floor }
func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }

// enforceCaps raises the undo floor so at most MaxDepth entries stay undoable.
// Entries are never removed.
func (h *History[T]) enforceCaps() {
	if h.cfg.MaxDepth <= 0 {
		return
	}
	h.floor = max(h.floor, len(h.items)-h.cfg.MaxDepth)
}
