/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history keeps undo/redo stacks of committed shape moves.
package history

import (
	"sync"
	"time"

	"snapline/internal/geom"
)

// Move is one committed translation of a shape (and whatever moved with it).
type Move struct {
	Shape string
	Delta geom.Pt
	TS    time.Time
}

// Inverse returns the move that undoes m.
func (m Move) Inverse() Move {
	return Move{Shape: m.Shape, Delta: geom.Pt{X: -m.Delta.X, Y: -m.Delta.Y}, TS: m.TS}
}

// Config controls depth caps and coalescing.
type Config struct {
	// MaxEntries caps the moves kept across all shapes; the oldest go first.
	MaxEntries int
	// MaxPerShape limits the undo depth of one shape (0 means unlimited).
	MaxPerShape int
	// MinInterval folds a move into the previous move of the same shape when
	// committed within the interval, so a burst of nudges undoes in one step.
	MinInterval time.Duration
}

// Manager holds per-shape undo and redo stacks. It is safe for concurrent use.
type Manager struct {
	cfg   Config
	mu    sync.Mutex
	undo  map[string][]Move
	redo  map[string][]Move
	total int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 4096
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Move), redo: make(map[string][]Move)}
}

// Push records m and clears the shape's redo stack. A zero move is ignored.
func (h *Manager) Push(m Move) {
	if m.Delta == (geom.Pt{}) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	stack := h.undo[m.Shape]
	h.redo[m.Shape] = nil
	if n := len(stack); n > 0 && m.TS.Sub(stack[n-1].TS) < h.cfg.MinInterval {
		last := &stack[n-1]
		last.Delta = last.Delta.Add(m.Delta)
		last.TS = m.TS
		if last.Delta == (geom.Pt{}) {
			h.undo[m.Shape] = stack[:n-1]
			h.total--
		}
		return
	}
	h.undo[m.Shape] = append(stack, m)
	h.total++
	h.enforceCapsLocked(m.Shape)
}

// Undo pops the shape's latest move onto its redo stack and returns it. The
// caller applies its Inverse.
func (h *Manager) Undo(shape string) (Move, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stack := h.undo[shape]
	if len(stack) == 0 {
		return Move{}, false
	}
	m := stack[len(stack)-1]
	h.undo[shape] = stack[:len(stack)-1]
	h.total--
	h.redo[shape] = append(h.redo[shape], m)
	return m, true
}

// Redo pops the shape's latest undone move back onto the undo stack.
func (h *Manager) Redo(shape string) (Move, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.redo[shape]
	if len(r) == 0 {
		return Move{}, false
	}
	m := r[len(r)-1]
	h.redo[shape] = r[:len(r)-1]
	h.undo[shape] = append(h.undo[shape], m)
	h.total++
	h.enforceCapsLocked(shape)
	return m, true
}

// Forget drops both stacks of a shape.
func (h *Manager) Forget(shape string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total -= len(h.undo[shape])
	delete(h.undo, shape)
	delete(h.redo, shape)
}

// Stats reports the number of undoable moves and of shapes having any.
func (h *Manager) Stats() (moves, shapes int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.undo {
		if len(s) > 0 {
			shapes++
		}
	}
	return h.total, shapes
}

// Stacks is the undo and redo state of one shape, oldest first.
type Stacks struct {
	Undo []Move
	Redo []Move
}

// Snapshot copies the stacks of every shape that has any.
func (h *Manager) Snapshot() map[string]Stacks {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]Stacks)
	for id, u := range h.undo {
		if len(u) > 0 {
			st := out[id]
			st.Undo = append([]Move(nil), u...)
			out[id] = st
		}
	}
	for id, r := range h.redo {
		if len(r) > 0 {
			st := out[id]
			st.Redo = append([]Move(nil), r...)
			out[id] = st
		}
	}
	return out
}

// Restore replaces every stack with st and applies the caps.
func (h *Manager) Restore(st map[string]Stacks) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = make(map[string][]Move, len(st))
	h.redo = make(map[string][]Move, len(st))
	h.total = 0
	for id, s := range st {
		if len(s.Undo) > 0 {
			h.undo[id] = append([]Move(nil), s.Undo...)
			h.total += len(s.Undo)
		}
		if len(s.Redo) > 0 {
			h.redo[id] = append([]Move(nil), s.Redo...)
		}
	}
	for id := range h.undo {
		h.enforceCapsLocked(id)
	}
}

func (h *Manager) enforceCapsLocked(shape string) {
	if h.cfg.MaxPerShape > 0 {
		if stack := h.undo[shape]; len(stack) > h.cfg.MaxPerShape {
			drop := len(stack) - h.cfg.MaxPerShape
			h.total -= drop
			h.undo[shape] = append([]Move(nil), stack[drop:]...)
		}
	}
	for h.total > h.cfg.MaxEntries {
		oldest := ""
		var ts time.Time
		for id, stack := range h.undo {
			if len(stack) > 0 && (oldest == "" || stack[0].TS.Before(ts)) {
				oldest, ts = id, stack[0].TS
			}
		}
		if oldest == "" {
			return
		}
		h.undo[oldest] = h.undo[oldest][1:]
		if len(h.undo[oldest]) == 0 {
			delete(h.undo, oldest)
		}
		h.total--
	}
}
