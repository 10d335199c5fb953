/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene loads design surfaces described in JSON and serves them to
// the snap engine. A Scene is the engine's Host; a Canvas is a Surface that
// records what the engine draws.
package scene

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"snapline/internal/geom"
	"snapline/internal/history"
	"snapline/internal/snap"
)

type Options struct {
	History history.Config
	// Now stamps committed moves; nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Scene is a mutable set of shapes. It is not safe for concurrent use; the
// move history it owns is.
type Scene struct {
	doc   Document
	index map[string]int
	hist  *history.Manager
	now   func() time.Time
	log   *slog.Logger
}

// New wraps a decoded document after checking it.
func New(doc Document, opts Options) (*Scene, error) {
	if err := doc.Check(); err != nil {
		return nil, err
	}
	s := &Scene{
		doc:  cloneDoc(doc),
		hist: history.NewManager(opts.History),
		now:  opts.Now,
		log:  opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if doc.History != nil {
		s.hist.Restore(stacksOf(doc.History))
	}
	s.reindex()
	return s, nil
}

func (s *Scene) reindex() {
	s.index = make(map[string]int, len(s.doc.Shapes))
	for i, sh := range s.doc.Shapes {
		s.index[sh.ID] = i
	}
}

// Name returns the document name.
func (s *Scene) Name() string { return s.doc.Name }

// Document returns a copy of the current state.
func (s *Scene) Document() Document {
	d := cloneDoc(s.doc)
	d.History = historyOf(s.hist.Snapshot())
	return d
}

// Spec returns the description of shape id.
func (s *Scene) Spec(id string) (ShapeSpec, bool) {
	i, ok := s.index[id]
	if !ok {
		return ShapeSpec{}, false
	}
	return s.doc.Shapes[i], true
}

// Bounds returns the absolute bounds of shape id.
func (s *Scene) Bounds(id string) (geom.Rect, bool) {
	sh, ok := s.Spec(id)
	return sh.Bounds.Rect(), ok
}

// Candidates lists every shape in document order.
func (s *Scene) Candidates() []snap.ShapeID {
	out := make([]snap.ShapeID, len(s.doc.Shapes))
	for i, sh := range s.doc.Shapes {
		out[i] = snap.ShapeID(sh.ID)
	}
	return out
}

func (s *Scene) Shape(id snap.ShapeID) (snap.ShapeInfo, bool) {
	sh, ok := s.Spec(string(id))
	if !ok {
		return snap.ShapeInfo{}, false
	}
	b := sh.Bounds.Rect()
	return snap.ShapeInfo{
		Bounds:  b,
		Client:  clientRect(b, sh.ClientInset),
		Parent:  snap.ShapeID(sh.Parent),
		Visible: sh.IsVisible(),
		NoLines: sh.NoLines,
	}, true
}

func (s *Scene) SnapLines(id snap.ShapeID) []snap.SnapLine {
	sh, ok := s.Spec(string(id))
	if !ok || sh.NoLines {
		return nil
	}
	return deriveLines(sh)
}

func (s *Scene) Clip() geom.Rect {
	if s.doc.Clip == nil {
		return geom.Rect{}
	}
	return s.doc.Clip.Rect()
}

func clientRect(b geom.Rect, in *Insets) geom.Rect {
	if in == nil {
		return b
	}
	return geom.Rect{
		X: b.X + in.Left,
		Y: b.Y + in.Top,
		W: max(0, b.W-in.Left-in.Right),
		H: max(0, b.H-in.Top-in.Bottom),
	}
}

// Move translates shape id and its descendants and records the move.
func (s *Scene) Move(id string, dx, dy int) error {
	if err := s.translate(id, dx, dy); err != nil {
		return err
	}
	s.hist.Push(history.Move{Shape: id, Delta: geom.Pt{X: dx, Y: dy}, TS: s.now()})
	s.log.Debug("shape moved", slog.String("shape", id), slog.Int("dx", dx), slog.Int("dy", dy))
	return nil
}

// MoveTo moves shape id so its bounds start at p.
func (s *Scene) MoveTo(id string, p geom.Pt) error {
	b, ok := s.Bounds(id)
	if !ok {
		return fmt.Errorf("%w: %s", snap.ErrUnknownShape, id)
	}
	return s.Move(id, p.X-b.X, p.Y-b.Y)
}

// Undo reverts the latest recorded move of shape id. It reports false when
// there is nothing to undo.
func (s *Scene) Undo(id string) (bool, error) {
	m, ok := s.hist.Undo(id)
	if !ok {
		return false, nil
	}
	inv := m.Inverse()
	return true, s.translate(id, inv.Delta.X, inv.Delta.Y)
}

// Redo reapplies the latest undone move of shape id.
func (s *Scene) Redo(id string) (bool, error) {
	m, ok := s.hist.Redo(id)
	if !ok {
		return false, nil
	}
	return true, s.translate(id, m.Delta.X, m.Delta.Y)
}

// History exposes the move history.
func (s *Scene) History() *history.Manager { return s.hist }

// Forget drops the move history of shape id.
func (s *Scene) Forget(id string) error {
	if _, ok := s.index[id]; !ok {
		return fmt.Errorf("%w: %s", snap.ErrUnknownShape, id)
	}
	s.hist.Forget(id)
	return nil
}

func stacksOf(h *HistorySpec) map[string]history.Stacks {
	out := make(map[string]history.Stacks)
	for _, m := range h.Undo {
		st := out[m.Shape]
		st.Undo = append(st.Undo, m.move())
		out[m.Shape] = st
	}
	for _, m := range h.Redo {
		st := out[m.Shape]
		st.Redo = append(st.Redo, m.move())
		out[m.Shape] = st
	}
	return out
}

func (m MoveSpec) move() history.Move {
	return history.Move{Shape: m.Shape, Delta: geom.Pt{X: m.DX, Y: m.DY}, TS: m.At}
}

// historyOf flattens stacks shape by shape in id order; nil when empty.
func historyOf(st map[string]history.Stacks) *HistorySpec {
	if len(st) == 0 {
		return nil
	}
	spec := func(m history.Move) MoveSpec {
		return MoveSpec{Shape: m.Shape, DX: m.Delta.X, DY: m.Delta.Y, At: m.TS.UTC()}
	}
	h := &HistorySpec{}
	for _, id := range slices.Sorted(maps.Keys(st)) {
		for _, m := range st[id].Undo {
			h.Undo = append(h.Undo, spec(m))
		}
		for _, m := range st[id].Redo {
			h.Redo = append(h.Redo, spec(m))
		}
	}
	return h
}

func (s *Scene) translate(id string, dx, dy int) error {
	if _, ok := s.index[id]; !ok {
		return fmt.Errorf("%w: %s", snap.ErrUnknownShape, id)
	}
	for _, i := range s.subtree(id) {
		b := &s.doc.Shapes[i].Bounds
		b.X += dx
		b.Y += dy
	}
	return nil
}

// subtree returns the indexes of id and all its descendants.
func (s *Scene) subtree(id string) []int {
	children := make(map[string][]int)
	for i, sh := range s.doc.Shapes {
		if sh.Parent != "" {
			children[sh.Parent] = append(children[sh.Parent], i)
		}
	}
	out := []int{s.index[id]}
	for k := 0; k < len(out); k++ {
		out = append(out, children[s.doc.Shapes[out[k]].ID]...)
	}
	return out
}

// Descendants returns the ids of every shape below id.
func (s *Scene) Descendants(id string) []string {
	if _, ok := s.index[id]; !ok {
		return nil
	}
	idx := s.subtree(id)[1:]
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = s.doc.Shapes[k].ID
	}
	return out
}

func cloneDoc(d Document) Document {
	out := Document{Name: d.Name, Shapes: make([]ShapeSpec, len(d.Shapes))}
	if d.Clip != nil {
		c := *d.Clip
		out.Clip = &c
	}
	for i, sh := range d.Shapes {
		c := sh
		c.ClientInset = cloneInsets(sh.ClientInset)
		c.Margin = cloneInsets(sh.Margin)
		c.Padding = cloneInsets(sh.Padding)
		if sh.Visible != nil {
			v := *sh.Visible
			c.Visible = &v
		}
		if sh.Baseline != nil {
			v := *sh.Baseline
			c.Baseline = &v
		}
		c.Lines = append([]LineSpec(nil), sh.Lines...)
		out.Shapes[i] = c
	}
	return out
}

func cloneInsets(in *Insets) *Insets {
	if in == nil {
		return nil
	}
	c := *in
	return &c
}
