/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "snapline/internal/geom"

type fakeShape struct {
	info  ShapeInfo
	lines []SnapLine
}

// fakeHost is an in-memory surface with a root shape "root" at the origin.
type fakeHost struct {
	order  []ShapeID
	shapes map[ShapeID]fakeShape
	clip   geom.Rect
}

func newFakeHost() *fakeHost {
	h := &fakeHost{shapes: make(map[ShapeID]fakeShape)}
	r := geom.R(0, 0, 1000, 1000)
	h.order = append(h.order, "root")
	h.shapes["root"] = fakeShape{info: ShapeInfo{Bounds: r, Client: r, Visible: true}}
	return h
}

func (h *fakeHost) add(id, parent ShapeID, bounds geom.Rect, lines ...SnapLine) *fakeHost {
	h.order = append(h.order, id)
	h.shapes[id] = fakeShape{info: ShapeInfo{Bounds: bounds, Client: bounds, Parent: parent, Visible: true}, lines: lines}
	return h
}

func (h *fakeHost) edit(id ShapeID, fn func(*ShapeInfo)) {
	s := h.shapes[id]
	fn(&s.info)
	h.shapes[id] = s
}

func (h *fakeHost) Candidates() []ShapeID { return h.order }

func (h *fakeHost) Shape(id ShapeID) (ShapeInfo, bool) {
	s, ok := h.shapes[id]
	return s.info, ok
}

func (h *fakeHost) SnapLines(id ShapeID) []SnapLine {
	return append([]SnapLine(nil), h.shapes[id].lines...)
}

func (h *fakeHost) Clip() geom.Rect { return h.clip }

type drawCall struct {
	a, b  geom.Pt
	style LineType
}

type fakeSurface struct {
	draws       []drawCall
	invalidated []geom.Rect
	released    int
}

func (s *fakeSurface) DrawSegment(a, b geom.Pt, style LineType) {
	s.draws = append(s.draws, drawCall{a, b, style})
}
func (s *fakeSurface) Invalidate(r geom.Rect) { s.invalidated = append(s.invalidated, r) }
func (s *fakeSurface) Release()               { s.released++ }

func vline(x int, p Priority) SnapLine { return NewSnapLine(Vertical, x, "", p) }
func hline(y int, p Priority) SnapLine { return NewSnapLine(Horizontal, y, "", p) }

func edges(w, h int) []SnapLine {
	return []SnapLine{
		NewSnapLine(Left, 0, "", PriorityLow),
		NewSnapLine(Right, w, "", PriorityLow),
		NewSnapLine(Top, 0, "", PriorityLow),
		NewSnapLine(Bottom, h, "", PriorityLow),
	}
}
