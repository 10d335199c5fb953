/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"fmt"

	"snapline/internal/geom"
)

// LineType selects the pen and the endpoint rules of a rendered line.
type LineType uint8

const (
	LineStandard LineType = iota
	LineMargin
	LinePadding
	LineBaseline
)

func (t LineType) String() string {
	switch t {
	case LineStandard:
		return "standard"
	case LineMargin:
		return "margin"
	case LinePadding:
		return "padding"
	case LineBaseline:
		return "baseline"
	}
	return fmt.Sprintf("linetype(%d)", uint8(t))
}

// Side is the edge a margin or padding line belongs to.
type Side uint8

const (
	SideNone Side = iota
	SideLeft
	SideRight
	SideTop
	SideBottom
)

func (s Side) String() string {
	if s > SideBottom {
		return fmt.Sprintf("side(%d)", uint8(s))
	}
	return [...]string{"none", "left", "right", "top", "bottom"}[s]
}

func sideOf(filter string) Side {
	switch filter {
	case FilterMarginLeft, FilterPaddingLeft:
		return SideLeft
	case FilterMarginRight, FilterPaddingRight:
		return SideRight
	case FilterMarginTop, FilterPaddingTop:
		return SideTop
	case FilterMarginBottom, FilterPaddingBottom:
		return SideBottom
	}
	return SideNone
}

// RenderedLine is a drawable segment. A and B are ordered so that A is the
// top or left end; both ends are inclusive pixels.
type RenderedLine struct {
	A, B geom.Pt
	// Vertical is the orientation of the segment. Margin and padding lines
	// run across the snap axis, so it may differ from the snap line's axis.
	Vertical bool
	Type     LineType
	Side     Side
	// Owner is the rect of the shape that exposed the line (the client rect
	// for padding lines); Recompute sizes the segment against it.
	Owner geom.Rect
	// Offset and OnVerticalAxis describe the snap line the segment shows.
	Offset         int
	OnVerticalAxis bool
}

func (l RenderedLine) String() string {
	return fmt.Sprintf("%s %v-%v", l.Type, l.A, l.B)
}

// Bounds is the pixel rect the segment covers.
func (l RenderedLine) Bounds() geom.Rect {
	return geom.Rect{X: l.A.X, Y: l.A.Y, W: l.B.X - l.A.X + 1, H: l.B.Y - l.A.Y + 1}
}

// span returns the segment's extent along its own direction and the fixed
// coordinate across it.
func (l RenderedLine) span() (lo, hi, at int) {
	if l.Vertical {
		return l.A.Y, l.B.Y, l.A.X
	}
	return l.A.X, l.B.X, l.A.Y
}

func (l RenderedLine) collinear(o RenderedLine) bool {
	if l.Type != o.Type || l.Vertical != o.Vertical {
		return false
	}
	_, _, a := l.span()
	_, _, b := o.span()
	return a == b
}

func (l RenderedLine) withSpan(lo, hi int) RenderedLine {
	if l.Vertical {
		l.A.Y, l.B.Y = lo, hi
	} else {
		l.A.X, l.B.X = lo, hi
	}
	return l
}

func lineTypeOf(s SnapLine) LineType {
	switch {
	case s.isPadding():
		return LinePadding
	case s.isMargin():
		return LineMargin
	case s.Type == Baseline:
		return LineBaseline
	}
	return LineStandard
}

func newRenderedLine(c candidate, drag geom.Rect) RenderedLine {
	l := RenderedLine{
		Type:           lineTypeOf(c.line),
		Side:           sideOf(c.line.Filter),
		Owner:          c.owner,
		Offset:         c.line.Offset,
		OnVerticalAxis: c.line.IsVertical(),
	}
	return l.Recompute(drag)
}

// Recompute lays the segment out against drag, the snapped drag rect.
//
// Standard and baseline lines run along the snap line over both rects.
// Margin lines bridge the gap between the facing edges of the two rects at
// the middle of their overlap. Padding lines run from the owner's client edge
// on their side to the facing edge of drag.
func (l RenderedLine) Recompute(drag geom.Rect) RenderedLine {
	o := l.Owner
	switch l.Type {
	case LineMargin, LinePadding:
		var lo, hi, mid int
		if l.OnVerticalAxis {
			mid = midOverlap(o.Y, o.Bottom(), drag.Y, drag.Bottom())
			lo, hi = gapAcross(l.Type, l.Side, o.X, o.Right(), drag.X, drag.Right())
			l.A, l.B = geom.Pt{X: lo, Y: mid}, geom.Pt{X: hi, Y: mid}
			l.Vertical = false
		} else {
			mid = midOverlap(o.X, o.Right(), drag.X, drag.Right())
			lo, hi = gapAcross(l.Type, l.Side, o.Y, o.Bottom(), drag.Y, drag.Bottom())
			l.A, l.B = geom.Pt{X: mid, Y: lo}, geom.Pt{X: mid, Y: hi}
			l.Vertical = true
		}
	default:
		if l.OnVerticalAxis {
			l.A = geom.Pt{X: l.Offset, Y: min(drag.Y, o.Y)}
			l.B = geom.Pt{X: l.Offset, Y: max(drag.Bottom(), o.Bottom())}
			l.Vertical = true
		} else {
			l.A = geom.Pt{X: min(drag.X, o.X), Y: l.Offset}
			l.B = geom.Pt{X: max(drag.Right(), o.Right()), Y: l.Offset}
			l.Vertical = false
		}
	}
	return l
}

func midOverlap(a0, a1, b0, b1 int) int {
	lo := max(a0, b0)
	hi := min(a1, b1)
	return (lo + hi) / 2
}

// gapAcross returns the ordered extent of a margin or padding segment along
// the axis across the snap line. [o0,o1) is the owner, [d0,d1) the drag rect.
func gapAcross(t LineType, side Side, o0, o1, d0, d1 int) (int, int) {
	var a, b int
	if t == LinePadding {
		switch side {
		case SideLeft, SideTop:
			a, b = o0, d0
		default:
			a, b = d1, o1
		}
	} else {
		a, b = min(o1, d1), max(o0, d0)
	}
	if a > b {
		a, b = b, a
	}
	return a, b
}

// mergeLines joins two collinear lines of the same type whose spans overlap
// or touch.
func mergeLines(a, b RenderedLine) (RenderedLine, bool) {
	if !a.collinear(b) {
		return a, false
	}
	alo, ahi, _ := a.span()
	blo, bhi, _ := b.span()
	if alo > bhi || blo > ahi {
		return a, false
	}
	return a.withSpan(min(alo, blo), max(ahi, bhi)), true
}

// addLine appends l to lines, merging it with any line it overlaps.
func addLine(lines []RenderedLine, l RenderedLine) []RenderedLine {
	for i := range lines {
		if m, ok := mergeLines(lines[i], l); ok {
			lines = append(lines[:i], lines[i+1:]...)
			return addLine(lines, m)
		}
	}
	return append(lines, l)
}

// appendSnapped materializes every candidate whose distance equals smallest
// and whose priority is the highest among those ties (or Always). drag is
// the snapped drag rect.
func appendSnapped(out []RenderedLine, cands []candidate, dist []int, smallest int, drag geom.Rect) []RenderedLine {
	highest := PriorityLow
	for i, d := range dist {
		if d != smallest {
			continue
		}
		if pri := cands[i].line.Priority; pri > highest && pri != PriorityAlways {
			highest = pri
		}
	}
	for i, d := range dist {
		if d != smallest {
			continue
		}
		if pri := cands[i].line.Priority; pri == highest || pri == PriorityAlways {
			out = addLine(out, newRenderedLine(cands[i], drag))
		}
	}
	return out
}
