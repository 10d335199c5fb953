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
	"strings"
)

// SnapLineType is the semantic edge a snap line stands for. It also fixes the
// line's axis: Top, Bottom, Horizontal and Baseline lines are horizontal,
// Left, Right and Vertical lines are vertical.
type SnapLineType uint8

const (
	Top SnapLineType = iota + 1
	Bottom
	Left
	Right
	Horizontal
	Vertical
	Baseline
)

var snapLineTypeNames = [...]string{"", "top", "bottom", "left", "right", "horizontal", "vertical", "baseline"}

func (t SnapLineType) valid() bool { return t >= Top && t <= Baseline }

func (t SnapLineType) String() string {
	if !t.valid() {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return snapLineTypeNames[t]
}

// ParseSnapLineType maps a lower-case name back to its type.
func ParseSnapLineType(s string) (SnapLineType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range snapLineTypeNames {
		if i > 0 && n == s {
			return SnapLineType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown snap line type %q", s)
}

// Priority orders equally distant matches. Always lines are drawn whenever
// they tie the winning distance.
type Priority uint8

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityAlways
)

var priorityNames = [...]string{"", "low", "medium", "high", "always"}

func (p Priority) String() string {
	if p < PriorityLow || p > PriorityAlways {
		return fmt.Sprintf("priority(%d)", uint8(p))
	}
	return priorityNames[p]
}

// ParsePriority maps a lower-case name to a priority. Empty means low.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityLow, nil
	}
	for i, n := range priorityNames {
		if i > 0 && n == s {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// Filters tag margin and padding lines. Any other non-empty filter is a
// custom tag that only matches itself.
const (
	FilterMarginLeft    = "Margin.Left"
	FilterMarginRight   = "Margin.Right"
	FilterMarginTop     = "Margin.Top"
	FilterMarginBottom  = "Margin.Bottom"
	FilterPaddingLeft   = "Padding.Left"
	FilterPaddingRight  = "Padding.Right"
	FilterPaddingTop    = "Padding.Top"
	FilterPaddingBottom = "Padding.Bottom"

	marginPrefix  = "Margin"
	paddingPrefix = "Padding"
)

// SnapLine is one alignment coordinate exposed by a shape. Offset is the X
// of a vertical line or the Y of a horizontal one.
type SnapLine struct {
	Type     SnapLineType
	Offset   int
	Filter   string
	Priority Priority
}

// NewSnapLine returns a line with the given type, offset, filter and priority.
func NewSnapLine(t SnapLineType, offset int, filter string, p Priority) SnapLine {
	return SnapLine{Type: t, Offset: offset, Filter: filter, Priority: p}
}

func (l SnapLine) IsHorizontal() bool {
	return l.Type == Top || l.Type == Bottom || l.Type == Horizontal || l.Type == Baseline
}

func (l SnapLine) IsVertical() bool {
	return l.Type == Left || l.Type == Right || l.Type == Vertical
}

// AdjustOffset moves the line by delta along its perpendicular axis.
func (l *SnapLine) AdjustOffset(delta int) { l.Offset += delta }

func (l SnapLine) isMargin() bool  { return strings.HasPrefix(l.Filter, marginPrefix) }
func (l SnapLine) isPadding() bool { return strings.HasPrefix(l.Filter, paddingPrefix) }

func (l SnapLine) isMarginOrPadding() bool { return l.isMargin() || l.isPadding() }

func (l SnapLine) String() string {
	if l.Filter == "" {
		return fmt.Sprintf("%s@%d(%s)", l.Type, l.Offset, l.Priority)
	}
	return fmt.Sprintf("%s@%d[%s](%s)", l.Type, l.Offset, l.Filter, l.Priority)
}

// ShouldSnap reports whether two lines may align. Types must be equal and
// filters must pair up: a margin matches the opposite margin of a neighbour
// or the same-side padding of a container, padding matches the same-side
// margin, and custom filters match only themselves. Unknown types never match.
func ShouldSnap(a, b SnapLine) bool {
	if !a.Type.valid() || a.Type != b.Type {
		return false
	}
	if a.Filter == "" && b.Filter == "" {
		return true
	}
	if a.Filter == "" || b.Filter == "" {
		return false
	}
	switch a.Filter {
	case FilterMarginRight:
		return b.Filter == FilterMarginLeft || b.Filter == FilterPaddingRight
	case FilterMarginLeft:
		return b.Filter == FilterMarginRight || b.Filter == FilterPaddingLeft
	case FilterMarginTop:
		return b.Filter == FilterMarginBottom || b.Filter == FilterPaddingTop
	case FilterMarginBottom:
		return b.Filter == FilterMarginTop || b.Filter == FilterPaddingBottom
	case FilterPaddingRight:
		return b.Filter == FilterMarginRight
	case FilterPaddingLeft:
		return b.Filter == FilterMarginLeft
	case FilterPaddingTop:
		return b.Filter == FilterMarginTop
	case FilterPaddingBottom:
		return b.Filter == FilterMarginBottom
	}
	return a.Filter == b.Filter
}
