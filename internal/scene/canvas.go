/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"

	"snapline/internal/geom"
	"snapline/internal/snap"
)

type OpKind uint8

const (
	OpDraw OpKind = iota + 1
	OpInvalidate
)

// Op is one recorded surface call.
type Op struct {
	Kind  OpKind
	A, B  geom.Pt
	Style snap.LineType
	Rect  geom.Rect
}

func (o Op) String() string {
	if o.Kind == OpDraw {
		return fmt.Sprintf("draw %s %v-%v", o.Style, o.A, o.B)
	}
	return fmt.Sprintf("erase %v", o.Rect)
}

// Segment is a line currently shown on a Canvas.
type Segment struct {
	A, B  geom.Pt
	Style snap.LineType
}

func (g Segment) bounds() geom.Rect {
	return geom.Rect{X: g.A.X, Y: g.A.Y, W: g.B.X - g.A.X + 1, H: g.B.Y - g.A.Y + 1}
}

// Canvas is an overlay surface that records every call and tracks which
// segments are still visible: an erase hides every segment it touches.
type Canvas struct {
	ops      []Op
	visible  []Segment
	released bool
}

func (c *Canvas) DrawSegment(a, b geom.Pt, style snap.LineType) {
	c.ops = append(c.ops, Op{Kind: OpDraw, A: a, B: b, Style: style})
	g := Segment{A: a, B: b, Style: style}
	for _, v := range c.visible {
		if v == g {
			return
		}
	}
	c.visible = append(c.visible, g)
}

func (c *Canvas) Invalidate(r geom.Rect) {
	c.ops = append(c.ops, Op{Kind: OpInvalidate, Rect: r})
	kept := c.visible[:0]
	for _, v := range c.visible {
		if !v.bounds().Intersects(r) {
			kept = append(kept, v)
		}
	}
	c.visible = kept
}

// Release marks the canvas as handed back by the session.
func (c *Canvas) Release() { c.released = true }

func (c *Canvas) Released() bool { return c.released }

// Ops returns the recorded calls since the last Reset.
func (c *Canvas) Ops() []Op { return append([]Op(nil), c.ops...) }

// Visible returns the segments currently shown.
func (c *Canvas) Visible() []Segment { return append([]Segment(nil), c.visible...) }

// Reset forgets the recorded calls; visible segments stay.
func (c *Canvas) Reset() { c.ops = c.ops[:0] }
