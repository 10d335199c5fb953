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
	"log/slog"

	"snapline/internal/geom"
)

// DefaultSnapDistance is the largest distance, in overlay pixels, at which
// an alignment is honoured.
const DefaultSnapDistance = 8

// NoMatch marks a distance table slot without a compatible moving line.
const NoMatch = 0x1111

// Options controls how a session collects and matches lines.
type Options struct {
	// SnapDistance defaults to DefaultSnapDistance when <= 0.
	SnapDistance int
	// Moving lists shapes dragged together with the primary one. They never
	// contribute candidate lines unless listed in Include.
	Moving []ShapeID
	// Include keeps moving shapes as candidates, e.g. the originals of a
	// ctrl-drag copy.
	Include []ShapeID
	// Logger receives per-frame traces. Nil discards.
	Logger *slog.Logger
}

func (o Options) normalized() Options {
	if o.SnapDistance <= 0 {
		o.SnapDistance = DefaultSnapDistance
	}
	if o.SnapDistance >= NoMatch {
		o.SnapDistance = NoMatch - 1
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// candidate is a line from a non-moving shape together with the rect it is
// rendered and validated against.
type candidate struct {
	line  SnapLine
	owner geom.Rect
	shape ShapeID
}

// Pools holds the candidate lines of every other shape and the moving
// shape's own lines, per axis, plus the distance buffers reused each frame.
type Pools struct {
	vert, horz   []candidate
	mvert, mhorz []SnapLine
	// kinds is the set of line types the moving shape exposes.
	kinds map[SnapLineType]bool
	// at is the bounds the moving lines currently describe.
	at           geom.Rect
	vdist, hdist []int
}

// Collect builds the pools for dragging primary on host.
func Collect(host Host, primary ShapeID, opts Options) (*Pools, error) {
	if host == nil {
		return nil, ErrNoHost
	}
	info, ok := host.Shape(primary)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, primary)
	}
	p := &Pools{kinds: make(map[SnapLineType]bool)}
	if !info.NoLines {
		p.setMoving(info.Bounds, host.SnapLines(primary))
	}
	p.at = info.Bounds

	excluded := map[ShapeID]bool{primary: true}
	for _, id := range opts.Moving {
		excluded[id] = true
	}
	for _, id := range opts.Include {
		if id != primary {
			delete(excluded, id)
		}
	}

	clip := host.Clip()
	ids := host.Candidates()
	for _, id := range ids {
		if excluded[id] {
			continue
		}
		ci, ok := host.Shape(id)
		if !ok || ci.NoLines || !ci.Visible || ci.Parent == "" {
			continue
		}
		if !clip.IsEmpty() && !clip.Intersects(ci.Bounds) {
			continue
		}
		if descendsFrom(host, id, excluded, len(ids)+1) {
			continue
		}
		p.addCandidates(id, ci, host.SnapLines(id))
	}
	p.vdist = make([]int, len(p.vert))
	p.hdist = make([]int, len(p.horz))
	return p, nil
}

// setMoving replaces the moving lines with local translated by bounds.
// Padding lines are dropped: a shape never snaps to its own padding.
func (p *Pools) setMoving(bounds geom.Rect, local []SnapLine) {
	p.mvert = p.mvert[:0]
	p.mhorz = p.mhorz[:0]
	for _, l := range local {
		if l.isPadding() || !l.Type.valid() {
			continue
		}
		p.kinds[l.Type] = true
		if l.IsHorizontal() {
			l.AdjustOffset(bounds.Y)
			p.mhorz = append(p.mhorz, l)
		} else {
			l.AdjustOffset(bounds.X)
			p.mvert = append(p.mvert, l)
		}
	}
	p.at = bounds
}

func (p *Pools) addCandidates(id ShapeID, info ShapeInfo, local []SnapLine) {
	// Until the moving shape has reported any line type, keep everything.
	known := len(p.kinds) > 0
	for _, l := range local {
		if !l.Type.valid() {
			continue
		}
		if known && !p.kinds[l.Type] {
			continue
		}
		owner := info.Bounds
		if l.isPadding() {
			owner = info.Client
		}
		c := candidate{line: l, owner: owner, shape: id}
		if l.IsHorizontal() {
			c.line.AdjustOffset(info.Bounds.Y)
			p.horz = append(p.horz, c)
		} else {
			c.line.AdjustOffset(info.Bounds.X)
			p.vert = append(p.vert, c)
		}
	}
}

// moveTo shifts the moving lines so they describe bounds.
func (p *Pools) moveTo(bounds geom.Rect) {
	dx := bounds.X - p.at.X
	dy := bounds.Y - p.at.Y
	if dx != 0 {
		for i := range p.mvert {
			p.mvert[i].AdjustOffset(dx)
		}
	}
	if dy != 0 {
		for i := range p.mhorz {
			p.mhorz[i].AdjustOffset(dy)
		}
	}
	p.at = bounds
}

// Bounds returns the rect the moving lines currently describe.
func (p *Pools) Bounds() geom.Rect { return p.at }

// CandidateLines returns copies of the candidate lines per axis.
func (p *Pools) CandidateLines() (vertical, horizontal []SnapLine) {
	for _, c := range p.vert {
		vertical = append(vertical, c.line)
	}
	for _, c := range p.horz {
		horizontal = append(horizontal, c.line)
	}
	return vertical, horizontal
}

// MovingLines returns copies of the moving shape's lines per axis.
func (p *Pools) MovingLines() (vertical, horizontal []SnapLine) {
	return append([]SnapLine(nil), p.mvert...), append([]SnapLine(nil), p.mhorz...)
}

// descendsFrom reports whether id has an ancestor in set. The walk is bounded
// so a broken parent chain on the host cannot loop forever.
func descendsFrom(host Host, id ShapeID, set map[ShapeID]bool, limit int) bool {
	cur := id
	for i := 0; i < limit; i++ {
		info, ok := host.Shape(cur)
		if !ok || info.Parent == "" {
			return false
		}
		if set[info.Parent] {
			return true
		}
		cur = info.Parent
	}
	return false
}
