/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap implements snap-line drag assistance: while a shape is dragged
// or resized it finds the alignment lines of other shapes within snapping
// distance, reports the offset that aligns them, and keeps the overlay that
// shows those lines up to date with minimal invalidation.
//
// A Session is single-threaded and owned by the UI event loop that feeds it.
package snap

import (
	"fmt"
	"log/slog"
	"strings"

	"snapline/internal/geom"
)

// Axes selects the axes a frame may snap on.
type Axes uint8

const (
	// AxisX snaps horizontally, against vertical lines.
	AxisX Axes = 1 << iota
	// AxisY snaps vertically, against horizontal lines.
	AxisY
	AxesBoth = AxisX | AxisY
)

// ParseAxes reads "x", "y" or "both"; empty means both.
func ParseAxes(s string) (Axes, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both", "xy":
		return AxesBoth, nil
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	}
	return 0, fmt.Errorf("snap: unknown axes %q", s)
}

// Frame is the outcome of one pointer move.
type Frame struct {
	// Offset is the adjustment to add to the drag position. It is zero on an
	// axis that did not snap.
	Offset       geom.Pt
	SnapX, SnapY bool
	// Lines are the segments now shown.
	Lines []RenderedLine
	// Invalidated are the overlay regions erased for this frame.
	Invalidated []geom.Rect
}

// Session tracks one drag or resize from Start to OnEnd.
type Session struct {
	pools   *Pools
	surface Surface
	opts    Options
	log     *slog.Logger

	recent  []RenderedLine
	current []RenderedLine
	regions []geom.Rect
	scratch []interval
	frames  int
	ended   bool
}

// Start collects the snap lines for dragging primary and returns a session
// ready for OnMove. It fails when host or surface is missing.
func Start(host Host, surface Surface, primary ShapeID, opts Options) (*Session, error) {
	if host == nil {
		return nil, ErrNoHost
	}
	if surface == nil {
		return nil, ErrNoSurface
	}
	opts = opts.normalized()
	pools, err := Collect(host, primary, opts)
	if err != nil {
		return nil, err
	}
	s := &Session{
		pools:   pools,
		surface: surface,
		opts:    opts,
		log:     opts.Logger.With(slog.String("shape", string(primary))),
	}
	s.log.Debug("session start",
		slog.Int("vertical", len(pools.vert)), slog.Int("horizontal", len(pools.horz)),
		slog.Int("moving_vertical", len(pools.mvert)), slog.Int("moving_horizontal", len(pools.mhorz)),
		slog.Int("snap_distance", opts.SnapDistance))
	return s, nil
}

// Pools exposes the collected lines, mainly for inspection.
func (s *Session) Pools() *Pools { return s.pools }

// Frames returns the number of frames computed so far.
func (s *Session) Frames() int { return s.frames }

// OnMove handles a drag to bounds. The moving lines follow the bounds delta
// since the previous call, so calling it twice with the same bounds yields
// the same frame and redraws nothing the second time.
func (s *Session) OnMove(bounds geom.Rect) (Frame, error) {
	return s.OnMoveAxes(bounds, AxesBoth)
}

// OnMoveAxes is OnMove restricted to axes; lines on the other axis are
// neither matched nor shown.
func (s *Session) OnMoveAxes(bounds geom.Rect, axes Axes) (Frame, error) {
	if s.ended {
		return Frame{}, ErrSessionEnded
	}
	s.pools.moveTo(bounds)
	return s.frame(bounds, axes), nil
}

// OnResize handles a resize to bounds. lines is the resized shape's fresh
// set in shape-local coordinates; only the given axes may snap.
func (s *Session) OnResize(bounds geom.Rect, lines []SnapLine, axes Axes) (Frame, error) {
	if s.ended {
		return Frame{}, ErrSessionEnded
	}
	s.pools.setMoving(bounds, lines)
	return s.frame(bounds, axes), nil
}

// Nudge returns the keyboard offset toward the nearest line ahead of the
// current position in direction dir.
func (s *Session) Nudge(dir geom.Pt) (geom.Pt, error) {
	if s.ended {
		return geom.Pt{}, ErrSessionEnded
	}
	return s.pools.OffsetToNearestSnap(dir), nil
}

func (s *Session) frame(drag geom.Rect, axes Axes) Frame {
	p := s.pools
	s.frames++

	dv, dh := NoMatch, NoMatch
	if axes&AxisX != 0 {
		dv = buildDistances(p.vert, p.mvert, p.vdist, drag)
	}
	if axes&AxisY != 0 {
		dh = buildDistances(p.horz, p.mhorz, p.hdist, drag)
	}

	var f Frame
	if geom.Abs(dv) <= s.opts.SnapDistance {
		f.SnapX, f.Offset.X = true, -dv
	}
	if geom.Abs(dh) <= s.opts.SnapDistance {
		f.SnapY, f.Offset.Y = true, -dh
	}

	snapped := drag.Offset(f.Offset.X, f.Offset.Y)
	s.current = s.current[:0]
	if f.SnapX {
		s.current = appendSnapped(s.current, p.vert, p.vdist, dv, snapped)
	}
	if f.SnapY {
		s.current = appendSnapped(s.current, p.horz, p.hdist, dh, snapped)
	}

	f.Lines = append([]RenderedLine(nil), s.current...)
	s.paint()
	f.Invalidated = append([]geom.Rect(nil), s.regions...)

	s.log.Debug("frame",
		slog.Int("seq", s.frames), slog.String("drag", drag.String()),
		slog.Int("dx", f.Offset.X), slog.Int("dy", f.Offset.Y),
		slog.Int("lines", len(f.Lines)), slog.Int("invalidated", len(f.Invalidated)))
	return f
}

// paint erases what changed since the previous frame and draws the lines
// that are new or were touched by an erase.
func (s *Session) paint() {
	s.regions, s.scratch = reconcileInto(s.regions[:0], s.recent, s.current, s.scratch)
	for _, r := range s.regions {
		s.surface.Invalidate(r)
	}
	for _, l := range s.current {
		if containsLine(s.recent, l) && !touchesAny(l.Bounds(), s.regions) {
			continue
		}
		s.surface.DrawSegment(l.A, l.B, l.Type)
	}
	s.recent, s.current = s.current, s.recent
}

// OnEnd erases every line still shown and releases the surface. It returns
// the erased regions. Later calls do nothing.
func (s *Session) OnEnd() []geom.Rect {
	if s.ended {
		return nil
	}
	s.ended = true
	var erased []geom.Rect
	for _, l := range s.recent {
		r := l.Bounds().Inflate(1, 1)
		s.surface.Invalidate(r)
		erased = append(erased, r)
	}
	s.recent = s.recent[:0]
	if rel, ok := s.surface.(Releaser); ok {
		rel.Release()
	}
	s.log.Debug("session end", slog.Int("frames", s.frames), slog.Int("erased", len(erased)))
	return erased
}
