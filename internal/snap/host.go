/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"errors"

	"snapline/internal/geom"
)

var (
	ErrNoHost       = errors.New("snap: no host")
	ErrNoSurface    = errors.New("snap: no drawing surface")
	ErrUnknownShape = errors.New("snap: unknown shape")
	ErrSessionEnded = errors.New("snap: session ended")
)

// ShapeID identifies a shape on the host surface.
type ShapeID string

// ShapeInfo is what the engine needs to know about a shape. Rectangles are
// in overlay space.
type ShapeInfo struct {
	Bounds geom.Rect
	// Client is the client area with any non-client inset removed. Padding
	// lines are sized against it.
	Client  geom.Rect
	Parent  ShapeID
	Visible bool
	// NoLines marks shapes that cannot expose snap lines.
	NoLines bool
}

// Host is the designer side of a drag session. SnapLines returns lines in
// shape-local coordinates; the engine translates them by the shape bounds.
type Host interface {
	Candidates() []ShapeID
	Shape(id ShapeID) (ShapeInfo, bool)
	SnapLines(id ShapeID) []SnapLine
	// Clip is the visible region of the root surface. An empty rect disables
	// clipping.
	Clip() geom.Rect
}

// Surface draws snap lines into the overlay and erases regions of it.
type Surface interface {
	DrawSegment(a, b geom.Pt, style LineType)
	Invalidate(r geom.Rect)
}

// Releaser is implemented by surfaces holding resources that must be
// returned when a session ends.
type Releaser interface {
	Release()
}
