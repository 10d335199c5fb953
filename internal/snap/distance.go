/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "snapline/internal/geom"

// buildDistances fills dist[i] with the signed delta (moving - candidate) of
// the closest compatible moving line for cands[i], or NoMatch. It returns the
// overall smallest delta. Ties in magnitude go to the candidate with the
// higher priority; Always lines never raise the priority bar, so they win a
// tie only by being found first.
func buildDistances(cands []candidate, moving []SnapLine, dist []int, drag geom.Rect) int {
	smallest := NoMatch
	highest := Priority(0)
	for i := range cands {
		c := &cands[i]
		if c.line.isMarginOrPadding() && !overlapsAcross(c, drag) {
			dist[i] = NoMatch
			continue
		}
		delta := NoMatch
		for _, m := range moving {
			if !ShouldSnap(c.line, m) {
				continue
			}
			d := m.Offset - c.line.Offset
			if geom.Abs(d) < geom.Abs(delta) {
				delta = d
			}
		}
		dist[i] = delta
		pri := c.line.Priority
		if geom.Abs(delta) < geom.Abs(smallest) || (geom.Abs(delta) == geom.Abs(smallest) && pri > highest) {
			smallest = delta
			if pri != PriorityAlways {
				highest = pri
			}
		}
	}
	return smallest
}

// overlapsAcross reports whether a margin or padding candidate's owner and
// the drag rect overlap along the axis the line runs on. Touching counts.
func overlapsAcross(c *candidate, drag geom.Rect) bool {
	b := c.owner
	if c.line.IsVertical() {
		if b.Y < drag.Y {
			return b.Bottom() >= drag.Y
		}
		return drag.Bottom() >= b.Y
	}
	if b.X < drag.X {
		return b.Right() >= drag.X
	}
	return drag.Right() >= b.X
}

// buildAheadDistances is the keyboard variant of buildDistances: only moving
// lines that would travel strictly forward along dir to reach the candidate
// are considered.
func buildAheadDistances(cands []candidate, moving []SnapLine, dist []int, drag geom.Rect, dir int) {
	for i := range cands {
		c := &cands[i]
		if c.line.isMarginOrPadding() && !overlapsAcross(c, drag) {
			dist[i] = NoMatch
			continue
		}
		delta := NoMatch
		for _, m := range moving {
			if !ShouldSnap(c.line, m) {
				continue
			}
			d := m.Offset - c.line.Offset
			// Moving by -d must go the way of dir.
			if d == 0 || geom.Sign(-d) != geom.Sign(dir) {
				continue
			}
			if geom.Abs(d) < geom.Abs(delta) {
				delta = d
			}
		}
		dist[i] = delta
	}
}
