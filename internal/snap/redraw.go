/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "snapline/internal/geom"

// interval is a closed pixel range.
type interval struct{ lo, hi int }

// Reconcile returns the regions to erase when the overlay goes from prev to
// cur. An old line that shares a collinear run with same-type lines of cur
// only loses the parts those lines do not cover; any other old line is erased
// whole. Regions are inflated by one pixel for anti-aliased pens.
func Reconcile(prev, cur []RenderedLine) []geom.Rect {
	out, _ := reconcileInto(nil, prev, cur, nil)
	return out
}

func reconcileInto(out []geom.Rect, prev, cur []RenderedLine, scratch []interval) ([]geom.Rect, []interval) {
	for _, old := range prev {
		lo, hi, _ := old.span()
		rest := append(scratch[:0], interval{lo, hi})
		for _, n := range cur {
			if !old.collinear(n) {
				continue
			}
			nlo, nhi, _ := n.span()
			rest = subtract(rest, interval{nlo, nhi})
			if len(rest) == 0 {
				break
			}
		}
		for _, piece := range rest {
			out = append(out, old.withSpan(piece.lo, piece.hi).Bounds().Inflate(1, 1))
		}
		scratch = rest
	}
	return out, scratch
}

// subtract removes cut from every interval in set, in place.
func subtract(set []interval, cut interval) []interval {
	n := len(set)
	for i := 0; i < n; i++ {
		iv := set[i]
		if cut.hi < iv.lo || cut.lo > iv.hi {
			set = append(set, iv)
			continue
		}
		if iv.lo < cut.lo {
			set = append(set, interval{iv.lo, cut.lo - 1})
		}
		if cut.hi < iv.hi {
			set = append(set, interval{cut.hi + 1, iv.hi})
		}
	}
	return append(set[:0], set[n:]...)
}

func containsLine(lines []RenderedLine, l RenderedLine) bool {
	for _, o := range lines {
		if o.A == l.A && o.B == l.B && o.Type == l.Type {
			return true
		}
	}
	return false
}

func touchesAny(r geom.Rect, regions []geom.Rect) bool {
	for _, g := range regions {
		if r.Intersects(g) {
			return true
		}
	}
	return false
}
