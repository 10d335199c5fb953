/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "snapline/internal/geom"

// OffsetToNearestSnap returns the offset that moves the shape, from its
// current bounds, onto the nearest compatible line strictly ahead of it in
// direction dir. Only the sign of each component of dir matters. An axis with
// no line ahead, or a zero component, yields zero. There is no distance limit.
func (p *Pools) OffsetToNearestSnap(dir geom.Pt) geom.Pt {
	var off geom.Pt
	if dir.X != 0 {
		buildAheadDistances(p.vert, p.mvert, p.vdist, p.at, dir.X)
		off.X = nearest(p.vdist)
	}
	if dir.Y != 0 {
		buildAheadDistances(p.horz, p.mhorz, p.hdist, p.at, dir.Y)
		off.Y = nearest(p.hdist)
	}
	return off
}

func nearest(dist []int) int {
	best := NoMatch
	for _, d := range dist {
		if d != NoMatch && geom.Abs(d) < geom.Abs(best) {
			best = d
		}
	}
	if best == NoMatch {
		return 0
	}
	return -best
}

// OffsetToNearestSnap collects the lines around id on host and returns the
// one-shot keyboard offset in direction dir.
func OffsetToNearestSnap(host Host, id ShapeID, dir geom.Pt, opts Options) (geom.Pt, error) {
	p, err := Collect(host, id, opts.normalized())
	if err != nil {
		return geom.Pt{}, err
	}
	return p.OffsetToNearestSnap(dir), nil
}
