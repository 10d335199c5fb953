/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"math/rand/v2"
	"testing"

	"snapline/internal/geom"
)

func cands(lines ...SnapLine) []candidate {
	out := make([]candidate, len(lines))
	for i, l := range lines {
		out[i] = candidate{line: l, owner: geom.R(-10000, -10000, 20000, 20000)}
	}
	return out
}

func TestBuildDistances_NearestMatchProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	types := []SnapLineType{Left, Right, Vertical}
	filters := []string{"", "", FilterMarginLeft, FilterMarginRight, "grid"}
	randLine := func() SnapLine {
		return NewSnapLine(types[r.IntN(len(types))], r.IntN(400)-200, filters[r.IntN(len(filters))], Priority(1+r.IntN(4)))
	}
	drag := geom.R(-500, -500, 1000, 1000)

	for round := 0; round < 200; round++ {
		var cl, ml []SnapLine
		for i := 0; i < 1+r.IntN(12); i++ {
			cl = append(cl, randLine())
		}
		for i := 0; i < r.IntN(6); i++ {
			ml = append(ml, randLine())
		}
		cs := cands(cl...)
		dist := make([]int, len(cs))
		smallest := buildDistances(cs, ml, dist, drag)

		wantSmallest := NoMatch
		for i, c := range cl {
			want := NoMatch
			for _, m := range ml {
				if ShouldSnap(c, m) && geom.Abs(m.Offset-c.Offset) < geom.Abs(want) {
					want = m.Offset - c.Offset
				}
			}
			if geom.Abs(dist[i]) != geom.Abs(want) {
				t.Fatalf("round %d cand %d: |dist| = %d, want %d", round, i, geom.Abs(dist[i]), geom.Abs(want))
			}
			if want != NoMatch {
				// the recorded delta must come from a compatible moving line
				found := false
				for _, m := range ml {
					if ShouldSnap(c, m) && m.Offset-c.Offset == dist[i] {
						found = true
					}
				}
				if !found {
					t.Fatalf("round %d cand %d: delta %d has no compatible source", round, i, dist[i])
				}
			}
			if geom.Abs(want) < geom.Abs(wantSmallest) {
				wantSmallest = want
			}
		}
		if geom.Abs(smallest) != geom.Abs(wantSmallest) {
			t.Fatalf("round %d: |smallest| = %d, want %d", round, geom.Abs(smallest), geom.Abs(wantSmallest))
		}
	}
}

func TestBuildDistances_TieBreakByPriority(t *testing.T) {
	moving := []SnapLine{vline(100, PriorityLow)}
	cs := cands(vline(95, PriorityLow), vline(105, PriorityHigh))
	dist := make([]int, 2)
	if got := buildDistances(cs, moving, dist, geom.R(0, 0, 10, 10)); got != -5 {
		t.Fatalf("higher priority should win the tie, got %d", got)
	}
	if dist[0] != 5 || dist[1] != -5 {
		t.Fatalf("unexpected table: %v", dist)
	}

	// a later lower priority tie does not replace the winner
	cs = cands(vline(105, PriorityHigh), vline(95, PriorityLow))
	if got := buildDistances(cs, moving, dist, geom.R(0, 0, 10, 10)); got != -5 {
		t.Fatalf("first high priority match should stay, got %d", got)
	}
}

func TestBuildDistances_AlwaysDoesNotRaiseBar(t *testing.T) {
	moving := []SnapLine{vline(100, PriorityLow)}
	dist := make([]int, 2)

	// Always found first: it holds the best distance, but the bar stays
	// unset, so an equally distant medium line takes over.
	cs := cands(vline(105, PriorityAlways), vline(95, PriorityMedium))
	if got := buildDistances(cs, moving, dist, geom.R(0, 0, 10, 10)); got != 5 {
		t.Fatalf("medium line should win after Always, got %d", got)
	}

	// Always found after a high line: Always beats the bar on priority, yet
	// leaves the bar at high.
	cs = cands(vline(95, PriorityHigh), vline(105, PriorityAlways))
	if got := buildDistances(cs, moving, dist, geom.R(0, 0, 10, 10)); got != -5 {
		t.Fatalf("Always should take the tie, got %d", got)
	}

	// Always still wins on raw distance.
	cs = cands(vline(90, PriorityHigh), vline(103, PriorityAlways))
	if got := buildDistances(cs, moving, dist, geom.R(0, 0, 10, 10)); got != -3 {
		t.Fatalf("closest line must win, got %d", got)
	}
}

func TestBuildDistances_MarginNeedsOverlap(t *testing.T) {
	moving := []SnapLine{NewSnapLine(Vertical, 55, FilterMarginLeft, PriorityAlways)}
	c := candidate{line: NewSnapLine(Vertical, 53, FilterMarginRight, PriorityAlways), owner: geom.R(0, 0, 50, 40)}
	dist := make([]int, 1)

	if got := buildDistances([]candidate{c}, moving, dist, geom.R(58, 10, 30, 20)); got != 2 {
		t.Fatalf("overlapping margin should match, got %d", got)
	}
	// drag rect entirely below the owner
	if got := buildDistances([]candidate{c}, moving, dist, geom.R(58, 41, 30, 20)); got != NoMatch || dist[0] != NoMatch {
		t.Fatalf("margin without vertical overlap must not match, got %d / %v", got, dist)
	}
	// touching counts as overlap
	if got := buildDistances([]candidate{c}, moving, dist, geom.R(58, 40, 30, 20)); got != 2 {
		t.Fatalf("touching margin should match, got %d", got)
	}
}

func TestBuildDistances_EmptyPools(t *testing.T) {
	if got := buildDistances(nil, []SnapLine{vline(1, PriorityLow)}, nil, geom.Rect{}); got != NoMatch {
		t.Fatalf("no candidates should give NoMatch, got %d", got)
	}
	dist := make([]int, 1)
	if got := buildDistances(cands(vline(1, PriorityLow)), nil, dist, geom.Rect{}); got != NoMatch || dist[0] != NoMatch {
		t.Fatalf("no moving lines should give NoMatch, got %d / %v", got, dist)
	}
}
