/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "testing"

func TestShouldSnap(t *testing.T) {
	l := func(tp SnapLineType, f string) SnapLine { return NewSnapLine(tp, 0, f, PriorityLow) }
	cases := []struct {
		name string
		a, b SnapLine
		want bool
	}{
		{"same type no filter", l(Left, ""), l(Left, ""), true},
		{"different type", l(Left, ""), l(Right, ""), false},
		{"one filter missing", l(Vertical, FilterMarginLeft), l(Vertical, ""), false},
		{"margin left vs right", l(Vertical, FilterMarginLeft), l(Vertical, FilterMarginRight), true},
		{"margin right vs left", l(Vertical, FilterMarginRight), l(Vertical, FilterMarginLeft), true},
		{"margin left vs left", l(Vertical, FilterMarginLeft), l(Vertical, FilterMarginLeft), false},
		{"margin left vs padding left", l(Vertical, FilterMarginLeft), l(Vertical, FilterPaddingLeft), true},
		{"padding left vs margin left", l(Vertical, FilterPaddingLeft), l(Vertical, FilterMarginLeft), true},
		{"padding left vs padding left", l(Vertical, FilterPaddingLeft), l(Vertical, FilterPaddingLeft), false},
		{"margin top vs bottom", l(Horizontal, FilterMarginTop), l(Horizontal, FilterMarginBottom), true},
		{"margin bottom vs padding bottom", l(Horizontal, FilterMarginBottom), l(Horizontal, FilterPaddingBottom), true},
		{"padding top vs margin top", l(Horizontal, FilterPaddingTop), l(Horizontal, FilterMarginTop), true},
		{"custom same", l(Vertical, "grid"), l(Vertical, "grid"), true},
		{"custom different", l(Vertical, "grid"), l(Vertical, "guide"), false},
		{"unknown type", l(SnapLineType(42), ""), l(SnapLineType(42), ""), false},
		{"zero type", l(0, ""), l(0, ""), false},
	}
	for _, c := range cases {
		if got := ShouldSnap(c.a, c.b); got != c.want {
			t.Errorf("%s: ShouldSnap = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestAxisFromType(t *testing.T) {
	for _, tp := range []SnapLineType{Top, Bottom, Horizontal, Baseline} {
		if l := NewSnapLine(tp, 0, "", PriorityLow); !l.IsHorizontal() || l.IsVertical() {
			t.Fatalf("%s should be horizontal", tp)
		}
	}
	for _, tp := range []SnapLineType{Left, Right, Vertical} {
		if l := NewSnapLine(tp, 0, "", PriorityLow); !l.IsVertical() || l.IsHorizontal() {
			t.Fatalf("%s should be vertical", tp)
		}
	}
}

func TestParseNames(t *testing.T) {
	tp, err := ParseSnapLineType(" Baseline ")
	if err != nil || tp != Baseline {
		t.Fatalf("ParseSnapLineType = %v, %v", tp, err)
	}
	if _, err := ParseSnapLineType("diagonal"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	p, err := ParsePriority("")
	if err != nil || p != PriorityLow {
		t.Fatalf("empty priority should default to low, got %v %v", p, err)
	}
	p, err = ParsePriority("always")
	if err != nil || p != PriorityAlways {
		t.Fatalf("ParsePriority(always) = %v, %v", p, err)
	}
}
