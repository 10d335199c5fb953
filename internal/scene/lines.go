/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "snapline/internal/snap"

// deriveLines returns the snap lines of sh in shape-local coordinates: the
// four edges, margin lines, padding lines for containers, the text baseline
// and finally the custom lines.
func deriveLines(sh ShapeSpec) []snap.SnapLine {
	w, h := sh.Bounds.W, sh.Bounds.H
	out := []snap.SnapLine{
		snap.NewSnapLine(snap.Left, 0, "", snap.PriorityLow),
		snap.NewSnapLine(snap.Right, w, "", snap.PriorityLow),
		snap.NewSnapLine(snap.Top, 0, "", snap.PriorityLow),
		snap.NewSnapLine(snap.Bottom, h, "", snap.PriorityLow),
	}
	if m := sh.Margin; m != nil {
		out = append(out,
			snap.NewSnapLine(snap.Vertical, -m.Left, snap.FilterMarginLeft, snap.PriorityAlways),
			snap.NewSnapLine(snap.Vertical, w+m.Right, snap.FilterMarginRight, snap.PriorityAlways),
			snap.NewSnapLine(snap.Horizontal, -m.Top, snap.FilterMarginTop, snap.PriorityAlways),
			snap.NewSnapLine(snap.Horizontal, h+m.Bottom, snap.FilterMarginBottom, snap.PriorityAlways),
		)
	}
	if sh.Container {
		var ci, p Insets
		if sh.ClientInset != nil {
			ci = *sh.ClientInset
		}
		if sh.Padding != nil {
			p = *sh.Padding
		}
		out = append(out,
			snap.NewSnapLine(snap.Vertical, ci.Left+p.Left, snap.FilterPaddingLeft, snap.PriorityAlways),
			snap.NewSnapLine(snap.Vertical, w-ci.Right-p.Right, snap.FilterPaddingRight, snap.PriorityAlways),
			snap.NewSnapLine(snap.Horizontal, ci.Top+p.Top, snap.FilterPaddingTop, snap.PriorityAlways),
			snap.NewSnapLine(snap.Horizontal, h-ci.Bottom-p.Bottom, snap.FilterPaddingBottom, snap.PriorityAlways),
		)
	}
	if sh.Baseline != nil {
		out = append(out, snap.NewSnapLine(snap.Baseline, *sh.Baseline, "", snap.PriorityMedium))
	}
	for _, l := range sh.Lines {
		// Check already rejected unknown names.
		t, _ := snap.ParseSnapLineType(l.Type)
		p, _ := snap.ParsePriority(l.Priority)
		out = append(out, snap.NewSnapLine(t, l.Offset, l.Filter, p))
	}
	return out
}
