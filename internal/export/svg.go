/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
)

// SVG writes f as a standalone SVG document in scene units.
func SVG(w io.Writer, f Frame, st Style) error {
	if f.View.IsEmpty() {
		return ErrEmptyFrame
	}
	v := f.View

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"%d %d %d %d\">\n", v.W, v.H, v.X, v.Y, v.W, v.H)
	if f.Title != "" {
		wf("  <title>%s</title>\n", escText(f.Title))
	}
	wf("  <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", v.X, v.Y, v.W, v.H, hex(st.Background))

	wf("  <g id=\"shapes\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\">\n", hex(st.Shape))
	for _, s := range f.Shapes {
		r := s.Rect
		wf("    <rect id=\"%s\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\"/>\n", escAttr(s.ID), r.X, r.Y, r.W, r.H)
	}
	wf("  </g>\n")
	if st.Labels && len(f.Shapes) > 0 {
		wf("  <g id=\"labels\" font-family=\"monospace\" font-size=\"10\" fill=\"%s\">\n", hex(st.Shape))
		for _, s := range f.Shapes {
			wf("    <text x=\"%d\" y=\"%d\">%s</text>\n", s.Rect.X+2, s.Rect.Y+11, escText(s.ID))
		}
		wf("  </g>\n")
	}
	if !f.Drag.IsEmpty() {
		d := f.Drag
		wf("  <rect id=\"drag\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"%s\" stroke-dasharray=\"4 2\"/>\n", d.X, d.Y, d.W, d.H, hex(st.Drag))
	}
	if len(f.Lines) > 0 {
		wf("  <g id=\"snaplines\" stroke-width=\"1\">\n")
		for _, l := range f.Lines {
			wf("    <line class=\"%s\" x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\" stroke=\"%s\"/>\n", l.Type, l.A.X, l.A.Y, l.B.X, l.B.Y, hex(st.Line(l.Type)))
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func escAttr(s string) string {
	// naive escaping sufficient for ids
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
