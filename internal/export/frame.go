/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a drag frame (the shapes of a scene, the dragged
// rectangle and the snap lines on show) to SVG, PNG and PDF.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"snapline/internal/config"
	"snapline/internal/geom"
	"snapline/internal/scene"
	"snapline/internal/snap"
)

var ErrEmptyFrame = errors.New("export: frame has no area")

// Shape is one outlined shape of a frame.
type Shape struct {
	ID   string
	Rect geom.Rect
}

// Frame is everything one exported picture shows.
type Frame struct {
	Title string
	// View is the scene area mapped onto the output.
	View   geom.Rect
	Shapes []Shape
	// Drag is the dragged rectangle; an empty rect hides it.
	Drag  geom.Rect
	Lines []snap.RenderedLine
}

// FrameOf builds a frame from the visible shapes of sc. The shape being
// dragged is left out and drawn as drag instead.
func FrameOf(sc *scene.Scene, dragged string, drag geom.Rect, lines []snap.RenderedLine) Frame {
	f := Frame{Title: sc.Name(), Drag: drag, Lines: append([]snap.RenderedLine(nil), lines...)}
	var all geom.Rect
	grow := func(r geom.Rect) {
		if r.IsEmpty() {
			return
		}
		if all.IsEmpty() {
			all = r
			return
		}
		all = all.Union(r)
	}
	for _, id := range sc.Candidates() {
		info, _ := sc.Shape(id)
		if !info.Visible || string(id) == dragged {
			continue
		}
		f.Shapes = append(f.Shapes, Shape{ID: string(id), Rect: info.Bounds})
		grow(info.Bounds)
	}
	grow(drag)
	f.View = sc.Clip()
	if f.View.IsEmpty() {
		f.View = all
	}
	return f
}

// Style holds resolved output colors.
type Style struct {
	Lines      [4]color.RGBA
	Shape      color.RGBA
	Drag       color.RGBA
	Background color.RGBA
	// Scale multiplies the PNG pixel size.
	Scale  int
	Labels bool
}

// StyleFrom parses the colors of rc.
func StyleFrom(rc config.RenderConfig) (Style, error) {
	st := Style{Scale: rc.Scale, Labels: rc.Labels}
	if st.Scale < 1 {
		st.Scale = 1
	}
	fields := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"standard", rc.Standard, &st.Lines[snap.LineStandard]},
		{"margin", rc.Margin, &st.Lines[snap.LineMargin]},
		{"padding", rc.Padding, &st.Lines[snap.LinePadding]},
		{"baseline", rc.Baseline, &st.Lines[snap.LineBaseline]},
		{"shape", rc.Shape, &st.Shape},
		{"drag", rc.Drag, &st.Drag},
		{"background", rc.Background, &st.Background},
	}
	for _, f := range fields {
		c, err := ParseHex(f.hex)
		if err != nil {
			return Style{}, fmt.Errorf("render.%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return st, nil
}

// DefaultStyle is the style of the built-in render configuration.
func DefaultStyle() Style {
	st, err := StyleFrom(config.Defaults().Render)
	if err != nil {
		panic(err)
	}
	return st
}

// Line returns the pen color for t.
func (s Style) Line(t snap.LineType) color.RGBA {
	if int(t) < len(s.Lines) {
		return s.Lines[t]
	}
	return s.Lines[snap.LineStandard]
}

// ParseHex reads a #rrggbb color.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return c, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
