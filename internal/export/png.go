/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"snapline/internal/geom"
)

// Raster renders f into an RGBA image, st.Scale pixels per scene unit.
func Raster(f Frame, st Style) (*image.RGBA, error) {
	if f.View.IsEmpty() {
		return nil, ErrEmptyFrame
	}
	k := st.Scale
	if k < 1 {
		k = 1
	}
	v := f.View
	img := image.NewRGBA(image.Rect(0, 0, v.W*k, v.H*k))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: st.Background}, image.Point{}, draw.Src)

	// px maps a scene rect onto the image, inclusive corners.
	px := func(r geom.Rect) (x0, y0, x1, y1 int) {
		x0, y0 = (r.X-v.X)*k, (r.Y-v.Y)*k
		return x0, y0, x0 + r.W*k - 1, y0 + r.H*k - 1
	}

	for _, s := range f.Shapes {
		x0, y0, x1, y1 := px(s.Rect)
		strokeRect(img, x0, y0, x1, y1, st.Shape)
	}
	if st.Labels {
		d := &font.Drawer{Dst: img, Src: image.NewUniform(st.Shape), Face: basicfont.Face7x13}
		for _, s := range f.Shapes {
			x0, y0, _, _ := px(s.Rect)
			d.Dot = fixed.P(x0+2, y0+11)
			d.DrawString(s.ID)
		}
	}
	if !f.Drag.IsEmpty() {
		x0, y0, x1, y1 := px(f.Drag)
		dashRect(img, x0, y0, x1, y1, st.Drag)
	}
	for _, l := range f.Lines {
		x0, y0, _, _ := px(geom.Rect{X: l.A.X, Y: l.A.Y, W: 1, H: 1})
		_, _, x1, y1 := px(geom.Rect{X: l.B.X, Y: l.B.Y, W: 1, H: 1})
		fillRect(img, x0, y0, x1, y1, st.Line(l.Type))
	}
	return img, nil
}

// PNG writes f as a PNG image.
func PNG(w io.Writer, f Frame, st Style) error {
	img, err := Raster(f, st)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

// dashRect is strokeRect with a 4 on, 2 off pattern.
func dashRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	on := func(i int) bool { return i%6 < 4 }
	for x := x0; x <= x1; x++ {
		if on(x - x0) {
			img.SetRGBA(x, y0, col)
			img.SetRGBA(x, y1, col)
		}
	}
	for y := y0; y <= y1; y++ {
		if on(y - y0) {
			img.SetRGBA(x0, y, col)
			img.SetRGBA(x1, y, col)
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
