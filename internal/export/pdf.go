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
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDF writes f as a single page PDF, one point per scene unit.
func PDF(w io.Writer, f Frame, st Style) error {
	if f.View.IsEmpty() {
		return ErrEmptyFrame
	}
	v := f.View
	size := gofpdf.SizeType{Wd: float64(v.W), Ht: float64(v.H)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle(f.Title, true)
	pdf.SetCreator("snapline", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	// Shift scene coordinates so the view starts at the page origin.
	ox, oy := float64(-v.X), float64(-v.Y)

	setFillColor(pdf, st.Background)
	pdf.Rect(0, 0, size.Wd, size.Ht, "F")

	setDrawColor(pdf, st.Shape)
	pdf.SetLineWidth(1)
	for _, s := range f.Shapes {
		r := s.Rect
		pdf.Rect(float64(r.X)+ox, float64(r.Y)+oy, float64(r.W), float64(r.H), "D")
	}
	if st.Labels {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(int(st.Shape.R), int(st.Shape.G), int(st.Shape.B))
		for _, s := range f.Shapes {
			pdf.Text(float64(s.Rect.X+2)+ox, float64(s.Rect.Y+10)+oy, s.ID)
		}
	}
	if !f.Drag.IsEmpty() {
		d := f.Drag
		setDrawColor(pdf, st.Drag)
		pdf.SetDashPattern([]float64{4, 2}, 0)
		pdf.Rect(float64(d.X)+ox, float64(d.Y)+oy, float64(d.W), float64(d.H), "D")
		pdf.SetDashPattern(nil, 0)
	}
	for _, l := range f.Lines {
		setDrawColor(pdf, st.Line(l.Type))
		pdf.Line(float64(l.A.X)+ox+0.5, float64(l.A.Y)+oy+0.5, float64(l.B.X)+ox+0.5, float64(l.B.Y)+oy+0.5)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
