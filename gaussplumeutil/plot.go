/*
Copyright © 2024 the GaussPlume authors.
This file is part of GaussPlume.

GaussPlume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GaussPlume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GaussPlume.  If not, see <http://www.gnu.org/licenses/>.
*/

package gaussplumeutil

import (
	"fmt"
	"image/color"
	"io"

	"github.com/spatialmodel/gaussplume"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// paletteColors is the number of colors in the heat map palette.
const paletteColors = 255

// Plot creates a heat map of concentration field f, with receptor r marked
// if it falls within the field.
func Plot(f *gaussplume.Field, r gaussplume.Receptor) (*plot.Plot, error) {
	max, _, err := f.Max()
	if err != nil {
		return nil, err
	}
	if !(max > 0) {
		max = 1
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(max)

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = fmt.Sprintf("Pollutant Concentration Distribution at Z = %g m\n(maximum %.4g μg/m³)", f.Height, max)
	p.X.Label.Text = "Downwind Distance (m)"
	p.Y.Label.Text = "Crosswind Distance (m)"

	h := plotter.NewHeatMap(f, cm.Palette(paletteColors))
	h.Min, h.Max = 0, max
	p.Add(h)

	nx, ny := f.Dims()
	if r.X >= f.X(0) && r.X <= f.X(nx-1) && r.Y >= f.Y(0) && r.Y <= f.Y(ny-1) {
		s, err := plotter.NewScatter(plotter.XYs{{X: r.X, Y: r.Y}})
		if err != nil {
			return nil, err
		}
		s.Color = color.White
		s.Radius = 5 * vg.Millimeter
		s.Shape = draw.PlusGlyph{}
		p.Add(s)
		p.Legend.Add("Receptor", s)
	}
	p.X.Min, p.X.Max = f.X(0), f.X(nx-1)
	p.Y.Min, p.Y.Max = f.Y(0), f.Y(ny-1)
	return p, nil
}

// WritePNG writes a heat map of f with receptor r marked to w.
func WritePNG(w io.Writer, f *gaussplume.Field, r gaussplume.Receptor) error {
	p, err := Plot(f, r)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(10*vg.Inch, 7*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
