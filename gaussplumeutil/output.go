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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/gocarina/gocsv"
	"github.com/spatialmodel/gaussplume"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/plot/vg"
)

// fieldWriters write a concentration field to a file, by file extension.
var fieldWriters = map[string]func(filename string, f *gaussplume.Field, r gaussplume.Receptor) error{
	".nc":   writeNCF,
	".shp":  writeShapefile,
	".png":  writePNG,
	".csv":  writeCSV,
	".xlsx": writeXLSX,
}

func outputTypes() []string {
	var t []string
	for ext := range fieldWriters {
		t = append(t, ext)
	}
	sort.Strings(t)
	return t
}

// Record holds the concentration at one receptor.
type Record struct {
	X             float64 `csv:"x"`
	Y             float64 `csv:"y"`
	Z             float64 `csv:"z"`
	Concentration float64 `csv:"concentration"`
}

// Records returns the field as a list of receptor concentrations,
// ordered by row and then column.
func Records(f *gaussplume.Field) []Record {
	nx, ny := f.Dims()
	recs := make([]Record, 0, nx*ny)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			recs = append(recs, Record{X: f.X(j), Y: f.Y(i), Z: f.Height, Concentration: f.Z(j, i)})
		}
	}
	return recs
}

// Metadata describes the inputs used to create an output file.
type Metadata struct {
	Version  string
	Scenario gaussplume.Scenario
	Field    gaussplume.FieldConfig
	Receptor gaussplume.Receptor
}

// WriteField writes concentration field f to filename, with the file type
// determined by the file extension. The receptor r is marked on image
// outputs. Scenario metadata is written to a TOML file alongside the output.
func WriteField(filename string, f *gaussplume.Field, meta Metadata) error {
	ext := strings.ToLower(filepath.Ext(filename))
	w, ok := fieldWriters[ext]
	if !ok {
		return fmt.Errorf("gaussplume: unsupported output file type %q", ext)
	}
	if err := w(filename, f, meta.Receptor); err != nil {
		return fmt.Errorf("gaussplume: writing output file: %v", err)
	}
	return writeMetadata(strings.TrimSuffix(filename, filepath.Ext(filename))+".toml", meta)
}

func writeMetadata(filename string, meta Metadata) error {
	w, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("gaussplume: writing metadata: %v", err)
	}
	if err := toml.NewEncoder(w).Encode(meta); err != nil {
		w.Close()
		return fmt.Errorf("gaussplume: writing metadata: %v", err)
	}
	return w.Close()
}

// ReadMetadata reads a metadata file written by WriteField.
func ReadMetadata(filename string) (Metadata, error) {
	var meta Metadata
	if _, err := toml.DecodeFile(filename, &meta); err != nil {
		return meta, fmt.Errorf("gaussplume: reading metadata: %v", err)
	}
	return meta, nil
}

func writeNCF(filename string, f *gaussplume.Field, _ gaussplume.Receptor) error {
	nx, ny := f.Dims()
	h := cdf.NewHeader([]string{"x", "y"}, []int{nx, ny})
	h.AddAttribute("", "comment", "Gaussian plume concentration field")
	h.AddAttribute("", "height", []float64{f.Height})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "description", "Downwind distance")
	h.AddAttribute("x", "units", "m")
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddAttribute("y", "description", "Crosswind distance")
	h.AddAttribute("y", "units", "m")
	h.AddVariable("concentration", []string{"y", "x"}, []float32{0})
	h.AddAttribute("concentration", "description", "Pollutant concentration")
	h.AddAttribute("concentration", "units", "ug m-3")
	h.Define()

	ff, err := os.Create(filename)
	if err != nil {
		return err
	}
	cf, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		ff.Close()
		return err
	}
	if _, err = cf.Writer("x", nil, nil).Write(f.Xs); err != nil {
		ff.Close()
		return err
	}
	if _, err = cf.Writer("y", nil, nil).Write(f.Ys); err != nil {
		ff.Close()
		return err
	}
	data32 := make([]float32, 0, nx*ny)
	for _, r := range Records(f) {
		data32 = append(data32, float32(r.Concentration))
	}
	if _, err = cf.Writer("concentration", nil, nil).Write(data32); err != nil {
		ff.Close()
		return err
	}
	return ff.Close()
}

// cellRecord is a shapefile record for one receptor.
type cellRecord struct {
	geom.Polygon
	X, Y, Z, C float64
}

// writeShapefile writes each receptor as a polygon that extends halfway
// to its neighbors.
func writeShapefile(filename string, f *gaussplume.Field, _ gaussplume.Receptor) error {
	for _, ext := range []string{".shp", ".dbf", ".shx"} {
		os.Remove(strings.TrimSuffix(filename, filepath.Ext(filename)) + ext)
	}
	e, err := shp.NewEncoder(filename, cellRecord{})
	if err != nil {
		return err
	}
	xb, yb := edges(f.Xs), edges(f.Ys)
	nx, ny := f.Dims()
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			rec := cellRecord{
				Polygon: geom.Polygon{{
					{X: xb[j], Y: yb[i]},
					{X: xb[j+1], Y: yb[i]},
					{X: xb[j+1], Y: yb[i+1]},
					{X: xb[j], Y: yb[i+1]},
					{X: xb[j], Y: yb[i]},
				}},
				X: f.X(j), Y: f.Y(i), Z: f.Height, C: f.Z(j, i),
			}
			if err := e.Encode(rec); err != nil {
				e.Close()
				return err
			}
		}
	}
	e.Close()
	return nil
}

// edges returns the cell edges for cell centers c.
func edges(c []float64) []float64 {
	e := make([]float64, len(c)+1)
	for i := 1; i < len(c); i++ {
		e[i] = (c[i-1] + c[i]) / 2
	}
	e[0] = c[0] - (e[1] - c[0])
	e[len(c)] = c[len(c)-1] + (c[len(c)-1] - e[len(c)-1])
	return e
}

func writeCSV(filename string, f *gaussplume.Field, _ gaussplume.Receptor) error {
	w, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(Records(f), w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writeXLSX(filename string, f *gaussplume.Field, _ gaussplume.Receptor) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Concentration")
	if err != nil {
		return err
	}
	// The first row holds downwind distances and the first column holds
	// crosswind distances.
	row := sheet.AddRow()
	row.AddCell().SetString("y \\ x (m)")
	for _, x := range f.Xs {
		row.AddCell().SetFloat(x)
	}
	nx, ny := f.Dims()
	for i := 0; i < ny; i++ {
		row = sheet.AddRow()
		row.AddCell().SetFloat(f.Y(i))
		for j := 0; j < nx; j++ {
			row.AddCell().SetFloat(f.Z(j, i))
		}
	}
	return file.Save(filename)
}

func writePNG(filename string, f *gaussplume.Field, r gaussplume.Receptor) error {
	p, err := Plot(f, r)
	if err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 7*vg.Inch, filename)
}
