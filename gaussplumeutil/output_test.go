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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/gaussplume"
	"github.com/spatialmodel/gaussplume/science/stability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goldenScenario() gaussplume.Scenario {
	return gaussplume.Scenario{
		EmissionRate:       10,
		WindSpeed:          4,
		ReferenceHeight:    10,
		Class:              stability.D,
		Area:               stability.Rural,
		MixingHeight:       1000,
		StackDiameter:      1,
		StackHeight:        50,
		StackTemperature:   400,
		AmbientTemperature: 293,
		ExitVelocity:       10,
	}
}

func testField(t *testing.T) (*gaussplume.Field, Metadata) {
	s := goldenScenario()
	fc := gaussplume.DefaultFieldConfig()
	fc.Nx, fc.Ny = 6, 5
	f, err := s.Field(fc)
	require.NoError(t, err)
	return f, Metadata{Version: gaussplume.Version, Scenario: s, Field: fc, Receptor: gaussplume.Receptor{X: 1000}}
}

func TestEdges(t *testing.T) {
	assert.Equal(t, []float64{-1, 1, 3, 5}, edges([]float64{0, 2, 4}))
}

func TestRecords(t *testing.T) {
	f, _ := testField(t)
	recs := Records(f)
	require.Len(t, recs, 30)
	assert.Equal(t, Record{X: 1, Y: -2000, Z: 0, Concentration: f.Z(0, 0)}, recs[0])
	last := recs[len(recs)-1]
	assert.Equal(t, 10000., last.X)
	assert.Equal(t, 2000., last.Y)
	assert.Equal(t, f.Z(5, 4), last.Concentration)
}

func TestWriteFieldUnsupported(t *testing.T) {
	f, meta := testField(t)
	err := WriteField(filepath.Join(os.TempDir(), "field.txt"), f, meta)
	assert.Error(t, err)
}

func TestWriteShapefile(t *testing.T) {
	dir, err := ioutil.TempDir("", "gaussplume")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	f, meta := testField(t)
	filename := filepath.Join(dir, "field.shp")
	require.NoError(t, WriteField(filename, f, meta))

	r, err := goshp.Open(filename)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, goshp.POLYGON, r.GeometryType)
	assert.Len(t, r.Fields(), 4)
	box := r.BBox()
	assert.True(t, box.MinX < 1 && box.MaxX > 10000, "x extent %g to %g", box.MinX, box.MaxX)
	assert.True(t, box.MinY < -2000 && box.MaxY > 2000, "y extent %g to %g", box.MinY, box.MaxY)
	var n int
	for r.Next() {
		n++
	}
	assert.Equal(t, 30, n)
}

func TestWritePNG(t *testing.T) {
	f, meta := testField(t)
	b := new(bytes.Buffer)
	require.NoError(t, WritePNG(b, f, meta.Receptor))
	assert.True(t, bytes.HasPrefix(b.Bytes(), []byte("\x89PNG")))

	p, err := Plot(f, meta.Receptor)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Title.Text, "Pollutant Concentration Distribution at Z = 0 m"), p.Title.Text)
}
