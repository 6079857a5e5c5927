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

package gaussplume

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/spatialmodel/gaussplume/science/dispersion"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FieldConfig specifies a horizontal grid of receptors.
type FieldConfig struct {
	// XMin and XMax are the downwind extent [m].
	XMin, XMax float64
	// YMin and YMax are the crosswind extent [m].
	YMin, YMax float64
	// Nx and Ny are the number of receptors in each direction.
	Nx, Ny int
	// Height is the receptor height above ground [m].
	Height float64
}

// DefaultFieldConfig returns an 80×80 grid extending 10 km downwind
// and 2 km to either side of the plume centerline at ground level.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		XMin: 1, XMax: 10000,
		YMin: -2000, YMax: 2000,
		Nx: 80, Ny: 80,
	}
}

// MaxFieldCells is the largest number of receptors allowed in a field.
const MaxFieldCells = 1000000

// Validate checks that c describes a usable grid.
func (c FieldConfig) Validate() error {
	if c.Nx < 2 || c.Ny < 2 {
		return fmt.Errorf("gaussplume: field resolution must be at least 2×2 but is %d×%d", c.Nx, c.Ny)
	}
	if c.Nx > MaxFieldCells/c.Ny {
		return fmt.Errorf("gaussplume: field resolution %d×%d exceeds %d receptors", c.Nx, c.Ny, MaxFieldCells)
	}
	if !(c.XMax > c.XMin) || !(c.YMax > c.YMin) || !finite(c.XMin, c.XMax, c.YMin, c.YMax) {
		return fmt.Errorf("gaussplume: invalid field extent x=[%g, %g], y=[%g, %g]",
			c.XMin, c.XMax, c.YMin, c.YMax)
	}
	if !(c.Height >= 0) || math.IsInf(c.Height, 1) {
		return fmt.Errorf("%w: field height %g m", ErrInvalidReceptor, c.Height)
	}
	return nil
}

func finite(v ...float64) bool {
	for _, x := range v {
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return false
		}
	}
	return true
}

// Field holds concentrations [μg/m³] on a grid of receptors.
// It implements the gonum.org/v1/plot/plotter.GridXYZ interface.
type Field struct {
	// Xs and Ys are the receptor coordinates [m].
	Xs, Ys []float64
	Height float64

	// C holds concentrations, with rows corresponding to Ys and
	// columns to Xs.
	C *mat.Dense

	// Gaps is the number of receptors assigned zero concentration
	// because their downwind distance falls between two brackets of
	// the class A rural σz table.
	Gaps int
}

// Field calculates concentrations at every receptor in the grid specified
// by cfg. Receptors that are not downwind of the source, and class A rural
// receptors whose downwind distance falls in a σz table gap, are assigned
// zero concentration.
func (s Scenario) Field(cfg FieldConfig) (*Field, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Field{
		Xs:     span(cfg.Nx, cfg.XMin, cfg.XMax),
		Ys:     span(cfg.Ny, cfg.YMin, cfg.YMax),
		Height: cfg.Height,
		C:      mat.NewDense(cfg.Ny, cfg.Nx, nil),
	}

	n := cfg.Nx * cfg.Ny
	nprocs := runtime.GOMAXPROCS(0)
	errs := make([]error, nprocs)
	gaps := make([]int, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < n; ii += nprocs {
				i, j := ii/cfg.Nx, ii%cfg.Nx
				r := Receptor{X: f.Xs[j], Y: f.Ys[i], Z: cfg.Height}
				if !(r.X > 0) {
					continue
				}
				res, err := s.evaluate(r)
				if errors.Is(err, dispersion.ErrTableGap) {
					gaps[pp]++
					continue
				} else if err != nil {
					errs[pp] = err
					return
				}
				f.C.Set(i, j, res.Concentration)
			}
		}(pp)
	}
	wg.Wait()
	for pp, err := range errs {
		if err != nil {
			return nil, err
		}
		f.Gaps += gaps[pp]
	}
	return f, nil
}

// span returns n evenly spaced values from l to u, ending exactly at u.
func span(n int, l, u float64) []float64 {
	v := floats.Span(make([]float64, n), l, u)
	v[n-1] = u
	return v
}

// Dims returns the number of columns (x) and rows (y) in the field.
func (f *Field) Dims() (c, r int) { return len(f.Xs), len(f.Ys) }

// Z returns the concentration at column c and row r.
func (f *Field) Z(c, r int) float64 { return f.C.At(r, c) }

// X returns the downwind coordinate of column c.
func (f *Field) X(c int) float64 { return f.Xs[c] }

// Y returns the crosswind coordinate of row r.
func (f *Field) Y(r int) float64 { return f.Ys[r] }

var errEmptyField = errors.New("gaussplume: empty field")

// Max returns the maximum concentration in the field and its location.
func (f *Field) Max() (c float64, at Receptor, err error) {
	data := f.C.RawMatrix().Data
	if len(data) == 0 {
		return 0, at, errEmptyField
	}
	i := floats.MaxIdx(data)
	nx := len(f.Xs)
	return data[i], Receptor{X: f.Xs[i%nx], Y: f.Ys[i/nx], Z: f.Height}, nil
}
