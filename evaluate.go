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
	"fmt"
	"math"

	"github.com/spatialmodel/gaussplume/science/dispersion"
	"github.com/spatialmodel/gaussplume/science/plumerise/briggs"
)

// K converts g/s emissions to μg/m³ concentrations.
const K = 1.e6

// reflections is the number of mixed-layer reflection orders included
// in the vertical term.
const reflections = 5

// Result holds the concentration at a receptor along with the intermediate
// values used to calculate it.
type Result struct {
	Receptor

	// WindExponent is the wind profile exponent p and Us is the wind
	// speed at stack height [m/s].
	WindExponent, Us float64

	Dispersion dispersion.Coefficients
	Rise       *briggs.Rise

	// He is the effective plume height [m] and FinalRise is whether
	// the plume reached its final height at the receptor.
	He        float64
	FinalRise bool

	// SigmaYe and SigmaZe are the dispersion coefficients [m] including
	// buoyancy-induced dispersion.
	SigmaYe, SigmaZe float64

	// V is the vertical term and D is the decay term.
	V, D float64

	// Concentration [μg/m³].
	Concentration float64

	// Degenerate is true when the concentration denominator was zero
	// and Concentration is +Inf.
	Degenerate bool

	// Invalid is true when the receptor location was rejected.
	Invalid bool
}

// Evaluate calculates the concentration at receptor r. If r is not
// downwind of the source, is below ground, or has a non-finite coordinate,
// the concentration is zero and ErrInvalidReceptor is returned.
func (s Scenario) Evaluate(r Receptor) (*Result, error) {
	if err := r.Validate(); err != nil {
		return &Result{Receptor: r, Invalid: true}, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.evaluate(r)
}

// evaluate calculates the concentration at r, assuming that s is valid
// and r is valid.
func (s Scenario) evaluate(r Receptor) (*Result, error) {
	res := &Result{Receptor: r}
	var err error
	res.WindExponent, err = WindExponent(s.Area, s.Class)
	if err != nil {
		return nil, err
	}
	res.Us, err = WindSpeedAtHeight(s.WindSpeed, s.ReferenceHeight, s.StackHeight, s.Area, s.Class)
	if err != nil {
		return nil, err
	}

	res.Dispersion, err = dispersion.Calculate(s.Class, s.Area, r.X)
	if err != nil {
		return nil, fmt.Errorf("gaussplume: %w", err)
	}

	res.Rise, err = briggs.Calculate(s.Stack(), s.AmbientTemperature, res.Us, s.Class)
	if err != nil {
		return nil, fmt.Errorf("gaussplume: %v", err)
	}
	res.He, res.FinalRise = res.Rise.Height(r.X)

	b := res.Rise.Δh / 3.5
	res.SigmaYe = math.Sqrt(res.Dispersion.SigmaY*res.Dispersion.SigmaY + b*b)
	res.SigmaZe = math.Sqrt(res.Dispersion.SigmaZ*res.Dispersion.SigmaZ + b*b)
	if res.SigmaZe == 0 {
		res.SigmaZe = Epsilon
	}
	if res.SigmaYe == 0 {
		res.SigmaYe = Epsilon
	}

	res.V = VerticalTerm(r.Z, res.He, s.MixingHeight, res.SigmaZe)
	res.D = DecayTerm(r.X, res.Us, s.HalfLife)

	lateral := gauss(r.Y, res.SigmaYe)
	denominator := 2 * math.Pi * res.Us * res.SigmaYe * res.SigmaZe
	if denominator == 0 {
		res.Degenerate = true
		res.Concentration = math.Inf(1)
		return res, nil
	}
	res.Concentration = s.EmissionRate * K * res.V * res.D / denominator * lateral
	return res, nil
}

// gauss returns exp(-½(d/σ)²).
func gauss(d, σ float64) float64 {
	v := d / σ
	return math.Exp(-0.5 * v * v)
}

// VerticalTerm returns the vertical term of the Gaussian plume equation at
// height z [m] for a plume at effective height he [m] with vertical
// dispersion σz [m], including reflection from the ground and multiple
// reflections from the top of a mixed layer with height hm [m].
func VerticalTerm(z, he, hm, σz float64) float64 {
	v := gauss(z-he, σz) + gauss(z+he, σz)
	for i := 1; i <= reflections; i++ {
		h := 2 * float64(i) * hm
		v += gauss(z-(h-he), σz) + gauss(z+(h-he), σz) +
			gauss(z-(h+he), σz) + gauss(z+(h+he), σz)
	}
	return v
}

// DecayTerm returns the fraction of pollutant remaining after travelling
// downwind distance x [m] at wind speed u [m/s] with the given half life [s].
// A half life of zero means no decay.
func DecayTerm(x, u, halfLife float64) float64 {
	if halfLife <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 / halfLife * x / u)
}
