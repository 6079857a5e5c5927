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

// Package dispersion calculates the horizontal and vertical Gaussian plume
// dispersion coefficients σy and σz, using the Pasquill-Gifford curves for
// rural areas and the Briggs formulas for urban areas.
package dispersion

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/gaussplume/science/stability"
)

// ErrNonPositiveDistance is returned when a downwind distance is not > 0.
var ErrNonPositiveDistance = errors.New("dispersion: downwind distance must be > 0")

const (
	// MaxSigmaZ is the ceiling on rural σz for classes A, B and C (m).
	MaxSigmaZ = 5000.

	// classAFixedBeyond is the distance (km) past which rural class A
	// σz is fixed at MaxSigmaZ.
	classAFixedBeyond = 3.11
)

// Coefficients holds calculated dispersion coefficients along with
// the parameters that produced them.
type Coefficients struct {
	Class stability.Class
	Area  stability.Area

	// SigmaY and SigmaZ are the horizontal and vertical
	// dispersion coefficients [m].
	SigmaY, SigmaZ float64

	// C and D are the rural σy table coefficients.
	C, D float64

	// A and B are the rural σz table coefficients. They are zero when
	// ZFixed is true.
	A, B float64

	// Csy is the urban σy coefficient.
	Csy float64

	// ZFixed is true when rural class A σz was set to MaxSigmaZ because
	// the distance is beyond 3.11 km.
	ZFixed bool

	// ZCapped is true when rural σz was reduced to MaxSigmaZ.
	ZCapped bool
}

// Calculate returns the dispersion coefficients for the given stability
// class and area type at downwind distance x [m].
func Calculate(class stability.Class, area stability.Area, x float64) (Coefficients, error) {
	co := Coefficients{Class: class, Area: area}
	if !class.Valid() || !area.Valid() {
		return co, fmt.Errorf("%w: class %v, area %v", stability.ErrUnclassified, class, area)
	}
	if !(x > 0) {
		return co, fmt.Errorf("%w: x=%g", ErrNonPositiveDistance, x)
	}
	if area == stability.Urban {
		co.Csy = urbanCsy(class)
		co.SigmaY = co.Csy * x * math.Pow(1+0.0004*x, -0.5)
		co.SigmaZ = urbanSigmaZ(class, x)
		return co, nil
	}

	xkm := x / 1000
	var err error
	co.C, co.D, err = RuralSigmaYCoefficients(class)
	if err != nil {
		return co, err
	}
	θ := 0.017453293 * (co.C - co.D*math.Log(xkm))
	co.SigmaY = 465.11628 * xkm * math.Tan(θ)

	if class == stability.A && xkm > classAFixedBeyond {
		co.SigmaZ = MaxSigmaZ
		co.ZFixed = true
		return co, nil
	}
	co.A, co.B, err = RuralSigmaZCoefficients(class, xkm)
	if err != nil {
		return co, err
	}
	co.SigmaZ = co.A * math.Pow(xkm, co.B)
	if class <= stability.C && co.SigmaZ > MaxSigmaZ {
		co.SigmaZ = MaxSigmaZ
		co.ZCapped = true
	}
	return co, nil
}

// SigmaY returns the horizontal dispersion coefficient [m] at downwind
// distance x [m].
func SigmaY(class stability.Class, area stability.Area, x float64) (float64, error) {
	co, err := Calculate(class, area, x)
	return co.SigmaY, err
}

// SigmaZ returns the vertical dispersion coefficient [m] at downwind
// distance x [m].
func SigmaZ(class stability.Class, area stability.Area, x float64) (float64, error) {
	co, err := Calculate(class, area, x)
	return co.SigmaZ, err
}

func urbanCsy(class stability.Class) float64 {
	switch class {
	case stability.A, stability.B:
		return 0.32
	case stability.C:
		return 0.22
	case stability.D:
		return 0.16
	default:
		return 0.11
	}
}

func urbanSigmaZ(class stability.Class, x float64) float64 {
	switch class {
	case stability.A, stability.B:
		return 0.24 * x * math.Pow(1+0.001*x, 0.5)
	case stability.C:
		return 0.20 * x
	case stability.D:
		return 0.14 * x * math.Pow(1+0.0003*x, -0.5)
	default:
		return 0.08 * x * math.Pow(1+0.0015*x, -0.5)
	}
}
