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

// Package gaussplume estimates steady-state pollutant concentrations downwind
// of an elevated point source using a Gaussian plume model with
// Pasquill-Gifford and Briggs dispersion coefficients, Briggs plume rise,
// stack-tip downwash, reflection from the ground and the top of the mixed
// layer, and first-order decay.
package gaussplume

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/gaussplume/science/plumerise/briggs"
	"github.com/spatialmodel/gaussplume/science/stability"
)

// Version gives the version number.
const Version = "1.0.0"

// Epsilon replaces wind speeds and dispersion coefficients that
// evaluate to zero.
const Epsilon = 1.e-6

var (
	// ErrInvalidReceptor is returned when a receptor is not downwind
	// of the source (x ≤ 0), is below ground (z < 0), or has a
	// non-finite coordinate.
	ErrInvalidReceptor = errors.New("gaussplume: invalid receptor")

	// ErrInvalidScenario is returned when a scenario parameter is out of range.
	ErrInvalidScenario = errors.New("gaussplume: invalid scenario")

	// ErrUnclassified is returned when a scenario's stability class or
	// area type is not recognized.
	ErrUnclassified = stability.ErrUnclassified
)

// Scenario holds the emissions, meteorology, and stack parameters for
// a single point source. A Scenario should be checked with Validate
// before use.
type Scenario struct {
	// EmissionRate is the pollutant emission rate Q [g/s].
	EmissionRate float64

	// WindSpeed is the wind speed [m/s] measured at ReferenceHeight [m].
	WindSpeed       float64
	ReferenceHeight float64

	Class stability.Class
	Area  stability.Area

	// MixingHeight is the boundary layer height Hm [m].
	MixingHeight float64

	StackDiameter    float64 // ds [m]
	StackHeight      float64 // hs [m]
	StackTemperature float64 // Ts [K]
	ExitVelocity     float64 // vs [m/s]

	// AmbientTemperature is Ta [K].
	AmbientTemperature float64

	// HalfLife is the pollutant half life [s]. Zero means the
	// pollutant does not decay.
	HalfLife float64
}

// Validate checks that all of the Scenario's parameters are within
// their valid ranges.
func (s Scenario) Validate() error {
	if !s.Class.Valid() {
		return fmt.Errorf("%w: stability class %v", ErrUnclassified, s.Class)
	}
	if !s.Area.Valid() {
		return fmt.Errorf("%w: area type %v", ErrUnclassified, s.Area)
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"EmissionRate", s.EmissionRate},
		{"WindSpeed", s.WindSpeed},
		{"ReferenceHeight", s.ReferenceHeight},
		{"MixingHeight", s.MixingHeight},
		{"StackDiameter", s.StackDiameter},
		{"StackHeight", s.StackHeight},
		{"StackTemperature", s.StackTemperature},
		{"ExitVelocity", s.ExitVelocity},
		{"AmbientTemperature", s.AmbientTemperature},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be a positive number but is %g", ErrInvalidScenario, p.name, p.v)
		}
	}
	if !(s.HalfLife >= 0) {
		return fmt.Errorf("%w: HalfLife must be ≥ 0 but is %g", ErrInvalidScenario, s.HalfLife)
	}
	return nil
}

// Stack returns the stack parameters of s.
func (s Scenario) Stack() briggs.Stack {
	return briggs.Stack{
		Height:      s.StackHeight,
		Diameter:    s.StackDiameter,
		Temperature: s.StackTemperature,
		Velocity:    s.ExitVelocity,
	}
}

// ExitVelocityFromFlow returns the stack exit velocity [m/s] for
// volumetric flow rate qs [m³/s] through a stack with inner diameter ds [m].
func ExitVelocityFromFlow(qs, ds float64) float64 {
	return 4 * qs / (math.Pi * ds * ds)
}

// Receptor is a location relative to the source: X is the downwind
// distance, Y the crosswind distance, and Z the height above ground,
// all in meters.
type Receptor struct {
	X, Y, Z float64
}

// Validate returns ErrInvalidReceptor unless r is downwind of the source
// and at or above ground, with finite coordinates.
func (r Receptor) Validate() error {
	switch {
	case !(r.X > 0) || math.IsInf(r.X, 0):
		return fmt.Errorf("%w: x=%g m", ErrInvalidReceptor, r.X)
	case math.IsNaN(r.Y) || math.IsInf(r.Y, 0):
		return fmt.Errorf("%w: y=%g m", ErrInvalidReceptor, r.Y)
	case !(r.Z >= 0) || math.IsInf(r.Z, 0):
		return fmt.Errorf("%w: z=%g m", ErrInvalidReceptor, r.Z)
	}
	return nil
}
