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

// Package briggs calculates plume rise from an elevated point source
// using the Briggs equations, including stack-tip downwash and the
// gradual rise of the plume before it reaches its final height.
package briggs

import (
	"fmt"
	"math"

	"github.com/spatialmodel/gaussplume/science/stability"
)

// g is the acceleration due to gravity [m/s²].
const g = 9.8

// fluxThreshold is the buoyancy flux [m⁴/s³] that separates the two
// unstable-atmosphere plume rise regimes.
const fluxThreshold = 55.

// Stack holds the physical parameters of an emissions stack.
type Stack struct {
	Height      float64 // hs [m]
	Diameter    float64 // ds [m]
	Temperature float64 // Ts [K]
	Velocity    float64 // vs [m/s]
}

// Rise holds the results of a plume rise calculation. It is used
// to find the effective plume height at any downwind distance.
type Rise struct {
	Stack
	AmbientTemperature float64 // Ta [K]
	WindSpeed          float64 // Us, at stack height [m/s]
	Class              stability.Class

	// Fb is the buoyancy flux [m⁴/s³].
	Fb float64
	// ΔTc is the critical temperature difference [K].
	ΔTc float64
	// S is the stability parameter for stable conditions [s⁻²].
	S float64

	Stable  bool // class E or F
	Buoyant bool // buoyancy dominated rather than momentum dominated

	// Δh is the final plume rise [m].
	Δh float64
	// Xf is the downwind distance to final rise [m]. It is +Inf for
	// negatively buoyant plumes in unstable conditions.
	Xf float64

	// StackHeight is the downwash-corrected stack height h's [m].
	StackHeight float64
	// Downwash is true if the exit velocity was low enough to lower the
	// stack height.
	Downwash bool
}

// Calculate performs a plume rise calculation for the given stack
// with ambient temperature ta [K], wind speed at stack height us [m/s]
// and atmospheric stability class.
func Calculate(s Stack, ta, us float64, class stability.Class) (*Rise, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("%w: class %v", stability.ErrUnclassified, class)
	}
	if !(s.Diameter > 0) || !(s.Temperature > 0) || !(s.Velocity > 0) || !(s.Height >= 0) {
		return nil, fmt.Errorf("briggs: invalid stack parameters %+v", s)
	}
	if !(ta > 0) || !(us > 0) {
		return nil, fmt.Errorf("briggs: invalid ambient temperature (%g K) or wind speed (%g m/s)", ta, us)
	}

	r := &Rise{
		Stack:              s,
		AmbientTemperature: ta,
		WindSpeed:          us,
		Class:              class,
		Stable:             class.Stable(),
		S:                  class.StabilityParameter(),
	}

	ts, vs, ds := s.Temperature, s.Velocity, s.Diameter
	ΔT := ts - ta
	r.Fb = g * vs * ds * ds * (ΔT / (4 * ts))

	if r.Stable {
		r.ΔTc = 0.01958 * ts * vs * math.Sqrt(r.S)
	} else if r.Fb >= fluxThreshold {
		r.ΔTc = 0.00575 * ts * math.Pow(vs, 2./3) / math.Pow(ds, 1./3)
	} else {
		r.ΔTc = 0.0297 * ts * math.Pow(vs, 1./3) / math.Pow(ds, 2./3)
	}
	r.Buoyant = ΔT > r.ΔTc

	momentumRise := 3 * ds * vs / us
	switch {
	case r.Stable:
		if r.Buoyant {
			r.Δh = 2.6 * math.Cbrt(r.Fb/(us*r.S))
		} else {
			r.Δh = momentumRise
		}
		r.Xf = 2.075 * us / math.Sqrt(r.S)
	case r.Fb >= fluxThreshold:
		if r.Buoyant {
			r.Δh = 38.71 * math.Pow(r.Fb, 0.6) / us
		} else {
			r.Δh = momentumRise
		}
		r.Xf = 119 * math.Pow(r.Fb, 0.4)
	default:
		if r.Buoyant {
			r.Δh = 21.25 * math.Pow(r.Fb, 0.75) / us
		} else {
			r.Δh = momentumRise
		}
		if r.Fb < 0 {
			r.Xf = math.Inf(1)
		} else {
			r.Xf = 49 * math.Pow(r.Fb, 5./8)
		}
	}

	r.StackHeight = s.Height
	if vs < 1.5*us {
		r.Downwash = true
		r.StackHeight = math.Max(0, s.Height+2*ds*(vs/us-1.5))
	}
	return r, nil
}

// Fm returns the momentum flux [m⁴/s²].
func (r *Rise) Fm() float64 {
	vs, ds := r.Velocity, r.Diameter
	return vs * vs * ds * ds * (r.AmbientTemperature / (4 * r.Temperature))
}

// Height returns the effective plume height he [m] at downwind distance
// x [m], and whether the final rise has been reached at that distance.
func (r *Rise) Height(x float64) (he float64, final bool) {
	if x >= r.Xf {
		return r.StackHeight + r.Δh, true
	}
	us := r.WindSpeed
	if r.Buoyant {
		return r.StackHeight + 1.6*math.Cbrt(r.Fb*x*x/(us*us*us)), false
	}
	βj := 1./3 + us/r.Velocity
	fm := r.Fm()
	if r.Stable {
		return r.StackHeight + 1.6*math.Cbrt(fm*x*x/(βj*βj*us*us)), false
	}
	return r.StackHeight + math.Cbrt(3*fm*x/(βj*βj*us*us)), false
}

// Regime returns a short description of the plume rise regime.
func (r *Rise) Regime() string {
	a := "unstable"
	if r.Stable {
		a = "stable"
	}
	b := "momentum"
	if r.Buoyant {
		b = "buoyancy"
	}
	return a + "/" + b
}
