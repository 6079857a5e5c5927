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

	"github.com/spatialmodel/gaussplume/science/stability"
)

// windExponents are the wind profile power law exponents p.
var windExponents = map[stability.Area]map[stability.Class]float64{
	stability.Rural: {
		stability.A: 0.07, stability.B: 0.07, stability.C: 0.10,
		stability.D: 0.15, stability.E: 0.35, stability.F: 0.55,
	},
	stability.Urban: {
		stability.A: 0.15, stability.B: 0.15, stability.C: 0.20,
		stability.D: 0.25, stability.E: 0.30, stability.F: 0.30,
	},
}

// WindExponent returns the power law exponent for the wind speed profile.
func WindExponent(area stability.Area, class stability.Class) (float64, error) {
	p, ok := windExponents[area][class]
	if !ok {
		return 0, fmt.Errorf("%w: class %v, area %v", ErrUnclassified, class, area)
	}
	return p, nil
}

// WindSpeedAtHeight scales wind speed uRef [m/s] measured at height zRef [m]
// to height h [m] using the power law profile. The result is never
// less than Epsilon.
func WindSpeedAtHeight(uRef, zRef, h float64, area stability.Area, class stability.Class) (float64, error) {
	p, err := WindExponent(area, class)
	if err != nil {
		return 0, err
	}
	u := uRef * math.Pow(h/zRef, p)
	if u == 0 {
		u = Epsilon
	}
	return u, nil
}
