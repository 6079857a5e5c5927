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

package dispersion

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/gaussplume/science/stability"
)

// ErrBeyondTable is returned when a downwind distance is past the last
// distance bracket available for a stability class.
var ErrBeyondTable = errors.New("dispersion: distance is beyond the coefficient table")

// ErrTableGap is returned when a downwind distance falls between two
// distance brackets of a table that has no open-ended bracket.
var ErrTableGap = errors.New("dispersion: distance falls between coefficient table brackets")

// pair is a Pasquill-Gifford coefficient pair.
type pair struct{ c, d float64 }

// ruralSigmaY holds the (c, d) coefficients for rural σy, indexed by class.
var ruralSigmaY = map[stability.Class]pair{
	stability.A: {24.1670, 2.5334},
	stability.B: {18.3330, 1.8096},
	stability.C: {12.5000, 1.0857},
	stability.D: {8.3330, 0.72382},
	stability.E: {6.2500, 0.54287},
	stability.F: {4.1667, 0.36191},
}

// bracket is a downwind distance bracket of the rural σz table.
// The first bracket of each class covers [0, upper); every later bracket
// covers [lower, upper]. Bounds are given to 0.01 km, so the table has
// gaps such as (0.30, 0.31) km.
type bracket struct {
	lower, upper float64 // km
	a, b         float64
}

var inf = math.Inf(1)

// ruralSigmaZ holds the (a, b) coefficients for rural σz, indexed by class
// and ordered by distance. A final bracket spanning [0, inf] catches every
// distance not matched by an earlier bracket, including the gaps.
var ruralSigmaZ = map[stability.Class][]bracket{
	stability.A: {
		{0, 0.10, 122.800, 0.94470},
		{0.10, 0.15, 158.080, 1.05420},
		{0.16, 0.20, 170.220, 1.09320},
		{0.21, 0.25, 179.520, 1.12620},
		{0.26, 0.30, 217.410, 1.26440},
		{0.31, 0.40, 258.890, 1.40940},
		{0.41, 0.50, 346.750, 1.72830},
		{0.51, 3.11, 453.850, 2.11660},
	},
	stability.B: {
		{0, 0.20, 90.673, 0.93198},
		{0.21, 0.40, 98.483, 0.98332},
		{0, inf, 109.300, 1.09710},
	},
	stability.C: {
		{0, inf, 61.141, 0.91465},
	},
	stability.D: {
		{0, 0.30, 34.459, 0.86974},
		{0.31, 1.00, 32.093, 0.81066},
		{1.01, 3.00, 32.093, 0.64403},
		{3.01, 10.00, 33.504, 0.60486},
		{10.01, 30.00, 36.650, 0.56589},
		{0, inf, 44.053, 0.51179},
	},
	stability.E: {
		{0, 0.10, 24.260, 0.83660},
		{0.10, 0.30, 23.331, 0.81956},
		{0.31, 1.00, 21.628, 0.75660},
		{1.01, 2.00, 21.628, 0.63077},
		{2.01, 4.00, 22.534, 0.57154},
		{4.01, 10.00, 24.703, 0.50527},
		{10.01, 20.00, 26.970, 0.46713},
		{20.01, 40.00, 35.420, 0.37615},
		{0, inf, 47.618, 0.29592},
	},
	stability.F: {
		{0, 0.20, 15.209, 0.81558},
		{0.21, 0.70, 14.457, 0.78407},
		{0.71, 1.00, 13.953, 0.68465},
		{1.01, 2.00, 13.953, 0.63227},
		{2.01, 3.00, 14.823, 0.54503},
		{3.01, 7.00, 16.187, 0.46490},
		{7.01, 15.00, 17.836, 0.41507},
		{15.01, 30.00, 22.651, 0.32681},
		{30.01, 60.00, 27.074, 0.27436},
		{0, inf, 34.219, 0.21716},
	},
}

// RuralSigmaYCoefficients returns the (c, d) pair used in the rural
// σy formula for the given class.
func RuralSigmaYCoefficients(class stability.Class) (c, d float64, err error) {
	p, ok := ruralSigmaY[class]
	if !ok {
		return 0, 0, fmt.Errorf("%w: class %v", stability.ErrUnclassified, class)
	}
	return p.c, p.d, nil
}

// RuralSigmaZCoefficients returns the (a, b) pair used in the rural
// σz formula for the given class at downwind distance xkm (km).
// Values are taken verbatim from the first matching bracket. For class A,
// which has no open-ended bracket, a distance in a gap yields ErrTableGap
// and a distance past 3.11 km yields ErrBeyondTable.
func RuralSigmaZCoefficients(class stability.Class, xkm float64) (a, b float64, err error) {
	brackets, ok := ruralSigmaZ[class]
	if !ok {
		return 0, 0, fmt.Errorf("%w: class %v", stability.ErrUnclassified, class)
	}
	for i, br := range brackets {
		if (i == 0 && xkm < br.upper) || (i > 0 && xkm >= br.lower && xkm <= br.upper) {
			return br.a, br.b, nil
		}
	}
	if last := brackets[len(brackets)-1]; xkm > last.upper {
		return 0, 0, fmt.Errorf("%w: class %v at %g km", ErrBeyondTable, class, xkm)
	}
	return 0, 0, fmt.Errorf("%w: class %v at %g km", ErrTableGap, class, xkm)
}
