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
	"math"
	"testing"

	"github.com/spatialmodel/gaussplume/science/stability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1.e-9

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		class          stability.Class
		area           stability.Area
		x              float64
		sigmaY, sigmaZ float64
	}{
		{"rural D 1 km", stability.D, stability.Rural, 1000, 68.1267410799233, 32.093},
		{"rural F 2 km", stability.F, stability.Rural, 2000, 63.675318525304235, 21.62717675110296},
		{"urban B 500 m", stability.B, stability.Urban, 500, 146.0593486680443, 146.96938456699067},
		{"urban E 3 km", stability.E, stability.Urban, 3000, 222.48595461286988, 102.33634385069301},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			co, err := Calculate(test.class, test.area, test.x)
			require.NoError(t, err)
			assert.InEpsilon(t, test.sigmaY, co.SigmaY, tolerance)
			assert.InEpsilon(t, test.sigmaZ, co.SigmaZ, tolerance)
		})
	}
}

func TestClassAFixed(t *testing.T) {
	for _, x := range []float64{3111, 3500, 10000, 1e6} {
		co, err := Calculate(stability.A, stability.Rural, x)
		require.NoError(t, err)
		assert.Equal(t, MaxSigmaZ, co.SigmaZ, "x=%g", x)
		assert.True(t, co.ZFixed)
	}
	co, err := Calculate(stability.A, stability.Rural, 3000)
	require.NoError(t, err)
	assert.InEpsilon(t, 4642.877097459147, co.SigmaZ, tolerance)
	assert.False(t, co.ZFixed)
	assert.False(t, co.ZCapped)
}

func TestCap(t *testing.T) {
	co, err := Calculate(stability.B, stability.Rural, 40000)
	require.NoError(t, err)
	assert.Equal(t, MaxSigmaZ, co.SigmaZ)
	assert.True(t, co.ZCapped)

	for _, class := range []stability.Class{stability.A, stability.B, stability.C} {
		for x := 10.; x < 200000; x *= 1.7 {
			z, err := SigmaZ(class, stability.Rural, x)
			require.NoError(t, err)
			assert.True(t, z <= MaxSigmaZ && z > 0, "class %v x=%g σz=%g", class, x, z)
		}
	}
	// Stable classes are not capped.
	z, err := SigmaZ(stability.E, stability.Rural, 1e6)
	require.NoError(t, err)
	assert.True(t, z > 0)
}

func TestBracketEdges(t *testing.T) {
	tests := []struct {
		class stability.Class
		xkm   float64
		a, b  float64
	}{
		{stability.D, 0.299, 34.459, 0.86974},
		{stability.D, 0.30, 44.053, 0.51179},
		{stability.D, 0.305, 44.053, 0.51179},
		{stability.D, 0.31, 32.093, 0.81066},
		{stability.D, 1.00, 32.093, 0.81066},
		{stability.D, 1.005, 44.053, 0.51179},
		{stability.D, 1.01, 32.093, 0.64403},
		{stability.D, 100, 44.053, 0.51179},
		{stability.A, 0.10, 158.080, 1.05420},
		{stability.A, 0.16, 170.220, 1.09320},
		{stability.A, 3.11, 453.850, 2.11660},
		{stability.B, 0.20, 109.300, 1.09710},
		{stability.B, 0.205, 109.300, 1.09710},
		{stability.B, 0.21, 98.483, 0.98332},
		{stability.C, 50, 61.141, 0.91465},
		{stability.E, 0.0999, 24.260, 0.83660},
		{stability.E, 0.10, 23.331, 0.81956},
		{stability.E, 0.305, 47.618, 0.29592},
		{stability.F, 0.705, 34.219, 0.21716},
		{stability.F, 60, 27.074, 0.27436},
		{stability.F, 60.01, 34.219, 0.21716},
	}
	for _, test := range tests {
		a, b, err := RuralSigmaZCoefficients(test.class, test.xkm)
		require.NoError(t, err)
		assert.Equal(t, test.a, a, "%v %g km", test.class, test.xkm)
		assert.Equal(t, test.b, b, "%v %g km", test.class, test.xkm)
	}
	_, _, err := RuralSigmaZCoefficients(stability.A, 3.2)
	assert.True(t, errors.Is(err, ErrBeyondTable))
	for _, xkm := range []float64{0.155, 0.205, 0.305, 0.505} {
		_, _, err = RuralSigmaZCoefficients(stability.A, xkm)
		assert.True(t, errors.Is(err, ErrTableGap), "%g km: %v", xkm, err)
	}
	_, err = Calculate(stability.A, stability.Rural, 155)
	assert.True(t, errors.Is(err, ErrTableGap))
}

func TestInvalid(t *testing.T) {
	_, err := Calculate(stability.D, stability.Rural, 0)
	assert.True(t, errors.Is(err, ErrNonPositiveDistance))
	_, err = Calculate(stability.D, stability.Rural, math.NaN())
	assert.True(t, errors.Is(err, ErrNonPositiveDistance))
	_, err = Calculate(stability.Class(9), stability.Rural, 100)
	assert.True(t, errors.Is(err, stability.ErrUnclassified))
	_, err = Calculate(stability.D, stability.Area(0), 100)
	assert.True(t, errors.Is(err, stability.ErrUnclassified))
	_, _, err = RuralSigmaYCoefficients(stability.Class(0))
	assert.True(t, errors.Is(err, stability.ErrUnclassified))
}
