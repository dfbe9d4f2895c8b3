// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package frames

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSkyNominalRoundTrip(t *testing.T) {
	centerAlt, centerAz := math.Pi/2-0.01, 0.0
	cases := []struct{ alt, az float64 }{
		{math.Pi/2 - 0.02, 0.1},
		{math.Pi/2 - 0.005, -0.05},
		{centerAlt, centerAz},
	}
	for _, c := range cases {
		xi, eta := SkyToNominal(c.alt, c.az, centerAlt, centerAz)
		alt2, az2 := NominalToSky(xi, eta, centerAlt, centerAz)
		require.InDelta(t, c.alt, alt2, 1e-6)
		require.InDelta(t, c.az, az2, 1e-6)
	}
}

func TestAngularSeparationZeroAtSamePoint(t *testing.T) {
	require.InDelta(t, 0, AngularSeparation(1.0, 0.5, 1.0, 0.5), 1e-12)
}

func TestAngularSeparationClampsNumericalOvershoot(t *testing.T) {
	require.NotPanics(t, func() {
		AngularSeparation(math.Pi/2, 0, math.Pi/2, 0)
	})
}

func TestCameraToNominalIdentityAtBoresight(t *testing.T) {
	xi, eta, psi := CameraToNominal(0, 0, 0.3, 28.0, math.Pi/2-0.01, 0, math.Pi/2-0.01, 0)
	require.InDelta(t, 0, xi, 1e-9)
	require.InDelta(t, 0, eta, 1e-9)
	require.InDelta(t, 0.3, psi, 1e-6)
}
