// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package reconstruct

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctapipe-go/airshower/imaging"
)

func TestReconstructRequiresTwoTelescopes(t *testing.T) {
	r := &HillasStereo{}
	geom, _ := r.Reconstruct([]TelescopeInput{{TelID: 1, Hillas: imaging.Hillas{Length: 1, Intensity: 100}}}, Pointing{}, nil, nil)
	require.False(t, geom.IsValid)
}

func TestReconstructRejectsParallelAxes(t *testing.T) {
	r := &HillasStereo{}
	pointing := Pointing{Altitude: math.Pi / 2, Azimuth: 0}
	tels := []TelescopeInput{
		{TelID: 1, PositionX: -50, FocalLength: 28, Pointing: pointing,
			Hillas: imaging.Hillas{X: 0.05, Y: 0, Psi: 0, Length: 0.02, Width: 0.005, Intensity: 200}},
		{TelID: 2, PositionX: 50, FocalLength: 28, Pointing: pointing,
			Hillas: imaging.Hillas{X: -0.05, Y: 0, Psi: 0, Length: 0.02, Width: 0.005, Intensity: 200}},
	}
	geom, _ := r.Reconstruct(tels, pointing, nil, nil)
	require.False(t, geom.IsValid)
}

func TestIntersectDirectionsWeightedMean(t *testing.T) {
	// Two axes crossing exactly at (0.01, -0.02), perpendicular to each
	// other so sin^2(alpha) = 1 and the weighted mean is exact.
	nominals := []nominalTel{
		{tel: TelescopeInput{TelID: 1}, xi: 0.01, eta: 0, axis: [2]float64{0, 1}, intensity: 100},
		{tel: TelescopeInput{TelID: 2}, xi: 0, eta: -0.02, axis: [2]float64{1, 0}, intensity: 100},
	}
	xi, eta, _, _, ids, ok := intersectDirections(nominals)
	require.True(t, ok)
	require.InDelta(t, 0.01, xi, 1e-9)
	require.InDelta(t, -0.02, eta, 1e-9)
	require.ElementsMatch(t, []int{1, 2}, ids)
}

func TestIntersectCoreRecoversKnownPoint(t *testing.T) {
	// Two telescopes at (-50,0) and (50,30), each aimed (via ground
	// bearing) at a known core point off-axis; the weighted intersection should recover
	// that point.
	corePoint := [2]float64{3.0, 4.0}
	mk := func(id int, px, py float64) nominalTel {
		dx, dy := corePoint[0]-px, corePoint[1]-py
		bearing := math.Atan2(dy, dx)
		return nominalTel{
			tel:       TelescopeInput{TelID: id, PositionX: px, PositionY: py},
			axis:      [2]float64{math.Cos(bearing), math.Sin(bearing)},
			intensity: 100,
		}
	}
	nominals := []nominalTel{mk(1, -50, 0), mk(2, 50, 30)}
	x, y, errEst, ok := intersectCore(nominals, Pointing{Azimuth: 0})
	require.True(t, ok)
	require.InDelta(t, corePoint[0], x, 1e-6)
	require.InDelta(t, corePoint[1], y, 1e-6)
	require.GreaterOrEqual(t, errEst, 0.0)
}

func TestReconstructStereoSanity(t *testing.T) {
	// Telescope 1 points exactly at the array pointing (0,0): its camera
	// frame maps into the nominal frame unchanged, so its Hillas axis in
	// the nominal frame is horizontal (psi=0) and passes through
	// eta=-0.008 by construction (X=0.28m/28m focal length = xi 0.01,
	// Y=-0.224m -> eta -0.008).
	//
	// Telescope 2 points 0.02 rad away from the array in azimuth: its
	// centroid sits on the camera's y-axis (X=0), which CameraToNominal
	// maps to a vertical line at xi=tan(0.02) in the array's nominal
	// frame regardless of Y, so its axis (psi=pi/2, i.e. vertical in
	// camera space) comes out vertical in the nominal frame too. This
	// exercises the full NominalToSky/SkyToNominal composition (unlike a
	// telescope pointing identical to the array, which composes to the
	// identity) rather than only the trivial x/f, y/f case.
	//
	// The two nominal-frame lines are then one horizontal (from tel 1)
	// and one vertical (from tel 2), crossing exactly at
	// (tan(0.02), -0.008); ground bearings computed from those same axis
	// angles point telescope 1 due +x from (-50,0) and telescope 2 due
	// +y from (0,-50), both exactly through the origin, so the expected
	// core position is exactly (0,0).
	arrayPointing := Pointing{Altitude: 0, Azimuth: 0}
	focal := 28.0

	tel1 := TelescopeInput{
		TelID: 1, PositionX: -50, PositionY: 0, FocalLength: focal,
		Pointing: Pointing{Altitude: 0, Azimuth: 0},
		Hillas:   imaging.Hillas{X: 0.28, Y: -0.224, Psi: 0, Length: 0.05, Width: 0.01, Intensity: 300},
	}
	tel2 := TelescopeInput{
		TelID: 2, PositionX: 0, PositionY: -50, FocalLength: focal,
		Pointing: Pointing{Altitude: 0, Azimuth: 0.02},
		Hillas:   imaging.Hillas{X: 0, Y: 0.084, Psi: math.Pi / 2, Length: 0.05, Width: 0.01, Intensity: 300},
	}

	r := &HillasStereo{}
	geom, impacts := r.Reconstruct([]TelescopeInput{tel1, tel2}, arrayPointing, nil, nil)
	require.True(t, geom.IsValid)
	require.NotNil(t, impacts)
	require.ElementsMatch(t, []int{1, 2}, geom.Telescopes)

	require.InDelta(t, -0.007998, geom.Alt, 1e-3)
	require.InDelta(t, 0.020000, geom.Az, 1e-3)
	require.InDelta(t, 0.0, geom.CoreX, 0.5)
	require.InDelta(t, 0.0, geom.CoreY, 0.5)
}
