// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/imaging"
	"github.com/ctapipe-go/airshower/query"
	"github.com/ctapipe-go/airshower/reconstruct"
)

func twoTelescopeSubarray(t *testing.T) *camera.SubarrayDescription {
	t.Helper()
	sub := camera.NewSubarrayDescription("test-array", camera.Position{})
	geom, err := camera.NewGeometry("cam", 28, []float64{0}, []float64{0}, []float64{1}, []camera.PixelType{camera.PixelSquare})
	require.NoError(t, err)
	sub.AddTelescope(1, camera.TelescopeDescription{CameraDescription: geom,
		OpticsDescription: camera.OpticsDescription{EffectiveFocalLength: 28}}, camera.Position{X: -50})
	sub.AddTelescope(2, camera.TelescopeDescription{CameraDescription: geom,
		OpticsDescription: camera.OpticsDescription{EffectiveFocalLength: 28}}, camera.Position{X: 50})
	return sub
}

func TestShowerProcessorWritesGeometryUnderReconstructorName(t *testing.T) {
	sub := twoTelescopeSubarray(t)
	pointing := reconstruct.Pointing{Altitude: math.Pi/2 - 0.01, Azimuth: 0}

	event := &ArrayEvent{
		DL1: &DL1Data{Tels: map[int]*DL1Camera{
			1: {ImageParameters: &imaging.Parameters{Hillas: imaging.Hillas{
				X: 0.05, Y: 0, Psi: 0.3, Length: 0.02, Width: 0.005, Intensity: 200}}},
			2: {ImageParameters: &imaging.Parameters{Hillas: imaging.Hillas{
				X: -0.05, Y: 0, Psi: -0.6, Length: 0.02, Width: 0.005, Intensity: 200}}},
		}},
		Pointing: &PointingData{ArrayAltitude: pointing.Altitude, ArrayAzimuth: pointing.Azimuth},
	}

	p := &ShowerProcessor{
		Subarray:    sub,
		Reconstruct: &reconstruct.HillasStereo{},
	}
	require.NoError(t, p.Apply(event))
	require.NotNil(t, event.DL2)
	geom := event.DL2.Geometry["HillasReconstructor"]
	require.NotNil(t, geom)
}

func TestShowerProcessorHonorsTelescopeSelection(t *testing.T) {
	sub := twoTelescopeSubarray(t)
	event := &ArrayEvent{
		DL1: &DL1Data{Tels: map[int]*DL1Camera{
			1: {ImageParameters: &imaging.Parameters{Hillas: imaging.Hillas{Length: 0.02, Intensity: 200}}},
			2: {ImageParameters: &imaging.Parameters{Hillas: imaging.Hillas{Length: 0.02, Intensity: 200}}},
		}},
	}
	p := &ShowerProcessor{
		Subarray:    sub,
		Reconstruct: &reconstruct.HillasStereo{},
		Config:      ShowerProcessorConfig{SelectedTelescopeIDs: []int{1}},
	}
	require.NoError(t, p.Apply(event))
	geom := event.DL2.Geometry["HillasReconstructor"]
	require.False(t, geom.IsValid) // only one telescope selected, stereo needs >=2
}

func TestShowerProcessorImageQueryFiltersLowIntensity(t *testing.T) {
	sub := twoTelescopeSubarray(t)
	predicate, err := query.Compile("hillas_intensity > 1000")
	require.NoError(t, err)

	event := &ArrayEvent{
		DL1: &DL1Data{Tels: map[int]*DL1Camera{
			1: {ImageParameters: &imaging.Parameters{Hillas: imaging.Hillas{Length: 0.02, Intensity: 200}}},
			2: {ImageParameters: &imaging.Parameters{Hillas: imaging.Hillas{Length: 0.02, Intensity: 200}}},
		}},
	}
	p := &ShowerProcessor{
		Subarray:    sub,
		Reconstruct: &reconstruct.HillasStereo{},
		Config:      ShowerProcessorConfig{ImageQuery: predicate},
	}
	require.NoError(t, p.Apply(event))
	require.False(t, event.DL2.Geometry["HillasReconstructor"].IsValid)
}

func TestShowerProcessorUnknownReconstructorIsConfigurationError(t *testing.T) {
	sub := twoTelescopeSubarray(t)
	event := &ArrayEvent{DL1: &DL1Data{Tels: map[int]*DL1Camera{}}}
	p := &ShowerProcessor{Subarray: sub, Config: ShowerProcessorConfig{ReconstructorType: "Nope"}}
	err := p.Apply(event)
	require.Error(t, err)
	var se *StageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ErrConfiguration, se.Kind)
}
