// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package source

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/pipeline"
	"github.com/ctapipe-go/airshower/writer"
)

func writeFixture(t *testing.T, dir string) {
	t.Helper()
	backend, err := writer.NewBackend("jsonl")
	require.NoError(t, err)
	require.NoError(t, backend.Open(dir, false))

	geom, err := camera.NewGeometry("cam", 28, []float64{0, 1}, []float64{0, 0}, []float64{1, 1},
		[]camera.PixelType{camera.PixelSquare, camera.PixelSquare})
	require.NoError(t, err)
	sub := camera.NewSubarrayDescription("array", camera.Position{})
	sub.AddTelescope(1, camera.TelescopeDescription{CameraDescription: geom,
		OpticsDescription: camera.OpticsDescription{EffectiveFocalLength: 28}}, camera.Position{X: 5})
	require.NoError(t, backend.WriteSubarray(sub))

	event1 := &pipeline.ArrayEvent{EventID: 1,
		R1:       &pipeline.R1Data{Tels: map[int]*pipeline.R1Waveform{1: {Samples: [][]float64{{0, 1}, {0, 2}}}}},
		Pointing: &pipeline.PointingData{ArrayAltitude: 1.2, ArrayAzimuth: 0.3},
	}
	event2 := &pipeline.ArrayEvent{EventID: 2,
		R1: &pipeline.R1Data{Tels: map[int]*pipeline.R1Waveform{1: {Samples: [][]float64{{3, 4}, {5, 6}}}}},
	}
	require.NoError(t, backend.WriteR1(event1))
	require.NoError(t, backend.WritePointing(event1))
	require.NoError(t, backend.WriteR1(event2))
	require.NoError(t, backend.Close())
}

func TestJSONLSourceRoundTripsEvents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	writeFixture(t, dir)

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, "array", src.Subarray().Name)
	geom, err := src.Subarray().Geometry(1)
	require.NoError(t, err)
	require.Equal(t, 2, geom.NumPixels())

	first, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, first.EventID)
	require.Equal(t, [][]float64{{0, 1}, {0, 2}}, first.R1.Tels[1].Samples)
	require.NotNil(t, first.Pointing)
	require.InDelta(t, 1.2, first.Pointing.ArrayAltitude, 1e-9)

	second, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, second.EventID)

	_, ok, err = src.Next()
	require.NoError(t, err)
	require.False(t, ok)
}
