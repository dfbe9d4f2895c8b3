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
)

func squareSubarray(t *testing.T, telID int, side int, focalLength float64) *camera.SubarrayDescription {
	t.Helper()
	var x, y, area []float64
	var typ []camera.PixelType
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			x = append(x, float64(col))
			y = append(y, float64(row))
			area = append(area, 1)
			typ = append(typ, camera.PixelSquare)
		}
	}
	geom, err := camera.NewGeometry("test", focalLength, x, y, area, typ)
	require.NoError(t, err)

	sub := camera.NewSubarrayDescription("test-array", camera.Position{})
	sub.AddTelescope(telID, camera.TelescopeDescription{
		CameraDescription: geom,
		OpticsDescription: camera.OpticsDescription{EffectiveFocalLength: focalLength},
	}, camera.Position{})
	return sub
}

func TestImageProcessorConstantImageFillsAllPixels(t *testing.T) {
	sub := squareSubarray(t, 1, 4, 10)
	p := &ImageProcessor{
		Subarray: sub,
		Config: ImageProcessorConfig{
			Tailcuts: imaging.TailcutsConfig{PictureThresh: 1, BoundaryThresh: 1},
		},
	}
	image := make([]float64, 16)
	for i := range image {
		image[i] = 10
	}
	event := &ArrayEvent{DL1: &DL1Data{Tels: map[int]*DL1Camera{1: {Image: image}}}}

	require.NoError(t, p.Apply(event))
	cam := event.DL1.Tels[1]
	require.Equal(t, 16, camera.Count(cam.Mask))
	require.Equal(t, 16, cam.ImageParameters.Morphology.NPixels)
}

func TestImageProcessorNoDL1IsNoop(t *testing.T) {
	p := &ImageProcessor{Subarray: squareSubarray(t, 1, 4, 10)}
	event := &ArrayEvent{}
	require.NoError(t, p.Apply(event))
}

func TestApplyRadialCutRemovesDistantPixels(t *testing.T) {
	sub := squareSubarray(t, 1, 4, 10)
	geom, err := sub.Geometry(1)
	require.NoError(t, err)

	mask := make([]bool, geom.NumPixels())
	for i := range mask {
		mask[i] = true
	}
	// Corner pixel (3,3) is farther from the origin than pixel (0,0).
	radiusDeg := math.Atan(1.5/10) * 180 / math.Pi
	out := applyRadialCut(geom, mask, radiusDeg)
	require.True(t, out[0])
	require.False(t, out[15])
}
