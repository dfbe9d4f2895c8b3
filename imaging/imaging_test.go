// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctapipe-go/airshower/camera"
)

func squareGrid(t *testing.T, side int) *camera.Geometry {
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
	g, err := camera.NewGeometry("test", 10, x, y, area, typ)
	require.NoError(t, err)
	return g
}

// Scenario 1: empty image, picture=boundary=1.
func TestTailcutsEmptyImage(t *testing.T) {
	g := squareGrid(t, 4)
	image := make([]float64, 16)
	mask := TailcutsClean(g, image, TailcutsConfig{PictureThresh: 1, BoundaryThresh: 1})
	require.Equal(t, 0, camera.Count(mask))

	params := Compute(g, image, mask)
	require.True(t, math.IsNaN(params.Hillas.Intensity))
	require.True(t, math.IsNaN(params.Hillas.Length))
}

// Scenario 2: constant image, picture=boundary=1.
func TestTailcutsConstantImage(t *testing.T) {
	g := squareGrid(t, 4)
	image := make([]float64, 16)
	for i := range image {
		image[i] = 10
	}
	mask := TailcutsClean(g, image, TailcutsConfig{PictureThresh: 1, BoundaryThresh: 1})
	require.Equal(t, 16, camera.Count(mask))

	params := Compute(g, image, mask)
	require.Equal(t, 16, params.Morphology.NPixels)
}

// Scenario 3: a single peak pixel on a uniform background of 5, with
// picture=8, boundary=1, min_number_picture_neighbors=0. The background
// clears the boundary threshold everywhere, so the peak's 4 neighbors
// survive as boundary pixels adjacent to the picture pixel.
func TestTailcutsIsolatedPeak(t *testing.T) {
	g := squareGrid(t, 4)
	image := make([]float64, 16)
	for i := range image {
		image[i] = 5
	}
	image[10] = 10
	mask := TailcutsClean(g, image, TailcutsConfig{PictureThresh: 8, BoundaryThresh: 1, MinNumberPictureNeighbors: 0})
	require.Equal(t, 5, camera.Count(mask))
	for _, i := range []int{6, 9, 10, 11, 14} {
		require.True(t, mask[i], "pixel %d should survive", i)
	}
}

// Scenario 4: diagonal line.
func TestHillasDiagonalLine(t *testing.T) {
	g := squareGrid(t, 4)
	image := make([]float64, 16)
	mask := make([]bool, 16)
	for _, i := range []int{0, 5, 10, 15} {
		image[i] = 1
		mask[i] = true
	}
	h := ComputeHillas(g.PixX, g.PixY, image, mask)
	require.InDelta(t, 4.0, h.Intensity, 1e-9)
	require.InDelta(t, 1.5, h.X, 1e-9)
	require.InDelta(t, 1.5, h.Y, 1e-9)
	require.InDelta(t, math.Pi/4, h.Psi, 1e-6)
	require.GreaterOrEqual(t, h.Length, h.Width)
}

// Scenario 5: leakage on 5x5, all ones except pixel 0.
func TestLeakage5x5(t *testing.T) {
	g := squareGrid(t, 5)
	image := make([]float64, 25)
	mask := make([]bool, 25)
	for i := range image {
		image[i] = 1
		mask[i] = true
	}
	image[0] = 10

	outer1, outer2 := g.OuterRings()
	l := ComputeLeakage(image, mask, outer1, outer2)
	require.InDelta(t, 16.0/25.0, l.PixelsWidth1, 1e-9)
	require.InDelta(t, 24.0/25.0, l.PixelsWidth2, 1e-9)
	require.InDelta(t, 25.0/34.0, l.IntensityWidth1, 1e-9)
	require.InDelta(t, 33.0/34.0, l.IntensityWidth2, 1e-9)
}

// Scenario 6: morphology on 5x5, two opposite rows set.
func TestMorphology5x5TwoRows(t *testing.T) {
	g := squareGrid(t, 5)
	mask := make([]bool, 25)
	for col := 0; col < 5; col++ {
		mask[0*5+col] = true
		mask[4*5+col] = true
	}
	m := ComputeMorphology(g, mask)
	require.Equal(t, 10, m.NPixels)
	require.Equal(t, 2, m.NIslands)
	require.Equal(t, 2, m.NSmallIslands)
	require.Equal(t, 0, m.NMediumIslands)
	require.Equal(t, 0, m.NLargeIslands)
}

func TestDilateSuperset(t *testing.T) {
	g := squareGrid(t, 4)
	mask := make([]bool, 16)
	mask[5] = true
	dilated := camera.Dilate(g, mask)
	for i, v := range mask {
		if v {
			require.True(t, dilated[i])
		}
	}
}
