// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package camera

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// grid4x4 builds the 4x4 square-pixel camera used throughout §8's
// concrete scenarios: pix_area=1, centers at integer coordinates 0..3.
func grid4x4(t *testing.T) *Geometry {
	t.Helper()
	var x, y, area []float64
	var typ []PixelType
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			x = append(x, float64(col))
			y = append(y, float64(row))
			area = append(area, 1)
			typ = append(typ, PixelSquare)
		}
	}
	g, err := NewGeometry("test-4x4", 10, x, y, area, typ)
	require.NoError(t, err)
	return g
}

func TestGrid4x4Adjacency(t *testing.T) {
	g := grid4x4(t)
	// pixel 5 is (col=1,row=1): interior pixel, 4-connected neighbors.
	require.ElementsMatch(t, []int32{1, 4, 6, 9}, g.Neighbors(5))
	// pixel 0 is a corner: only 2 neighbors.
	require.Len(t, g.Neighbors(0), 2)
	require.Equal(t, 4, g.ModalNeighborCount())
}

func TestDilateGrowsMask(t *testing.T) {
	g := grid4x4(t)
	mask := make([]bool, 16)
	mask[10] = true
	dilated := Dilate(g, mask)
	require.True(t, dilated[10])
	for _, n := range g.Neighbors(10) {
		require.True(t, dilated[n])
	}
	require.GreaterOrEqual(t, Count(dilated), Count(mask))
}

func TestNewGeometryRejectsMismatchedLengths(t *testing.T) {
	_, err := NewGeometry("bad", 1, []float64{0, 1}, []float64{0}, []float64{1, 1}, []PixelType{PixelSquare, PixelSquare})
	require.Error(t, err)
}
