// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

import (
	"math"

	"github.com/ctapipe-go/airshower/camera"
)

// ComputeLeakage computes the edge-fraction parameters (§4.2). outer1 and
// outer2 are the camera's cached outer-ring masks from Geometry.OuterRings:
// spec-time choice for the ambiguity noted in §9 — the edge ring is
// defined purely by adjacency-count deficit, independent of pixel shape.
func ComputeLeakage(image []float64, mask, outer1, outer2 []bool) Leakage {
	n := camera.Count(mask)
	if n == 0 {
		nan := math.NaN()
		return Leakage{nan, nan, nan, nan}
	}

	w := 0.0
	for i, in := range mask {
		if in {
			w += image[i]
		}
	}
	if w == 0 {
		nan := math.NaN()
		return Leakage{nan, nan, nan, nan}
	}

	maskOuter1 := camera.And(mask, outer1)
	maskOuter2 := camera.And(mask, outer2)

	n1 := camera.Count(maskOuter1)
	n2 := camera.Count(maskOuter2)

	var i1, i2 float64
	for idx, in := range maskOuter1 {
		if in {
			i1 += image[idx]
		}
	}
	for idx, in := range maskOuter2 {
		if in {
			i2 += image[idx]
		}
	}

	return Leakage{
		PixelsWidth1:    float64(n1) / float64(n),
		PixelsWidth2:    float64(n2) / float64(n),
		IntensityWidth1: i1 / w,
		IntensityWidth2: i2 / w,
	}
}
