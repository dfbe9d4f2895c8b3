// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

import "math"

// ComputeConcentration computes the three charge-concentration ratios
// (§4.2), all normalized by total masked intensity W.
func ComputeConcentration(pixX, pixY, image []float64, mask []bool, hillas Hillas) Concentration {
	idx := maskedIndices(mask)
	w := 0.0
	for _, i := range idx {
		w += image[i]
	}
	if w <= 0 || len(idx) == 0 {
		nan := math.NaN()
		return Concentration{nan, nan, nan}
	}

	var cog, core, maxPixel float64
	cospsi, sinpsi := math.Cos(hillas.Psi), math.Sin(hillas.Psi)
	for _, i := range idx {
		v := image[i]
		if v > maxPixel {
			maxPixel = v
		}
		dx := pixX[i] - hillas.X
		dy := pixY[i] - hillas.Y
		if math.Hypot(dx, dy) <= hillas.Length {
			cog += v
		}
		if insideEllipse(dx, dy, hillas.Length, hillas.Width, cospsi, sinpsi) {
			core += v
		}
	}

	return Concentration{
		ConcentrationCOG:   cog / w,
		ConcentrationCore:  core / w,
		ConcentrationPixel: maxPixel / w,
	}
}

func insideEllipse(dx, dy, length, width, cospsi, sinpsi float64) bool {
	if length <= 0 || width <= 0 {
		return false
	}
	u := (dx*cospsi + dy*sinpsi) / length
	v := (-dx*sinpsi + dy*cospsi) / width
	return u*u+v*v <= 1
}
