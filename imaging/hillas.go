// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// nanHillas is the sentinel value used whenever the invariant in §3 fires:
// the cleaned mask has fewer than 3 surviving pixels, or intensity <= 0.
func nanHillas() Hillas {
	nan := math.NaN()
	return Hillas{Intensity: nan, X: nan, Y: nan, Length: nan, Width: nan, Psi: nan, R: nan, Phi: nan, Skewness: nan, Kurtosis: nan}
}

// ComputeHillas computes the weighted second-moment ellipse of the masked
// image (§4.2). image and mask must be the same length; pixels outside
// the mask contribute nothing.
func ComputeHillas(pixX, pixY, image []float64, mask []bool) Hillas {
	idx := maskedIndices(mask)
	if len(idx) < 3 {
		return nanHillas()
	}

	w := 0.0
	for _, i := range idx {
		w += image[i]
	}
	if w <= 0 {
		return nanHillas()
	}

	var xbar, ybar float64
	for _, i := range idx {
		xbar += image[i] * pixX[i]
		ybar += image[i] * pixY[i]
	}
	xbar /= w
	ybar /= w

	var cxx, cyy, cxy float64
	for _, i := range idx {
		dx := pixX[i] - xbar
		dy := pixY[i] - ybar
		cxx += image[i] * dx * dx
		cyy += image[i] * dy * dy
		cxy += image[i] * dx * dy
	}
	cxx /= w
	cyy /= w
	cxy /= w

	cov := mat.NewSymDense(2, []float64{cxx, cxy, cxy, cyy})
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nanHillas()
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// gonum returns eigenvalues in ascending order; we want λ1 >= λ2.
	i1, i2 := 1, 0
	if values[0] > values[1] {
		i1, i2 = 0, 1
	}
	lambda1 := math.Max(values[i1], 0)
	lambda2 := math.Max(values[i2], 0)

	length := math.Sqrt(lambda1)
	width := math.Sqrt(lambda2)

	vx, vy := vectors.At(0, i1), vectors.At(1, i1)
	psi := math.Atan2(vy, vx)
	psi = reducePsi(psi)

	r := math.Hypot(xbar, ybar)
	phi := math.Atan2(ybar, xbar)

	var skewness, kurtosis float64
	if length > 0 {
		cospsi, sinpsi := math.Cos(psi), math.Sin(psi)
		var m2, m3, m4 float64
		for _, i := range idx {
			t := (pixX[i]-xbar)*cospsi + (pixY[i]-ybar)*sinpsi
			wt := image[i]
			m2 += wt * t * t
			m3 += wt * t * t * t
			m4 += wt * t * t * t * t
		}
		m3 /= w
		m4 /= w
		skewness = m3 / (length * length * length)
		kurtosis = m4 / (length * length * length * length)
	}

	return Hillas{
		Intensity: w,
		X:         xbar,
		Y:         ybar,
		Length:    length,
		Width:     width,
		Psi:       psi,
		R:         r,
		Phi:       phi,
		Skewness:  skewness,
		Kurtosis:  kurtosis,
	}
}

// reducePsi maps an axis angle into (-pi/2, pi/2], since a major axis has
// no intrinsic direction (psi and psi+pi describe the same line).
func reducePsi(psi float64) float64 {
	for psi <= -math.Pi/2 {
		psi += math.Pi
	}
	for psi > math.Pi/2 {
		psi -= math.Pi
	}
	return psi
}

func maskedIndices(mask []bool) []int {
	idx := make([]int, 0, len(mask))
	for i, v := range mask {
		if v {
			idx = append(idx, i)
		}
	}
	return idx
}
