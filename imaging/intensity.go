// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ComputeIntensity computes the straight (unweighted-by-position) moments
// of the raw image over the masked pixels (§4.2), using gonum/stat for
// the mean, standard deviation, skewness and excess-corrected kurtosis.
func ComputeIntensity(image []float64, mask []bool) Intensity {
	idx := maskedIndices(mask)
	if len(idx) == 0 {
		nan := math.NaN()
		return Intensity{nan, nan, nan, nan, nan}
	}

	values := make([]float64, len(idx))
	max := math.Inf(-1)
	for k, i := range idx {
		values[k] = image[i]
		if values[k] > max {
			max = values[k]
		}
	}

	mean := stat.Mean(values, nil)
	std := stat.StdDev(values, nil)

	var skew, kurt float64
	if std > 0 {
		skew = stat.Skew(values, nil)
		kurt = stat.ExKurtosis(values, nil) + 3
	} else {
		skew, kurt = math.NaN(), math.NaN()
	}

	return Intensity{
		IntensityMax:      max,
		IntensityMean:     mean,
		IntensityStd:      std,
		IntensitySkewness: skew,
		IntensityKurtosis: kurt,
	}
}
