// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

import (
	"math"

	"github.com/ctapipe-go/airshower/camera"
)

// Compute assembles the full Parameters record for a cleaned image
// (§3, §4.2). Per the universal invariant, every numeric field is NaN
// (counts are 0) whenever the mask has fewer than 3 surviving pixels or
// total intensity is not positive.
func Compute(g *camera.Geometry, image []float64, mask []bool) Parameters {
	n := camera.Count(mask)
	w := 0.0
	for i, in := range mask {
		if in {
			w += image[i]
		}
	}

	if n < 3 || w <= 0 {
		nan := math.NaN()
		return Parameters{
			Hillas:        nanHillas(),
			Leakage:       Leakage{nan, nan, nan, nan},
			Concentration: Concentration{nan, nan, nan},
			Morphology:    Morphology{},
			Intensity:     Intensity{nan, nan, nan, nan, nan},
		}
	}

	hillas := ComputeHillas(g.PixX, g.PixY, image, mask)
	outer1, outer2 := g.OuterRings()
	leakage := ComputeLeakage(image, mask, outer1, outer2)
	concentration := ComputeConcentration(g.PixX, g.PixY, image, mask, hillas)
	morphology := ComputeMorphology(g, mask)
	intensity := ComputeIntensity(image, mask)

	return Parameters{
		Hillas:        hillas,
		Leakage:       leakage,
		Concentration: concentration,
		Morphology:    morphology,
		Intensity:     intensity,
	}
}
