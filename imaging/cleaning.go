// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package imaging computes the per-telescope cleaning mask and the
// derived Hillas/leakage/concentration/morphology/intensity parameters
// from a cleaned camera image (§4.1, §4.2).
package imaging

import "github.com/ctapipe-go/airshower/camera"

// TailcutsConfig holds the two-threshold cleaning parameters (§4.1).
type TailcutsConfig struct {
	PictureThresh             float64
	BoundaryThresh            float64
	KeepIsolatedPixels        bool
	MinNumberPictureNeighbors int
}

// TailcutsClean implements the two-stage tailcuts cleaning algorithm as a
// sequence of set operations over the neighbor graph (§4.1):
//
//  1. P  = {i : image[i] >= picture_thresh}
//  2. P' = P, filtered by the picture-neighbor requirement unless
//     keep_isolated_pixels or min_number_picture_neighbors == 0
//  3. B  = {i : image[i] >= boundary_thresh}
//  4. result = (B ∩ neighbors_of(P')) ∪ P'                     if keep_isolated_pixels
//     result = (B ∩ neighbors_of(P')) ∪ (P' ∩ neighbors_of(B))  otherwise
func TailcutsClean(g *camera.Geometry, image []float64, cfg TailcutsConfig) []bool {
	n := len(image)
	picture := make([]bool, n)
	for i, v := range image {
		if v >= cfg.PictureThresh {
			picture[i] = true
		}
	}

	pictureFiltered := picture
	if !cfg.KeepIsolatedPixels && cfg.MinNumberPictureNeighbors > 0 {
		pictureFiltered = make([]bool, n)
		for i := range picture {
			if !picture[i] {
				continue
			}
			if camera.NeighborCountInSet(g, i, picture) >= cfg.MinNumberPictureNeighbors {
				pictureFiltered[i] = true
			}
		}
	}

	boundary := make([]bool, n)
	for i, v := range image {
		if v >= cfg.BoundaryThresh {
			boundary[i] = true
		}
	}

	neighborsOfPicture := camera.NeighborsOf(g, pictureFiltered)
	boundaryNearPicture := camera.And(boundary, neighborsOfPicture)

	if cfg.KeepIsolatedPixels {
		return camera.Or(boundaryNearPicture, pictureFiltered)
	}

	pictureNearBoundary := camera.And(pictureFiltered, camera.NeighborsOf(g, boundary))
	return camera.Or(boundaryNearPicture, pictureNearBoundary)
}
