// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package reconstruct implements the stereoscopic geometry reconstructors
// that combine per-telescope Hillas ellipses into a shower direction and
// core (§4.5).
package reconstruct

import "github.com/ctapipe-go/airshower/imaging"

// TelescopeInput is one telescope's contribution to a stereo fit.
type TelescopeInput struct {
	TelID       int
	PositionX   float64
	PositionY   float64
	PositionZ   float64
	Pointing    Pointing
	Hillas      imaging.Hillas
	FocalLength float64
}

// Pointing is a telescope or array pointing direction, radians.
type Pointing struct {
	Altitude float64
	Azimuth  float64
}

// TruthDirection carries the simulated shower direction, used to fill
// ReconstructedGeometry.DirectionError when available.
type TruthDirection struct {
	Alt, Az float64
}

// AtmosphereProfile is the external atmosphere-density interpolator
// (§1, out of scope): given a height above sea level and a zenith angle,
// it returns the integrated column density along the line of sight. Only
// its interface is specified here; a nil AtmosphereProfile disables Xmax.
type AtmosphereProfile interface {
	ColumnDensity(heightM, zenithAngleRad float64) float64
}

// ReconstructedGeometry is the output of a stereo reconstructor (§3).
type ReconstructedGeometry struct {
	IsValid         bool
	Alt, Az         float64
	AltUncertainty  float64
	AzUncertainty   float64
	CoreX, CoreY    float64
	CorePosError    float64
	Hmax, Xmax      float64
	DirectionError  float64
	Telescopes      []int
}

// ImpactParameter is the per-telescope distance to the reconstructed core.
type ImpactParameter struct {
	Distance      float64
	DistanceError float64
}

// Reconstructor is the stereo-geometry contract; ShowerProcessor drives
// one instance per configured reconstructor name (§4.6, Design Notes §9).
type Reconstructor interface {
	Name() string
	Reconstruct(tels []TelescopeInput, arrayPointing Pointing, truth *TruthDirection, atm AtmosphereProfile) (*ReconstructedGeometry, map[int]ImpactParameter)
}
