// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

// Hillas holds the geometric moments of a cleaned shower image (§3).
type Hillas struct {
	Intensity float64
	X, Y      float64
	Length    float64
	Width     float64
	Psi       float64
	R         float64
	Phi       float64
	Skewness  float64
	Kurtosis  float64
}

// Leakage holds the edge-fraction parameters (§3, §4.2).
type Leakage struct {
	PixelsWidth1    float64
	PixelsWidth2    float64
	IntensityWidth1 float64
	IntensityWidth2 float64
}

// Concentration holds the charge-concentration parameters (§3, §4.2).
type Concentration struct {
	ConcentrationCOG   float64
	ConcentrationCore  float64
	ConcentrationPixel float64
}

// Morphology holds the connected-component island statistics (§3, §4.2).
type Morphology struct {
	NPixels         int
	NIslands        int
	NSmallIslands   int
	NMediumIslands  int
	NLargeIslands   int
}

// Intensity holds the raw-image moment statistics (§3, §4.2).
type Intensity struct {
	IntensityMax       float64
	IntensityMean      float64
	IntensityStd       float64
	IntensitySkewness  float64
	IntensityKurtosis  float64
}

// Extra holds optional truth-comparison fields, filled only when
// simulation truth is available (§3). Miss, Disp and CogErr are camera-
// plane distances in meters; Theta is Disp expressed as an angle via the
// telescope's focal length, the same meters-to-radians convention used
// elsewhere in this package; Psi/BetaErr are in radians.
type Extra struct {
	Miss     float64
	Disp     float64
	Theta    float64
	TruePsi  float64
	CogErr   float64
	BetaErr  float64
}

// Parameters is the full per-telescope image parameterization (§3).
type Parameters struct {
	Hillas        Hillas
	Leakage       Leakage
	Concentration Concentration
	Morphology    Morphology
	Intensity     Intensity
	Extra         *Extra
}
