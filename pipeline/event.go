// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package pipeline holds the ArrayEvent data-level model and the stage
// contract that carries an event from R1 through DL2 (§3, §9).
//
// Payloads are modeled as optional pointers rather than an inheritance
// hierarchy, per Design Notes §9: callers check presence before dispatch.
package pipeline

import (
	"github.com/ctapipe-go/airshower/imaging"
	"github.com/ctapipe-go/airshower/reconstruct"
)

// ArrayEvent carries one event through the pipeline, gaining layers as it
// passes through each stage. It is mutated in place; nothing here is safe
// for concurrent access (§5).
type ArrayEvent struct {
	EventID int
	RunID   int

	R0         *R0Data
	R1         *R1Data
	DL0        *DL0Data
	DL1        *DL1Data
	DL2        *DL2Data
	Simulation *SimulationData
	Pointing   *PointingData
	Monitor    *MonitorData
}

// R0Waveform is a raw, uncalibrated per-telescope waveform.
type R0Waveform struct {
	Samples [][]float64 // [pixel][sample], ADC counts
}

type R0Data struct {
	Tels map[int]*R0Waveform
}

// R1Waveform is a calibrated (gain/pedestal corrected) per-telescope
// waveform, still time-resolved.
type R1Waveform struct {
	Samples [][]float64 // [pixel][sample], photo-electrons
}

type R1Data struct {
	Tels map[int]*R1Waveform
}

// DL0Data is a placeholder reduced-data layer (e.g. zero-suppressed R1);
// carried through untouched by this pipeline's stages.
type DL0Data struct {
	Tels map[int]*R1Waveform
}

// DL1Camera is the calibrated, integrated image plus derived parameters
// for one telescope (§3).
type DL1Camera struct {
	Image           []float64
	PeakTime        []float64
	Mask            []bool
	ImageParameters *imaging.Parameters
}

type DL1Data struct {
	Tels map[int]*DL1Camera
}

// DL2Tel carries the per-telescope reconstructed quantities that don't
// belong to a single array-level geometry solution.
type DL2Tel struct {
	ImpactParameters map[string]reconstruct.ImpactParameter
}

// EnergyEstimate and ParticleClassification are left minimal: their
// underlying models (regression / classifier application) are described
// only abstractly by the specification (§1 Non-goals: no ML training).
type EnergyEstimate struct {
	Energy      float64
	EnergyError float64
}

type ParticleClassification struct {
	GammaScore float64
}

type DL2Data struct {
	Geometry map[string]*reconstruct.ReconstructedGeometry
	Energy   *EnergyEstimate
	Particle *ParticleClassification
	Tels     map[int]*DL2Tel
}

type PointingData struct {
	ArrayAltitude float64
	ArrayAzimuth  float64
	Tels          map[int]TelPointing
}

type TelPointing struct {
	Azimuth  float64
	Altitude float64
}

type MonitorTel struct {
	PedestalMean []float64
	PedestalStd  []float64
}

type MonitorData struct {
	Tels map[int]*MonitorTel
}

// ShowerTruth is the simulated shower's true parameters, present only
// when the EventSource is reading simulated data.
type ShowerTruth struct {
	Alt, Az        float64
	CoreX, CoreY   float64
	Energy         float64
	Hmax           float64
	ParticleType   int
}

// SimulatedCamera carries the true (noise-free) photo-electron image for
// a telescope, used by fake-Hillas mode and by the Poisson-noise image
// synthesis option (§4.6).
type SimulatedCamera struct {
	TrueImage []float64
}

type SimulationData struct {
	Shower *ShowerTruth
	Tels   map[int]*SimulatedCamera
}
