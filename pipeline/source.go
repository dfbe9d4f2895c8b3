// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package pipeline

import "github.com/ctapipe-go/airshower/camera"

// EventSource is the external collaborator that decodes a raw input file
// into a stream of ArrayEvent values (§1 Non-goals, §6 "Input"): the
// binary/raw record format itself is out of scope, only this interface
// is specified. Next returns ok=false once the source is exhausted.
//
// The run-level accessors (SimulationConfig, AtmosphereModel, Metaparam,
// ShowerArray) surface metadata that, unlike a per-event ArrayEvent, is
// either fixed for the whole run or only knowable after scanning every
// event; their ok/error results are false/nil when a source has nothing
// to report, which is the common case for a source with no simulation
// truth at all.
type EventSource interface {
	Subarray() *camera.SubarrayDescription
	Next() (event *ArrayEvent, ok bool, err error)
	Close() error

	// SimulationConfig returns the run's representative simulated-shower
	// truth and its run id, when the source has one.
	SimulationConfig() (runID string, shower *ShowerTruth, ok bool)

	// AtmosphereModel returns the name of the atmosphere model the
	// simulation used, when known.
	AtmosphereModel() (name string, ok bool)

	// Metaparam returns the run id recorded independently of any
	// simulation truth, when known.
	Metaparam() (runID string, ok bool)

	// ShowerArray returns the true shower parameters for every simulated
	// event in the run, bulk-read ahead of or independent of the Next()
	// stream. Returns a nil slice, no error, when the source carries no
	// simulation truth.
	ShowerArray() ([]*ShowerTruth, error)
}
