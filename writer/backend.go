// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package writer implements the DataWriter component (§4.7): a small
// factory over named output backends, each honoring the same
// open/close/write_<layer> contract, plus the DataWriter pipeline stage
// that drives them from the layer-selection flags in configuration.
package writer

import (
	"fmt"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/pipeline"
)

// Backend is the per-format sink contract (§4.7, Design Notes §9 "Writer
// backend selection"). Every method is a no-op-safe write of one record;
// callers only invoke the methods for layers actually present on an
// event, so a backend never has to guess at absence vs. zero value.
type Backend interface {
	Open(path string, overwrite bool) error
	Close() error

	WriteSubarray(sub *camera.SubarrayDescription) error
	WriteSimulationConfig(runID string, shower *pipeline.ShowerTruth) error
	WriteAtmosphereModel(name string) error
	WriteMetaparam(runID string) error

	WriteR0(event *pipeline.ArrayEvent) error
	WriteR1(event *pipeline.ArrayEvent) error
	WriteDL0(event *pipeline.ArrayEvent) error
	WriteDL1(event *pipeline.ArrayEvent) error
	WriteDL1Image(event *pipeline.ArrayEvent) error
	WriteDL2(event *pipeline.ArrayEvent) error
	WriteSimulationShower(event *pipeline.ArrayEvent) error
	WriteSimulatedCamera(event *pipeline.ArrayEvent) error
	WriteMonitor(event *pipeline.ArrayEvent) error
	WritePointing(event *pipeline.ArrayEvent) error
}

// NewBackend is the small output_type factory (Design Notes §9).
func NewBackend(outputType string) (Backend, error) {
	switch outputType {
	case "", "jsonl":
		return newJSONLBackend(), nil
	case "sqlite":
		return newSQLiteBackend(), nil
	case "root":
		return &rootBackend{}, nil
	default:
		return nil, fmt.Errorf("writer: unknown output_type %q", outputType)
	}
}
