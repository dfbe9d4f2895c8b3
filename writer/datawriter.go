// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package writer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/config"
	"github.com/ctapipe-go/airshower/pipeline"
)

// DataWriter drives a Backend from the write_* layer-selection flags
// (§4.7, component I). It implements pipeline.Stage so it can sit at the
// tail of a Pipeline like every other component, even though its Apply
// never mutates the event.
type DataWriter struct {
	Backend Backend
	Options config.DataWriter
	RunID   string
}

// Open opens a backend of the configured output_type at path and mints a
// run id if the caller didn't supply one (§6, grounded on the teacher's
// uuid.New() fallback-UID pattern).
func Open(path string, opts config.DataWriter, runID string) (*DataWriter, error) {
	backend, err := NewBackend(opts.OutputType)
	if err != nil {
		return nil, err
	}
	if err := backend.Open(path, opts.Overwrite); err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}
	if runID == "" {
		runID = uuid.New().String()
	}
	return &DataWriter{Backend: backend, Options: opts, RunID: runID}, nil
}

func (w *DataWriter) Name() string { return "DataWriter" }

// WriteSubarrayOnce and the other one-shot metadata writes happen once at
// open time, before any events flow (§4.7).
func (w *DataWriter) WriteSubarrayOnce(sub *camera.SubarrayDescription) error {
	if !w.Options.WriteSubarray {
		return nil
	}
	return w.Backend.WriteSubarray(sub)
}

func (w *DataWriter) WriteAtmosphereModelOnce(name string) error {
	if !w.Options.WriteAtmosphereModel {
		return nil
	}
	return w.Backend.WriteAtmosphereModel(name)
}

func (w *DataWriter) WriteMetaparamOnce() error {
	if !w.Options.WriteMetaparam {
		return nil
	}
	return w.Backend.WriteMetaparam(w.RunID)
}

// WriteSimulationConfigOnce records the run-level simulation truth the
// first time it becomes available: upfront when the source carries a
// run-level simulation config, otherwise (unlike subarray/metaparam) only
// once the first simulated event has passed through the source (§4.7).
func (w *DataWriter) WriteSimulationConfigOnce(shower *pipeline.ShowerTruth) error {
	if !w.Options.WriteSimulationConfig {
		return nil
	}
	return w.Backend.WriteSimulationConfig(w.RunID, shower)
}

// Apply writes every enabled layer present on the event (§4.7). Write
// failures are reported as I/O StageErrors: non-fatal, so one bad record
// does not abort the whole run.
func (w *DataWriter) Apply(event *pipeline.ArrayEvent) error {
	type step struct {
		enabled bool
		present bool
		write   func() error
	}
	steps := []step{
		{w.Options.WriteR0, event.R0 != nil, func() error { return w.Backend.WriteR0(event) }},
		{w.Options.WriteR1, event.R1 != nil, func() error { return w.Backend.WriteR1(event) }},
		{w.Options.WriteDL0, event.DL0 != nil, func() error { return w.Backend.WriteDL0(event) }},
		{w.Options.WriteDL1, event.DL1 != nil, func() error { return w.Backend.WriteDL1(event) }},
		{w.Options.WriteDL1Image, event.DL1 != nil, func() error { return w.Backend.WriteDL1Image(event) }},
		{w.Options.WriteDL2, event.DL2 != nil, func() error { return w.Backend.WriteDL2(event) }},
		{w.Options.WriteSimulationShower, event.Simulation != nil, func() error { return w.Backend.WriteSimulationShower(event) }},
		{w.Options.WriteSimulatedCamera, event.Simulation != nil, func() error { return w.Backend.WriteSimulatedCamera(event) }},
		{w.Options.WriteMonitor, event.Monitor != nil, func() error { return w.Backend.WriteMonitor(event) }},
		{w.Options.WritePointing, event.Pointing != nil, func() error { return w.Backend.WritePointing(event) }},
	}
	for _, s := range steps {
		if !s.enabled || !s.present {
			continue
		}
		if err := s.write(); err != nil {
			return &pipeline.StageError{Kind: pipeline.ErrIO, Stage: w.Name(), Err: err}
		}
	}
	return nil
}

func (w *DataWriter) Close() error { return w.Backend.Close() }
