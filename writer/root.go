// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package writer

import (
	"errors"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/pipeline"
)

// errROOTUnsupported is returned by Open and by every write method of
// rootBackend; Close is a no-op that returns nil. ROOT format
// I/O needs cgo bindings to the ROOT C++ library; none of the retrieved
// example repos carry one, so this backend is named (§4.7 lists
// output_type="root") but not implemented.
var errROOTUnsupported = errors.New("writer: root output_type is not supported in this build")

type rootBackend struct{}

func (rootBackend) Open(path string, overwrite bool) error { return errROOTUnsupported }
func (rootBackend) Close() error                           { return nil }

func (rootBackend) WriteSubarray(sub *camera.SubarrayDescription) error         { return errROOTUnsupported }
func (rootBackend) WriteSimulationConfig(runID string, s *pipeline.ShowerTruth) error { return errROOTUnsupported }
func (rootBackend) WriteAtmosphereModel(name string) error                     { return errROOTUnsupported }
func (rootBackend) WriteMetaparam(runID string) error                          { return errROOTUnsupported }

func (rootBackend) WriteR0(event *pipeline.ArrayEvent) error              { return errROOTUnsupported }
func (rootBackend) WriteR1(event *pipeline.ArrayEvent) error              { return errROOTUnsupported }
func (rootBackend) WriteDL0(event *pipeline.ArrayEvent) error             { return errROOTUnsupported }
func (rootBackend) WriteDL1(event *pipeline.ArrayEvent) error             { return errROOTUnsupported }
func (rootBackend) WriteDL1Image(event *pipeline.ArrayEvent) error        { return errROOTUnsupported }
func (rootBackend) WriteDL2(event *pipeline.ArrayEvent) error             { return errROOTUnsupported }
func (rootBackend) WriteSimulationShower(event *pipeline.ArrayEvent) error { return errROOTUnsupported }
func (rootBackend) WriteSimulatedCamera(event *pipeline.ArrayEvent) error { return errROOTUnsupported }
func (rootBackend) WriteMonitor(event *pipeline.ArrayEvent) error        { return errROOTUnsupported }
func (rootBackend) WritePointing(event *pipeline.ArrayEvent) error       { return errROOTUnsupported }
