// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package camera

import "fmt"

// OpticsDescription is the fixed optical layout of a telescope.
type OpticsDescription struct {
	MirrorArea              float64
	EquivalentFocalLength   float64
	EffectiveFocalLength    float64
	NumMirrors              int
	OpticsName              string
}

// TelescopeDescription pairs a camera with its optics.
type TelescopeDescription struct {
	CameraDescription *Geometry
	OpticsDescription OpticsDescription
}

// Position is a 3-vector in the local ground frame, meters.
type Position struct {
	X, Y, Z float64
}

// SubarrayDescription is the read-only, shared description of the array:
// which telescopes exist, where they are, and what they look like. It is
// built once and never mutated after construction (§5).
type SubarrayDescription struct {
	Name               string
	ReferencePosition  Position
	Telescopes         map[int]TelescopeDescription
	TelescopePositions map[int]Position
}

// NewSubarrayDescription creates an empty subarray with the given
// reference position.
func NewSubarrayDescription(name string, reference Position) *SubarrayDescription {
	return &SubarrayDescription{
		Name:               name,
		ReferencePosition:  reference,
		Telescopes:         map[int]TelescopeDescription{},
		TelescopePositions: map[int]Position{},
	}
}

// AddTelescope registers a telescope at the given position.
func (s *SubarrayDescription) AddTelescope(telID int, desc TelescopeDescription, pos Position) {
	s.Telescopes[telID] = desc
	s.TelescopePositions[telID] = pos
}

// Geometry looks up the camera geometry for a telescope id.
func (s *SubarrayDescription) Geometry(telID int) (*Geometry, error) {
	desc, ok := s.Telescopes[telID]
	if !ok || desc.CameraDescription == nil {
		return nil, fmt.Errorf("camera: no camera geometry registered for telescope %d", telID)
	}
	return desc.CameraDescription, nil
}

// TelIDs returns the sorted list of registered telescope ids.
func (s *SubarrayDescription) TelIDs() []int {
	ids := make([]int, 0, len(s.Telescopes))
	for id := range s.Telescopes {
		ids = append(ids, id)
	}
	sortInts(ids)
	return ids
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
