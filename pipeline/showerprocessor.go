// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/imaging"
	"github.com/ctapipe-go/airshower/query"
	"github.com/ctapipe-go/airshower/reconstruct"
)

// Reconstructors is the named registry ShowerProcessor selects from by
// config string, keeping HillasStereo (and any future geometry
// reconstructor) decoupled from the stage that drives it (Design Notes
// §9). New reconstructors register themselves here from an init in their
// own package's test or from main; this package seeds it with the one
// reconstructor built into the module.
var Reconstructors = map[string]func() reconstruct.Reconstructor{
	"HillasReconstructor": func() reconstruct.Reconstructor { return &reconstruct.HillasStereo{} },
}

// ShowerProcessorConfig configures telescope selection and reconstructor
// choice (§4.6, §6 configuration).
type ShowerProcessorConfig struct {
	ReconstructorType string

	// SelectedTelescopeIDs restricts reconstruction to this set of
	// telescopes when non-empty (the CLI's -s flag, §6).
	SelectedTelescopeIDs []int

	// ImageQuery further restricts telescopes by a compiled predicate over
	// their DL1 image parameters (§4.3). Nil means no additional filter.
	ImageQuery *query.Predicate

	// UseFakeHillas resolves the §9 Open Question on "fake Hillas" mode:
	// when set, the Hillas moments fed to the reconstructor are recomputed
	// directly from the true simulated photo-electron image, bypassing
	// cleaning noise entirely, instead of from the calibrated DL1 image.
	UseFakeHillas bool

	MaxLeakage2 float64 // 0 disables the cut
}

// ShowerProcessor assembles per-telescope Hillas parameters into DL2
// stereo geometry (§4.6, component G).
type ShowerProcessor struct {
	Config       ShowerProcessorConfig
	Subarray     *camera.SubarrayDescription
	Reconstruct  reconstruct.Reconstructor
	AtmosProfile reconstruct.AtmosphereProfile
}

func (p *ShowerProcessor) Name() string { return "ShowerProcessor" }

func (p *ShowerProcessor) Apply(event *ArrayEvent) error {
	if event.DL1 == nil {
		return nil
	}

	recon := p.Reconstruct
	if recon == nil {
		factory, ok := Reconstructors[p.Config.ReconstructorType]
		if !ok {
			return &StageError{Kind: ErrConfiguration, Stage: p.Name(),
				Err: fmt.Errorf("unknown reconstructor type %q", p.Config.ReconstructorType)}
		}
		recon = factory()
	}

	selected := p.selectedSet()

	var tels []reconstruct.TelescopeInput
	for telID, cam := range event.DL1.Tels {
		if len(selected) > 0 && !selected[telID] {
			continue
		}
		if cam.ImageParameters == nil {
			continue
		}
		params := cam.ImageParameters
		if p.Config.MaxLeakage2 > 0 && params.Leakage.IntensityWidth2 > p.Config.MaxLeakage2 {
			continue
		}
		if p.Config.ImageQuery != nil {
			ok, err := p.Config.ImageQuery.Eval(params)
			if err != nil {
				return &StageError{Kind: ErrConfiguration, Stage: p.Name(), Err: err}
			}
			if !ok {
				continue
			}
		}

		hillas := params.Hillas
		if p.Config.UseFakeHillas && event.Simulation != nil {
			if sim, ok := event.Simulation.Tels[telID]; ok && sim != nil {
				geom, err := p.Subarray.Geometry(telID)
				if err != nil {
					return &StageError{Kind: ErrEvent, Stage: p.Name(), Err: err}
				}
				trueMask := make([]bool, len(sim.TrueImage))
				for i, v := range sim.TrueImage {
					trueMask[i] = v > 0
				}
				fakeParams := imaging.Compute(geom, sim.TrueImage, trueMask)
				hillas = fakeParams.Hillas
			}
		}

		desc := p.Subarray.Telescopes[telID]
		pos := p.Subarray.TelescopePositions[telID]
		var telPointing reconstruct.Pointing
		if event.Pointing != nil {
			if tp, ok := event.Pointing.Tels[telID]; ok {
				telPointing = reconstruct.Pointing{Altitude: tp.Altitude, Azimuth: tp.Azimuth}
			}
		}

		tels = append(tels, reconstruct.TelescopeInput{
			TelID:       telID,
			PositionX:   pos.X,
			PositionY:   pos.Y,
			PositionZ:   pos.Z,
			Pointing:    telPointing,
			Hillas:      hillas,
			FocalLength: desc.OpticsDescription.EffectiveFocalLength,
		})
	}

	arrayPointing := reconstruct.Pointing{}
	if event.Pointing != nil {
		arrayPointing = reconstruct.Pointing{Altitude: event.Pointing.ArrayAltitude, Azimuth: event.Pointing.ArrayAzimuth}
	}

	var truth *reconstruct.TruthDirection
	if event.Simulation != nil && event.Simulation.Shower != nil {
		truth = &reconstruct.TruthDirection{Alt: event.Simulation.Shower.Alt, Az: event.Simulation.Shower.Az}
	}

	geom, impacts := recon.Reconstruct(tels, arrayPointing, truth, p.AtmosProfile)

	if event.DL2 == nil {
		event.DL2 = &DL2Data{Geometry: map[string]*reconstruct.ReconstructedGeometry{}, Tels: map[int]*DL2Tel{}}
	}
	event.DL2.Geometry[recon.Name()] = geom

	for telID, impact := range impacts {
		tel := event.DL2.Tels[telID]
		if tel == nil {
			tel = &DL2Tel{ImpactParameters: map[string]reconstruct.ImpactParameter{}}
			event.DL2.Tels[telID] = tel
		}
		tel.ImpactParameters[recon.Name()] = impact
	}

	return nil
}

func (p *ShowerProcessor) selectedSet() map[int]bool {
	if len(p.Config.SelectedTelescopeIDs) == 0 {
		return nil
	}
	set := make(map[int]bool, len(p.Config.SelectedTelescopeIDs))
	for _, id := range p.Config.SelectedTelescopeIDs {
		set[id] = true
	}
	return set
}
