// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package source provides one concrete pipeline.EventSource: a reader for
// the jsonl layout writer.Backend("jsonl") produces. The raw
// simulation/telescope record format itself is out of scope (§1); this
// exists so the CLI has one real, round-trippable input path to exercise
// the rest of the pipeline against, rather than only ever writing output.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/pipeline"
)

type geometryDoc struct {
	Name        string             `json:"Name"`
	FocalLength float64            `json:"FocalLength"`
	PixX        []float64          `json:"PixX"`
	PixY        []float64          `json:"PixY"`
	PixArea     []float64          `json:"PixArea"`
	PixType     []camera.PixelType `json:"PixType"`
}

type opticsDoc struct {
	MirrorArea            float64 `json:"MirrorArea"`
	EquivalentFocalLength float64 `json:"EquivalentFocalLength"`
	EffectiveFocalLength  float64 `json:"EffectiveFocalLength"`
	NumMirrors            int     `json:"NumMirrors"`
	OpticsName            string  `json:"OpticsName"`
}

type telescopeDoc struct {
	CameraDescription *geometryDoc `json:"CameraDescription"`
	OpticsDescription opticsDoc    `json:"OpticsDescription"`
}

type subarrayDoc struct {
	Name               string                  `json:"Name"`
	ReferencePosition  camera.Position         `json:"ReferencePosition"`
	Telescopes         map[int]telescopeDoc    `json:"Telescopes"`
	TelescopePositions map[int]camera.Position `json:"TelescopePositions"`
}

// JSONLSource reads a jsonl-backend output tree back into ArrayEvents.
type JSONLSource struct {
	dir      string
	subarray *camera.SubarrayDescription

	r1Scanner       *bufio.Scanner
	r1File          *os.File
	pointingByEvent map[int]pointingRecord
	pending         *r1Record

	simConfig  *simulationConfigDoc
	atmosphere *atmosphereModelDoc
	metaparam  *metaparamDoc
}

type simulationConfigDoc struct {
	RunID  string                `json:"run_id"`
	Shower *pipeline.ShowerTruth `json:"shower"`
}

type atmosphereModelDoc struct {
	Name string `json:"name"`
}

type metaparamDoc struct {
	RunID string `json:"run_id"`
}

type r1Record struct {
	EventID int                 `json:"event_id"`
	TelID   int                 `json:"tel_id"`
	Waveform pipeline.R1Waveform `json:"waveform"`
}

type pointingRecord struct {
	ArrayAltitude float64                        `json:"array_altitude"`
	ArrayAzimuth  float64                        `json:"array_azimuth"`
}

// Open reads subarray/subarray.json, rebuilding each camera's neighbor
// adjacency via camera.NewGeometry (adjacency is derived data, not
// serialized), and prepares to stream events/r1.jsonl.
func Open(dir string) (*JSONLSource, error) {
	sub, err := loadSubarray(filepath.Join(dir, "subarray", "subarray.json"))
	if err != nil {
		return nil, err
	}

	pointing, err := loadPointing(filepath.Join(dir, "events", "pointing.jsonl"))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, "events", "r1.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	var simConfig simulationConfigDoc
	simConfigOK, err := loadOptionalJSON(filepath.Join(dir, "cfg", "simulation_config.json"), &simConfig)
	if err != nil {
		return nil, err
	}
	var atmosphere atmosphereModelDoc
	atmosphereOK, err := loadOptionalJSON(filepath.Join(dir, "cfg", "atmosphere_model.json"), &atmosphere)
	if err != nil {
		return nil, err
	}
	var metaparam metaparamDoc
	metaparamOK, err := loadOptionalJSON(filepath.Join(dir, "cfg", "metaparam.json"), &metaparam)
	if err != nil {
		return nil, err
	}

	s := &JSONLSource{
		dir:             dir,
		subarray:        sub,
		r1File:          f,
		r1Scanner:       bufio.NewScanner(f),
		pointingByEvent: pointing,
	}
	if simConfigOK {
		s.simConfig = &simConfig
	}
	if atmosphereOK {
		s.atmosphere = &atmosphere
	}
	if metaparamOK {
		s.metaparam = &metaparam
	}
	return s, nil
}

// loadOptionalJSON decodes a config-style artifact that a jsonl backend
// writes only when the matching write_* flag was enabled (§4.7): a
// missing file means the run carries no such metadata, not an error.
func loadOptionalJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("source: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("source: %w", err)
	}
	return true, nil
}

func loadSubarray(path string) (*camera.SubarrayDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	var doc subarrayDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	sub := camera.NewSubarrayDescription(doc.Name, doc.ReferencePosition)
	for telID, tel := range doc.Telescopes {
		var geom *camera.Geometry
		if tel.CameraDescription != nil {
			g, err := camera.NewGeometry(tel.CameraDescription.Name, tel.CameraDescription.FocalLength,
				tel.CameraDescription.PixX, tel.CameraDescription.PixY,
				tel.CameraDescription.PixArea, tel.CameraDescription.PixType)
			if err != nil {
				return nil, fmt.Errorf("source: rebuilding geometry for tel %d: %w", telID, err)
			}
			geom = g
		}
		pos := doc.TelescopePositions[telID]
		sub.AddTelescope(telID, camera.TelescopeDescription{
			CameraDescription: geom,
			OpticsDescription: camera.OpticsDescription{
				MirrorArea:            tel.OpticsDescription.MirrorArea,
				EquivalentFocalLength: tel.OpticsDescription.EquivalentFocalLength,
				EffectiveFocalLength:  tel.OpticsDescription.EffectiveFocalLength,
				NumMirrors:            tel.OpticsDescription.NumMirrors,
				OpticsName:            tel.OpticsDescription.OpticsName,
			},
		}, pos)
	}
	return sub, nil
}

func loadPointing(path string) (map[int]pointingRecord, error) {
	out := map[int]pointingRecord{}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("source: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var raw struct {
			EventID       int     `json:"event_id"`
			ArrayAltitude float64 `json:"array_altitude"`
			ArrayAzimuth  float64 `json:"array_azimuth"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		out[raw.EventID] = pointingRecord{ArrayAltitude: raw.ArrayAltitude, ArrayAzimuth: raw.ArrayAzimuth}
	}
	return out, scanner.Err()
}

func (s *JSONLSource) Subarray() *camera.SubarrayDescription { return s.subarray }

// Next groups consecutive r1.jsonl records sharing an event_id into one
// ArrayEvent. The writer emits records in event order, so a one-record
// look-ahead buffer (s.pending) is enough to detect the boundary.
func (s *JSONLSource) Next() (*pipeline.ArrayEvent, bool, error) {
	var current *pipeline.ArrayEvent

	if s.pending != nil {
		current = s.newEvent(s.pending.EventID)
		current.R1.Tels[s.pending.TelID] = &pipeline.R1Waveform{Samples: s.pending.Waveform.Samples}
		s.pending = nil
	}

	for s.r1Scanner.Scan() {
		var rec r1Record
		if err := json.Unmarshal(s.r1Scanner.Bytes(), &rec); err != nil {
			return nil, false, fmt.Errorf("source: %w", err)
		}
		if current == nil {
			current = s.newEvent(rec.EventID)
		} else if rec.EventID != current.EventID {
			s.pending = &rec
			return current, true, nil
		}
		current.R1.Tels[rec.TelID] = &pipeline.R1Waveform{Samples: rec.Waveform.Samples}
	}
	if err := s.r1Scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("source: %w", err)
	}
	if current != nil {
		return current, true, nil
	}
	return nil, false, nil
}

func (s *JSONLSource) newEvent(eventID int) *pipeline.ArrayEvent {
	event := &pipeline.ArrayEvent{
		EventID: eventID,
		R1:      &pipeline.R1Data{Tels: map[int]*pipeline.R1Waveform{}},
	}
	if p, ok := s.pointingByEvent[eventID]; ok {
		event.Pointing = &pipeline.PointingData{ArrayAltitude: p.ArrayAltitude, ArrayAzimuth: p.ArrayAzimuth}
	}
	return event
}

func (s *JSONLSource) SimulationConfig() (string, *pipeline.ShowerTruth, bool) {
	if s.simConfig == nil {
		return "", nil, false
	}
	return s.simConfig.RunID, s.simConfig.Shower, true
}

func (s *JSONLSource) AtmosphereModel() (string, bool) {
	if s.atmosphere == nil {
		return "", false
	}
	return s.atmosphere.Name, true
}

func (s *JSONLSource) Metaparam() (string, bool) {
	if s.metaparam == nil {
		return "", false
	}
	return s.metaparam.RunID, true
}

// ShowerArray bulk-reads every simulated shower's truth from
// events/simulation.jsonl, independent of the Next() stream position.
func (s *JSONLSource) ShowerArray() ([]*pipeline.ShowerTruth, error) {
	f, err := os.Open(filepath.Join(s.dir, "events", "simulation.jsonl"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("source: %w", err)
	}
	defer f.Close()

	var out []*pipeline.ShowerTruth
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec struct {
			Shower *pipeline.ShowerTruth `json:"shower"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		if rec.Shower != nil {
			out = append(out, rec.Shower)
		}
	}
	return out, scanner.Err()
}

func (s *JSONLSource) Close() error { return s.r1File.Close() }
