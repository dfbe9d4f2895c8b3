// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/pipeline"
)

// jsonlBackend is the reference output_type: one newline-delimited-JSON
// file per data-level layer, laid out in the hierarchical namespaces from
// §6 ("Output layout"). Per-telescope layers additionally get a sidecar
// index file built at Close() mapping event_id to the telescope ids
// present for that event, matching the "secondary index on
// (event_id, tel_id)" contract.
type jsonlBackend struct {
	dir string

	files    map[string]*os.File
	encoders map[string]*json.Encoder

	// telIndex[layer][eventID] = telescope ids written for that event,
	// accumulated as records are written and sorted when flushed at Close().
	telIndex map[string]map[int][]int
}

func newJSONLBackend() *jsonlBackend {
	return &jsonlBackend{
		files:    map[string]*os.File{},
		encoders: map[string]*json.Encoder{},
		telIndex: map[string]map[int][]int{},
	}
}

func (b *jsonlBackend) Open(path string, overwrite bool) error {
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("writer: jsonl output %s exists and is not a directory", path)
		}
		if !overwrite {
			entries, _ := os.ReadDir(path)
			if len(entries) > 0 {
				return fmt.Errorf("writer: jsonl output %s exists; use overwrite to replace it", path)
			}
		} else if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	for _, sub := range []string{"cfg", "subarray", "events"} {
		if err := os.MkdirAll(filepath.Join(path, sub), 0o755); err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	b.dir = path
	return nil
}

func (b *jsonlBackend) Close() error {
	for layer, byEvent := range b.telIndex {
		if err := b.writeIndex(layer, byEvent); err != nil {
			return err
		}
	}
	for _, f := range b.files {
		if err := f.Close(); err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	return nil
}

func (b *jsonlBackend) writeIndex(layer string, byEvent map[int][]int) error {
	idxPath := filepath.Join(b.dir, "events", layer+"_index.jsonl")
	f, err := os.Create(idxPath)
	if err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	defer f.Close()

	eventIDs := make([]int, 0, len(byEvent))
	for id := range byEvent {
		eventIDs = append(eventIDs, id)
	}
	sort.Ints(eventIDs)

	enc := json.NewEncoder(f)
	for _, id := range eventIDs {
		tels := append([]int(nil), byEvent[id]...)
		sort.Ints(tels)
		if err := enc.Encode(map[string]interface{}{"event_id": id, "tel_ids": tels}); err != nil {
			return fmt.Errorf("writer: %w", err)
		}
	}
	return nil
}

func (b *jsonlBackend) encoderFor(relPath string) (*json.Encoder, error) {
	if enc, ok := b.encoders[relPath]; ok {
		return enc, nil
	}
	full := filepath.Join(b.dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}
	enc := json.NewEncoder(f)
	b.files[relPath] = f
	b.encoders[relPath] = enc
	return enc, nil
}

func (b *jsonlBackend) writeRecord(relPath string, v interface{}) error {
	enc, err := b.encoderFor(relPath)
	if err != nil {
		return err
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	return nil
}

func (b *jsonlBackend) writeTelRecord(layer string, eventID, telID int, v interface{}) error {
	if err := b.writeRecord(filepath.Join("events", layer+".jsonl"), v); err != nil {
		return err
	}
	if b.telIndex[layer] == nil {
		b.telIndex[layer] = map[int][]int{}
	}
	b.telIndex[layer][eventID] = append(b.telIndex[layer][eventID], telID)
	return nil
}

func (b *jsonlBackend) WriteSubarray(sub *camera.SubarrayDescription) error {
	return b.writeRecord(filepath.Join("subarray", "subarray.json"), sub)
}

func (b *jsonlBackend) WriteSimulationConfig(runID string, shower *pipeline.ShowerTruth) error {
	return b.writeRecord(filepath.Join("cfg", "simulation_config.json"), map[string]interface{}{
		"run_id": runID, "shower": shower,
	})
}

func (b *jsonlBackend) WriteAtmosphereModel(name string) error {
	return b.writeRecord(filepath.Join("cfg", "atmosphere_model.json"), map[string]string{"name": name})
}

func (b *jsonlBackend) WriteMetaparam(runID string) error {
	return b.writeRecord(filepath.Join("cfg", "metaparam.json"), map[string]string{"run_id": runID})
}

func (b *jsonlBackend) WriteR0(event *pipeline.ArrayEvent) error {
	for telID, wf := range event.R0.Tels {
		if err := b.writeTelRecord("r0", event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID, "waveform": wf,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WriteR1(event *pipeline.ArrayEvent) error {
	for telID, wf := range event.R1.Tels {
		if err := b.writeTelRecord("r1", event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID, "waveform": wf,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WriteDL0(event *pipeline.ArrayEvent) error {
	for telID, wf := range event.DL0.Tels {
		if err := b.writeTelRecord("dl0", event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID, "waveform": wf,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WriteDL1(event *pipeline.ArrayEvent) error {
	for telID, cam := range event.DL1.Tels {
		if err := b.writeTelRecord("dl1", event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID,
			"peak_time": cam.PeakTime, "parameters": cam.ImageParameters,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WriteDL1Image(event *pipeline.ArrayEvent) error {
	for telID, cam := range event.DL1.Tels {
		if err := b.writeTelRecord("dl1_image", event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID, "image": cam.Image, "mask": cam.Mask,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WriteDL2(event *pipeline.ArrayEvent) error {
	if event.DL2 == nil {
		return nil
	}
	if err := b.writeRecord(filepath.Join("events", "dl2", "geometry.jsonl"), map[string]interface{}{
		"event_id": event.EventID, "geometry": event.DL2.Geometry, "energy": event.DL2.Energy,
		"particle": event.DL2.Particle,
	}); err != nil {
		return err
	}
	for telID, tel := range event.DL2.Tels {
		if err := b.writeTelRecord(filepath.Join("dl2", "tel"), event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID, "impact_parameters": tel.ImpactParameters,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WriteSimulationShower(event *pipeline.ArrayEvent) error {
	if event.Simulation == nil || event.Simulation.Shower == nil {
		return nil
	}
	return b.writeRecord(filepath.Join("events", "simulation.jsonl"), map[string]interface{}{
		"event_id": event.EventID, "shower": event.Simulation.Shower,
	})
}

func (b *jsonlBackend) WriteSimulatedCamera(event *pipeline.ArrayEvent) error {
	if event.Simulation == nil {
		return nil
	}
	for telID, cam := range event.Simulation.Tels {
		if err := b.writeTelRecord(filepath.Join("simulation", "camera"), event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID, "true_image": cam.TrueImage,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WriteMonitor(event *pipeline.ArrayEvent) error {
	if event.Monitor == nil {
		return nil
	}
	for telID, mon := range event.Monitor.Tels {
		if err := b.writeTelRecord("monitor", event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID,
			"pedestal_mean": mon.PedestalMean, "pedestal_std": mon.PedestalStd,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *jsonlBackend) WritePointing(event *pipeline.ArrayEvent) error {
	if event.Pointing == nil {
		return nil
	}
	if err := b.writeRecord(filepath.Join("events", "pointing.jsonl"), map[string]interface{}{
		"event_id": event.EventID,
		"array_altitude": event.Pointing.ArrayAltitude, "array_azimuth": event.Pointing.ArrayAzimuth,
	}); err != nil {
		return err
	}
	for telID, tp := range event.Pointing.Tels {
		if err := b.writeTelRecord(filepath.Join("pointing", "tel"), event.EventID, telID, map[string]interface{}{
			"event_id": event.EventID, "tel_id": telID, "altitude": tp.Altitude, "azimuth": tp.Azimuth,
		}); err != nil {
			return err
		}
	}
	return nil
}
