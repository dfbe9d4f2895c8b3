// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package config loads and validates the pipeline's JSON configuration
// file (§6 Configuration). The runtime setter-table pattern the source
// uses is unnecessary here: JSON is decoded once, at startup, straight
// into explicit per-component structs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LocalPeakExtractor mirrors calibrator.LocalPeakExtractor in the JSON
// schema.
type LocalPeakExtractor struct {
	WindowShift     int  `json:"window_shift"`
	WindowWidth     int  `json:"window_width"`
	ApplyCorrection bool `json:"apply_correction"`
}

// Calibrator mirrors the "calibrator" root key.
type Calibrator struct {
	ImageExtractorType string             `json:"image_extractor_type"`
	LocalPeakExtractor LocalPeakExtractor `json:"LocalPeakExtractor"`
}

// TailcutsCleaner mirrors image_processor.TailcutsCleaner.
type TailcutsCleaner struct {
	PictureThresh             float64 `json:"picture_thresh"`
	BoundaryThresh            float64 `json:"boundary_thresh"`
	KeepIsolatedPixels        bool    `json:"keep_isolated_pixels"`
	MinNumberPictureNeighbors int     `json:"min_number_picture_neighbors"`
}

// ImageProcessor mirrors the "image_processor" root key.
type ImageProcessor struct {
	PoissonNoise     float64         `json:"poisson_noise"`
	ImageCleanerType string          `json:"image_cleaner_type"`
	TailcutsCleaner  TailcutsCleaner `json:"TailcutsCleaner"`
	CutPixelDistance bool            `json:"cut_pixel_distance"`
	CutRadius        float64         `json:"cut_radius"`
}

// ReconstructorConfig mirrors a single per-reconstructor sub-object under
// "shower_processor".
type ReconstructorConfig struct {
	ImageQuery    string `json:"ImageQuery"`
	UseFakeHillas bool   `json:"use_fake_hillas"`
}

// ShowerProcessor mirrors the "shower_processor" root key.
type ShowerProcessor struct {
	GeometryReconstructionTypes []string                       `json:"GeometryReconstructionTypes"`
	MaxLeakage2                 float64                        `json:"max_leakage2"`
	Reconstructors              map[string]ReconstructorConfig `json:"Reconstructors"`
}

// DataWriter mirrors the "data_writer" root key, including every
// write_* layer-selection flag from §4.7.
type DataWriter struct {
	OutputType string `json:"output_type"`
	Overwrite  bool   `json:"overwrite"`

	WriteR0                bool `json:"write_r0"`
	WriteR1                bool `json:"write_r1"`
	WriteDL0               bool `json:"write_dl0"`
	WriteDL1               bool `json:"write_dl1"`
	WriteDL1Image          bool `json:"write_dl1_image"`
	WriteDL2               bool `json:"write_dl2"`
	WriteSimulationShower  bool `json:"write_simulation_shower"`
	WriteSimulatedCamera   bool `json:"write_simulated_camera"`
	WriteMonitor           bool `json:"write_monitor"`
	WritePointing          bool `json:"write_pointing"`
	WriteSubarray          bool `json:"write_subarray"`
	WriteSimulationConfig  bool `json:"write_simulation_config"`
	WriteAtmosphereModel   bool `json:"write_atmosphere_model"`
	WriteMetaparam         bool `json:"write_metaparam"`
}

// Config is the full, decoded configuration file (§6).
type Config struct {
	Calibrator      Calibrator      `json:"calibrator"`
	ImageProcessor  ImageProcessor  `json:"image_processor"`
	ShowerProcessor ShowerProcessor `json:"shower_processor"`
	DataWriter      DataWriter      `json:"data_writer"`
}

// Default returns the configuration used when no `-c` flag is given: a
// single LocalPeakExtractor calibrator, tailcuts cleaning with
// conservative thresholds, and a single HillasReconstructor with no
// quality predicate.
func Default() Config {
	return Config{
		Calibrator: Calibrator{
			ImageExtractorType: "LocalPeakExtractor",
			LocalPeakExtractor: LocalPeakExtractor{WindowShift: 3, WindowWidth: 7, ApplyCorrection: true},
		},
		ImageProcessor: ImageProcessor{
			ImageCleanerType: "Tailcuts_cleaner",
			TailcutsCleaner: TailcutsCleaner{
				PictureThresh: 6, BoundaryThresh: 3,
				KeepIsolatedPixels: false, MinNumberPictureNeighbors: 2,
			},
		},
		ShowerProcessor: ShowerProcessor{
			GeometryReconstructionTypes: []string{"HillasReconstructor"},
			Reconstructors:              map[string]ReconstructorConfig{},
		},
		DataWriter: DataWriter{
			OutputType: "jsonl",
			WriteDL1:   true,
			WriteDL2:   true,
			WriteSubarray: true,
		},
	}
}

// Load reads and strictly decodes a configuration file. Unrecognized
// keys are a Configuration error (§7) rather than being silently
// ignored, since the source's dynamic setter-table would have rejected
// them too.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}
