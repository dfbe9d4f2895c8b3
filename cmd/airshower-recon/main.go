// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Command airshower-recon runs the calibration, image-cleaning,
// stereoscopic-reconstruction pipeline over one or more input runs and
// writes the selected data levels to matching output files (§6 CLI).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ctapipe-go/airshower/config"
	"github.com/ctapipe-go/airshower/imaging"
	"github.com/ctapipe-go/airshower/pipeline"
	"github.com/ctapipe-go/airshower/query"
	"github.com/ctapipe-go/airshower/reconstruct"
	"github.com/ctapipe-go/airshower/source"
	"github.com/ctapipe-go/airshower/writer"
)

// pathList collects a repeatable flag's values in the order given, the
// way a stdlib flag.Value must to support `-i a -i b -i c` (§6 CLI).
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }
func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	var inputs, outputs pathList
	flag.Var(&inputs, "i", "input path (repeatable)")
	flag.Var(&outputs, "o", "output path (repeatable)")
	configPath := flag.String("c", "", "configuration file (JSON)")
	maxLeakage2 := flag.Float64("l", 0, "override max_leakage2 quality cut (0 keeps the configured value)")
	telList := flag.String("s", "", "comma-separated telescope id restriction list")

	flag.Parse()

	if len(inputs) != len(outputs) {
		log.Println("count(-i) must equal count(-o)")
		os.Exit(1)
	}
	if len(inputs) == 0 {
		log.Println("at least one -i/-o pair is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
	if *maxLeakage2 > 0 {
		cfg.ShowerProcessor.MaxLeakage2 = *maxLeakage2
	}
	if err := validateConfig(cfg); err != nil {
		log.Println(err)
		os.Exit(1)
	}

	selected, err := parseTelescopeList(*telList)
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}

	for i := range inputs {
		if err := runOne(inputs[i], outputs[i], cfg, selected); err != nil {
			log.Printf("%s -> %s: %v", inputs[i], outputs[i], err)
			continue
		}
	}
}

// validateConfig checks the configuration knobs that select a named
// implementation against the set this build actually supports, so a typo
// or an unimplemented option is a Configuration error caught before any
// input is opened (§7), rather than surfacing mid-run or silently
// falling back to a default.
func validateConfig(cfg config.Config) error {
	reconstructorNames := cfg.ShowerProcessor.GeometryReconstructionTypes
	if len(reconstructorNames) == 0 {
		reconstructorNames = []string{"HillasReconstructor"}
	}
	for _, name := range reconstructorNames {
		if _, ok := pipeline.Reconstructors[name]; !ok {
			return fmt.Errorf("shower_processor: unknown GeometryReconstructionTypes entry %q", name)
		}
	}

	if cleaner := cfg.ImageProcessor.ImageCleanerType; cleaner != "" && cleaner != "Tailcuts_cleaner" {
		return fmt.Errorf("image_processor: unknown image_cleaner_type %q", cleaner)
	}

	return nil
}

func parseTelescopeList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid -s telescope id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runOne(inputPath, outputPath string, cfg config.Config, selected []int) error {
	src, err := source.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer src.Close()

	dw, err := writer.Open(outputPath, cfg.DataWriter, "")
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer dw.Close()

	if err := dw.WriteSubarrayOnce(src.Subarray()); err != nil {
		return fmt.Errorf("writing subarray: %w", err)
	}
	if err := dw.WriteMetaparamOnce(); err != nil {
		return fmt.Errorf("writing metaparam: %w", err)
	}
	if name, ok := src.AtmosphereModel(); ok {
		if err := dw.WriteAtmosphereModelOnce(name); err != nil {
			return fmt.Errorf("writing atmosphere model: %w", err)
		}
	}
	wroteSimConfig := false
	if _, shower, ok := src.SimulationConfig(); ok {
		if err := dw.WriteSimulationConfigOnce(shower); err != nil {
			return fmt.Errorf("writing simulation config: %w", err)
		}
		wroteSimConfig = true
	}

	stages, err := buildStages(cfg, src, selected)
	if err != nil {
		return err
	}
	stages = append(stages, dw)

	events := make(chan *pipeline.ArrayEvent)
	go func() {
		defer close(events)
		for {
			event, ok, err := src.Next()
			if err != nil {
				log.Printf("event source: %v", err)
				return
			}
			if !ok {
				return
			}
			events <- event
		}
	}()

	out, fatal := stages.Run(events, func(event *pipeline.ArrayEvent, stage string, err error) {
		log.Printf("event %d: %s: %v", event.EventID, stage, err)
	})
	for event := range out {
		// The source didn't have a run-level simulation_config.json to
		// read upfront; fall back to the first simulated event's own
		// truth, same as a source with no bulk metadata at all would.
		if !wroteSimConfig && event.Simulation != nil && event.Simulation.Shower != nil {
			if err := dw.WriteSimulationConfigOnce(event.Simulation.Shower); err != nil {
				log.Printf("writing simulation config: %v", err)
			}
			wroteSimConfig = true
		}
	}
	if err := <-fatal; err != nil {
		return fmt.Errorf("aborted: %w", err)
	}
	return nil
}

func buildStages(cfg config.Config, src *source.JSONLSource, selected []int) (pipeline.Pipeline, error) {
	calibrator := &pipeline.Calibrator{Config: pipeline.CalibratorConfig{
		ImageExtractorType: cfg.Calibrator.ImageExtractorType,
		LocalPeak: pipeline.LocalPeakExtractorConfig{
			WindowShift:     cfg.Calibrator.LocalPeakExtractor.WindowShift,
			WindowWidth:     cfg.Calibrator.LocalPeakExtractor.WindowWidth,
			ApplyCorrection: cfg.Calibrator.LocalPeakExtractor.ApplyCorrection,
		},
	}}

	imageProcessor := &pipeline.ImageProcessor{
		Subarray: src.Subarray(),
		Config: pipeline.ImageProcessorConfig{
			ImageCleanerType: cfg.ImageProcessor.ImageCleanerType,
			Tailcuts: imagingTailcuts(cfg),
			CutPixelDistance: cfg.ImageProcessor.CutPixelDistance,
			CutRadiusDeg:     cfg.ImageProcessor.CutRadius,
			PoissonNoise:     cfg.ImageProcessor.PoissonNoise,
		},
	}

	reconstructorNames := cfg.ShowerProcessor.GeometryReconstructionTypes
	if len(reconstructorNames) == 0 {
		reconstructorNames = []string{"HillasReconstructor"}
	}

	stages := pipeline.Pipeline{calibrator, imageProcessor}
	for _, name := range reconstructorNames {
		showerProcessor, err := buildShowerProcessor(cfg, src, selected, name)
		if err != nil {
			return nil, err
		}
		stages = append(stages, showerProcessor)
	}

	return stages, nil
}

// buildShowerProcessor builds one ShowerProcessor stage for a single
// configured reconstructor name; a run with multiple
// GeometryReconstructionTypes entries runs one of these per name, each
// writing its own entry into DL2.Geometry (§4.6).
func buildShowerProcessor(cfg config.Config, src *source.JSONLSource, selected []int, name string) (*pipeline.ShowerProcessor, error) {
	var predicate *query.Predicate
	var useFakeHillas bool
	if rc, ok := cfg.ShowerProcessor.Reconstructors[name]; ok {
		useFakeHillas = rc.UseFakeHillas
		if rc.ImageQuery != "" {
			p, err := query.Compile(rc.ImageQuery)
			if err != nil {
				return nil, fmt.Errorf("compiling ImageQuery for %s: %w", name, err)
			}
			predicate = p
		}
	}

	factory, ok := pipeline.Reconstructors[name]
	if !ok {
		return nil, fmt.Errorf("shower_processor: unknown GeometryReconstructionTypes entry %q", name)
	}
	recon := factory()
	if hs, ok := recon.(*reconstruct.HillasStereo); ok {
		hs.NameOverride = name
	}

	return &pipeline.ShowerProcessor{
		Subarray:    src.Subarray(),
		Reconstruct: recon,
		Config: pipeline.ShowerProcessorConfig{
			ReconstructorType:    name,
			SelectedTelescopeIDs: selected,
			ImageQuery:           predicate,
			UseFakeHillas:        useFakeHillas,
			MaxLeakage2:          cfg.ShowerProcessor.MaxLeakage2,
		},
	}, nil
}

func imagingTailcuts(cfg config.Config) imaging.TailcutsConfig {
	tc := cfg.ImageProcessor.TailcutsCleaner
	return imaging.TailcutsConfig{
		PictureThresh:             tc.PictureThresh,
		BoundaryThresh:            tc.BoundaryThresh,
		KeepIsolatedPixels:        tc.KeepIsolatedPixels,
		MinNumberPictureNeighbors: tc.MinNumberPictureNeighbors,
	}
}
