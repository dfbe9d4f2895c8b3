// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package pipeline

import "fmt"

// LocalPeakExtractorConfig configures the reference charge extractor:
// each pixel's own waveform peak is located, then a fixed window around
// it is integrated (§6 configuration, calibrator.image_extractor_type).
type LocalPeakExtractorConfig struct {
	WindowShift     int
	WindowWidth     int
	ApplyCorrection bool
}

// CalibratorConfig selects and configures the charge extractor. The
// waveform-level R0/R1 decoding itself is out of scope (§1); this stage
// only implements the DL1 image + peak_time integration step that sits
// on the in-scope side of that boundary.
type CalibratorConfig struct {
	ImageExtractorType string
	LocalPeak          LocalPeakExtractorConfig
}

// Calibrator fills DL1 image + peak_time per telescope from R1 waveforms
// (§2 data flow).
type Calibrator struct {
	Config CalibratorConfig
}

func (c *Calibrator) Name() string { return "Calibrator" }

func (c *Calibrator) Apply(event *ArrayEvent) error {
	if event.R1 == nil {
		return nil
	}
	if event.DL1 == nil {
		event.DL1 = &DL1Data{Tels: map[int]*DL1Camera{}}
	}

	width := c.Config.LocalPeak.WindowWidth
	if width <= 0 {
		width = 7
	}
	shift := c.Config.LocalPeak.WindowShift

	for telID, waveform := range event.R1.Tels {
		npix := len(waveform.Samples)
		image := make([]float64, npix)
		peakTime := make([]float64, npix)

		for pix, samples := range waveform.Samples {
			if len(samples) == 0 {
				continue
			}
			peakIdx := 0
			peakVal := samples[0]
			for i, v := range samples {
				if v > peakVal {
					peakVal = v
					peakIdx = i
				}
			}
			start := peakIdx - shift
			if start < 0 {
				start = 0
			}
			end := start + width
			if end > len(samples) {
				end = len(samples)
			}

			sum := 0.0
			for _, v := range samples[start:end] {
				sum += v
			}
			if c.Config.LocalPeak.ApplyCorrection {
				sum /= 0.9 // fixed containment-fraction correction for a truncated window
			}

			image[pix] = sum
			peakTime[pix] = float64(peakIdx)
		}

		event.DL1.Tels[telID] = &DL1Camera{Image: image, PeakTime: peakTime}
	}
	return c.checkInvariant(event)
}

func (c *Calibrator) checkInvariant(event *ArrayEvent) error {
	for telID, cam := range event.DL1.Tels {
		for _, v := range cam.Image {
			if v < 0 {
				return &StageError{Kind: ErrInvariantViolation, Stage: c.Name(),
					Err: fmt.Errorf("negative intensity after calibration on tel %d", telID)}
			}
		}
	}
	return nil
}
