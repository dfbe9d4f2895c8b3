// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalibratorIntegratesAroundPeak(t *testing.T) {
	c := &Calibrator{Config: CalibratorConfig{
		LocalPeak: LocalPeakExtractorConfig{WindowShift: 1, WindowWidth: 3, ApplyCorrection: false},
	}}
	event := &ArrayEvent{R1: &R1Data{Tels: map[int]*R1Waveform{
		1: {Samples: [][]float64{{0, 1, 10, 2, 0}}},
	}}}

	require.NoError(t, c.Apply(event))
	cam := event.DL1.Tels[1]
	require.Equal(t, float64(2), cam.PeakTime[0])
	// window [peak-shift, peak-shift+width) = [1, 4) -> samples[1:4] = 1+10+2
	require.Equal(t, float64(13), cam.Image[0])
}

func TestCalibratorAppliesContainmentCorrection(t *testing.T) {
	c := &Calibrator{Config: CalibratorConfig{
		LocalPeak: LocalPeakExtractorConfig{WindowShift: 0, WindowWidth: 1, ApplyCorrection: true},
	}}
	event := &ArrayEvent{R1: &R1Data{Tels: map[int]*R1Waveform{
		1: {Samples: [][]float64{{5}}},
	}}}

	require.NoError(t, c.Apply(event))
	require.InDelta(t, 5.0/0.9, event.DL1.Tels[1].Image[0], 1e-9)
}

func TestCalibratorNoR1IsNoop(t *testing.T) {
	c := &Calibrator{}
	event := &ArrayEvent{}
	require.NoError(t, c.Apply(event))
	require.Nil(t, event.DL1)
}

func TestCalibratorNegativeIntensityIsInvariantViolation(t *testing.T) {
	c := &Calibrator{}
	event := &ArrayEvent{R1: &R1Data{Tels: map[int]*R1Waveform{
		1: {Samples: [][]float64{{-5, -5, -5}}},
	}}}
	err := c.Apply(event)
	require.Error(t, err)
	var se *StageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ErrInvariantViolation, se.Kind)
	require.True(t, se.Fatal())
}
