// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctapipe-go/airshower/imaging"
)

func TestCompileRejectsUnknownField(t *testing.T) {
	_, err := Compile("not_a_field > 1")
	require.Error(t, err)
}

func TestEvalCombinedExpression(t *testing.T) {
	p, err := Compile("hillas_intensity > 100 && leakage_intensity_width_2 < 0.3 && hillas_width > 0 && morphology_n_pixels >= 5")
	require.NoError(t, err)

	pass := &imaging.Parameters{
		Hillas:        imaging.Hillas{Intensity: 150, Width: 0.1},
		Leakage:       imaging.Leakage{IntensityWidth2: 0.1},
		Morphology:    imaging.Morphology{NPixels: 10},
	}
	ok, err := p.Eval(pass)
	require.NoError(t, err)
	require.True(t, ok)

	fail := pass
	fail.Hillas.Intensity = 50
	ok, err = p.Eval(fail)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalParensAndOr(t *testing.T) {
	p, err := Compile("(hillas_intensity > 100 || hillas_intensity < 10) && morphology_n_islands == 1")
	require.NoError(t, err)
	ok, err := p.Eval(&imaging.Parameters{Hillas: imaging.Hillas{Intensity: 5}, Morphology: imaging.Morphology{NIslands: 1}})
	require.NoError(t, err)
	require.True(t, ok)
}
