// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package writer

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ctapipe-go/airshower/camera"
	"github.com/ctapipe-go/airshower/pipeline"
)

func TestJSONLBackendWritesSubarrayAndDL1(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	b := newJSONLBackend()
	require.NoError(t, b.Open(dir, false))

	sub := camera.NewSubarrayDescription("array", camera.Position{})
	sub.AddTelescope(1, camera.TelescopeDescription{}, camera.Position{X: 1})
	require.NoError(t, b.WriteSubarray(sub))

	event := &pipeline.ArrayEvent{EventID: 42, DL1: &pipeline.DL1Data{Tels: map[int]*pipeline.DL1Camera{
		1: {PeakTime: []float64{1, 2, 3}},
	}}}
	require.NoError(t, b.WriteDL1(event))
	require.NoError(t, b.Close())

	subarrayData, err := os.ReadFile(filepath.Join(dir, "subarray", "subarray.json"))
	require.NoError(t, err)
	var decoded struct {
		Name string `json:"Name"`
	}
	require.NoError(t, json.Unmarshal(subarrayData, &decoded))
	require.Equal(t, "array", decoded.Name)

	f, err := os.Open(filepath.Join(dir, "events", "dl1_index.jsonl"))
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var idx struct {
		EventID int   `json:"event_id"`
		TelIDs  []int `json:"tel_ids"`
	}
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &idx))
	require.Equal(t, 42, idx.EventID)
	require.Equal(t, []int{1}, idx.TelIDs)
}

func TestJSONLBackendRejectsNonEmptyOutputWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644))

	b := newJSONLBackend()
	err := b.Open(dir, false)
	require.Error(t, err)
}

func TestJSONLBackendOverwriteReusesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644))

	b := newJSONLBackend()
	require.NoError(t, b.Open(dir, true))
	require.NoError(t, b.Close())
}
