package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/reasset/pkg/mdf"
	"github.com/joshuapare/reasset/pkg/uvar"
)

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	logFile, logLevel, revision = "", "info", 0
	dumpFormat, dumpOut = "json", ""
	verifyStrict = false
	varsEmbeds, varsFilter = false, ""
	editOut, editVector, editDryRun = "", false, false
}

// writeUVar writes a small container with one embed to a temp dir.
func writeUVar(t *testing.T) string {
	t.Helper()
	c := uvar.New("Settings")
	c.AddVariable("Volume", uvar.KindFloat32, 0).Value.Floats = []float64{0.5}
	c.AddVariable("Fullscreen", uvar.KindBool, 0).Value.Bool = true
	c.AddVariable("Title", uvar.KindString, 0).Value.Str = "Main Menu"
	sub := uvar.New("Audio")
	sub.AddVariable("MusicLevel", uvar.KindInt32, 0).Value.Ints = []int64{7}
	c.Embeds = append(c.Embeds, sub)

	data, err := uvar.Encode(c, nil)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "settings.user.3")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// writeMDF writes a one-material file at revision 31 to a temp dir.
func writeMDF(t *testing.T) string {
	t.Helper()
	f := &mdf.File{Revision: 31, HeaderVersion: 1, Materials: []*mdf.Material{{
		Name:       "Body_Mat",
		ShaderPath: "Shader/Standard/Body.fx",
		Flags:      mdf.FlagBaseTwoSideEnable,
		Textures:   []mdf.Texture{{Type: "BaseDielectricMap", Path: "tex/body_alb.tex"}},
		Params: []mdf.Param{
			{Name: "BaseColor", Components: 4, Values: [4]float32{1, 0.5, 0.25, 1}},
			{Name: "Roughness", Components: 1, Values: [4]float32{0.8}},
		},
	}}}
	data, err := mdf.Encode(f, nil)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "body.mdf2.31")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
