package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstDiff(t *testing.T) {
	assert.Equal(t, -1, firstDiff([]byte{1, 2, 3}, []byte{1, 2, 3}))
	assert.Equal(t, 1, firstDiff([]byte{1, 2, 3}, []byte{1, 9, 3}))
	assert.Equal(t, 2, firstDiff([]byte{1, 2}, []byte{1, 2, 3}))
	assert.Equal(t, 0, firstDiff(nil, []byte{1}))
}

func TestDigest(t *testing.T) {
	d := digest([]byte("reasset"))
	assert.Len(t, d, 64)
	assert.Equal(t, d, digest([]byte("reasset")))
	assert.NotEqual(t, d, digest([]byte("reasset2")))
}

func TestVerifyCommand(t *testing.T) {
	resetFlags()
	verifyStrict = true
	args := []string{writeUVar(t), writeMDF(t)}

	output, err := captureOutput(t, func() error {
		return runVerify(args)
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"✓", "(uvar,", "(mdf,", "blake3"})
	assertNotContains(t, output, []string{"✗", "~"})
}

func TestVerifyJSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	args := []string{writeMDF(t)}

	output, err := captureOutput(t, func() error {
		return runVerify(args)
	})
	require.NoError(t, err)
	assertJSON(t, output)
	assertContains(t, output, []string{`"identical": true`, `"kind": "mdf"`})
}

func TestVerifyDecodeFailure(t *testing.T) {
	resetFlags()
	bad := filepath.Join(t.TempDir(), "broken.user.3")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3}, 0o644))
	args := []string{writeUVar(t), bad}

	output, err := captureOutput(t, func() error {
		return runVerify(args)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errVerifyFailed))
	assert.Contains(t, err.Error(), "1 of 2 files")
	assertContains(t, output, []string{"✓", "✗ " + bad})
}

func TestVerifyStrictDifference(t *testing.T) {
	path := writeUVar(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// The container name hash is recomputed on encode.
	data[0x28] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	res := verifyFile(path)
	require.Empty(t, res.Error)
	assert.False(t, res.Identical)
	assert.NotEqual(t, res.Digest, res.Reencoded)
	require.NotNil(t, res.FirstDiffAt)
	assert.Equal(t, 0x28, *res.FirstDiffAt)

	resetFlags()
	output, err := captureOutput(t, func() error {
		return runVerify([]string{path})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"re-encodes differently from offset 0x28"})
}

func TestVerifyDifferenceAtOffsetZero(t *testing.T) {
	var res verifyResult
	res.compare([]byte{0x01, 0x02}, []byte{0xFF, 0x02})
	assert.False(t, res.Identical)
	require.NotNil(t, res.FirstDiffAt)
	assert.Equal(t, 0, *res.FirstDiffAt)

	b, err := json.MarshalIndent(res, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(b), `"firstDiffAt": 0`)

	res.compare([]byte{1}, []byte{1})
	assert.True(t, res.Identical)
	assert.Nil(t, res.FirstDiffAt)
	b, err = json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "firstDiffAt")
}
