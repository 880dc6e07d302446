package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGenerateDefaultBatch(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LNKGEN_OUTPUT_PATH", dir)
	t.Setenv("LNKGEN_ENV", "development")

	var out bytes.Buffer
	require.NoError(t, runGenerate(nil, &out))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.FileExists(t, filepath.Join(dir, "setup_route19_3072K_1bit_48K_24bit_1ms.xml"))
	assert.Contains(t, out.String(), "4 written to")
}

func TestRunGenerateReportsFailedJobs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LNKGEN_OUTPUT_PATH", dir)
	t.Setenv("LNKGEN_ENV", "development")

	jobs := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(jobs, []byte(`jobs:
  - {route: 3, rx_rate: 48, rx_word_length: 16, tx_rate: 48, tx_word_length: 16, frame_size: 2}
  - {route: 5, rx_rate: 48, rx_word_length: 16, tx_rate: 48, tx_word_length: 16, frame_size: 2}
`), 0o600))

	var out bytes.Buffer
	err := runGenerate([]string{"-jobs", jobs}, &out)
	assert.ErrorIs(t, err, errJobsFailed)
	assert.Contains(t, out.String(), "unknown route: route=5")
	assert.FileExists(t, filepath.Join(dir, "setup_route3_48K_16bit_48K_16bit_2ms.xml"))
}

func TestRunRoutes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRoutes(nil, &out))
	assert.Contains(t, out.String(), "ROUTE")
	assert.Contains(t, out.String(), "pcm")
}

func TestRunBin2DP(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LNKGEN_OUTPUT_PATH", dir)
	t.Setenv("LNKGEN_BIN2LNK_VERSION", "")
	bin := filepath.Join(dir, "fw.bin")
	require.NoError(t, os.WriteFile(bin, []byte{0x01, 0x02, 0x03, 0x04, 0x05}, 0o600))

	var out bytes.Buffer
	require.NoError(t, runBin2DP([]string{"-in", bin, "-out", dir, "-version", "103"}, &out))

	data, err := os.ReadFile(filepath.Join(dir, "fw_32Bit_1ch.txt"))
	require.NoError(t, err)
	assert.Equal(t, "04030201\n00000005\n", string(data))

	err = runBin2DP([]string{"-in", filepath.Join(dir, "absent.bin"), "-out", dir}, &out)
	assert.Error(t, err)
	assert.Error(t, runBin2DP(nil, &out))
}

func TestRunBin2DPVersionFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LNKGEN_OUTPUT_PATH", dir)
	t.Setenv("LNKGEN_BIN2LNK_VERSION", "101")
	bin := filepath.Join(dir, "fw.bin")
	require.NoError(t, os.WriteFile(bin, []byte{0x01, 0x02, 0x03, 0x04}, 0o600))

	var out bytes.Buffer
	require.NoError(t, runBin2DP([]string{"-in", bin, "-out", dir}, &out))

	data, err := os.ReadFile(filepath.Join(dir, "fw_32Bit_1ch.txt"))
	require.NoError(t, err)
	assert.Equal(t, "00000000\n00000000\n04030201\n", string(data))

	require.NoError(t, runBin2DP([]string{"-in", bin, "-out", dir, "-version", "103"}, &out))
	data, err = os.ReadFile(filepath.Join(dir, "fw_32Bit_1ch.txt"))
	require.NoError(t, err)
	assert.Equal(t, "04030201\n", string(data))
}
