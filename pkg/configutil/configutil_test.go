package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string  `json:"base_url"`
	Interval float64 `json:"interval_seconds"`
	OutDir   string  `json:"out_dir"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments are allowed
		base_url: "https://genome.ucsc.edu",
		interval_seconds: 15,
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		base_url: "https://genome-euro.ucsc.edu",
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{
		BaseUrl:  "https://genome-euro.ucsc.edu",
		Interval: 15,
	}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOr(t *testing.T) {
	defaults := testConfig{
		BaseUrl:  "https://genome.ucsc.edu",
		Interval: 15,
		OutDir:   ".",
	}

	cfg, err := ReadConfigOr(filepath.Join(t.TempDir(), "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{out_dir: "snapshots"}`)
	cfg, err = ReadConfigOr(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, "snapshots", cfg.OutDir)
	require.Equal(t, "https://genome.ucsc.edu", cfg.BaseUrl)
	require.Equal(t, float64(15), cfg.Interval)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{base_url: `)
	_, err := ReadConfigOr(filepath.Join(dir, "config.json5"), testConfig{})
	require.Error(t, err)
}
