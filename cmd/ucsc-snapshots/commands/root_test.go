package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ucsc-snapshots/internal/bed"
	"ucsc-snapshots/internal/snapshot"
	"ucsc-snapshots/internal/ucsc"
	"ucsc-snapshots/internal/ucsc/ucsctest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseFormats(t *testing.T) {
	formats, err := parseFormats([]string{"png", "PDF"})
	require.NoError(t, err)
	require.Equal(t, []ucsc.Format{ucsc.PNG, ucsc.PDF}, formats)

	_, err = parseFormats([]string{"pdf", "svg"})
	require.Error(t, err)
}

func TestParseAnnotations(t *testing.T) {
	annotations, err := parseAnnotations([]string{"cell=K562", "rep=2"})
	require.NoError(t, err)
	diff := cmp.Diff([]snapshot.Annotation{
		{Key: "cell", Value: "K562"},
		{Key: "rep", Value: "2"},
	}, annotations)
	if diff != "" {
		t.Fatal(diff)
	}

	_, err = parseAnnotations([]string{"cell"})
	require.Error(t, err)
}

func TestResolveHgsid(t *testing.T) {
	t.Setenv(hgsidEnv, "from-env")

	hgsid, err := resolveHgsid([]string{"regions.bed", "12345"})
	require.NoError(t, err)
	require.Equal(t, "12345", hgsid)

	hgsid, err = resolveHgsid([]string{"regions.bed"})
	require.NoError(t, err)
	require.Equal(t, "from-env", hgsid)

	t.Setenv(hgsidEnv, "")
	_, err = resolveHgsid([]string{"regions.bed"})
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.json5"))
	require.NoError(t, err)
	require.Equal(t, defaultConfig, cfg)
	require.Equal(t, ucsc.DefaultInterval, cfg.Interval())

	path := filepath.Join(dir, "ucsc-snapshots.json5")
	err = os.WriteFile(path, []byte(`{
		// mirror
		base_url: "https://genome-euro.ucsc.edu",
		interval_seconds: 20,
	}`), 0600)
	require.NoError(t, err)

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://genome-euro.ucsc.edu", cfg.BaseUrl)
	require.Equal(t, float64(20), cfg.IntervalSeconds)
	require.Equal(t, ucsc.DefaultUserAgent, cfg.UserAgent)
	require.Equal(t, ".", cfg.OutDir)
}

func TestRun(t *testing.T) {
	server := ucsctest.NewServer(false)
	defer server.Close()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.json5")
	err := os.WriteFile(configPath, []byte(fmt.Sprintf(`{
		base_url: %q,
		disable_browser_transport: true,
	}`, server.URL)), 0600)
	require.NoError(t, err)

	regionsPath := filepath.Join(dir, "regions.bed")
	err = os.WriteFile(regionsPath, []byte("chr1\t100\t200\tgeneA\t5\t-\n"), 0600)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	dumpDir := filepath.Join(dir, "dumps")
	err = run(context.Background(), []string{regionsPath, "12345"}, flags{
		formats:     []string{"pdf", "png"},
		annotations: []string{"cell=K562"},
		reverse:     true,
		noDelay:     true,
		outDir:      outDir,
		configPath:  configPath,
		dumpHttp:    dumpDir,
	}, true)
	require.NoError(t, err)

	sessionDir := filepath.Join(outDir, "ucsc-snapshots-hgsid-12345-cell-K562")
	pdf, err := os.ReadFile(filepath.Join(sessionDir, "geneA-5-chr1-100-200.pdf"))
	require.NoError(t, err)
	require.Equal(t, ucsctest.PDFBytes, pdf)
	_, err = os.Stat(filepath.Join(sessionDir, "geneA-5-chr1-100-200.png"))
	require.NoError(t, err)

	dumps, err := os.ReadDir(dumpDir)
	require.NoError(t, err)
	require.Len(t, dumps, len(server.Requests()))
	require.True(t, server.Flipped())
}

func TestRunMissingRegions(t *testing.T) {
	err := run(context.Background(), []string{filepath.Join(t.TempDir(), "none.bed"), "12345"}, flags{
		formats:    []string{"png"},
		noDelay:    true,
		configPath: filepath.Join(t.TempDir(), "none.json5"),
	}, false)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderSummary(t *testing.T) {
	var out bytes.Buffer
	renderSummary(&out, []snapshot.Artifact{
		{
			Region:  bed.Region{Chrom: "chr1", Start: 100, End: 200, Name: "geneA", Score: "5", Strand: "-", Line: 1},
			Format:  ucsc.PDF,
			Path:    "ucsc-snapshots-hgsid-12345/geneA-5-chr1-100-200.pdf",
			Bytes:   17,
			Written: time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC),
		},
	})
	require.Contains(t, out.String(), "chr1:100-200")
	require.Contains(t, out.String(), "geneA-5-chr1-100-200.pdf")
	require.Contains(t, out.String(), "17 B")
	require.Contains(t, out.String(), "12:30:05")
}
