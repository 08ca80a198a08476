package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"ucsc-snapshots/internal/ucsc"

	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	root := t.TempDir()

	table := []struct {
		name        string
		score       string
		annotations []Annotation
		format      ucsc.Format
		expected    string
	}{
		{
			name: "geneA", score: "5", format: ucsc.PDF,
			expected: "ucsc-snapshots-hgsid-12345/geneA-5-chr1-100-200.pdf",
		},
		{
			name: "geneA", score: "5", format: ucsc.PNG,
			expected: "ucsc-snapshots-hgsid-12345/geneA-5-chr1-100-200.png",
		},
		{
			name: ".", score: ".", format: ucsc.PDF,
			expected: "ucsc-snapshots-hgsid-12345/chr1-100-200.pdf",
		},
		{
			name: "geneA", score: ".", format: ucsc.PDF,
			expected: "ucsc-snapshots-hgsid-12345/geneA-chr1-100-200.pdf",
		},
		{
			name: ".", score: "960", format: ucsc.PNG,
			expected: "ucsc-snapshots-hgsid-12345/960-chr1-100-200.png",
		},
		{
			name: "geneA", score: "5", format: ucsc.PNG,
			annotations: []Annotation{{Key: "cell", Value: "K562"}, {Key: "rep", Value: "1"}},
			expected:    "ucsc-snapshots-hgsid-12345-cell-K562-rep-1/geneA-5-chr1-100-200.png",
		},
		{
			name: "HLA-A/B", score: "-1.5", format: ucsc.PDF,
			annotations: []Annotation{{Key: "mark", Value: "H3K4me3 peak"}},
			expected:    "ucsc-snapshots-hgsid-12345-mark-H3K4me3_peak/HLA_A_B-_1.5-chr1-100-200.pdf",
		},
	}

	for _, row := range table {
		path, err := Filename(root, "12345", "chr1:100-200", row.name, row.score, row.annotations, row.format)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(root, row.expected), path)

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestFilenameDeterministic(t *testing.T) {
	root := t.TempDir()
	annotations := []Annotation{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}

	first, err := Filename(root, "12345", "chrX:5-10", "n", "s", annotations, ucsc.PNG)
	require.NoError(t, err)
	second, err := Filename(root, "12345", "chrX:5-10", "n", "s", annotations, ucsc.PNG)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFilenameAnnotationOrder(t *testing.T) {
	forward := Dir(".", "12345", []Annotation{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}})
	backward := Dir(".", "12345", []Annotation{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}})
	require.NotEqual(t, forward, backward)
	require.Equal(t, "ucsc-snapshots-hgsid-12345-a-1-b-2", forward)
	require.Equal(t, "ucsc-snapshots-hgsid-12345-b-2-a-1", backward)
}

func TestFilenameDirectoryError(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	_, err := Filename(blocker, "12345", "chr1:1-2", ".", ".", nil, ucsc.PNG)
	require.Error(t, err)
}

func TestParseAnnotation(t *testing.T) {
	a, err := ParseAnnotation("cell=K562")
	require.NoError(t, err)
	require.Equal(t, Annotation{Key: "cell", Value: "K562"}, a)

	a, err = ParseAnnotation("expr=a=b")
	require.NoError(t, err)
	require.Equal(t, Annotation{Key: "expr", Value: "a=b"}, a)

	for _, raw := range []string{"cell", "=K562", "cell=", ""} {
		_, err := ParseAnnotation(raw)
		require.Error(t, err, raw)
	}
}
