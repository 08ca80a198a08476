package ucsc

import (
	"errors"
	"regexp"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestPNGExtractor(t *testing.T) {
	table := []struct {
		name     string
		body     string
		expected string
		matches  int
	}{
		{
			name:     "single image",
			body:     "<IMG SRC='../trash/hgt/hgt_genome_6243_68cdb0.png' BORDER=1 WIDTH=1000><BR>",
			expected: "../trash/hgt/hgt_genome_6243_68cdb0.png",
		},
		{
			name:     "lowercase double quoted",
			body:     `<div><img id="img_data" src="../trash/hgt/hgt_genome_1a_2b.png"></div>`,
			expected: "../trash/hgt/hgt_genome_1a_2b.png",
		},
		{
			name: "same image twice",
			body: "<IMG SRC='../trash/hgt/hgt_genome_1.png'>" +
				"<IMG SRC='../trash/hgt/hgt_genome_1.png'>",
			expected: "../trash/hgt/hgt_genome_1.png",
		},
		{
			name:    "no image",
			body:    "<HTML><BODY>Error: position not found</BODY></HTML>",
			matches: 0,
		},
		{
			name:    "other asset prefix",
			body:    "<IMG SRC='../images/logo.png'>",
			matches: 0,
		},
		{
			name: "two different images",
			body: "<IMG SRC='../trash/hgt/hgt_genome_1.png'>" +
				"<IMG SRC='../trash/hgt/hgt_genome_2.png'>",
			matches: 2,
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			ref, err := PNGExtractor{}.Extract([]byte(row.body))
			if row.expected != "" {
				require.NoError(t, err)
				require.Equal(t, row.expected, ref)
				return
			}
			var extractErr *ExtractionError
			require.True(t, errors.As(err, &extractErr))
			require.Equal(t, PNG, extractErr.Format)
			require.Equal(t, row.matches, extractErr.Matches)
		})
	}
}

func TestPNGExtractorCustomPattern(t *testing.T) {
	extractor := PNGExtractor{Pattern: regexp.MustCompile(`data-src="([^"]+\.png)"`)}
	ref, err := extractor.Extract([]byte(`<img data-src="/trash/hgt/x.png">`))
	require.NoError(t, err)
	require.Equal(t, "/trash/hgt/x.png", ref)
}

func TestPDFExtractor(t *testing.T) {
	table := []struct {
		name     string
		body     string
		expected string
		matches  int
	}{
		{
			name: "graphic and ideogram",
			body: `<UL>
<LI><A HREF="../trash/hgt/hgt_genome_1.pdf">the current browser graphic in PDF</A>
<LI><A HREF="../trash/hgt/hgt_ideo_1.pdf">the current chromosome ideogram in PDF</A>
</UL>`,
			expected: "../trash/hgt/hgt_genome_1.pdf",
		},
		{
			name:    "no pdf link",
			body:    `<A HREF="../cgi-bin/hgTracks">the current browser graphic in PDF</A>`,
			matches: 0,
		},
		{
			name:    "no links",
			body:    `<P>An error occurred</P>`,
			matches: 0,
		},
		{
			name: "ambiguous",
			body: `<A HREF="../trash/hgt/a.pdf">browser graphic</A>
<A HREF="../trash/hgt/b.pdf">browser graphic</A>`,
			matches: 2,
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			ref, err := PDFExtractor{}.Extract([]byte(row.body))
			if row.expected != "" {
				require.NoError(t, err)
				require.Equal(t, row.expected, ref)
				return
			}
			var extractErr *ExtractionError
			require.True(t, errors.As(err, &extractErr))
			require.Equal(t, PDF, extractErr.Format)
			require.Equal(t, row.matches, extractErr.Matches)
		})
	}
}

func TestPDFExtractorUnreadableBody(t *testing.T) {
	cause := errors.New("connection reset")
	_, err := PDFExtractor{}.extract(iotest.ErrReader(cause))

	var extractErr *ExtractionError
	require.True(t, errors.As(err, &extractErr))
	require.Equal(t, PDF, extractErr.Format)
	require.ErrorIs(t, err, cause)
}

func TestParseFormat(t *testing.T) {
	table := []struct {
		input    string
		expected Format
	}{
		{input: "pdf", expected: PDF},
		{input: "PNG", expected: PNG},
		{input: " Pdf ", expected: PDF},
	}
	for _, row := range table {
		format, err := ParseFormat(row.input)
		require.NoError(t, err)
		require.Equal(t, row.expected, format)
	}
	require.Equal(t, "pdf", PDF.Ext())
	require.Equal(t, "PNG", PNG.String())
}
