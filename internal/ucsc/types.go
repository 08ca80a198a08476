package ucsc

import (
	"strings"
)

// Position is a browser position string, `chrom:start-end`.
type Position string

// Format is an image format the browser can render a view as.
type Format string

const (
	PDF Format = "pdf"
	PNG Format = "png"
)

// Formats lists every supported format in the default fetch order.
var Formats = []Format{PDF, PNG}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	if !format.Valid() {
		return "", &UnsupportedFormatError{Format: name}
	}
	return format, nil
}

func (f Format) Valid() bool {
	return f == PDF || f == PNG
}

// Ext is the file extension (without the dot) for the format.
func (f Format) Ext() string {
	return strings.ToLower(string(f))
}

func (f Format) String() string {
	return strings.ToUpper(string(f))
}

// cgiFlags are the hgTracks form values that select the render for a format.
func (f Format) cgiFlags() map[string]string {
	switch f {
	case PDF:
		return map[string]string{
			"hgt.psOutput": "on",
		}
	case PNG:
		// a single merged raster for the whole viewport
		return map[string]string{
			"hgt.imageV1":      "1",
			"hgt.trackImgOnly": "1",
		}
	}
	return nil
}

// Strand is the strand of the region being displayed.
type Strand string

const (
	StrandForward Strand = "+"
	StrandReverse Strand = "-"
	StrandNone    Strand = "."
)
