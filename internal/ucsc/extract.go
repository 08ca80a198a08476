package ucsc

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"ucsc-snapshots/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Extractor finds the reference to the rendered artifact in an hgTracks response.
// The returned reference is resolved relative to the hgTracks URL.
type Extractor interface {
	Extract(body []byte) (string, error)
}

// example: <IMG SRC='../trash/hgt/hgt_genome_6243_68cdb0.png' BORDER=1 ...
var pngReferencePattern = regexp.MustCompile(
	`(?i)<img\s[^>]*?src\s*=\s*['"]?((?:\.\./|/)trash/hgt/hgt_[^'"\s>]*?\.png)`,
)

// PNGExtractor finds the merged track image of a `hgt.trackImgOnly` render.
type PNGExtractor struct {
	// defaults to the trash/hgt image tag pattern, the first group must be the reference.
	Pattern *regexp.Regexp
}

func (e PNGExtractor) Extract(body []byte) (string, error) {
	pattern := e.Pattern
	if pattern == nil {
		pattern = pngReferencePattern
	}

	var found []string
	for _, groups := range pattern.FindAllSubmatch(body, -1) {
		if len(groups) < 2 {
			continue
		}
		found = appendUnique(found, string(groups[1]))
	}
	if len(found) != 1 {
		return "", &ExtractionError{Format: PNG, Matches: len(found)}
	}
	return found[0], nil
}

const defaultPDFLabel = "browser graphic"

// PDFExtractor finds the download link of a `hgt.psOutput` render, the page links
// both the browser graphic and the chromosome ideogram so the link text is matched.
type PDFExtractor struct {
	// defaults to "browser graphic", matched case-insensitively against the link text.
	Label string
}

func (e PDFExtractor) Extract(body []byte) (string, error) {
	return e.extract(bytes.NewReader(body))
}

func (e PDFExtractor) extract(body io.Reader) (string, error) {
	label := e.Label
	if label == "" {
		label = defaultPDFLabel
	}
	label = strings.ToLower(label)

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", &ExtractionError{Format: PDF, Err: err}
	}

	var found []string
	for _, anchor := range htmlutil.GetAnchors(doc.Find("a")) {
		if !strings.HasSuffix(strings.ToLower(anchor.Href), ".pdf") {
			continue
		}
		if !strings.Contains(strings.ToLower(anchor.Name), label) {
			continue
		}
		found = appendUnique(found, anchor.Href)
	}
	if len(found) != 1 {
		return "", &ExtractionError{Format: PDF, Matches: len(found)}
	}
	return found[0], nil
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
