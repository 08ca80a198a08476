// Package bed reads BED3+ region files: tab-delimited chrom, start, end and
// optionally name, score and strand.
package bed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Missing is the BED placeholder for an absent optional column.
const Missing = "."

type Region struct {
	Chrom  string
	Start  int
	End    int
	Name   string
	Score  string
	Strand string
	// Line is the 1-based line of the region in its source file.
	Line int
}

// Position renders the region the way the genome browser's position box expects it.
func (r Region) Position() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

func (r Region) String() string {
	return fmt.Sprintf("%s (line %d)", r.Position(), r.Line)
}

type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bed: line %d: %s", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Read returns the next region, or io.EOF once the input is exhausted.
func (r *Reader) Read() (Region, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimRight(r.scanner.Text(), "\r")
		if skipLine(text) {
			continue
		}
		region, err := parseRegion(text)
		if err != nil {
			return Region{}, &ParseError{Line: r.line, Err: err}
		}
		region.Line = r.line
		return region, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Region{}, err
	}
	return Region{}, io.EOF
}

func skipLine(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return true
	}
	keyword, _, _ := strings.Cut(trimmed, " ")
	keyword, _, _ = strings.Cut(keyword, "\t")
	return keyword == "track" || keyword == "browser"
}

func parseRegion(text string) (Region, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < 3 {
		return Region{}, fmt.Errorf("expected at least 3 tab-delimited columns, got %d", len(fields))
	}

	start, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Region{}, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Region{}, fmt.Errorf("parse end: %w", err)
	}
	if start < 0 {
		return Region{}, fmt.Errorf("negative start %d", start)
	}
	if end <= start {
		return Region{}, fmt.Errorf("end %d is not after start %d", end, start)
	}

	region := Region{
		Chrom:  strings.TrimSpace(fields[0]),
		Start:  start,
		End:    end,
		Name:   optionalField(fields, 3),
		Score:  optionalField(fields, 4),
		Strand: optionalField(fields, 5),
	}
	if region.Chrom == "" {
		return Region{}, fmt.Errorf("empty chromosome")
	}
	switch region.Strand {
	case "+", "-", Missing:
	default:
		return Region{}, fmt.Errorf("invalid strand %q", region.Strand)
	}
	return region, nil
}

func optionalField(fields []string, idx int) string {
	if idx >= len(fields) {
		return Missing
	}
	value := strings.TrimSpace(fields[idx])
	if value == "" {
		return Missing
	}
	return value
}

// File is a Reader over an opened BED file.
type File struct {
	*Reader
	f *os.File
}

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{Reader: NewReader(f), f: f}, nil
}

func (f *File) Close() error {
	return f.f.Close()
}
