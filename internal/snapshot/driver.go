// Package snapshot turns BED regions into image files by driving a browser
// session one region and format at a time.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"ucsc-snapshots/internal/bed"
	"ucsc-snapshots/internal/components/assert"
	"ucsc-snapshots/internal/components/chrono"
	"ucsc-snapshots/internal/components/telemetry"
	"ucsc-snapshots/internal/ucsc"
)

const (
	report_driver_run   = "driver.run"
	report_driver_write = "driver.write"
)

// Fetcher is the part of *ucsc.Session the driver needs.
type Fetcher interface {
	SetPosition(pos ucsc.Position)
	FetchImage(ctx context.Context, format ucsc.Format, strand ucsc.Strand) ([]byte, error)
}

// RegionSource yields regions in order and io.EOF once exhausted, *bed.Reader
// satisfies it.
type RegionSource interface {
	Read() (bed.Region, error)
}

type DriverOptions struct {
	// Formats are fetched in this order for every region.
	Formats     []ucsc.Format
	Annotations []Annotation
	// OutDir is the root the session directory is created under.
	OutDir string
	Hgsid  string
	// defaults to telemetry.SlogAPI{}
	Telemetry telemetry.API
	// defaults to chrono.StandardImpl{}
	Time chrono.API
}

// Artifact is a written image.
type Artifact struct {
	Region  bed.Region
	Format  ucsc.Format
	Path    string
	Bytes   int
	// Written is when the file was written.
	Written time.Time
}

type Driver struct {
	fetcher Fetcher
	opts    DriverOptions
	tel     telemetry.API
	time    chrono.API
}

func NewDriver(fetcher Fetcher, opts DriverOptions) Driver {
	assert.NotNil(fetcher)
	assert.NotEmptyStr(opts.Hgsid)

	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	clock := opts.Time
	if clock == nil {
		clock = chrono.StandardImpl{}
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	return Driver{
		fetcher: fetcher,
		opts:    opts,
		tel:     telemetry.NewScopedAPI("snapshot", tel),
		time:    clock,
	}
}

func (d Driver) validateFormats() error {
	if len(d.opts.Formats) == 0 {
		return errors.New("no output formats given")
	}
	seen := map[ucsc.Format]bool{}
	for _, format := range d.opts.Formats {
		if !format.Valid() {
			return &ucsc.UnsupportedFormatError{Format: string(format)}
		}
		if seen[format] {
			return fmt.Errorf("format %s given more than once", format)
		}
		seen[format] = true
	}
	return nil
}

// Run fetches every format of every region in `source`, in order, writing each
// image as soon as it arrives. On failure the artifacts written so far are
// returned alongside the error and stay on disk.
func (d Driver) Run(ctx context.Context, source RegionSource) ([]Artifact, error) {
	err := d.validateFormats()
	if err != nil {
		return nil, err
	}

	var artifacts []Artifact
	regions := 0
	for {
		region, err := source.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			d.tel.ReportBroken(report_driver_run, err)
			return artifacts, fmt.Errorf("read regions: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		regions++

		written, err := d.snapshot(ctx, region)
		artifacts = append(artifacts, written...)
		if err != nil {
			return artifacts, err
		}
	}

	if regions == 0 {
		d.tel.ReportWarning(report_driver_run, "no regions to snapshot")
		return nil, nil
	}
	d.tel.ReportCount(report_driver_run, int64(len(artifacts)))
	return artifacts, nil
}

func (d Driver) snapshot(ctx context.Context, region bed.Region) ([]Artifact, error) {
	pos := ucsc.Position(region.Position())
	d.fetcher.SetPosition(pos)

	var artifacts []Artifact
	for _, format := range d.opts.Formats {
		path, err := Filename(
			d.opts.OutDir,
			d.opts.Hgsid,
			pos,
			region.Name,
			region.Score,
			d.opts.Annotations,
			format,
		)
		if err != nil {
			return artifacts, fmt.Errorf("%s %s: %w", region, format, err)
		}

		image, err := d.fetcher.FetchImage(ctx, format, ucsc.Strand(region.Strand))
		if err != nil {
			return artifacts, fmt.Errorf("%s %s: %w", region, format, err)
		}

		d.tel.ReportDebug(fmt.Sprintf("writing %s", path))
		err = os.WriteFile(path, image, 0644)
		if err != nil {
			d.tel.ReportBroken(report_driver_write, err, path)
			return artifacts, fmt.Errorf("%s %s: write %s: %w", region, format, path, err)
		}
		artifacts = append(artifacts, Artifact{
			Region:  region,
			Format:  format,
			Path:    path,
			Bytes:   len(image),
			Written: d.time.Now(),
		})
	}
	return artifacts, nil
}
