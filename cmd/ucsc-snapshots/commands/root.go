package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"ucsc-snapshots/internal/bed"
	"ucsc-snapshots/internal/components/telemetry"
	"ucsc-snapshots/internal/snapshot"
	"ucsc-snapshots/internal/ucsc"
	"ucsc-snapshots/pkg/serviceutil"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const hgsidEnv = "UCSC_HGSID"

type flags struct {
	formats     []string
	annotations []string
	reverse     bool
	noDelay     bool
	verbose     bool
	outDir      string
	configPath  string
	dumpHttp    string
	summary     bool
}

var rootFlags flags

var rootCmd = &cobra.Command{
	Use:   "ucsc-snapshots [flags] <regions.bed> [hgsid]",
	Short: "Saves UCSC Genome Browser images of every region in a BED file.",
	Long: `Saves UCSC Genome Browser images of every region in a BED file.

The browser session is identified by its hgsid, either given as the second
argument or through the UCSC_HGSID environment variable (a .env file in the
working directory is read as well). Tracks, zoom and other display settings
are taken from the session as it is configured in the browser.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := run(cmd.Context(), args, rootFlags, cmd.Flags().Changed("out-dir"))
		if err != nil {
			serviceutil.Fatal("failed to save snapshots", err)
		}
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringSliceVarP(&rootFlags.formats, "format", "f", []string{"pdf", "png"}, "Image formats to save, in order (pdf, png).")
	f.StringArrayVarP(&rootFlags.annotations, "annotate", "a", nil, "key=value appended to the output directory name, may be repeated.")
	f.BoolVarP(&rootFlags.reverse, "reverse", "r", false, "Show '-' strand regions with the display reversed.")
	f.BoolVar(&rootFlags.noDelay, "no-delay", false, "Do not wait between requests, only for debugging.")
	f.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Log every request and written file.")
	f.StringVarP(&rootFlags.outDir, "out-dir", "o", ".", "Directory the session directory is created in.")
	f.StringVar(&rootFlags.configPath, "config", DefaultConfigPath, "Path to the json5 config file, optional.")
	f.StringVar(&rootFlags.dumpHttp, "dump-http", "", "Write every request and response to this directory.")
	f.BoolVar(&rootFlags.summary, "summary", false, "Print a table of the saved images.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, f flags, outDirChanged bool) error {
	telemetry.InitSlog(f.verbose)
	tel := telemetry.SlogAPI{}

	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if outDirChanged || cfg.OutDir == "" {
		cfg.OutDir = f.outDir
	}

	shutdown, err := telemetry.SetupTracing(ctx, "ucsc-snapshots", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := shutdown(ctx)
		if err != nil {
			tel.ReportWarning("tracing.shutdown", err)
		}
	}()

	formats, err := parseFormats(f.formats)
	if err != nil {
		return err
	}
	annotations, err := parseAnnotations(f.annotations)
	if err != nil {
		return err
	}
	hgsid, err := resolveHgsid(args)
	if err != nil {
		return err
	}

	regions, err := bed.Open(args[0])
	if err != nil {
		return fmt.Errorf("open regions: %w", err)
	}
	defer regions.Close()

	interval := cfg.Interval()
	if f.noDelay {
		interval = ucsc.MinimumInterval
	}

	var output telemetry.MessageOutput
	if f.dumpHttp != "" {
		output, err = telemetry.NewFilesystemOutput(f.dumpHttp)
		if err != nil {
			return fmt.Errorf("create http dump directory: %w", err)
		}
	}

	slog.Debug("connecting to browser session", "hgsid", hgsid, "base_url", cfg.BaseUrl, "interval", interval)
	session, err := ucsc.New(ctx, ucsc.Options{
		Hgsid:            hgsid,
		ReverseDisplay:   f.reverse,
		BaseUrl:          cfg.BaseUrl,
		Interval:         interval,
		Timeout:          cfg.Timeout(),
		UserAgent:        cfg.UserAgent,
		BrowserTransport: !cfg.DisableBrowserTransport,
		Telemetry:        tel,
		MessageOutput:    output,
	})
	if err != nil {
		return err
	}

	driver := snapshot.NewDriver(session, snapshot.DriverOptions{
		Formats:     formats,
		Annotations: annotations,
		OutDir:      cfg.OutDir,
		Hgsid:       hgsid,
		Telemetry:   tel,
	})
	artifacts, err := driver.Run(ctx, regions)
	if f.summary && len(artifacts) > 0 {
		renderSummary(os.Stdout, artifacts)
	}
	return err
}

func parseFormats(names []string) ([]ucsc.Format, error) {
	formats := make([]ucsc.Format, 0, len(names))
	for _, name := range names {
		format, err := ucsc.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, nil
}

func parseAnnotations(raw []string) ([]snapshot.Annotation, error) {
	annotations := make([]snapshot.Annotation, 0, len(raw))
	for _, r := range raw {
		a, err := snapshot.ParseAnnotation(r)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}
	return annotations, nil
}

// resolveHgsid takes the hgsid from the arguments, falling back to the
// environment and then to a .env file.
func resolveHgsid(args []string) (string, error) {
	if len(args) > 1 && args[1] != "" {
		return args[1], nil
	}
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read .env: %w", err)
	}
	hgsid := os.Getenv(hgsidEnv)
	if hgsid == "" {
		return "", fmt.Errorf("no hgsid given, pass it as the second argument or set %s", hgsidEnv)
	}
	return hgsid, nil
}
