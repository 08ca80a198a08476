package commands

import (
	"time"

	"ucsc-snapshots/internal/components/telemetry"
	"ucsc-snapshots/internal/ucsc"
	"ucsc-snapshots/pkg/configutil"
)

const DefaultConfigPath = "ucsc-snapshots.json5"

type Config struct {
	BaseUrl   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
	// minimum time between two requests to the browser
	IntervalSeconds float64 `json:"interval_seconds"`
	TimeoutSeconds  float64 `json:"timeout_seconds"`
	OutDir          string  `json:"out_dir"`

	DisableBrowserTransport bool `json:"disable_browser_transport"`

	Telemetry telemetry.Config `json:"telemetry"`
}

var defaultConfig = Config{
	BaseUrl:         ucsc.DefaultBaseUrl,
	UserAgent:       ucsc.DefaultUserAgent,
	IntervalSeconds: ucsc.DefaultInterval.Seconds(),
	TimeoutSeconds:  120,
	OutDir:          ".",
}

// LoadConfig reads the config at `path` (and its .local override), a missing
// file gives the defaults.
func LoadConfig(path string) (Config, error) {
	return configutil.ReadConfigOr(path, defaultConfig)
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds * float64(time.Second))
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}
