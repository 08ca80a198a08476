package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// InitSlog installs a text handler on stderr as the default slog logger.
// Debug records are only emitted when verbose is set.
func InitSlog(verbose bool) {
	slog.SetDefault(NewSlogLogger(os.Stderr, verbose))
}

func NewSlogLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SlogAPI implements API using the log/slog package.
//
// A nil Logger falls back to slog.Default().
type SlogAPI struct {
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (SlogAPI) formatParams(out *[]any, params []any) {
	for i, p := range params {
		*out = append(
			*out,
			fmt.Sprintf("params.%d", i),
			p,
		)
	}
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.logger().Error("broken component", remainingPairs...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.logger().Warn("warning", remainingPairs...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	remainingPairs := []any{}
	s.formatParams(&remainingPairs, params)
	s.logger().Debug(message, remainingPairs...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().Info("count", "id", id, "n", count)
}
