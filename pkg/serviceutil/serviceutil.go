package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that is canceled when Ctrl+C (or SIGTERM) is received.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Fatal logs the error and exits the process with status 1.
func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
