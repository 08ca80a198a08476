package ucsc

import (
	"errors"
	"fmt"
)

var ErrNoPosition = errors.New("ucsc: no position set")

// StateProbeError is returned by New when the session's reverse display state
// could not be read.
type StateProbeError struct {
	Hgsid  string
	Reason string
	Err    error
}

func (e *StateProbeError) Error() string {
	msg := fmt.Sprintf("ucsc: probe display state of hgsid %s: %s", e.Hgsid, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StateProbeError) Unwrap() error {
	return e.Err
}

type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("ucsc: unsupported image format %q (expected pdf or png)", e.Format)
}

// ExtractionError means the rendered page did not contain exactly one image
// reference.
type ExtractionError struct {
	Format  Format
	Matches int
	// Err is set when the response could not be parsed at all.
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ucsc: parse %s response: %s", e.Format, e.Err)
	}
	if e.Matches == 0 {
		return fmt.Sprintf("ucsc: no %s reference found in response", e.Format)
	}
	return fmt.Sprintf("ucsc: ambiguous %s reference, found %d candidates", e.Format, e.Matches)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RemoteRequestError is a transport failure or a non-2xx response.
type RemoteRequestError struct {
	Method     string
	Url        string
	StatusCode int
	Err        error
}

func (e *RemoteRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ucsc: %s %s: %s", e.Method, e.Url, e.Err)
	}
	return fmt.Sprintf("ucsc: %s %s: unexpected status %d", e.Method, e.Url, e.StatusCode)
}

func (e *RemoteRequestError) Unwrap() error {
	return e.Err
}
