package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// reads a configuration file, `name` should come with a file extension,
// the `.local` variant is derived from it.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// if neither file exists, os.ErrNotExist is returned.
func ReadConfig[T any](name string) (T, error) {
	var out T
	allNotFound := true

	ext := filepath.Ext(name)
	localFilepath := fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, &out)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		err = json5.Unmarshal(localFile, &override)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", localFilepath, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}

	return out, nil
}

// ReadConfigOr is ReadConfig, but a missing file is not an error and every
// zero-valued field of the result is filled in from `defaults`.
func ReadConfigOr[T any](name string, defaults T) (T, error) {
	out, err := ReadConfig[T](name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return out, err
	}
	err = mergo.Merge(&out, defaults)
	if err != nil {
		return out, err
	}
	return out, nil
}
