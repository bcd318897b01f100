// Package dataset loads the vehicle data file that is embedded into every prompt.
package dataset

import (
	"errors"
	"fmt"
	"os"

	"salesdesk/internal/logger"
	"salesdesk/pkg/salestypes"
)

// ErrNotFound is returned when the configured path is not an existing regular file.
var ErrNotFound = errors.New("data file not found")

// Load reads the whole file at path as UTF-8 text.
// The content is not parsed or validated.
func Load(path string) (*salestypes.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w at: %s", ErrNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	logger.Debug("Dataset loaded", "path", path, "bytes", len(data))
	return &salestypes.Dataset{
		Path:    path,
		Content: string(data),
	}, nil
}
