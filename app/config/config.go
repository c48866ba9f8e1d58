package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	dtypes "go.hackfix.me/lhost/discovery/types"
)

// Config represents the optional application configuration, read from a file.
// Unset values are invalid sql.Null values, and the built-in defaults apply.
type Config struct {
	// Ignore replaces the built-in list of ignore patterns. An empty list
	// disables exclusion.
	Ignore sql.Null[[]string]
	// Backend is the discovery implementation.
	Backend sql.Null[dtypes.BackendType]
	// ListTimeout is the maximum time spent listing listening sockets.
	ListTimeout sql.Null[time.Duration]
	// InspectTimeout is the maximum time spent inspecting a single process.
	InspectTimeout sql.Null[time.Duration]
	// Concurrency is the maximum number of processes inspected in parallel.
	Concurrency sql.Null[int]

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem. A missing
// or empty file results in an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

type cfgWrapper struct {
	Ignore         *[]string `json:"ignore"`
	Backend        string    `json:"backend"`
	ListTimeout    string    `json:"list_timeout"`
	InspectTimeout string    `json:"inspect_timeout"`
	Concurrency    *int      `json:"concurrency"`
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Ignore != nil {
		ignore := *w.Ignore
		if ignore == nil {
			ignore = []string{}
		}
		c.Ignore = sql.Null[[]string]{V: ignore, Valid: true}
	}
	if w.Backend != "" {
		bt, err := dtypes.BackendTypeFromString(w.Backend)
		if err != nil {
			return err
		}
		c.Backend = sql.Null[dtypes.BackendType]{V: bt, Valid: true}
	}
	if w.ListTimeout != "" {
		dur, err := parsePositiveDuration(w.ListTimeout)
		if err != nil {
			return fmt.Errorf("failed parsing list timeout: %w", err)
		}
		c.ListTimeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.InspectTimeout != "" {
		dur, err := parsePositiveDuration(w.InspectTimeout)
		if err != nil {
			return fmt.Errorf("failed parsing inspect timeout: %w", err)
		}
		c.InspectTimeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Concurrency != nil {
		if *w.Concurrency < 1 {
			return fmt.Errorf("invalid concurrency %d: must be at least 1", *w.Concurrency)
		}
		c.Concurrency = sql.Null[int]{V: *w.Concurrency, Valid: true}
	}

	return nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err != nil {
		//nolint:wrapcheck // Wrapped by the caller.
		return 0, err
	}
	if dur <= 0 {
		return 0, fmt.Errorf("duration '%s' must be positive", s)
	}
	return dur, nil
}
