// Package cliconfig holds the command line configuration surface of the
// converter: defaults, TOML file and environment loading, and validation.
// Precedence is flags over environment over file over defaults.
package cliconfig

import (
	"fmt"
	"strconv"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// Config holds the conversion settings consumed by the pipeline. Use
// DefaultConfig() to get a Config with the conventional defaults.
type Config struct {
	// InputPath is the miniSEED input file, "-" for standard input.
	InputPath string

	// OutputPath is the output file, "-" for standard output.
	OutputPath string

	// FormatVersion is the output container version, 2 or 3.
	FormatVersion int

	// Encoding is the requested output encoding, -1 to keep each
	// record's own encoding.
	Encoding int

	// RecordLength is the packing record length in bytes, -1 for the
	// maximum allowed.
	RecordLength int

	// ForceRepack disables the header-only conversion shortcut.
	ForceRepack bool

	// ExtraHeaderPath names a JSON Merge Patch document applied to every
	// record's extra headers.
	ExtraHeaderPath string

	// WatchDir enables watch mode: convert files as they appear in this
	// directory instead of converting a single input file.
	WatchDir string

	// OutputDir receives converted files in watch mode.
	OutputDir string

	// Verbose raises log verbosity; each step lowers the level.
	Verbose int
}

// DefaultConfig returns a Config with default values: version 3 output to
// stdout, record encoding and maximum record length preserved.
func DefaultConfig() Config {
	return Config{
		OutputPath:    "-",
		FormatVersion: 3,
		Encoding:      -1,
		RecordLength:  -1,
	}
}

// Validate checks the configuration for errors. The retired encoding
// check runs here, eagerly, so a bad request fails before any record is
// read.
func (c *Config) Validate() error {
	if c.WatchDir == "" && c.InputPath == "" {
		return fmt.Errorf("an input file is required")
	}
	if c.WatchDir != "" && c.OutputDir == "" {
		return fmt.Errorf("watch mode requires an output directory")
	}
	if c.WatchDir != "" && c.InputPath != "" {
		return fmt.Errorf("watch mode and an input file are mutually exclusive")
	}

	if c.FormatVersion != 2 && c.FormatVersion != 3 {
		return fmt.Errorf("output format version must be 2 or 3, got %d", c.FormatVersion)
	}

	if c.Encoding >= 0 && domain.Encoding(c.Encoding).Retired() {
		return fmt.Errorf("encoding %s (%d): %w",
			domain.Encoding(c.Encoding), c.Encoding, domain.ErrUnsupportedEncoding)
	}

	if c.RecordLength != -1 && c.RecordLength < 40 {
		return fmt.Errorf("record length must be -1 or at least 40 bytes, got %d", c.RecordLength)
	}
	if c.RecordLength > domain.MaxRecLen {
		return fmt.Errorf("record length %d exceeds maximum %d", c.RecordLength, domain.MaxRecLen)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not
// changed. A pointer distinguishes "unset" from legitimate zero values
// such as the text encoding.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
