package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML loading. Numeric and boolean fields
// use pointers so an absent key is distinguishable from a zero value.
type FileConfig struct {
	Output        string `toml:"output"`
	FormatVersion *int   `toml:"format_version"`
	Encoding      *int   `toml:"encoding"`
	RecordLength  *int   `toml:"record_length"`
	ForceRepack   *bool  `toml:"force_repack"`
	ExtraHeaders  string `toml:"extra_headers"`
	WatchDir      string `toml:"watch_dir"`
	OutputDir     string `toml:"output_dir"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.mseedconvert/config.toml, if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mseedconvert", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("output", fc.Output, &cfg.OutputPath)
	s.setString("extra-headers", fc.ExtraHeaders, &cfg.ExtraHeaderPath)
	s.setString("watch-dir", fc.WatchDir, &cfg.WatchDir)
	s.setString("output-dir", fc.OutputDir, &cfg.OutputDir)

	s.setInt("format-version", fc.FormatVersion, &cfg.FormatVersion)
	s.setInt("encoding", fc.Encoding, &cfg.Encoding)
	s.setInt("record-length", fc.RecordLength, &cfg.RecordLength)

	s.setBool("force-repack", fc.ForceRepack, &cfg.ForceRepack)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
