package cliconfig

import "os"

// ApplyEnvConfig applies MSEEDCONVERT_* environment variables to the
// Config. Environment values override file config but are overridden by
// explicitly set flags (checked via the changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("output", os.Getenv("MSEEDCONVERT_OUTPUT"), &cfg.OutputPath)
	s.setString("extra-headers", os.Getenv("MSEEDCONVERT_EXTRA_HEADERS"), &cfg.ExtraHeaderPath)
	s.setString("watch-dir", os.Getenv("MSEEDCONVERT_WATCH_DIR"), &cfg.WatchDir)
	s.setString("output-dir", os.Getenv("MSEEDCONVERT_OUTPUT_DIR"), &cfg.OutputDir)

	if err := s.setIntFromString("format-version", os.Getenv("MSEEDCONVERT_FORMAT_VERSION"), &cfg.FormatVersion); err != nil {
		return err
	}
	if err := s.setIntFromString("encoding", os.Getenv("MSEEDCONVERT_ENCODING"), &cfg.Encoding); err != nil {
		return err
	}
	if err := s.setIntFromString("record-length", os.Getenv("MSEEDCONVERT_RECORD_LENGTH"), &cfg.RecordLength); err != nil {
		return err
	}

	s.setBoolFromString("force-repack", os.Getenv("MSEEDCONVERT_FORCE_REPACK"), &cfg.ForceRepack)
	return nil
}
