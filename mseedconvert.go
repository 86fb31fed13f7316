// Package mseedconvert converts miniSEED time series records between
// format versions and sample encodings.
//
// Example usage:
//
//	cfg := mseedconvert.DefaultConfig()
//	cfg.InputPath = "archive.mseed"
//	cfg.OutputPath = "archive.ms3"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	res, err := mseedconvert.Convert(context.Background(), cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("packed %d samples into %d records\n", res.Samples, res.Records)
package mseedconvert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/EarthScope/mseedconvert/internal/app"
	"github.com/EarthScope/mseedconvert/internal/cliconfig"
	"github.com/EarthScope/mseedconvert/internal/domain"
	"github.com/EarthScope/mseedconvert/pkg/log"
)

// Config holds the conversion settings.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Result carries the totals of a conversion run.
type Result = app.Result

// DefaultConfig returns a Config with default values: version 3 output,
// record encoding and maximum record length preserved.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Convert runs one conversion of cfg.InputPath to cfg.OutputPath. The
// configuration should have been validated first. A nil logger disables
// logging.
func Convert(ctx context.Context, cfg Config, logger log.Logger) (Result, error) {
	return app.Run(ctx, runConfig(cfg, cfg.InputPath, cfg.OutputPath, logger))
}

// Watch converts files as they appear in cfg.WatchDir, writing converted
// output into cfg.OutputDir. It blocks until the context is cancelled.
// A failed file is reported and skipped.
func Watch(ctx context.Context, cfg Config, logger log.Logger) error {
	w := app.NewWatcher(cfg.WatchDir, func(ctx context.Context, path string) error {
		out := filepath.Join(cfg.OutputDir, outputName(path, cfg.FormatVersion))
		_, err := app.Run(ctx, runConfig(cfg, path, out, logger))
		return err
	}, logger)
	return w.Run(ctx)
}

func runConfig(cfg Config, input, output string, logger log.Logger) app.RunConfig {
	return app.RunConfig{
		InputPath:   input,
		OutputPath:  output,
		Version:     uint8(cfg.FormatVersion),
		Encoding:    domain.Encoding(cfg.Encoding),
		RecLen:      cfg.RecordLength,
		ForceRepack: cfg.ForceRepack,
		PatchPath:   cfg.ExtraHeaderPath,
		Logger:      logger,
	}
}

// outputName derives the converted file name: compression and format
// suffixes are dropped and the target version's suffix appended.
func outputName(path string, version int) string {
	base := strings.TrimSuffix(filepath.Base(path), ".gz")
	if ext := filepath.Ext(base); ext == ".mseed" || ext == ".ms" || ext == ".seed" || ext == ".ms2" || ext == ".ms3" {
		base = strings.TrimSuffix(base, ext)
	}
	return fmt.Sprintf("%s.ms%d", base, version)
}
