package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/EarthScope/mseedconvert"
	"github.com/EarthScope/mseedconvert/internal/cliconfig"
	"github.com/EarthScope/mseedconvert/pkg/log"
)

const helpDescription = `
Convert miniSEED time series records between format versions and sample
encodings.

Each record is converted independently. Records whose payload is already
stored in the byte order the target format requires are repacked without
re-encoding; everything else is decoded, retyped as needed, and packed
fresh. This can lead to unfilled records that contain padding depending
on the conversion options.

Gzip-compressed input is decompressed transparently. With --watch-dir,
files are converted as they appear in a directory instead of converting
a single input file.
`

var exampleUsage = strings.TrimSpace(`
  mseedconvert -o data.ms3 data.mseed
  mseedconvert -E 11 -R 4096 -o steim2.ms3 data.mseed.gz
  mseedconvert --extra-headers patch.json -o patched.ms3 data.mseed
  mseedconvert --watch-dir /incoming --output-dir /converted
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	zl := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "mseedconvert [flags] input",
		Short:   "Convert miniSEED, for example miniSEED 2 to 3 or to change encoding",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Args:    cobra.MaximumNArgs(1),
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if len(args) == 1 {
				cfg.InputPath = args[0]
			}

			// Build set of changed flags so file and env values never
			// override explicit flags.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cliconfig.ApplyFileConfig(&cfg, fc, changed)
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			cliconfig.SetVerbosity(cfg.Verbose)
			zl = cliconfig.Logger()

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := log.NewZerologAdapterWithLogger(zl)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.WatchDir != "" {
				err := mseedconvert.Watch(ctx, cfg, logger)
				if err != nil && ctx.Err() != nil {
					// Cancelled by signal: a clean exit.
					return nil
				}
				return err
			}

			res, err := mseedconvert.Convert(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if cfg.Verbose > 0 {
				fmt.Fprintf(os.Stderr, "Packed %d samples into %d records\n", res.Samples, res.Records)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.mseedconvert/config.toml)")
	root.Flags().StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "output file, - for stdout")
	root.Flags().IntVarP(&cfg.FormatVersion, "format-version", "F", cfg.FormatVersion, "output format version, 2 or 3")
	root.Flags().IntVarP(&cfg.Encoding, "encoding", "E", cfg.Encoding, "encoding format for packing, -1 to keep each record's encoding")
	root.Flags().IntVarP(&cfg.RecordLength, "record-length", "R", cfg.RecordLength, "record length in bytes for packing, -1 for maximum")
	root.Flags().BoolVarP(&cfg.ForceRepack, "force-repack", "f", cfg.ForceRepack, "force full repack, do not use the header-only shortcut")
	root.Flags().StringVar(&cfg.ExtraHeaderPath, "extra-headers", cfg.ExtraHeaderPath, "JSON Merge Patch file applied to every record's extra headers")
	root.Flags().StringVar(&cfg.WatchDir, "watch-dir", cfg.WatchDir, "watch a directory and convert files as they appear")
	root.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "output directory for watch mode")
	root.Flags().CountVarP(&cfg.Verbose, "verbose", "v", "be more verbose, repeatable")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("mseedconvert")
		os.Exit(1)
	}
}
