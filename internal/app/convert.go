package app

import (
	"context"
	"fmt"

	adapterfs "github.com/EarthScope/mseedconvert/internal/adapters/fs"
	"github.com/EarthScope/mseedconvert/internal/adapters/mseed"
	"github.com/EarthScope/mseedconvert/internal/domain"
	"github.com/EarthScope/mseedconvert/internal/patch"
	"github.com/EarthScope/mseedconvert/pkg/log"
)

// RunConfig contains everything needed for one conversion run over one
// input file.
type RunConfig struct {
	InputPath  string
	OutputPath string

	Version     uint8
	Encoding    domain.Encoding
	RecLen      int
	ForceRepack bool

	// PatchPath optionally names a JSON Merge Patch file for the extra
	// headers. It is loaded and validated before the first record is
	// read; a bad document fails the whole run up front.
	PatchPath string

	Logger log.Logger
}

// Run converts one input stream to one output stream with the concrete
// file and miniSEED adapters wired in. Output already written is flushed
// even when the run fails partway.
func Run(ctx context.Context, cfg RunConfig) (Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	var doc *patch.Document
	if cfg.PatchPath != "" {
		var err error
		if doc, err = patch.Load(cfg.PatchPath); err != nil {
			return Result{}, err
		}
	}

	src, err := adapterfs.OpenSource(cfg.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("open input: %w", err)
	}
	reader := mseed.NewReader(src)
	defer reader.Close()

	sink, err := adapterfs.NewSink(cfg.OutputPath)
	if err != nil {
		return Result{}, fmt.Errorf("open output: %w", err)
	}

	pipeline := NewPipeline(PipelineConfig{
		Version:       cfg.Version,
		Encoding:      cfg.Encoding,
		RecLen:        cfg.RecLen,
		ForceRepack:   cfg.ForceRepack,
		HostBigEndian: domain.NativeIsBigEndian(),
		Patch:         doc,
	}, reader, mseed.NewDecoder(), mseed.NewPacker(), sink, logger)

	res, runErr := pipeline.Run(ctx)

	if cerr := sink.Close(); cerr != nil && runErr == nil {
		runErr = fmt.Errorf("close output: %w", cerr)
	}

	if runErr == nil {
		logger.Info("conversion complete",
			log.String("input", cfg.InputPath),
			log.Uint64("records", res.Records),
			log.Uint64("samples", res.Samples),
			log.Uint64("bytes", sink.Bytes()))
	}
	return res, runErr
}
