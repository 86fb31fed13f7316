// Package app orchestrates the record conversion pipeline: read, decide,
// patch, transcode, pack, and write, one record at a time.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/EarthScope/mseedconvert/internal/domain"
	"github.com/EarthScope/mseedconvert/internal/patch"
	"github.com/EarthScope/mseedconvert/internal/ports"
	"github.com/EarthScope/mseedconvert/internal/transcode"
	"github.com/EarthScope/mseedconvert/pkg/log"
)

// PipelineConfig contains the per-run conversion settings. It is derived
// from the CLI configuration once and never mutated during a run.
type PipelineConfig struct {
	// Version is the target container version (2 or 3).
	Version uint8

	// Encoding is the requested output encoding, EncodingNone to keep
	// each record's own encoding.
	Encoding domain.Encoding

	// RecLen is the requested record length in bytes, <= 0 for the
	// maximum allowed.
	RecLen int

	// ForceRepack disables the header-only shortcut path.
	ForceRepack bool

	// HostBigEndian is the processing host's byte order, an input of the
	// shortcut policy. Callers set it from domain.NativeIsBigEndian;
	// tests pin it for both orders.
	HostBigEndian bool

	// Patch is the optional extra header merge patch document, shared
	// read-only across all records.
	Patch *patch.Document
}

// Result accumulates the totals of a run for the final report.
type Result struct {
	Records uint64
	Samples uint64
}

// Pipeline drives the per-record conversion sequence. Records are
// processed strictly one at a time and emitted in input order.
type Pipeline struct {
	cfg     PipelineConfig
	reader  ports.Reader
	decoder ports.Decoder
	packer  ports.Packer
	sink    ports.Sink
	logger  log.Logger
}

// NewPipeline creates a pipeline over the given ports.
func NewPipeline(cfg PipelineConfig, reader ports.Reader, decoder ports.Decoder, packer ports.Packer, sink ports.Sink, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Pipeline{
		cfg:     cfg,
		reader:  reader,
		decoder: decoder,
		packer:  packer,
		sink:    sink,
		logger:  logger,
	}
}

// Run consumes the input stream until EOF or the first failure. Every
// failure is non-transient: the run stops at the current record boundary
// and records already written remain in the output. The returned Result
// covers everything actually written, also on a failed run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result

	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		rec, err := p.reader.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return res, nil
			}
			return res, fmt.Errorf("read: %w", err)
		}

		// Header patching is independent of the payload path chosen.
		if p.cfg.Patch != nil {
			if err := p.cfg.Patch.Apply(rec); err != nil {
				return res, err
			}
		}

		if domain.CanShortcut(rec, p.cfg.Version, p.cfg.Encoding, p.cfg.HostBigEndian, p.cfg.ForceRepack) {
			if err := p.shortcut(rec, &res); err != nil {
				return res, err
			}
			continue
		}

		if err := p.fullRepack(rec, &res); err != nil {
			return res, err
		}
	}
}

// shortcut emits a header-only repack reusing the raw payload bytes.
func (p *Pipeline) shortcut(rec *domain.Record, res *Result) error {
	raw, err := p.packer.Repack(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", rec.SourceID, err)
	}
	if err := p.sink.Write(raw); err != nil {
		return fmt.Errorf("%s: write: %w", rec.SourceID, err)
	}

	res.Records++
	res.Samples += uint64(rec.SampleCount)

	p.logger.Debug("repacked record without re-encoding",
		log.String("source", rec.SourceID),
		log.Int64("samples", rec.SampleCount))
	return nil
}

// fullRepack decodes the payload, retypes samples for the target
// encoding, and packs one or more physical records.
func (p *Pipeline) fullRepack(rec *domain.Record, res *Result) error {
	if err := p.decoder.Decode(rec); err != nil {
		return fmt.Errorf("%s: %w", rec.SourceID, err)
	}

	// The effective encoding can be record-dependent when none was
	// requested, so the retired check runs again here even though the
	// configuration was validated eagerly.
	effective := p.cfg.Encoding
	if effective == domain.EncodingNone {
		effective = rec.Encoding
	}
	if effective.Retired() {
		return fmt.Errorf("%s: encoding %s (%d): %w",
			rec.SourceID, effective, int16(effective), domain.ErrUnsupportedEncoding)
	}

	if target, ok := effective.SampleType(); ok && rec.Samples != nil {
		converted, err := transcode.Transcode(rec.Samples, target)
		if err != nil {
			return fmt.Errorf("%s: %w", rec.SourceID, err)
		}
		rec.Samples = converted
	}

	rec.FormatVersion = p.cfg.Version
	if p.cfg.RecLen > 0 {
		rec.RecLen = p.cfg.RecLen
	} else if p.cfg.Version == 3 {
		rec.RecLen = domain.MaxRecLen
	}
	if p.cfg.Encoding != domain.EncodingNone {
		rec.Encoding = p.cfg.Encoding
	}

	records, samples, err := p.packer.Pack(rec, p.sink.Write)
	res.Records += uint64(records)
	res.Samples += uint64(samples)
	if err != nil {
		return fmt.Errorf("%s: %w", rec.SourceID, err)
	}

	p.logger.Debug("packed record",
		log.String("source", rec.SourceID),
		log.Int64("records", records),
		log.Int64("samples", samples))
	return nil
}
