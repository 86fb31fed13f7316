package mseed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// Reader implements ports.Reader over a miniSEED byte stream. Version 2
// and version 3 records may be freely interleaved in the input.
type Reader struct {
	br      *bufio.Reader
	closer  io.Closer
	hostBig bool
}

// NewReader creates a reader over r. If r is an io.Closer it is closed by
// Close.
func NewReader(r io.Reader) *Reader {
	closer, _ := r.(io.Closer)
	return &Reader{
		br:      bufio.NewReaderSize(r, 64<<10),
		closer:  closer,
		hostBig: domain.NativeIsBigEndian(),
	}
}

// Next returns the next record from the stream, io.EOF at clean end of
// stream.
func (r *Reader) Next(ctx context.Context) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sync, err := r.br.Peek(3)
	if err != nil {
		if errors.Is(err, io.EOF) {
			if len(sync) == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("trailing garbage at end of input: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}

	if sync[0] == 'M' && sync[1] == 'S' {
		if sync[2] != 3 {
			return nil, fmt.Errorf("unsupported miniSEED format version %d", sync[2])
		}
		return r.readRecord3()
	}
	return r.readRecord2()
}

// Close releases the underlying input.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// errUnexpected converts a clean EOF into an unexpected one for failures
// in the middle of a record.
func errUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
