package ports

import (
	"context"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// Reader yields parsed record descriptors from an input stream.
// Implementations parse record headers and expose the raw, still-encoded
// payload bytes; sample decoding is deferred to a Decoder.
type Reader interface {
	// Next returns the next record from the stream.
	// Returns io.EOF when the stream is cleanly exhausted, any other
	// error for a malformed stream. A read error is not retryable.
	Next(ctx context.Context) (*domain.Record, error)

	// Close releases the underlying input resources.
	Close() error
}

// Decoder decodes a record's raw payload into typed samples.
type Decoder interface {
	// Decode populates rec.Samples from rec.RawPayload according to the
	// record's declared encoding, byte-swapping as indicated by the
	// record's swap flags. It is a no-op for a record with no samples.
	Decode(rec *domain.Record) error
}
