package ports

import "github.com/EarthScope/mseedconvert/internal/domain"

// EmitFunc receives one physical on-wire record. It is invoked in output
// order; the bytes must be forwarded to the sink unchanged.
type EmitFunc func(record []byte) error

// Packer produces on-wire records from record descriptors.
type Packer interface {
	// Repack emits a single version 3 record reusing the record's raw,
	// still-encoded payload bytes. Only the container headers are
	// rebuilt. Used on the shortcut path.
	Repack(rec *domain.Record) ([]byte, error)

	// Pack fully encodes the record's decoded samples into one or more
	// physical records, invoking emit once per record in order. It
	// returns the number of records emitted and samples packed.
	Pack(rec *domain.Record, emit EmitFunc) (records, samples int64, err error)
}
