package domain

import "time"

// MaxRecLen is the largest record length the packer will produce, used as
// the record length for version 3 output when none is requested.
const MaxRecLen = 131172

// SwapFlags indicates which parts of a record's stored bytes are in
// non-native byte order relative to the processing host.
type SwapFlags uint8

const (
	// SwapHeader is set when the record header required byte swapping.
	SwapHeader SwapFlags = 1 << iota

	// SwapPayload is set when the data payload requires byte swapping
	// before the samples can be interpreted on this host.
	SwapPayload
)

// HeaderSwapped reports whether the record header was byte swapped.
func (f SwapFlags) HeaderSwapped() bool { return f&SwapHeader != 0 }

// PayloadSwapped reports whether the data payload needs byte swapping.
func (f SwapFlags) PayloadSwapped() bool { return f&SwapPayload != 0 }

// Record is one logical miniSEED record: parsed header fields, the raw
// still-encoded payload, and optionally the decoded samples.
//
// A Record is constructed by a reader, mutated in place by the conversion
// pipeline, consumed by a packer, and then discarded. It is processed
// end-to-end by a single goroutine.
type Record struct {
	// SourceID is the FDSN source identifier, also used for diagnostics.
	SourceID string

	// FormatVersion is the container version (2 or 3).
	FormatVersion uint8

	// Flags carries the version 3 header flag bits.
	Flags uint8

	// StartTime is the time of the first sample, nanosecond precision.
	StartTime time.Time

	// SampleRate is the nominal sample rate in Hz, 0 for asynchronous data.
	SampleRate float64

	// Encoding is the payload encoding as stored on the wire.
	Encoding Encoding

	// RecLen is the target record length in bytes for packing.
	RecLen int

	// PubVersion is the publication (data quality) version.
	PubVersion uint8

	// ExtraHeaders is the serialized extra header JSON object, nil when
	// the record carries none. It is always a syntactically valid JSON
	// object between mutations.
	ExtraHeaders []byte

	// SampleCount is the number of samples declared by the header,
	// 0 when the payload is empty or not yet decoded.
	SampleCount int64

	// Samples is the decoded sample buffer, nil until decoded. Its type
	// is meaningful only when it is non-nil and SampleCount > 0.
	Samples Samples

	// RawPayload holds the still-encoded payload bytes as read from the
	// input, reused unchanged by the shortcut repack path.
	RawPayload []byte

	// SwapFlags records the byte order state of the stored bytes.
	SwapFlags SwapFlags
}
