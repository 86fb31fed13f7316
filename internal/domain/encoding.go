package domain

import "fmt"

// Encoding identifies the on-wire storage encoding of a record's data
// payload. Values follow the SEED/miniSEED data encoding format codes.
type Encoding int16

// EncodingNone marks an unspecified encoding, used for "keep the record's
// own encoding" in conversion requests.
const EncodingNone Encoding = -1

const (
	EncodingText    Encoding = 0
	EncodingInt16   Encoding = 1
	EncodingInt24   Encoding = 2
	EncodingInt32   Encoding = 3
	EncodingFloat32 Encoding = 4
	EncodingFloat64 Encoding = 5
	EncodingSteim1  Encoding = 10
	EncodingSteim2  Encoding = 11

	// Legacy encodings, readable in archives but retired for output.
	EncodingGeoscope24  Encoding = 12
	EncodingGeoscope163 Encoding = 13
	EncodingGeoscope164 Encoding = 14
	EncodingUSNSN       Encoding = 15
	EncodingCDSN        Encoding = 16
	EncodingGraefenberg Encoding = 17
	EncodingIPGS        Encoding = 18
	EncodingSteim3      Encoding = 19
	EncodingSRO         Encoding = 30
	EncodingHGLP        Encoding = 31
	EncodingDWWSSN      Encoding = 32
	EncodingRSTN        Encoding = 33
)

// retiredEncodings is the closed set of legacy encodings that can no longer
// be produced: the 24-bit integer format and the historical gain-ranged and
// multiplexed formats.
var retiredEncodings = map[Encoding]bool{
	EncodingInt24:       true,
	EncodingGeoscope24:  true,
	EncodingGeoscope163: true,
	EncodingGeoscope164: true,
	EncodingUSNSN:       true,
	EncodingCDSN:        true,
	EncodingGraefenberg: true,
	EncodingIPGS:        true,
	EncodingSRO:         true,
	EncodingHGLP:        true,
	EncodingDWWSSN:      true,
	EncodingRSTN:        true,
}

// Retired reports whether the encoding is no longer supported for output.
// Unrecognized values are not retired; they fail later for other reasons.
func (e Encoding) Retired() bool {
	return retiredEncodings[e]
}

// SampleType returns the in-memory sample storage type implied by the
// encoding, and false if the encoding has no defined sample type.
func (e Encoding) SampleType() (SampleType, bool) {
	switch e {
	case EncodingText:
		return SampleTypeText, true
	case EncodingInt16, EncodingInt32, EncodingSteim1, EncodingSteim2:
		return SampleTypeInt32, true
	case EncodingFloat32:
		return SampleTypeFloat32, true
	case EncodingFloat64:
		return SampleTypeFloat64, true
	default:
		return SampleTypeUnknown, false
	}
}

// wireOrder classifies the byte order an encoding's payload is defined to
// be stored in.
type wireOrder uint8

const (
	orderUnknown wireOrder = iota
	orderBig
	orderLittle
	orderAny
)

// wireByteOrder returns the defined storage byte order for the encoding.
// Steim frames are big-endian by definition, fixed-width numeric payloads
// are little-endian in the version 3 container, and text has no byte order.
func (e Encoding) wireByteOrder() wireOrder {
	switch e {
	case EncodingSteim1, EncodingSteim2:
		return orderBig
	case EncodingInt16, EncodingInt32, EncodingFloat32, EncodingFloat64:
		return orderLittle
	case EncodingText:
		return orderAny
	default:
		return orderUnknown
	}
}

// String returns the conventional name of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingNone:
		return "unspecified"
	case EncodingText:
		return "Text"
	case EncodingInt16:
		return "Int16"
	case EncodingInt24:
		return "Int24"
	case EncodingInt32:
		return "Int32"
	case EncodingFloat32:
		return "Float32"
	case EncodingFloat64:
		return "Float64"
	case EncodingSteim1:
		return "Steim1"
	case EncodingSteim2:
		return "Steim2"
	case EncodingGeoscope24:
		return "GEOSCOPE 24-bit"
	case EncodingGeoscope163:
		return "GEOSCOPE 16-bit gain ranged, 3-bit exponent"
	case EncodingGeoscope164:
		return "GEOSCOPE 16-bit gain ranged, 4-bit exponent"
	case EncodingUSNSN:
		return "US National Network"
	case EncodingCDSN:
		return "CDSN"
	case EncodingGraefenberg:
		return "Graefenberg"
	case EncodingIPGS:
		return "IPG Strasbourg"
	case EncodingSteim3:
		return "Steim3"
	case EncodingSRO:
		return "SRO"
	case EncodingHGLP:
		return "HGLP"
	case EncodingDWWSSN:
		return "DWWSSN"
	case EncodingRSTN:
		return "RSTN"
	default:
		return fmt.Sprintf("Encoding(%d)", int16(e))
	}
}
