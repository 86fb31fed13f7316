package domain

import "encoding/binary"

// CanShortcut reports whether a record can be rewritten as a version 3
// container reusing its still-encoded payload bytes, without a decode and
// re-encode round trip.
//
// The shortcut applies only when the payload bytes are already stored in
// the byte order the version 3 container defines for the record's
// encoding: big-endian for the Steim families, little-endian for the
// fixed-width numeric encodings. Text payloads have no byte order and are
// always eligible; unrecognized encodings never are. A record with no
// samples has no payload to reason about and is always eligible,
// whatever encoding was requested.
//
// Getting this classification wrong corrupts sample data without any
// visible error, so the truth table is covered exhaustively in tests.
func CanShortcut(r *Record, version uint8, encoding Encoding, hostBigEndian, forceRepack bool) bool {
	if forceRepack || version != 3 {
		return false
	}
	if r.SampleCount == 0 {
		return true
	}
	if encoding != EncodingNone && encoding != r.Encoding {
		return false
	}

	// Effective byte order of the stored payload: the host order, flipped
	// when a swap is pending.
	payloadBigEndian := hostBigEndian != r.SwapFlags.PayloadSwapped()

	switch r.Encoding.wireByteOrder() {
	case orderBig:
		return payloadBigEndian
	case orderLittle:
		return !payloadBigEndian
	case orderAny:
		return true
	default:
		return false
	}
}

// NativeIsBigEndian reports whether the host stores integers big-endian.
func NativeIsBigEndian() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	return buf[0] == 0
}
