package mseed

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// Decoder implements ports.Decoder for the fixed-width encodings and
// text. Steim payloads cannot be decoded here; records carrying them are
// converted via the shortcut path or not at all.
type Decoder struct {
	hostBig bool
}

// NewDecoder creates a payload decoder.
func NewDecoder() *Decoder {
	return &Decoder{hostBig: domain.NativeIsBigEndian()}
}

// Decode populates rec.Samples from the raw payload bytes.
func (d *Decoder) Decode(rec *domain.Record) error {
	if rec.SampleCount == 0 || len(rec.RawPayload) == 0 {
		rec.Samples = nil
		return nil
	}

	order := storedOrder(d.hostBig, rec.SwapFlags.PayloadSwapped())
	raw := rec.RawPayload
	n := int(rec.SampleCount)

	switch rec.Encoding {
	case domain.EncodingText:
		rec.Samples = domain.TextSamples(append([]byte(nil), raw...))
		return nil

	case domain.EncodingInt16:
		if err := checkPayloadLen(rec, n, 2); err != nil {
			return err
		}
		out := make(domain.Int32Samples, n)
		for i := 0; i < n; i++ {
			out[i] = int32(int16(order.Uint16(raw[i*2:])))
		}
		rec.Samples = out
		return nil

	case domain.EncodingInt32:
		if err := checkPayloadLen(rec, n, 4); err != nil {
			return err
		}
		out := make(domain.Int32Samples, n)
		for i := 0; i < n; i++ {
			out[i] = int32(order.Uint32(raw[i*4:]))
		}
		rec.Samples = out
		return nil

	case domain.EncodingFloat32:
		if err := checkPayloadLen(rec, n, 4); err != nil {
			return err
		}
		out := make(domain.Float32Samples, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float32frombits(order.Uint32(raw[i*4:]))
		}
		rec.Samples = out
		return nil

	case domain.EncodingFloat64:
		if err := checkPayloadLen(rec, n, 8); err != nil {
			return err
		}
		out := make(domain.Float64Samples, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
		rec.Samples = out
		return nil

	case domain.EncodingSteim1, domain.EncodingSteim2:
		return fmt.Errorf("no decoder for %s payloads: %w", rec.Encoding, domain.ErrDecode)

	default:
		return fmt.Errorf("encoding %s (%d): %w", rec.Encoding, int16(rec.Encoding), domain.ErrDecode)
	}
}

// encodeSamples serializes decoded samples for the given encoding using
// the version-appropriate byte order. Returns the encoded bytes per
// sample chunk.
func encodeSamples(s domain.Samples, encoding domain.Encoding, order binary.ByteOrder) ([]byte, error) {
	switch src := s.(type) {
	case domain.TextSamples:
		if encoding != domain.EncodingText {
			return nil, fmt.Errorf("text samples need the text encoding, got %s: %w", encoding, domain.ErrPack)
		}
		return []byte(src), nil

	case domain.Int32Samples:
		switch encoding {
		case domain.EncodingInt16:
			out := make([]byte, 2*len(src))
			for i, v := range src {
				if v > math.MaxInt16 || v < math.MinInt16 {
					return nil, fmt.Errorf("sample %d (%d) overflows int16: %w", i, v, domain.ErrPack)
				}
				order.PutUint16(out[i*2:], uint16(int16(v)))
			}
			return out, nil
		case domain.EncodingInt32:
			out := make([]byte, 4*len(src))
			for i, v := range src {
				order.PutUint32(out[i*4:], uint32(v))
			}
			return out, nil
		}

	case domain.Float32Samples:
		if encoding == domain.EncodingFloat32 {
			out := make([]byte, 4*len(src))
			for i, v := range src {
				order.PutUint32(out[i*4:], math.Float32bits(v))
			}
			return out, nil
		}

	case domain.Float64Samples:
		if encoding == domain.EncodingFloat64 {
			out := make([]byte, 8*len(src))
			for i, v := range src {
				order.PutUint64(out[i*8:], math.Float64bits(v))
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("no encoder for %s samples as %s: %w", s.Type(), encoding, domain.ErrPack)
}

// encodingWireSize returns the on-wire bytes per sample for an encoding
// the packer can produce, 0 otherwise. The wire width differs from the
// in-memory sample size for int16, which is held as int32.
func encodingWireSize(e domain.Encoding) int {
	switch e {
	case domain.EncodingText:
		return 1
	case domain.EncodingInt16:
		return 2
	case domain.EncodingInt32, domain.EncodingFloat32:
		return 4
	case domain.EncodingFloat64:
		return 8
	default:
		return 0
	}
}

// storedOrder returns the byte order the payload bytes are stored in,
// given the host order and whether a swap is pending.
func storedOrder(hostBig, swapped bool) binary.ByteOrder {
	if hostBig != swapped {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func checkPayloadLen(rec *domain.Record, n, size int) error {
	if len(rec.RawPayload) < n*size {
		return fmt.Errorf("payload is %d bytes, %d samples of %d need %d: %w",
			len(rec.RawPayload), n, size, n*size, domain.ErrDecode)
	}
	return nil
}
