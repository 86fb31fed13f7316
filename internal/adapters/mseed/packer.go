package mseed

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/EarthScope/mseedconvert/internal/domain"
	"github.com/EarthScope/mseedconvert/internal/ports"
)

// ms2DataOffset is where packed version 2 sample data begins: the fixed
// header, blockette 1000, and alignment padding.
const ms2DataOffset = 64

// ms2DefaultRecLen is used for version 2 output when no record length
// was requested.
const ms2DefaultRecLen = 4096

// Packer implements ports.Packer for miniSEED output.
type Packer struct {
	sequence uint32
}

// NewPacker creates a packer. One packer serves one output stream; its
// version 2 sequence numbers increase across records.
func NewPacker() *Packer {
	return &Packer{}
}

// Repack emits one version 3 record reusing the record's raw payload
// bytes unchanged.
func (p *Packer) Repack(rec *domain.Record) ([]byte, error) {
	if len(rec.SourceID) > math.MaxUint8 {
		return nil, fmt.Errorf("source identifier is %d bytes, limit %d: %w",
			len(rec.SourceID), math.MaxUint8, domain.ErrRepack)
	}
	if total := ms3Overhead(rec) + len(rec.RawPayload); total > domain.MaxRecLen {
		return nil, fmt.Errorf("record needs %d bytes, limit %d: %w",
			total, domain.MaxRecLen, domain.ErrRepack)
	}
	return buildRecord3(rec, rec.SampleCount, rec.RawPayload), nil
}

// Pack fully encodes the record's decoded samples into one or more
// physical records, emitted in order.
func (p *Packer) Pack(rec *domain.Record, emit ports.EmitFunc) (int64, int64, error) {
	switch rec.FormatVersion {
	case 3:
		return p.pack3(rec, emit)
	case 2:
		return p.pack2(rec, emit)
	default:
		return 0, 0, fmt.Errorf("output format version %d: %w", rec.FormatVersion, domain.ErrPack)
	}
}

func (p *Packer) pack3(rec *domain.Record, emit ports.EmitFunc) (int64, int64, error) {
	if rec.Samples == nil || rec.Samples.Len() == 0 {
		if err := emit(buildRecord3(rec, 0, nil)); err != nil {
			return 0, 0, err
		}
		return 1, 0, nil
	}

	sampleSize := encodingWireSize(rec.Encoding)
	if sampleSize <= 0 {
		return 0, 0, fmt.Errorf("no encoder for %s: %w", rec.Encoding, domain.ErrPack)
	}
	maxPayload := rec.RecLen - ms3Overhead(rec)
	maxSamples := maxPayload / sampleSize
	if maxSamples <= 0 {
		return 0, 0, fmt.Errorf("record length %d leaves no payload space: %w",
			rec.RecLen, domain.ErrPack)
	}

	var records, samples int64
	total := rec.Samples.Len()
	for lo := 0; lo < total; lo += maxSamples {
		hi := lo + maxSamples
		if hi > total {
			hi = total
		}
		chunk := sliceSamples(rec.Samples, lo, hi)

		payload, err := encodeSamples(chunk, rec.Encoding, binary.LittleEndian)
		if err != nil {
			return records, samples, err
		}
		if err := emit(buildRecord3(rec, int64(chunk.Len()), payload)); err != nil {
			return records, samples, err
		}
		records++
		samples += int64(chunk.Len())
	}
	return records, samples, nil
}

func (p *Packer) pack2(rec *domain.Record, emit ports.EmitFunc) (int64, int64, error) {
	recLen := rec.RecLen
	if recLen <= 0 {
		recLen = ms2DefaultRecLen
	}
	if recLen < ms2MinRecLen || recLen > 65536 || bits.OnesCount(uint(recLen)) != 1 {
		return 0, 0, fmt.Errorf("version 2 record length %d is not a power of two in [%d, 65536]: %w",
			recLen, ms2MinRecLen, domain.ErrPack)
	}

	if rec.Samples == nil || rec.Samples.Len() == 0 {
		if err := emit(p.buildRecord2(rec, recLen, nil, 0)); err != nil {
			return 0, 0, err
		}
		return 1, 0, nil
	}

	sampleSize := encodingWireSize(rec.Encoding)
	if sampleSize <= 0 {
		return 0, 0, fmt.Errorf("no encoder for %s: %w", rec.Encoding, domain.ErrPack)
	}
	maxSamples := (recLen - ms2DataOffset) / sampleSize
	if maxSamples <= 0 {
		return 0, 0, fmt.Errorf("record length %d leaves no payload space: %w", recLen, domain.ErrPack)
	}
	if maxSamples > math.MaxUint16 {
		maxSamples = math.MaxUint16
	}

	var records, samples int64
	total := rec.Samples.Len()
	for lo := 0; lo < total; lo += maxSamples {
		hi := lo + maxSamples
		if hi > total {
			hi = total
		}
		chunk := sliceSamples(rec.Samples, lo, hi)

		// Version 2 payloads are packed big-endian, the SEED standard
		// word order.
		payload, err := encodeSamples(chunk, rec.Encoding, binary.BigEndian)
		if err != nil {
			return records, samples, err
		}
		if err := emit(p.buildRecord2(rec, recLen, payload, chunk.Len())); err != nil {
			return records, samples, err
		}
		records++
		samples += int64(chunk.Len())
	}
	return records, samples, nil
}

// buildRecord2 assembles one fixed-length version 2 record: fixed header,
// blockette 1000, sample data, zero padding.
func (p *Packer) buildRecord2(rec *domain.Record, recLen int, payload []byte, sampleCount int) []byte {
	out := make([]byte, recLen)

	p.sequence++
	copy(out[0:6], fmt.Sprintf("%06d", p.sequence%1000000))
	out[6] = quality2(rec.PubVersion)
	out[7] = ' '

	net, sta, loc, cha := nslc(rec.SourceID)
	copyField(out[ms2OffStation:ms2OffStation+5], sta)
	copyField(out[ms2OffLocation:ms2OffLocation+2], loc)
	copyField(out[ms2OffChannel:ms2OffChannel+3], cha)
	copyField(out[ms2OffNetwork:ms2OffNetwork+2], net)

	t := rec.StartTime.UTC()
	binary.BigEndian.PutUint16(out[ms2OffTime:], uint16(t.Year()))
	binary.BigEndian.PutUint16(out[ms2OffTime+2:], uint16(t.YearDay()))
	out[ms2OffTime+4] = uint8(t.Hour())
	out[ms2OffTime+5] = uint8(t.Minute())
	out[ms2OffTime+6] = uint8(t.Second())
	binary.BigEndian.PutUint16(out[ms2OffTime+8:], uint16(t.Nanosecond()/100000))

	binary.BigEndian.PutUint16(out[ms2OffNumSamples:], uint16(sampleCount))
	factor, mult := rateFactorMult(rec.SampleRate)
	binary.BigEndian.PutUint16(out[ms2OffRateFactor:], uint16(factor))
	binary.BigEndian.PutUint16(out[ms2OffRateMult:], uint16(mult))

	out[ms2OffNumBlk] = 1
	binary.BigEndian.PutUint16(out[ms2OffDataOffset:], ms2DataOffset)
	binary.BigEndian.PutUint16(out[ms2OffBlkOffset:], ms2HeaderLen)

	// Blockette 1000 directly after the fixed header.
	binary.BigEndian.PutUint16(out[ms2HeaderLen:], 1000)
	out[ms2HeaderLen+4] = uint8(rec.Encoding)
	out[ms2HeaderLen+5] = 1 // big-endian word order
	out[ms2HeaderLen+6] = uint8(bits.TrailingZeros(uint(recLen)))

	copy(out[ms2DataOffset:], payload)
	return out
}

// quality2 maps a publication version back to the version 2 data quality
// indicator.
func quality2(pubVersion uint8) byte {
	switch pubVersion {
	case 1:
		return 'R'
	case 2:
		return 'D'
	case 3:
		return 'Q'
	case 4:
		return 'M'
	default:
		return 'D'
	}
}

// rateFactorMult derives the version 2 sample rate factor and multiplier
// from a rate in Hz.
func rateFactorMult(rate float64) (int16, int16) {
	switch {
	case rate == 0:
		return 0, 0
	case rate >= 1:
		return int16(math.Round(rate)), 1
	default:
		return int16(-math.Round(1 / rate)), 1
	}
}

func copyField(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

// sliceSamples returns the half-open subrange of a sample buffer.
func sliceSamples(s domain.Samples, lo, hi int) domain.Samples {
	switch v := s.(type) {
	case domain.Int32Samples:
		return v[lo:hi]
	case domain.Float32Samples:
		return v[lo:hi]
	case domain.Float64Samples:
		return v[lo:hi]
	case domain.TextSamples:
		return v[lo:hi]
	default:
		return s
	}
}
