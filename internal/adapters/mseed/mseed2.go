package mseed

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// miniSEED 2 fixed section of data header layout.
const (
	ms2HeaderLen = 48
	ms2MinRecLen = 128

	ms2OffStation    = 8
	ms2OffLocation   = 13
	ms2OffChannel    = 15
	ms2OffNetwork    = 18
	ms2OffTime       = 20
	ms2OffNumSamples = 30
	ms2OffRateFactor = 32
	ms2OffRateMult   = 34
	ms2OffActFlags   = 36
	ms2OffIOFlags    = 37
	ms2OffQualFlags  = 38
	ms2OffNumBlk     = 39
	ms2OffDataOffset = 44
	ms2OffBlkOffset  = 46
)

// readRecord2 reads one version 2 record. The first bytes have been
// peeked but not consumed. Record length, payload encoding, and payload
// byte order come from blockette 1000, which is required.
func (r *Reader) readRecord2() (*domain.Record, error) {
	// Read the minimum record length first; the fixed header and the
	// blockette chain, including blockette 1000, fit within it.
	head := make([]byte, ms2MinRecLen)
	if _, err := io.ReadFull(r.br, head); err != nil {
		return nil, fmt.Errorf("short version 2 record: %w", errUnexpected(err))
	}

	seq := string(head[0:6])
	quality := head[6]
	if !validQuality(quality) {
		return nil, fmt.Errorf("unrecognized version 2 record indicator %q in %q", quality, seq)
	}

	// Header byte order is not declared; detect it from a plausible year.
	u16 := binary.BigEndian.Uint16
	swappedHeader := false
	if year := u16(head[ms2OffTime:]); year < 1900 || year > 2100 {
		u16 = binary.LittleEndian.Uint16
		swappedHeader = r.hostBig
	} else {
		swappedHeader = !r.hostBig
	}

	blk, err := parseBlockette1000(head, u16)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sid2(head), err)
	}

	recLen := 1 << blk.recLenExp
	if recLen < ms2MinRecLen || recLen > domain.MaxRecLen {
		return nil, fmt.Errorf("%s: implausible record length 2**%d", sid2(head), blk.recLenExp)
	}

	full := make([]byte, recLen)
	copy(full, head)
	if recLen > ms2MinRecLen {
		if _, err := io.ReadFull(r.br, full[ms2MinRecLen:]); err != nil {
			return nil, fmt.Errorf("short version 2 record body: %w", errUnexpected(err))
		}
	}

	sampleCount := int64(u16(full[ms2OffNumSamples:]))
	dataOffset := int(u16(full[ms2OffDataOffset:]))

	var payload []byte
	if dataOffset >= ms2HeaderLen && dataOffset < recLen {
		payload = trimPayload(domain.Encoding(blk.encoding), full[dataOffset:recLen], sampleCount)
	}

	flags := domain.SwapFlags(0)
	if swappedHeader {
		flags |= domain.SwapHeader
	}
	payloadBig := blk.wordOrder != 0
	if payloadBig != r.hostBig {
		flags |= domain.SwapPayload
	}

	rec := &domain.Record{
		SourceID:      sid2(full),
		FormatVersion: 2,
		Flags:         flags3(full[ms2OffActFlags], full[ms2OffIOFlags], full[ms2OffQualFlags]),
		StartTime:     ms2Time(full, u16),
		SampleRate:    ms2SampleRate(full, u16),
		Encoding:      domain.Encoding(blk.encoding),
		RecLen:        recLen,
		PubVersion:    pubVersion(quality),
		SampleCount:   sampleCount,
		RawPayload:    payload,
		SwapFlags:     flags,
	}
	return rec, nil
}

// blockette1000 carries the data-only blockette fields the converter
// needs from a version 2 record.
type blockette1000 struct {
	encoding  uint8
	wordOrder uint8
	recLenExp uint8
}

// parseBlockette1000 walks the blockette chain looking for blockette 1000.
func parseBlockette1000(head []byte, u16 func([]byte) uint16) (blockette1000, error) {
	offset := int(u16(head[ms2OffBlkOffset:]))
	for n := 0; offset > 0 && n < int(head[ms2OffNumBlk]); n++ {
		if offset+8 > len(head) {
			break
		}
		blkType := u16(head[offset:])
		next := int(u16(head[offset+2:]))

		if blkType == 1000 {
			return blockette1000{
				encoding:  head[offset+4],
				wordOrder: head[offset+5],
				recLenExp: head[offset+6],
			}, nil
		}
		if next <= offset {
			break
		}
		offset = next
	}
	return blockette1000{}, fmt.Errorf("no blockette 1000 in version 2 record")
}

// trimPayload drops record padding after fixed-width sample data. The
// used length of compressed payloads is unknowable without decoding, so
// they keep the full data area.
func trimPayload(encoding domain.Encoding, data []byte, sampleCount int64) []byte {
	size := 0
	switch encoding {
	case domain.EncodingInt16:
		size = 2
	case domain.EncodingInt32, domain.EncodingFloat32:
		size = 4
	case domain.EncodingFloat64:
		size = 8
	}
	if size > 0 && int64(size)*sampleCount <= int64(len(data)) {
		data = data[:int64(size)*sampleCount]
	}
	return append([]byte(nil), data...)
}

func validQuality(q byte) bool {
	return q == 'D' || q == 'R' || q == 'Q' || q == 'M'
}

// pubVersion maps the version 2 data quality indicator to a publication
// version.
func pubVersion(quality byte) uint8 {
	switch quality {
	case 'R':
		return 1
	case 'D':
		return 2
	case 'Q':
		return 3
	case 'M':
		return 4
	default:
		return 1
	}
}

// flags3 folds the version 2 flag bytes into the version 3 flag bits:
// calibration signals present, time tag questionable, clock locked.
func flags3(activity, ioClock, quality byte) uint8 {
	var f uint8
	if activity&0x01 != 0 {
		f |= 0x01
	}
	if quality&0x80 != 0 {
		f |= 0x02
	}
	if ioClock&0x20 != 0 {
		f |= 0x04
	}
	return f
}

// ms2Time composes the start time from the BTIME fields. The fractional
// field counts 0.0001 second units.
func ms2Time(head []byte, u16 func([]byte) uint16) time.Time {
	year := int(u16(head[ms2OffTime:]))
	day := int(u16(head[ms2OffTime+2:]))
	fract := int(u16(head[ms2OffTime+8:]))

	t := time.Date(year, time.January, 1,
		int(head[ms2OffTime+4]), int(head[ms2OffTime+5]), int(head[ms2OffTime+6]),
		fract*100000, time.UTC)
	return t.AddDate(0, 0, day-1)
}

// ms2SampleRate derives the rate in Hz from the factor and multiplier.
func ms2SampleRate(head []byte, u16 func([]byte) uint16) float64 {
	factor := int16(u16(head[ms2OffRateFactor:]))
	mult := int16(u16(head[ms2OffRateMult:]))

	var rate float64
	switch {
	case factor > 0:
		rate = float64(factor)
	case factor < 0:
		rate = -1.0 / float64(factor)
	default:
		return 0
	}
	switch {
	case mult > 0:
		rate *= float64(mult)
	case mult < 0:
		rate /= -float64(mult)
	}
	return rate
}
