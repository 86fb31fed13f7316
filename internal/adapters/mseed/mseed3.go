package mseed

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// miniSEED 3 fixed header layout. All multi-byte fields little-endian.
const (
	ms3HeaderLen = 40

	ms3OffNanosecond = 4
	ms3OffYear       = 8
	ms3OffDay        = 10
	ms3OffHour       = 12
	ms3OffMinute     = 13
	ms3OffSecond     = 14
	ms3OffEncoding   = 15
	ms3OffSampleRate = 16
	ms3OffNumSamples = 24
	ms3OffCRC        = 28
	ms3OffPubVersion = 32
	ms3OffSIDLen     = 33
	ms3OffExtraLen   = 34
	ms3OffDataLen    = 36
)

// castagnoli is the CRC-32C polynomial table used for the version 3
// record checksum.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// readRecord3 reads one version 3 record. The three sync bytes
// ("MS" + version) have been peeked but not consumed.
func (r *Reader) readRecord3() (*domain.Record, error) {
	header := make([]byte, ms3HeaderLen)
	if _, err := io.ReadFull(r.br, header); err != nil {
		return nil, fmt.Errorf("short version 3 header: %w", errUnexpected(err))
	}

	sidLen := int(header[ms3OffSIDLen])
	extraLen := int(binary.LittleEndian.Uint16(header[ms3OffExtraLen:]))
	dataLen := int(binary.LittleEndian.Uint32(header[ms3OffDataLen:]))

	tail := make([]byte, sidLen+extraLen+dataLen)
	if _, err := io.ReadFull(r.br, tail); err != nil {
		return nil, fmt.Errorf("short version 3 record body: %w", errUnexpected(err))
	}

	sid := string(tail[:sidLen])
	var extra []byte
	if extraLen > 0 {
		extra = append([]byte(nil), tail[sidLen:sidLen+extraLen]...)
	}
	payload := append([]byte(nil), tail[sidLen+extraLen:]...)

	encoding := domain.Encoding(header[ms3OffEncoding])

	rate := math.Float64frombits(binary.LittleEndian.Uint64(header[ms3OffSampleRate:]))
	if rate < 0 {
		// Negative values carry a sample period in seconds.
		rate = -1.0 / rate
	}

	rec := &domain.Record{
		SourceID:      sid,
		FormatVersion: 3,
		Flags:         header[3],
		StartTime:     ms3Time(header),
		SampleRate:    rate,
		Encoding:      encoding,
		RecLen:        ms3HeaderLen + sidLen + extraLen + dataLen,
		PubVersion:    header[ms3OffPubVersion],
		ExtraHeaders:  extra,
		SampleCount:   int64(binary.LittleEndian.Uint32(header[ms3OffNumSamples:])),
		RawPayload:    payload,
		SwapFlags:     payloadSwapFlags(encoding, r.hostBig),
	}
	return rec, nil
}

// ms3Time composes the record start time from the header time fields.
func ms3Time(header []byte) time.Time {
	nanosecond := binary.LittleEndian.Uint32(header[ms3OffNanosecond:])
	year := int(binary.LittleEndian.Uint16(header[ms3OffYear:]))
	day := int(binary.LittleEndian.Uint16(header[ms3OffDay:]))

	t := time.Date(year, time.January, 1,
		int(header[ms3OffHour]), int(header[ms3OffMinute]), int(header[ms3OffSecond]),
		int(nanosecond), time.UTC)
	return t.AddDate(0, 0, day-1)
}

// payloadSwapFlags derives the swap state of a version 3 payload: fixed
// width payloads are stored little-endian and Steim frames big-endian, so
// a swap is pending whenever the host order differs from the defined
// storage order.
func payloadSwapFlags(encoding domain.Encoding, hostBig bool) domain.SwapFlags {
	switch encoding {
	case domain.EncodingSteim1, domain.EncodingSteim2:
		if !hostBig {
			return domain.SwapPayload
		}
	case domain.EncodingInt16, domain.EncodingInt32, domain.EncodingFloat32, domain.EncodingFloat64:
		if hostBig {
			return domain.SwapPayload
		}
	}
	return 0
}

// buildRecord3 assembles one complete version 3 record with its CRC.
func buildRecord3(rec *domain.Record, sampleCount int64, payload []byte) []byte {
	sid := []byte(rec.SourceID)
	total := ms3HeaderLen + len(sid) + len(rec.ExtraHeaders) + len(payload)
	out := make([]byte, total)

	out[0] = 'M'
	out[1] = 'S'
	out[2] = 3
	out[3] = rec.Flags

	t := rec.StartTime.UTC()
	binary.LittleEndian.PutUint32(out[ms3OffNanosecond:], uint32(t.Nanosecond()))
	binary.LittleEndian.PutUint16(out[ms3OffYear:], uint16(t.Year()))
	binary.LittleEndian.PutUint16(out[ms3OffDay:], uint16(t.YearDay()))
	out[ms3OffHour] = uint8(t.Hour())
	out[ms3OffMinute] = uint8(t.Minute())
	out[ms3OffSecond] = uint8(t.Second())

	out[ms3OffEncoding] = uint8(rec.Encoding)
	binary.LittleEndian.PutUint64(out[ms3OffSampleRate:], math.Float64bits(rec.SampleRate))
	binary.LittleEndian.PutUint32(out[ms3OffNumSamples:], uint32(sampleCount))
	out[ms3OffPubVersion] = rec.PubVersion
	out[ms3OffSIDLen] = uint8(len(sid))
	binary.LittleEndian.PutUint16(out[ms3OffExtraLen:], uint16(len(rec.ExtraHeaders)))
	binary.LittleEndian.PutUint32(out[ms3OffDataLen:], uint32(len(payload)))

	n := ms3HeaderLen
	n += copy(out[n:], sid)
	n += copy(out[n:], rec.ExtraHeaders)
	copy(out[n:], payload)

	// CRC-32C over the whole record with the CRC field zeroed.
	binary.LittleEndian.PutUint32(out[ms3OffCRC:], crc32.Checksum(out, castagnoli))
	return out
}

// ms3Overhead returns the non-payload bytes of a version 3 record for the
// given descriptor.
func ms3Overhead(rec *domain.Record) int {
	return ms3HeaderLen + len(rec.SourceID) + len(rec.ExtraHeaders)
}
