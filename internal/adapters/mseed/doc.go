// Package mseed implements the wire-format ports for miniSEED input and
// output.
//
// The reader parses miniSEED 2 records (fixed section of data header plus
// blockette 1000) and miniSEED 3 records from a byte stream into
// domain.Record descriptors, keeping the raw payload bytes for the
// header-only repack path. The packer produces miniSEED 3 records (and
// miniSEED 2 for version 2 output) from descriptors.
//
// Sample decoding and encoding cover the fixed-width encodings (int16,
// int32, float32, float64) and text. The Steim compression codecs are
// deliberately not implemented; Steim payloads pass through unchanged on
// the shortcut path and fail with domain.ErrDecode when a conversion
// would require decompressing them.
package mseed
