// Package ports defines the interfaces that connect the conversion
// pipeline to the wire-format and I/O adapters.
//
// The pipeline (internal/app) depends only on these interfaces; concrete
// implementations live in internal/adapters. This keeps the recoding
// policy, transcoding, and header patching testable with in-memory fakes,
// and keeps the miniSEED wire codec replaceable.
//
// # Port interfaces
//
//   - [Reader]: yields parsed record descriptors from an input stream
//   - [Decoder]: decodes a record's raw payload into typed samples on
//     demand
//   - [Packer]: produces on-wire records, either by header-only repack or
//     by fully re-encoding the payload
//   - [Sink]: append-only, in-order output byte stream
package ports
