// Package domain contains the core entities and decision logic for
// miniSEED record conversion.
//
// This package represents the innermost layer of the converter. It has no
// dependencies on infrastructure concerns (file I/O, wire parsing, logging)
// and contains only pure conversion rules.
//
// # Entities
//
//   - [Record]: one logical miniSEED record with header fields, raw payload
//     bytes, and optionally decoded samples
//   - [Samples]: the decoded sample payload as a tagged variant
//   - [Encoding]: the on-wire payload encoding enumeration
//
// # Decision logic
//
//   - [CanShortcut]: whether a record may be repacked header-only, reusing
//     its still-encoded payload bytes
//   - [Encoding.Retired]: whether an encoding is no longer supported for
//     output
package domain
