package domain

import "errors"

// Sentinel errors for the conversion pipeline. Failures are wrapped with
// record context using fmt.Errorf and %w; none are retried.
var (
	// ErrPrecisionLoss indicates a sample type conversion would silently
	// discard sub-integer information.
	ErrPrecisionLoss = errors.New("precision loss converting samples")

	// ErrIncompatibleType indicates a conversion between text and numeric
	// sample storage was attempted.
	ErrIncompatibleType = errors.New("incompatible sample type conversion")

	// ErrUnsupportedEncoding indicates the requested output encoding is
	// retired and no longer supported for packing.
	ErrUnsupportedEncoding = errors.New("encoding not supported for output")

	// ErrPatch indicates the extra header merge patch could not be parsed
	// or applied.
	ErrPatch = errors.New("extra header patch failed")

	// ErrDecode indicates a payload could not be decoded given its
	// declared encoding.
	ErrDecode = errors.New("cannot decode data samples")

	// ErrPack indicates the packer refused a record on the full path.
	ErrPack = errors.New("cannot pack record")

	// ErrRepack indicates the packer refused a header-only repack.
	ErrRepack = errors.New("cannot repack record")
)
