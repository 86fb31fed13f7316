// Package transcode converts decoded sample buffers between storage types.
//
// Narrowing to integer is guarded by a precision-loss check: a fractional
// residual above [LossEpsilon] on any sample fails the whole conversion.
// Conversions stage into a fresh buffer, so a failed conversion leaves the
// source buffer untouched and the caller's record unmodified.
package transcode

import (
	"fmt"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

// LossEpsilon is the largest fractional residual tolerated when narrowing
// floating point samples to integers.
const LossEpsilon = 1e-6

// Transcode returns the samples converted to the given storage type.
//
// A same-type conversion and an empty buffer are no-ops returning the
// input unchanged. Text participates in no conversion. Rounding to integer
// is round-half-away-from-zero for positive values (the legacy x+0.5
// truncation), and the residual check only inspects positive residuals,
// matching the sign-naive legacy behavior.
//
// On success the returned buffer's capacity exactly fits the element
// count; on failure the input buffer is returned unchanged alongside the
// error.
func Transcode(s domain.Samples, to domain.SampleType) (domain.Samples, error) {
	if s == nil || s.Len() == 0 || s.Type() == to {
		return s, nil
	}

	out, err := convert(s, to)
	if err != nil {
		return s, err
	}
	return out, nil
}

func convert(s domain.Samples, to domain.SampleType) (domain.Samples, error) {
	switch to {
	case domain.SampleTypeInt32:
		return toInt32(s)
	case domain.SampleTypeFloat32:
		return toFloat32(s)
	case domain.SampleTypeFloat64:
		return toFloat64(s)
	case domain.SampleTypeText:
		return nil, fmt.Errorf("convert %s to text: %w", s.Type(), domain.ErrIncompatibleType)
	default:
		return nil, fmt.Errorf("convert %s to %s: %w", s.Type(), to, domain.ErrIncompatibleType)
	}
}

func toInt32(s domain.Samples) (domain.Samples, error) {
	switch src := s.(type) {
	case domain.Float32Samples:
		out := make(domain.Int32Samples, len(src))
		for i, v := range src {
			n, err := roundToInt32(float64(v), i)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case domain.Float64Samples:
		out := make(domain.Int32Samples, len(src))
		for i, v := range src {
			n, err := roundToInt32(v, i)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case domain.TextSamples:
		return nil, fmt.Errorf("convert text to int32: %w", domain.ErrIncompatibleType)
	case domain.Int32Samples:
		return src, nil
	default:
		return nil, fmt.Errorf("convert %s to int32: %w", s.Type(), domain.ErrIncompatibleType)
	}
}

// roundToInt32 rounds one sample, failing on a sub-integer residual above
// the epsilon. The first offending sample aborts the whole conversion.
func roundToInt32(v float64, idx int) (int32, error) {
	if residual := v - float64(int32(v)); residual > LossEpsilon {
		return 0, fmt.Errorf("sample %d: residual %g exceeds %g: %w",
			idx, residual, LossEpsilon, domain.ErrPrecisionLoss)
	}
	return int32(v + 0.5), nil
}

func toFloat32(s domain.Samples) (domain.Samples, error) {
	switch src := s.(type) {
	case domain.Int32Samples:
		out := make(domain.Float32Samples, len(src))
		for i, v := range src {
			out[i] = float32(v)
		}
		return out, nil
	case domain.Float64Samples:
		out := make(domain.Float32Samples, len(src))
		for i, v := range src {
			out[i] = float32(v)
		}
		return out, nil
	case domain.TextSamples:
		return nil, fmt.Errorf("convert text to float32: %w", domain.ErrIncompatibleType)
	case domain.Float32Samples:
		return src, nil
	default:
		return nil, fmt.Errorf("convert %s to float32: %w", s.Type(), domain.ErrIncompatibleType)
	}
}

func toFloat64(s domain.Samples) (domain.Samples, error) {
	switch src := s.(type) {
	case domain.Int32Samples:
		out := make(domain.Float64Samples, len(src))
		for i, v := range src {
			out[i] = float64(v)
		}
		return out, nil
	case domain.Float32Samples:
		out := make(domain.Float64Samples, len(src))
		for i, v := range src {
			out[i] = float64(v)
		}
		return out, nil
	case domain.TextSamples:
		return nil, fmt.Errorf("convert text to float64: %w", domain.ErrIncompatibleType)
	case domain.Float64Samples:
		return src, nil
	default:
		return nil, fmt.Errorf("convert %s to float64: %w", s.Type(), domain.ErrIncompatibleType)
	}
}
