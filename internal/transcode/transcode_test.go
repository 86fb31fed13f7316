package transcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/EarthScope/mseedconvert/internal/domain"
)

func TestTranscodeSameTypeNoop(t *testing.T) {
	in := domain.Int32Samples{1, 2, 3}
	out, err := Transcode(in, domain.SampleTypeInt32)
	if err != nil {
		t.Fatalf("same-type transcode returned error: %v", err)
	}
	if &out.(domain.Int32Samples)[0] != &in[0] {
		t.Error("same-type transcode did not return the input buffer")
	}
}

func TestTranscodeEmptyNoop(t *testing.T) {
	out, err := Transcode(domain.Float64Samples{}, domain.SampleTypeInt32)
	if err != nil {
		t.Fatalf("empty transcode returned error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("empty transcode produced %d samples", out.Len())
	}

	if _, err := Transcode(nil, domain.SampleTypeInt32); err != nil {
		t.Fatalf("nil transcode returned error: %v", err)
	}
}

func TestTranscodeRoundTrip(t *testing.T) {
	in := domain.Int32Samples{1, 2, 3}

	wide, err := Transcode(in, domain.SampleTypeFloat64)
	if err != nil {
		t.Fatalf("widen to float64: %v", err)
	}
	back, err := Transcode(wide, domain.SampleTypeInt32)
	if err != nil {
		t.Fatalf("narrow back to int32: %v", err)
	}

	got := back.(domain.Int32Samples)
	if len(got) != len(in) {
		t.Fatalf("round trip length %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("sample %d = %d after round trip, want %d", i, got[i], in[i])
		}
	}
}

func TestTranscodePrecisionLoss(t *testing.T) {
	in := domain.Float64Samples{1.00001, 2.0}

	out, err := Transcode(in, domain.SampleTypeInt32)
	if !errors.Is(err, domain.ErrPrecisionLoss) {
		t.Fatalf("error = %v, want ErrPrecisionLoss", err)
	}
	// Failure is atomic: the input comes back untouched.
	if out.(domain.Float64Samples)[0] != 1.00001 {
		t.Error("source buffer mutated on failed conversion")
	}
}

func TestTranscodeSubEpsilonResidualPasses(t *testing.T) {
	// Residuals at or below the epsilon are treated as representation
	// noise and round away, they are not precision loss.
	in := domain.Float64Samples{1.0000001, 2.0}

	out, err := Transcode(in, domain.SampleTypeInt32)
	if err != nil {
		t.Fatalf("sub-epsilon residual rejected: %v", err)
	}
	got := out.(domain.Int32Samples)
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("samples = %v, want [1 2]", got)
	}
}

func TestTranscodeExactValuesSucceed(t *testing.T) {
	in := domain.Float64Samples{1.0000000, 2.0}

	out, err := Transcode(in, domain.SampleTypeInt32)
	if err != nil {
		t.Fatalf("lossless narrowing failed: %v", err)
	}
	got := out.(domain.Int32Samples)
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("narrowed samples = %v, want [1 2]", got)
	}
}

func TestTranscodeFirstOffenderAborts(t *testing.T) {
	in := domain.Float32Samples{1.5, 2.5, 3.5}

	_, err := Transcode(in, domain.SampleTypeInt32)
	if !errors.Is(err, domain.ErrPrecisionLoss) {
		t.Fatalf("error = %v, want ErrPrecisionLoss", err)
	}
	// The message names the first offending sample.
	if want := "sample 0"; err != nil && !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not name %q", err, want)
	}
}

func TestTranscodeNegativeResidualPasses(t *testing.T) {
	// The residual check is sign-naive: negative fractions slip through
	// and round via the legacy x+0.5 truncation.
	in := domain.Float64Samples{-1.25, 4.0}

	out, err := Transcode(in, domain.SampleTypeInt32)
	if err != nil {
		t.Fatalf("negative fraction rejected: %v", err)
	}
	got := out.(domain.Int32Samples)
	if got[0] != 0 || got[1] != 4 {
		t.Errorf("samples = %v, want [0 4]", got)
	}
}

func TestTranscodeWiden(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Samples
		to   domain.SampleType
		want domain.Samples
	}{
		{"int32 to float32", domain.Int32Samples{-7, 7}, domain.SampleTypeFloat32, domain.Float32Samples{-7, 7}},
		{"int32 to float64", domain.Int32Samples{-7, 7}, domain.SampleTypeFloat64, domain.Float64Samples{-7, 7}},
		{"float32 to float64", domain.Float32Samples{1.5}, domain.SampleTypeFloat64, domain.Float64Samples{1.5}},
		{"float64 to float32", domain.Float64Samples{1.5}, domain.SampleTypeFloat32, domain.Float32Samples{1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Transcode(tt.in, tt.to)
			if err != nil {
				t.Fatalf("Transcode: %v", err)
			}
			if out.Type() != tt.to || out.Len() != tt.in.Len() {
				t.Fatalf("got %s[%d], want %s[%d]", out.Type(), out.Len(), tt.to, tt.in.Len())
			}
		})
	}
}

func TestTranscodeTextIncompatible(t *testing.T) {
	if _, err := Transcode(domain.TextSamples("abc"), domain.SampleTypeInt32); !errors.Is(err, domain.ErrIncompatibleType) {
		t.Errorf("text to int32 error = %v, want ErrIncompatibleType", err)
	}
	if _, err := Transcode(domain.Int32Samples{1}, domain.SampleTypeText); !errors.Is(err, domain.ErrIncompatibleType) {
		t.Errorf("int32 to text error = %v, want ErrIncompatibleType", err)
	}
	// Text to text is a same-type no-op, not an error.
	if _, err := Transcode(domain.TextSamples("abc"), domain.SampleTypeText); err != nil {
		t.Errorf("text to text returned error: %v", err)
	}
}
