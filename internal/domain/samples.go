package domain

// SampleType identifies the in-memory storage type of decoded samples.
type SampleType uint8

const (
	SampleTypeUnknown SampleType = iota
	SampleTypeText
	SampleTypeInt32
	SampleTypeFloat32
	SampleTypeFloat64
)

// Size returns the storage size of one sample in bytes.
func (t SampleType) Size() int {
	switch t {
	case SampleTypeText:
		return 1
	case SampleTypeInt32, SampleTypeFloat32:
		return 4
	case SampleTypeFloat64:
		return 8
	default:
		return 0
	}
}

// String returns the conventional name of the sample type.
func (t SampleType) String() string {
	switch t {
	case SampleTypeText:
		return "text"
	case SampleTypeInt32:
		return "int32"
	case SampleTypeFloat32:
		return "float32"
	case SampleTypeFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// Samples is a decoded sample buffer. It is a closed tagged variant over
// the supported storage types; consumers dispatch with a type switch so a
// new sample type cannot silently fall through a default branch.
type Samples interface {
	Type() SampleType
	Len() int
}

// Int32Samples holds 32-bit integer samples.
type Int32Samples []int32

func (s Int32Samples) Type() SampleType { return SampleTypeInt32 }
func (s Int32Samples) Len() int         { return len(s) }

// Float32Samples holds 32-bit floating point samples.
type Float32Samples []float32

func (s Float32Samples) Type() SampleType { return SampleTypeFloat32 }
func (s Float32Samples) Len() int         { return len(s) }

// Float64Samples holds 64-bit floating point samples.
type Float64Samples []float64

func (s Float64Samples) Type() SampleType { return SampleTypeFloat64 }
func (s Float64Samples) Len() int         { return len(s) }

// TextSamples holds fixed-width text payload bytes.
type TextSamples []byte

func (s TextSamples) Type() SampleType { return SampleTypeText }
func (s TextSamples) Len() int         { return len(s) }
