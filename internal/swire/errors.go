package swire

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes configuration failures raised while building a route script.
type ErrorKind int

const (
	// KindUnknownRoute indicates a route number missing from the registry
	KindUnknownRoute ErrorKind = iota + 1
	// KindUnsupportedSampleRate indicates a rate with no table entry
	KindUnsupportedSampleRate
	// KindUnsupportedFrameShape indicates rows or cols with no control code
	KindUnsupportedFrameShape
	// KindIntervalOverflow indicates a sample interval outside 16 bits
	KindIntervalOverflow
	// KindInvalidWordLength indicates a word length the port register cannot hold
	KindInvalidWordLength
	// KindInvalidChannelCount indicates a channel count outside 1..3
	KindInvalidChannelCount
	// KindInvalidFrameSize indicates a frame size the 16-bit device register cannot hold
	KindInvalidFrameSize
)

// Sentinel errors matched by ConfigurationError.Unwrap.
var (
	ErrUnknownRoute          = errors.New("unknown route")
	ErrUnsupportedSampleRate = errors.New("unsupported sample rate")
	ErrUnsupportedFrameShape = errors.New("unsupported frame shape")
	ErrIntervalOverflow      = errors.New("sample interval overflow")
	ErrInvalidWordLength     = errors.New("invalid word length")
	ErrInvalidChannelCount   = errors.New("invalid channel count")
	ErrInvalidFrameSize      = errors.New("invalid frame size")
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnknownRoute:
		return "unknown_route"
	case KindUnsupportedSampleRate:
		return "unsupported_sample_rate"
	case KindUnsupportedFrameShape:
		return "unsupported_frame_shape"
	case KindIntervalOverflow:
		return "interval_overflow"
	case KindInvalidWordLength:
		return "invalid_word_length"
	case KindInvalidChannelCount:
		return "invalid_channel_count"
	case KindInvalidFrameSize:
		return "invalid_frame_size"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnknownRoute:
		return ErrUnknownRoute
	case KindUnsupportedSampleRate:
		return ErrUnsupportedSampleRate
	case KindUnsupportedFrameShape:
		return ErrUnsupportedFrameShape
	case KindIntervalOverflow:
		return ErrIntervalOverflow
	case KindInvalidWordLength:
		return ErrInvalidWordLength
	case KindInvalidChannelCount:
		return ErrInvalidChannelCount
	case KindInvalidFrameSize:
		return ErrInvalidFrameSize
	}
	return nil
}

// ConfigurationError is fatal to one configuration pass. It carries the
// parameter that failed and the value the caller supplied for it.
type ConfigurationError struct {
	Kind  ErrorKind
	Param string
	Value any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s=%v", e.Kind.sentinel(), e.Param, e.Value)
}

// Unwrap returns the sentinel for the error kind so errors.Is works.
func (e *ConfigurationError) Unwrap() error {
	return e.Kind.sentinel()
}

func configErr(kind ErrorKind, param string, value any) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Param: param, Value: value}
}
