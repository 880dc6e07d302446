// Package swire computes bus frame geometry and register values for audio
// routes and sequences them into the ordered frame list of a route script.
//
// Rates are expressed in kHz-equivalent units throughout: a PCM rate of 48
// means 48 kHz, a PDM rate of 1536 means a 1.536 MHz bit clock. The bus bit
// rate uses the same unit (24576 = 12.288 MHz double data rate).
package swire

import (
	"math"
	"slices"
)

// SampleRate is a stream rate in kHz-equivalent units.
type SampleRate int

// Supported PCM sample rates. Every rate-keyed table defines all of them.
const (
	Rate8   SampleRate = 8
	Rate16  SampleRate = 16
	Rate24  SampleRate = 24
	Rate32  SampleRate = 32
	Rate48  SampleRate = 48
	Rate96  SampleRate = 96
	Rate192 SampleRate = 192
)

// DefaultBusBitRate is 12.288 MHz with double data rate.
const DefaultBusBitRate = 24576

// FallbackFrameRate anchors the frame when no PCM stream is present.
const FallbackFrameRate = Rate16

// SupportedRates lists the table-backed sample rates in ascending order.
var SupportedRates = []SampleRate{Rate8, Rate16, Rate24, Rate32, Rate48, Rate96, Rate192}

// HighestRate is the rate that packs rx and tx into one column.
const HighestRate = Rate192

// IsSupported reports whether r has an entry in the rate tables.
func (r SampleRate) IsSupported() bool {
	return slices.Contains(SupportedRates, r)
}

// rateCodes is the device sample-rate register encoding.
var rateCodes = map[SampleRate]uint16{
	Rate8:   0,
	Rate16:  1,
	Rate24:  2,
	Rate32:  3,
	Rate48:  4,
	Rate96:  5,
	Rate192: 6,
}

// RateCode returns the device sample-rate register value for r.
func RateCode(r SampleRate) (uint16, error) {
	code, ok := rateCodes[r]
	if !ok {
		return 0, configErr(KindUnsupportedSampleRate, "sample_rate", int(r))
	}
	return code, nil
}

// FramesFor converts a delay in milliseconds into a frame repeat count at
// the given frame rate. Frame rate equals sample rate, so a kHz value is
// also the number of frames per millisecond.
func FramesFor(ms int, frameRate SampleRate) int {
	return ms * int(frameRate)
}

// SampleInterval returns bitRate/rate - 1, the port sample interval.
func SampleInterval(bitRate int, rate SampleRate) (uint16, error) {
	if rate <= 0 {
		return 0, configErr(KindUnsupportedSampleRate, "sample_rate", int(rate))
	}
	interval := bitRate/int(rate) - 1
	if interval < 0 || interval > 0xFFFF {
		return 0, configErr(KindIntervalOverflow, "sample_interval", interval)
	}
	return uint16(interval), nil
}

// MaxFrameSize is the largest frame size in milliseconds the device frame
// size register holds.
const MaxFrameSize = 0xFFFF

// FrameSizeCode encodes a frame size in milliseconds for the device frame
// size register. Sizes in (0, 1) encode as zero; from one millisecond up the
// register holds whole milliseconds only.
func FrameSizeCode(ms float64) (uint16, error) {
	switch {
	case math.IsNaN(ms) || ms <= 0:
		return 0, configErr(KindInvalidFrameSize, "frame_size", ms)
	case ms < 1:
		return 0, nil
	case ms > MaxFrameSize || ms != math.Trunc(ms):
		return 0, configErr(KindInvalidFrameSize, "frame_size", ms)
	}
	return uint16(ms), nil
}
