package swire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleIntervalFitsSixteenBits(t *testing.T) {
	for _, r := range SupportedRates {
		got, err := SampleInterval(DefaultBusBitRate, r)
		require.NoError(t, err, "rate %d", r)
		assert.Equal(t, uint16(DefaultBusBitRate/int(r)-1), got)
	}

	got, err := SampleInterval(DefaultBusBitRate, 1536)
	require.NoError(t, err)
	assert.Equal(t, uint16(15), got, "PDM bit clock")
}

func TestSampleIntervalOverflow(t *testing.T) {
	_, err := SampleInterval(DefaultBusBitRate*1000, Rate8)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIntervalOverflow)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, DefaultBusBitRate*1000/8-1, cfgErr.Value)
}

func TestSampleIntervalRejectsRateAboveBitRate(t *testing.T) {
	_, err := SampleInterval(DefaultBusBitRate, SampleRate(DefaultBusBitRate*2))
	assert.ErrorIs(t, err, ErrIntervalOverflow)
}

func TestSampleIntervalZeroRate(t *testing.T) {
	_, err := SampleInterval(DefaultBusBitRate, 0)
	assert.ErrorIs(t, err, ErrUnsupportedSampleRate)
}

func TestRateCode(t *testing.T) {
	code, err := RateCode(Rate48)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), code)

	code, err = RateCode(Rate192)
	require.NoError(t, err)
	assert.Equal(t, uint16(6), code)

	_, err = RateCode(SampleRate(1536))
	assert.ErrorIs(t, err, ErrUnsupportedSampleRate)
}

func TestRateTablesDefineEverySupportedRate(t *testing.T) {
	for _, r := range SupportedRates {
		assert.True(t, r.IsSupported())
		_, err := RateCode(r)
		assert.NoError(t, err, "rate code for %d", r)
		_, err = BaselineShape(r)
		assert.NoError(t, err, "shape for %d", r)
	}
	assert.False(t, SampleRate(44).IsSupported())
}

func TestFrameSizeCode(t *testing.T) {
	tests := []struct {
		ms      float64
		want    uint16
		wantErr bool
	}{
		{ms: 0.5, want: 0},
		{ms: 1, want: 1},
		{ms: 2, want: 2},
		{ms: 8, want: 8},
		{ms: 65535, want: 0xFFFF},
		{ms: 65536, wantErr: true},
		{ms: 70000, wantErr: true},
		{ms: 1.5, wantErr: true},
		{ms: 0, wantErr: true},
		{ms: -2, wantErr: true},
		{ms: math.NaN(), wantErr: true},
		{ms: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		got, err := FrameSizeCode(tt.ms)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidFrameSize, "frame size %v", tt.ms)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "frame_size", cfgErr.Param)
			continue
		}
		require.NoError(t, err, "frame size %v", tt.ms)
		assert.Equal(t, tt.want, got, "frame size %v", tt.ms)
	}
}

func TestFramesFor(t *testing.T) {
	assert.Equal(t, 480, FramesFor(10, Rate48))
	assert.Equal(t, 32, FramesFor(2, Rate16))
}
