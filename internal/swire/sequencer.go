package swire

// DynamicSyncPeriod is the number of frames in one dynamic sync cycle.
const DynamicSyncPeriod = 15

// DefaultLoopCount is the number of transfer loop iterations in a script.
const DefaultLoopCount = 100

// TeardownDelayMs separates channel disable from route stop.
const TeardownDelayMs = 2

// Stream content parameters for the generated test tone.
const (
	ToneFrequencyHz  = 1000
	PCMAmplitudeDBFS = -3
	PDMAmplitudeDBFS = -16
	WaveformPCM      = "sine"
	WaveformPDM      = "pdm_sine"
)

// Script is the ordered frame list of one route configuration, grouped by
// the section of the script skeleton each part belongs to.
type Script struct {
	Registers *RegisterSet
	FrameSize uint16

	// DeviceSetup configures the codec through the indirect protocol.
	DeviceSetup []BusFrame
	// ChannelSetup programs the bus data ports and the frame shape.
	ChannelSetup []BusFrame
	// StreamDefine describes the test data stream; empty without bus receive.
	StreamDefine []BusFrame
	// DataStream starts, runs and tears down the stream.
	DataStream []BusFrame
}

// Frames returns the bus frames in emission order. Stream definitions are
// not bus frames and are left out.
func (s *Script) Frames() []BusFrame {
	out := make([]BusFrame, 0, len(s.DeviceSetup)+len(s.ChannelSetup)+len(s.DataStream))
	for _, part := range [][]BusFrame{s.DeviceSetup, s.ChannelSetup, s.StreamDefine, s.DataStream} {
		for _, f := range part {
			if f.OnBus() {
				out = append(out, f)
			}
		}
	}
	return out
}

// Sequencer assembles register sets into ordered bus frames.
type Sequencer struct {
	bitRate   int
	loopCount int
}

// NewSequencer returns a sequencer for the given bus bit rate and transfer
// loop count.
func NewSequencer(bitRate, loopCount int) *Sequencer {
	return &Sequencer{bitRate: bitRate, loopCount: loopCount}
}

// Sequence builds the script for set. frameSize is the encoded device frame
// size register value.
func (q *Sequencer) Sequence(set *RegisterSet, frameSize uint16) (*Script, error) {
	rateCode, err := RateCode(set.FrameRate)
	if err != nil {
		return nil, err
	}
	access := NewAccessEncoder(set.FrameRate)
	route := set.Route
	shape := set.Shape

	script := &Script{Registers: set, FrameSize: frameSize}

	// Until the frame control write lands the bus still runs the default shape.
	writes := []DeviceWrite{
		{Address: DevRegFrameSize, Value: frameSize},
		{Address: DevRegSampleRate, Value: rateCode},
	}
	writes = append(writes, set.Auxiliary...)
	writes = append(writes, DeviceWrite{Address: DevRegRouteStart, Value: uint16(route.Number)})
	for _, w := range writes {
		script.DeviceSetup = append(script.DeviceSetup, access.Write(w, DefaultShape)...)
	}

	script.ChannelSetup = append(script.ChannelSetup, ping(1, false, DefaultShape))
	for _, v := range set.Ordered() {
		script.ChannelSetup = append(script.ChannelSetup, registerFrame(OpWrite, DeviceCodec, v.Address, v.Value, DefaultShape))
	}
	script.ChannelSetup = append(script.ChannelSetup,
		ping(1, false, DefaultShape),
		registerFrame(OpWrite, DeviceBroadcast, RegFrameCtrl, set.FrameControl, DefaultShape),
	)

	if route.HasBusReceive() {
		script.StreamDefine = append(script.StreamDefine, BusFrame{
			Directive:  DirectiveDefine,
			Definition: q.streamDefinition(set),
		})
	}

	rxEnable, _ := set.Lookup(RxChannelEnable)
	txEnable, _ := set.Lookup(TxChannelEnable)

	if route.HasBusReceive() {
		script.DataStream = append(script.DataStream, BusFrame{
			RepeatCount: 1,
			Rows:        shape.Rows,
			Cols:        shape.Cols,
			Directive:   DirectiveStart,
			ChannelMask: rxEnable.Value,
		})
	}
	script.DataStream = append(script.DataStream, BusFrame{
		RepeatCount: int(set.FrameRate) * DynamicSyncPeriod,
		Rows:        shape.Rows,
		Cols:        shape.Cols,
		SSP:         true,
		Directive:   DirectiveLoop,
		LoopCount:   q.loopCount,
	})

	if route.HasBusReceive() {
		script.DataStream = append(script.DataStream, registerFrame(OpWrite, DeviceCodec, rxEnable.Address, 0, shape))
	}
	script.DataStream = append(script.DataStream,
		registerFrame(OpWrite, DeviceCodec, txEnable.Address, 0, shape),
		ping(FramesFor(TeardownDelayMs, set.FrameRate), false, shape),
	)
	script.DataStream = append(script.DataStream, access.Write(DeviceWrite{Address: DevRegRouteStop, Value: 0}, shape)...)

	return script, nil
}

func (q *Sequencer) streamDefinition(set *RegisterSet) *StreamDefinition {
	def := &StreamDefinition{
		ID:         StreamID,
		Channels:   set.Route.ChannelCount,
		Interval:   q.bitRate / int(set.Format.RxRate),
		HStart:     1,
		HStop:      1,
		WordLength: set.Format.RxWordLength,
	}
	wave, amp := WaveformPCM, PCMAmplitudeDBFS
	if !set.Route.PCMInput() {
		wave, amp = WaveformPDM, PDMAmplitudeDBFS
	}
	for ch := range set.Route.ChannelCount {
		def.Content = append(def.Content, ChannelContent{
			ChannelID:    ch,
			Waveform:     wave,
			FrequencyHz:  ToneFrequencyHz,
			N:            q.bitRate / set.Shape.Bits(),
			M:            1,
			AmplitudeDBF: amp,
		})
	}
	return def
}
