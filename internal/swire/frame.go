package swire

// Opcode is the control word operation.
type Opcode uint8

const (
	OpIdle  Opcode = 0
	OpRead  Opcode = 2
	OpWrite Opcode = 3
)

// Device addresses on the bus.
const (
	DeviceCodec     uint8 = 1
	DeviceBroadcast uint8 = 15
)

// ControlWord is the register access carried by one bus frame.
type ControlWord struct {
	Opcode          Opcode `json:"opcode"`
	DeviceAddress   uint8  `json:"device_address"`
	RegisterAddress uint16 `json:"register_address"`
	Data            uint8  `json:"data"`
}

// StreamDirective marks frames that carry data stream content.
type StreamDirective int

const (
	DirectiveNone StreamDirective = iota
	// DirectiveDefine carries a data stream definition. It is declarative
	// and occupies no bus time.
	DirectiveDefine
	// DirectiveStart enables the stream channels
	DirectiveStart
	// DirectiveLoop repeats the frame LoopCount times with SSP pulses
	DirectiveLoop
)

func (d StreamDirective) String() string {
	switch d {
	case DirectiveDefine:
		return "define"
	case DirectiveStart:
		return "start"
	case DirectiveLoop:
		return "loop"
	default:
		return "none"
	}
}

// StreamID is the identifier of the single test data stream.
const StreamID = "A1"

// ChannelContent describes the generated signal on one stream channel.
type ChannelContent struct {
	ChannelID    int    `json:"channel_id"`
	Waveform     string `json:"waveform"`
	FrequencyHz  int    `json:"frequency_hz"`
	N            int    `json:"n"`
	M            int    `json:"m"`
	AmplitudeDBF int    `json:"amplitude_dbfs"`
}

// StreamDefinition is the structure and content of the test data stream.
type StreamDefinition struct {
	ID         string           `json:"id"`
	Channels   int              `json:"channels"`
	Interval   int              `json:"interval"`
	HStart     int              `json:"hstart"`
	HStop      int              `json:"hstop"`
	Offset     int              `json:"offset"`
	WordLength int              `json:"word_length"`
	Content    []ChannelContent `json:"content"`
}

// BusFrame is one atomic transaction of a route script.
type BusFrame struct {
	RepeatCount int               `json:"repeat"`
	Rows        int               `json:"rows"`
	Cols        int               `json:"cols"`
	SSP         bool              `json:"ssp,omitempty"`
	Control     *ControlWord      `json:"control,omitempty"`
	Directive   StreamDirective   `json:"directive,omitempty"`
	ChannelMask uint8             `json:"channel_mask,omitempty"`
	LoopCount   int               `json:"loop_count,omitempty"`
	Definition  *StreamDefinition `json:"definition,omitempty"`
	Comment     string            `json:"comment,omitempty"`
}

// OnBus reports whether the frame is transmitted on the bus.
func (f BusFrame) OnBus() bool {
	return f.Directive != DirectiveDefine
}

// IsPing reports whether the frame carries no control word or stream content.
// Pings double as delays through their repeat count.
func (f BusFrame) IsPing() bool {
	return f.Control == nil && f.Directive == DirectiveNone
}

func ping(repeat int, ssp bool, shape FrameShape) BusFrame {
	return BusFrame{RepeatCount: repeat, Rows: shape.Rows, Cols: shape.Cols, SSP: ssp}
}

func registerFrame(op Opcode, dev uint8, addr uint16, data uint8, shape FrameShape) BusFrame {
	return BusFrame{
		RepeatCount: 1,
		Rows:        shape.Rows,
		Cols:        shape.Cols,
		Control: &ControlWord{
			Opcode:          op,
			DeviceAddress:   dev,
			RegisterAddress: addr,
			Data:            data,
		},
	}
}
