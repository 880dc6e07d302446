package swire

import "fmt"

// Data port register offsets. The bus address of a port register is
// (port << 8) | offset.
const (
	RegPortCtrl       = 0x02
	RegWordLength     = 0x03
	RegChannelPrepare = 0x05
	RegChannelEnable  = 0x30
	RegIntervalLo     = 0x32
	RegIntervalHi     = 0x33
	RegBlockOffset    = 0x34
	RegHCtrl          = 0x36
)

// RegFrameCtrl is the SCP frame control register, written by broadcast.
const RegFrameCtrl = 0x70

// PortRegister returns the bus address of register reg on port p.
func PortRegister(p Port, reg uint8) uint16 {
	return uint16(p)<<8 | uint16(reg)
}

// RegisterKey names one per-port register of a route.
type RegisterKey string

// Register keys in write order. Channel prepare and enable come last on each
// side because the port must be fully described before it is enabled.
const (
	RxPortCtrl       RegisterKey = "rx_port_ctrl"
	RxWordLength     RegisterKey = "rx_word_length"
	RxIntervalLo     RegisterKey = "rx_interval_lo"
	RxIntervalHi     RegisterKey = "rx_interval_hi"
	RxBlockOffset    RegisterKey = "rx_block_offset"
	RxHCtrl          RegisterKey = "rx_hctrl"
	RxChannelPrepare RegisterKey = "rx_channel_prepare"
	RxChannelEnable  RegisterKey = "rx_channel_enable"
	TxPortCtrl       RegisterKey = "tx_port_ctrl"
	TxWordLength     RegisterKey = "tx_word_length"
	TxIntervalLo     RegisterKey = "tx_interval_lo"
	TxIntervalHi     RegisterKey = "tx_interval_hi"
	TxBlockOffset    RegisterKey = "tx_block_offset"
	TxHCtrl          RegisterKey = "tx_hctrl"
	TxChannelPrepare RegisterKey = "tx_channel_prepare"
	TxChannelEnable  RegisterKey = "tx_channel_enable"
)

type registerLayout struct {
	key    RegisterKey
	offset uint8
	rx     bool
}

var portLayout = []registerLayout{
	{RxPortCtrl, RegPortCtrl, true},
	{RxWordLength, RegWordLength, true},
	{RxIntervalLo, RegIntervalLo, true},
	{RxIntervalHi, RegIntervalHi, true},
	{RxBlockOffset, RegBlockOffset, true},
	{RxHCtrl, RegHCtrl, true},
	{RxChannelPrepare, RegChannelPrepare, true},
	{RxChannelEnable, RegChannelEnable, true},
	{TxPortCtrl, RegPortCtrl, false},
	{TxWordLength, RegWordLength, false},
	{TxIntervalLo, RegIntervalLo, false},
	{TxIntervalHi, RegIntervalHi, false},
	{TxBlockOffset, RegBlockOffset, false},
	{TxHCtrl, RegHCtrl, false},
	{TxChannelPrepare, RegChannelPrepare, false},
	{TxChannelEnable, RegChannelEnable, false},
}

// RegisterValue is one direct bus register write of a route setup.
// Sequence fixes the write order.
type RegisterValue struct {
	Key      RegisterKey `json:"key"`
	Address  uint16      `json:"address"`
	Value    uint8       `json:"value"`
	Sequence int         `json:"sequence"`
	Rx       bool        `json:"rx"`
}

// Format is the requested stream format on both sides of a route.
type Format struct {
	RxRate       SampleRate `json:"rx_rate" yaml:"rx_rate"`
	RxWordLength int        `json:"rx_word_length" yaml:"rx_word_length"`
	TxRate       SampleRate `json:"tx_rate" yaml:"tx_rate"`
	TxWordLength int        `json:"tx_word_length" yaml:"tx_word_length"`
}

// MaxWordLength is the longest sample word a port register can describe.
const MaxWordLength = 64

// RegisterSet is the full result of one register computation. It is created
// fresh for every configuration pass.
type RegisterSet struct {
	Route        RouteDefinition
	Format       Format
	FrameRate    SampleRate
	Shape        FrameShape
	FrameControl uint8
	RxInterval   uint16
	TxInterval   uint16
	Values       []RegisterValue
	Auxiliary    []DeviceWrite
}

// Lookup returns the register value stored under key.
func (s *RegisterSet) Lookup(key RegisterKey) (RegisterValue, bool) {
	for _, v := range s.Values {
		if v.Key == key {
			return v, true
		}
	}
	return RegisterValue{}, false
}

// EffectiveWordLength reports the sample length in bits encoded by the word
// length register under key.
func (s *RegisterSet) EffectiveWordLength(key RegisterKey) int {
	v, ok := s.Lookup(key)
	if !ok {
		return 0
	}
	return int(v.Value) + 1
}

// Ordered returns the values to write, in sequence order, leaving out the
// receive side when the route has no bus receive port.
func (s *RegisterSet) Ordered() []RegisterValue {
	out := make([]RegisterValue, 0, len(s.Values))
	for _, v := range s.Values {
		if v.Rx && !s.Route.HasBusReceive() {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RegisterComputer derives register values from a route and format. It
// patches the shape table it was given, so it shares that table's
// single-owner contract.
type RegisterComputer struct {
	bitRate   int
	shapes    *ShapeTable
	overrides *OverrideRegistry
}

// NewRegisterComputer creates a computer bound to the given tables.
func NewRegisterComputer(bitRate int, shapes *ShapeTable, overrides *OverrideRegistry) *RegisterComputer {
	return &RegisterComputer{bitRate: bitRate, shapes: shapes, overrides: overrides}
}

func encodeWordLength(param string, bits int) (uint8, error) {
	if bits < 1 || bits > MaxWordLength {
		return 0, configErr(KindInvalidWordLength, param, bits)
	}
	return uint8(bits - 1), nil
}

// Compute returns the register set for route def carrying format f.
func (c *RegisterComputer) Compute(def RouteDefinition, f Format) (*RegisterSet, error) {
	if def.ChannelCount < 1 || def.ChannelCount > 3 {
		return nil, configErr(KindInvalidChannelCount, "channel_count", def.ChannelCount)
	}
	rxWord, err := encodeWordLength("rx_word_length", f.RxWordLength)
	if err != nil {
		return nil, err
	}
	txWord, err := encodeWordLength("tx_word_length", f.TxWordLength)
	if err != nil {
		return nil, err
	}

	frameRate := def.FrameRate(f.RxRate, f.TxRate)

	// The patch must land before the shape is read below.
	if frameRate == HighestRate {
		if err := c.shapes.SetTxOffset(HighestRate, f.RxWordLength*def.ChannelCount); err != nil {
			return nil, err
		}
	}

	shape, err := c.shapes.ShapeFor(frameRate)
	if err != nil {
		return nil, err
	}
	frameCtrl, err := FrameControlValue(shape.Rows, shape.Cols)
	if err != nil {
		return nil, err
	}

	rxInterval, err := SampleInterval(c.bitRate, f.RxRate)
	if err != nil {
		return nil, fmt.Errorf("rx: %w", err)
	}
	txInterval, err := SampleInterval(c.bitRate, f.TxRate)
	if err != nil {
		return nil, fmt.Errorf("tx: %w", err)
	}

	mask := def.ChannelMask()
	values := map[RegisterKey]uint8{
		RxPortCtrl:       0,
		RxWordLength:     rxWord,
		RxIntervalLo:     uint8(rxInterval & 0xFF),
		RxIntervalHi:     uint8(rxInterval >> 8),
		RxBlockOffset:    uint8(shape.RxOffset),
		RxHCtrl:          HControlValue(shape.RxHStart, shape.RxHStop),
		RxChannelPrepare: mask,
		RxChannelEnable:  mask,
		TxPortCtrl:       0,
		TxWordLength:     txWord,
		TxIntervalLo:     uint8(txInterval & 0xFF),
		TxIntervalHi:     uint8(txInterval >> 8),
		TxBlockOffset:    uint8(shape.TxOffset),
		TxHCtrl:          HControlValue(shape.TxHStart, shape.TxHStop),
		TxChannelPrepare: mask,
		TxChannelEnable:  mask,
	}

	set := &RegisterSet{
		Route:        def,
		Format:       f,
		FrameRate:    frameRate,
		Shape:        shape,
		FrameControl: frameCtrl,
		RxInterval:   rxInterval,
		TxInterval:   txInterval,
		Values:       make([]RegisterValue, 0, len(portLayout)),
		Auxiliary:    c.overrides.For(def.Number),
	}
	for i, l := range portLayout {
		port := def.TxPort
		if l.rx {
			port = def.RxPort
		}
		set.Values = append(set.Values, RegisterValue{
			Key:      l.key,
			Address:  PortRegister(port, l.offset),
			Value:    values[l.key],
			Sequence: i,
			Rx:       l.rx,
		})
	}
	return set, nil
}
