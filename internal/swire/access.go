package swire

import "fmt"

// Internal codec registers reached through the indirect access protocol.
const (
	DevRegAuxSelect  uint16 = 0x800C
	DevRegAuxValue   uint16 = 0x800D
	DevRegSampleRate uint16 = 0x8030
	DevRegRouteStart uint16 = 0x8032
	DevRegRouteStop  uint16 = 0x8033
	DevRegFrameSize  uint16 = 0x8035
)

// Proxy registers of the indirect access protocol. The four write proxies
// hold value low/high and address low/high; the four that follow expose
// the device acknowledgement.
const (
	ProxyValueLo uint16 = 0x2000
	ProxyValueHi uint16 = 0x2001
	ProxyAddrLo  uint16 = 0x2002
	ProxyAddrHi  uint16 = 0x2003
	ProxyStatus0 uint16 = 0x2004
)

const proxyReadCount = 4

// SettleDelayMs follows each half of a device register write.
const SettleDelayMs = 10

// AccessEncoder turns logical device register writes into proxy register
// frames. Delays are expressed in frames at the encoder's frame rate.
type AccessEncoder struct {
	frameRate SampleRate
}

// NewAccessEncoder returns an encoder whose delays are sized for frameRate.
func NewAccessEncoder(frameRate SampleRate) *AccessEncoder {
	return &AccessEncoder{frameRate: frameRate}
}

// Write encodes w as four proxy writes, a settle delay, four read-backs and a
// second settle delay, all in the given shape. The first frame carries a
// comment naming the logical write.
func (e *AccessEncoder) Write(w DeviceWrite, shape FrameShape) []BusFrame {
	delay := FramesFor(SettleDelayMs, e.frameRate)
	frames := make([]BusFrame, 0, 10)

	writes := []struct {
		proxy uint16
		data  uint8
	}{
		{ProxyValueLo, uint8(w.Value & 0xFF)},
		{ProxyValueHi, uint8(w.Value >> 8)},
		{ProxyAddrLo, uint8(w.Address & 0xFF)},
		{ProxyAddrHi, uint8(w.Address >> 8)},
	}
	for _, pw := range writes {
		frames = append(frames, registerFrame(OpWrite, DeviceCodec, pw.proxy, pw.data, shape))
	}
	frames[0].Comment = fmt.Sprintf("device write reg 0x%X = 0x%04x", w.Address, w.Value)
	frames = append(frames, ping(delay, false, shape))

	for i := range proxyReadCount {
		frames = append(frames, registerFrame(OpRead, DeviceCodec, ProxyStatus0+uint16(i), 0, shape))
	}
	frames = append(frames, ping(delay, false, shape))
	return frames
}
