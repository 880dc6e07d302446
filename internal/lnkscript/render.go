// Package lnkscript renders bus frames as LnK script XML and places them
// into a route script skeleton.
package lnkscript

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// Fixed frame attributes emitted on every Swframe element.
const (
	staticSync  = 177
	syncValid   = "Valid"
	indentation = "   "
)

type swframeXML struct {
	XMLName     xml.Name       `xml:"Swframe"`
	Repeat      int            `xml:"Repeat,attr"`
	Rows        int            `xml:"rows,attr"`
	Cols        int            `xml:"cols,attr"`
	Preq        int            `xml:"preq,attr"`
	StaticSync  int            `xml:"StaticSync,attr"`
	Phy         int            `xml:"Phy,attr"`
	DynamicSync string         `xml:"DynamicSync,attr"`
	Parity      string         `xml:"Parity,attr"`
	Nak         int            `xml:"nak,attr"`
	Ack         int            `xml:"ack,attr"`
	Stream      *dataStreamXML `xml:"DataStream"`
	Control     controlWordXML `xml:"controlword"`
}

// controlWordXML covers both the idle form (ssp/breq/brel/reserved) and the
// register access form (DeviceAddress/RegisterAddress/Data).
type controlWordXML struct {
	Opcode          int    `xml:"opcode,attr"`
	SSP             string `xml:"ssp,attr,omitempty"`
	BReq            string `xml:"breq,attr,omitempty"`
	BRel            string `xml:"brel,attr,omitempty"`
	Reserved        string `xml:"reserved,attr,omitempty"`
	DeviceAddress   string `xml:"DeviceAddress,attr,omitempty"`
	RegisterAddress string `xml:"RegisterAddress,attr,omitempty"`
	Data            string `xml:"Data,attr,omitempty"`
}

type dataStreamXML struct {
	XMLName   xml.Name      `xml:"DataStream"`
	ID        string        `xml:"Id,attr"`
	Structure *structureXML `xml:"Structure"`
	Content   []contentXML  `xml:"Content"`
	Start     *startXML     `xml:"Start"`
}

type structureXML struct {
	Channels         int `xml:"Channels,attr"`
	Interval         int `xml:"Interval,attr"`
	HStart           int `xml:"Hstart,attr"`
	HStop            int `xml:"Hstop,attr"`
	Offset           int `xml:"Offset,attr"`
	Length           int `xml:"Length,attr"`
	Protocol         int `xml:"Protocol,attr"`
	BlockPackingMode int `xml:"BlockPackingMode,attr"`
	BlockGroupCount  int `xml:"BlockGroupCount,attr"`
	SubOffset        int `xml:"SubOffset,attr"`
	Lane             int `xml:"Lane,attr"`
}

type contentXML struct {
	ChannelID int    `xml:"ChID,attr"`
	Wave      string `xml:"Wave,attr"`
	Freq      int    `xml:"Freq,attr"`
	N         int    `xml:"N,attr"`
	M         int    `xml:"M,attr"`
	Amplitude string `xml:"Amplitude,attr"`
}

type startXML struct {
	ChannelEnable int `xml:"ChannelEnable,attr"`
}

type loopXML struct {
	XMLName xml.Name   `xml:"Loop"`
	Repeat  int        `xml:"Repeat,attr"`
	Frame   swframeXML `xml:"Swframe"`
}

func idleControl(ssp bool) controlWordXML {
	v := "0"
	if ssp {
		v = "1"
	}
	return controlWordXML{Opcode: int(swire.OpIdle), SSP: v, BReq: "0", BRel: "0", Reserved: "0"}
}

func frameElement(f swire.BusFrame, ssp bool) swframeXML {
	el := swframeXML{
		Repeat:      f.RepeatCount,
		Rows:        f.Rows,
		Cols:        f.Cols,
		StaticSync:  staticSync,
		DynamicSync: syncValid,
		Parity:      syncValid,
		Control:     idleControl(ssp),
	}
	if c := f.Control; c != nil {
		el.Control = controlWordXML{
			Opcode:          int(c.Opcode),
			DeviceAddress:   strconv.Itoa(int(c.DeviceAddress)),
			RegisterAddress: fmt.Sprintf("0x%04x", c.RegisterAddress),
			Data:            fmt.Sprintf("0x%02x", c.Data),
		}
	}
	return el
}

func streamElement(def *swire.StreamDefinition) *dataStreamXML {
	ds := &dataStreamXML{
		ID: def.ID,
		Structure: &structureXML{
			Channels:        def.Channels,
			Interval:        def.Interval,
			HStart:          def.HStart,
			HStop:           def.HStop,
			Offset:          def.Offset,
			Length:          def.WordLength,
			BlockGroupCount: 1,
		},
	}
	for _, c := range def.Content {
		ds.Content = append(ds.Content, contentXML{
			ChannelID: c.ChannelID,
			Wave:      c.Waveform,
			Freq:      c.FrequencyHz,
			N:         c.N,
			M:         c.M,
			Amplitude: fmt.Sprintf("%ddBFs", c.AmplitudeDBF),
		})
	}
	return ds
}

func element(f swire.BusFrame) (any, error) {
	switch f.Directive {
	case swire.DirectiveNone:
		return frameElement(f, f.SSP), nil
	case swire.DirectiveDefine:
		if f.Definition == nil {
			return nil, fmt.Errorf("define frame without stream definition")
		}
		return streamElement(f.Definition), nil
	case swire.DirectiveStart:
		el := frameElement(f, false)
		el.Stream = &dataStreamXML{ID: swire.StreamID, Start: &startXML{ChannelEnable: int(f.ChannelMask)}}
		return el, nil
	case swire.DirectiveLoop:
		return loopXML{Repeat: f.LoopCount, Frame: frameElement(f, f.SSP)}, nil
	}
	return nil, fmt.Errorf("unknown stream directive %d", f.Directive)
}

// Render encodes frames as consecutive XML elements, one per frame, each
// preceded by its comment when present.
func Render(frames []swire.BusFrame) ([]byte, error) {
	var buf bytes.Buffer
	for i, f := range frames {
		el, err := element(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if f.Comment != "" {
			fmt.Fprintf(&buf, "<!-- %s -->\n", f.Comment)
		}
		enc := xml.NewEncoder(&buf)
		enc.Indent("", indentation)
		if err := enc.Encode(el); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
