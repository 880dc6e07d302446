package lnkscript

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

func fixedNow() time.Time {
	return time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)
}

func requireWellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err)
	}
}

func TestRenderPing(t *testing.T) {
	out, err := Render([]swire.BusFrame{{RepeatCount: 480, Rows: 48, Cols: 2}})
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, `<Swframe Repeat="480" rows="48" cols="2" preq="0" StaticSync="177" Phy="0" DynamicSync="Valid" Parity="Valid" nak="0" ack="0">`))
	assert.Contains(t, s, `<controlword opcode="0" ssp="0" breq="0" brel="0" reserved="0">`)
	assert.NotContains(t, s, "DeviceAddress")
	assert.True(t, strings.HasSuffix(s, "</Swframe>\n"))
}

func TestRenderRegisterAccess(t *testing.T) {
	frame := swire.BusFrame{
		RepeatCount: 1,
		Rows:        64,
		Cols:        8,
		Control:     &swire.ControlWord{Opcode: swire.OpWrite, DeviceAddress: 15, RegisterAddress: 0x70, Data: 0x1B},
		Comment:     "frame control",
	}
	out, err := Render([]swire.BusFrame{frame})
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "<!-- frame control -->"))
	assert.Contains(t, s, `<controlword opcode="3" DeviceAddress="15" RegisterAddress="0x0070" Data="0x1b">`)
	assert.NotContains(t, s, "ssp=")
}

func TestRenderStreamFrames(t *testing.T) {
	frames := []swire.BusFrame{
		{
			Directive: swire.DirectiveDefine,
			Definition: &swire.StreamDefinition{
				ID: "A1", Channels: 2, Interval: 512, HStart: 1, HStop: 1, WordLength: 16,
				Content: []swire.ChannelContent{
					{ChannelID: 0, Waveform: "sine", FrequencyHz: 1000, N: 48, M: 1, AmplitudeDBF: -3},
					{ChannelID: 1, Waveform: "sine", FrequencyHz: 1000, N: 48, M: 1, AmplitudeDBF: -3},
				},
			},
		},
		{RepeatCount: 1, Rows: 64, Cols: 8, Directive: swire.DirectiveStart, ChannelMask: 3},
		{RepeatCount: 720, Rows: 64, Cols: 8, SSP: true, Directive: swire.DirectiveLoop, LoopCount: 100},
	}
	out, err := Render(frames)
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `<Structure Channels="2" Interval="512" Hstart="1" Hstop="1" Offset="0" Length="16" Protocol="0" BlockPackingMode="0" BlockGroupCount="1" SubOffset="0" Lane="0">`)
	assert.Contains(t, s, `<Content ChID="1" Wave="sine" Freq="1000" N="48" M="1" Amplitude="-3dBFs">`)
	assert.Contains(t, s, `<Start ChannelEnable="3">`)
	assert.Contains(t, s, `<Loop Repeat="100">`)
	assert.Contains(t, s, `<Swframe Repeat="720" rows="64" cols="8"`)
	assert.Contains(t, s, `ssp="1"`)
	assert.Equal(t, 2, strings.Count(s, `<DataStream Id="A1">`))
	assert.True(t, strings.HasPrefix(s, `<DataStream Id="A1">`), "definition renders without a Swframe")
	assert.Equal(t, 2, strings.Count(s, "<Swframe "))

	requireWellFormed(t, []byte("<root>"+s+"</root>"))
}

func TestRenderDefineWithoutDefinition(t *testing.T) {
	_, err := Render([]swire.BusFrame{{RepeatCount: 1, Rows: 48, Cols: 2, Directive: swire.DirectiveDefine}})
	assert.ErrorContains(t, err, "frame 0")
}

func TestRenderEmpty(t *testing.T) {
	out, err := Render(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTemplateFill(t *testing.T) {
	tmpl, err := ParseTemplate("test", strings.NewReader("head _DATE_\n<!-- one -->\nmiddle\n<!-- two -->\ntail\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.Fill(&buf,
		[]Section{{Marker: "two", Body: []byte("B\n")}, {Marker: "one", Body: []byte("A\n")}},
		[]Token{{Placeholder: DateToken, Value: "10/16/2026"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "head 10/16/2026\n<!-- one -->\nA\nmiddle\n<!-- two -->\nB\ntail\n", buf.String())
}

func TestTemplateFillMissingMarker(t *testing.T) {
	tmpl, err := ParseTemplate("skeleton.xml", strings.NewReader("<!-- one -->\n"))
	require.NoError(t, err)

	err = tmpl.Fill(io.Discard, []Section{{Marker: "one"}, {Marker: "start data stream"}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingMarker)
	assert.Contains(t, err.Error(), "skeleton.xml")
	assert.Contains(t, err.Error(), "start data stream")
}

func TestDefaultRouteTemplateHasAllMarkers(t *testing.T) {
	tmpl := DefaultRouteTemplate()
	sections := []Section{
		{Marker: MarkerDeviceSetup},
		{Marker: MarkerChannelSetup},
		{Marker: MarkerStreamDefine},
		{Marker: MarkerDataStream},
	}
	assert.NoError(t, tmpl.Fill(io.Discard, sections, nil))
}

func TestBuilderBuild(t *testing.T) {
	script, err := swire.NewEngine(swire.WithDebugLogger(t.Logf)).BuildRouteScript(swire.Request{
		Route:     3,
		Format:    swire.Format{RxRate: 48, RxWordLength: 16, TxRate: 48, TxWordLength: 16},
		FrameSize: 2,
	})
	require.NoError(t, err)

	b := NewBuilder(nil)
	b.now = fixedNow
	doc, err := b.Build(script)
	require.NoError(t, err)
	requireWellFormed(t, doc)

	s := string(doc)
	assert.Contains(t, s, "generated 10/16/2026")
	assert.NotContains(t, s, DateToken)
	assert.Contains(t, s, `<controlword opcode="3" DeviceAddress="15" RegisterAddress="0x0070" Data="0x1b">`)
	assert.Contains(t, s, "<!-- device write reg 0x8035 = 0x0002 -->")
	assert.Equal(t, 1, strings.Count(s, "<Start "))
	assert.Equal(t, 1, strings.Count(s, "<Loop "))

	deviceSetup := strings.Index(s, MarkerDeviceSetup)
	firstProxy := strings.Index(s, `RegisterAddress="0x2000"`)
	channelSetup := strings.Index(s, MarkerChannelSetup)
	frameCtrl := strings.Index(s, `RegisterAddress="0x0070"`)
	define := strings.Index(s, "<Structure ")
	loop := strings.Index(s, "<Loop ")
	assert.Less(t, deviceSetup, firstProxy)
	assert.Less(t, firstProxy, channelSetup)
	assert.Less(t, channelSetup, frameCtrl)
	assert.Less(t, frameCtrl, define)
	assert.Less(t, define, loop)

	sections, err := Sections(script)
	require.NoError(t, err)
	assert.Equal(t, MarkerStreamDefine, sections[2].Marker)
	assert.True(t, strings.HasPrefix(string(sections[2].Body), `<DataStream Id="A1">`))
}

func TestBuilderBuildDocument(t *testing.T) {
	req := swire.Request{
		Route:     10,
		Format:    swire.Format{RxRate: 1536, RxWordLength: 1, TxRate: 48, TxWordLength: 24},
		FrameSize: 2,
	}
	script, err := swire.NewEngine(swire.WithDebugLogger(t.Logf)).BuildRouteScript(req)
	require.NoError(t, err)

	doc, err := NewBuilder(nil).WithClock(fixedNow).BuildDocument(req, script)
	require.NoError(t, err)
	assert.Equal(t, "setup_route10_1536K_1bit_48K_24bit_2ms.xml", doc.FileName)
	assert.Same(t, script, doc.Script)
	assert.Equal(t, req, doc.Request)
	assert.Contains(t, string(doc.Content), "generated 10/16/2026")
	assert.NotContains(t, string(doc.Content), "<Structure ")
}

func TestScriptName(t *testing.T) {
	req := swire.Request{Route: 3, Format: swire.Format{RxRate: 48, RxWordLength: 16, TxRate: 48, TxWordLength: 16}, FrameSize: 2}
	assert.Equal(t, "setup_route3_48K_16bit_48K_16bit_2ms.xml", ScriptName(req))

	req = swire.Request{Route: 10, Format: swire.Format{RxRate: 1536, RxWordLength: 1, TxRate: 48, TxWordLength: 24}, FrameSize: 0.5}
	assert.Equal(t, "setup_route10_1536K_1bit_48K_24bit_0.5ms.xml", ScriptName(req))
}

func TestDownloadNames(t *testing.T) {
	bin := "/fw/A110.11.12_SysConfigSWIRE.bin"
	assert.Equal(t, "A110.11.12_SysConfigSWIRE_32Bit_1ch.txt", DataFileName(bin))
	assert.Equal(t, "DP_DL_A110.11.12_SysConfigSWIRE.xml", DataPortScriptName(bin))
	assert.Equal(t, "CP_DL_A110.11.12_SysConfigSWIRE.xml", ControlPortScriptName(bin))
}

func TestFillDataPortScript(t *testing.T) {
	tmpl, err := ParseTemplate("dp", strings.NewReader("<!-- _DATE_ -->\n<File Path=\"SYS_CONFIG.txt\" />\n"))
	require.NoError(t, err)

	out, err := FillDataPortScript(tmpl, "/out/fw_32Bit_1ch.txt", fixedNow())
	require.NoError(t, err)
	assert.Equal(t, "<!-- 10/16/2026 -->\n<File Path=\"/out/fw_32Bit_1ch.txt\" />\n", string(out))
}
