package lnkscript

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// Sections renders each part of a route script for its skeleton marker.
// Parts with no frames produce an empty body, so the marker is still required.
func Sections(script *swire.Script) ([]Section, error) {
	parts := []struct {
		marker string
		frames []swire.BusFrame
	}{
		{MarkerDeviceSetup, script.DeviceSetup},
		{MarkerChannelSetup, script.ChannelSetup},
		{MarkerStreamDefine, script.StreamDefine},
		{MarkerDataStream, script.DataStream},
	}

	sections := make([]Section, 0, len(parts))
	for _, p := range parts {
		body, err := Render(p.frames)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.marker, err)
		}
		sections = append(sections, Section{Marker: p.marker, Body: body})
	}
	return sections, nil
}

// Builder turns route scripts into complete LnK XML documents.
type Builder struct {
	template *Template
	now      func() time.Time
}

// NewBuilder returns a builder over tmpl, or the built-in skeleton when tmpl is nil.
func NewBuilder(tmpl *Template) *Builder {
	if tmpl == nil {
		tmpl = DefaultRouteTemplate()
	}
	return &Builder{template: tmpl, now: time.Now}
}

// WithClock replaces the date source used for the _DATE_ token.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Document is one generated route script ready to be written or archived.
type Document struct {
	Request  swire.Request
	Script   *swire.Script
	FileName string
	Content  []byte
}

// BuildDocument builds the XML for script and names it after req.
func (b *Builder) BuildDocument(req swire.Request, script *swire.Script) (*Document, error) {
	content, err := b.Build(script)
	if err != nil {
		return nil, err
	}
	return &Document{Request: req, Script: script, FileName: ScriptName(req), Content: content}, nil
}

// Build fills the skeleton with the rendered script and the current date.
func (b *Builder) Build(script *swire.Script) ([]byte, error) {
	sections, err := Sections(script)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tokens := []Token{{Placeholder: DateToken, Value: b.now().Format(DateLayout)}}
	if err := b.template.Fill(&buf, sections, tokens); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ScriptName returns the output file name for req, for example
// setup_route3_48K_16bit_48K_16bit_2ms.xml.
func ScriptName(req swire.Request) string {
	return fmt.Sprintf("setup_route%d_%dK_%dbit_%dK_%dbit_%sms.xml",
		req.Route,
		req.RxRate, req.RxWordLength,
		req.TxRate, req.TxWordLength,
		strconv.FormatFloat(req.FrameSize, 'f', -1, 64))
}

func baseName(binPath string) string {
	name := filepath.Base(binPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DataFileName returns the data port payload name for a firmware binary.
func DataFileName(binPath string) string {
	return baseName(binPath) + "_32Bit_1ch.txt"
}

// DataPortScriptName returns the data port download script name for a firmware binary.
func DataPortScriptName(binPath string) string {
	return "DP_DL_" + baseName(binPath) + ".xml"
}

// ControlPortScriptName returns the control port download script name for a firmware binary.
func ControlPortScriptName(binPath string) string {
	return "CP_DL_" + baseName(binPath) + ".xml"
}

// Data port download skeletons name their payload with one of these placeholders.
const (
	PlaceholderSysConfig = "SYS_CONFIG.txt"
	PlaceholderFirmware  = "BOSKO_FW.txt"
)

// FillDataPortScript fills a data port download skeleton, pointing every
// payload placeholder at dataFile.
func FillDataPortScript(tmpl *Template, dataFile string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	tokens := []Token{
		{Placeholder: PlaceholderSysConfig, Value: dataFile},
		{Placeholder: PlaceholderFirmware, Value: dataFile},
		{Placeholder: DateToken, Value: now.Format(DateLayout)},
	}
	if err := tmpl.Fill(&buf, nil, tokens); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
