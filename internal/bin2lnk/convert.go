// Package bin2lnk converts firmware and configuration binaries into the
// text payloads and download scripts consumed by the LnK bus analyzer.
package bin2lnk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// DefaultVersion is the converter format version used when none is configured.
const DefaultVersion = 102

// headerlessVersion is the first version whose data port files carry no
// zero header.
const headerlessVersion = 103

const (
	dwordBytes = 4
	dwordChars = dwordBytes * 2
	zeroDword  = "00000000"
)

// HexText encodes data as uppercase hex byte pairs, padded with "00" pairs to
// a four byte boundary.
func HexText(data []byte) string {
	var sb strings.Builder
	padded := len(data)
	if rem := padded % dwordBytes; rem != 0 {
		padded += dwordBytes - rem
	}
	sb.Grow(padded * 2)
	for _, b := range data {
		fmt.Fprintf(&sb, "%02X", b)
	}
	for range padded - len(data) {
		sb.WriteString("00")
	}
	return sb.String()
}

// dwords splits padded hex text into eight character groups.
func dwords(hex string) []string {
	out := make([]string, 0, len(hex)/dwordChars)
	for i := 0; i+dwordChars <= len(hex); i += dwordChars {
		out = append(out, hex[i:i+dwordChars])
	}
	return out
}

// Converter produces data port payloads for one converter version.
type Converter struct {
	version int
}

// NewConverter returns a converter for version, or DefaultVersion when version is not positive.
func NewConverter(version int) *Converter {
	if version <= 0 {
		version = DefaultVersion
	}
	return &Converter{version: version}
}

// Version returns the converter format version.
func (c *Converter) Version() int {
	return c.version
}

// WriteDataPort writes the data port payload for data: an eight byte zero
// header before version 103, then one byte-reversed dword per line.
func (c *Converter) WriteDataPort(w io.Writer, data []byte) error {
	bw := bufio.NewWriter(w)
	if c.version < headerlessVersion {
		for range 2 {
			if _, err := bw.WriteString(zeroDword + "\n"); err != nil {
				return err
			}
		}
	}
	for _, d := range dwords(HexText(data)) {
		line := d[6:8] + d[4:6] + d[2:4] + d[0:2] + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ConvertDataPort reads the binary at inPath and writes its data port
// payload to outPath.
func (c *Converter) ConvertDataPort(inPath, outPath string) error {
	data, err := ReadInput(OpDataPort, inPath)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath) // #nosec G304 - output path is built from operator input
	if err != nil {
		return newConversionError(OpDataPort, outPath, err)
	}
	if err := c.WriteDataPort(out, data); err != nil {
		_ = out.Close()
		return newConversionError(OpDataPort, outPath, err)
	}
	if err := out.Close(); err != nil {
		return newConversionError(OpDataPort, outPath, err)
	}
	return nil
}

// ReadInput reads an input file, reporting a missing file as ErrMissingInput.
func ReadInput(op Operation, path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 - input path is operator supplied
	if errors.Is(err, fs.ErrNotExist) {
		return nil, newMissingInputError(op, path)
	}
	if err != nil {
		return nil, newConversionError(op, path, err)
	}
	return data, nil
}
