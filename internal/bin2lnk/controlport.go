package bin2lnk

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Control port template keywords.
const (
	commandKeyword     = "Command"
	eventPlaceholder   = "event_num"
	addressPlaceholder = "reg_addr"
	dataPlaceholder    = "data"
	delayKeyword       = "Delay of about 2 us"
	dateToken          = "_DATE_"
	dateLayout         = "01/02/2006"
)

// The first generated event follows the last header event by two.
const (
	eventStartOffset = 2
	firstDataAddress = 2000
)

var eventPattern = regexp.MustCompile(`Event #(\w+)`)

// ControlPortTemplate is the header and per-dword content skeleton of a
// control port download script.
type ControlPortTemplate struct {
	header  []string
	content []string
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// ParseControlPortTemplate reads a header and a content skeleton.
func ParseControlPortTemplate(header, content io.Reader) (*ControlPortTemplate, error) {
	h, err := readLines(header)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	c, err := readLines(content)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return &ControlPortTemplate{header: h, content: c}, nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path) // #nosec G304 - template path is operator supplied
	if os.IsNotExist(err) {
		return nil, newMissingInputError(OpControlPort, path)
	}
	if err != nil {
		return nil, newConversionError(OpControlPort, path, err)
	}
	return f, nil
}

// LoadControlPortTemplate reads the header and content skeletons from disk.
func LoadControlPortTemplate(headerPath, contentPath string) (*ControlPortTemplate, error) {
	h, err := openInput(headerPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = h.Close() }()

	c, err := openInput(contentPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	return ParseControlPortTemplate(h, c)
}

// Generate writes the control port script for data. Header lines are copied
// until the Command line, where the content skeleton is repeated once per
// dword of data before the Command line itself is written. Event numbers
// continue from the last "Event #" seen in the header.
func (t *ControlPortTemplate) Generate(w io.Writer, data []byte, now time.Time) error {
	bw := bufio.NewWriter(w)
	date := now.Format(dateLayout)
	event := 0

	for _, line := range t.header {
		if !strings.Contains(line, commandKeyword) {
			if m := eventPattern.FindStringSubmatch(line); m != nil {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					return fmt.Errorf("header event number %q: %w", m[1], err)
				}
				event = n
			}
			line = strings.ReplaceAll(line, dateToken, date)
			if _, err := bw.WriteString(line + "\n"); err != nil {
				return err
			}
			continue
		}

		next := event + eventStartOffset
		for _, dword := range dwords(HexText(data)) {
			var err error
			if next, err = t.writeDword(bw, dword, next); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *ControlPortTemplate) writeDword(w *bufio.Writer, dword string, event int) (int, error) {
	byteIdx := 0
	addr := firstDataAddress
	for _, line := range t.content {
		switch {
		case strings.Contains(line, eventPlaceholder):
			line = strings.ReplaceAll(line, eventPlaceholder, strconv.Itoa(event))
			event++
		case strings.Contains(line, addressPlaceholder) && strings.Contains(line, dataPlaceholder):
			if byteIdx >= dwordBytes {
				return event, fmt.Errorf("content template writes more than %d bytes per dword", dwordBytes)
			}
			line = strings.ReplaceAll(line, addressPlaceholder, strconv.Itoa(addr))
			line = strings.ReplaceAll(line, dataPlaceholder, dword[byteIdx*2:byteIdx*2+2])
			byteIdx++
			addr++
		case strings.Contains(line, delayKeyword):
			event++
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return event, err
		}
	}
	return event, nil
}

// ConvertControlPort reads the binary at inPath and writes its control port
// download script to outPath.
func ConvertControlPort(tmpl *ControlPortTemplate, inPath, outPath string, now time.Time) error {
	data, err := ReadInput(OpControlPort, inPath)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath) // #nosec G304 - output path is built from operator input
	if err != nil {
		return newConversionError(OpControlPort, outPath, err)
	}
	if err := tmpl.Generate(out, data, now); err != nil {
		_ = out.Close()
		return newConversionError(OpControlPort, outPath, err)
	}
	if err := out.Close(); err != nil {
		return newConversionError(OpControlPort, outPath, err)
	}
	return nil
}
