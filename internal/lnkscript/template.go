package lnkscript

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DateToken is replaced with the generation date in every filled template.
const DateToken = "_DATE_"

// DateLayout renders dates as MM/DD/YYYY.
const DateLayout = "01/02/2006"

// Section markers of the route script skeleton.
const (
	MarkerDeviceSetup  = "start shapiro setup"
	MarkerChannelSetup = "start swire channel setup"
	MarkerStreamDefine = "start stream define"
	MarkerDataStream   = "start data stream"
)

// ErrMissingMarker is returned when a section marker does not occur in the template.
var ErrMissingMarker = errors.New("template marker not found")

//go:embed templates/route_template.xml
var defaultRouteTemplate []byte

// Section is generated content inserted after the first template line that
// contains Marker. The marker line itself is kept.
type Section struct {
	Marker string
	Body   []byte
}

// Token is a placeholder replaced by Value wherever it occurs on a line.
type Token struct {
	Placeholder string
	Value       string
}

// Template is a line-oriented script skeleton.
type Template struct {
	name  string
	lines []string
}

// ParseTemplate reads a skeleton from r. name is only used in error messages.
func ParseTemplate(name string, r io.Reader) (*Template, error) {
	t := &Template{name: name}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		t.lines = append(t.lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return t, nil
}

// LoadTemplate reads a skeleton from path.
func LoadTemplate(path string) (*Template, error) {
	f, err := os.Open(path) // #nosec G304 - path is operator configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseTemplate(path, f)
}

// DefaultRouteTemplate returns the built-in route script skeleton.
func DefaultRouteTemplate() *Template {
	t, err := ParseTemplate("route_template.xml", bytes.NewReader(defaultRouteTemplate))
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the name the template was parsed under.
func (t *Template) Name() string {
	return t.name
}

// Fill writes the skeleton to w with every token replaced and every section
// body inserted after its marker line. Each section marker must be present.
func (t *Template) Fill(w io.Writer, sections []Section, tokens []Token) error {
	pending := make(map[string][]byte, len(sections))
	for _, s := range sections {
		pending[s.Marker] = s.Body
	}

	bw := bufio.NewWriter(w)
	for _, line := range t.lines {
		for _, tok := range tokens {
			line = strings.ReplaceAll(line, tok.Placeholder, tok.Value)
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
		for _, s := range sections {
			if _, ok := pending[s.Marker]; !ok || !strings.Contains(line, s.Marker) {
				continue
			}
			if _, err := bw.Write(s.Body); err != nil {
				return err
			}
			delete(pending, s.Marker)
		}
	}

	if len(pending) > 0 {
		missing := make([]string, 0, len(pending))
		for _, s := range sections {
			if _, ok := pending[s.Marker]; ok {
				missing = append(missing, s.Marker)
			}
		}
		return fmt.Errorf("%w in %s: %s", ErrMissingMarker, t.name, strings.Join(missing, ", "))
	}
	return bw.Flush()
}
