package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// JobFile is the YAML document listing route scripts to generate.
//
//	jobs:
//	  - route: 3
//	    rx_rate: 48
//	    rx_word_length: 16
//	    tx_rate: 48
//	    tx_word_length: 16
//	    frame_size: 2
type JobFile struct {
	Jobs []swire.Request `yaml:"jobs"`
}

// ErrNoJobs is returned for a job file without entries.
var ErrNoJobs = errors.New("job file lists no jobs")

// DefaultJobs returns the built-in batch.
func DefaultJobs() []swire.Request {
	return []swire.Request{
		{Route: 3, Format: swire.Format{RxRate: 48, RxWordLength: 16, TxRate: 48, TxWordLength: 16}, FrameSize: 2},
		{Route: 3, Format: swire.Format{RxRate: 96, RxWordLength: 32, TxRate: 96, TxWordLength: 32}, FrameSize: 2},
		{Route: 10, Format: swire.Format{RxRate: 1536, RxWordLength: 1, TxRate: 48, TxWordLength: 24}, FrameSize: 2},
		{Route: 19, Format: swire.Format{RxRate: 3072, RxWordLength: 1, TxRate: 48, TxWordLength: 24}, FrameSize: 1},
	}
}

// ParseJobs decodes a job file. Unknown keys are rejected.
func ParseJobs(data []byte) ([]swire.Request, error) {
	var f JobFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode job file: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, ErrNoJobs
	}
	return f.Jobs, nil
}

// LoadJobs reads a job file, or returns DefaultJobs when path is empty.
func LoadJobs(path string) ([]swire.Request, error) {
	if path == "" {
		return DefaultJobs(), nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - job file path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	jobs, err := ParseJobs(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}
