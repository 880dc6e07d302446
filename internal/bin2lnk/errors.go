package bin2lnk

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when an input binary or template does not exist.
var ErrMissingInput = errors.New("missing input file")

// Operation represents the type of conversion
type Operation string

const (
	OpHexText     Operation = "hex_text"
	OpDataPort    Operation = "data_port"
	OpControlPort Operation = "control_port"
)

// ConversionError represents a structured conversion failure
type ConversionError struct {
	Op         Operation
	FilePath   string
	Underlying error
}

func (e *ConversionError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("bin2lnk %s failed for %s: %v", e.Op, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("bin2lnk %s failed for %s", e.Op, e.FilePath)
}

func (e *ConversionError) Unwrap() error {
	return e.Underlying
}

// newMissingInputError creates an error for an input file that is not there
func newMissingInputError(op Operation, path string) *ConversionError {
	return &ConversionError{Op: op, FilePath: path, Underlying: ErrMissingInput}
}

// newConversionError wraps a read, write or template failure
func newConversionError(op Operation, path string, err error) *ConversionError {
	return &ConversionError{Op: op, FilePath: path, Underlying: err}
}
