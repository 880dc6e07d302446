package swire

import "fmt"

// FrameShape is the bus superframe geometry for one sample rate together
// with the horizontal placement of the receive and transmit ports.
type FrameShape struct {
	Rows     int `json:"rows" yaml:"rows"`
	Cols     int `json:"cols" yaml:"cols"`
	RxHStart int `json:"rx_hstart" yaml:"rx_hstart"`
	RxHStop  int `json:"rx_hstop" yaml:"rx_hstop"`
	RxOffset int `json:"rx_offset" yaml:"rx_offset"`
	TxHStart int `json:"tx_hstart" yaml:"tx_hstart"`
	TxHStop  int `json:"tx_hstop" yaml:"tx_hstop"`
	TxOffset int `json:"tx_offset" yaml:"tx_offset"`
}

// Bits returns the number of bit slots in one frame.
func (s FrameShape) Bits() int {
	return s.Rows * s.Cols
}

// DefaultShape is the bus shape before the frame control register is written.
var DefaultShape = FrameShape{Rows: 48, Cols: 2}

// baselineShapes keeps frame rate equal to sample rate at the default bit
// rate, so one start-of-superframe pulse can be issued every frame.
var baselineShapes = map[SampleRate]FrameShape{
	Rate8:   {Rows: 256, Cols: 12, RxHStart: 1, RxHStop: 1, TxHStart: 2, TxHStop: 2},
	Rate16:  {Rows: 128, Cols: 12, RxHStart: 1, RxHStop: 1, TxHStart: 2, TxHStop: 2},
	Rate24:  {Rows: 128, Cols: 8, RxHStart: 1, RxHStop: 1, TxHStart: 2, TxHStop: 2},
	Rate32:  {Rows: 128, Cols: 6, RxHStart: 1, RxHStop: 1, TxHStart: 2, TxHStop: 2},
	Rate48:  {Rows: 64, Cols: 8, RxHStart: 1, RxHStop: 1, TxHStart: 2, TxHStop: 2},
	Rate96:  {Rows: 64, Cols: 4, RxHStart: 1, RxHStop: 1, TxHStart: 2, TxHStop: 2},
	Rate192: {Rows: 64, Cols: 2, RxHStart: 1, RxHStop: 1, TxHStart: 1, TxHStop: 1, TxOffset: 16},
}

// BaselineShape returns the unpatched shape for r.
func BaselineShape(r SampleRate) (FrameShape, error) {
	s, ok := baselineShapes[r]
	if !ok {
		return FrameShape{}, configErr(KindUnsupportedSampleRate, "sample_rate", int(r))
	}
	return s, nil
}

// ShapeTable is a mutable, per-owner copy of the frame shape table. It is not
// safe for concurrent use; each engine owns exactly one.
type ShapeTable struct {
	shapes map[SampleRate]FrameShape
}

// NewShapeTable returns a table initialized from the baseline shapes.
func NewShapeTable() *ShapeTable {
	t := &ShapeTable{shapes: make(map[SampleRate]FrameShape, len(baselineShapes))}
	t.Reset()
	return t
}

// Reset restores every entry to its baseline value.
func (t *ShapeTable) Reset() {
	for r, s := range baselineShapes {
		t.shapes[r] = s
	}
}

// ShapeFor returns the current shape for r.
func (t *ShapeTable) ShapeFor(r SampleRate) (FrameShape, error) {
	s, ok := t.shapes[r]
	if !ok {
		return FrameShape{}, configErr(KindUnsupportedSampleRate, "sample_rate", int(r))
	}
	return s, nil
}

// SetTxOffset rewrites the transmit offset of the entry for r.
func (t *ShapeTable) SetTxOffset(r SampleRate, offset int) error {
	s, ok := t.shapes[r]
	if !ok {
		return configErr(KindUnsupportedSampleRate, "sample_rate", int(r))
	}
	s.TxOffset = offset
	t.shapes[r] = s
	return nil
}

// Validate checks rows*cols == bitRate/rate with no remainder for every
// supported rate.
func (t *ShapeTable) Validate(bitRate int) error {
	for _, r := range SupportedRates {
		s, err := t.ShapeFor(r)
		if err != nil {
			return err
		}
		if bitRate%int(r) != 0 || s.Bits() != bitRate/int(r) {
			return fmt.Errorf("frame shape %dx%d does not match bit rate %d at %dk", s.Rows, s.Cols, bitRate, r)
		}
	}
	return nil
}
