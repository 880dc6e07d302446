package swire

// rowCodes covers only the row counts reachable from the frame shape table
// plus the default shape.
var rowCodes = map[int]uint8{
	48:  0,
	50:  1,
	60:  2,
	64:  3,
	96:  8,
	128: 11,
	192: 16,
	256: 19,
}

var colCodes = map[int]uint8{
	2:  0,
	4:  1,
	6:  2,
	8:  3,
	10: 4,
	12: 5,
	14: 6,
	16: 7,
}

// FrameControlValue packs the row and column codes of a frame shape into the
// frame control register layout (rowCode << 3) | colCode.
func FrameControlValue(rows, cols int) (uint8, error) {
	rowCode, ok := rowCodes[rows]
	if !ok {
		return 0, configErr(KindUnsupportedFrameShape, "rows", rows)
	}
	colCode, ok := colCodes[cols]
	if !ok {
		return 0, configErr(KindUnsupportedFrameShape, "cols", cols)
	}
	return rowCode<<3 | colCode, nil
}

// HControlValue packs a horizontal start/stop pair into one byte, start in
// the high nibble.
func HControlValue(hstart, hstop int) uint8 {
	return uint8(hstart<<4) | uint8(hstop&0xF)
}

// SplitHControl is the inverse of HControlValue.
func SplitHControl(v uint8) (hstart, hstop int) {
	return int(v >> 4), int(v & 0xF)
}
