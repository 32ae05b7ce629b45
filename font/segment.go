package font

// DecimalPoint is the segment bit of the decimal point. OR it into any
// segment pattern to light the dot.
const DecimalPoint byte = 0x80

// segments maps ASCII codes to raw segment patterns, dp-a-b-c-d-e-f-g from
// bit 7 down to bit 0. Entries 0x00-0x0F hold the hexadecimal digits so that
// a nibble value indexes its own glyph.
var segments = [128]byte{
	0x7E, 0x30, 0x6D, 0x79, 0x33, 0x5B, 0x5F, 0x70, // 0-7
	0x7F, 0x7B, 0x77, 0x1F, 0x0D, 0x3D, 0x4F, 0x47, // 8-F
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // ' ' - '\''
	0x00, 0x00, 0x00, 0x00, 0x80, 0x01, 0x80, 0x00, // '(' - '/'
	0x7E, 0x30, 0x6D, 0x79, 0x33, 0x5B, 0x5F, 0x70, // '0' - '7'
	0x7F, 0x7B, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // '8' - '?'
	0x00, 0x77, 0x1F, 0x0D, 0x3D, 0x4F, 0x47, 0x00, // '@' - 'G'
	0x37, 0x00, 0x00, 0x00, 0x0E, 0x00, 0x00, 0x00, // 'H' - 'O'
	0x67, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // 'P' - 'W'
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x08, // 'X' - '_'
	0x00, 0x77, 0x1F, 0x0D, 0x3D, 0x4F, 0x47, 0x00, // '`' - 'g'
	0x37, 0x00, 0x00, 0x00, 0x0E, 0x00, 0x15, 0x1D, // 'h' - 'o'
	0x67, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // 'p' - 'w'
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // 'x' - DEL
}

// Digit returns the segment pattern of the hexadecimal digit v. Only the
// low nibble of v is used.
func Digit(v byte) byte {
	return segments[v&0x0F]
}

// Segment returns the segment pattern of the ASCII character c. Codes above
// 127 render as a space.
func Segment(c byte) byte {
	if c > 127 {
		c = ' '
	}
	return segments[c]
}
