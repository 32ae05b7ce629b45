// Package font holds the constant glyph data used by the ledcontrol driver.
//
// Two tables are provided:
//
//   - a 7-segment table indexed by hexadecimal digit or ASCII code, used for
//     numeric displays wired to the digit registers;
//   - a 5x7 dot-matrix table keyed by character, used to render text on
//     8x8 LED matrices. Each glyph is five column bytes, bit 0 being the
//     top pixel of the column.
//
// Both tables are read-only; lookups of unknown characters return a blank
// glyph.
package font
