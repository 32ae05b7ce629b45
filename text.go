package ledcontrol

import (
	"time"

	"github.com/flavioheleno/ledcontrol/font"
)

// Direction selects which way PrintStringScroll sweeps the text.
type Direction byte

const (
	// ScrollLeft moves the text towards lower row offsets.
	ScrollLeft Direction = '<'
	// ScrollRight moves the text towards higher row offsets.
	ScrollRight Direction = '>'
)

// PrintChar renders c as 7 rows starting at row pos: a blank row, the five
// glyph columns and a blank row. Characters without a glyph render blank.
// Rows falling outside the device are dropped.
func (d *Dev) PrintChar(addr, pos int, c rune) error {
	for i, v := range font.Rows(c) {
		if err := d.SetRow(addr, pos+i, v); err != nil {
			return err
		}
	}
	return nil
}

// PrintString renders s with one character every 6 rows starting at pos.
// Rendering stops at the first NUL character.
func (d *Dev) PrintString(addr, pos int, s string) error {
	i := 0
	for _, c := range s {
		if c == 0 {
			break
		}
		if err := d.PrintChar(addr, font.Advance*i+pos, c); err != nil {
			return err
		}
		i++
	}
	return nil
}

// PrintStringScroll sweeps s across the device and off the other side,
// blocking for delay after each step. It redraws the string
// len(s)*6+1 times and cannot be interrupted.
//
// ScrollLeft moves the string from pos down to pos-len(s)*6. ScrollRight
// moves it from pos-len(s)*6 up to pos. Other directions do nothing.
func (d *Dev) PrintStringScroll(addr, pos int, s string, delay time.Duration, dir Direction) error {
	width := textLen(s) * font.Advance
	var offset func(step int) int
	switch dir {
	case ScrollLeft:
		offset = func(step int) int { return pos - step }
	case ScrollRight:
		offset = func(step int) int { return pos - width + step }
	default:
		d.log.Debug().Str("direction", string(rune(dir))).Msg("unknown scroll direction")
		return nil
	}

	for step := 0; step <= width; step++ {
		if err := d.PrintString(addr, offset(step), s); err != nil {
			return err
		}
		d.sleep(delay)
	}
	return nil
}

// textLen counts the characters of s up to the first NUL.
func textLen(s string) int {
	n := 0
	for _, c := range s {
		if c == 0 {
			break
		}
		n++
	}
	return n
}
