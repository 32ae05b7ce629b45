package ledcontrol

import (
	"errors"
	"fmt"
	"time"

	"github.com/flavioheleno/ledcontrol/bus"
	"github.com/flavioheleno/ledcontrol/font"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Register addresses (opcodes) of the MAX7219/MAX7221.
const (
	opNoop        byte = 0x00
	opDigit0      byte = 0x01
	opDecodeMode  byte = 0x09
	opIntensity   byte = 0x0A
	opScanLimit   byte = 0x0B
	opShutdown    byte = 0x0C
	opDisplayTest byte = 0x0F
)

const (
	// MaxDevices is the longest supported chain.
	MaxDevices = bus.MaxDevices
	// Rows is the number of digit/row registers per device.
	Rows = 8
	// Columns is the number of LEDs per row.
	Columns = 8
)

// Transport sends one register write to device addr of a chain of the
// given length, leaving every other device untouched.
//
// bus.BitBang and bus.SPI implement it.
type Transport interface {
	Transfer(devices, addr int, opcode, data byte) error
}

// Opts is the optional configuration of a Dev.
type Opts struct {
	// Logger receives debug events for rejected calls. nil disables logging.
	Logger *zerolog.Logger

	// Sleep blocks between scroll steps. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// StrictRanges rejects scan limits outside [0,8) and intensities
	// outside [0,16). By default every value is forwarded to the device,
	// truncated to a byte.
	StrictRanges bool
}

// Dev is a chain of up to eight MAX7219/MAX7221 devices.
//
// The devices are write-only, so Dev keeps a shadow copy of every row
// register; read-modify-write operations like SetLed work on that copy.
// Calls addressing a device, row, column or digit outside the chain are
// ignored and return nil.
//
// Dev is not safe for concurrent use.
type Dev struct {
	t       Transport
	devices int

	// Shadow of the digit registers, zeroed for all MaxDevices positions.
	status [MaxDevices][Rows]byte

	log    zerolog.Logger
	sleep  func(time.Duration)
	strict bool
}

// New creates a Dev sending its commands through t.
//
// devices outside [1,8] is clamped to 8. Every device is initialized with
// display test off, scan limit 7, no decoding and blank rows, and is left
// in shutdown mode: call Shutdown(addr, false) to light it.
func New(t Transport, devices int, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, errors.New("ledcontrol: transport is required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	if devices <= 0 || devices > MaxDevices {
		devices = MaxDevices
	}

	d := &Dev{
		t:       t,
		devices: devices,
		log:     zerolog.Nop(),
		sleep:   opts.Sleep,
		strict:  opts.StrictRanges,
	}
	if opts.Logger != nil {
		d.log = opts.Logger.With().Str("driver", "ledcontrol").Logger()
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewBitBang creates a Dev driving the chain through three GPIO pins.
func NewBitBang(data, clock, cs gpio.PinOut, devices int, opts *Opts) (*Dev, error) {
	b, err := bus.NewBitBang(data, clock, cs)
	if err != nil {
		return nil, fmt.Errorf("ledcontrol: %w", err)
	}
	return New(b, devices, opts)
}

// NewSPI creates a Dev driving the chain through a hardware SPI port. The
// frames on the wire are identical to NewBitBang's.
func NewSPI(p spi.Port, devices int, opts *Opts) (*Dev, error) {
	s, err := bus.NewSPI(p)
	if err != nil {
		return nil, fmt.Errorf("ledcontrol: %w", err)
	}
	return New(s, devices, opts)
}

// init sends the startup sequence to every device of the chain.
func (d *Dev) init() error {
	for addr := 0; addr < d.devices; addr++ {
		if err := d.transfer(addr, opDisplayTest, 0); err != nil {
			return err
		}
		if err := d.SetScanLimit(addr, 7); err != nil {
			return err
		}
		// Raw segment data, no BCD decoding.
		if err := d.transfer(addr, opDecodeMode, 0); err != nil {
			return err
		}
		if err := d.ClearDisplay(addr); err != nil {
			return err
		}
		if err := d.Shutdown(addr, true); err != nil {
			return err
		}
	}
	return nil
}

// transfer sends a single register write.
func (d *Dev) transfer(addr int, opcode, data byte) error {
	if err := d.t.Transfer(d.devices, addr, opcode, data); err != nil {
		return fmt.Errorf("ledcontrol: device %d: %w", addr, err)
	}
	return nil
}

// valid reports whether addr is a device of the chain.
func (d *Dev) valid(addr int) bool {
	if addr < 0 || addr >= d.devices {
		d.log.Debug().Int("addr", addr).Int("devices", d.devices).Msg("device out of range")
		return false
	}
	return true
}

// inRange checks a scan limit or intensity against [0,n).
func (d *Dev) inRange(name string, v, n int) bool {
	if !d.strict {
		return true
	}
	if v < 0 || v >= n {
		d.log.Debug().Str("register", name).Int("value", v).Int("limit", n).Msg("value out of range")
		return false
	}
	return true
}

// DeviceCount returns the length of the chain.
func (d *Dev) DeviceCount() int {
	return d.devices
}

// Shutdown puts device addr in power-down mode when enable is true and
// back to normal operation when it is false. Row data is retained.
func (d *Dev) Shutdown(addr int, enable bool) error {
	if !d.valid(addr) {
		return nil
	}
	if enable {
		return d.transfer(addr, opShutdown, 0)
	}
	return d.transfer(addr, opShutdown, 1)
}

// SetScanLimit sets how many rows (digits) device addr multiplexes: rows
// 0 through limit are displayed.
func (d *Dev) SetScanLimit(addr, limit int) error {
	if !d.valid(addr) || !d.inRange("scan_limit", limit, Rows) {
		return nil
	}
	return d.transfer(addr, opScanLimit, byte(limit))
}

// SetIntensity sets the brightness of device addr, 0 (dimmest) to 15.
func (d *Dev) SetIntensity(addr, intensity int) error {
	if !d.valid(addr) || !d.inRange("intensity", intensity, 16) {
		return nil
	}
	return d.transfer(addr, opIntensity, byte(intensity))
}

// SetDisplayTest turns the display test mode of device addr on or off.
// While on, every LED is lit at full intensity regardless of row data.
func (d *Dev) SetDisplayTest(addr int, on bool) error {
	if !d.valid(addr) {
		return nil
	}
	if on {
		return d.transfer(addr, opDisplayTest, 1)
	}
	return d.transfer(addr, opDisplayTest, 0)
}

// ClearDisplay switches off every LED of device addr.
func (d *Dev) ClearDisplay(addr int) error {
	if !d.valid(addr) {
		return nil
	}
	for row := 0; row < Rows; row++ {
		d.status[addr][row] = 0
		if err := d.transfer(addr, opDigit0+byte(row), 0); err != nil {
			return err
		}
	}
	return nil
}

// SetLed switches a single LED on or off. Column 0 is the most significant
// bit of the row.
func (d *Dev) SetLed(addr, row, col int, state bool) error {
	if !d.valid(addr) {
		return nil
	}
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		d.log.Debug().Int("addr", addr).Int("row", row).Int("col", col).Msg("led out of range")
		return nil
	}
	mask := byte(0x80) >> uint(col)
	if state {
		d.status[addr][row] |= mask
	} else {
		d.status[addr][row] &^= mask
	}
	return d.transfer(addr, opDigit0+byte(row), d.status[addr][row])
}

// SetRow sets all 8 LEDs of a row at once.
func (d *Dev) SetRow(addr, row int, value byte) error {
	if !d.valid(addr) {
		return nil
	}
	if row < 0 || row >= Rows {
		d.log.Debug().Int("addr", addr).Int("row", row).Msg("row out of range")
		return nil
	}
	d.status[addr][row] = value
	return d.transfer(addr, opDigit0+byte(row), value)
}

// SetColumn sets all 8 LEDs of a column. Bit 7 of value is row 0. Each row
// is written with its own transaction.
func (d *Dev) SetColumn(addr, col int, value byte) error {
	if !d.valid(addr) {
		return nil
	}
	if col < 0 || col >= Columns {
		d.log.Debug().Int("addr", addr).Int("col", col).Msg("column out of range")
		return nil
	}
	for row := 0; row < Rows; row++ {
		bit := (value >> uint(7-row)) & 0x01
		if err := d.SetLed(addr, row, col, bit == 1); err != nil {
			return err
		}
	}
	return nil
}

// SetDigit displays the hexadecimal value (0-15) on a 7-segment digit,
// optionally with its decimal point.
func (d *Dev) SetDigit(addr, digit int, value byte, dp bool) error {
	if !d.valid(addr) {
		return nil
	}
	if digit < 0 || digit >= Rows || value > 15 {
		d.log.Debug().Int("addr", addr).Int("digit", digit).Uint8("value", value).Msg("digit out of range")
		return nil
	}
	v := font.Digit(value)
	if dp {
		v |= font.DecimalPoint
	}
	d.status[addr][digit] = v
	return d.transfer(addr, opDigit0+byte(digit), v)
}

// SetChar displays an ASCII character on a 7-segment digit. Only a subset
// of characters has a glyph; codes above 127 render as a space.
func (d *Dev) SetChar(addr, digit int, c byte, dp bool) error {
	if !d.valid(addr) {
		return nil
	}
	if digit < 0 || digit >= Rows {
		d.log.Debug().Int("addr", addr).Int("digit", digit).Msg("digit out of range")
		return nil
	}
	v := font.Segment(c)
	if dp {
		v |= font.DecimalPoint
	}
	d.status[addr][digit] = v
	return d.transfer(addr, opDigit0+byte(digit), v)
}

// Row returns the last value written to a row, or 0 when the position is
// outside the chain.
func (d *Dev) Row(addr, row int) byte {
	if addr < 0 || addr >= d.devices || row < 0 || row >= Rows {
		return 0
	}
	return d.status[addr][row]
}

// Led reports whether a single LED was last set on.
func (d *Dev) Led(addr, row, col int) bool {
	if col < 0 || col >= Columns {
		return false
	}
	return d.Row(addr, row)&(0x80>>uint(col)) != 0
}
