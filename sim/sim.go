// Package sim emulates a chain of MAX7219/MAX7221 LED drivers at the pin
// level.
//
// A Chain exposes its LOAD/CS, CLK and DIN inputs as gpio.PinOut, so any
// driver that talks to real hardware through periph pins can be pointed at
// it instead. Bits are sampled on rising clock edges while CS is low and
// ripple from device 0 towards the end of the chain; a rising CS edge
// latches the last 16 bits held by each device into its register file.
package sim

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// MaxDevices is the longest chain the emulator accepts.
const MaxDevices = 8

const (
	regNoop        byte = 0x0
	regDigit0      byte = 0x1
	regDigit7      byte = 0x8
	regDecodeMode  byte = 0x9
	regIntensity   byte = 0xA
	regScanLimit   byte = 0xB
	regShutdown    byte = 0xC
	regDisplayTest byte = 0xF
)

// Device is the register file of one emulated chip.
type Device struct {
	Digits    [8]byte `json:"digits"`
	Decode    byte    `json:"decode"`
	Intensity byte    `json:"intensity"`
	ScanLimit byte    `json:"scan_limit"`
	Shutdown  bool    `json:"shutdown"`
	Test      bool    `json:"test"`
}

// Lit reports whether the LED at row, col is visibly on, taking display
// test, shutdown and scan limit into account. Column 0 is bit 7 of the
// digit register.
func (d Device) Lit(row, col int) bool {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return false
	}
	if d.Test {
		return true
	}
	if d.Shutdown || row > int(d.ScanLimit) {
		return false
	}
	return d.Digits[row]&(0x80>>uint(col)) != 0
}

// Chain is an emulated daisy chain. It is safe for concurrent use so a
// preview can read it while a driver writes to it.
type Chain struct {
	mu      sync.Mutex
	devices []Device
	shift   []uint16
	cur     []byte
	acc     byte
	accBits int
	txs     [][]byte
	onLatch func([]Device)

	data  *Pin
	clock *Pin
	cs    *Pin
}

// New returns a chain of n powered-up devices. Like the real part, each
// device starts in shutdown mode with blank registers.
func New(n int) (*Chain, error) {
	if n <= 0 || n > MaxDevices {
		return nil, fmt.Errorf("sim: chain length %d out of range [1,%d]", n, MaxDevices)
	}
	c := &Chain{
		devices: make([]Device, n),
		shift:   make([]uint16, n),
	}
	for i := range c.devices {
		c.devices[i].Shutdown = true
	}
	c.data = &Pin{name: "SIM_DIN", number: 0, chain: c}
	c.clock = &Pin{name: "SIM_CLK", number: 1, chain: c}
	c.cs = &Pin{name: "SIM_CS", number: 2, chain: c, level: gpio.High}
	return c, nil
}

// Len returns the number of devices in the chain.
func (c *Chain) Len() int {
	return len(c.devices)
}

// Data returns the DIN input.
func (c *Chain) Data() *Pin { return c.data }

// Clock returns the CLK input.
func (c *Chain) Clock() *Pin { return c.clock }

// CS returns the LOAD/CS input.
func (c *Chain) CS() *Pin { return c.cs }

// OnLatch registers f to be called with a snapshot after every latch. f
// runs without the chain lock held.
func (c *Chain) OnLatch(f func([]Device)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLatch = f
}

// Snapshot returns a copy of every device's registers.
func (c *Chain) Snapshot() []Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Chain) snapshot() []Device {
	out := make([]Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// Device returns the registers of device i.
func (c *Chain) Device(i int) Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.devices) {
		return Device{}
	}
	return c.devices[i]
}

// Transactions returns the bytes clocked in during each completed
// CS-low/CS-high window, in wire order.
func (c *Chain) Transactions() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.txs))
	for i, tx := range c.txs {
		out[i] = append([]byte(nil), tx...)
	}
	return out
}

// ResetTransactions forgets the recorded transactions.
func (c *Chain) ResetTransactions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs = nil
}

// Render writes the visible LED state as text, one line per row and one
// 8 character block per device, device 0 leftmost.
func (c *Chain) Render(w io.Writer) error {
	devs := c.Snapshot()
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		for i, d := range devs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			for col := 0; col < 8; col++ {
				if d.Lit(row, col) {
					sb.WriteByte('#')
				} else {
					sb.WriteByte('.')
				}
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// edge is called with the lock held whenever a pin changes level. It
// returns a snapshot when the change latched the chain.
func (c *Chain) edge(p *Pin, prev gpio.Level) []Device {
	switch {
	case p == c.cs && prev == gpio.High && p.level == gpio.Low:
		c.cur = nil
		c.acc = 0
		c.accBits = 0
	case p == c.cs && prev == gpio.Low && p.level == gpio.High:
		c.latch()
		return c.snapshot()
	case p == c.clock && prev == gpio.Low && p.level == gpio.High && c.cs.level == gpio.Low:
		c.clockIn(c.data.level)
	}
	return nil
}

func (c *Chain) clockIn(l gpio.Level) {
	var carry uint16
	if l == gpio.High {
		carry = 1
	}
	c.acc = c.acc<<1 | byte(carry)
	c.accBits++
	if c.accBits == 8 {
		c.cur = append(c.cur, c.acc)
		c.acc = 0
		c.accBits = 0
	}
	for i := range c.shift {
		out := c.shift[i] >> 15
		c.shift[i] = c.shift[i]<<1 | carry
		carry = out
	}
}

func (c *Chain) latch() {
	c.txs = append(c.txs, c.cur)
	c.cur = nil
	for i, word := range c.shift {
		c.devices[i].apply(byte(word>>8)&0x0F, byte(word))
	}
}

func (d *Device) apply(reg, v byte) {
	switch {
	case reg == regNoop:
	case reg >= regDigit0 && reg <= regDigit7:
		d.Digits[reg-regDigit0] = v
	case reg == regDecodeMode:
		d.Decode = v
	case reg == regIntensity:
		d.Intensity = v & 0x0F
	case reg == regScanLimit:
		d.ScanLimit = v & 0x07
	case reg == regShutdown:
		d.Shutdown = v&0x01 == 0
	case reg == regDisplayTest:
		d.Test = v&0x01 != 0
	}
}

// Pin is one input of the emulated chain. It implements gpio.PinOut.
type Pin struct {
	name   string
	number int
	level  gpio.Level
	chain  *Chain
}

// String returns the pin name.
func (p *Pin) String() string {
	return p.name
}

// Halt implements conn.Resource.
func (p *Pin) Halt() error {
	return nil
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return p.name
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return p.number
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return "Out/" + p.Read().String()
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	c := p.chain
	c.mu.Lock()
	prev := p.level
	p.level = l
	snap := c.edge(p, prev)
	f := c.onLatch
	c.mu.Unlock()
	if snap != nil && f != nil {
		f(snap)
	}
	return nil
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("sim: PWM is not supported")
}

// Read returns the last level driven on the pin.
func (p *Pin) Read() gpio.Level {
	p.chain.mu.Lock()
	defer p.chain.mu.Unlock()
	return p.level
}

var _ gpio.PinOut = &Pin{}
