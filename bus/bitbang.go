package bus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// BitBang drives the 3-wire bus with plain GPIO outputs.
type BitBang struct {
	data  gpio.PinOut
	clock gpio.PinOut
	cs    gpio.PinOut
}

// NewBitBang configures the three pins as outputs and leaves chip-select
// deasserted (high).
func NewBitBang(data, clock, cs gpio.PinOut) (*BitBang, error) {
	if data == nil || clock == nil || cs == nil {
		return nil, errors.New("bus: data, clock and cs pins are required")
	}
	if err := data.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("bus: failed to configure data pin: %w", err)
	}
	if err := clock.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("bus: failed to configure clock pin: %w", err)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("bus: failed to configure cs pin: %w", err)
	}
	return &BitBang{data: data, clock: clock, cs: cs}, nil
}

// Transfer sends opcode and data to device addr of an n device chain.
func (b *BitBang) Transfer(n, addr int, opcode, data byte) error {
	w, err := Wire(n, addr, opcode, data)
	if err != nil {
		return err
	}
	if err := b.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("bus: failed to assert cs: %w", err)
	}
	for _, v := range w {
		if err := b.ShiftOut(v); err != nil {
			// Release the bus before reporting.
			_ = b.cs.Out(gpio.High)
			return err
		}
	}
	if err := b.cs.Out(gpio.High); err != nil {
		return fmt.Errorf("bus: failed to release cs: %w", err)
	}
	return nil
}

// ShiftOut clocks one byte out, most significant bit first. Data is set
// up while the clock is low and sampled on the rising edge.
func (b *BitBang) ShiftOut(v byte) error {
	for i := 7; i >= 0; i-- {
		if err := b.data.Out(gpio.Level(v&(1<<uint(i)) != 0)); err != nil {
			return fmt.Errorf("bus: failed to set data: %w", err)
		}
		if err := b.clock.Out(gpio.High); err != nil {
			return fmt.Errorf("bus: failed to raise clock: %w", err)
		}
		if err := b.clock.Out(gpio.Low); err != nil {
			return fmt.Errorf("bus: failed to lower clock: %w", err)
		}
	}
	return nil
}

// String returns the pins of the bus.
func (b *BitBang) String() string {
	return fmt.Sprintf("bus.BitBang{%s, %s, %s}", b.data.Name(), b.clock.Name(), b.cs.Name())
}
