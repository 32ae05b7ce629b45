package bus

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPI sends frames through a hardware SPI port. The port owns
// chip-select, which frames each Tx exactly like BitBang does.
type SPI struct {
	c spi.Conn
}

// NewSPI connects to p. The MAX7219 accepts up to 10MHz in Mode0.
func NewSPI(p spi.Port) (*SPI, error) {
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	return &SPI{c: c}, nil
}

// Transfer sends opcode and data to device addr of an n device chain.
func (s *SPI) Transfer(n, addr int, opcode, data byte) error {
	w, err := Wire(n, addr, opcode, data)
	if err != nil {
		return err
	}
	return s.c.Tx(w, nil)
}

// String returns the SPI connection of the bus.
func (s *SPI) String() string {
	return fmt.Sprintf("bus.SPI{%s}", s.c)
}
