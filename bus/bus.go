// Package bus clocks MAX7219/MAX7221 register writes out to a chain of
// daisy-chained devices.
//
// Every transaction carries one 16-bit word per device. The addressed
// device receives the real opcode and data while every other device
// receives a no-op word, so its registers are left untouched when
// chip-select rises and all devices latch at once.
//
// Two transports are provided: BitBang toggles three GPIO pins and SPI
// hands the same frame to a hardware SPI port.
package bus

import "fmt"

// MaxDevices is the longest chain a frame can address.
const MaxDevices = 8

// Frame returns the 2*n byte buffer of one transaction. Device i owns
// bytes 2*i (data) and 2*i+1 (opcode); all other bytes are zero, which
// encodes the no-op opcode.
func Frame(n, addr int, opcode, data byte) ([]byte, error) {
	if n <= 0 || n > MaxDevices {
		return nil, fmt.Errorf("bus: chain length %d out of range [1,%d]", n, MaxDevices)
	}
	if addr < 0 || addr >= n {
		return nil, fmt.Errorf("bus: device %d out of range [0,%d)", addr, n)
	}
	buf := make([]byte, 2*n)
	buf[2*addr] = data
	buf[2*addr+1] = opcode
	return buf, nil
}

// Wire returns the bytes of a transaction in the order they are shifted
// onto the bus: the last frame byte first, so the word for the device
// farthest from the controller leaves first.
func Wire(n, addr int, opcode, data byte) ([]byte, error) {
	buf, err := Frame(n, addr, opcode, data)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf, nil
}
