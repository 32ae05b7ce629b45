// Package ledcontrol drives a chain of MAX7219/MAX7221 LED display drivers
// over the 3-wire serial bus (DIN, CLK, LOAD/CS).
//
// Up to eight devices can be daisy-chained. Each device controls either an
// 8x8 LED matrix or eight 7-segment digits. This driver implements the
// display.Drawer interface from periph.io for matrix chains.
//
// # Device Characteristics
//
// - 8 row (digit) registers per device, 8 LEDs per row
// - 16 intensity levels (0-15)
// - Scan limit selects how many rows are multiplexed (1-8)
// - Shutdown mode keeps register contents while blanking the display
// - Write-only: the driver keeps a shadow copy of every row
//
// # Hardware Connection
//
// The bus is shared by every device of the chain. DOUT of one device feeds
// DIN of the next:
//
//	Chip Pin   → System Pin
//	GND        → GND
//	V+         → 5V
//	DIN        → GPIO (data) or SPI MOSI
//	CLK        → GPIO (clock) or SPI SCLK
//	LOAD/CS    → GPIO (chip-select) or SPI CE0
//
// # Basic Usage
//
// Bit-banged on three GPIO pins:
//
//	package main
//
//	import (
//		"time"
//
//		"github.com/flavioheleno/ledcontrol"
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		dev, _ := ledcontrol.NewBitBang(
//			gpioreg.ByName("GPIO10"),
//			gpioreg.ByName("GPIO11"),
//			gpioreg.ByName("GPIO8"),
//			4, nil)
//		defer dev.Halt()
//
//		// Devices start in shutdown mode.
//		for addr := 0; addr < dev.DeviceCount(); addr++ {
//			dev.Shutdown(addr, false)
//			dev.SetIntensity(addr, 8)
//		}
//
//		dev.SetLed(0, 2, 3, true)
//		dev.PrintStringScroll(1, 0, "Hello", 50*time.Millisecond, ledcontrol.ScrollLeft)
//	}
//
// With a hardware SPI port the frames are the same:
//
//	p, _ := spireg.Open("")
//	dev, _ := ledcontrol.NewSPI(p, 4, nil)
//
// # Addressing
//
// Device 0 is the one wired to the controller. Rows are numbered 0-7 and
// map to digit registers 1-8. Within a row, column 0 is the most
// significant bit.
//
// Calls naming a device, row, column or digit outside the chain are
// ignored: they return nil and send nothing. Set Opts.Logger to see them
// as debug events. Errors are only returned when the pins or the SPI port
// fail.
//
// # Scan Limit and Intensity
//
// By default SetScanLimit and SetIntensity forward any value, truncated
// to a byte. Set Opts.StrictRanges to drop values outside [0,8) and
// [0,16) instead.
//
// # Text
//
// PrintChar, PrintString and PrintStringScroll render 5x7 glyphs from the
// font package along the row axis of a single matrix, one character every
// 6 rows. SetDigit and SetChar write 7-segment patterns to digit displays.
//
// # Datasheet
//
// https://www.analog.com/media/en/technical-documentation/data-sheets/MAX7219-MAX7221.pdf
package ledcontrol
