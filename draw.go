package ledcontrol

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/flavioheleno/ledcontrol/rowbit"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

var _ display.Drawer = (*Dev)(nil)

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. The chain is one 8*N x 8 image with
// device 0 leftmost.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.devices*Columns, Rows)
}

// Image returns a copy of the shadow state.
func (d *Dev) Image() *rowbit.Image {
	img := rowbit.New(d.Bounds())
	for addr := 0; addr < d.devices; addr++ {
		for row := 0; row < Rows; row++ {
			img.SetRow(addr, row, d.status[addr][row])
		}
	}
	return img
}

// Draw implements display.Drawer.
//
// Only rows whose value differs from the shadow state are sent, one
// transaction per changed row.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	clipped := dst.Intersect(d.Bounds())
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))
	dst = clipped

	var next *rowbit.Image
	if img, ok := src.(*rowbit.Image); ok && dst == d.Bounds() && sp == (image.Point{}) && img.Rect == d.Bounds() {
		next = img
	} else {
		next = d.Image()
		draw.Draw(next, dst, src, sp, draw.Src)
	}

	for addr := 0; addr < d.devices; addr++ {
		for row := 0; row < Rows; row++ {
			v := next.Row(addr, row)
			if v == d.status[addr][row] {
				continue
			}
			if err := d.SetRow(addr, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Halt implements conn.Resource. It puts every device in shutdown mode;
// row data is kept and Shutdown(addr, false) lights it again.
func (d *Dev) Halt() error {
	for addr := 0; addr < d.devices; addr++ {
		if err := d.Shutdown(addr, true); err != nil {
			return err
		}
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ledcontrol.Dev{%d devices}", d.devices)
}
