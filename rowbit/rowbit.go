package rowbit

import (
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Image is a 1-bit image packed 8 pixels per byte, MSB first.
type Image struct {
	Pix    []byte          // Pixel data (8 pixels per byte)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// New creates an Image with the specified bounds. The width must be a
// multiple of 8.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	if w%8 != 0 {
		panic("rowbit: width must be a multiple of 8")
	}
	stride := w / 8
	return &Image{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns image1bit.BitModel.
func (p *Image) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the pixel at (x, y). Pixels outside the bounds are Off.
func (p *Image) BitAt(x, y int) image1bit.Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return image1bit.Off
	}
	offset, mask := p.pixOffset(x, y)
	return image1bit.Bit(p.Pix[offset]&mask != 0)
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetBit(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit))
}

// SetBit sets the pixel at (x, y) without color conversion.
func (p *Image) SetBit(x, y int, b image1bit.Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, mask := p.pixOffset(x, y)
	if b {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// Row returns byte column d of pixel row y, i.e. the register value of row
// y on device d. It returns 0 outside the image.
func (p *Image) Row(d, y int) byte {
	if d < 0 || d >= p.Stride || y < p.Rect.Min.Y || y >= p.Rect.Max.Y {
		return 0
	}
	return p.Pix[(y-p.Rect.Min.Y)*p.Stride+d]
}

// SetRow overwrites byte column d of pixel row y.
func (p *Image) SetRow(d, y int, v byte) {
	if d < 0 || d >= p.Stride || y < p.Rect.Min.Y || y >= p.Rect.Max.Y {
		return
	}
	p.Pix[(y-p.Rect.Min.Y)*p.Stride+d] = v
}

// pixOffset returns the byte offset and bit mask of the pixel at (x, y).
// The leftmost pixel of each byte is bit 7.
func (p *Image) pixOffset(x, y int) (offset int, mask byte) {
	dx := x - p.Rect.Min.X
	offset = (y-p.Rect.Min.Y)*p.Stride + dx/8
	mask = 0x80 >> uint(dx&7)
	return
}
