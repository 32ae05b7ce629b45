// Package rowbit provides a 1-bit image whose memory layout matches the
// row registers of a chain of 8x8 LED matrix drivers.
//
// Each byte holds 8 horizontal pixels with the leftmost pixel in the most
// significant bit, which is exactly the value written to a MAX7219 digit
// register for one matrix row. For a chain of N matrices laid out left to
// right, byte y*Stride+d is row y of device d.
//
// Memory layout example for a 16-pixel row (two devices):
//
//	Pixels: 0 1 2 3 4 5 6 7 | 8 9 ...
//	Lit:    x . . . . . . x | . x ...
//	Bytes:  0x81            | 0x40
//
// Colors are image1bit.Bit values from periph.io/x/devices/v3, so standard
// Go colors convert with the same threshold used by periph's monochrome
// displays:
//
//	img := rowbit.New(image.Rect(0, 0, 32, 8))
//	img.SetBit(3, 2, image1bit.On)
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
package rowbit
