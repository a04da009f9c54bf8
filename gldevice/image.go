package gldevice

import "image"

// vflip returns a copy of src with its rows reversed. GL textures start at the
// bottom row; image.Alpha starts at the top.
func vflip(src *image.Alpha) *image.Alpha {
	bounds := src.Bounds()
	flipped := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	height := bounds.Dy()

	rowSize := bounds.Dx()
	for y := 0; y < height; y++ {
		srcRow := src.Pix[src.PixOffset(bounds.Min.X, bounds.Max.Y-1-y):]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}
