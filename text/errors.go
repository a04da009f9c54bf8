package text

import "errors"

var (
	// ErrEmptyFontData is returned when RegisterFont is given no bytes.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownFont is returned by Lookup when no family in the list is registered.
	ErrUnknownFont = errors.New("text: unknown font family")

	// ErrInvalidSize is returned by Rasterize for a non-finite or non-positive size.
	ErrInvalidSize = errors.New("text: invalid size")

	// ErrRasterTooLarge is returned by Rasterize when the mask would exceed MaxSide or MaxPixels.
	ErrRasterTooLarge = errors.New("text: raster too large")
)
