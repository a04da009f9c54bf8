package text

import (
	"fmt"
	"image"
	"math"
	"unicode/utf8"

	"github.com/richinsley/goliquidmetal/options"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// The raster is larger than the glyph run: the width grows with the
// rune count rather than with the measured advance, so it is never cropped to the
// tight bounding box. Very wide glyph runs can still exceed it and be clipped.
const (
	widthPerRune = 0.8 // em per rune
	widthPadding = 1.0 // em
	heightFactor = 1.6 // em
)

// Rasters larger than this are refused rather than allocated.
const (
	MaxSide   = 16384
	MaxPixels = 64 << 20
)

// Mask is a glyph coverage raster, one byte of coverage per device pixel,
// row 0 at the top.
type Mask struct {
	*image.Alpha
	// Family is the registered family the text was actually drawn with, or
	// the font file path when the face came from TextConfig.FontFile.
	Family string
	// Requested is the family list the caller asked for.
	Requested string
	// Fallback is set when no requested family was available and the text
	// was drawn with the default family instead.
	Fallback bool
}

// Size returns the raster dimensions in device pixels.
func (m *Mask) Size() (int, int) {
	b := m.Bounds()
	return b.Dx(), b.Dy()
}

// Ratio returns width / height.
func (m *Mask) Ratio() float32 {
	w, h := m.Size()
	if h == 0 {
		return 1
	}
	return float32(w) / float32(h)
}

// Rasterize draws cfg.Text centered in a new oversized coverage raster at
// cfg.PixelRatio device pixels per CSS pixel. It never reuses a previous raster.
func Rasterize(cfg options.TextConfig) (*Mask, error) {
	if !finite(cfg.FontSize) || cfg.FontSize <= 0 {
		return nil, fmt.Errorf("%w: font size %v", ErrInvalidSize, cfg.FontSize)
	}
	if !finite(cfg.LetterSpacing) {
		return nil, fmt.Errorf("%w: letter spacing %v", ErrInvalidSize, cfg.LetterSpacing)
	}
	dpr := cfg.PixelRatio
	if !finite(dpr) {
		return nil, fmt.Errorf("%w: pixel ratio %v", ErrInvalidSize, dpr)
	}
	if dpr <= 0 {
		dpr = 1
	}

	f, familyName, fallback, err := resolveFace(cfg)
	if err != nil {
		return nil, err
	}

	size := cfg.FontSize * dpr
	if !finite(size) {
		return nil, fmt.Errorf("%w: font size %v at pixel ratio %v", ErrInvalidSize, cfg.FontSize, dpr)
	}
	runes := utf8.RuneCountInString(cfg.Text)
	spacing := cfg.LetterSpacing * dpr
	fw := math.Ceil((float64(max(runes, 1))*widthPerRune+widthPadding)*size + math.Max(spacing, 0)*float64(runes))
	fh := math.Ceil(size * heightFactor)
	if !(fw <= MaxSide && fh <= MaxSide && fw*fh <= MaxPixels) {
		return nil, fmt.Errorf("%w: %vx%v exceeds %dx%d or %d pixels", ErrRasterTooLarge, fw, fh, MaxSide, MaxSide, MaxPixels)
	}
	width, height := int(fw), int(fh)

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("text: failed to create face: %w", err)
	}
	defer face.Close()

	img := image.NewAlpha(image.Rect(0, 0, width, height))

	advance := measure(face, cfg.Text, spacing)
	m := face.Metrics()
	x := (fixed.I(width) - advance) / 2
	y := (fixed.I(height) + m.Ascent - m.Descent) / 2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Opaque,
		Face: face,
	}
	step := fixed.Int26_6(math.Round(spacing * 64))
	for _, r := range cfg.Text {
		d.Dot = fixed.Point26_6{X: x, Y: y}
		d.DrawString(string(r))
		adv, _ := face.GlyphAdvance(r)
		x += adv + step
	}

	return &Mask{Alpha: img, Family: familyName, Requested: cfg.Font, Fallback: fallback}, nil
}

// resolveFace picks the face for cfg. A FontFile is loaded on its own and
// never enters the family registry; otherwise the family list is looked up,
// falling back to the default family.
func resolveFace(cfg options.TextConfig) (*opentype.Font, string, bool, error) {
	if cfg.FontFile != "" {
		f, err := loadFontFile(cfg.FontFile)
		if err != nil {
			return nil, "", false, err
		}
		return f, cfg.FontFile, false, nil
	}
	f, familyName, err := Lookup(cfg.Font, cfg.FontWeight)
	if err == nil {
		return f, familyName, false, nil
	}
	f, familyName, err = Lookup(options.DefaultFont, cfg.FontWeight)
	if err != nil {
		return nil, "", false, err
	}
	return f, familyName, true, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// measure returns the advance of the glyph run including letter spacing.
func measure(face font.Face, s string, spacing float64) fixed.Int26_6 {
	step := fixed.Int26_6(math.Round(spacing * 64))
	var total fixed.Int26_6
	n := 0
	for _, r := range s {
		adv, _ := face.GlyphAdvance(r)
		total += adv
		n++
	}
	if n > 1 {
		total += step * fixed.Int26_6(n-1)
	}
	return total
}
