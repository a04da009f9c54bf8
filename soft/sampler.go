package soft

import (
	"image"

	"github.com/chewxy/math32"
)

// Sampler reads an uploaded mask the way a clamped, linearly filtered single
// channel texture does. v = 0 is the bottom row of the image.
type Sampler struct {
	pix    []uint8
	stride int
	w, h   int
}

// NewSampler copies mask so later changes to it do not affect sampling.
func NewSampler(mask *image.Alpha) *Sampler {
	b := mask.Bounds()
	s := &Sampler{w: b.Dx(), h: b.Dy(), stride: b.Dx()}
	s.pix = make([]uint8, s.w*s.h)
	for y := 0; y < s.h; y++ {
		copy(s.pix[y*s.stride:], mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):][:s.w])
	}
	return s
}

// texel returns coverage at texel (i, j) with j counted from the bottom,
// clamping to the edge.
func (s *Sampler) texel(i, j int) float32 {
	i = min(max(i, 0), s.w-1)
	j = min(max(j, 0), s.h-1)
	return float32(s.pix[(s.h-1-j)*s.stride+i]) / 255
}

// Coverage bilinearly interpolates between the four texel centers around (u, v).
func (s *Sampler) Coverage(u, v float32) float32 {
	x := u*float32(s.w) - 0.5
	y := v*float32(s.h) - 0.5
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	fx := x - x0
	fy := y - y0
	i, j := int(x0), int(y0)

	r0 := s.texel(i, j)*(1-fx) + s.texel(i+1, j)*fx
	r1 := s.texel(i, j+1)*(1-fx) + s.texel(i+1, j+1)*fx
	return r0*(1-fy) + r1*fy
}
