package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidmetal/shader"
	"github.com/richinsley/goliquidmetal/text"
)

// swapMask replaces the bound mask texture with one built from mask. The old
// texture is released before the new one is created, so at most one is bound.
// The aspect ratio and resolution uniforms and the surface size follow the new mask.
func (r *Renderer) swapMask(mask *text.Mask) error {
	if r.hasTexture {
		r.dev.DeleteTexture(r.texture)
		r.hasTexture = false
		r.stats.Releases++
		r.log.Debug("released mask texture", "texture", r.texture)
	}

	tex, err := r.dev.UploadMask(mask.Alpha)
	if err != nil {
		return fmt.Errorf("%w: mask upload: %v", ErrCapabilityUnavailable, err)
	}
	r.texture = tex
	r.hasTexture = true
	r.mask = mask
	r.stats.Uploads++

	w, h := mask.Size()
	r.dev.Resize(w, h)
	r.set(shader.UniformResolution, mgl32.Vec2{float32(w), float32(h)})
	r.set(shader.UniformRatio, mask.Ratio())

	if mask.Fallback {
		r.log.Warn("font family unavailable, using default", "requested", mask.Requested, "family", mask.Family)
	}
	r.log.Debug("uploaded mask texture", "texture", tex, "width", w, "height", h, "family", mask.Family)
	return nil
}
