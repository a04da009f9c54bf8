package renderer

import (
	"github.com/richinsley/goliquidmetal/options"
	"github.com/richinsley/goliquidmetal/shader"
)

// pushStyle latches every field set in p into the program. It never touches
// the texture and never draws; values take effect on the next frame.
// Colors must already be valid.
func (r *Renderer) pushStyle(p options.StylePatch) {
	floats := []struct {
		name string
		val  *float32
	}{
		{shader.UniformSeed, p.Seed},
		{shader.UniformScale, p.Scale},
		{shader.UniformRefraction, p.Refraction},
		{shader.UniformBlur, p.Blur},
		{shader.UniformLiquid, p.Liquid},
		{shader.UniformBrightness, p.Brightness},
		{shader.UniformContrast, p.Contrast},
		{shader.UniformAngle, p.Angle},
		{shader.UniformFresnel, p.Fresnel},
		{shader.UniformSharpness, p.PatternSharpness},
		{shader.UniformWave, p.WaveAmplitude},
		{shader.UniformNoiseScale, p.NoiseScale},
		{shader.UniformChroma, p.ChromaticSpread},
		{shader.UniformDistortion, p.Distortion},
		{shader.UniformContour, p.Contour},
	}
	for _, f := range floats {
		if f.val != nil {
			r.set(f.name, *f.val)
		}
	}

	colors := []struct {
		name string
		val  *string
	}{
		{shader.UniformLight, p.LightColor},
		{shader.UniformDark, p.DarkColor},
		{shader.UniformTint, p.TintColor},
	}
	for _, c := range colors {
		if c.val != nil {
			r.set(c.name, options.MustParseColor(*c.val))
		}
	}

	if p.Speed != nil {
		r.clock.Speed = max(*p.Speed, 0)
	}
}

// checkColors drops color fields of p that do not parse, logging each one.
func (r *Renderer) checkColors(p *options.StylePatch) {
	for _, c := range []**string{&p.LightColor, &p.DarkColor, &p.TintColor} {
		if *c == nil {
			continue
		}
		if _, err := options.ParseColor(**c); err != nil {
			r.log.Warn("ignoring color", "error", err)
			*c = nil
		}
	}
}
