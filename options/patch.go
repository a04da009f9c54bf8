package options

// StylePatch is a partial Style update. Nil fields are left unchanged.
type StylePatch struct {
	Seed             *float32
	Scale            *float32
	Refraction       *float32
	Blur             *float32
	Liquid           *float32
	Speed            *float32
	Brightness       *float32
	Contrast         *float32
	Angle            *float32
	Fresnel          *float32
	PatternSharpness *float32
	WaveAmplitude    *float32
	NoiseScale       *float32
	ChromaticSpread  *float32
	Distortion       *float32
	Contour          *float32
	LightColor       *string
	DarkColor        *string
	TintColor        *string
}

// Float returns a pointer to v, for building patches inline.
func Float(v float32) *float32 { return &v }

// Color returns a pointer to v, for building patches inline.
func Color(v string) *string { return &v }

// Apply returns s with every non-nil field of p written over it.
func (p StylePatch) Apply(s Style) Style {
	floats := []struct {
		src *float32
		dst *float32
	}{
		{p.Seed, &s.Seed},
		{p.Scale, &s.Scale},
		{p.Refraction, &s.Refraction},
		{p.Blur, &s.Blur},
		{p.Liquid, &s.Liquid},
		{p.Speed, &s.Speed},
		{p.Brightness, &s.Brightness},
		{p.Contrast, &s.Contrast},
		{p.Angle, &s.Angle},
		{p.Fresnel, &s.Fresnel},
		{p.PatternSharpness, &s.PatternSharpness},
		{p.WaveAmplitude, &s.WaveAmplitude},
		{p.NoiseScale, &s.NoiseScale},
		{p.ChromaticSpread, &s.ChromaticSpread},
		{p.Distortion, &s.Distortion},
		{p.Contour, &s.Contour},
	}
	for _, f := range floats {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if p.LightColor != nil {
		s.LightColor = *p.LightColor
	}
	if p.DarkColor != nil {
		s.DarkColor = *p.DarkColor
	}
	if p.TintColor != nil {
		s.TintColor = *p.TintColor
	}
	return s
}

// Diff returns the patch that turns from into to, with only the differing fields set.
func Diff(from, to Style) StylePatch {
	var p StylePatch
	set := func(a, b float32, dst **float32) {
		if a != b {
			*dst = Float(b)
		}
	}
	set(from.Seed, to.Seed, &p.Seed)
	set(from.Scale, to.Scale, &p.Scale)
	set(from.Refraction, to.Refraction, &p.Refraction)
	set(from.Blur, to.Blur, &p.Blur)
	set(from.Liquid, to.Liquid, &p.Liquid)
	set(from.Speed, to.Speed, &p.Speed)
	set(from.Brightness, to.Brightness, &p.Brightness)
	set(from.Contrast, to.Contrast, &p.Contrast)
	set(from.Angle, to.Angle, &p.Angle)
	set(from.Fresnel, to.Fresnel, &p.Fresnel)
	set(from.PatternSharpness, to.PatternSharpness, &p.PatternSharpness)
	set(from.WaveAmplitude, to.WaveAmplitude, &p.WaveAmplitude)
	set(from.NoiseScale, to.NoiseScale, &p.NoiseScale)
	set(from.ChromaticSpread, to.ChromaticSpread, &p.ChromaticSpread)
	set(from.Distortion, to.Distortion, &p.Distortion)
	set(from.Contour, to.Contour, &p.Contour)
	if from.LightColor != to.LightColor {
		p.LightColor = Color(to.LightColor)
	}
	if from.DarkColor != to.DarkColor {
		p.DarkColor = Color(to.DarkColor)
	}
	if from.TintColor != to.TintColor {
		p.TintColor = Color(to.TintColor)
	}
	return p
}

// Empty reports whether the patch changes nothing.
func (p StylePatch) Empty() bool {
	return p == StylePatch{}
}

// Full returns a patch that sets every field of s.
func Full(s Style) StylePatch {
	return StylePatch{
		Seed:             Float(s.Seed),
		Scale:            Float(s.Scale),
		Refraction:       Float(s.Refraction),
		Blur:             Float(s.Blur),
		Liquid:           Float(s.Liquid),
		Speed:            Float(s.Speed),
		Brightness:       Float(s.Brightness),
		Contrast:         Float(s.Contrast),
		Angle:            Float(s.Angle),
		Fresnel:          Float(s.Fresnel),
		PatternSharpness: Float(s.PatternSharpness),
		WaveAmplitude:    Float(s.WaveAmplitude),
		NoiseScale:       Float(s.NoiseScale),
		ChromaticSpread:  Float(s.ChromaticSpread),
		Distortion:       Float(s.Distortion),
		Contour:          Float(s.Contour),
		LightColor:       Color(s.LightColor),
		DarkColor:        Color(s.DarkColor),
		TintColor:        Color(s.TintColor),
	}
}
