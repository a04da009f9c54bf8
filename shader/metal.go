package shader

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sampler returns glyph coverage at a texture coordinate with (0,0) at the
// bottom-left, the way the fragment program samples u_tex.
type Sampler interface {
	Coverage(u, v float32) float32
}

// Metal evaluates the liquid metal fragment program on the CPU. It is the Go
// mirror of the GLSL source and backs the software device.
type Metal struct {
	U   *Uniforms
	Tex Sampler
}

// Shade returns the premultiplied RGBA output for the fragment at pixel
// coordinate (x, y), measured from the bottom-left corner of the surface.
func (m *Metal) Shade(fragX, fragY float32) mgl32.Vec4 {
	u := m.U
	uv := mgl32.Vec2{fragX / u.Resolution[0], fragY / u.Resolution[1]}
	t := u.Time * 0.001

	c := mgl32.Vec2{uv[0] - 0.5, uv[1] - 0.55}
	c = mgl32.Vec2{c[0] + c[1]*0.35, c[1] + c[0]*0.35}
	cv := c.Len()
	fres := math32.Pow(clamp(1-cv*cv, 0, 1), u.Fresnel)

	a := mgl32.DegToRad(u.Angle)
	sa, ca := math32.Sin(a), math32.Cos(a)
	q := mgl32.Vec2{uv[0] - 0.5, uv[1] - 0.5}
	p2 := mgl32.Vec2{ca*q[0] - sa*q[1], sa*q[0] + ca*q[1]}
	p2[0] *= u.Ratio

	d := mgl32.Vec2{
		m.noise(mgl32.Vec3{p2[0] * 3, p2[1] * 3, t}) - 0.5,
		m.noise(mgl32.Vec3{p2[0]*3 + 7.1, p2[1]*3 + 7.1, t}) - 0.5,
	}
	suv := uv.Add(d.Mul(u.Distortion * 0.02))
	cover := m.Tex.Coverage(suv[0], suv[1])
	b := u.Blur * 0.01
	soft := 0.25 * (m.Tex.Coverage(suv[0]+b, suv[1]) + m.Tex.Coverage(suv[0]-b, suv[1]) +
		m.Tex.Coverage(suv[0], suv[1]+b) + m.Tex.Coverage(suv[0], suv[1]-b))

	w := m.flow(mgl32.Vec3{p2[0] * u.NoiseScale * 2, p2[1] * u.NoiseScale * 2, t * 0.5}, t)
	n := m.noise(w.Mul(1.5))
	wave := u.Wave * 0.5 * math32.Sin(p2[0]*9.424778+t*2)
	x := n*u.Scale + wave + u.Contour*(1-soft)*0.5 + cv*0.25
	band := math32.Abs(fract(x*0.5)*2 - 1)

	sharp := clamp(u.Sharpness*(0.75-0.25*cv), 0, 1)
	disp := u.Refraction * u.Chroma * 0.05
	bias := cv * 0.03
	col := mgl32.Vec3{
		m.mG(u.Light[0], u.Dark[0], band+disp+bias, sharp, cv),
		m.mG(u.Light[1], u.Dark[1], band+0.35*disp+0.5*bias, sharp, cv),
		m.mG(u.Light[2], u.Dark[2], band-0.8*disp-0.25*bias, sharp, cv),
	}

	for i := range col {
		v := (col[i]-0.5)*u.Contrast + 0.5
		v *= u.Brightness
		v = mix(v, 1-u.Tint[i], 0.2)
		col[i] = clamp(v, 0, 1)
	}

	edge := math32.Min(math32.Min(suv[0], 1-suv[0]), math32.Min(suv[1], 1-suv[1]))
	border := smoothstep(0, 0.02, edge)
	alpha := cover * fres * border
	return mgl32.Vec4{col[0] * alpha, col[1] * alpha, col[2] * alpha, alpha}
}

func (m *Metal) hash(p mgl32.Vec3) float32 {
	s := m.U.Seed * 0.0173
	p = mgl32.Vec3{fract(p[0]*0.1031 + s), fract(p[1]*0.1031 + s), fract(p[2]*0.1031 + s)}
	d := p.Dot(mgl32.Vec3{p[2] + 31.32, p[1] + 31.32, p[0] + 31.32})
	p = mgl32.Vec3{p[0] + d, p[1] + d, p[2] + d}
	return fract((p[0] + p[1]) * p[2])
}

func (m *Metal) noise(p mgl32.Vec3) float32 {
	i := mgl32.Vec3{math32.Floor(p[0]), math32.Floor(p[1]), math32.Floor(p[2])}
	f := p.Sub(i)
	var u mgl32.Vec3
	for k := range f {
		u[k] = f[k] * f[k] * (3 - 2*f[k])
	}
	n000 := m.hash(i)
	n100 := m.hash(i.Add(mgl32.Vec3{1, 0, 0}))
	n010 := m.hash(i.Add(mgl32.Vec3{0, 1, 0}))
	n110 := m.hash(i.Add(mgl32.Vec3{1, 1, 0}))
	n001 := m.hash(i.Add(mgl32.Vec3{0, 0, 1}))
	n101 := m.hash(i.Add(mgl32.Vec3{1, 0, 1}))
	n011 := m.hash(i.Add(mgl32.Vec3{0, 1, 1}))
	n111 := m.hash(i.Add(mgl32.Vec3{1, 1, 1}))
	return mix(mix(mix(n000, n100, u[0]), mix(n010, n110, u[0]), u[1]),
		mix(mix(n001, n101, u[0]), mix(n011, n111, u[0]), u[1]), u[2])
}

// cw is the cross warp: each axis of a moves by the noise of a cyclic permutation of b.
func (m *Metal) cw(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + m.noise(mgl32.Vec3{b[1], b[2], b[0]}) - 0.5,
		a[1] + m.noise(mgl32.Vec3{b[2], b[0], b[1]}) - 0.5,
		a[2] + m.noise(b) - 0.5,
	}
}

// sw is the self warp blend.
func (m *Metal) sw(p mgl32.Vec3, k float32) mgl32.Vec3 {
	w := m.cw(p, p)
	return mgl32.Vec3{mix(p[0], w[0], k), mix(p[1], w[1], k), mix(p[2], w[2], k)}
}

func (m *Metal) flow(p mgl32.Vec3, t float32) mgl32.Vec3 {
	q := m.sw(p.Add(mgl32.Vec3{0, 0, t}), m.U.Liquid)
	r := m.cw(q, mgl32.Vec3{p[2] + t*0.5, p[0] - t*0.3, p[1]})
	r = m.sw(r.Mul(1.3), m.U.Liquid*0.5)
	return m.cw(r, mgl32.Vec3{q[1] - t*0.2, q[2] - t*0.2, q[0] - t*0.2})
}

// mG composites five ordered transitions lo→hi→lo→hi→lo→hi across t.
func (m *Metal) mG(hi, lo, t, sharp, cv float32) float32 {
	w := mix(0.12, 0.01, clamp(sharp, 0, 1)) + m.U.Blur*0.02
	s := math32.Min((0.16+0.06*cv)/math32.Max(m.U.Scale, 0.1), 0.22)
	e := 0.5 - 1.9*s
	c := lo
	c = mix(c, hi, smoothstep(e-w, e+w, t))
	e += s
	c = mix(c, lo, smoothstep(e-w, e+w, t))
	e += 0.6 * s
	c = mix(c, hi, smoothstep(e-w, e+w, t))
	e += 1.4 * s
	c = mix(c, lo, smoothstep(e-w, e+w, t))
	e += 0.8 * s
	c = mix(c, hi, smoothstep(e-w, e+w, t))
	return c
}

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

func mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp(x, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, x))
}

func smoothstep(e0, e1, x float32) float32 {
	t := clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}
