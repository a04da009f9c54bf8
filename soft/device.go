// Package soft is a CPU implementation of graphics.Device. It evaluates the
// liquid metal program in Go and draws into an *image.RGBA, so sessions can
// run where no GL context exists.
package soft

import (
	"fmt"
	"image"
	"log/slog"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidmetal/graphics"
	"github.com/richinsley/goliquidmetal/shader"
	"golang.org/x/sync/errgroup"
)

// Device runs the built-in fragment program only. Any other source fails to
// compile.
type Device struct {
	log     *slog.Logger
	workers int

	next     uint32
	programs map[graphics.Program]*shader.Uniforms
	textures map[graphics.Texture]*Sampler

	target *image.RGBA
}

// New returns a device with a 1x1 target. The session resizes it to the mask.
func New() *Device {
	return &Device{
		log:      slog.Default(),
		workers:  runtime.GOMAXPROCS(0),
		programs: make(map[graphics.Program]*shader.Uniforms),
		textures: make(map[graphics.Texture]*Sampler),
		target:   image.NewRGBA(image.Rect(0, 0, 1, 1)),
	}
}

// SetLogger routes diagnostics to l.
func (d *Device) SetLogger(l *slog.Logger) { d.log = l }

// Image returns the last drawn frame. Pixels are premultiplied, row 0 at the top.
func (d *Device) Image() *image.RGBA { return d.target }

func (d *Device) CompileProgram(vertex, fragment string) (graphics.Program, error) {
	if fragment != shader.GetFragmentShader() {
		return 0, &graphics.ShaderError{
			Stage:  graphics.StageCompile,
			Shader: "fragment",
			Log:    "software device only runs the built-in liquid metal program",
		}
	}
	if vertex != shader.GenerateVertexShader(false) && vertex != shader.GenerateVertexShader(true) {
		return 0, &graphics.ShaderError{
			Stage:  graphics.StageCompile,
			Shader: "vertex",
			Log:    "software device only runs the built-in quad program",
		}
	}
	d.next++
	p := graphics.Program(d.next)
	d.programs[p] = &shader.Uniforms{}
	return p, nil
}

func (d *Device) UniformLocation(p graphics.Program, name string) (int32, bool) {
	if _, ok := d.programs[p]; !ok {
		return -1, false
	}
	for i, n := range shader.UniformNames {
		if n == name {
			return int32(i), true
		}
	}
	return -1, false
}

func (d *Device) SetUniform(p graphics.Program, loc int32, v any) {
	u, ok := d.programs[p]
	if !ok || loc < 0 || int(loc) >= len(shader.UniformNames) {
		return
	}
	name := shader.UniformNames[loc]
	if name == shader.UniformTexture {
		return
	}
	if !u.Set(name, v) {
		d.log.Warn("ignored uniform", "name", name, "type", fmt.Sprintf("%T", v))
	}
}

func (d *Device) UploadMask(mask *image.Alpha) (graphics.Texture, error) {
	if mask == nil || mask.Bounds().Empty() {
		return 0, fmt.Errorf("empty mask")
	}
	d.next++
	t := graphics.Texture(d.next)
	d.textures[t] = NewSampler(mask)
	return t, nil
}

func (d *Device) DeleteTexture(t graphics.Texture) { delete(d.textures, t) }

func (d *Device) DeleteProgram(p graphics.Program) { delete(d.programs, p) }

func (d *Device) Resize(w, h int) {
	d.target = image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
}

// Draw shades every pixel of the target, splitting rows across workers.
func (d *Device) Draw(p graphics.Program, t graphics.Texture, sampler int32) {
	u, ok := d.programs[p]
	if !ok {
		d.log.Warn("draw with unknown program", "program", p)
		return
	}
	tex, ok := d.textures[t]
	if !ok {
		d.log.Warn("draw with unknown texture", "texture", t)
		return
	}

	m := &shader.Metal{U: u, Tex: tex}
	img := d.target
	h := img.Bounds().Dy()

	var g errgroup.Group
	g.SetLimit(d.workers)
	for y := 0; y < h; y++ {
		g.Go(func() error {
			shadeRow(m, img, y, h)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Device) Release() {
	clear(d.programs)
	clear(d.textures)
}

// shadeRow fills image row y. Fragment coordinates are pixel centers measured
// from the bottom-left, as gl_FragCoord is.
func shadeRow(m *shader.Metal, img *image.RGBA, y, h int) {
	w := img.Bounds().Dx()
	fy := float32(h-1-y) + 0.5
	row := img.Pix[y*img.Stride:]
	for x := 0; x < w; x++ {
		c := m.Shade(float32(x)+0.5, fy)
		o := x * 4
		row[o+0] = toByte(c[0])
		row[o+1] = toByte(c[1])
		row[o+2] = toByte(c[2])
		row[o+3] = toByte(c[3])
	}
}

func toByte(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
