package renderer

import (
	"errors"
	"image"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidmetal/graphics"
	"github.com/richinsley/goliquidmetal/shader"
)

// fakeDevice records every call a session makes. Its compiler only checks
// that brackets balance, which is enough to reject obviously broken sources.
type fakeDevice struct {
	missing map[string]bool

	next     uint32
	programs map[graphics.Program]bool
	textures map[graphics.Texture]*image.Alpha
	uniforms map[string]any
	latches  map[string]int

	uploads    int
	deletes    int
	draws      int
	doubleFree int
	width      int
	height     int
	released   bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		missing:  map[string]bool{},
		programs: map[graphics.Program]bool{},
		textures: map[graphics.Texture]*image.Alpha{},
		uniforms: map[string]any{},
		latches:  map[string]int{},
	}
}

func balanced(src string) bool {
	pairs := map[rune]rune{')': '(', '}': '{', ']': '['}
	var stack []rune
	for _, c := range src {
		switch c {
		case '(', '{', '[':
			stack = append(stack, c)
		case ')', '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

func (d *fakeDevice) CompileProgram(vertex, fragment string) (graphics.Program, error) {
	if !balanced(vertex) {
		return 0, &graphics.ShaderError{Stage: graphics.StageCompile, Shader: "vertex", Log: "ERROR: 0:1: syntax error"}
	}
	if !balanced(fragment) || !strings.Contains(fragment, "void main") {
		return 0, &graphics.ShaderError{Stage: graphics.StageCompile, Shader: "fragment", Log: "ERROR: 0:1: syntax error"}
	}
	d.next++
	p := graphics.Program(d.next)
	d.programs[p] = true
	return p, nil
}

func (d *fakeDevice) UniformLocation(p graphics.Program, name string) (int32, bool) {
	if d.missing[name] {
		return -1, false
	}
	for i, n := range shader.UniformNames {
		if n == name {
			return int32(i), true
		}
	}
	return -1, false
}

func (d *fakeDevice) SetUniform(p graphics.Program, loc int32, v any) {
	name := shader.UniformNames[loc]
	d.uniforms[name] = v
	d.latches[name]++
}

func (d *fakeDevice) UploadMask(mask *image.Alpha) (graphics.Texture, error) {
	if mask == nil {
		return 0, errors.New("nil mask")
	}
	d.next++
	t := graphics.Texture(d.next)
	d.textures[t] = mask
	d.uploads++
	return t, nil
}

func (d *fakeDevice) DeleteTexture(t graphics.Texture) {
	if _, ok := d.textures[t]; !ok {
		d.doubleFree++
		return
	}
	delete(d.textures, t)
	d.deletes++
}

func (d *fakeDevice) DeleteProgram(p graphics.Program) {
	if !d.programs[p] {
		d.doubleFree++
		return
	}
	delete(d.programs, p)
}

func (d *fakeDevice) Resize(w, h int) {
	d.width, d.height = w, h
}

func (d *fakeDevice) Draw(p graphics.Program, t graphics.Texture, sampler int32) {
	if !d.programs[p] {
		panic("draw with unknown program")
	}
	if _, ok := d.textures[t]; !ok {
		panic("draw with unknown texture")
	}
	d.draws++
}

func (d *fakeDevice) Release() {
	d.released = true
}

func (d *fakeDevice) float(name string) float32 {
	v, _ := d.uniforms[name].(float32)
	return v
}

func (d *fakeDevice) vec3(name string) mgl32.Vec3 {
	v, _ := d.uniforms[name].(mgl32.Vec3)
	return v
}

// fakePointer delivers synthetic pointer moves.
type fakePointer struct {
	fn       func(mgl32.Vec2)
	attaches int
	removes  int
}

func (p *fakePointer) OnPointerMove(fn func(mgl32.Vec2)) func() {
	p.fn = fn
	p.attaches++
	return func() {
		p.fn = nil
		p.removes++
	}
}

func (p *fakePointer) Move(x, y float32) {
	if p.fn != nil {
		p.fn(mgl32.Vec2{x, y})
	}
}
