// Package gldevice draws liquid metal sessions through OpenGL 4.1 core or
// OpenGL ES 3.0, whichever context the host surface made current.
package gldevice

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidmetal/graphics"
	"github.com/richinsley/goliquidmetal/translator"
)

var (
	glInitOnce sync.Once
	glInitErr  error
)

// two triangles covering clip space
var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Device implements graphics.Device on the GL context current on the calling
// thread. Every method must run on that thread.
type Device struct {
	surface graphics.Surface
	gles    bool
	log     *slog.Logger

	quadVAO uint32
	quadVBO uint32

	// fragment translations, for uniform name mapping
	programs map[graphics.Program]*translator.Fragment
	width    int32
	height   int32
}

// New makes surface current, loads the GL entry points and builds the
// full-surface quad. gles selects the ES 3.0 shader dialect.
func New(surface graphics.Surface, gles bool) (*Device, error) {
	if surface == nil {
		return nil, graphics.ErrCapabilityUnavailable
	}
	surface.MakeCurrent()
	glInitOnce.Do(func() { glInitErr = gl.Init() })
	if glInitErr != nil {
		return nil, fmt.Errorf("%w: failed to initialize OpenGL: %v", graphics.ErrCapabilityUnavailable, glInitErr)
	}

	d := &Device{
		surface:  surface,
		gles:     gles,
		log:      slog.Default(),
		programs: make(map[graphics.Program]*translator.Fragment),
	}

	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	d.width, d.height = clampSize(surface.GetFramebufferSize())
	return d, nil
}

// IsGLES reports whether sources are compiled in the ES dialect.
func (d *Device) IsGLES() bool { return d.gles }

// SetLogger routes driver diagnostics to l.
func (d *Device) SetLogger(l *slog.Logger) { d.log = l }

// Version returns the GL_VERSION string of the current context.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) CompileProgram(vertexSource, fragmentSource string) (graphics.Program, error) {
	frag, err := translator.TranslateFragment(fragmentSource, d.gles)
	if err != nil {
		return 0, &graphics.ShaderError{Stage: graphics.StageCompile, Shader: "fragment", Log: err.Error()}
	}

	program, err := newProgram(vertexSource, frag.Code)
	if err != nil {
		return 0, err
	}
	p := graphics.Program(program)
	d.programs[p] = frag
	d.log.Debug("linked program", "program", program, "gles", d.gles)
	return p, nil
}

func (d *Device) UniformLocation(p graphics.Program, name string) (int32, bool) {
	frag, ok := d.programs[p]
	if !ok {
		return -1, false
	}
	loc := gl.GetUniformLocation(uint32(p), gl.Str(frag.MappedName(name)+"\x00"))
	return loc, loc >= 0
}

func (d *Device) SetUniform(p graphics.Program, loc int32, v any) {
	set, ok := uniformSetter(v)
	if !ok {
		d.log.Warn("unsupported uniform type", "type", fmt.Sprintf("%T", v))
		return
	}
	gl.UseProgram(uint32(p))
	set(loc)
}

// uniformSetter returns the glUniform call for the value types a session
// latches: float32, mgl32.Vec2 and mgl32.Vec3. The sampler unit is bound in Draw.
func uniformSetter(v any) (func(loc int32), bool) {
	switch v := v.(type) {
	case float32:
		return func(loc int32) { gl.Uniform1f(loc, v) }, true
	case mgl32.Vec2:
		return func(loc int32) { gl.Uniform2f(loc, v[0], v[1]) }, true
	case mgl32.Vec3:
		return func(loc int32) { gl.Uniform3f(loc, v[0], v[1], v[2]) }, true
	}
	return nil, false
}

// UploadMask creates a single channel texture from mask. Rows are flipped so
// texture row 0 is the bottom of the text, matching gl_FragCoord.
func (d *Device) UploadMask(mask *image.Alpha) (graphics.Texture, error) {
	b := mask.Bounds()
	if b.Empty() {
		return 0, fmt.Errorf("empty mask %v", b)
	}
	flipped := vflip(mask)

	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, fmt.Errorf("glGenTextures returned no name")
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.R8,
		int32(b.Dx()),
		int32(b.Dy()),
		0,
		gl.RED,
		gl.UNSIGNED_BYTE,
		gl.Ptr(flipped.Pix),
	)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("texture upload failed: GL error 0x%x", e)
	}
	return graphics.Texture(tex), nil
}

func (d *Device) DeleteTexture(t graphics.Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

func (d *Device) DeleteProgram(p graphics.Program) {
	gl.DeleteProgram(uint32(p))
	delete(d.programs, p)
}

// Resize sizes the host surface and the viewport to w x h.
func (d *Device) Resize(w, h int) {
	d.surface.Resize(w, h)
	d.width, d.height = clampSize(w, h)
}

func (d *Device) Draw(p graphics.Program, t graphics.Texture, sampler int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, d.width, d.height)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(uint32(p))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	gl.Uniform1i(sampler, 0)

	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Release deletes the quad buffers and any program still owned by the device.
func (d *Device) Release() {
	for p := range d.programs {
		d.DeleteProgram(p)
	}
	if d.quadVBO != 0 {
		gl.DeleteBuffers(1, &d.quadVBO)
		d.quadVBO = 0
	}
	if d.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &d.quadVAO)
		d.quadVAO = 0
	}
}

func clampSize(w, h int) (int32, int32) {
	return int32(max(w, 1)), int32(max(h, 1))
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, &graphics.ShaderError{Stage: graphics.StageLink, Log: strings.TrimRight(log, "\x00")}
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		name := "fragment"
		if shaderType == gl.VERTEX_SHADER {
			name = "vertex"
		}
		return 0, &graphics.ShaderError{Stage: graphics.StageCompile, Shader: name, Log: strings.TrimRight(logText, "\x00")}
	}
	return shader, nil
}
