package graphics

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Program and Texture are opaque handles owned by the Device that created them.
type (
	Program uint32
	Texture uint32
)

// Device is the GPU surface a renderer session draws through. All methods are
// called from the single goroutine that runs the frame loop.
type Device interface {
	// CompileProgram compiles and links a vertex + fragment pair.
	CompileProgram(vertex, fragment string) (Program, error)
	// UniformLocation resolves a uniform declared by the program. ok is false
	// when the name does not resolve to a valid location.
	UniformLocation(p Program, name string) (loc int32, ok bool)
	// SetUniform latches a float32, mgl32.Vec2 or mgl32.Vec3 for the next draw.
	SetUniform(p Program, loc int32, v any)
	// UploadMask creates a clamped, linearly filtered single channel texture.
	UploadMask(mask *image.Alpha) (Texture, error)
	DeleteTexture(t Texture)
	DeleteProgram(p Program)
	// Resize sets the render surface to exactly w x h pixels.
	Resize(w, h int)
	// Draw issues one full-surface draw of p sampling t on unit 0.
	Draw(p Program, t Texture, sampler int32)
	// Release frees device-owned buffers. The device is unusable afterwards.
	Release()
}

// Surface is the host side of a Device: a drawable with a size and a frame boundary.
type Surface interface {
	MakeCurrent()
	GetFramebufferSize() (int, int)
	Resize(w, h int)
	EndFrame()
	Shutdown()
}

// PointerSource delivers pointer-move events in surface-local coordinates
// normalized to [0,1], origin at the top-left.
type PointerSource interface {
	// OnPointerMove installs fn and returns the function that detaches it.
	OnPointerMove(fn func(pos mgl32.Vec2)) (remove func())
}
