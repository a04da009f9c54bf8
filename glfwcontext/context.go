package glfwcontext

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidmetal/renderer"
)

// Context is a GLFW window with a GL 4.1 core context. It is the Surface,
// PointerSource and Scheduler of an on-screen session.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()

	pointerFns map[int]func(mgl32.Vec2)
	nextFn     int

	frame renderer.FrameFunc
}

// New creates a window of width x height screen coordinates. The framebuffer
// is transparent where the platform supports it.
func New(width, height int, title string, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	if !visible {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
		pointerFns:   make(map[int]func(mgl32.Vec2)),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetCursorPosCallback(c.glfwCursorPosCallback)
	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

func (c *Context) glfwCursorPosCallback(w *glfw.Window, x, y float64) {
	if len(c.pointerFns) == 0 {
		return
	}
	winWidth, winHeight := w.GetSize()
	if winWidth <= 0 || winHeight <= 0 {
		return
	}
	pos := mgl32.Vec2{float32(x / float64(winWidth)), float32(y / float64(winHeight))}
	for _, fn := range c.pointerFns {
		fn(pos)
	}
}

// OnPointerMove delivers cursor positions normalized to the window, origin at
// the top-left. Positions outside the window are passed through unclamped.
func (c *Context) OnPointerMove(fn func(mgl32.Vec2)) func() {
	id := c.nextFn
	c.nextFn++
	c.pointerFns[id] = fn
	return func() { delete(c.pointerFns, id) }
}

func (c *Context) IsGLES() bool {
	return false
}

// ContentScale returns the ratio of framebuffer pixels to screen coordinates.
func (c *Context) ContentScale() float64 {
	sx, _ := c.window.GetContentScale()
	if sx <= 0 {
		return 1
	}
	return float64(sx)
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// Resize sizes the window so its framebuffer is w x h pixels.
func (c *Context) Resize(w, h int) {
	fbWidth, _ := c.window.GetFramebufferSize()
	winWidth, _ := c.window.GetSize()
	scale := 1.0
	if winWidth > 0 && fbWidth > 0 {
		scale = float64(fbWidth) / float64(winWidth)
	}
	c.window.SetSize(int(math.Round(float64(w)/scale)), int(math.Round(float64(h)/scale)))
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// Close asks the run loop to exit after the current frame.
func (c *Context) Close() {
	c.window.SetShouldClose(true)
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

// Now returns GLFW's monotonic timer.
func (c *Context) Now() time.Duration {
	return time.Duration(glfw.GetTime() * float64(time.Second))
}

func (c *Context) Start(frame renderer.FrameFunc) { c.frame = frame }

func (c *Context) Stop() { c.frame = nil }

// Run drives the scheduled frame once per buffer swap until the window closes,
// the schedule stops or ctx is done. It must run on the main thread.
func (c *Context) Run(ctx context.Context) error {
	glfw.SwapInterval(1)
	for !c.window.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.frame == nil {
			return nil
		}
		c.frame(c.Now())
		c.EndFrame()
	}
	return nil
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	slog.Debug("GLFW initialized", "version", glfw.GetVersionString())
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	slog.Debug("GLFW terminated")
}
