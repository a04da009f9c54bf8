package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidmetal/graphics"
	"github.com/richinsley/goliquidmetal/options"
	"github.com/richinsley/goliquidmetal/shader"
	"github.com/richinsley/goliquidmetal/text"
)

// State is the lifecycle position of a session.
type State int

const (
	// Idle: constructed without GPU resources. A session whose setup failed
	// stays Idle for good; Err reports why.
	Idle State = iota
	// Ready: program linked and first mask texture bound.
	Ready
	// Running: the frame callback is scheduled.
	Running
	// Disposed: all resources released. Terminal.
	Disposed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats counts what the session did to the device.
type Stats struct {
	Frames   int
	Uploads  int
	Releases int
	Width    int
	Height   int
}

// Renderer is one liquid metal session. It exclusively owns its program,
// mask texture and the device buffers, and releases them in Dispose.
//
// All methods, like the frame callback, must be called from the goroutine
// that runs the scheduler.
type Renderer struct {
	dev      graphics.Device
	sched    Scheduler
	pointer  graphics.PointerSource
	vertex   string
	fragment string
	log      *slog.Logger

	state State
	err   error
	cfg   options.RenderConfig

	program    graphics.Program
	locs       map[string]int32
	texture    graphics.Texture
	hasTexture bool
	mask       *text.Mask

	clock         Clock
	target        *pointerTarget
	removePointer func()
	last          time.Duration
	stats         Stats
}

// Option configures a Renderer at construction.
type Option func(*Renderer)

// WithPointerSource supplies the pointer events used in pointer mode.
func WithPointerSource(ps graphics.PointerSource) Option {
	return func(r *Renderer) { r.pointer = ps }
}

// WithFragmentSource replaces the liquid metal fragment program.
func WithFragmentSource(src string) Option {
	return func(r *Renderer) { r.fragment = src }
}

// WithVertexSource replaces the full-surface quad vertex program.
func WithVertexSource(src string) Option {
	return func(r *Renderer) { r.vertex = src }
}

// WithLogger overrides the package logger for this session.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New builds a session on dev and brings it to Ready. It never fails loudly:
// a nil device, a shader that does not compile or link, or a mask that cannot
// be rasterized or uploaded leaves the session Idle with Err set, and it then
// draws nothing.
func New(dev graphics.Device, sched Scheduler, cfg options.RenderConfig, opts ...Option) *Renderer {
	r := &Renderer{
		dev:      dev,
		sched:    sched,
		fragment: shader.GetFragmentShader(),
		log:      Logger(),
		target:   newPointerTarget(),
	}
	if g, ok := dev.(interface{ IsGLES() bool }); ok {
		r.vertex = shader.GenerateVertexShader(g.IsGLES())
	} else {
		r.vertex = shader.GenerateVertexShader(false)
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, fix := range cfg.Validate() {
		r.log.Warn("config adjusted", "change", fix)
	}
	r.cfg = cfg
	r.clock = newClock(cfg.Speed, cfg.MouseAnimation)

	if dev == nil || sched == nil {
		r.fail(ErrCapabilityUnavailable)
		return r
	}
	if ls, ok := dev.(loggerSetter); ok {
		ls.SetLogger(r.log)
	}

	if err := r.init(); err != nil {
		r.fail(err)
		return r
	}
	r.state = Ready
	r.log.Info("session ready", "text", cfg.Text)
	return r
}

func (r *Renderer) init() error {
	program, err := r.dev.CompileProgram(r.vertex, r.fragment)
	if err != nil {
		return err
	}

	locs := make(map[string]int32, len(shader.UniformNames))
	for _, name := range shader.UniformNames {
		loc, ok := r.dev.UniformLocation(program, name)
		if !ok {
			r.dev.DeleteProgram(program)
			return &ShaderError{Stage: graphics.StageLink, Log: fmt.Sprintf("uniform %s has no location", name)}
		}
		locs[name] = loc
	}
	r.program = program
	r.locs = locs

	mask, err := text.Rasterize(r.cfg.TextConfig)
	if err != nil {
		r.releaseGPU()
		return fmt.Errorf("%w: %v", ErrRasterization, err)
	}
	if err := r.swapMask(mask); err != nil {
		r.releaseGPU()
		return err
	}

	r.pushStyle(options.Full(r.cfg.Style))
	r.set(shader.UniformTime, float32(r.clock.Time))
	return nil
}

func (r *Renderer) fail(err error) {
	r.err = err
	r.state = Idle
	var se *ShaderError
	if errors.As(err, &se) {
		r.log.Warn("shader program unavailable, rendering nothing", "stage", se.Stage, "log", se.Log)
		return
	}
	r.log.Warn("renderer unavailable, rendering nothing", "error", err)
}

// State returns the lifecycle state.
func (r *Renderer) State() State { return r.state }

// Err returns the contained failure that kept the session from running, if any.
func (r *Renderer) Err() error { return r.err }

// Stats returns the resource and frame counters.
func (r *Renderer) Stats() Stats {
	s := r.stats
	if r.mask != nil {
		s.Width, s.Height = r.mask.Size()
	}
	return s
}

// Config returns the configuration currently applied.
func (r *Renderer) Config() options.RenderConfig { return r.cfg }

// Time returns the animation clock.
func (r *Renderer) Time() float64 { return r.clock.Time }

// Start moves a Ready session to Running and schedules the frame callback.
func (r *Renderer) Start() error {
	switch r.state {
	case Running:
		return nil
	case Disposed:
		return ErrDisposed
	case Ready:
	default:
		if r.err != nil {
			return fmt.Errorf("%w: %w", ErrNotReady, r.err)
		}
		return ErrNotReady
	}

	r.last = r.sched.Now()
	if r.cfg.MouseAnimation {
		r.attachPointer()
	}
	r.state = Running
	r.sched.Start(r.frame)
	r.log.Info("session running")
	return nil
}

func (r *Renderer) frame(now time.Duration) {
	if r.state != Running {
		return
	}
	delta := now - r.last
	if delta < 0 {
		delta = 0
	}
	r.last = now

	t := r.clock.Step(delta, r.target.Load())
	r.set(shader.UniformTime, float32(t))
	r.dev.Draw(r.program, r.texture, r.locs[shader.UniformTexture])
	r.stats.Frames++
}

// SetText regenerates the mask from tc, releasing the previous texture and
// uploading exactly one new one. Uniforms other than the aspect ratio and
// resolution are untouched. If rasterization fails the old mask stays bound.
func (r *Renderer) SetText(tc options.TextConfig) error {
	if err := r.mutable(); err != nil {
		return err
	}
	if tc == r.cfg.TextConfig {
		return nil
	}

	mask, err := text.Rasterize(tc)
	if err != nil {
		r.log.Warn("keeping previous mask", "error", err)
		return fmt.Errorf("%w: %v", ErrRasterization, err)
	}
	if err := r.swapMask(mask); err != nil {
		r.stop()
		r.fail(err)
		return err
	}
	r.cfg.TextConfig = tc
	return nil
}

// SetStyle latches the fields set in p. It never regenerates the mask or
// recompiles the program. Unparsable colors are ignored.
func (r *Renderer) SetStyle(p options.StylePatch) error {
	if err := r.mutable(); err != nil {
		return err
	}
	r.checkColors(&p)
	next := p.Apply(r.cfg.Style)
	diff := options.Diff(r.cfg.Style, next)
	if diff.Empty() {
		return nil
	}
	r.pushStyle(diff)
	r.cfg.Style = next
	return nil
}

// SetMouseMode selects the pointer-driven clock (true) or the autonomous one.
// The pointer listener is attached only while pointer mode is on and the
// session is running.
func (r *Renderer) SetMouseMode(on bool) error {
	if err := r.mutable(); err != nil {
		return err
	}
	if on == r.cfg.MouseAnimation {
		return nil
	}
	r.cfg.MouseAnimation = on
	r.clock.Pointer = on
	if on {
		if r.state == Running {
			r.attachPointer()
		}
	} else {
		r.detachPointer()
	}
	return nil
}

// SetConfig applies a whole configuration, calling SetText, SetStyle and
// SetMouseMode only for the parts that changed.
func (r *Renderer) SetConfig(cfg options.RenderConfig) error {
	if err := r.mutable(); err != nil {
		return err
	}
	for _, fix := range cfg.Validate() {
		r.log.Warn("config adjusted", "change", fix)
	}
	var errs []error
	if cfg.TextConfig != r.cfg.TextConfig {
		errs = append(errs, r.SetText(cfg.TextConfig))
	}
	if p := options.Diff(r.cfg.Style, cfg.Style); !p.Empty() {
		errs = append(errs, r.SetStyle(p))
	}
	if cfg.MouseAnimation != r.cfg.MouseAnimation {
		errs = append(errs, r.SetMouseMode(cfg.MouseAnimation))
	}
	return errors.Join(errs...)
}

// Dispose cancels the frame schedule, detaches the pointer listener and
// releases the program, texture and device buffers. Safe to call more than once.
func (r *Renderer) Dispose() {
	if r.state == Disposed {
		return
	}
	r.stop()
	if r.dev != nil {
		r.releaseGPU()
		r.dev.Release()
	}
	r.state = Disposed
	r.log.Info("session disposed", "frames", r.stats.Frames)
}

func (r *Renderer) stop() {
	if r.state == Running {
		r.sched.Stop()
	}
	r.detachPointer()
}

func (r *Renderer) releaseGPU() {
	if r.hasTexture {
		r.dev.DeleteTexture(r.texture)
		r.hasTexture = false
		r.stats.Releases++
	}
	if r.locs != nil {
		r.dev.DeleteProgram(r.program)
		r.locs = nil
	}
}

func (r *Renderer) mutable() error {
	switch {
	case r.state == Disposed:
		return ErrDisposed
	case r.err != nil:
		return r.err
	}
	return nil
}

func (r *Renderer) attachPointer() {
	if r.pointer == nil || r.removePointer != nil {
		return
	}
	r.removePointer = r.pointer.OnPointerMove(func(pos mgl32.Vec2) {
		r.target.Store(pos)
	})
}

func (r *Renderer) detachPointer() {
	if r.removePointer != nil {
		r.removePointer()
		r.removePointer = nil
	}
}

// set latches a uniform by name. Names come from shader.UniformNames, all of
// which resolved during init.
func (r *Renderer) set(name string, v any) {
	r.dev.SetUniform(r.program, r.locs[name], v)
}
