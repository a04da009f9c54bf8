package renderer

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidmetal/graphics"
	"github.com/richinsley/goliquidmetal/options"
	"github.com/richinsley/goliquidmetal/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() options.RenderConfig {
	cfg := options.Default()
	cfg.FontSize = 24
	return cfg
}

func newRunning(t *testing.T, cfg options.RenderConfig, opts ...Option) (*Renderer, *fakeDevice, *ManualScheduler) {
	t.Helper()
	dev := newFakeDevice()
	sched := &ManualScheduler{}
	r := New(dev, sched, cfg, opts...)
	require.NoError(t, r.Err())
	require.Equal(t, Ready, r.State())
	require.NoError(t, r.Start())
	return r, dev, sched
}

func TestGalaxyAutonomousSecond(t *testing.T) {
	cfg := testConfig()
	cfg.Text = "GALAXY"
	cfg.Seed = 42
	cfg.Scale = 2
	cfg.MouseAnimation = false
	cfg.Speed = 0.2

	r, dev, sched := newRunning(t, cfg)
	for i := 0; i < 10; i++ {
		require.True(t, sched.Advance(100*time.Millisecond))
	}

	assert.InDelta(t, 200, r.Time(), 1e-3)
	assert.InDelta(t, 200, dev.float(shader.UniformTime), 1e-3)
	assert.Equal(t, 10, dev.draws)
	assert.Equal(t, 10, r.Stats().Frames)
	assert.Equal(t, float32(42), dev.float(shader.UniformSeed))
	assert.Equal(t, float32(2), dev.float(shader.UniformScale))
	assert.Equal(t, Running, r.State())
}

func TestDisposeBeforeFirstFrame(t *testing.T) {
	r, dev, sched := newRunning(t, testConfig())
	r.Dispose()

	assert.False(t, sched.Pending())
	assert.False(t, sched.Advance(16*time.Millisecond))
	assert.Equal(t, 0, dev.draws)
	assert.Equal(t, Disposed, r.State())
	assert.True(t, dev.released)
	assert.Empty(t, dev.textures)
	assert.Empty(t, dev.programs)
	assert.Zero(t, dev.doubleFree)

	r.Dispose()
	assert.Zero(t, dev.doubleFree)
}

func TestDisposeWithoutStart(t *testing.T) {
	dev := newFakeDevice()
	sched := &ManualScheduler{}
	r := New(dev, sched, testConfig())
	r.Dispose()

	assert.Equal(t, Disposed, r.State())
	assert.ErrorIs(t, r.Start(), ErrDisposed)
	assert.False(t, sched.Advance(time.Second))
	assert.Equal(t, 0, dev.draws)
}

func TestInvalidFragmentSource(t *testing.T) {
	dev := newFakeDevice()
	sched := &ManualScheduler{}
	r := New(dev, sched, testConfig(), WithFragmentSource("void main() { fragColor = vec4(1.0; }"))

	assert.Equal(t, Idle, r.State())
	var se *ShaderError
	require.ErrorAs(t, r.Err(), &se)
	assert.Equal(t, graphics.StageCompile, se.Stage)
	assert.NotEmpty(t, se.Log)

	assert.ErrorIs(t, r.Start(), ErrNotReady)
	assert.False(t, sched.Advance(time.Second))
	assert.Equal(t, 0, dev.draws)

	assert.Error(t, r.SetStyle(options.StylePatch{Brightness: options.Float(2)}))
	assert.Empty(t, dev.uniforms)
	assert.Zero(t, dev.uploads)
}

func TestMissingUniformIsLinkFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.missing[shader.UniformContour] = true
	r := New(dev, &ManualScheduler{}, testConfig())

	var se *ShaderError
	require.ErrorAs(t, r.Err(), &se)
	assert.Equal(t, graphics.StageLink, se.Stage)
	assert.Contains(t, se.Log, shader.UniformContour)
	assert.Empty(t, dev.programs)
	assert.Zero(t, dev.uploads)
}

func TestNilDeviceIsCapabilityUnavailable(t *testing.T) {
	r := New(nil, &ManualScheduler{}, testConfig())
	assert.ErrorIs(t, r.Err(), ErrCapabilityUnavailable)
	assert.Equal(t, Idle, r.State())
	assert.Error(t, r.Start())
	assert.NotPanics(t, r.Dispose)
}

func TestRasterizationFailureReleasesProgram(t *testing.T) {
	cfg := testConfig()
	cfg.FontFile = "testdata/does-not-exist.ttf"
	dev := newFakeDevice()
	r := New(dev, &ManualScheduler{}, cfg)

	assert.ErrorIs(t, r.Err(), ErrRasterization)
	assert.Equal(t, Idle, r.State())
	assert.Empty(t, dev.programs)
	assert.Zero(t, dev.uploads)
}

func TestNonFiniteSizesRepairedAtNew(t *testing.T) {
	cfg := testConfig()
	cfg.FontSize = math.NaN()
	cfg.PixelRatio = math.Inf(1)
	cfg.LetterSpacing = math.NaN()

	r, dev, _ := newRunning(t, cfg)
	assert.Equal(t, options.Default().FontSize, r.Config().FontSize)
	assert.Equal(t, 1.0, r.Config().PixelRatio)
	assert.Zero(t, r.Config().LetterSpacing)
	assert.Equal(t, 1, dev.uploads)
}

func TestOversizedMaskAtNew(t *testing.T) {
	cfg := testConfig()
	cfg.FontSize = 1e9
	dev := newFakeDevice()

	var r *Renderer
	require.NotPanics(t, func() { r = New(dev, &ManualScheduler{}, cfg) })
	assert.ErrorIs(t, r.Err(), ErrRasterization)
	assert.Equal(t, Idle, r.State())
	assert.Empty(t, dev.programs)
	assert.Zero(t, dev.uploads)
}

func TestOversizedTextChangeKeepsMask(t *testing.T) {
	r, dev, sched := newRunning(t, testConfig())
	before := r.Config().TextConfig

	for _, size := range []float64{1e9, math.NaN(), math.Inf(1), -1} {
		tc := before
		tc.FontSize = size
		var err error
		require.NotPanics(t, func() { err = r.SetText(tc) })
		assert.ErrorIs(t, err, ErrRasterization, "size %v", size)
	}
	tc := before
	tc.PixelRatio = math.NaN()
	assert.ErrorIs(t, r.SetText(tc), ErrRasterization)

	assert.Equal(t, before, r.Config().TextConfig)
	assert.Equal(t, 1, dev.uploads)
	assert.Len(t, dev.textures, 1)
	assert.Equal(t, Running, r.State())
	assert.True(t, sched.Advance(time.Millisecond))
}

func TestFontFallbackIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Font = "Nope Sans"

	r, _, _ := newRunning(t, cfg, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	assert.Contains(t, buf.String(), "font family unavailable")
	assert.Contains(t, buf.String(), "Nope Sans")

	buf.Reset()
	tc := r.Config().TextConfig
	tc.Font = "monospace"
	require.NoError(t, r.SetText(tc))
	assert.NotContains(t, buf.String(), "font family unavailable")
}

func TestStyleChangeKeepsTexture(t *testing.T) {
	r, dev, sched := newRunning(t, testConfig())
	uploads, deletes, draws := dev.uploads, dev.deletes, dev.draws

	require.NoError(t, r.SetStyle(options.StylePatch{Brightness: options.Float(1.7)}))

	assert.Equal(t, uploads, dev.uploads)
	assert.Equal(t, deletes, dev.deletes)
	assert.Equal(t, draws, dev.draws)
	assert.Equal(t, float32(1.7), dev.float(shader.UniformBrightness))

	sched.Advance(16 * time.Millisecond)
	assert.Equal(t, draws+1, dev.draws)
}

func TestStyleLatchesOnlyChangedFields(t *testing.T) {
	r, dev, _ := newRunning(t, testConfig())
	before := dev.latches[shader.UniformContrast]

	require.NoError(t, r.SetStyle(options.StylePatch{
		Contrast: options.Float(r.Config().Contrast),
		Angle:    options.Float(90),
	}))

	assert.Equal(t, before, dev.latches[shader.UniformContrast])
	assert.Equal(t, float32(90), dev.float(shader.UniformAngle))
}

func TestStyleColorsNormalized(t *testing.T) {
	r, dev, _ := newRunning(t, testConfig())
	require.NoError(t, r.SetStyle(options.StylePatch{TintColor: options.Color("#ff8000")}))

	tint := dev.vec3(shader.UniformTint)
	assert.InDelta(t, 1.0, tint[0], 1e-6)
	assert.InDelta(t, 128.0/255.0, tint[1], 1e-6)
	assert.InDelta(t, 0.0, tint[2], 1e-6)
}

func TestInvalidColorIgnored(t *testing.T) {
	r, dev, _ := newRunning(t, testConfig())
	light := dev.vec3(shader.UniformLight)
	latches := dev.latches[shader.UniformLight]

	require.NoError(t, r.SetStyle(options.StylePatch{LightColor: options.Color("not-a-color")}))

	assert.Equal(t, light, dev.vec3(shader.UniformLight))
	assert.Equal(t, latches, dev.latches[shader.UniformLight])
	assert.Equal(t, options.Default().LightColor, r.Config().LightColor)
}

func TestSpeedIsClockOnly(t *testing.T) {
	r, dev, sched := newRunning(t, testConfig())
	require.NoError(t, r.SetStyle(options.StylePatch{Speed: options.Float(2)}))
	sched.Advance(10 * time.Millisecond)
	assert.InDelta(t, 20, r.Time(), 1e-6)
	assert.Zero(t, dev.uploads-1)
}

func TestTextChangeSwapsTextureOnce(t *testing.T) {
	r, dev, _ := newRunning(t, testConfig())
	require.Equal(t, 1, dev.uploads)
	w0, h0 := dev.width, dev.height

	tc := r.Config().TextConfig
	tc.Text = "A MUCH LONGER HEADLINE"
	require.NoError(t, r.SetText(tc))

	assert.Equal(t, 2, dev.uploads)
	assert.Equal(t, 1, dev.deletes)
	assert.Len(t, dev.textures, 1)
	assert.Zero(t, dev.doubleFree)

	st := r.Stats()
	assert.Equal(t, st.Width, dev.width)
	assert.Equal(t, st.Height, dev.height)
	assert.Greater(t, dev.width, w0)
	assert.Equal(t, h0, dev.height)
	assert.InDelta(t, float32(dev.width)/float32(dev.height), dev.float(shader.UniformRatio), 1e-6)
	res, _ := dev.uniforms[shader.UniformResolution].(mgl32.Vec2)
	assert.Equal(t, mgl32.Vec2{float32(dev.width), float32(dev.height)}, res)
}

func TestSameTextIsNoop(t *testing.T) {
	r, dev, _ := newRunning(t, testConfig())
	require.NoError(t, r.SetText(r.Config().TextConfig))
	assert.Equal(t, 1, dev.uploads)
	assert.Zero(t, dev.deletes)
}

func TestFailedTextChangeKeepsMask(t *testing.T) {
	r, dev, sched := newRunning(t, testConfig())
	tc := r.Config().TextConfig
	tc.FontFile = "testdata/missing.otf"

	assert.ErrorIs(t, r.SetText(tc), ErrRasterization)
	assert.Equal(t, 1, dev.uploads)
	assert.Len(t, dev.textures, 1)
	assert.Equal(t, Running, r.State())
	assert.True(t, sched.Advance(time.Millisecond))
}

func TestAutonomousAccumulation(t *testing.T) {
	tests := []struct {
		name   string
		speed  float32
		deltas []time.Duration
	}{
		{"steady 60Hz", 1, []time.Duration{16 * time.Millisecond, 16 * time.Millisecond, 16 * time.Millisecond}},
		{"jittery", 0.5, []time.Duration{8 * time.Millisecond, 33 * time.Millisecond, 1 * time.Millisecond, 100 * time.Millisecond}},
		{"stopped", 0, []time.Duration{time.Second, time.Second}},
		{"fast", 3, []time.Duration{5 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Speed = tt.speed
			r, _, sched := newRunning(t, cfg)

			var sum time.Duration
			prev := r.Time()
			for _, d := range tt.deltas {
				sched.Advance(d)
				sum += d
				assert.GreaterOrEqual(t, r.Time(), prev)
				prev = r.Time()
			}
			want := float64(tt.speed) * float64(sum) / float64(time.Millisecond)
			assert.InDelta(t, want, r.Time(), 1e-6*math.Max(1, want))
		})
	}
}

func TestPointerConvergence(t *testing.T) {
	cfg := testConfig()
	cfg.MouseAnimation = true
	ptr := &fakePointer{}
	r, dev, sched := newRunning(t, cfg, WithPointerSource(ptr))
	require.Equal(t, 1, ptr.attaches)

	ptr.Move(1, 0)
	assert.Equal(t, 0, dev.draws)

	start := r.clock.Smoothed
	target := mgl32.Vec2{1, 0}
	initial := target.Sub(start).Len()

	for k := 1; k <= 40; k++ {
		sched.Advance(16 * time.Millisecond)
		got := target.Sub(r.clock.Smoothed).Len()
		want := initial * float32(math.Pow(1-PointerDamping, float64(k)))
		assert.InDelta(t, want, got, 1e-4, "frame %d", k)
	}

	s := r.clock.Smoothed
	assert.InDelta(t, float64(s[0])*PointerWeightX+float64(s[1])*PointerWeightY, r.Time(), 1e-3)
	assert.Equal(t, 40, dev.draws)
}

func TestPointerTargetClamped(t *testing.T) {
	cfg := testConfig()
	cfg.MouseAnimation = true
	ptr := &fakePointer{}
	r, _, _ := newRunning(t, cfg, WithPointerSource(ptr))

	ptr.Move(-3, 7)
	assert.Equal(t, mgl32.Vec2{0, 1}, r.target.Load())
}

func TestMouseModeAttachesAndDetaches(t *testing.T) {
	ptr := &fakePointer{}
	r, _, sched := newRunning(t, testConfig(), WithPointerSource(ptr))
	assert.Zero(t, ptr.attaches)

	require.NoError(t, r.SetMouseMode(true))
	assert.Equal(t, 1, ptr.attaches)
	ptr.Move(1, 1)
	sched.Advance(time.Millisecond)
	assert.Greater(t, r.clock.Smoothed[0], float32(0.5))

	require.NoError(t, r.SetMouseMode(false))
	assert.Equal(t, 1, ptr.removes)
	assert.Nil(t, ptr.fn)

	before := r.Time()
	sched.Advance(50 * time.Millisecond)
	assert.Greater(t, r.Time(), before)
}

func TestDisposeDetachesPointer(t *testing.T) {
	cfg := testConfig()
	cfg.MouseAnimation = true
	ptr := &fakePointer{}
	r, _, sched := newRunning(t, cfg, WithPointerSource(ptr))

	r.Dispose()
	assert.Equal(t, 1, ptr.removes)
	assert.Nil(t, ptr.fn)
	assert.False(t, sched.Pending())
}

func TestMutatorsAfterDispose(t *testing.T) {
	r, _, _ := newRunning(t, testConfig())
	r.Dispose()

	assert.ErrorIs(t, r.SetText(options.TextConfig{Text: "x", FontSize: 10}), ErrDisposed)
	assert.ErrorIs(t, r.SetStyle(options.StylePatch{Blur: options.Float(1)}), ErrDisposed)
	assert.ErrorIs(t, r.SetMouseMode(true), ErrDisposed)
	assert.ErrorIs(t, r.SetConfig(options.Default()), ErrDisposed)
}

func TestSetConfigDispatchesChanges(t *testing.T) {
	r, dev, _ := newRunning(t, testConfig())

	cfg := r.Config()
	cfg.Brightness = 0.5
	require.NoError(t, r.SetConfig(cfg))
	assert.Equal(t, 1, dev.uploads)
	assert.Equal(t, float32(0.5), dev.float(shader.UniformBrightness))

	cfg.Text = "CHANGED"
	require.NoError(t, r.SetConfig(cfg))
	assert.Equal(t, 2, dev.uploads)
	assert.Equal(t, "CHANGED", r.Config().Text)
}

func TestErrorIsContained(t *testing.T) {
	dev := newFakeDevice()
	r := New(dev, &ManualScheduler{}, testConfig(), WithVertexSource("void main() {"))
	assert.False(t, errors.Is(r.Err(), ErrCapabilityUnavailable))
	var se *ShaderError
	require.ErrorAs(t, r.Err(), &se)
	assert.Equal(t, "vertex", se.Shader)
}
