package options

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want mgl32.Vec3
	}{
		{"#ffffff", mgl32.Vec3{1, 1, 1}},
		{"000000", mgl32.Vec3{0, 0, 0}},
		{"#FF0000", mgl32.Vec3{1, 0, 0}},
		{"#0f0", mgl32.Vec3{0, 1, 0}},
		{"#0000ff80", mgl32.Vec3{0, 0, 1}},
		{"#f00c", mgl32.Vec3{1, 0, 0}},
		{" #202020 ", mgl32.Vec3{32.0 / 255, 32.0 / 255, 32.0 / 255}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.True(t, got.ApproxEqualThreshold(tt.want, 1e-6), "got %v", got)
		})
	}

	for _, bad := range []string{"", "#12", "#gggggg", "red", "#1234567"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateRepairs(t *testing.T) {
	cfg := Default()
	cfg.FontSize = 0
	cfg.PixelRatio = -2
	cfg.Font = ""
	cfg.Speed = -1
	cfg.DarkColor = "nope"

	fixed := cfg.Validate()
	assert.Len(t, fixed, 4)
	assert.Equal(t, Default().FontSize, cfg.FontSize)
	assert.Equal(t, 1.0, cfg.PixelRatio)
	assert.Equal(t, DefaultFont, cfg.Font)
	assert.Zero(t, cfg.Speed)
	assert.Equal(t, Default().DarkColor, cfg.DarkColor)

	def := Default()
	assert.Empty(t, def.Validate())
}

func TestValidateRepairsNonFinite(t *testing.T) {
	cfg := Default()
	cfg.FontSize = math.NaN()
	cfg.PixelRatio = math.Inf(1)
	cfg.LetterSpacing = math.Inf(-1)
	cfg.Speed = float32(math.NaN())

	fixed := cfg.Validate()
	assert.Len(t, fixed, 4)
	assert.Equal(t, Default().FontSize, cfg.FontSize)
	assert.Equal(t, 1.0, cfg.PixelRatio)
	assert.Zero(t, cfg.LetterSpacing)
	assert.Zero(t, cfg.Speed)

	cfg.FontSize = math.Inf(1)
	cfg.PixelRatio = math.NaN()
	assert.Len(t, cfg.Validate(), 2)
	assert.Equal(t, Default().FontSize, cfg.FontSize)
	assert.Equal(t, 1.0, cfg.PixelRatio)
}

func TestPatchApplyOnlySetFields(t *testing.T) {
	s := Default().Style
	p := StylePatch{Brightness: Float(2), TintColor: Color("#ff0000")}

	got := p.Apply(s)
	want := s
	want.Brightness = 2
	want.TintColor = "#ff0000"
	assert.Equal(t, want, got)
}

func TestDiff(t *testing.T) {
	a := Default().Style
	b := a
	assert.True(t, Diff(a, b).Empty())

	b.Angle = 90
	b.LightColor = "#eeeeee"
	d := Diff(a, b)
	require.NotNil(t, d.Angle)
	require.NotNil(t, d.LightColor)
	assert.Equal(t, float32(90), *d.Angle)
	assert.Equal(t, "#eeeeee", *d.LightColor)
	assert.Nil(t, d.Blur)
	assert.Nil(t, d.DarkColor)
	assert.Equal(t, b, d.Apply(a))
}

func TestFullSetsEverything(t *testing.T) {
	s := Default().Style
	p := Full(s)
	assert.Equal(t, s, p.Apply(Style{}))
	assert.False(t, p.Empty())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metal.toml")
	data := `
text = "GALAXY"
font_size = 64.0
mouse_animation = true
seed = 42.0
scale = 2.0
tint_color = "#ff8800"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "GALAXY", cfg.Text)
	assert.Equal(t, 64.0, cfg.FontSize)
	assert.True(t, cfg.MouseAnimation)
	assert.Equal(t, float32(42), cfg.Seed)
	assert.Equal(t, float32(2), cfg.Scale)
	assert.Equal(t, "#ff8800", cfg.TintColor)
	// untouched fields keep defaults
	assert.Equal(t, Default().Refraction, cfg.Refraction)
	assert.Equal(t, DefaultFont, cfg.Font)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("text = ["), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
