package options

import (
	"fmt"
	"math"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// TextConfig holds the fields that drive rasterization of the glyph mask.
// Changing any of them regenerates the mask and re-uploads the texture.
type TextConfig struct {
	Text          string  `toml:"text"`
	Font          string  `toml:"font"`
	FontFile      string  `toml:"font_file"` // optional TTF/OTF path; overrides Font when set
	FontSize      float64 `toml:"font_size"` // CSS pixels
	FontWeight    int     `toml:"font_weight"`
	LetterSpacing float64 `toml:"letter_spacing"` // CSS pixels added after every glyph but the last
	PixelRatio    float64 `toml:"pixel_ratio"`    // device pixels per CSS pixel
}

// Style holds the uniform-only fields. Changing them never touches the mask.
type Style struct {
	Seed             float32 `toml:"seed"`
	Scale            float32 `toml:"scale"`
	Refraction       float32 `toml:"refraction"`
	Blur             float32 `toml:"blur"`
	Liquid           float32 `toml:"liquid"`
	Speed            float32 `toml:"speed"`
	Brightness       float32 `toml:"brightness"`
	Contrast         float32 `toml:"contrast"`
	Angle            float32 `toml:"angle"` // degrees
	Fresnel          float32 `toml:"fresnel"`
	PatternSharpness float32 `toml:"pattern_sharpness"`
	WaveAmplitude    float32 `toml:"wave_amplitude"`
	NoiseScale       float32 `toml:"noise_scale"`
	ChromaticSpread  float32 `toml:"chromatic_spread"`
	Distortion       float32 `toml:"distortion"`
	Contour          float32 `toml:"contour"`
	LightColor       string  `toml:"light_color"`
	DarkColor        string  `toml:"dark_color"`
	TintColor        string  `toml:"tint_color"`
}

// RenderConfig is the full caller-supplied configuration of a renderer.
type RenderConfig struct {
	TextConfig
	Style
	MouseAnimation bool `toml:"mouse_animation"`
}

// Default returns a configuration that renders a readable, slowly moving surface.
func Default() RenderConfig {
	return RenderConfig{
		TextConfig: TextConfig{
			Text:       "LIQUID",
			Font:       DefaultFont,
			FontSize:   120,
			FontWeight: 700,
			PixelRatio: 1,
		},
		Style: Style{
			Seed:             0,
			Scale:            1,
			Refraction:       0.5,
			Blur:             0.1,
			Liquid:           0.6,
			Speed:            0.2,
			Brightness:       1,
			Contrast:         1,
			Angle:            30,
			Fresnel:          1,
			PatternSharpness: 1,
			WaveAmplitude:    0.1,
			NoiseScale:       1,
			ChromaticSpread:  1,
			Distortion:       0.1,
			Contour:          0.3,
			LightColor:       "#ffffff",
			DarkColor:        "#202020",
			TintColor:        "#ffffff",
		},
	}
}

// DefaultFont is the family used when none is configured.
const DefaultFont = "sans-serif"

// Load reads a TOML file on top of Default. Fields absent from the file keep their defaults.
func Load(path string) (RenderConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate repairs values that cannot be rendered and reports what it changed.
// An unparsable color is replaced by the default for that slot.
func (c *RenderConfig) Validate() []string {
	var fixed []string
	def := Default()

	if !finite(c.FontSize) || c.FontSize <= 0 {
		fixed = append(fixed, fmt.Sprintf("font_size %v replaced by %v", c.FontSize, def.FontSize))
		c.FontSize = def.FontSize
	}
	if !finite(c.PixelRatio) || c.PixelRatio <= 0 {
		fixed = append(fixed, fmt.Sprintf("pixel_ratio %v replaced by 1", c.PixelRatio))
		c.PixelRatio = 1
	}
	if !finite(c.LetterSpacing) {
		fixed = append(fixed, fmt.Sprintf("letter_spacing %v replaced by 0", c.LetterSpacing))
		c.LetterSpacing = 0
	}
	if c.Font == "" {
		c.Font = DefaultFont
	}
	if !finite(float64(c.Speed)) || c.Speed < 0 {
		fixed = append(fixed, fmt.Sprintf("speed %v replaced by 0", c.Speed))
		c.Speed = 0
	}

	colors := []struct {
		name     string
		val      *string
		fallback string
	}{
		{"light_color", &c.LightColor, def.LightColor},
		{"dark_color", &c.DarkColor, def.DarkColor},
		{"tint_color", &c.TintColor, def.TintColor},
	}
	for _, col := range colors {
		if _, err := ParseColor(*col.val); err != nil {
			fixed = append(fixed, fmt.Sprintf("%s %q replaced by %s", col.name, *col.val, col.fallback))
			*col.val = col.fallback
		}
	}
	return fixed
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
