package shader

import "github.com/go-gl/mathgl/mgl32"

// Uniform names declared by the fragment program.
const (
	UniformTexture    = "u_tex"
	UniformResolution = "u_resolution"
	UniformRatio      = "u_ratio"
	UniformTime       = "u_time"
	UniformSeed       = "u_seed"
	UniformScale      = "u_scale"
	UniformRefraction = "u_refraction"
	UniformBlur       = "u_blur"
	UniformLiquid     = "u_liquid"
	UniformBrightness = "u_brightness"
	UniformContrast   = "u_contrast"
	UniformAngle      = "u_angle"
	UniformFresnel    = "u_fresnel"
	UniformSharpness  = "u_sharpness"
	UniformWave       = "u_wave"
	UniformNoiseScale = "u_noiseScale"
	UniformChroma     = "u_chroma"
	UniformDistortion = "u_distortion"
	UniformContour    = "u_contour"
	UniformLight      = "u_light"
	UniformDark       = "u_dark"
	UniformTint       = "u_tint"
)

// UniformNames lists every uniform the program declares, in a stable order.
var UniformNames = []string{
	UniformTexture,
	UniformResolution,
	UniformRatio,
	UniformTime,
	UniformSeed,
	UniformScale,
	UniformRefraction,
	UniformBlur,
	UniformLiquid,
	UniformBrightness,
	UniformContrast,
	UniformAngle,
	UniformFresnel,
	UniformSharpness,
	UniformWave,
	UniformNoiseScale,
	UniformChroma,
	UniformDistortion,
	UniformContour,
	UniformLight,
	UniformDark,
	UniformTint,
}

// Uniforms is the Go-side value of every uniform except the sampler.
type Uniforms struct {
	Resolution mgl32.Vec2
	Ratio      float32
	Time       float32
	Seed       float32
	Scale      float32
	Refraction float32
	Blur       float32
	Liquid     float32
	Brightness float32
	Contrast   float32
	Angle      float32
	Fresnel    float32
	Sharpness  float32
	Wave       float32
	NoiseScale float32
	Chroma     float32
	Distortion float32
	Contour    float32
	Light      mgl32.Vec3
	Dark       mgl32.Vec3
	Tint       mgl32.Vec3
}

// Set stores a scalar or vector value by uniform name. Unknown names and
// mismatched value types are ignored and reported as false.
func (u *Uniforms) Set(name string, v any) bool {
	switch val := v.(type) {
	case float32:
		f := u.float(name)
		if f == nil {
			return false
		}
		*f = val
	case mgl32.Vec2:
		if name != UniformResolution {
			return false
		}
		u.Resolution = val
	case mgl32.Vec3:
		switch name {
		case UniformLight:
			u.Light = val
		case UniformDark:
			u.Dark = val
		case UniformTint:
			u.Tint = val
		default:
			return false
		}
	default:
		return false
	}
	return true
}

func (u *Uniforms) float(name string) *float32 {
	switch name {
	case UniformRatio:
		return &u.Ratio
	case UniformTime:
		return &u.Time
	case UniformSeed:
		return &u.Seed
	case UniformScale:
		return &u.Scale
	case UniformRefraction:
		return &u.Refraction
	case UniformBlur:
		return &u.Blur
	case UniformLiquid:
		return &u.Liquid
	case UniformBrightness:
		return &u.Brightness
	case UniformContrast:
		return &u.Contrast
	case UniformAngle:
		return &u.Angle
	case UniformFresnel:
		return &u.Fresnel
	case UniformSharpness:
		return &u.Sharpness
	case UniformWave:
		return &u.Wave
	case UniformNoiseScale:
		return &u.NoiseScale
	case UniformChroma:
		return &u.Chroma
	case UniformDistortion:
		return &u.Distortion
	case UniformContour:
		return &u.Contour
	}
	return nil
}
