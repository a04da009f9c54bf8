package options

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseColor converts a hex-like color ("#rgb", "rrggbb", "#rrggbbaa", ...) into a
// normalized RGB triple. An alpha component is accepted and ignored.
func ParseColor(hex string) (mgl32.Vec3, error) {
	h := strings.TrimSpace(hex)
	h = strings.TrimPrefix(h, "#")
	if len(h) == 8 {
		h = h[:6]
	} else if len(h) == 4 {
		h = h[:3]
	}
	c, err := colorful.Hex("#" + strings.ToLower(h))
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// MustParseColor is ParseColor for compile-time constants.
func MustParseColor(hex string) mgl32.Vec3 {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}
