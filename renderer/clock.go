package renderer

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// PointerDamping is the share of the remaining distance to the pointer
	// target the smoothed coordinate covers each frame.
	PointerDamping = 0.08

	// Pointer mode derives time from the smoothed coordinate; horizontal
	// movement sweeps the pattern faster than vertical.
	PointerWeightX = 1500
	PointerWeightY = 500
)

// Clock is the animation clock. Time is in milliseconds scaled by Speed.
type Clock struct {
	Time     float64
	Speed    float32
	Pointer  bool
	Smoothed mgl32.Vec2
}

func newClock(speed float32, pointer bool) Clock {
	return Clock{
		Speed:    speed,
		Pointer:  pointer,
		Smoothed: mgl32.Vec2{0.5, 0.5},
	}
}

// Step advances the clock by one frame and returns the new time.
func (c *Clock) Step(delta time.Duration, target mgl32.Vec2) float64 {
	if c.Pointer {
		c.Smoothed = c.Smoothed.Add(target.Sub(c.Smoothed).Mul(PointerDamping))
		c.Time = float64(c.Smoothed[0])*PointerWeightX + float64(c.Smoothed[1])*PointerWeightY
		return c.Time
	}
	if delta > 0 {
		c.Time += float64(delta) / float64(time.Millisecond) * float64(c.Speed)
	}
	return c.Time
}

// pointerTarget holds the last observed pointer position. The input callback
// is its only writer and the frame step its only reader.
type pointerTarget struct {
	bits atomic.Uint64
}

func newPointerTarget() *pointerTarget {
	p := &pointerTarget{}
	p.Store(mgl32.Vec2{0.5, 0.5})
	return p
}

func (p *pointerTarget) Store(v mgl32.Vec2) {
	x := math.Float32bits(mgl32.Clamp(v[0], 0, 1))
	y := math.Float32bits(mgl32.Clamp(v[1], 0, 1))
	p.bits.Store(uint64(x)<<32 | uint64(y))
}

func (p *pointerTarget) Load() mgl32.Vec2 {
	b := p.bits.Load()
	return mgl32.Vec2{math.Float32frombits(uint32(b >> 32)), math.Float32frombits(uint32(b))}
}
