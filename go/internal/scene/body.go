package scene

import (
	"math"
	"time"
)

// Vec is a 2D vector in arena units
type Vec struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Bounds is the axis-aligned arena the body lives in, with its origin at 0,0
type Bounds struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Body is a round shape moving at constant speed that reflects elastically
// off the four arena walls
type Body struct {
	Pos    Vec     `json:"pos"`
	Vel    Vec     `json:"vel"`
	Radius float64 `json:"radius"`
}

// Step advances the body by dt. Large steps fold the path back into the
// arena so the body never escapes regardless of how long the frame was.
func (b *Body) Step(dt time.Duration, bounds Bounds) {
	secs := dt.Seconds()
	if secs <= 0 {
		return
	}
	b.Pos.X, b.Vel.X = fold(b.Pos.X+b.Vel.X*secs, b.Vel.X, b.Radius, bounds.Width-b.Radius)
	b.Pos.Y, b.Vel.Y = fold(b.Pos.Y+b.Vel.Y*secs, b.Vel.Y, b.Radius, bounds.Height-b.Radius)
}

// Freeze zeroes the velocity in place
func (b *Body) Freeze() {
	b.Vel = Vec{}
}

// Moving reports whether the body has any velocity
func (b *Body) Moving() bool {
	return b.Vel.X != 0 || b.Vel.Y != 0
}

// fold maps an unconstrained coordinate back into [lo, hi] by mirroring it
// off each wall it crossed. The velocity flips on odd segments.
func fold(p, v, lo, hi float64) (float64, float64) {
	span := hi - lo
	if span <= 0 {
		return lo, v
	}
	off := math.Mod(p-lo, 2*span)
	if off < 0 {
		off += 2 * span
	}
	if off <= span {
		return lo + off, v
	}
	return hi - (off - span), -v
}
