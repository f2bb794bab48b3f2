// Package randwalk produces the jittered planar movement used by the simulators.
package randwalk

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Bounds is an inclusive [Min, Max] interval.
type Bounds struct {
	Min float64
	Max float64
}

// Clamp limits v to the interval.
func (b Bounds) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// Uniform draws a value uniformly from the interval.
func (b Bounds) Uniform(r *rand.Rand) float64 {
	return b.Min + r.Float64()*(b.Max-b.Min)
}

// Walker moves a point by up to Step on each axis per call to Next.
// When bounded, the position is clamped to XBounds and YBounds after every step.
type Walker struct {
	X, Y    float64
	Step    float64
	XBounds *Bounds
	YBounds *Bounds

	rng *rand.Rand
}

// NewWalker returns an unbounded walker starting at (x, y).
func NewWalker(x, y, step float64, rng *rand.Rand) *Walker {
	return &Walker{X: x, Y: y, Step: step, rng: rng}
}

// NewBoundedWalker returns a walker starting at a uniform position inside the bounds.
func NewBoundedWalker(xb, yb Bounds, step float64, rng *rand.Rand) *Walker {
	return &Walker{
		X:       xb.Uniform(rng),
		Y:       yb.Uniform(rng),
		Step:    step,
		XBounds: &xb,
		YBounds: &yb,
		rng:     rng,
	}
}

// Next applies one random step and returns the new position.
func (w *Walker) Next() (float64, float64) {
	w.X += w.jitter()
	w.Y += w.jitter()

	if w.XBounds != nil {
		w.X = w.XBounds.Clamp(w.X)
	}
	if w.YBounds != nil {
		w.Y = w.YBounds.Clamp(w.Y)
	}
	return w.X, w.Y
}

func (w *Walker) jitter() float64 {
	return -w.Step + w.rng.Float64()*2*w.Step
}

// IntBetween draws an integer uniformly from [lo, hi].
func IntBetween(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// RandomMAC returns six random bytes as twelve upper-case hex digits.
func RandomMAC(r *rand.Rand) string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&sb, "%02X", r.IntN(256))
	}
	return sb.String()
}

// NewRand returns a PCG-backed generator. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
