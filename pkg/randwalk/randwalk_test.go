package randwalk

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedWalkerStaysInBounds(t *testing.T) {
	rng := NewRand(42)
	xb, yb := Bounds{Min: -0.5, Max: 0.5}, Bounds{Min: 1, Max: 1.2}
	w := NewBoundedWalker(xb, yb, 0.3, rng)

	for i := 0; i < 1000; i++ {
		x, y := w.Next()
		assert.GreaterOrEqual(t, x, xb.Min)
		assert.LessOrEqual(t, x, xb.Max)
		assert.GreaterOrEqual(t, y, yb.Min)
		assert.LessOrEqual(t, y, yb.Max)
	}
}

func TestWalkerStepSize(t *testing.T) {
	w := NewWalker(0, 0, 0.1, NewRand(7))

	for i := 0; i < 500; i++ {
		px, py := w.X, w.Y
		x, y := w.Next()
		assert.InDelta(t, px, x, 0.1)
		assert.InDelta(t, py, y, 0.1)
	}
}

func TestIntBetweenInclusive(t *testing.T) {
	rng := NewRand(1)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := IntBetween(rng, -3, 3)
		assert.GreaterOrEqual(t, v, -3)
		assert.LessOrEqual(t, v, 3)
		seen[v] = true
	}
	assert.Len(t, seen, 7)
	assert.Equal(t, 5, IntBetween(rng, 5, 5))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.234568, Round(1.2345678, 6))
	assert.Equal(t, -0.1, Round(-0.1000000000000004, 15))
	assert.Equal(t, 2.5, Round(2.5, -1))
}

func TestRandomMAC(t *testing.T) {
	mac := RandomMAC(NewRand(3))
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{12}$`), mac)
	assert.Equal(t, mac, RandomMAC(NewRand(3)))
}
