package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVecBasics(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, 6, 8)

	assert.Equal(t, V(5, 8, 11), a.Add(b))
	assert.Equal(t, V(3, 4, 5), b.Sub(a))
	assert.Equal(t, V(2, 4, 6), a.Scale(2))
	assert.InDelta(t, 5.0, V(3, 4, 0).Length(), 1e-9)
	assert.InDelta(t, 5.0, Dist(V(1, 1, 0), V(4, 5, 0)), 1e-9)
}

func TestNormalized(t *testing.T) {
	n := V(0, 0, 10).Normalized()
	assert.InDelta(t, 1.0, n.Length(), 1e-9)
	assert.Equal(t, V(0, 0, 1), n)

	assert.True(t, Vec3{}.Normalized().IsZero(), "zero vector stays zero")
}

func TestAngleDeg(t *testing.T) {
	assert.InDelta(t, 90.0, AngleDeg(V(1, 0, 0), V(0, 1, 0)), 1e-9)
	assert.InDelta(t, 180.0, AngleDeg(V(1, 0, 0), V(-1, 0, 0)), 1e-9)
	assert.InDelta(t, 0.0, AngleDeg(V(2, 0, 0), V(5, 0, 0)), 1e-9)

	// Near-parallel vectors must not produce NaN from acos rounding.
	v := V(0.123, 4.567, -8.9)
	assert.False(t, math.IsNaN(AngleDeg(v, v.Scale(3))))
}
