package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerlinNoiseDeterministic(t *testing.T) {
	a := NewPerlinNoise(42)
	b := NewPerlinNoise(42)

	for i := 0; i < 50; i++ {
		x := float64(i)*0.37 - 5
		y := float64(i) * 0.11
		va := a.Noise2D(x, y)
		assert.Equal(t, va, b.Noise2D(x, y), "одинаковый сид должен давать одинаковый шум")
		assert.Equal(t, va, a.Noise2D(x, y), "повторный вызов должен давать то же значение")
		assert.GreaterOrEqual(t, va, -1.0)
		assert.LessOrEqual(t, va, 1.0)
	}
	assert.Equal(t, int64(42), a.Seed())
}

func TestNormalized(t *testing.T) {
	assert.Equal(t, 0.0, Normalized(-1))
	assert.Equal(t, 0.5, Normalized(0))
	assert.Equal(t, 1.0, Normalized(1))
}
