package physics

import (
	"testing"

	"github.com/annel0/alien-planet/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestRayMarchStopsAtFirstHit(t *testing.T) {
	ray := NewRay(vec.Vec2Float{X: 0, Y: 0}, vec.Vec2Float{X: 100, Y: 0}, 300)

	var steps []int
	end, hit := ray.March(func(i int, p vec.Vec2Float) bool {
		steps = append(steps, i)
		return p.X >= 50
	})

	assert.True(t, hit)
	assert.InDelta(t, 50, end.X, 1e-9)
	assert.Equal(t, 0, steps[0], "луч начинается с шага 0")
	assert.Len(t, steps, 51)
}

func TestRayMarchFullLength(t *testing.T) {
	ray := NewRay(vec.Vec2Float{}, vec.Vec2Float{X: 0, Y: 10}, 300)

	count := 0
	end, hit := ray.March(func(int, vec.Vec2Float) bool {
		count++
		return false
	})

	assert.False(t, hit)
	assert.Equal(t, 300, count)
	assert.InDelta(t, 299, end.Y, 1e-9)
}
