package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2KeyRoundTrip(t *testing.T) {
	cases := []Vec2{{0, 0}, {-1, -1}, {-75, 130}, {2147483647, -2147483648}, {12, -3}}
	for _, c := range cases {
		assert.Equal(t, c, FromKey(c.Key()), "координаты должны восстанавливаться из ключа")
	}
	assert.NotEqual(t, Vec2{X: 1, Y: 2}.Key(), Vec2{X: 2, Y: 1}.Key(), "ключи не должны совпадать при перестановке осей")
}

func TestVec2FloatToGridNegative(t *testing.T) {
	assert.Equal(t, Vec2{X: -1, Y: 0}, Vec2Float{X: -0.5, Y: 39.9}.ToGrid(40))
	assert.Equal(t, Vec2{X: 1, Y: -2}, Vec2Float{X: 40, Y: -41}.ToGrid(40))
}

func TestCellCenter(t *testing.T) {
	c := CellCenter(Vec2{X: 2, Y: -1}, 40)
	assert.Equal(t, 100.0, c.X)
	assert.Equal(t, -20.0, c.Y)
}
