package physics

import (
	"math"

	"github.com/annel0/alien-planet/internal/vec"
)

// Axis - ось, по которой разрешается коллизия
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// neighbourhood - радиус окрестности проверяемых тайлов (5x5 вокруг клетки тела)
const neighbourhood = 2

// BlockChecker сообщает, является ли клетка препятствием для движения
type BlockChecker func(cell vec.Vec2) bool

// Circle - круглое тело с позицией и скоростью в пикселях
type Circle struct {
	Pos        vec.Vec2Float
	Velocity   vec.Vec2Float
	Radius     float64
	IsGrounded bool
}

// ResolveCircle выталкивает круг из твёрдых тайлов окрестности вдоль одной оси.
// Расстояние считается до ближайшей точки AABB тайла. При разрешении по Y
// с падением и толчком вверх тело становится приземлённым; вертикальная скорость
// обнуляется при любом контакте по Y.
func ResolveCircle(body *Circle, axis Axis, tileSize float64, isSolid BlockChecker) {
	center := body.Pos.ToGrid(tileSize)

	for y := center.Y - neighbourhood; y <= center.Y+neighbourhood; y++ {
		for x := center.X - neighbourhood; x <= center.X+neighbourhood; x++ {
			if !isSolid(vec.Vec2{X: x, Y: y}) {
				continue
			}

			left, top := float64(x)*tileSize, float64(y)*tileSize
			closestX := math.Max(left, math.Min(body.Pos.X, left+tileSize))
			closestY := math.Max(top, math.Min(body.Pos.Y, top+tileSize))
			dx, dy := body.Pos.X-closestX, body.Pos.Y-closestY
			distSq := dx*dx + dy*dy

			if distSq >= body.Radius*body.Radius {
				continue
			}

			overlap := body.Radius - math.Sqrt(distSq)
			angle := math.Atan2(dy, dx)
			if axis == AxisX {
				body.Pos.X += overlap * math.Cos(angle)
				continue
			}

			push := math.Sin(angle)
			body.Pos.Y += overlap * push
			if body.Velocity.Y > 0 && push < 0 {
				body.IsGrounded = true
			}
			body.Velocity.Y = 0
		}
	}
}

// CirclesOverlap проверяет пересечение двух окружностей
func CirclesOverlap(a vec.Vec2Float, ra float64, b vec.Vec2Float, rb float64) bool {
	return a.DistanceTo(b) < ra+rb
}

// PointInCircle проверяет, лежит ли точка строго внутри окружности
func PointInCircle(p, center vec.Vec2Float, radius float64) bool {
	return p.DistanceSqTo(center) < radius*radius
}
