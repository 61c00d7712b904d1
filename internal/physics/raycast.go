package physics

import (
	"math"

	"github.com/annel0/alien-planet/internal/vec"
)

// Ray - луч с единичным шагом в пикселях
type Ray struct {
	Origin vec.Vec2Float
	Dir    vec.Vec2Float // единичный вектор
	Length float64
}

// NewRay строит луч из origin в сторону target
func NewRay(origin, target vec.Vec2Float, length float64) Ray {
	angle := math.Atan2(target.Y-origin.Y, target.X-origin.X)
	return Ray{
		Origin: origin,
		Dir:    vec.Vec2Float{X: math.Cos(angle), Y: math.Sin(angle)},
		Length: length,
	}
}

// At возвращает точку луча на шаге i
func (r Ray) At(i int) vec.Vec2Float {
	return vec.Vec2Float{X: r.Origin.X + r.Dir.X*float64(i), Y: r.Origin.Y + r.Dir.Y*float64(i)}
}

// Step вызывается на каждом шаге луча; true останавливает луч
type Step func(i int, p vec.Vec2Float) bool

// March проходит луч попиксельно начиная с шага 0 и возвращает
// точку остановки и признак того, что луч был остановлен.
func (r Ray) March(step Step) (vec.Vec2Float, bool) {
	end := r.Origin
	for i := 0; float64(i) < r.Length; i++ {
		end = r.At(i)
		if step(i, end) {
			return end, true
		}
	}
	return end, false
}
