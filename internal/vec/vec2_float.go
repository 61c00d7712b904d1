package vec

import "math"

// Vec2Float представляет мировые координаты в пикселях
type Vec2Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToGrid преобразует мировые координаты в координаты тайла.
// Деление с округлением вниз, чтобы отрицательные координаты попадали в правильную клетку.
func (v Vec2Float) ToGrid(tileSize float64) Vec2 {
	return Vec2{X: int(math.Floor(v.X / tileSize)), Y: int(math.Floor(v.Y / tileSize))}
}

// CellCenter возвращает центр клетки в мировых координатах
func CellCenter(cell Vec2, tileSize float64) Vec2Float {
	return Vec2Float{
		X: float64(cell.X)*tileSize + tileSize/2,
		Y: float64(cell.Y)*tileSize + tileSize/2,
	}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSqTo возвращает квадрат расстояния (без sqrt для горячих циклов)
func (v Vec2Float) DistanceSqTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return dx*dx + dy*dy
}
