package vec

import "math"

// Vec2 представляет целочисленные координаты тайла в сетке мира.
// Ось Y направлена вниз.
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key упаковывает координаты в один uint64 (старшие 32 бита: X, младшие: Y).
// Используется как ключ карты изменений вместо строк "x,y".
// Координаты усекаются до int32: ключ однозначен только в [-2^31, 2^31).
func (v Vec2) Key() uint64 {
	return uint64(uint32(int32(v.X)))<<32 | uint64(uint32(int32(v.Y)))
}

// FromKey восстанавливает координаты из ключа, созданного Key.
func FromKey(key uint64) Vec2 {
	return Vec2{X: int(int32(uint32(key >> 32))), Y: int(int32(uint32(key)))}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Up возвращает соседнюю клетку сверху
func (v Vec2) Up() Vec2 {
	return Vec2{X: v.X, Y: v.Y - 1}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
