package util

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина. Подобраны так, чтобы рельеф был плавным.
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// NoiseSource - детерминированный когерентный 2D шум в диапазоне [-1, 1].
type NoiseSource interface {
	Noise2D(x, y float64) float64
}

// PerlinNoise реализует NoiseSource поверх go-perlin.
// Один экземпляр на игровую сессию: сид фиксируется при создании.
type PerlinNoise struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewPerlinNoise создаёт генератор шума Перлина с указанным сидом
func NewPerlinNoise(seed int64) *PerlinNoise {
	return &PerlinNoise{
		seed:   seed,
		perlin: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
	}
}

// Seed возвращает сид генератора
func (p *PerlinNoise) Seed() int64 {
	return p.seed
}

// Noise2D возвращает значение шума для указанных координат (от -1 до 1)
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	return math.Max(-1, math.Min(1, p.perlin.Noise2D(x, y)))
}

// Normalized переводит значение шума из [-1, 1] в [0, 1]
func Normalized(noise float64) float64 {
	return (noise + 1.0) / 2.0
}
