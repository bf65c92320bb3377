package util

import (
	"github.com/aquilax/go-perlin"
)

// NoiseField — генератор шума Перлина с собственным сидом и масштабом.
// Каждый владелец создаёт свой экземпляр: глобального состояния нет,
// поэтому несколько миров (например, в тестах) не влияют друг на друга.
type NoiseField struct {
	noise *perlin.Perlin
	scale float64
}

// NewNoiseField создаёт поле шума с указанным сидом и масштабом
func NewNoiseField(seed int64, scale float64) *NoiseField {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &NoiseField{
		noise: perlin.NewPerlin(alpha, beta, n, seed),
		scale: scale,
	}
}

// Sample1D возвращает значение шума для координаты x (от 0 до 1)
func (f *NoiseField) Sample1D(x float64) float64 {
	// Получаем значение шума (от -1 до 1)
	noise := f.noise.Noise1D(x * f.scale)

	// Преобразуем в диапазон от 0 до 1
	v := (noise + 1.0) / 2.0
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Sample2D возвращает значение шума для координат x, y (от 0 до 1)
func (f *NoiseField) Sample2D(x, y float64) float64 {
	noise := f.noise.Noise2D(x*f.scale, y*f.scale)
	v := (noise + 1.0) / 2.0
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}
