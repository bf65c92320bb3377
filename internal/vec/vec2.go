package vec

import "math"

// Vec2 представляет 2D координаты тайла
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// ToChunkCoords преобразует глобальные координаты в координаты чанка.
// Арифметический сдвиг даёт деление с округлением вниз и для
// отрицательных координат: тайл (-1,-1) лежит в чанке (-1,-1).
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> 6, Y: v.Y >> 6} // Деление на 64
}

// LocalInChunk возвращает локальные координаты внутри чанка
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: v.X & 0x3F, Y: v.Y & 0x3F} // Модуль 64
}

// DistanceTo вычисляет евклидово расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ChebyshevDistanceTo вычисляет расстояние Чебышёва (максимум по осям)
func (v Vec2) ChebyshevDistanceTo(other Vec2) int {
	dx := v.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := v.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
