package physics

import (
	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world/material"
)

// Параметры выборки коллизий
const (
	collisionStride    = 2   // Шаг сетки точек выборки в тайлах
	collisionThreshold = 0.2 // Доля твёрдых точек для столкновения корпуса
	feetThreshold      = 0.3 // Доля твёрдых точек для контакта с землёй
)

// solidAt сообщает, является ли тайл твёрдым для коллизий.
// Твёрдое — всё, что не воздух и не вода: сквозь воду можно двигаться.
func (e *Engine) solidAt(pos vec.Vec2) bool {
	id := e.world.GetTile(pos)
	return id != material.Air && id != material.Water
}

// sampleBox обходит прямоугольник pos..pos+(w,h) сеткой с шагом
// collisionStride и возвращает число твёрдых и общих точек.
// Координаты точек округляются вниз, как и границы прямоугольника.
func (e *Engine) sampleBox(pos vec.Vec2Float, width, height int) (solid, total int) {
	topLeft := pos.ToVec2()
	bottomRight := pos.Add(vec.Vec2Float{X: float64(width), Y: float64(height)}).ToVec2()

	for px := topLeft.X; px < bottomRight.X; px += collisionStride {
		for py := topLeft.Y; py < bottomRight.Y; py += collisionStride {
			total++
			if e.solidAt(vec.Vec2{X: px, Y: py}) {
				solid++
			}
		}
	}
	return solid, total
}

// CheckCollision проверяет столкновение корпуса с ландшафтом.
// pos — левый верхний угол, width и height — размер в тайлах.
// Порог отсекает ложные столкновения с одиночными выступами рельефа.
func (e *Engine) CheckCollision(pos vec.Vec2Float, width, height int) bool {
	solid, total := e.sampleBox(pos, width, height)
	if total == 0 {
		return false
	}
	return float64(solid)/float64(total) >= collisionThreshold
}

// CheckFeetCollision проверяет опору под ногами: полоса шириной width
// в ряду сразу под уровнем y. Порог ниже корпусного, иначе сущности
// «плавали» бы над редким рельефом.
func (e *Engine) CheckFeetCollision(pos vec.Vec2Float, width int) bool {
	row := pos.ToVec2().Y + 1
	left := pos.ToVec2().X
	right := pos.Add(vec.Vec2Float{X: float64(width)}).ToVec2().X

	solid, total := 0, 0
	for px := left; px < right; px += collisionStride {
		total++
		if e.solidAt(vec.Vec2{X: px, Y: row}) {
			solid++
		}
	}
	if total == 0 {
		return false
	}
	return float64(solid)/float64(total) >= feetThreshold
}

// CollisionDensity возвращает долю твёрдых точек выборки в [0,1].
// Используется для решения о «застревании» (телепорт к безопасной
// позиции при превышении порога вызывающей стороной).
func (e *Engine) CollisionDensity(pos vec.Vec2Float, width, height int) float64 {
	solid, total := e.sampleBox(pos, width, height)
	if total == 0 {
		return 0.0
	}
	return float64(solid) / float64(total)
}

// IsInLiquid определяет погружение в жидкость: прямоугольник
// перечисляется целиком, без шага. Погружение — когда жидких клеток
// больше половины. Доминирующая жидкость определяется по числу клеток,
// при равенстве — вода.
func (e *Engine) IsInLiquid(pos vec.Vec2Float, width, height int) (bool, material.MaterialID) {
	topLeft := pos.ToVec2()
	bottomRight := pos.Add(vec.Vec2Float{X: float64(width), Y: float64(height)}).ToVec2()

	water, lava, total := 0, 0, 0
	for px := topLeft.X; px < bottomRight.X; px++ {
		for py := topLeft.Y; py < bottomRight.Y; py++ {
			total++
			switch e.world.GetTile(vec.Vec2{X: px, Y: py}) {
			case material.Water:
				water++
			case material.Lava:
				lava++
			}
		}
	}

	if total == 0 {
		return false, material.Water
	}

	dominant := material.Water
	if lava > water {
		dominant = material.Lava
	}
	return (water+lava)*2 > total, dominant
}

// Dig выкапывает круглую область радиуса radius вокруг center:
// каждая клетка с dx²+dy² ≤ r² очищается до воздуха. Воздух
// пропускается, защищённые материалы — только при destroyAll.
// Записи немедленные, вне отложенной фиксации шага: операция
// идемпотентна и безопасна вне цикла симуляции.
// Возвращает число удалённых клеток.
func (e *Engine) Dig(center vec.Vec2, radius int, destroyAll bool) int {
	removed := 0
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			// Срезаем углы квадрата до круга
			if dx*dx+dy*dy > radius*radius {
				continue
			}

			pos := vec.Vec2{X: center.X + dx, Y: center.Y + dy}
			id := e.world.GetTile(pos)
			if id == material.Air {
				continue
			}
			if !destroyAll && material.DigProtected(id) {
				continue
			}

			e.world.SetTile(pos, material.Air)
			removed++
		}
	}
	return removed
}
