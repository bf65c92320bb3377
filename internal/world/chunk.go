package world

import (
	"sync"

	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world/material"
)

// ChunkSize — сторона чанка в тайлах
const ChunkSize = 64

// Chunk представляет участок мира размером 64x64 тайла.
// Помимо материалов хранится параллельная сетка слоёв (передний план,
// фон, жидкость) для клиентов, отрисовывающих мир.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	cells [ChunkSize][ChunkSize]material.MaterialID
	kinds [ChunkSize][ChunkSize]material.BlockKind

	dirty  bool // Есть изменения после генерации
	active bool // Чанк входит в активный набор симуляции

	mu sync.RWMutex // Мьютекс для безопасного доступа
}

// NewChunk создаёт новый пустой чанк с указанными координатами.
// Все клетки — Air, то есть фоновый слой.
func NewChunk(coords vec.Vec2) *Chunk {
	c := &Chunk{Coords: coords}
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			c.kinds[x][y] = material.KindBackground
		}
	}
	return c
}

func inBounds(local vec.Vec2) bool {
	return local.X >= 0 && local.X < ChunkSize && local.Y >= 0 && local.Y < ChunkSize
}

// Get возвращает материал по локальным координатам.
// Для координат вне чанка возвращается Void, ошибок нет.
func (c *Chunk) Get(local vec.Vec2) material.MaterialID {
	if !inBounds(local) {
		return material.Void
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cells[local.X][local.Y]
}

// Set записывает материал по локальным координатам.
// Слой клетки выбирается по умолчанию для материала, чанк помечается
// изменённым. Для координат вне чанка ничего не происходит,
// возвращается false.
func (c *Chunk) Set(local vec.Vec2, id material.MaterialID) bool {
	return c.SetWithKind(local, id, material.Kind(id))
}

// SetWithKind записывает материал вместе с явным слоем клетки
func (c *Chunk) SetWithKind(local vec.Vec2, id material.MaterialID, kind material.BlockKind) bool {
	if !inBounds(local) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cells[local.X][local.Y] = id
	c.kinds[local.X][local.Y] = kind
	c.dirty = true
	return true
}

// Kind возвращает слой клетки. Вне чанка — передний план, как у Void.
func (c *Chunk) Kind(local vec.Vec2) material.BlockKind {
	if !inBounds(local) {
		return material.KindForeground
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kinds[local.X][local.Y]
}

// Fill заливает весь чанк одним материалом
func (c *Chunk) Fill(id material.MaterialID) {
	kind := material.Kind(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			c.cells[x][y] = id
			c.kinds[x][y] = kind
		}
	}
	c.dirty = true
}

// IsEmpty возвращает true, если все клетки чанка — Air.
// Диагностический метод, в горячем пути не используется.
func (c *Chunk) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			if c.cells[x][y] != material.Air {
				return false
			}
		}
	}
	return true
}

// WorldPos возвращает глобальные координаты локальной клетки
func (c *Chunk) WorldPos(local vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: c.Coords.X*ChunkSize + local.X,
		Y: c.Coords.Y*ChunkSize + local.Y,
	}
}

// Dirty возвращает true, если чанк менялся после генерации
func (c *Chunk) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// ClearDirty сбрасывает флаг изменений
func (c *Chunk) ClearDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
}

// IsActive возвращает признак активности чанка
func (c *Chunk) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// setActive выставляет признак активности. Управляет им только World.
func (c *Chunk) setActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
}

// EncodeCells сериализует материалы чанка в ChunkSize*ChunkSize байт
// построчно (строки по Y, внутри строки по X). Используется отладочным
// API для выгрузки чанков.
func (c *Chunk) EncodeCells() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buf := make([]byte, 0, ChunkSize*ChunkSize)
	for y := 0; y < ChunkSize; y++ {
		for x := 0; x < ChunkSize; x++ {
			buf = append(buf, byte(c.cells[x][y]))
		}
	}
	return buf
}
