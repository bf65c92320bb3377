package world

import (
	"sync"

	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world/material"
)

// World управляет чанками мира: ленивая генерация, тайловая адресация
// поверх границ чанков, активный набор для симуляции.
// Чанки принадлежат миру эксклюзивно и не вытесняются: память растёт
// с исследованной областью, это осознанное решение.
type World struct {
	chunks    map[vec.Vec2]*Chunk // Все загруженные чанки
	active    map[vec.Vec2]*Chunk // Активный набор вокруг точки фокуса
	gen       *Generator          // Генератор ландшафта
	generated uint64              // Всего сгенерировано чанков
	mu        sync.RWMutex        // Мьютекс для общего доступа
}

// Stats — срез счётчиков мира для метрик и статуса
type Stats struct {
	ResidentChunks int    // Чанков в памяти
	ActiveChunks   int    // Чанков в активном наборе
	GeneratedTotal uint64 // Всего сгенерировано за сессию
}

// NewWorld создаёт мир с указанным генератором
func NewWorld(gen *Generator) *World {
	return &World{
		chunks: make(map[vec.Vec2]*Chunk),
		active: make(map[vec.Vec2]*Chunk),
		gen:    gen,
	}
}

// GetChunk возвращает чанк по координатам, генерируя его при первом
// обращении. Генерация выполняется вне блокировки: при гонке двух
// горутин побеждает первая вставка, лишний результат отбрасывается.
func (w *World) GetChunk(coords vec.Vec2) *Chunk {
	w.mu.RLock()
	chunk, exists := w.chunks[coords]
	w.mu.RUnlock()

	if exists {
		return chunk
	}

	generated := w.gen.GenerateChunk(coords)

	w.mu.Lock()
	defer w.mu.Unlock()
	if chunk, exists = w.chunks[coords]; exists {
		return chunk
	}
	w.chunks[coords] = generated
	w.generated++
	return generated
}

// GetTile возвращает материал тайла по глобальным координатам.
// Отсутствующий чанк генерируется синхронно.
func (w *World) GetTile(pos vec.Vec2) material.MaterialID {
	return w.GetChunk(pos.ToChunkCoords()).Get(pos.LocalInChunk())
}

// SetTile записывает материал тайла по глобальным координатам.
// Слой клетки выбирается по умолчанию для материала.
func (w *World) SetTile(pos vec.Vec2, id material.MaterialID) bool {
	return w.GetChunk(pos.ToChunkCoords()).Set(pos.LocalInChunk(), id)
}

// SetTileKind записывает материал тайла с явным слоем клетки
func (w *World) SetTileKind(pos vec.Vec2, id material.MaterialID, kind material.BlockKind) bool {
	return w.GetChunk(pos.ToChunkCoords()).SetWithKind(pos.LocalInChunk(), id, kind)
}

// TileKind возвращает слой клетки по глобальным координатам
func (w *World) TileKind(pos vec.Vec2) material.BlockKind {
	return w.GetChunk(pos.ToChunkCoords()).Kind(pos.LocalInChunk())
}

// UpdateActiveChunks пересчитывает активный набор: все чанки в
// радиусе Чебышёва radius от чанка точки фокуса. Отсутствующие чанки
// генерируются, новые помечаются активными, покинувшие набор —
// неактивными. Хранимый набор замещается целиком.
func (w *World) UpdateActiveChunks(focus vec.Vec2, radius int) {
	center := focus.ToChunkCoords()

	next := make(map[vec.Vec2]*Chunk, (2*radius+1)*(2*radius+1))
	for cx := center.X - radius; cx <= center.X+radius; cx++ {
		for cy := center.Y - radius; cy <= center.Y+radius; cy++ {
			coords := vec.Vec2{X: cx, Y: cy}
			next[coords] = w.GetChunk(coords)
		}
	}

	w.mu.Lock()
	prev := w.active
	w.active = next
	w.mu.Unlock()

	for coords, chunk := range prev {
		if _, ok := next[coords]; !ok {
			chunk.setActive(false)
		}
	}
	for _, chunk := range next {
		chunk.setActive(true)
	}
}

// ActiveChunks возвращает снимок активного набора.
// Порядок не определён, потребители не должны на него полагаться.
func (w *World) ActiveChunks() []*Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]*Chunk, 0, len(w.active))
	for _, chunk := range w.active {
		result = append(result, chunk)
	}
	return result
}

// ChunksInRadius возвращает существующие чанки в радиусе Чебышёва от
// точки. Не генерирует отсутствующие чанки и не трогает активный
// набор: запрос для превью и отладки, не для симуляции.
func (w *World) ChunksInRadius(pos vec.Vec2, radius int) []*Chunk {
	center := pos.ToChunkCoords()

	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]*Chunk, 0, (2*radius+1)*(2*radius+1))
	for cx := center.X - radius; cx <= center.X+radius; cx++ {
		for cy := center.Y - radius; cy <= center.Y+radius; cy++ {
			if chunk, ok := w.chunks[vec.Vec2{X: cx, Y: cy}]; ok {
				result = append(result, chunk)
			}
		}
	}
	return result
}

// TerrainHeight возвращает высоту поверхности для мирового столбца x
func (w *World) TerrainHeight(x int) int {
	return w.gen.TerrainHeight(x)
}

// Seed возвращает сид мира
func (w *World) Seed() int64 {
	return w.gen.Seed()
}

// ChunkCount возвращает число чанков в памяти
func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// GetStats возвращает счётчики мира
func (w *World) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Stats{
		ResidentChunks: len(w.chunks),
		ActiveChunks:   len(w.active),
		GeneratedTotal: w.generated,
	}
}
