package world

import (
	"testing"

	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world/material"
)

func TestChunkCreateAndGet(t *testing.T) {
	coords := vec.Vec2{X: 5, Y: 10}
	chunk := NewChunk(coords)

	// Проверяем координаты
	if chunk.Coords.X != 5 || chunk.Coords.Y != 10 {
		t.Errorf("Ожидались координаты {5,10}, получено {%d,%d}", chunk.Coords.X, chunk.Coords.Y)
	}

	// Новый чанк заполнен воздухом
	pos := vec.Vec2{X: 3, Y: 4}
	if id := chunk.Get(pos); id != material.Air {
		t.Errorf("Ожидался Air, получен %s", id)
	}

	// Устанавливаем и проверяем материал
	if !chunk.Set(pos, material.Stone) {
		t.Error("Set внутри чанка должен возвращать true")
	}
	if id := chunk.Get(pos); id != material.Stone {
		t.Errorf("Ожидался Stone, получен %s", id)
	}
}

func TestChunkOutOfRange(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: 0, Y: 0})

	outside := []vec.Vec2{
		{X: -1, Y: 0},
		{X: 0, Y: -1},
		{X: ChunkSize, Y: 0},
		{X: 0, Y: ChunkSize},
		{X: 200, Y: 200},
	}

	for _, pos := range outside {
		// Чтение за границей — Void, без паники
		if id := chunk.Get(pos); id != material.Void {
			t.Errorf("Get(%v): ожидался Void, получен %s", pos, id)
		}
		// Запись за границей — отказ без мутации
		if chunk.Set(pos, material.Stone) {
			t.Errorf("Set(%v) вне чанка должен возвращать false", pos)
		}
	}

	if chunk.Dirty() {
		t.Error("Неудачные записи не должны помечать чанк изменённым")
	}
}

func TestChunkDirty(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: 3, Y: 4})

	// Изначально изменений нет
	if chunk.Dirty() {
		t.Error("Новый чанк не должен иметь изменений")
	}

	chunk.Set(vec.Vec2{X: 1, Y: 2}, material.Sand)
	if !chunk.Dirty() {
		t.Error("Чанк должен иметь изменения после Set")
	}

	chunk.ClearDirty()
	if chunk.Dirty() {
		t.Error("Чанк не должен иметь изменений после ClearDirty")
	}
}

func TestChunkKinds(t *testing.T) {
	chunk := NewChunk(vec.Vec2{})
	pos := vec.Vec2{X: 7, Y: 7}

	// Воздух — фоновый слой
	if kind := chunk.Kind(pos); kind != material.KindBackground {
		t.Errorf("Ожидался KindBackground, получен %d", kind)
	}

	// Слой следует за материалом
	chunk.Set(pos, material.Water)
	if kind := chunk.Kind(pos); kind != material.KindFluid {
		t.Errorf("Ожидался KindFluid, получен %d", kind)
	}

	chunk.Set(pos, material.Stone)
	if kind := chunk.Kind(pos); kind != material.KindForeground {
		t.Errorf("Ожидался KindForeground, получен %d", kind)
	}
}

func TestChunkFillAndEncode(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: -1, Y: -1})
	chunk.Fill(material.Dirt)

	if id := chunk.Get(vec.Vec2{X: 0, Y: 0}); id != material.Dirt {
		t.Errorf("После Fill ожидался Dirt, получен %s", id)
	}
	if id := chunk.Get(vec.Vec2{X: ChunkSize - 1, Y: ChunkSize - 1}); id != material.Dirt {
		t.Errorf("После Fill ожидался Dirt, получен %s", id)
	}

	chunk.Set(vec.Vec2{X: 2, Y: 1}, material.Water)

	buf := chunk.EncodeCells()
	if len(buf) != ChunkSize*ChunkSize {
		t.Fatalf("Ожидалось %d байт, получено %d", ChunkSize*ChunkSize, len(buf))
	}

	// Построчная раскладка: индекс = y*ChunkSize + x
	if got := material.MaterialID(buf[1*ChunkSize+2]); got != material.Water {
		t.Errorf("В дампе ожидалась Water, получен %s", got)
	}
	if got := material.MaterialID(buf[0]); got != material.Dirt {
		t.Errorf("В дампе ожидался Dirt, получен %s", got)
	}
}

func TestChunkWorldPos(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: -1, Y: 2})
	got := chunk.WorldPos(vec.Vec2{X: 63, Y: 0})
	want := vec.Vec2{X: -1, Y: 128}
	if got != want {
		t.Errorf("WorldPos: ожидалось %v, получено %v", want, got)
	}
}
