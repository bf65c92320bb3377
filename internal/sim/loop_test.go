package sim

import (
	"testing"
	"time"

	"github.com/annel0/sand-game/internal/physics"
	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world"
	"github.com/annel0/sand-game/internal/world/material"
	"github.com/stretchr/testify/assert"
)

func newLoopWorld() (*world.World, *physics.Engine) {
	w := world.NewWorld(world.NewGenerator(1, world.DefaultGeneratorConfig()))
	e := physics.NewEngine(w, physics.Config{StaggerFactor: 1, UpdateRadius: 200, Seed: 3})
	return w, e
}

func TestLoop_TickAdvancesSimulation(t *testing.T) {
	w, e := newLoopWorld()
	loop := NewLoop(w, e, 60, 1, vec.Vec2{X: 10, Y: 10})

	// Песчинка высоко над поверхностью, под ней воздух
	w.SetTile(vec.Vec2{X: 10, Y: 0}, material.Sand)

	for i := 0; i < 3; i++ {
		loop.Tick()
	}

	assert.Equal(t, material.Sand, w.GetTile(vec.Vec2{X: 10, Y: 3}),
		"Каждый тик должен выполнять один шаг физики")
	assert.Equal(t, uint64(3), e.GetStats().Steps)
	assert.Greater(t, w.GetStats().ActiveChunks, 0,
		"Тик должен активировать чанки вокруг фокуса")
}

func TestLoop_SetFocus(t *testing.T) {
	w, e := newLoopWorld()
	loop := NewLoop(w, e, 60, 1, vec.Vec2{})

	loop.SetFocus(vec.Vec2{X: 640, Y: 64})
	assert.Equal(t, vec.Vec2{X: 640, Y: 64}, loop.Focus())

	// Следующий тик активирует чанки вокруг новой точки
	loop.Tick()
	chunks := w.ChunksInRadius(vec.Vec2{X: 640, Y: 64}, 1)
	assert.NotEmpty(t, chunks, "Чанки вокруг нового фокуса должны быть активированы")
}

func TestLoop_Defaults(t *testing.T) {
	w, e := newLoopWorld()
	loop := NewLoop(w, e, 0, 0, vec.Vec2{})

	snap := loop.GetSnapshot()
	assert.Equal(t, 60, snap.TPS, "Нулевая частота заменяется значением по умолчанию")
	assert.Equal(t, 2, snap.ActivationRadius)
}

func TestLoop_StartStop(t *testing.T) {
	w, e := newLoopWorld()
	loop := NewLoop(w, e, 120, 1, vec.Vec2{X: 10, Y: 10})

	loop.Start()
	time.Sleep(60 * time.Millisecond)
	loop.Stop()

	assert.Greater(t, e.GetStats().Steps, uint64(0),
		"Запущенный цикл должен выполнять шаги")
}

func TestLoop_GetStats(t *testing.T) {
	w, e := newLoopWorld()
	loop := NewLoop(w, e, 60, 1, vec.Vec2{X: 10, Y: 10})

	loop.Tick()
	assert.Contains(t, loop.GetStats(), "Sim:")
}
