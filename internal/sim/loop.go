package sim

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/sand-game/internal/logging"
	"github.com/annel0/sand-game/internal/physics"
	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world"
)

// Loop управляет фиксированным циклом шагов симуляции.
// Каждый тик активирует чанки вокруг точки фокуса и выполняет один
// шаг движка. Точку фокуса можно перемещать во время работы.
type Loop struct {
	world  *world.World
	engine *physics.Engine

	tps              int // Целевая частота шагов в секунду
	activationRadius int // Радиус активации чанков вокруг фокуса

	focusMu sync.RWMutex
	focus   vec.Vec2

	shutdownChan chan struct{}
	wg           sync.WaitGroup

	stats LoopStats
}

// LoopStats содержит статистику цикла симуляции
type LoopStats struct {
	stepsThisSecond atomic.Int64
	durationNs      atomic.Int64
	lastSPS         atomic.Int64 // Шагов за последнюю полную секунду
	lastAvgNs       atomic.Int64 // Средняя длительность шага за неё
}

// Snapshot мгновенное состояние цикла для API и метрик
type Snapshot struct {
	TPS              int      `json:"tps"`
	StepsPerSecond   int64    `json:"steps_per_second"`
	AvgStepMs        float64  `json:"avg_step_ms"`
	Focus            vec.Vec2 `json:"focus"`
	ActivationRadius int      `json:"activation_radius"`
}

// NewLoop создаёт цикл симуляции с заданной частотой шагов
func NewLoop(w *world.World, e *physics.Engine, tps, activationRadius int, focus vec.Vec2) *Loop {
	if tps <= 0 {
		tps = 60
	}
	if activationRadius <= 0 {
		activationRadius = 2
	}

	return &Loop{
		world:            w,
		engine:           e,
		tps:              tps,
		activationRadius: activationRadius,
		focus:            focus,
		shutdownChan:     make(chan struct{}),
	}
}

// Start запускает цикл симуляции
func (l *Loop) Start() {
	l.wg.Add(1)
	go l.runLoop()
	go l.statsCollector()
}

// Stop останавливает цикл симуляции
func (l *Loop) Stop() {
	close(l.shutdownChan)
	l.wg.Wait()
}

// SetFocus перемещает точку фокуса симуляции
func (l *Loop) SetFocus(focus vec.Vec2) {
	l.focusMu.Lock()
	l.focus = focus
	l.focusMu.Unlock()
	logging.Debug("Фокус симуляции перемещён в (%d,%d)", focus.X, focus.Y)
}

// Focus возвращает текущую точку фокуса
func (l *Loop) Focus() vec.Vec2 {
	l.focusMu.RLock()
	defer l.focusMu.RUnlock()
	return l.focus
}

// Tick выполняет один тик симуляции: активация чанков и шаг движка
func (l *Loop) Tick() {
	start := time.Now()

	focus := l.Focus()
	l.world.UpdateActiveChunks(focus, l.activationRadius)
	l.engine.Step(focus)

	l.stats.durationNs.Add(time.Since(start).Nanoseconds())
	l.stats.stepsThisSecond.Add(1)
}

// GetSnapshot возвращает мгновенное состояние цикла
func (l *Loop) GetSnapshot() Snapshot {
	return Snapshot{
		TPS:              l.tps,
		StepsPerSecond:   l.stats.lastSPS.Load(),
		AvgStepMs:        float64(l.stats.lastAvgNs.Load()) / 1e6,
		Focus:            l.Focus(),
		ActivationRadius: l.activationRadius,
	}
}

// GetStats возвращает статистику цикла одной строкой
func (l *Loop) GetStats() string {
	snap := l.GetSnapshot()
	es := l.engine.GetStats()
	ws := l.world.GetStats()
	return fmt.Sprintf("Sim: %d steps/s, %.2fms avg step, %d active chunks, %d moves total",
		snap.StepsPerSecond, snap.AvgStepMs, ws.ActiveChunks, es.MovedCells)
}

// runLoop основной цикл симуляции
func (l *Loop) runLoop() {
	defer l.wg.Done()

	interval := time.Second / time.Duration(l.tps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.shutdownChan:
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// statsCollector собирает статистику
func (l *Loop) statsCollector() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-l.shutdownChan:
			return
		case <-ticker.C:
			// Фиксируем прошедшую секунду и сбрасываем счётчики
			steps := l.stats.stepsThisSecond.Swap(0)
			duration := l.stats.durationNs.Swap(0)

			l.stats.lastSPS.Store(steps)
			if steps > 0 {
				l.stats.lastAvgNs.Store(duration / steps)
			} else {
				l.stats.lastAvgNs.Store(0)
			}

			// Логируем статистику
			if steps > 0 {
				logging.Debug("📊 %s", l.GetStats())
			}
		}
	}
}
