package physics

import (
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/annel0/sand-game/internal/logging"
	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world"
	"github.com/annel0/sand-game/internal/world/material"
)

// Материалы с текучестью не ниже этого порога умеют подниматься вверх
const climbLiquidity = 0.7

// Config задаёт параметры движка
type Config struct {
	StaggerFactor int     // Делитель страггеринга: за кадр обрабатывается ~1/N клеток
	UpdateRadius  float64 // Евклидов радиус обновления в тайлах от точки фокуса
	Seed          int64   // Сид собственного генератора случайности движка
	Validate      bool    // Отладочная проверка инвариантов фиксации
}

// DefaultConfig возвращает параметры движка по умолчанию
func DefaultConfig() Config {
	return Config{
		StaggerFactor: 4,
		UpdateRadius:  80,
		Seed:          1,
	}
}

// tileWrite — отложенная запись тайла
type tileWrite struct {
	pos vec.Vec2
	id  material.MaterialID
}

// Stats — счётчики движка для метрик и статуса
type Stats struct {
	Steps        uint64        // Выполнено шагов
	MovedCells   uint64        // Всего перемещений клеток
	Candidates   uint64        // Всего рассмотрено кандидатов
	LastStepTime time.Duration // Длительность последнего шага
}

// Engine — клеточный автомат поверх мира: падение, растекание,
// скольжение по диагонали. Движок владеет своим генератором
// случайности и переиспользует буферы шага между кадрами.
//
// Step не предназначен для конкурентного вызова: один шаг за кадр из
// одной горутины. Запросы (CheckCollision и другие) только читают мир
// и безопасны в любой момент.
type Engine struct {
	world *world.World
	cfg   Config
	rng   *rand.Rand

	frame uint64 // Счётчик кадров для страггеринга

	// Буферы шага: очищаются, но не переаллоцируются
	pending    []tileWrite
	processed  map[vec.Vec2]struct{}
	candidates []vec.Vec2

	steps      atomic.Uint64
	moved      atomic.Uint64
	candTotal  atomic.Uint64
	lastStepNs atomic.Int64
}

// NewEngine создаёт движок над миром. Нулевые значения конфигурации
// заменяются значениями по умолчанию.
func NewEngine(w *world.World, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.StaggerFactor < 1 {
		cfg.StaggerFactor = def.StaggerFactor
	}
	if cfg.UpdateRadius <= 0 {
		cfg.UpdateRadius = def.UpdateRadius
	}

	return &Engine{
		world:     w,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		processed: make(map[vec.Vec2]struct{}, 1024),
	}
}

// World возвращает мир, которым управляет движок
func (e *Engine) World() *world.World {
	return e.world
}

// Step выполняет один шаг симуляции вокруг точки фокуса: отбор
// кандидатов со страггерингом, правила движения в порядке приоритета,
// отложенная фиксация. Шаг всегда выполняется до конца.
func (e *Engine) Step(focus vec.Vec2) {
	start := time.Now()
	e.frame++

	e.pending = e.pending[:0]
	e.candidates = e.candidates[:0]
	clear(e.processed)

	e.collectCandidates(focus)
	e.evaluate()
	e.commit()

	e.steps.Add(1)
	e.candTotal.Add(uint64(len(e.candidates)))
	e.lastStepNs.Store(time.Since(start).Nanoseconds())
}

// collectCandidates отбирает клетки активных чанков, допущенные
// страггерингом и радиусом обновления
func (e *Engine) collectCandidates(focus vec.Vec2) {
	chunks := e.world.ActiveChunks()

	// Обход карты в Go не упорядочен, а результат шага должен быть
	// детерминированным при одном сиде: чанки сортируются по координатам
	sort.Slice(chunks, func(i, j int) bool {
		a, b := chunks[i].Coords, chunks[j].Coords
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	stagger := e.cfg.StaggerFactor
	frame := int(e.frame % uint64(stagger))

	for _, chunk := range chunks {
		if !e.chunkInRadius(chunk, focus) {
			continue
		}

		base := len(e.candidates)
		for lx := 0; lx < world.ChunkSize; lx++ {
			for ly := 0; ly < world.ChunkSize; ly++ {
				if (lx+ly+frame)%stagger != 0 {
					continue
				}
				pos := chunk.WorldPos(vec.Vec2{X: lx, Y: ly})
				if pos.DistanceTo(focus) > e.cfg.UpdateRadius {
					continue
				}
				e.candidates = append(e.candidates, pos)
			}
		}

		// Перемешивание кандидатов внутри чанка устраняет направленное
		// смещение (песок всегда предпочитал бы левую диагональ)
		chunkCands := e.candidates[base:]
		e.rng.Shuffle(len(chunkCands), func(i, j int) {
			chunkCands[i], chunkCands[j] = chunkCands[j], chunkCands[i]
		})
	}
}

// chunkInRadius грубо отсекает чанки, целиком лежащие вне радиуса
// обновления. Точная фильтрация по клеткам происходит при отборе.
func (e *Engine) chunkInRadius(chunk *world.Chunk, focus vec.Vec2) bool {
	minX := chunk.Coords.X * world.ChunkSize
	minY := chunk.Coords.Y * world.ChunkSize
	nearest := vec.Vec2{
		X: clamp(focus.X, minX, minX+world.ChunkSize-1),
		Y: clamp(focus.Y, minY, minY+world.ChunkSize-1),
	}
	return nearest.DistanceTo(focus) <= e.cfg.UpdateRadius
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// evaluate применяет правила движения к кандидатам
func (e *Engine) evaluate() {
	for _, pos := range e.candidates {
		if _, done := e.processed[pos]; done {
			continue
		}

		id := e.world.GetTile(pos)
		props := material.Props(id)
		if !props.Falls {
			continue
		}

		// Источник помечается обработанным независимо от того,
		// найдётся ли ход: повторная оценка в этом шаге исключена
		e.processed[pos] = struct{}{}

		if e.tryFall(pos, id) {
			continue
		}
		if props.Liquidity > 0 && e.tryFlow(pos, id, props.Liquidity) {
			continue
		}
		e.trySlide(pos, id)
	}
}

// tryFall — правило падения: клетка ниже пуста, либо лава над водой
func (e *Engine) tryFall(pos vec.Vec2, id material.MaterialID) bool {
	below := vec.Vec2{X: pos.X, Y: pos.Y + 1}
	if _, claimed := e.processed[below]; claimed {
		return false
	}

	switch e.world.GetTile(below) {
	case material.Air:
		e.queueMove(pos, below, id, material.Air)
		return true
	case material.Water:
		// Лава тонет в воде: плотная жидкость меняется местами с лёгкой
		if id == material.Lava {
			e.queueMove(pos, below, id, material.Water)
			return true
		}
	}
	return false
}

// Направления растекания: вверх, вправо, влево
var flowDirs = [3]vec.Vec2{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}

// tryFlow — правило растекания жидкостей
func (e *Engine) tryFlow(pos vec.Vec2, id material.MaterialID, liquidity float64) bool {
	// Антикластеризация: если оба горизонтальных соседа уже вода,
	// растекание подавляется целиком, иначе вода стелется без предела
	if id == material.Water {
		left := e.world.GetTile(vec.Vec2{X: pos.X - 1, Y: pos.Y})
		right := e.world.GetTile(vec.Vec2{X: pos.X + 1, Y: pos.Y})
		if left == material.Water && right == material.Water {
			return false
		}
	}

	dirs := flowDirs
	e.rng.Shuffle(len(dirs), func(i, j int) {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	})

	for _, d := range dirs {
		// Вверх поднимаются только сильно текучие материалы
		if d.Y < 0 && liquidity < climbLiquidity {
			continue
		}

		dst := pos.Add(d)
		// Отрицательные координаты назначения не рассматриваются
		if dst.X < 0 || dst.Y < 0 {
			continue
		}
		if _, claimed := e.processed[dst]; claimed {
			continue
		}

		if e.world.GetTile(dst) != material.Air {
			continue
		}

		e.queueMove(pos, dst, id, material.Air)
		return true
	}
	return false
}

// trySlide — правило скольжения по диагонали вниз
func (e *Engine) trySlide(pos vec.Vec2, id material.MaterialID) bool {
	sides := [2]int{-1, 1}
	if e.rng.Intn(2) == 0 {
		sides[0], sides[1] = sides[1], sides[0]
	}

	for _, dx := range sides {
		diag := vec.Vec2{X: pos.X + dx, Y: pos.Y + 1}
		side := vec.Vec2{X: pos.X + dx, Y: pos.Y}

		if _, claimed := e.processed[diag]; claimed {
			continue
		}
		// Нужны свободная диагональ и свободная боковая клетка,
		// иначе материал просачивался бы сквозь сомкнутый угол
		if e.world.GetTile(diag) != material.Air || e.world.GetTile(side) != material.Air {
			continue
		}

		e.queueMove(pos, diag, id, material.Air)
		return true
	}
	return false
}

// queueMove ставит в очередь перемещение: источник получает leave,
// назначение — движущийся материал. Назначение помечается обработанным.
func (e *Engine) queueMove(src, dst vec.Vec2, id, leave material.MaterialID) {
	e.pending = append(e.pending,
		tileWrite{pos: src, id: leave},
		tileWrite{pos: dst, id: id},
	)
	e.processed[dst] = struct{}{}
	e.moved.Add(1)
}

// commit применяет отложенные записи. Благодаря множеству processed
// каждая координата является целью не более одной записи, порядок
// применения не важен.
func (e *Engine) commit() {
	if e.cfg.Validate {
		e.validatePending()
	}
	for _, w := range e.pending {
		e.world.SetTile(w.pos, w.id)
	}
}

// validatePending — отладочная проверка инварианта фиксации
func (e *Engine) validatePending() {
	seen := make(map[vec.Vec2]material.MaterialID, len(e.pending))
	for _, w := range e.pending {
		if prev, dup := seen[w.pos]; dup {
			logging.Error("Нарушение инварианта шага: координата %v записана дважды (%s, затем %s), кадр %d",
				w.pos, prev, w.id, e.frame)
		}
		seen[w.pos] = w.id
	}
}

// GetStats возвращает счётчики движка
func (e *Engine) GetStats() Stats {
	return Stats{
		Steps:        e.steps.Load(),
		MovedCells:   e.moved.Load(),
		Candidates:   e.candTotal.Load(),
		LastStepTime: time.Duration(e.lastStepNs.Load()),
	}
}
