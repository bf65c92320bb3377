package world

import (
	"math"
	"math/rand"
	"sync"

	"github.com/annel0/sand-game/internal/util"
	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world/material"
)

// Пороги рудного шума
const (
	oreThreshold     = 0.80 // Выше - карман медной/железной руды
	deepOreThreshold = 0.85 // Выше - карман золотой руды в глубинном камне
)

// GeneratorConfig задаёт параметры рельефа и толщину слоёв породы.
// Толщины слоёв настраиваются, чтобы пресеты генерации могли менять
// пропорции без правки кода.
type GeneratorConfig struct {
	BaseHeight   int     // Минимальная мировая Y поверхности (Y растёт вниз)
	Amplitude    int     // Размах высот рельефа
	TopSoilDepth int     // Толщина лёгкого грунта под поверхностью
	DirtDepth    int     // Толщина слоя земли
	StoneDepth   int     // Толщина каменного слоя до глубинного камня
	SurfaceScale float64 // Масштаб крупного шума рельефа
	DetailScale  float64 // Масштаб детального шума
	OreScale     float64 // Масштаб рудного шума
}

// DefaultGeneratorConfig возвращает параметры генерации по умолчанию
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		BaseHeight:   20,
		Amplitude:    40,
		TopSoilDepth: 3,
		DirtDepth:    12,
		StoneDepth:   40,
		SurfaceScale: 0.008, // Настройка сглаженности ландшафта
		DetailScale:  0.05,  // Настройка мелких неровностей
		OreScale:     0.09,  // Настройка размера рудных карманов
	}
}

// Generator генерирует ландшафт мира. Все источники случайности
// принадлежат генератору: несколько миров не влияют друг на друга.
type Generator struct {
	seed int64
	cfg  GeneratorConfig

	surface *util.NoiseField // Крупный рельеф
	detail  *util.NoiseField // Мелкие неровности, вес 20%
	ore     *util.NoiseField // Рудные карманы

	heightMu sync.Mutex
	heights  map[int]int // Мемоизация высоты по мировому X
}

// NewGenerator создаёт генератор мира с указанным сидом
func NewGenerator(seed int64, cfg GeneratorConfig) *Generator {
	return &Generator{
		seed:    seed,
		cfg:     cfg,
		surface: util.NewNoiseField(seed, cfg.SurfaceScale),
		detail:  util.NewNoiseField(seed+42, cfg.DetailScale),
		ore:     util.NewNoiseField(seed+77, cfg.OreScale),
		heights: make(map[int]int),
	}
}

// Seed возвращает сид мира
func (g *Generator) Seed() int64 {
	return g.seed
}

// TerrainHeight возвращает мировую Y поверхности для столбца x.
// Результат мемоизируется: высота — чистая функция сида, кэш
// безопасен на всё время жизни генератора.
func (g *Generator) TerrainHeight(x int) int {
	g.heightMu.Lock()
	defer g.heightMu.Unlock()

	if h, ok := g.heights[x]; ok {
		return h
	}

	// Крупный рельеф плюс детальный шум с весом 20%,
	// сумма нормализуется обратно в [0,1]
	combined := (g.surface.Sample1D(float64(x)) + 0.2*g.detail.Sample1D(float64(x))) / 1.2
	h := g.cfg.BaseHeight + int(math.Round(combined*float64(g.cfg.Amplitude)))

	g.heights[x] = h
	return h
}

// GenerateChunk генерирует чанк по его координатам
func (g *Generator) GenerateChunk(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)

	// Создаем локальный генератор случайных чисел для детерминированности.
	// Для каждого чанка создаем уникальный сид на основе глобального сида
	// и координат: косметика чанка воспроизводима изолированно.
	chunkSeed := g.seed + int64(coords.X*31) + int64(coords.Y*17)
	rng := rand.New(rand.NewSource(chunkSeed))

	globalStartX := coords.X * ChunkSize
	globalStartY := coords.Y * ChunkSize

	// Чанк ещё не опубликован, пишем в клетки напрямую
	for x := 0; x < ChunkSize; x++ {
		globalX := globalStartX + x
		h := g.TerrainHeight(globalX)

		for y := 0; y < ChunkSize; y++ {
			globalY := globalStartY + y
			id := g.materialAt(globalX, globalY, h, rng)
			chunk.cells[x][y] = id
			chunk.kinds[x][y] = material.Kind(id)
		}
	}

	return chunk
}

// materialAt выбирает материал клетки по глубине относительно
// поверхности. Структура слоёв полностью детерминирована высотой,
// случайность только косметическая (выбор варианта).
func (g *Generator) materialAt(wx, wy, h int, rng *rand.Rand) material.MaterialID {
	depth := wy - h
	switch {
	case depth < 0:
		return material.Air

	case depth == 0:
		return pickVariant(rng, surfaceVariants)

	case depth <= g.cfg.TopSoilDepth:
		return material.TopSoil

	case depth <= g.cfg.TopSoilDepth+g.cfg.DirtDepth:
		return pickVariant(rng, dirtVariants)

	case depth <= g.cfg.TopSoilDepth+g.cfg.DirtDepth+g.cfg.StoneDepth:
		// Рудные карманы поверх обычного камня
		if g.ore.Sample2D(float64(wx), float64(wy)) > oreThreshold {
			if rng.Float64() < 0.5 {
				return material.CopperOre
			}
			return material.IronOre
		}
		return pickVariant(rng, stoneVariants)

	default:
		if g.ore.Sample2D(float64(wx), float64(wy)) > deepOreThreshold {
			return material.GoldOre
		}
		return pickVariant(rng, deepVariants)
	}
}

// weightedVariant — материал с весом для косметического выбора
type weightedVariant struct {
	id     material.MaterialID
	weight float64
}

var (
	surfaceVariants = []weightedVariant{
		{material.Grass, 0.70},
		{material.GrassDark, 0.20},
		{material.GrassDry, 0.10},
	}
	dirtVariants = []weightedVariant{
		{material.Dirt, 0.75},
		{material.DirtDense, 0.15},
		{material.Clay, 0.10},
	}
	stoneVariants = []weightedVariant{
		{material.Stone, 0.80},
		{material.StoneMossy, 0.10},
		{material.StoneCracked, 0.10},
	}
	deepVariants = []weightedVariant{
		{material.DeepStone, 0.85},
		{material.Basalt, 0.15},
	}
)

// pickVariant выбирает материал из пула пропорционально весам
func pickVariant(rng *rand.Rand, pool []weightedVariant) material.MaterialID {
	r := rng.Float64()
	for _, v := range pool {
		if r < v.weight {
			return v.id
		}
		r -= v.weight
	}
	return pool[len(pool)-1].id
}
