package material

// MaterialID представляет идентификатор материала.
// Идентификаторы плотные: таблица свойств — это массив, а не карта,
// поэтому чтение свойств не требует хеширования.
type MaterialID uint8

// Константы ID материалов
const (
	// Служебные значения
	Air  MaterialID = iota // 0 — пустая клетка
	Void                   // 1 — «за границей мира», никогда не хранится в чанке

	// Поверхность
	Grass
	GrassDark
	GrassDry

	// Лёгкий грунт
	TopSoil

	// Грунт
	Dirt
	DirtDense
	Clay

	// Сыпучие материалы
	Sand
	Gravel

	// Камень
	Stone
	StoneMossy
	StoneCracked
	CopperOre
	IronOre

	// Глубинный камень
	DeepStone
	Basalt
	GoldOre

	// Особые
	Obsidian

	// Жидкости
	Water
	Lava

	materialCount
)

// BlockKind определяет слой, в котором живёт клетка
type BlockKind uint8

const (
	KindForeground BlockKind = iota // твёрдый передний план
	KindBackground                  // фон (воздух)
	KindFluid                       // жидкости
)

// Properties описывает физические свойства материала
type Properties struct {
	Name      string  // имя для логов и API
	Density   float64 // плотность, управляет вытеснением жидкостей
	Hardness  float64 // твёрдость 0..1, масштабирует стоимость копания
	Liquidity float64 // текучесть 0..1; >0 — материал растекается
	Falls     bool    // подвержен ли материал гравитации
}

// Таблица свойств. Порядок записей совпадает с порядком констант.
var props = [materialCount]Properties{
	Air:  {Name: "air"},
	Void: {Name: "void", Density: 100, Hardness: 1},

	Grass:     {Name: "grass", Density: 1.1, Hardness: 0.25},
	GrassDark: {Name: "grass_dark", Density: 1.1, Hardness: 0.25},
	GrassDry:  {Name: "grass_dry", Density: 1.1, Hardness: 0.2},

	TopSoil: {Name: "top_soil", Density: 1.2, Hardness: 0.3},

	Dirt:      {Name: "dirt", Density: 1.4, Hardness: 0.35},
	DirtDense: {Name: "dirt_dense", Density: 1.5, Hardness: 0.4},
	Clay:      {Name: "clay", Density: 1.6, Hardness: 0.45},

	Sand:   {Name: "sand", Density: 1.5, Hardness: 0.3, Falls: true},
	Gravel: {Name: "gravel", Density: 1.8, Hardness: 0.4, Falls: true},

	Stone:        {Name: "stone", Density: 2.6, Hardness: 0.7},
	StoneMossy:   {Name: "stone_mossy", Density: 2.6, Hardness: 0.65},
	StoneCracked: {Name: "stone_cracked", Density: 2.5, Hardness: 0.6},
	CopperOre:    {Name: "copper_ore", Density: 2.8, Hardness: 0.75},
	IronOre:      {Name: "iron_ore", Density: 3.0, Hardness: 0.8},

	DeepStone: {Name: "deep_stone", Density: 3.0, Hardness: 0.85},
	Basalt:    {Name: "basalt", Density: 3.1, Hardness: 0.85},
	GoldOre:   {Name: "gold_ore", Density: 3.2, Hardness: 0.8},

	Obsidian: {Name: "obsidian", Density: 3.5, Hardness: 1},

	// Лава плотнее воды: при контакте лава опускается под воду
	Water: {Name: "water", Density: 1.0, Liquidity: 0.9, Falls: true},
	Lava:  {Name: "lava", Density: 2.0, Hardness: 0.2, Liquidity: 0.3, Falls: true},
}

// Props возвращает свойства материала. Функция тотальна: для
// неизвестного ID возвращаются свойства Void (твёрдый, неподвижный).
func Props(id MaterialID) Properties {
	if id >= materialCount {
		return props[Void]
	}
	return props[id]
}

// Kind возвращает слой клетки по умолчанию для материала
func Kind(id MaterialID) BlockKind {
	switch {
	case id == Air:
		return KindBackground
	case Props(id).Liquidity > 0:
		return KindFluid
	default:
		return KindForeground
	}
}

// IsLiquid сообщает, является ли материал жидкостью
func IsLiquid(id MaterialID) bool {
	return Props(id).Liquidity > 0
}

// DigProtected сообщает, защищён ли материал от обычного копания.
// Защищённые материалы удаляются только в режиме destroyAll.
func DigProtected(id MaterialID) bool {
	return id == Obsidian || id == Lava
}

// Count возвращает число известных материалов
func Count() int {
	return int(materialCount)
}

// String возвращает имя материала
func (id MaterialID) String() string {
	return Props(id).Name
}

// ByName ищет материал по имени. Возвращает false, если имя неизвестно.
func ByName(name string) (MaterialID, bool) {
	for id := MaterialID(0); id < materialCount; id++ {
		if props[id].Name == name {
			return id, true
		}
	}
	return Air, false
}
