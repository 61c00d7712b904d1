package world

import (
	"math"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/util"
	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// Параметры шумовых каналов рельефа
const (
	surfaceNoiseScale   = 50.0
	surfaceVariation    = 4.0
	vegetationScale     = 10.0
	vegetationThreshold = 0.4
	bedrockNoiseScale   = 80.0
	bedrockDepth        = 10
	bedrockVariation    = 8.0
	terrainNoiseScale   = 25.0
	powerNoiseScale     = 150.0
	powerNoiseOffsetX   = 20000.0
	powerNoiseOffsetY   = 30000.0
)

// Generator вычисляет исходный тайл клетки из шума сессии.
// Результат зависит только от координат, сида (через шум и смещение)
// и позиции игрока, которая влияет на вероятность power-блоков.
type Generator struct {
	cfg    *config.GameConfig
	noise  util.NoiseSource
	offset float64
	city   *CityLayout
}

// NewGenerator создаёт генератор. offset сдвигает шум по X, чтобы
// разные сессии с одним источником шума давали разный рельеф.
func NewGenerator(cfg *config.GameConfig, noise util.NoiseSource, offset float64) *Generator {
	return &Generator{
		cfg:    cfg,
		noise:  noise,
		offset: offset,
	}
}

// SetCity подключает разметку города; nil отключает слой города
func (g *Generator) SetCity(city *CityLayout) {
	g.city = city
}

// Offset возвращает смещение шума
func (g *Generator) Offset() float64 {
	return g.offset
}

// SurfaceHeight возвращает первую строку грунта в столбце x
func (g *Generator) SurfaceHeight(x int) int {
	n := g.noise.Noise2D(float64(x)/surfaceNoiseScale, g.offset/surfaceNoiseScale)
	return int(math.Floor(float64(g.cfg.SurfaceLevel) + n*surfaceVariation + 0.5))
}

// BaseTile возвращает исходный тайл клетки (x, y) и признак того,
// что вид был заменён на PowerBlock. Регистрацией найденного блока занимается World.
func (g *Generator) BaseTile(x, y int, player vec.Vec2Float) (tile.Tile, bool) {
	if g.city != nil {
		if t := g.city.TileAt(x, y); t != nil {
			return *t, false
		}
	}

	surface := g.SurfaceHeight(x)
	if y == surface-1 {
		n := util.Normalized(g.noise.Noise2D(float64(x)/vegetationScale+g.offset, 0))
		if n > vegetationThreshold {
			return tile.New(tile.Vegetation), false
		}
	}
	if y < surface {
		return tile.Air(), false
	}

	mapHeight := g.cfg.MapHeight
	if y >= mapHeight {
		return tile.New(tile.Indestructible), false
	}

	bedrock := float64(mapHeight-bedrockDepth) +
		g.noise.Noise2D(float64(x)/bedrockNoiseScale, g.offset/bedrockNoiseScale)*bedrockVariation
	if float64(y) >= bedrock {
		return tile.New(tile.Indestructible), false
	}

	depth := float64(y) / float64(mapHeight)
	kind := classifyDepth(depth, g.noise.Noise2D((float64(x)+g.offset)/terrainNoiseScale, float64(y)/terrainNoiseScale))

	if kind != tile.Sand && kind != tile.Diamond {
		if g.powerChanceHit(x, y, depth, player) {
			return tile.New(tile.PowerBlock), true
		}
	}

	return tile.New(kind), false
}

// classifyDepth выбирает вид грунта по глубинному поясу и значению шума
func classifyDepth(depth, n float64) tile.Kind {
	switch {
	case depth < 0.2:
		if n > 0.3 {
			return tile.Sand
		}
		return tile.Dirt
	case depth < 0.6:
		if n > 0.5 {
			return tile.Brick
		}
		if n > 0.2 {
			return tile.Soil
		}
		return tile.Dirt
	default:
		if n > 0.6 {
			return tile.Diamond
		}
		if n > 0.3 {
			return tile.Brick
		}
		return tile.Soil
	}
}

// PowerChance возвращает вероятность power-блока в клетке: ноль рядом с игроком,
// линейный рост до максимальной дистанции и бонус за глубину.
func (g *Generator) PowerChance(x, y int, player vec.Vec2Float) float64 {
	depth := float64(y) / float64(g.cfg.MapHeight)
	return g.powerChance(x, y, depth, player)
}

func (g *Generator) powerChance(x, y int, depth float64, player vec.Vec2Float) float64 {
	center := vec.CellCenter(vec.Vec2{X: x, Y: y}, g.cfg.TileSize)
	dist := center.DistanceTo(player) / g.cfg.TileSize

	minSafe, maxEffective := g.cfg.PowerMinSafeDistance, g.cfg.PowerMaxEffectiveDist
	proximity := 0.0
	if dist > minSafe {
		proximity = math.Min(1, (dist-minSafe)/(maxEffective-minSafe))
	}

	return g.cfg.PowerChanceFactor * proximity * (1 + depth*depth)
}

func (g *Generator) powerChanceHit(x, y int, depth float64, player vec.Vec2Float) bool {
	chance := g.powerChance(x, y, depth, player)
	if chance <= 0 {
		return false
	}
	n := util.Normalized(g.noise.Noise2D(
		(float64(x)+powerNoiseOffsetX)/powerNoiseScale,
		(float64(y)+powerNoiseOffsetY)/powerNoiseScale,
	))
	return n < chance
}
