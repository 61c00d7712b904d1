package world

import (
	"math"
	"math/rand"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/logging"
	"github.com/annel0/alien-planet/internal/util"
	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world/tile"
)

const (
	noiseOffsetRange = 10000.0
	citySeedSalt     = 0x51d3c17
	maxPlaceAttempts = 100
)

// World владеет состоянием мира сессии: хранилищем изменений,
// списком power-блоков и разметкой города. Не потокобезопасен.
type World struct {
	cfg         *config.GameConfig
	seed        int64
	gen         *Generator
	diffs       *DiffStore
	powerBlocks *PowerBlocks
	city        *CityLayout
	player      vec.Vec2Float
}

// NoiseOffset выводит смещение шума по X из сида сессии
func NoiseOffset(seed int64) float64 {
	return rand.New(rand.NewSource(seed)).Float64() * noiseOffsetRange
}

// New создаёт мир для сида. Город строится отдельно вызовом EnsureCity.
func New(cfg *config.GameConfig, noise util.NoiseSource, seed int64) *World {
	return newWorld(cfg, NewGenerator(cfg, noise, NoiseOffset(seed)), seed)
}

func newWorld(cfg *config.GameConfig, gen *Generator, seed int64) *World {
	return &World{
		cfg:         cfg,
		seed:        seed,
		gen:         gen,
		diffs:       NewDiffStore(),
		powerBlocks: NewPowerBlocks(cfg.PowerBlockSoundInterval),
	}
}

// EnsureCity строит разметку города, если её ещё нет.
// Раскладка определяется сидом, поэтому повторная генерация даёт тот же город.
func (w *World) EnsureCity() *CityLayout {
	if w.city == nil {
		w.city = GenerateCity(w.cfg, rand.New(rand.NewSource(w.seed^citySeedSalt)))
		w.gen.SetCity(w.city)
		logging.Debug("город построен: %d комнат, %d коридоров", len(w.city.Rooms), len(w.city.Corridors))
	}
	return w.city
}

// Reset возвращает мир к процедурному состоянию при рестарте игры
func (w *World) Reset() {
	w.diffs.Reset()
	w.powerBlocks.Reset()
	w.city = nil
	w.gen.SetCity(nil)
	w.EnsureCity()
}

func (w *World) Config() *config.GameConfig { return w.cfg }
func (w *World) Seed() int64                { return w.seed }
func (w *World) Generator() *Generator      { return w.gen }
func (w *World) Diffs() *DiffStore          { return w.diffs }
func (w *World) PowerBlocks() *PowerBlocks  { return w.powerBlocks }
func (w *World) City() *CityLayout          { return w.city }

// SetPlayerPosition задаёт позицию игрока, от которой зависит шанс power-блоков
func (w *World) SetPlayerPosition(pos vec.Vec2Float) {
	w.player = pos
}

func (w *World) PlayerPosition() vec.Vec2Float {
	return w.player
}

// TileAt возвращает текущий тайл клетки: сначала хранилище изменений
// (разрушенный тайл отдаётся как Empty), затем город и рельеф.
// Чтение не пишет в хранилище изменений. Найденный power-блок только
// регистрируется в списке и дальше отдаётся по списку, чтобы не исчезать
// при приближении игрока.
func (w *World) TileAt(x, y int) tile.Tile {
	pos := vec.Vec2{X: x, Y: y}
	if t, ok := w.diffs.Get(pos); ok {
		if t.IsEmpty() {
			return tile.Air()
		}
		return t
	}
	if w.powerBlocks.Has(pos) {
		return tile.New(tile.PowerBlock)
	}

	t, power := w.gen.BaseTile(x, y, w.player)
	if power {
		if w.powerBlocks.Add(pos) {
			logging.Debug("найден power-блок (%d, %d)", x, y)
		}
	}
	return t
}

// TileAtPoint возвращает тайл под точкой в мировых координатах
func (w *World) TileAtPoint(p vec.Vec2Float) tile.Tile {
	cell := p.ToGrid(w.cfg.TileSize)
	return w.TileAt(cell.X, cell.Y)
}

// DamageTile наносит урон разрушаемому тайлу. Первое изменение копирует
// исходный тайл в хранилище. Возвращает состояние после удара и признак разрушения.
func (w *World) DamageTile(x, y int, amount float64) (tile.Tile, bool) {
	current := w.TileAt(x, y)
	if current.IsEmpty() || !current.Kind.IsDestructible() {
		return current, false
	}

	destroyed := current.Damage(amount)
	pos := vec.Vec2{X: x, Y: y}
	w.diffs.Set(pos, current)
	if destroyed && current.Kind == tile.PowerBlock {
		w.powerBlocks.Remove(pos)
	}
	return current, destroyed
}

// ZeroTile уничтожает тайл без урона (поедание червём, осыпание растительности)
// и возвращает тайл, который был в клетке.
func (w *World) ZeroTile(x, y int) tile.Tile {
	prev := w.TileAt(x, y)
	zeroed := prev
	zeroed.HP = 0
	pos := vec.Vec2{X: x, Y: y}
	w.diffs.Set(pos, zeroed)
	if prev.Kind == tile.PowerBlock {
		w.powerBlocks.Remove(pos)
	}
	return prev
}

// PlacePowerBlock ставит целый power-блок в клетку без изменений
func (w *World) PlacePowerBlock(x, y int) bool {
	pos := vec.Vec2{X: x, Y: y}
	if w.diffs.Has(pos) || w.powerBlocks.Has(pos) {
		return false
	}
	w.diffs.Set(pos, tile.New(tile.PowerBlock))
	w.powerBlocks.Add(pos)
	return true
}

// PlaceInitialPowerBlocks раскладывает count блоков на кольце вокруг точки
// появления игрока ниже уровня поверхности. Возвращает число поставленных блоков.
func (w *World) PlaceInitialPowerBlocks(rng *rand.Rand, spawn vec.Vec2Float, count int) int {
	minDist := w.cfg.PowerMinSafeDistance * w.cfg.TileSize
	maxDist := w.cfg.InitialPowerMaxDistance * w.cfg.TileSize

	placed := 0
	for i := 0; i < count; i++ {
		for attempt := 0; attempt < maxPlaceAttempts; attempt++ {
			angle := rng.Float64() * 2 * math.Pi
			dist := minDist + rng.Float64()*(maxDist-minDist)
			cell := vec.Vec2Float{
				X: spawn.X + math.Cos(angle)*dist,
				Y: spawn.Y + math.Sin(angle)*dist,
			}.ToGrid(w.cfg.TileSize)

			if cell.Y >= w.cfg.SurfaceLevel && w.PlacePowerBlock(cell.X, cell.Y) {
				placed++
				break
			}
		}
	}
	return placed
}

// Restore загружает сохранённые изменения и power-блоки поверх чистого мира
func (w *World) Restore(entries []DiffEntry, blocks []PowerBlock) {
	w.diffs.Reset()
	for _, e := range entries {
		w.diffs.Set(e.Pos, e.Tile)
	}
	w.powerBlocks.Restore(blocks)
}
