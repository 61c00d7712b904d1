package entity

import (
	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// fakeTerrain - мир из одного вида тайлов с точечными изменениями
type fakeTerrain struct {
	fill    func(x, y int) tile.Kind
	changes map[vec.Vec2]tile.Tile
	zeroed  []vec.Vec2
}

func newFakeTerrain(fill func(x, y int) tile.Kind) *fakeTerrain {
	return &fakeTerrain{fill: fill, changes: make(map[vec.Vec2]tile.Tile)}
}

func (f *fakeTerrain) TileAt(x, y int) tile.Tile {
	if t, ok := f.changes[vec.Vec2{X: x, Y: y}]; ok {
		if t.IsEmpty() {
			return tile.Air()
		}
		return t
	}
	return tile.New(f.fill(x, y))
}

func (f *fakeTerrain) ZeroTile(x, y int) tile.Tile {
	prev := f.TileAt(x, y)
	zeroed := prev
	zeroed.HP = 0
	pos := vec.Vec2{X: x, Y: y}
	f.changes[pos] = zeroed
	f.zeroed = append(f.zeroed, pos)
	return prev
}

func emptyWorld(int, int) tile.Kind { return tile.Empty }

func floorFrom(row int) func(int, int) tile.Kind {
	return func(_, y int) tile.Kind {
		if y >= row {
			return tile.Dirt
		}
		return tile.Empty
	}
}

func testConfig() *config.GameConfig {
	cfg := config.DefaultGameConfig()
	return &cfg
}

func newCues(listener vec.Vec2Float) (*world.CueEmitter, *world.CueRecorder) {
	rec := &world.CueRecorder{}
	cues := world.NewCueEmitter(rec, 400)
	cues.SetListener(listener)
	return cues, rec
}
