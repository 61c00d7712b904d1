package entity

import (
	"math/rand"
	"testing"

	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world"
	"github.com/annel0/alien-planet/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wormFixture struct {
	sys     *WormSystem
	env     *WormEnv
	terrain *fakeTerrain
	rec     *world.CueRecorder
}

func newWormFixture(t *testing.T, fill func(int, int) tile.Kind, playerPos vec.Vec2Float) *wormFixture {
	t.Helper()
	cfg := testConfig()
	terrain := newFakeTerrain(fill)
	cues, rec := newCues(playerPos)
	return &wormFixture{
		sys:     NewWormSystem(cfg, rand.New(rand.NewSource(1))),
		terrain: terrain,
		rec:     rec,
		env: &WormEnv{
			Terrain: terrain,
			Player:  NewPlayer(cfg, playerPos),
			Items:   NewFlyingItems(),
			Cues:    cues,
		},
	}
}

func TestWormSpawnNeedsDepth(t *testing.T) {
	shallow := newWormFixture(t, func(int, int) tile.Kind { return tile.Dirt }, vec.Vec2Float{X: 0, Y: 10 * 40})
	report := shallow.sys.Update(shallow.env)
	assert.Zero(t, report.Spawned, "на глубине 10 тайлов черви не появляются")

	deep := newWormFixture(t, func(int, int) tile.Kind { return tile.Dirt }, vec.Vec2Float{X: 0, Y: 50 * 40})
	report = deep.sys.Update(deep.env)
	require.Equal(t, 1, report.Spawned)
	require.Equal(t, 1, deep.sys.Len())

	worm := deep.sys.List()[0]
	require.Len(t, worm.Segments, 3)
	assert.Equal(t, 220.0, worm.Head().MaxHP)
	assert.Equal(t, 80.0, worm.Segments[2].MaxHP)
	assert.Equal(t, deep.sys.cfg.WormMoveInterval-1, worm.MoveTimer, "таймер уже тикнул в кадре появления")
}

func TestWormSpawnLimit(t *testing.T) {
	f := newWormFixture(t, func(int, int) tile.Kind { return tile.Sand }, vec.Vec2Float{X: 0, Y: 50 * 40})
	for i := 0; i < 10; i++ {
		f.sys.Update(f.env)
	}
	assert.Equal(t, f.sys.cfg.MaxWorms, f.sys.Len())
}

func TestWormSpawnRejectsHardRock(t *testing.T) {
	f := newWormFixture(t, func(int, int) tile.Kind { return tile.Brick }, vec.Vec2Float{X: 0, Y: 50 * 40})
	f.sys.Update(f.env)
	assert.Zero(t, f.sys.Len(), "черви появляются только в земле и песке")
}

func TestWormSegmentCountInvariant(t *testing.T) {
	f := newWormFixture(t, emptyWorld, vec.Vec2Float{X: 5000, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 0, Y: 0}, 3)
	f.sys.Add(worm)

	for _, seg := range worm.Segments[1:] {
		seg.HP = 0
	}
	f.sys.Update(f.env)
	require.Equal(t, 1, f.sys.Len())
	assert.Len(t, worm.Segments, 1, "голова остаётся одна")

	worm.Head().HP = -5
	f.sys.Update(f.env)
	assert.Zero(t, f.sys.Len(), "червь без головы удаляется целиком")
}

func TestWormLootConservation(t *testing.T) {
	f := newWormFixture(t, emptyWorld, vec.Vec2Float{X: 300, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 0, Y: 0}, 4)
	worm.Consumed = []tile.Kind{tile.Dirt, tile.Sand, tile.Brick, tile.Soil}
	f.sys.Add(worm)

	worm.Segments[1].HP = 0
	worm.Segments[3].HP = 0
	f.sys.Update(f.env)

	require.Equal(t, 2, f.env.Items.Len())
	for _, it := range f.env.Items.List() {
		assert.Equal(t, tile.WormChunk, it.Kind)
	}
	assert.Equal(t, []tile.Kind{tile.Brick, tile.Soil}, worm.Consumed, "выталкиваются самые старые тайлы")

	worm.Head().HP = 0
	report := f.sys.Update(f.env)
	assert.Equal(t, 1, report.Killed)

	items := f.env.Items.List()
	require.Len(t, items, 4, "K съеденных + по куску за каждое потерянное звено")
	assert.Equal(t, tile.Brick, items[2].Kind)
	assert.Equal(t, tile.Soil, items[3].Kind)
	assert.Contains(t, f.rec.Kinds(), world.CueWormDeath)
}

func TestWormSegmentRemovalOrderIsTailFirst(t *testing.T) {
	f := newWormFixture(t, emptyWorld, vec.Vec2Float{X: 5000, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 0, Y: 0}, 3)
	worm.Segments[1].Pos = vec.Vec2Float{X: 100, Y: 0}
	worm.Segments[3].Pos = vec.Vec2Float{X: 300, Y: 0}
	worm.Segments[1].HP = 0
	worm.Segments[3].HP = 0
	f.sys.Add(worm)

	f.sys.Update(f.env)

	items := f.env.Items.List()
	require.Len(t, items, 2)
	assert.Equal(t, 300.0, items[0].Pos.X, "первым удаляется хвостовое звено")
	assert.Equal(t, 100.0, items[1].Pos.X)
	require.Len(t, worm.Segments, 2)
}

func TestWormHeadContactDamagesPlayer(t *testing.T) {
	f := newWormFixture(t, emptyWorld, vec.Vec2Float{X: 200, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 200, Y: 0}, 2)
	f.sys.Add(worm)

	report := f.sys.Update(f.env)

	player := f.env.Player
	assert.Equal(t, 50.0, player.Health)
	assert.Equal(t, 40, player.InvincibilityTimer)
	assert.Equal(t, 50.0, report.PlayerDamage)
	assert.Equal(t, []world.CueKind{world.CueWormHit}, f.rec.Kinds())

	f.sys.Update(f.env)
	assert.Equal(t, 50.0, player.Health, "во время неуязвимости урона нет")
}

func TestWormBodyContactDamage(t *testing.T) {
	f := newWormFixture(t, emptyWorld, vec.Vec2Float{X: 0, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 40, Y: 0}, 1)
	worm.Segments[1].Pos = vec.Vec2Float{X: 20, Y: 0}
	f.sys.Add(worm)

	f.sys.Update(f.env)
	assert.Equal(t, 75.0, f.env.Player.Health)
}

func TestWormEatsAdjacentTile(t *testing.T) {
	f := newWormFixture(t, floorFrom(5), vec.Vec2Float{X: 5000, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 100, Y: 180}, 2)
	f.sys.Add(worm)

	// голова на строке 4, под ней земля; клетки слева и справа пусты,
	// поэтому съесть можно только клетку снизу
	eatenAt := -1
	for attempt := 0; attempt < 50; attempt++ {
		head := worm.Head()
		head.Pos = vec.Vec2Float{X: 100, Y: 180}
		head.Velocity = vec.Vec2Float{}
		worm.IsGrounded = false
		worm.MoveTimer = 1

		if f.sys.Update(f.env).TilesEaten > 0 {
			eatenAt = attempt
			break
		}
		assert.Empty(t, worm.Consumed, "пустую клетку съесть нельзя")
	}
	require.GreaterOrEqual(t, eatenAt, 0, "червь так и не выбрал клетку снизу")

	require.Len(t, f.terrain.zeroed, 1)
	eaten := f.terrain.zeroed[0]
	assert.Equal(t, vec.Vec2{X: 2, Y: 5}, eaten)
	assert.Equal(t, []tile.Kind{tile.Dirt}, worm.Consumed)
	assert.Equal(t, vec.CellCenter(eaten, 40), worm.Head().Pos, "голова переносится в центр съеденной клетки")
	assert.Equal(t, tile.Empty, f.terrain.TileAt(2, 5).Kind)
	assert.Equal(t, f.sys.cfg.WormMoveInterval, worm.MoveTimer)
	assert.Contains(t, f.rec.Kinds(), world.CueWormEat)
}

func TestWormEatingBookkeeping(t *testing.T) {
	f := newWormFixture(t, func(int, int) tile.Kind { return tile.Soil }, vec.Vec2Float{X: 5000, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 100, Y: 100}, 2)
	f.sys.Add(worm)

	eaten := 0
	for i := 0; i < f.sys.cfg.WormMoveInterval*20; i++ {
		eaten += f.sys.Update(f.env).TilesEaten
	}
	require.Positive(t, eaten)
	assert.Len(t, worm.Consumed, eaten)
	assert.Len(t, f.terrain.zeroed, eaten)
	for _, kind := range worm.Consumed {
		assert.Equal(t, tile.Soil, kind)
	}
	assert.GreaterOrEqual(t, len(worm.Segments), 3)
	assert.Equal(t, len(worm.Segments)-3, countGrowth(worm), "каждое новое звено — тело")
}

func countGrowth(w *Worm) int {
	n := 0
	for _, seg := range w.Segments[3:] {
		if seg.MaxHP == 80 {
			n++
		}
	}
	return n
}

func TestWormFollow(t *testing.T) {
	f := newWormFixture(t, emptyWorld, vec.Vec2Float{X: 5000, Y: 0})
	worm := NewWorm(f.sys.cfg, vec.Vec2Float{X: 0, Y: 0}, 1)
	worm.Segments[1].Pos = vec.Vec2Float{X: -100, Y: 0}
	f.sys.Add(worm)

	f.sys.Update(f.env)
	// голова упала на 0.5, звено подтянулось на 10% разрыва
	head := worm.Head().Pos
	assert.InDelta(t, -100+100*0.1, worm.Segments[1].Pos.X, 1e-9)
	assert.InDelta(t, head.Y*0.1, worm.Segments[1].Pos.Y, 1e-9)
}

func TestWormHitAt(t *testing.T) {
	f := newWormFixture(t, emptyWorld, vec.Vec2Float{X: 5000, Y: 0})
	first := NewWorm(f.sys.cfg, vec.Vec2Float{X: 0, Y: 0}, 2)
	second := NewWorm(f.sys.cfg, vec.Vec2Float{X: 5, Y: 0}, 2)
	f.sys.Add(first)
	f.sys.Add(second)

	require.True(t, f.sys.HitAt(vec.Vec2Float{X: 4, Y: 0}, 10))
	assert.Equal(t, 210.0, first.Head().HP, "побеждает первый червь в списке")
	assert.Equal(t, 220.0, second.Head().HP)
	assert.False(t, f.sys.HitAt(vec.Vec2Float{X: 1000, Y: 0}, 10))
}

func TestSegmentRadius(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 11.0, SegmentRadius(cfg, 3, 0))
	assert.Equal(t, 10.0, SegmentRadius(cfg, 3, 2))
}
