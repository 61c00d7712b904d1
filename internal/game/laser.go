package game

import (
	"github.com/annel0/alien-planet/internal/entity"
	"github.com/annel0/alien-planet/internal/eventbus"
	"github.com/annel0/alien-planet/internal/physics"
	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// Laser - состояние луча в текущем кадре
type Laser struct {
	Active bool          `json:"active"`
	Start  vec.Vec2Float `json:"start"`
	End    vec.Vec2Float `json:"end"`
}

// TileDestroyed - полезная нагрузка события разрушения тайла
type TileDestroyed struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"`
}

// updateLaser тратит энергию и ведёт луч к курсору.
// Возвращает true, если лазер работал в этом кадре.
func (g *Game) updateLaser(in Input) bool {
	if !in.MouseDown || g.player.IsOverheated {
		g.laser.Active = false
		return false
	}

	g.laser.Active = true
	g.player.SpendEnergy(g.cfg.PlayerLaserEnergyCost)

	origin := g.player.Pos()
	target := g.camera.ScreenToWorld(in.Mouse)
	ray := physics.NewRay(origin, target, g.player.LaserRange)

	g.laser.Start = origin
	g.laser.End, _ = ray.March(func(_ int, p vec.Vec2Float) bool {
		return g.laserStep(p)
	})
	return true
}

// laserStep обрабатывает одну точку луча; true останавливает луч.
// Черви проверяются раньше тайлов.
func (g *Game) laserStep(p vec.Vec2Float) bool {
	damage := g.player.LaserDamage

	if g.worms.HitAt(p, damage) {
		g.particles.Impact(g.rng, p, wormImpactColor)
		g.emitter.PlayAt(world.CueLaser, p)
		return true
	}

	cell := p.ToGrid(g.cfg.TileSize)
	t := g.world.TileAt(cell.X, cell.Y)
	if !t.Kind.IsSolid() {
		return false
	}
	if !t.Kind.IsDestructible() {
		return true
	}

	damaged, destroyed := g.world.DamageTile(cell.X, cell.Y, damage)
	g.particles.Impact(g.rng, p, t.Color())
	if !destroyed {
		g.emitter.PlayAt(world.CueLaser, p)
		return true
	}

	g.emitter.PlayAt(world.CueBlockBreak, p)
	g.onTileDestroyed(cell, damaged.Kind)
	return true
}

// onTileDestroyed выбрасывает предмет, активирует power-блок
// и срезает растительность над разрушенной клеткой.
func (g *Game) onTileDestroyed(cell vec.Vec2, kind tile.Kind) {
	g.frame.TilesDestroyed++
	g.event(eventbus.TypeTileDestroyed, eventbus.PriorityLow, TileDestroyed{X: cell.X, Y: cell.Y, Kind: kind.String()})

	if kind != tile.Vegetation {
		g.items.Spawn(entity.NewFlyingItem(
			vec.CellCenter(cell, g.cfg.TileSize),
			vec.Vec2Float{X: (g.rng.Float64() - 0.5) * 4, Y: -3 - g.rng.Float64()*2},
			kind,
			g.rng.Float64()*360,
		))
	}

	if kind == tile.PowerBlock {
		g.emitter.PlayAt(world.CuePowerBlockActivate, g.player.Pos())
		g.world.PowerBlocks().Remove(cell)
		g.frame.PowerBlocksActivated++
		g.event(eventbus.TypePowerBlockActivated, eventbus.PriorityHigh, TileDestroyed{X: cell.X, Y: cell.Y, Kind: kind.String()})
		g.openUpgradeMenu()
	}

	above := cell.Up()
	if g.world.TileAt(above.X, above.Y).Kind == tile.Vegetation {
		g.world.ZeroTile(above.X, above.Y)
	}
}
