package game

import (
	"math"

	"github.com/annel0/alien-planet/internal/vec"
)

const (
	BlipWorm       = "worm"
	BlipWormHead   = "worm_head"
	BlipPowerBlock = "power_block"
)

// Blip - отметка на радаре относительно игрока
type Blip struct {
	Kind     string        `json:"kind"`
	Pos      vec.Vec2Float `json:"pos"`
	Offset   vec.Vec2Float `json:"offset"`
	Distance float64       `json:"distance"`
}

// RadarView - то, что видит радар в текущем кадре
type RadarView struct {
	Range   float64 `json:"range"`
	Blips   []Blip  `json:"blips"`
	Nearest *Blip   `json:"nearest_power_block,omitempty"` // без ограничения дальности
}

// Radar собирает отметки power-блоков и звеньев червей в пределах дальности радара
func (g *Game) Radar() RadarView {
	player := g.player.Pos()
	view := RadarView{Range: g.radarRange}

	blip := func(kind string, pos vec.Vec2Float) Blip {
		off := pos.Sub(player)
		return Blip{Kind: kind, Pos: pos, Offset: off, Distance: off.Length()}
	}

	nearestDist := math.Inf(1)
	for _, b := range g.world.PowerBlocks().List() {
		bl := blip(BlipPowerBlock, vec.CellCenter(b.Pos, g.cfg.TileSize))
		if bl.Distance < view.Range {
			view.Blips = append(view.Blips, bl)
		}
		if bl.Distance < nearestDist {
			nearestDist = bl.Distance
			nearest := bl
			view.Nearest = &nearest
		}
	}

	for _, w := range g.worms.List() {
		for j := len(w.Segments) - 1; j >= 0; j-- {
			kind := BlipWorm
			if j == 0 {
				kind = BlipWormHead
			}
			bl := blip(kind, w.Segments[j].Pos)
			if bl.Distance < view.Range {
				view.Blips = append(view.Blips, bl)
			}
		}
	}
	return view
}
