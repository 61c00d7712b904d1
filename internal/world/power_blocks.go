package world

import (
	"math"

	"github.com/annel0/alien-planet/internal/vec"
)

// PowerBlock - клетка с power-блоком и таймер его звукового сигнала
type PowerBlock struct {
	Pos        vec.Vec2 `json:"pos"`
	SoundTimer int      `json:"sound_timer"`
}

// PowerBlocks - плоский список известных power-блоков для сигналов и радара.
// Поставленные блоки дублируются в хранилище изменений, найденные при
// чтении рельефа живут только здесь.
type PowerBlocks struct {
	blocks   []PowerBlock
	index    map[vec.Vec2]struct{}
	interval int
}

func NewPowerBlocks(soundInterval int) *PowerBlocks {
	return &PowerBlocks{index: make(map[vec.Vec2]struct{}), interval: soundInterval}
}

// Add регистрирует блок; повторная регистрация ничего не меняет
func (p *PowerBlocks) Add(pos vec.Vec2) bool {
	if p.Has(pos) {
		return false
	}
	p.blocks = append(p.blocks, PowerBlock{Pos: pos, SoundTimer: p.interval})
	p.index[pos] = struct{}{}
	return true
}

func (p *PowerBlocks) Has(pos vec.Vec2) bool {
	_, ok := p.index[pos]
	return ok
}

// Remove удаляет блок, сохраняя порядок остальных
func (p *PowerBlocks) Remove(pos vec.Vec2) bool {
	if !p.Has(pos) {
		return false
	}
	delete(p.index, pos)
	for i, b := range p.blocks {
		if b.Pos == pos {
			p.blocks = append(p.blocks[:i], p.blocks[i+1:]...)
			return true
		}
	}
	return false
}

func (p *PowerBlocks) Len() int {
	return len(p.blocks)
}

// List возвращает копию списка
func (p *PowerBlocks) List() []PowerBlock {
	out := make([]PowerBlock, len(p.blocks))
	copy(out, p.blocks)
	return out
}

func (p *PowerBlocks) Reset() {
	p.blocks = nil
	p.index = make(map[vec.Vec2]struct{})
}

// Restore заменяет список сохранёнными блоками
func (p *PowerBlocks) Restore(blocks []PowerBlock) {
	p.Reset()
	for _, b := range blocks {
		if p.Has(b.Pos) {
			continue
		}
		p.blocks = append(p.blocks, b)
		p.index[b.Pos] = struct{}{}
	}
}

// Update уменьшает таймеры блоков в радиусе слышимости и испускает
// сигнал, когда таймер истекает. radius задаётся в пикселях.
func (p *PowerBlocks) Update(player vec.Vec2Float, tileSize, radius float64, cues *CueEmitter) {
	for i := range p.blocks {
		b := &p.blocks[i]
		if vec.CellCenter(b.Pos, tileSize).DistanceTo(player) > radius {
			continue
		}
		b.SoundTimer--
		if b.SoundTimer <= 0 {
			cues.PlayAt(CuePowerBlock, vec.Vec2Float{X: float64(b.Pos.X) * tileSize, Y: float64(b.Pos.Y) * tileSize})
			b.SoundTimer = p.interval
		}
	}
}

// Nearest возвращает ближайший к игроку блок и расстояние до его центра в пикселях
func (p *PowerBlocks) Nearest(player vec.Vec2Float, tileSize float64) (PowerBlock, float64, bool) {
	best, bestDist, found := PowerBlock{}, math.Inf(1), false
	for _, b := range p.blocks {
		d := vec.CellCenter(b.Pos, tileSize).DistanceTo(player)
		if d < bestDist {
			best, bestDist, found = b, d, true
		}
	}
	return best, bestDist, found
}

// InRange возвращает блоки, центры которых ближе radius пикселей к игроку
func (p *PowerBlocks) InRange(player vec.Vec2Float, tileSize, radius float64) []PowerBlock {
	var out []PowerBlock
	for _, b := range p.blocks {
		if vec.CellCenter(b.Pos, tileSize).DistanceTo(player) <= radius {
			out = append(out, b)
		}
	}
	return out
}
