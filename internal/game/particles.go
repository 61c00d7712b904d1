package game

import (
	"math/rand"

	"github.com/annel0/alien-planet/internal/vec"
)

const (
	impactParticles  = 3
	wormImpactColor  = "#ff5733"
	particleMinLife  = 20
	particleLifeSpan = 20
)

// Particle - искра от попадания лазера
type Particle struct {
	Pos      vec.Vec2Float `json:"pos"`
	Velocity vec.Vec2Float `json:"velocity"`
	Life     float64       `json:"life"`
	Color    string        `json:"color"`
}

// Particles - короткоживущие частицы попаданий
type Particles struct {
	list []Particle
}

// Impact добавляет искры в точке попадания
func (p *Particles) Impact(rng *rand.Rand, at vec.Vec2Float, color string) {
	for i := 0; i < impactParticles; i++ {
		p.list = append(p.list, Particle{
			Pos:      at,
			Velocity: vec.Vec2Float{X: (rng.Float64() - 0.5) * 3, Y: (rng.Float64() - 0.5) * 3},
			Life:     particleMinLife + rng.Float64()*particleLifeSpan,
			Color:    color,
		})
	}
}

// Update двигает частицы и удаляет погасшие
func (p *Particles) Update() {
	kept := p.list[:0]
	for _, pt := range p.list {
		pt.Pos = pt.Pos.Add(pt.Velocity)
		pt.Life--
		if pt.Life > 0 {
			kept = append(kept, pt)
		}
	}
	p.list = kept
}

func (p *Particles) List() []Particle {
	out := make([]Particle, len(p.list))
	copy(out, p.list)
	return out
}

func (p *Particles) Len() int { return len(p.list) }

func (p *Particles) Reset() { p.list = nil }
