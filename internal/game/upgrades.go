package game

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrNoUpgradeSelection = errors.New("выбор улучшения не активен")
	ErrBadUpgradeIndex    = errors.New("неверный индекс улучшения")
)

// Upgrade - улучшение, предлагаемое после разрушения power-блока
type Upgrade struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Info  string `json:"info"`
	apply func(g *Game)
}

// Upgrades - полный каталог улучшений
var Upgrades = []Upgrade{
	{
		ID: "laser_damage", Name: "Laser Power", Info: "+20% Damage",
		apply: func(g *Game) { g.player.LaserDamage *= 1.2 },
	},
	{
		ID: "laser_range", Name: "Laser Range", Info: "+15% Range",
		apply: func(g *Game) { g.player.LaserRange *= 1.15 },
	},
	{
		ID: "max_energy", Name: "Amplified Battery", Info: "+25% Max Energy",
		apply: func(g *Game) {
			g.player.MaxEnergy *= 1.25
			g.player.Energy = g.player.MaxEnergy
		},
	},
	{
		ID: "energy_regen", Name: "Fast Charge", Info: "+20% Regeneration",
		apply: func(g *Game) { g.player.EnergyRegen *= 1.2 },
	},
	{
		ID: "jump_force", Name: "Power Jump", Info: "+10% Height of the Jump",
		apply: func(g *Game) { g.player.JumpForce *= 1.1 },
	},
	{
		ID: "radar_range", Name: "Far Reach Radar", Info: "+10% Radar Range",
		apply: func(g *Game) { g.radarRange *= 1.1 },
	},
	{
		ID: "health_regen", Name: "Auto-Repair", Info: "+0.1 Life per second",
		apply: func(g *Game) { g.player.HealthRegen += 0.01 },
	},
	{
		ID: "max_health", Name: "Reinforced armor", Info: "+20% Max Life",
		apply: func(g *Game) {
			g.player.MaxHealth *= 1.2
			g.player.Health = g.player.MaxHealth
		},
	},
	{
		ID: "turbo_speed", Name: "Enhanced Turbo", Info: "+10% Turbo Speed",
		apply: func(g *Game) { g.player.TurboMultiplier *= 1.1 },
	},
}

// UpgradeByID ищет улучшение в каталоге
func UpgradeByID(id string) (Upgrade, bool) {
	for _, u := range Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return Upgrade{}, false
}

// UpgradeMenu - предложенные карточки и текущий выбор
type UpgradeMenu struct {
	Offers   []Upgrade `json:"offers"`
	Selected int       `json:"selected"`
}

// offer перемешивает каталог и оставляет первые count карточек
func offer(rng *rand.Rand, count int) UpgradeMenu {
	shuffled := make([]Upgrade, len(Upgrades))
	copy(shuffled, Upgrades)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if count > len(shuffled) {
		count = len(shuffled)
	}
	return UpgradeMenu{Offers: shuffled[:count]}
}

func (m *UpgradeMenu) move(delta int) {
	n := len(m.Offers)
	if n == 0 {
		return
	}
	m.Selected = ((m.Selected+delta)%n + n) % n
}

func (m *UpgradeMenu) pick(index int) (Upgrade, error) {
	if index < 0 || index >= len(m.Offers) {
		return Upgrade{}, fmt.Errorf("%w: %d из %d", ErrBadUpgradeIndex, index, len(m.Offers))
	}
	return m.Offers[index], nil
}
