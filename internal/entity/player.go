package entity

import (
	"math"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/physics"
	"github.com/annel0/alien-planet/internal/vec"
)

// MoveInput - управляющие сигналы движения за кадр
type MoveInput struct {
	Left  bool
	Right bool
	Jump  bool
	Turbo bool
}

// Player - состояние игрока: физическое тело, оружие и ресурсы
type Player struct {
	Body     physics.Circle `json:"-"`
	Rotation float64        `json:"rotation"`

	Speed           float64 `json:"speed"`
	JumpForce       float64 `json:"jump_force"`
	Acceleration    float64 `json:"acceleration"`
	Friction        float64 `json:"friction"`
	LaserDamage     float64 `json:"laser_damage"`
	LaserRange      float64 `json:"laser_range"`
	PickupRadius    float64 `json:"pickup_radius"`
	TurboMultiplier float64 `json:"turbo_multiplier"`

	Health      float64 `json:"health"`
	MaxHealth   float64 `json:"max_health"`
	Energy      float64 `json:"energy"`
	MaxEnergy   float64 `json:"max_energy"`
	EnergyRegen float64 `json:"energy_regen"`
	HealthRegen float64 `json:"health_regen"`

	InvincibilityTimer int  `json:"invincibility_timer"`
	IsTurboActive      bool `json:"is_turbo_active"`
	IsOverheated       bool `json:"is_overheated"`
}

// NewPlayer создаёт игрока с базовыми характеристиками в точке spawn
func NewPlayer(cfg *config.GameConfig, spawn vec.Vec2Float) *Player {
	p := &Player{}
	p.Reset(cfg, spawn)
	return p
}

// Reset возвращает все характеристики к базовым (улучшения сбрасываются)
func (p *Player) Reset(cfg *config.GameConfig, spawn vec.Vec2Float) {
	*p = Player{
		Body:            physics.Circle{Pos: spawn, Radius: cfg.PlayerRadius},
		Speed:           cfg.PlayerSpeed,
		JumpForce:       cfg.PlayerJumpForce,
		Acceleration:    cfg.PlayerAcceleration,
		Friction:        cfg.PlayerFriction,
		LaserDamage:     cfg.PlayerLaserDamage,
		LaserRange:      cfg.PlayerLaserRange,
		PickupRadius:    cfg.PlayerPickupRadius,
		TurboMultiplier: cfg.PlayerTurboMultiplier,
		Health:          cfg.PlayerHealth,
		MaxHealth:       cfg.PlayerHealth,
		Energy:          cfg.PlayerEnergy,
		MaxEnergy:       cfg.PlayerEnergy,
		EnergyRegen:     cfg.PlayerEnergyRegen,
	}
}

// Pos возвращает позицию центра игрока в пикселях
func (p *Player) Pos() vec.Vec2Float {
	return p.Body.Pos
}

// Radius возвращает радиус тела игрока
func (p *Player) Radius() float64 {
	return p.Body.Radius
}

// ApplyInput обрабатывает движение за кадр: турбо, разгон, трение и прыжок.
// Возвращает true, если игрок прыгнул.
func (p *Player) ApplyInput(in MoveInput, turboCost float64) bool {
	moving := in.Left || in.Right
	p.IsTurboActive = moving && in.Turbo && !p.IsOverheated && p.Energy > turboCost

	maxSpeed := p.Speed
	if p.IsTurboActive {
		maxSpeed = p.Speed * p.TurboMultiplier
		p.SpendEnergy(turboCost)
	}

	vx := p.Body.Velocity.X
	switch {
	case in.Right:
		if vx < maxSpeed {
			vx += p.Acceleration
		}
	case in.Left:
		if vx > -maxSpeed {
			vx -= p.Acceleration
		}
	default:
		vx *= p.Friction
		if math.Abs(vx) < 0.1 {
			vx = 0
		}
	}
	p.Body.Velocity.X = math.Max(-maxSpeed, math.Min(maxSpeed, vx))

	if in.Jump && p.Body.IsGrounded {
		p.Body.Velocity.Y = p.JumpForce
		p.Body.IsGrounded = false
		return true
	}
	return false
}

// Integrate применяет гравитацию и двигает игрока с разрешением коллизий по осям
func (p *Player) Integrate(gravity, tileSize float64, blocks physics.BlockChecker) {
	p.Body.Velocity.Y += gravity

	p.Body.Pos.X += p.Body.Velocity.X
	physics.ResolveCircle(&p.Body, physics.AxisX, tileSize, blocks)
	p.Body.Pos.Y += p.Body.Velocity.Y
	physics.ResolveCircle(&p.Body, physics.AxisY, tileSize, blocks)

	p.Rotation += p.Body.Velocity.X * 0.02
}

// SpendEnergy списывает энергию; при исчерпании оружие и турбо перегреваются
func (p *Player) SpendEnergy(cost float64) {
	p.Energy -= cost
	if p.Energy <= 0 {
		p.Energy = 0
		p.IsOverheated = true
	}
}

// Regenerate восстанавливает энергию, если за кадр она не тратилась,
// и здоровье, пока игрок жив и ранен.
func (p *Player) Regenerate(spentThisFrame bool) {
	if !spentThisFrame && p.Energy < p.MaxEnergy {
		p.Energy = math.Min(p.Energy+p.EnergyRegen, p.MaxEnergy)
		if p.IsOverheated && (p.Energy > p.MaxEnergy*0.5 || p.Energy == p.MaxEnergy) {
			p.IsOverheated = false
		}
	} else if spentThisFrame && p.Energy <= 0 {
		p.IsOverheated = true
	}

	if p.Health > 0 && p.Health < p.MaxHealth {
		p.Health = math.Min(p.Health+p.HealthRegen, p.MaxHealth)
	}
}

// TakeHit наносит урон и включает неуязвимость на invincibility кадров
func (p *Player) TakeHit(damage float64, invincibility int) {
	p.Health -= damage
	p.InvincibilityTimer = invincibility
}

// TickInvincibility уменьшает таймер неуязвимости
func (p *Player) TickInvincibility() {
	if p.InvincibilityTimer > 0 {
		p.InvincibilityTimer--
	}
}

// IsVulnerable - игрок может получить урон в этом кадре
func (p *Player) IsVulnerable() bool {
	return p.InvincibilityTimer <= 0
}

func (p *Player) IsDead() bool {
	return p.Health <= 0
}
