package entity

import (
	"testing"

	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world/tile"
	"github.com/stretchr/testify/assert"
)

func TestPlayerAccelerationAndFriction(t *testing.T) {
	cfg := testConfig()
	p := NewPlayer(cfg, vec.Vec2Float{})

	for i := 0; i < 30; i++ {
		p.ApplyInput(MoveInput{Right: true}, cfg.PlayerTurboEnergyCost)
	}
	assert.Equal(t, 5.0, p.Body.Velocity.X, "скорость ограничена максимумом")

	for i := 0; i < 200; i++ {
		p.ApplyInput(MoveInput{}, cfg.PlayerTurboEnergyCost)
	}
	assert.Zero(t, p.Body.Velocity.X, "трение останавливает игрока")
}

func TestPlayerTurboSpendsEnergy(t *testing.T) {
	cfg := testConfig()
	p := NewPlayer(cfg, vec.Vec2Float{})

	for i := 0; i < 30; i++ {
		p.ApplyInput(MoveInput{Left: true, Turbo: true}, cfg.PlayerTurboEnergyCost)
	}
	assert.True(t, p.IsTurboActive)
	assert.Equal(t, -10.0, p.Body.Velocity.X)
	assert.InDelta(t, 300-30*0.3, p.Energy, 1e-9)

	p.Energy = 0.2
	p.ApplyInput(MoveInput{Left: true, Turbo: true}, cfg.PlayerTurboEnergyCost)
	assert.False(t, p.IsTurboActive, "без энергии турбо не включается")
}

func TestPlayerOverheatCycle(t *testing.T) {
	cfg := testConfig()
	p := NewPlayer(cfg, vec.Vec2Float{})

	p.Energy = 0.4
	p.SpendEnergy(cfg.PlayerLaserEnergyCost)
	assert.True(t, p.IsOverheated)
	assert.Zero(t, p.Energy)

	for i := 0; i < 50; i++ {
		p.Regenerate(false)
	}
	assert.True(t, p.IsOverheated, "150 из 300 — ещё перегрев")
	p.Regenerate(false)
	assert.False(t, p.IsOverheated)
	assert.Equal(t, 153.0, p.Energy)
}

func TestPlayerHealthRegen(t *testing.T) {
	cfg := testConfig()
	p := NewPlayer(cfg, vec.Vec2Float{})
	p.HealthRegen = 0.5
	p.Health = 99.8

	p.Regenerate(true)
	assert.Equal(t, 100.0, p.Health)

	p.Health = 0
	p.Regenerate(true)
	assert.Zero(t, p.Health, "мёртвый игрок не лечится")
	assert.True(t, p.IsDead())
}

func TestPlayerJumpAndLanding(t *testing.T) {
	cfg := testConfig()
	terrain := newFakeTerrain(floorFrom(5))
	blocks := func(cell vec.Vec2) bool { return terrain.TileAt(cell.X, cell.Y).Kind.BlocksMovement() }
	p := NewPlayer(cfg, vec.Vec2Float{X: 100, Y: 100})

	assert.False(t, p.ApplyInput(MoveInput{Jump: true}, 0), "в воздухе прыгать нельзя")

	for i := 0; i < 100; i++ {
		p.Integrate(cfg.Gravity, cfg.TileSize, blocks)
	}
	assert.True(t, p.Body.IsGrounded)
	assert.InDelta(t, 200-18, p.Pos().Y, 0.5)

	assert.True(t, p.ApplyInput(MoveInput{Jump: true}, 0))
	assert.Equal(t, -12.0, p.Body.Velocity.Y)
	assert.False(t, p.Body.IsGrounded)
}

func TestPlayerVegetationIsPassable(t *testing.T) {
	cfg := testConfig()
	terrain := newFakeTerrain(func(int, int) tile.Kind { return tile.Vegetation })
	blocks := func(cell vec.Vec2) bool { return terrain.TileAt(cell.X, cell.Y).Kind.BlocksMovement() }
	p := NewPlayer(cfg, vec.Vec2Float{X: 100, Y: 100})

	p.Integrate(cfg.Gravity, cfg.TileSize, blocks)
	assert.Equal(t, 100.5, p.Pos().Y)
	assert.False(t, p.Body.IsGrounded)
}

func TestPlayerInvincibility(t *testing.T) {
	cfg := testConfig()
	p := NewPlayer(cfg, vec.Vec2Float{})
	p.TakeHit(50, 2)

	assert.False(t, p.IsVulnerable())
	p.TickInvincibility()
	p.TickInvincibility()
	assert.True(t, p.IsVulnerable())
	p.TickInvincibility()
	assert.Zero(t, p.InvincibilityTimer)
}
