package entity

import (
	"math"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/world"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// Terrain - доступ сущностей к тайлам мира
type Terrain interface {
	TileAt(x, y int) tile.Tile
	ZeroTile(x, y int) tile.Tile
}

// ItemEnv - окружение, в котором обновляются летящие предметы
type ItemEnv struct {
	Cfg     *config.GameConfig
	Terrain Terrain
	Player  *Player
	Cues    *world.CueEmitter
	Collect func(kind tile.Kind)
}

// State представляет состояние конечного автомата предмета
type State interface {
	Name() string
	Enter(item *FlyingItem, env *ItemEnv)
	Update(item *FlyingItem, env *ItemEnv) State
	Exit(item *FlyingItem, env *ItemEnv)
}

// Update обновляет состояние предмета и выполняет переход, если состояние сменилось
func (it *FlyingItem) Update(env *ItemEnv) {
	if it.state == nil {
		return
	}
	newState := it.state.Update(it, env)
	if newState != it.state {
		it.state.Exit(it, env)
		it.state = newState
		it.state.Enter(it, env)
	}
}

// SetState устанавливает новое состояние предмета
func (it *FlyingItem) SetState(state State, env *ItemEnv) {
	if it.state != nil {
		it.state.Exit(it, env)
	}
	it.state = state
	if it.state != nil {
		it.state.Enter(it, env)
	}
}

// === Конкретные состояния ===

var (
	Falling    State = &fallingState{}
	Attracting State = &attractingState{}
	Consumed   State = &consumedState{}
)

// fallingState - предмет падает, отскакивает от земли и ждёт игрока
type fallingState struct{}

func (s *fallingState) Name() string                      { return "falling" }
func (s *fallingState) Enter(item *FlyingItem, _ *ItemEnv) { item.IsGrounded = false }
func (s *fallingState) Exit(*FlyingItem, *ItemEnv)         {}

func (s *fallingState) Update(item *FlyingItem, env *ItemEnv) State {
	cfg := env.Cfg
	size := cfg.TileSize

	above := env.Terrain.TileAt(cellOf(item.Pos.X, size), cellOf(item.Pos.Y-5, size))
	if above.Kind.IsSolid() && item.Velocity.Y < 0 {
		// потолок гасит подъём
		item.Velocity.Y = 0
	} else if !item.IsGrounded {
		item.Velocity.Y += cfg.ItemGravity
	}

	item.Pos = item.Pos.Add(item.Velocity)

	groundY := cellOf(item.Pos.Y+size/4, size)
	ground := env.Terrain.TileAt(cellOf(item.Pos.X, size), groundY)
	if ground.Kind.BlocksMovement() {
		item.Pos.Y = float64(groundY)*size - size/4
		item.Velocity.Y *= cfg.ItemBounce
		item.Velocity.X = 0
		if math.Abs(item.Velocity.Y) < 1 {
			item.Velocity.Y = 0
			item.IsGrounded = true
		}
	} else {
		item.IsGrounded = false
	}

	if item.Pos.DistanceTo(env.Player.Pos()) < env.Player.PickupRadius {
		return Attracting
	}
	return s
}

// attractingState - предмет летит к игроку
type attractingState struct{}

func (s *attractingState) Name() string                { return "attracting" }
func (s *attractingState) Enter(*FlyingItem, *ItemEnv) {}
func (s *attractingState) Exit(*FlyingItem, *ItemEnv)  {}

func (s *attractingState) Update(item *FlyingItem, env *ItemEnv) State {
	player := env.Player.Pos()
	item.Pos = item.Pos.Add(player.Sub(item.Pos).Mul(env.Cfg.ItemAnimationSpeed))

	if item.Pos.DistanceTo(player) < env.Cfg.TileSize/2 {
		return Consumed
	}
	return s
}

// consumedState - предмет подобран; на входе попадает в инвентарь
type consumedState struct{}

func (s *consumedState) Name() string { return "consumed" }

func (s *consumedState) Enter(item *FlyingItem, env *ItemEnv) {
	if env.Collect != nil {
		env.Collect(item.Kind)
	}
	env.Cues.PlayAt(world.CuePickup, env.Player.Pos())
}

func (s *consumedState) Update(item *FlyingItem, _ *ItemEnv) State { return s }
func (s *consumedState) Exit(*FlyingItem, *ItemEnv)                {}

func cellOf(coord, size float64) int {
	return int(math.Floor(coord / size))
}
