package game

import (
	"math/rand"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/entity"
	"github.com/annel0/alien-planet/internal/eventbus"
	"github.com/annel0/alien-planet/internal/logging"
	"github.com/annel0/alien-planet/internal/util"
	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// Event - доменное событие кадра для шины событий
type Event struct {
	Type     string `json:"type"`
	Priority int    `json:"priority"`
	Payload  any    `json:"payload"`
}

// FrameReport - итоги одного кадра
type FrameReport struct {
	Tick                 uint64            `json:"tick"`
	State                State             `json:"state"`
	Cues                 []world.Cue       `json:"cues,omitempty"`
	Events               []Event           `json:"events,omitempty"`
	TilesDestroyed       int               `json:"tiles_destroyed"`
	ItemsCollected       int               `json:"items_collected"`
	PowerBlocksActivated int               `json:"power_blocks_activated"`
	Worms                entity.WormReport `json:"worms"`
}

// Полезные нагрузки событий
type (
	PlayerHit struct {
		Damage float64 `json:"damage"`
		Health float64 `json:"health"`
	}
	WormCount struct {
		Count int `json:"count"`
	}
	ItemCollected struct {
		Kind string `json:"kind"`
	}
	UpgradeOffered struct {
		IDs []string `json:"ids"`
	}
	UpgradeSelected struct {
		ID string `json:"id"`
	}
	GameOver struct {
		Tick      uint64         `json:"tick"`
		Inventory map[string]int `json:"inventory"`
	}
	SessionReset struct {
		Seed        int64 `json:"seed"`
		PowerBlocks int   `json:"power_blocks"`
	}
)

// Game - всё изменяемое состояние одной игры. Update вызывается из одного потока.
type Game struct {
	cfg       *config.GameConfig
	rng       *rand.Rand
	world     *world.World
	player    *entity.Player
	worms     *entity.WormSystem
	items     *entity.FlyingItems
	inventory *Inventory
	particles Particles
	camera    Camera
	viewport  Viewport
	laser     Laser
	menu      UpgradeMenu

	state      State
	radarRange float64
	tick       uint64
	prev       Input

	cues    *world.CueRecorder
	emitter *world.CueEmitter
	frame   FrameReport
}

// New создаёт игру в состоянии меню. Мир и город строятся сразу,
// power-блоки раскладываются при старте (Reset).
func New(cfg *config.GameConfig, noise util.NoiseSource, seed int64) *Game {
	rng := rand.New(rand.NewSource(seed))
	cues := &world.CueRecorder{}
	g := &Game{
		cfg:        cfg,
		rng:        rng,
		world:      world.New(cfg, noise, seed),
		worms:      entity.NewWormSystem(cfg, rng),
		items:      entity.NewFlyingItems(),
		inventory:  NewInventory(),
		camera:     NewCamera(),
		viewport:   DefaultViewport,
		state:      StateMenu,
		radarRange: cfg.RadarRange,
		cues:       cues,
		emitter:    world.NewCueEmitter(cues, cfg.SoundMaxDistance),
	}
	spawn := g.SpawnPoint()
	g.player = entity.NewPlayer(cfg, spawn)
	g.world.EnsureCity()
	g.world.SetPlayerPosition(spawn)
	return g
}

// SpawnPoint - точка появления игрока над центром стартовой зоны
func (g *Game) SpawnPoint() vec.Vec2Float {
	return vec.Vec2Float{
		X: float64(g.cfg.SpawnAreaWidth) * g.cfg.TileSize / 2,
		Y: 8 * g.cfg.TileSize,
	}
}

// Reset начинает игру заново: базовые характеристики, чистый мир, новые power-блоки
func (g *Game) Reset() {
	spawn := g.SpawnPoint()
	g.player.Reset(g.cfg, spawn)
	g.radarRange = g.cfg.RadarRange
	g.tick = 0
	g.inventory.Reset()
	g.worms.Reset()
	g.items.Reset()
	g.particles.Reset()
	g.laser = Laser{}
	g.menu = UpgradeMenu{}
	g.camera.Pos = vec.Vec2Float{}

	g.world.Reset()
	g.world.SetPlayerPosition(spawn)
	g.emitter.SetListener(spawn)
	placed := g.world.PlaceInitialPowerBlocks(g.rng, spawn, g.cfg.InitialPowerBlocks)

	g.event(eventbus.TypeSessionReset, eventbus.PriorityNormal, SessionReset{Seed: g.world.Seed(), PowerBlocks: placed})
	logging.Info("🎮 новая игра: сид %d, power-блоков %d", g.world.Seed(), placed)
}

// Start начинает новую игру из любого состояния
func (g *Game) Start() FrameReport {
	g.state = StatePlaying
	g.Reset()
	return g.finishFrame()
}

// Update выполняет один кадр и возвращает его итоги
func (g *Game) Update(in Input) FrameReport {
	pressed := in.PressedSince(g.prev)
	g.prev = in
	g.camera.ZoomBy(in.Zoom, g.viewport)

	switch g.state {
	case StateMenu, StateGameOver:
		if pressed.Enter || pressed.Space {
			g.state = StatePlaying
			g.Reset()
		}
	case StateUpgradeSelection:
		g.updateUpgradeMenu(pressed)
	case StatePlaying:
		g.step(in)
	}
	return g.finishFrame()
}

// step - кадр игрового процесса в фиксированном порядке
func (g *Game) step(in Input) {
	cfg := g.cfg
	g.tick++
	g.emitter.SetListener(g.player.Pos())

	move := entity.MoveInput{Left: in.Left, Right: in.Right, Jump: in.Up || in.Space, Turbo: in.Shift}
	if g.player.ApplyInput(move, cfg.PlayerTurboEnergyCost) {
		g.emitter.PlayAt(world.CueJump, g.player.Pos())
	}
	spent := g.player.IsTurboActive

	g.player.Integrate(cfg.Gravity, cfg.TileSize, g.blocksMovement)
	g.world.SetPlayerPosition(g.player.Pos())
	g.emitter.SetListener(g.player.Pos())

	if g.updateLaser(in) {
		spent = true
	}

	g.particles.Update()
	g.camera.Follow(g.player.Pos(), g.viewport)

	g.frame.ItemsCollected = g.items.Update(&entity.ItemEnv{
		Cfg:     cfg,
		Terrain: g.world,
		Player:  g.player,
		Cues:    g.emitter,
		Collect: g.collect,
	})

	g.frame.Worms = g.worms.Update(&entity.WormEnv{
		Terrain: g.world,
		Player:  g.player,
		Items:   g.items,
		Cues:    g.emitter,
	})
	g.reportWorms()

	g.world.PowerBlocks().Update(g.player.Pos(), cfg.TileSize, cfg.PowerBlockSoundRadius*cfg.TileSize, g.emitter)

	g.player.TickInvincibility()
	g.player.Regenerate(spent)

	if g.player.IsDead() {
		g.state = StateGameOver
		g.event(eventbus.TypeGameOver, eventbus.PriorityCritical, GameOver{Tick: g.tick, Inventory: g.inventory.Snapshot()})
		logging.Info("💀 игра окончена на кадре %d, собрано предметов: %d", g.tick, g.inventory.Total())
	}
}

func (g *Game) blocksMovement(cell vec.Vec2) bool {
	return g.world.TileAt(cell.X, cell.Y).Kind.BlocksMovement()
}

func (g *Game) collect(kind tile.Kind) {
	g.inventory.Add(kind)
	g.event(eventbus.TypeItemCollected, eventbus.PriorityLow, ItemCollected{Kind: kind.String()})
}

func (g *Game) reportWorms() {
	r := g.frame.Worms
	if r.Spawned > 0 {
		g.event(eventbus.TypeWormSpawned, eventbus.PriorityLow, WormCount{Count: r.Spawned})
	}
	if r.Killed > 0 {
		g.event(eventbus.TypeWormKilled, eventbus.PriorityNormal, WormCount{Count: r.Killed})
	}
	if r.PlayerDamage > 0 {
		g.event(eventbus.TypePlayerHit, eventbus.PriorityNormal, PlayerHit{Damage: r.PlayerDamage, Health: g.player.Health})
	}
}

// openUpgradeMenu переводит игру в выбор улучшений
func (g *Game) openUpgradeMenu() {
	g.state = StateUpgradeSelection
	g.menu = offer(g.rng, g.cfg.UpgradeChoices)

	ids := make([]string, len(g.menu.Offers))
	for i, u := range g.menu.Offers {
		ids[i] = u.ID
	}
	g.event(eventbus.TypeUpgradeOffered, eventbus.PriorityHigh, UpgradeOffered{IDs: ids})
}

// updateUpgradeMenu обрабатывает клавиши экрана улучшений
func (g *Game) updateUpgradeMenu(p Pressed) {
	if p.Left {
		g.menu.move(-1)
	}
	if p.Right {
		g.menu.move(1)
	}

	choice := p.digitChoice()
	if p.Space || p.Enter {
		choice = g.menu.Selected
	}

	if choice >= 0 && choice < len(g.menu.Offers) {
		g.applyUpgrade(g.menu.Offers[choice])
	} else if p.Escape {
		g.closeUpgradeMenu()
	}
}

// SelectUpgrade применяет предложенное улучшение по индексу
func (g *Game) SelectUpgrade(index int) (Upgrade, error) {
	if g.state != StateUpgradeSelection {
		return Upgrade{}, ErrNoUpgradeSelection
	}
	u, err := g.menu.pick(index)
	if err != nil {
		return Upgrade{}, err
	}
	g.applyUpgrade(u)
	return u, nil
}

// SkipUpgrade закрывает выбор без улучшения
func (g *Game) SkipUpgrade() error {
	if g.state != StateUpgradeSelection {
		return ErrNoUpgradeSelection
	}
	g.closeUpgradeMenu()
	return nil
}

func (g *Game) applyUpgrade(u Upgrade) {
	u.apply(g)
	g.event(eventbus.TypeUpgradeSelected, eventbus.PriorityNormal, UpgradeSelected{ID: u.ID})
	logging.Debug("улучшение %s применено", u.ID)
	g.closeUpgradeMenu()
}

func (g *Game) closeUpgradeMenu() {
	g.state = StatePlaying
	g.menu = UpgradeMenu{}
}

func (g *Game) event(eventType string, priority int, payload any) {
	g.frame.Events = append(g.frame.Events, Event{Type: eventType, Priority: priority, Payload: payload})
}

func (g *Game) finishFrame() FrameReport {
	report := g.frame
	report.Tick = g.tick
	report.State = g.state
	report.Cues = g.cues.Drain()
	g.frame = FrameReport{}
	return report
}

// SetViewport задаёт размер холста клиента
func (g *Game) SetViewport(v Viewport) {
	if v.Width > 0 && v.Height > 0 {
		g.viewport = v
	}
}

func (g *Game) Config() *config.GameConfig { return g.cfg }
func (g *Game) World() *world.World        { return g.world }
func (g *Game) Player() *entity.Player     { return g.player }
func (g *Game) Worms() *entity.WormSystem  { return g.worms }
func (g *Game) Items() *entity.FlyingItems { return g.items }
func (g *Game) Inventory() *Inventory      { return g.inventory }
func (g *Game) Particles() *Particles      { return &g.particles }
func (g *Game) Camera() Camera             { return g.camera }
func (g *Game) Viewport() Viewport         { return g.viewport }
func (g *Game) Laser() Laser               { return g.laser }
func (g *Game) State() State               { return g.state }
func (g *Game) Tick() uint64               { return g.tick }
func (g *Game) RadarRange() float64        { return g.radarRange }
func (g *Game) UpgradeMenu() UpgradeMenu   { return g.menu }
func (g *Game) Seed() int64                { return g.world.Seed() }
