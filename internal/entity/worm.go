package entity

import (
	"math"
	"math/rand"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/logging"
	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// Segment - звено червя. Индекс 0: голова.
type Segment struct {
	Pos      vec.Vec2Float `json:"pos"`
	Velocity vec.Vec2Float `json:"velocity"`
	HP       float64       `json:"hp"`
	MaxHP    float64       `json:"max_hp"`
	dead     bool
}

// Worm - сегментированный червь
type Worm struct {
	ID         uint64      `json:"id"`
	Segments   []*Segment  `json:"segments"`
	MoveTimer  int         `json:"move_timer"`
	IsGrounded bool        `json:"is_grounded"`
	Consumed   []tile.Kind `json:"consumed"` // очередь съеденных тайлов, старые в начале
	dead       bool
}

// Head возвращает голову червя
func (w *Worm) Head() *Segment {
	if len(w.Segments) == 0 {
		return nil
	}
	return w.Segments[0]
}

// SegmentRadius возвращает радиус звена j: чем больше звеньев позади, тем он больше
func SegmentRadius(cfg *config.GameConfig, segments, j int) float64 {
	return cfg.WormSegmentRadius + float64(segments-1-j)*cfg.WormRadiusGrowthFactor
}

// WormEnv - окружение кадра симуляции червей
type WormEnv struct {
	Terrain Terrain
	Player  *Player
	Items   *FlyingItems
	Cues    *world.CueEmitter
}

// WormReport - итоги кадра для метрик и событий
type WormReport struct {
	Spawned      int
	Killed       int
	SegmentsLost int
	TilesEaten   int
	PlayerDamage float64
}

// WormSystem управляет списком червей
type WormSystem struct {
	cfg    *config.GameConfig
	rng    *rand.Rand
	worms  []*Worm
	nextID uint64
}

func NewWormSystem(cfg *config.GameConfig, rng *rand.Rand) *WormSystem {
	return &WormSystem{cfg: cfg, rng: rng}
}

// List возвращает червей; срез нельзя изменять
func (s *WormSystem) List() []*Worm {
	return s.worms
}

func (s *WormSystem) Len() int {
	return len(s.worms)
}

func (s *WormSystem) Reset() {
	s.worms = nil
}

// Add добавляет готового червя (восстановление и тесты)
func (s *WormSystem) Add(w *Worm) {
	s.nextID++
	w.ID = s.nextID
	s.worms = append(s.worms, w)
}

// NewWorm создаёт червя из головы и bodies звеньев тела в одной точке
func NewWorm(cfg *config.GameConfig, pos vec.Vec2Float, bodies int) *Worm {
	w := &Worm{MoveTimer: cfg.WormMoveInterval}
	w.Segments = append(w.Segments, &Segment{Pos: pos, HP: cfg.WormHeadHealth, MaxHP: cfg.WormHeadHealth})
	for i := 0; i < bodies; i++ {
		w.Segments = append(w.Segments, &Segment{Pos: pos, HP: cfg.WormBodyHealth, MaxHP: cfg.WormBodyHealth})
	}
	return w
}

// Update выполняет один кадр: появление, гибель звеньев, движение,
// поедание тайлов, подтягивание тела и контакт с игроком.
func (s *WormSystem) Update(env *WormEnv) WormReport {
	var report WormReport
	cfg := s.cfg

	if len(s.worms) < cfg.MaxWorms && env.Player.Pos().Y > float64(cfg.WormSpawnDepth)*cfg.TileSize {
		if s.spawn(env) {
			report.Spawned++
		}
	}

	for i := len(s.worms) - 1; i >= 0; i-- {
		w := s.worms[i]
		if s.resolveDeaths(w, env, &report) {
			continue
		}
		s.compactSegments(w)

		headRadius := SegmentRadius(cfg, len(w.Segments), 0)
		s.move(w, env, headRadius)
		s.eat(w, env, &report)
		s.follow(w, headRadius)
		s.touchPlayer(w, env, &report)
	}

	s.compactWorms()
	return report
}

func (s *WormSystem) spawn(env *WormEnv) bool {
	cfg := s.cfg
	player := env.Player.Pos()
	dist := cfg.RevealRadius + cfg.TileSize*5

	for attempt := 0; attempt < cfg.WormSpawnAttempts; attempt++ {
		angle := s.rng.Float64() * 2 * math.Pi
		pos := vec.Vec2Float{X: player.X + math.Cos(angle)*dist, Y: player.Y + math.Sin(angle)*dist}
		cell := pos.ToGrid(cfg.TileSize)

		kind := env.Terrain.TileAt(cell.X, cell.Y).Kind
		if kind == tile.Dirt || kind == tile.Sand {
			s.Add(NewWorm(cfg, pos, 2))
			logging.Debug("червь появился в (%d, %d)", cell.X, cell.Y)
			return true
		}
	}
	return false
}

// resolveDeaths проверяет звенья с хвоста. Гибель головы убивает червя
// целиком; гибель звена тела роняет кусок червя и выталкивает самый старый
// съеденный тайл. Возвращает true, если червь погиб.
func (s *WormSystem) resolveDeaths(w *Worm, env *WormEnv, report *WormReport) bool {
	for j := len(w.Segments) - 1; j >= 0; j-- {
		seg := w.Segments[j]
		if seg.HP > 0 {
			continue
		}

		if j == 0 {
			env.Cues.PlayAt(world.CueWormDeath, seg.Pos)
			for _, kind := range w.Consumed {
				env.Items.Spawn(NewFlyingItem(
					seg.Pos,
					vec.Vec2Float{X: (s.rng.Float64() - 0.5) * 5, Y: -4},
					kind,
					s.rng.Float64()*360,
				))
			}
			w.dead = true
			report.Killed++
			logging.Debug("червь %d погиб, выпало %d предметов", w.ID, len(w.Consumed))
			return true
		}

		env.Items.Spawn(NewFlyingItem(
			seg.Pos,
			vec.Vec2Float{X: (s.rng.Float64() - 0.5) * 4, Y: -3},
			tile.WormChunk,
			s.rng.Float64()*360,
		))
		seg.dead = true
		report.SegmentsLost++
		if len(w.Consumed) > 0 {
			w.Consumed = w.Consumed[1:]
		}
	}
	return false
}

func (s *WormSystem) compactSegments(w *Worm) {
	kept := w.Segments[:0]
	for _, seg := range w.Segments {
		if !seg.dead {
			kept = append(kept, seg)
		}
	}
	w.Segments = kept
}

func (s *WormSystem) compactWorms() {
	kept := s.worms[:0]
	for _, w := range s.worms {
		if !w.dead {
			kept = append(kept, w)
		}
	}
	for i := len(kept); i < len(s.worms); i++ {
		s.worms[i] = nil
	}
	s.worms = kept
}

// move - гравитация и опора головы на тайл под ней
func (s *WormSystem) move(w *Worm, env *WormEnv, headRadius float64) {
	cfg := s.cfg
	head := w.Head()

	if !w.IsGrounded {
		head.Velocity.Y += cfg.Gravity
	}
	head.Pos = head.Pos.Add(head.Velocity)
	head.Velocity.X *= cfg.ItemFriction

	groundY := int(math.Floor((head.Pos.Y + headRadius) / cfg.TileSize))
	ground := env.Terrain.TileAt(int(math.Floor(head.Pos.X/cfg.TileSize)), groundY)
	if ground.Kind.IsSolid() {
		head.Pos.Y = float64(groundY)*cfg.TileSize - headRadius
		head.Velocity = vec.Vec2Float{}
		w.IsGrounded = true
	} else {
		w.IsGrounded = false
	}
}

var eatMoves = [...]vec.Vec2{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// eat - раз в интервал голова пробует съесть соседний тайл слева, справа или снизу
func (s *WormSystem) eat(w *Worm, env *WormEnv, report *WormReport) {
	cfg := s.cfg
	w.MoveTimer--
	if w.MoveTimer > 0 {
		return
	}
	w.MoveTimer = cfg.WormMoveInterval

	head := w.Head()
	target := head.Pos.ToGrid(cfg.TileSize).Add(eatMoves[s.rng.Intn(len(eatMoves))])
	t := env.Terrain.TileAt(target.X, target.Y)
	if !t.Kind.IsDestructible() {
		return
	}

	w.Consumed = append(w.Consumed, t.Kind)
	env.Terrain.ZeroTile(target.X, target.Y)
	report.TilesEaten++
	env.Cues.PlayAt(world.CueWormEat, head.Pos)
	head.Pos = vec.CellCenter(target, cfg.TileSize)

	if s.rng.Float64() < cfg.WormGrowthChance {
		tail := *w.Segments[len(w.Segments)-1]
		tail.HP, tail.MaxHP = cfg.WormBodyHealth, cfg.WormBodyHealth
		w.Segments = append(w.Segments, &tail)
	}
}

// follow подтягивает каждое звено к предыдущему на долю разрыва
func (s *WormSystem) follow(w *Worm, headRadius float64) {
	maxGap := headRadius * s.cfg.WormFollowFactor
	for j := 1; j < len(w.Segments); j++ {
		prev, curr := w.Segments[j-1], w.Segments[j]
		gap := prev.Pos.Sub(curr.Pos)
		if gap.Length() > maxGap {
			curr.Pos = curr.Pos.Add(gap.Mul(s.cfg.WormSpeed))
		}
	}
}

// touchPlayer наносит урон первым звеном, коснувшимся игрока (начиная с головы)
func (s *WormSystem) touchPlayer(w *Worm, env *WormEnv, report *WormReport) {
	cfg := s.cfg
	player := env.Player
	if !player.IsVulnerable() {
		return
	}

	for j, seg := range w.Segments {
		radius := SegmentRadius(cfg, len(w.Segments), j)
		if seg.Pos.DistanceTo(player.Pos()) >= player.Radius()+radius {
			continue
		}

		damage := cfg.WormSegmentDamage
		if j == 0 {
			damage = cfg.WormHeadDamage
		}
		player.TakeHit(damage, cfg.InvincibilityTime)
		report.PlayerDamage += damage
		env.Cues.PlayAt(world.CueWormHit, seg.Pos)
		return
	}
}

// HitAt наносит урон первому звену первого червя (в порядке списка),
// в круг которого попала точка. Возвращает true при попадании.
func (s *WormSystem) HitAt(p vec.Vec2Float, damage float64) bool {
	for _, w := range s.worms {
		for j, seg := range w.Segments {
			r := SegmentRadius(s.cfg, len(w.Segments), j)
			if p.DistanceSqTo(seg.Pos) < r*r {
				seg.HP -= damage
				return true
			}
		}
	}
	return false
}
