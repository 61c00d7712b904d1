package game

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/alien-planet/internal/entity"
	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world"
)

// PlayerSnapshot - игрок вместе с физическим телом
type PlayerSnapshot struct {
	Pos        vec.Vec2Float `json:"pos"`
	Velocity   vec.Vec2Float `json:"velocity"`
	IsGrounded bool          `json:"is_grounded"`
	Stats      entity.Player `json:"stats"`
}

// Snapshot - сохраняемое состояние игры. Рельеф не хранится:
// он восстанавливается из сида, поверх накладываются изменения.
type Snapshot struct {
	ID          string             `json:"id"`
	SessionID   string             `json:"session_id"`
	CreatedAt   time.Time          `json:"created_at"`
	Seed        int64              `json:"seed"`
	Tick        uint64             `json:"tick"`
	State       string             `json:"state"`
	RadarRange  float64            `json:"radar_range"`
	Player      PlayerSnapshot     `json:"player"`
	Inventory   map[string]int     `json:"inventory"`
	Diffs       []world.DiffEntry  `json:"diffs"`
	PowerBlocks []world.PowerBlock `json:"power_blocks"`
}

// SnapshotInfo - краткое описание сохранения для списков
type SnapshotInfo struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Seed      int64     `json:"seed"`
	Tick      uint64    `json:"tick"`
	Diffs     int       `json:"diffs"`
}

// SnapshotStore - хранилище сохранений
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	List(ctx context.Context) ([]SnapshotInfo, error)
}

// Info возвращает краткое описание сохранения
func (s *Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:        s.ID,
		SessionID: s.SessionID,
		CreatedAt: s.CreatedAt,
		Seed:      s.Seed,
		Tick:      s.Tick,
		Diffs:     len(s.Diffs),
	}
}

// Snapshot снимает текущее состояние игры. Идентификаторы заполняет вызывающий.
func (g *Game) Snapshot() *Snapshot {
	state := g.state
	if state == StateUpgradeSelection {
		// открытое меню не сохраняется, предложение улучшений теряется
		state = StatePlaying
	}
	return &Snapshot{
		Seed:       g.world.Seed(),
		Tick:       g.tick,
		State:      state.String(),
		RadarRange: g.radarRange,
		Player: PlayerSnapshot{
			Pos:        g.player.Body.Pos,
			Velocity:   g.player.Body.Velocity,
			IsGrounded: g.player.Body.IsGrounded,
			Stats:      *g.player,
		},
		Inventory:   g.inventory.Snapshot(),
		Diffs:       g.world.Diffs().Entries(),
		PowerBlocks: g.world.PowerBlocks().List(),
	}
}

// Restore загружает сохранение в игру с тем же сидом.
// Черви, предметы и частицы не сохраняются и начинаются заново.
func (g *Game) Restore(s *Snapshot) error {
	if s.Seed != g.world.Seed() {
		return fmt.Errorf("сид сохранения %d не совпадает с сидом игры %d", s.Seed, g.world.Seed())
	}
	state, err := ParseState(s.State)
	if err != nil {
		return fmt.Errorf("восстановление состояния: %w", err)
	}

	g.Reset()
	g.frame = FrameReport{}

	*g.player = s.Player.Stats
	g.player.Body.Pos = s.Player.Pos
	g.player.Body.Velocity = s.Player.Velocity
	g.player.Body.IsGrounded = s.Player.IsGrounded
	g.player.Body.Radius = g.cfg.PlayerRadius

	g.world.Restore(s.Diffs, s.PowerBlocks)
	g.world.SetPlayerPosition(s.Player.Pos)
	g.inventory.Restore(s.Inventory)
	if s.RadarRange > 0 {
		g.radarRange = s.RadarRange
	}
	g.tick = s.Tick
	g.state = state
	g.camera.Pos = vec.Vec2Float{
		X: s.Player.Pos.X - g.viewport.Width/2/g.camera.Zoom,
		Y: s.Player.Pos.Y - g.viewport.Height/2/g.camera.Zoom,
	}
	return nil
}
