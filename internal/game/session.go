package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/entity"
	"github.com/annel0/alien-planet/internal/eventbus"
	"github.com/annel0/alien-planet/internal/logging"
	"github.com/annel0/alien-planet/internal/util"
	"github.com/annel0/alien-planet/internal/world"
	"github.com/annel0/alien-planet/internal/world/tile"
	"github.com/google/uuid"
)

// MaxTileRegion - максимальная сторона прямоугольника в запросе тайлов
const MaxTileRegion = 64

var (
	ErrRegionTooLarge  = errors.New("запрошенная область слишком велика")
	ErrNoSnapshotStore = errors.New("хранилище сохранений не настроено")
)

// NoiseFactory создаёт источник шума для сида
type NoiseFactory func(seed int64) util.NoiseSource

// PerlinFactory - источник шума по умолчанию
func PerlinFactory(seed int64) util.NoiseSource {
	return util.NewPerlinNoise(seed)
}

// Options - зависимости сессии. Пустые поля отключают соответствующую функцию.
type Options struct {
	Config  *config.GameConfig
	Seed    int64 // 0: сид из Config, затем случайный
	Noise   NoiseFactory
	Bus     eventbus.EventBus // nil: шина процесса из eventbus.Init
	Metrics *Metrics
	Store   SnapshotStore
}

// Session - потокобезопасная обёртка над Game для хоста и HTTP-обработчиков.
// Мьютекс защищает игру; события публикуются после его освобождения.
type Session struct {
	mu      sync.Mutex
	id      string
	opts    Options
	game    *Game
	input   Input
	started time.Time
}

// NewSession создаёт сессию в состоянии меню
func NewSession(opts Options) *Session {
	if opts.Config == nil {
		def := config.DefaultGameConfig()
		opts.Config = &def
	}
	if opts.Noise == nil {
		opts.Noise = PerlinFactory
	}
	seed := opts.Seed
	if seed == 0 {
		seed = opts.Config.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		id:      uuid.NewString(),
		opts:    opts,
		started: time.Now(),
	}
	s.game = New(opts.Config, opts.Noise(seed), seed)
	logging.Info("🪐 сессия %s создана, сид %d", s.id, seed)
	return s
}

func (s *Session) ID() string { return s.id }

// SetInput задаёт управление для следующих кадров.
// Шаги зума накапливаются до ближайшего кадра.
func (s *Session) SetInput(in Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	zoom := s.input.Zoom + in.Zoom
	s.input = in
	s.input.Zoom = zoom
}

// Step выполняет один кадр с текущим управлением
func (s *Session) Step(ctx context.Context) FrameReport {
	s.mu.Lock()
	start := time.Now()
	report := s.game.Update(s.input)
	s.input.Zoom = 0
	s.opts.Metrics.Observe(s.game, report, time.Since(start))
	s.mu.Unlock()

	s.publish(ctx, report)
	return report
}

// Start начинает новую игру
func (s *Session) Start(ctx context.Context) FrameReport {
	s.mu.Lock()
	report := s.game.Start()
	s.mu.Unlock()

	s.publish(ctx, report)
	return report
}

// Run крутит кадры с частотой tickRate до отмены контекста
func (s *Session) Run(ctx context.Context, tickRate int) {
	if tickRate <= 0 {
		tickRate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	logging.Info("▶️ игровой цикл запущен: %d кадров/с", tickRate)
	for {
		select {
		case <-ticker.C:
			s.Step(ctx)
		case <-ctx.Done():
			logging.Info("⏹️ игровой цикл остановлен")
			return
		}
	}
}

// SelectUpgrade применяет предложенное улучшение
func (s *Session) SelectUpgrade(ctx context.Context, index int) (Upgrade, error) {
	s.mu.Lock()
	u, err := s.game.SelectUpgrade(index)
	report := s.game.finishFrame()
	s.mu.Unlock()

	s.publish(ctx, report)
	return u, err
}

// SkipUpgrade закрывает выбор улучшений
func (s *Session) SkipUpgrade() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.SkipUpgrade()
}

// Info - сводка сессии
type Info struct {
	ID         string         `json:"id"`
	Seed       int64          `json:"seed"`
	State      State          `json:"state"`
	Tick       uint64         `json:"tick"`
	Uptime     string         `json:"uptime"`
	Player     PlayerSnapshot `json:"player"`
	RadarRange float64        `json:"radar_range"`
	Camera     Camera         `json:"camera"`
	Laser      Laser          `json:"laser"`
	Inventory  map[string]int `json:"inventory"`
	Diffs      int            `json:"diffs"`
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	p := g.Player()
	player := PlayerSnapshot{
		Pos:        p.Body.Pos,
		Velocity:   p.Body.Velocity,
		IsGrounded: p.Body.IsGrounded,
		Stats:      *p,
	}
	return Info{
		ID:         s.id,
		Seed:       g.Seed(),
		State:      g.State(),
		Tick:       g.Tick(),
		Uptime:     time.Since(s.started).Truncate(time.Second).String(),
		Player:     player,
		RadarRange: g.RadarRange(),
		Camera:     g.Camera(),
		Laser:      g.Laser(),
		Inventory:  g.Inventory().Snapshot(),
		Diffs:      g.World().Diffs().Len(),
	}
}

// TileView - тайл с координатами для выдачи наружу
type TileView struct {
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Tile tile.Tile `json:"tile"`
}

// Tiles возвращает непустые тайлы прямоугольника [x0,x1]×[y0,y1]
func (s *Session) Tiles(x0, y0, x1, y1 int) ([]TileView, error) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	if x1-x0+1 > MaxTileRegion || y1-y0+1 > MaxTileRegion {
		return nil, fmt.Errorf("%w: %dx%d, максимум %d", ErrRegionTooLarge, x1-x0+1, y1-y0+1, MaxTileRegion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TileView
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			t := s.game.World().TileAt(x, y)
			if t.IsEmpty() {
				continue
			}
			out = append(out, TileView{X: x, Y: y, Tile: t})
		}
	}
	return out, nil
}

// Worms возвращает копию списка червей
func (s *Session) Worms() []entity.Worm {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.game.Worms().List()
	out := make([]entity.Worm, 0, len(list))
	for _, w := range list {
		cp := *w
		cp.Segments = make([]*entity.Segment, len(w.Segments))
		for i, seg := range w.Segments {
			sc := *seg
			cp.Segments[i] = &sc
		}
		cp.Consumed = append(cp.Consumed[:0:0], w.Consumed...)
		out = append(out, cp)
	}
	return out
}

// Items возвращает летящие предметы в JSON-представлении
func (s *Session) Items() []entity.FlyingItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.game.Items().List()
	out := make([]entity.FlyingItem, 0, len(list))
	for _, it := range list {
		out = append(out, *it)
	}
	return out
}

// PowerBlocks возвращает известные power-блоки
func (s *Session) PowerBlocks() []world.PowerBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.World().PowerBlocks().List()
}

// Radar возвращает показания радара
func (s *Session) Radar() RadarView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Radar()
}

// Upgrades возвращает открытое меню улучшений
func (s *Session) Upgrades() (UpgradeMenu, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.UpgradeMenu(), s.game.State()
}

// City возвращает разметку подземного города
func (s *Session) City() *world.CityLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.World().City()
}

// SetViewport задаёт размер холста клиента
func (s *Session) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.SetViewport(v)
}

// SaveSnapshot сохраняет текущее состояние и возвращает ID сохранения
func (s *Session) SaveSnapshot(ctx context.Context) (SnapshotInfo, error) {
	if s.opts.Store == nil {
		return SnapshotInfo{}, ErrNoSnapshotStore
	}

	s.mu.Lock()
	snap := s.game.Snapshot()
	s.mu.Unlock()

	snap.ID = uuid.NewString()
	snap.SessionID = s.id
	snap.CreatedAt = time.Now().UTC()
	if err := s.opts.Store.Save(ctx, snap); err != nil {
		return SnapshotInfo{}, fmt.Errorf("сохранение сессии %s: %w", s.id, err)
	}

	info := snap.Info()
	s.publishEvent(ctx, Event{Type: eventbus.TypeSnapshotSaved, Priority: eventbus.PriorityNormal, Payload: info}, snap.Tick)
	logging.Info("💾 сохранение %s: кадр %d, изменений %d", snap.ID, snap.Tick, len(snap.Diffs))
	return info, nil
}

// LoadSnapshot заменяет игру сохранённой. Сид берётся из сохранения.
func (s *Session) LoadSnapshot(ctx context.Context, id string) (SnapshotInfo, error) {
	if s.opts.Store == nil {
		return SnapshotInfo{}, ErrNoSnapshotStore
	}
	snap, err := s.opts.Store.Load(ctx, id)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("загрузка сохранения %s: %w", id, err)
	}

	g := New(s.opts.Config, s.opts.Noise(snap.Seed), snap.Seed)
	if err := g.Restore(snap); err != nil {
		return SnapshotInfo{}, err
	}

	s.mu.Lock()
	g.SetViewport(s.game.Viewport())
	s.game = g
	s.input = Input{}
	s.mu.Unlock()

	info := snap.Info()
	s.publishEvent(ctx, Event{Type: eventbus.TypeSnapshotLoaded, Priority: eventbus.PriorityNormal, Payload: info}, snap.Tick)
	logging.Info("📂 загружено сохранение %s (сид %d, кадр %d)", id, snap.Seed, snap.Tick)
	return info, nil
}

// ListSnapshots возвращает список сохранений
func (s *Session) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	if s.opts.Store == nil {
		return nil, ErrNoSnapshotStore
	}
	return s.opts.Store.List(ctx)
}

// hasBus сообщает, есть ли куда публиковать: своя шина сессии или шина процесса
func (s *Session) hasBus() bool {
	return s.opts.Bus != nil || eventbus.Default() != nil
}

func (s *Session) publish(ctx context.Context, report FrameReport) {
	if !s.hasBus() {
		return
	}
	for _, ev := range report.Events {
		s.publishEvent(ctx, ev, report.Tick)
	}
	if len(report.Cues) > 0 {
		s.publishEvent(ctx, Event{Type: eventbus.TypeCues, Priority: eventbus.PriorityLow, Payload: report.Cues}, report.Tick)
	}
}

func (s *Session) publishEvent(ctx context.Context, ev Event, tick uint64) {
	if !s.hasBus() {
		return
	}
	env, err := eventbus.NewEnvelope(s.id, ev.Type, ev.Priority, ev.Payload)
	if err != nil {
		logging.Warn("событие %s не упаковано: %v", ev.Type, err)
		return
	}
	env.CorrelationID = strconv.FormatUint(tick, 10)
	publish := eventbus.Publish
	if s.opts.Bus != nil {
		publish = s.opts.Bus.Publish
	}
	if err := publish(ctx, env); err != nil {
		logging.Warn("событие %s не опубликовано: %v", ev.Type, err)
	}
}
