package game

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/annel0/alien-planet/internal/eventbus"
	"github.com/annel0/alien-planet/internal/world/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBus синхронно запоминает опубликованные события
type recordingBus struct {
	mu     sync.Mutex
	events []*eventbus.Envelope
}

func (b *recordingBus) Publish(_ context.Context, ev *eventbus.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Subscribe(context.Context, eventbus.Filter, eventbus.Handler) (eventbus.Subscription, error) {
	return nil, errors.New("not supported")
}

func (b *recordingBus) Metrics() eventbus.Stats { return eventbus.Stats{} }

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.EventType)
	}
	return out
}

// memoryStore - хранилище сохранений в памяти
type memoryStore struct {
	snaps map[string]*Snapshot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snaps: make(map[string]*Snapshot)}
}

func (m *memoryStore) Save(_ context.Context, s *Snapshot) error {
	m.snaps[s.ID] = s
	return nil
}

func (m *memoryStore) Load(_ context.Context, id string) (*Snapshot, error) {
	s, ok := m.snaps[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (m *memoryStore) List(context.Context) ([]SnapshotInfo, error) {
	out := make([]SnapshotInfo, 0, len(m.snaps))
	for _, s := range m.snaps {
		out = append(out, s.Info())
	}
	return out, nil
}

func newTestSession(bus eventbus.EventBus, store SnapshotStore) *Session {
	return NewSession(Options{
		Config: testConfig(),
		Seed:   testSeed,
		Noise:  flatFactory,
		Bus:    bus,
		Store:  store,
	})
}

func TestSessionStartPublishesReset(t *testing.T) {
	bus := &recordingBus{}
	s := newTestSession(bus, nil)
	ctx := context.Background()

	r := s.Start(ctx)
	assert.Equal(t, StatePlaying, r.State)
	require.Contains(t, bus.types(), eventbus.TypeSessionReset)

	ev := bus.events[0]
	assert.Equal(t, s.ID(), ev.Source)
	var payload SessionReset
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, int64(testSeed), payload.Seed)
	assert.Equal(t, 2, payload.PowerBlocks)
}

func TestSessionFallsBackToProcessBus(t *testing.T) {
	bus := &recordingBus{}
	eventbus.Init(bus)
	defer eventbus.Init(nil)

	s := newTestSession(nil, nil)
	s.Start(context.Background())
	assert.Contains(t, bus.types(), eventbus.TypeSessionReset)

	own := &recordingBus{}
	other := newTestSession(own, nil)
	before := len(bus.types())
	other.Start(context.Background())
	assert.Contains(t, own.types(), eventbus.TypeSessionReset)
	assert.Len(t, bus.types(), before, "собственная шина сессии важнее шины процесса")
}

func TestSessionInputAndCues(t *testing.T) {
	bus := &recordingBus{}
	s := newTestSession(bus, nil)
	ctx := context.Background()
	s.Start(ctx)
	for i := 0; i < 90; i++ {
		s.Step(ctx)
	}

	s.SetInput(Input{Up: true, Zoom: 1})
	s.SetInput(Input{Up: true, Zoom: 2})
	r := s.Step(ctx)
	require.NotEmpty(t, r.Cues)
	assert.Contains(t, bus.types(), eventbus.TypeCues)

	info := s.Info()
	assert.InDelta(t, 1.3, info.Camera.Zoom, 1e-9, "шаги зума накапливаются между кадрами")
	assert.Equal(t, "playing", info.State.String())
	assert.Equal(t, int64(testSeed), info.Seed)

	s.Step(ctx)
	assert.InDelta(t, 1.3, s.Info().Camera.Zoom, 1e-9, "зум применяется один раз")
}

func TestSessionTiles(t *testing.T) {
	s := newTestSession(nil, nil)

	tiles, err := s.Tiles(40, 0, 45, 12)
	require.NoError(t, err)
	for _, tv := range tiles {
		assert.False(t, tv.Tile.IsEmpty())
		assert.GreaterOrEqual(t, tv.Y, 9, "над поверхностью пусто")
	}
	assert.NotEmpty(t, tiles)

	swapped, err := s.Tiles(45, 12, 40, 0)
	require.NoError(t, err)
	assert.Equal(t, tiles, swapped)

	_, err = s.Tiles(0, 0, MaxTileRegion, 10)
	assert.ErrorIs(t, err, ErrRegionTooLarge)
}

func TestSessionSnapshotsRequireStore(t *testing.T) {
	s := newTestSession(nil, nil)
	ctx := context.Background()

	_, err := s.SaveSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshotStore)
	_, err = s.LoadSnapshot(ctx, "x")
	assert.ErrorIs(t, err, ErrNoSnapshotStore)
	_, err = s.ListSnapshots(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshotStore)
}

func TestSessionSaveAndLoadSnapshot(t *testing.T) {
	bus := &recordingBus{}
	store := newMemoryStore()
	s := newTestSession(bus, store)
	ctx := context.Background()
	s.Start(ctx)
	for i := 0; i < 10; i++ {
		s.Step(ctx)
	}

	info, err := s.SaveSnapshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, s.ID(), info.SessionID)
	assert.Equal(t, uint64(10), info.Tick)
	assert.Contains(t, bus.types(), eventbus.TypeSnapshotSaved)

	for i := 0; i < 5; i++ {
		s.Step(ctx)
	}
	s.mu.Lock()
	s.game.inventory.Add(tile.Sand)
	s.mu.Unlock()

	loaded, err := s.LoadSnapshot(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, loaded.ID)
	assert.Equal(t, uint64(10), s.Info().Tick)
	assert.Empty(t, s.Info().Inventory)
	assert.Contains(t, bus.types(), eventbus.TypeSnapshotLoaded)

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.LoadSnapshot(ctx, "missing")
	assert.Error(t, err)
}

func TestSessionUpgradeSelection(t *testing.T) {
	bus := &recordingBus{}
	s := newTestSession(bus, nil)
	ctx := context.Background()
	s.Start(ctx)

	_, err := s.SelectUpgrade(ctx, 0)
	assert.ErrorIs(t, err, ErrNoUpgradeSelection)

	s.mu.Lock()
	s.game.openUpgradeMenu()
	s.mu.Unlock()

	menu, state := s.Upgrades()
	require.Equal(t, StateUpgradeSelection, state)
	require.Len(t, menu.Offers, 3)

	u, err := s.SelectUpgrade(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, menu.Offers[1].ID, u.ID)
	assert.Contains(t, bus.types(), eventbus.TypeUpgradeSelected)
	assert.Contains(t, bus.types(), eventbus.TypeUpgradeOffered)
}

func TestSessionRunStopsOnCancel(t *testing.T) {
	s := newTestSession(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 1000)
		close(done)
	}()
	cancel()
	<-done
}
