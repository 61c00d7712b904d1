package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tilePayload struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"`
}

func TestNewEnvelope(t *testing.T) {
	ev, err := NewEnvelope("session-1", TypeTileDestroyed, PriorityNormal, tilePayload{X: 3, Y: 7, Kind: "brick"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "session-1", ev.Source)
	assert.Equal(t, TypeTileDestroyed, ev.EventType)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, time.UTC, ev.Timestamp.Location())

	var got tilePayload
	require.NoError(t, ev.Decode(&got))
	assert.Equal(t, tilePayload{X: 3, Y: 7, Kind: "brick"}, got)

	_, err = NewEnvelope("s", TypeGameOver, PriorityHigh, make(chan int))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.worm_killed", Subject(TypeWormKilled))
	assert.Equal(t, "events.*", subjectAll)
}

func TestMatchFilter(t *testing.T) {
	ev := &Envelope{EventType: TypeWormKilled, Source: "a"}

	assert.True(t, matchFilter(ev, Filter{}))
	assert.True(t, matchFilter(ev, Filter{Types: []string{TypeWormKilled}}))
	assert.False(t, matchFilter(ev, Filter{Types: []string{TypeGameOver}}))
	assert.False(t, matchFilter(ev, Filter{Sources: []string{"b"}}))
}

func TestMemoryBusDelivers(t *testing.T) {
	bus := NewMemoryBus(16)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 4)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeWormKilled}}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		got = append(got, ev.EventType)
		mu.Unlock()
		done <- struct{}{}
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: TypeGameOver}))
	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: TypeWormKilled}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("событие не доставлено")
	}

	mu.Lock()
	assert.Equal(t, []string{TypeWormKilled}, got)
	mu.Unlock()
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	calls := make(chan struct{}, 4)
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		calls <- struct{}{}
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: TypeGameOver}))

	select {
	case <-calls:
		t.Fatal("отписанный обработчик вызван")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryBusDropsLowPriorityWhenFull(t *testing.T) {
	// Шина без dispatchLoop: буфер никто не вычитывает.
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, 1),
		capacity:    1,
	}
	require.NoError(t, mb.Publish(context.Background(), &Envelope{Priority: PriorityLow}))
	require.NoError(t, mb.Publish(context.Background(), &Envelope{Priority: PriorityLow}))

	stats := mb.Metrics()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Equal(t, uint64(1), stats.Dropped)
	assert.Equal(t, 1, stats.InFlight)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := mb.Publish(ctx, &Envelope{Priority: PriorityCritical})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGlobalPublishWithoutBus(t *testing.T) {
	Init(nil)
	assert.Nil(t, Default())
	assert.NoError(t, Publish(context.Background(), &Envelope{}))
}

func TestGlobalPublishRoutesToBus(t *testing.T) {
	mb := NewMemoryBus(4)
	Init(mb)
	defer Init(nil)

	require.Same(t, mb, Default())
	require.NoError(t, Publish(context.Background(), &Envelope{EventType: TypeCues}))
	assert.Equal(t, uint64(1), mb.Metrics().Published)
}

func TestMetricsExporterRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(NewMemoryBus(1), reg)
	require.NotNil(t, me)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "eventbus_messages_inflight")
}
