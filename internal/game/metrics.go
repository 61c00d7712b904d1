package game

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики игрового цикла.
//
// Метрики:
// * alien_planet_tiles_destroyed_total: counter
// * alien_planet_items_collected_total: counter
// * alien_planet_worms_spawned_total / worms_killed_total: counter
// * alien_planet_power_blocks_activated_total: counter
// * alien_planet_player_damage_total: counter
// * alien_planet_diff_store_tiles, worms_alive, flying_items: gauge
// * alien_planet_frame_duration_seconds: histogram
type Metrics struct {
	tilesDestroyed prometheus.Counter
	itemsCollected prometheus.Counter
	wormsSpawned   prometheus.Counter
	wormsKilled    prometheus.Counter
	powerActivated prometheus.Counter
	playerDamage   prometheus.Counter
	diffStoreTiles prometheus.Gauge
	wormsAlive     prometheus.Gauge
	flyingItems    prometheus.Gauge
	frameDuration  prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil: дефолтный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	const ns = "alien_planet"
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: name, Help: help})
	}

	m := &Metrics{
		tilesDestroyed: counter("tiles_destroyed_total", "Разрушено тайлов лазером."),
		itemsCollected: counter("items_collected_total", "Подобрано предметов."),
		wormsSpawned:   counter("worms_spawned_total", "Появилось червей."),
		wormsKilled:    counter("worms_killed_total", "Убито червей."),
		powerActivated: counter("power_blocks_activated_total", "Активировано power-блоков."),
		playerDamage:   counter("player_damage_total", "Суммарный урон игроку."),
		diffStoreTiles: gauge("diff_store_tiles", "Записей в хранилище изменений мира."),
		wormsAlive:     gauge("worms_alive", "Живых червей."),
		flyingItems:    gauge("flying_items", "Летящих предметов."),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "frame_duration_seconds",
			Help:      "Длительность кадра симуляции.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.016, 0.033, 0.1},
		}),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.tilesDestroyed, m.itemsCollected, m.wormsSpawned, m.wormsKilled,
		m.powerActivated, m.playerDamage, m.diffStoreTiles, m.wormsAlive,
		m.flyingItems, m.frameDuration,
	)
	return m
}

// Observe учитывает итоги кадра. Безопасен для nil.
func (m *Metrics) Observe(g *Game, r FrameReport, took time.Duration) {
	if m == nil {
		return
	}
	m.tilesDestroyed.Add(float64(r.TilesDestroyed))
	m.itemsCollected.Add(float64(r.ItemsCollected))
	m.wormsSpawned.Add(float64(r.Worms.Spawned))
	m.wormsKilled.Add(float64(r.Worms.Killed))
	m.powerActivated.Add(float64(r.PowerBlocksActivated))
	m.playerDamage.Add(r.Worms.PlayerDamage)

	m.diffStoreTiles.Set(float64(g.World().Diffs().Len()))
	m.wormsAlive.Set(float64(g.Worms().Len()))
	m.flyingItems.Set(float64(g.Items().Len()))
	m.frameDuration.Observe(took.Seconds())
}
