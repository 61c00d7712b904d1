package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/alien-planet/internal/api"
	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/eventbus"
	"github.com/annel0/alien-planet/internal/game"
	"github.com/annel0/alien-planet/internal/logging"
	"github.com/annel0/alien-planet/internal/observability"
	"github.com/annel0/alien-planet/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $GAME_CONFIG)")
	seed := flag.Int64("seed", 0, "сид мира (0 — из конфига или случайный)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := initLogging(cfg.Logging); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🪐 Запуск Alien Planet: REST=%d, metrics=%d, %d кадров/с",
		cfg.Server.GetRESTPort(), cfg.Server.GetMetricsPort(), cfg.Server.TickRate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ телеметрия не запущена: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}
	defer shutdownTelemetry(context.Background())

	// === ШИНА СОБЫТИЙ ===
	bus, closeBus := newEventBus(cfg.EventBus)
	defer closeBus()
	eventbus.Init(bus)
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ LoggingListener не подключён: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, nil)
	exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))
	defer exporter.Stop()

	// === ХРАНИЛИЩЕ СОХРАНЕНИЙ ===
	var store game.SnapshotStore = storage.NewMemorySnapshotStore()
	if cfg.Storage.Enabled {
		badgerStore, err := storage.NewSnapshotStorage(cfg.Storage.Path)
		if err != nil {
			logging.GetStorageLogger().Error("❌ не удалось открыть хранилище, сохранения только в памяти: %v", err)
		} else {
			defer badgerStore.Close()
			store = badgerStore
		}
	}

	// === СЕССИЯ ===
	session := game.NewSession(game.Options{
		Config:  &cfg.Game,
		Seed:    *seed,
		Metrics: game.NewMetrics(nil),
		Store:   store,
	})

	// === REST API ===
	hooks := api.NewOutboundWebhookManager(session.ID())
	if err := hooks.Attach(ctx, bus); err != nil {
		logging.Warn("⚠️ webhook'и отключены: %v", err)
	}
	restServer := api.NewRestServer(api.Config{
		Port:     fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Session:  session,
		Webhooks: hooks,
	})
	integration := api.NewServerIntegration(restServer)
	if err := integration.Start(); err != nil {
		logging.GetAPILogger().Error("❌ REST API не запущен: %v", err)
		return
	}

	// === ИГРОВОЙ ЦИКЛ ===
	loopDone := make(chan struct{})
	go func() {
		session.Run(ctx, cfg.Server.TickRate)
		close(loopDone)
	}()

	logging.Info("✅ Сервер запущен, сессия %s. Ctrl+C для остановки.", session.ID())
	<-ctx.Done()
	<-loopDone

	logging.Info("🛑 Получен сигнал завершения...")
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cfg.Storage.Enabled {
		if info, err := session.SaveSnapshot(saveCtx); err != nil {
			logging.GetStorageLogger().Error("❌ сохранение при выходе не удалось: %v", err)
		} else {
			logging.GetStorageLogger().Info("💾 сессия сохранена: %s (кадр %d)", info.ID, info.Tick)
		}
	}

	if err := integration.Stop(); err != nil {
		logging.GetAPILogger().Error("❌ ошибка остановки REST API: %v", err)
	}
	logging.Info("✅ Сервер остановлен")
}

// initLogging настраивает логгеры компонентов по секции logging.
// Логгер "server" становится глобальным.
func initLogging(cfg config.LoggingConfig) error {
	if cfg.Dir != "" {
		logging.SetLogDir(cfg.Dir)
	}
	consoleLevel, err := logging.ParseLevel(cfg.ConsoleLevel)
	if err != nil {
		return err
	}
	fileLevel, err := logging.ParseLevel(cfg.FileLevel)
	if err != nil {
		return err
	}

	lm := logging.GetLoggerManager()
	logger, err := lm.GetLogger("server")
	if err != nil {
		return err
	}
	logging.SetDefaultLogger(logger)

	logging.GetStorageLogger()
	logging.GetAPILogger()
	for _, component := range lm.ListComponents() {
		if err := lm.SetLogLevel(component, consoleLevel, fileLevel); err != nil {
			return err
		}
	}
	return nil
}

// newEventBus подключает NATS JetStream, если задан URL, иначе создаёт шину в памяти
func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, func()) {
	if cfg.URL != "" {
		js, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
		if err == nil {
			logging.Info("📨 EventBus: NATS JetStream %s, стрим %s", cfg.URL, cfg.Stream)
			return js, func() {
				if err := js.Close(); err != nil {
					logging.Warn("закрытие NATS: %v", err)
				}
			}
		}
		logging.Warn("⚠️ NATS недоступен (%v), используется шина в памяти", err)
	}
	logging.Info("📨 EventBus: in-memory, буфер %d", cfg.Buffer)
	return eventbus.NewMemoryBus(cfg.Buffer), func() {}
}
