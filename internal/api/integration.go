package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/annel0/alien-planet/internal/logging"
)

// ServerIntegration запускает REST API в отдельной горутине и останавливает его
type ServerIntegration struct {
	restServer *RestServer
	httpServer *http.Server
	listener   net.Listener
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewServerIntegration оборачивает REST сервер для запуска вместе с игровым циклом
func NewServerIntegration(restServer *RestServer) *ServerIntegration {
	ctx, cancel := context.WithCancel(context.Background())
	return &ServerIntegration{
		restServer: restServer,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start открывает порт и начинает обслуживать запросы
func (si *ServerIntegration) Start() error {
	ln, err := net.Listen("tcp", si.restServer.port)
	if err != nil {
		return err
	}
	si.listener = ln

	si.httpServer = &http.Server{
		Handler:           si.restServer.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := si.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ ошибка REST API сервера: %v", err)
		}
	}()

	logging.Info("✅ REST API сервер запущен на %s", ln.Addr())
	logging.Info("📋 эндпоинты: /health, /api/session, /api/tiles, /api/enemies, /api/radar, /api/upgrades, /api/snapshots")
	return nil
}

// Addr возвращает фактический адрес после Start
func (si *ServerIntegration) Addr() string {
	if si.listener == nil {
		return ""
	}
	return si.listener.Addr().String()
}

// Stop останавливает REST API сервер
func (si *ServerIntegration) Stop() error {
	logging.Info("🛑 остановка REST API сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if si.httpServer != nil {
		if err := si.httpServer.Shutdown(ctx); err != nil {
			logging.Error("❌ ошибка при остановке HTTP сервера: %v", err)
			return err
		}
	}
	if si.restServer.webhooks != nil {
		si.restServer.webhooks.Close()
	}

	si.cancel()
	logging.Info("✅ REST API сервер остановлен")
	return nil
}

// GetRestServer возвращает REST сервер (для дополнительной настройки)
func (si *ServerIntegration) GetRestServer() *RestServer {
	return si.restServer
}

// IsHealthy проверяет, что сервер не остановлен
func (si *ServerIntegration) IsHealthy() bool {
	select {
	case <-si.ctx.Done():
		return false
	default:
		return si.httpServer != nil
	}
}
