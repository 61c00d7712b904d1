package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/annel0/alien-planet/internal/game"
	"github.com/annel0/alien-planet/internal/middleware"
	"github.com/annel0/alien-planet/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет REST API игровой сессии
type RestServer struct {
	router   *gin.Engine
	session  *game.Session
	port     string
	metrics  *ServerMetrics
	webhooks *OutboundWebhookManager
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string                  // адрес для запуска сервера, например ":8088"
	Session  *game.Session           // обслуживаемая сессия
	Webhooks *OutboundWebhookManager // nil: маршруты /api/webhooks не подключаются
	Registry *prometheus.Registry    // nil: дефолтный регистр Prometheus
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("rest_api"))

	loggerMw := middleware.NewRequestLogger("/health", "/api/session", "/api/tiles", "/api/enemies", "/api/radar")
	router.Use(loggerMw.Handler())

	var (
		reg      prometheus.Registerer
		gatherer prometheus.Gatherer
	)
	if config.Registry != nil {
		reg, gatherer = config.Registry, config.Registry
	}
	promMw := middleware.NewPrometheusMiddleware("rest_api", reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gatherer)

	server := &RestServer{
		router:   router,
		session:  config.Session,
		port:     config.Port,
		metrics:  NewServerMetrics(),
		webhooks: config.Webhooks,
	}

	server.setupRoutes()

	return server
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/session", rs.handleSession)
		api.GET("/server", rs.handleServerInfo)
		api.POST("/reset", rs.handleReset)

		api.GET("/tiles", rs.handleTiles)
		api.GET("/city", rs.handleCity)
		api.GET("/enemies", rs.handleEnemies)
		api.GET("/items", rs.handleItems)
		api.GET("/power-blocks", rs.handlePowerBlocks)
		api.GET("/radar", rs.handleRadar)

		api.POST("/input", rs.handleInput)
		api.POST("/viewport", rs.handleViewport)

		api.GET("/upgrades", rs.handleUpgrades)
		api.POST("/upgrades/skip", rs.handleSkipUpgrade)
		api.POST("/upgrades/:index", rs.handleSelectUpgrade)

		api.GET("/snapshots", rs.handleListSnapshots)
		api.POST("/snapshots", rs.handleSaveSnapshot)
		api.POST("/snapshots/:id/load", rs.handleLoadSnapshot)
	}

	if rs.webhooks != nil {
		hooks := api.Group("/webhooks")
		hooks.GET("", rs.handleGetWebhooks)
		hooks.POST("", rs.handleCreateWebhook)
		hooks.DELETE("/:id", rs.handleDeleteWebhook)
		hooks.GET("/events", rs.handleGetWebhookEventTypes)
	}
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "ok", Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, GenericResponse{Success: false, Message: message})
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"session": rs.session.ID(),
		"uptime":  rs.metrics.GetUptime(),
	})
}

func (rs *RestServer) handleSession(c *gin.Context) {
	ok(c, rs.session.Info())
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	ok(c, rs.metrics.Collect())
}

func (rs *RestServer) handleReset(c *gin.Context) {
	report := rs.session.Start(c.Request.Context())
	ok(c, gin.H{"state": report.State, "tick": report.Tick})
}

// handleTiles отдаёт непустые тайлы прямоугольника x0,y0: x1,y1
func (rs *RestServer) handleTiles(c *gin.Context) {
	var coords [4]int
	for i, name := range []string{"x0", "y0", "x1", "y1"} {
		v, err := strconv.Atoi(c.Query(name))
		if err != nil {
			fail(c, http.StatusBadRequest, "параметр "+name+" должен быть целым числом")
			return
		}
		coords[i] = v
	}

	tiles, err := rs.session.Tiles(coords[0], coords[1], coords[2], coords[3])
	if errors.Is(err, game.ErrRegionTooLarge) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if tiles == nil {
		tiles = []game.TileView{}
	}
	ok(c, tiles)
}

func (rs *RestServer) handleCity(c *gin.Context) {
	ok(c, rs.session.City())
}

func (rs *RestServer) handleEnemies(c *gin.Context) {
	ok(c, rs.session.Worms())
}

func (rs *RestServer) handleItems(c *gin.Context) {
	ok(c, rs.session.Items())
}

func (rs *RestServer) handlePowerBlocks(c *gin.Context) {
	ok(c, rs.session.PowerBlocks())
}

func (rs *RestServer) handleRadar(c *gin.Context) {
	ok(c, rs.session.Radar())
}

// handleInput принимает состояние управления для следующих кадров
func (rs *RestServer) handleInput(c *gin.Context) {
	var in game.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	rs.session.SetInput(in)
	ok(c, nil)
}

func (rs *RestServer) handleViewport(c *gin.Context) {
	var v game.Viewport
	if err := c.ShouldBindJSON(&v); err != nil || v.Width <= 0 || v.Height <= 0 {
		fail(c, http.StatusBadRequest, "размеры холста должны быть положительными")
		return
	}
	rs.session.SetViewport(v)
	ok(c, v)
}

func (rs *RestServer) handleUpgrades(c *gin.Context) {
	menu, state := rs.session.Upgrades()
	ok(c, gin.H{"state": state, "menu": menu})
}

func (rs *RestServer) handleSelectUpgrade(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, http.StatusBadRequest, "номер улучшения должен быть целым числом")
		return
	}

	u, err := rs.session.SelectUpgrade(c.Request.Context(), index)
	if err != nil {
		rs.upgradeError(c, err)
		return
	}
	ok(c, u)
}

func (rs *RestServer) handleSkipUpgrade(c *gin.Context) {
	if err := rs.session.SkipUpgrade(); err != nil {
		rs.upgradeError(c, err)
		return
	}
	ok(c, nil)
}

func (rs *RestServer) upgradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrNoUpgradeSelection):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrBadUpgradeIndex):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}

func (rs *RestServer) handleListSnapshots(c *gin.Context) {
	list, err := rs.session.ListSnapshots(c.Request.Context())
	if err != nil {
		rs.snapshotError(c, err)
		return
	}
	if list == nil {
		list = []game.SnapshotInfo{}
	}
	ok(c, list)
}

func (rs *RestServer) handleSaveSnapshot(c *gin.Context) {
	info, err := rs.session.SaveSnapshot(c.Request.Context())
	if err != nil {
		rs.snapshotError(c, err)
		return
	}
	c.JSON(http.StatusCreated, GenericResponse{Success: true, Message: "сохранено", Data: info})
}

func (rs *RestServer) handleLoadSnapshot(c *gin.Context) {
	info, err := rs.session.LoadSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		rs.snapshotError(c, err)
		return
	}
	ok(c, info)
}

func (rs *RestServer) snapshotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrNoSnapshotStore):
		fail(c, http.StatusNotImplemented, err.Error())
	case errors.Is(err, storage.ErrSnapshotNotFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}

func (rs *RestServer) handleGetWebhooks(c *gin.Context) {
	ok(c, rs.webhooks.GetWebhooks())
}

func (rs *RestServer) handleCreateWebhook(c *gin.Context) {
	var hook OutboundWebhook
	if err := c.ShouldBindJSON(&hook); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса: "+err.Error())
		return
	}
	c.JSON(http.StatusCreated, GenericResponse{Success: true, Message: "webhook создан", Data: rs.webhooks.AddWebhook(hook)})
}

func (rs *RestServer) handleDeleteWebhook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Неверный ID webhook'а")
		return
	}
	if !rs.webhooks.DeleteWebhook(id) {
		fail(c, http.StatusNotFound, "webhook не найден")
		return
	}
	ok(c, nil)
}

func (rs *RestServer) handleGetWebhookEventTypes(c *gin.Context) {
	ok(c, rs.webhooks.GetEventTypes())
}
