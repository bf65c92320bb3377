package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/sand-game/internal/logging"
	"github.com/annel0/sand-game/internal/middleware"
	"github.com/annel0/sand-game/internal/physics"
	"github.com/annel0/sand-game/internal/sim"
	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world"
	"github.com/annel0/sand-game/internal/world/material"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет REST API сервер симуляции
type RestServer struct {
	router     *gin.Engine
	world      *world.World
	engine     *physics.Engine
	loop       *sim.Loop
	port       string
	runID      string
	metrics    *ServerMetrics
	compressor *zstd.Encoder
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port   string          // порт для запуска сервера
	World  *world.World    // мир симуляции
	Engine *physics.Engine // физический движок
	Loop   *sim.Loop       // цикл симуляции
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	otelRouter := otelgin.Middleware("sand_api")
	router.Use(otelRouter)

	promMw := middleware.NewPrometheusMiddleware("sand_api")
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	// Компрессор чанков переиспользуется всеми запросами
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		logging.Error("Ошибка создания zstd компрессора: %v", err)
	}

	server := &RestServer{
		router:     router,
		world:      config.World,
		engine:     config.Engine,
		loop:       config.Loop,
		port:       config.Port,
		runID:      uuid.NewString(), // идентификатор запуска для различения перезапусков
		metrics:    NewServerMetrics(),
		compressor: compressor,
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Группа API
	api := rs.router.Group("/api")
	{
		api.GET("/status", rs.handleStatus)
		api.GET("/tile", rs.handleGetTile)
		api.POST("/tile", rs.handleSetTile)
		api.POST("/dig", rs.handleDig)
		api.GET("/chunk", rs.handleGetChunk)
		api.POST("/focus", rs.handleSetFocus)
		api.GET("/collision", rs.handleCollision)
	}

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// SetTileRequest представляет запрос на установку тайла
type SetTileRequest struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Material string `json:"material" binding:"required"`
}

// DigRequest представляет запрос на копание
type DigRequest struct {
	X          int  `json:"x"`
	Y          int  `json:"y"`
	Radius     int  `json:"radius"`
	DestroyAll bool `json:"destroy_all"`
}

// FocusRequest представляет запрос на перемещение точки фокуса
type FocusRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// handleStatus возвращает состояние симуляции и сервера
func (rs *RestServer) handleStatus(c *gin.Context) {
	stats := make(map[string]interface{})

	// Статистика мира
	ws := rs.world.GetStats()
	stats["world"] = map[string]interface{}{
		"seed":             rs.world.Seed(),
		"resident_chunks":  ws.ResidentChunks,
		"active_chunks":    ws.ActiveChunks,
		"generated_chunks": ws.GeneratedTotal,
	}

	// Статистика движка
	es := rs.engine.GetStats()
	stats["physics"] = map[string]interface{}{
		"steps":        es.Steps,
		"moved_cells":  es.MovedCells,
		"candidates":   es.Candidates,
		"last_step_ms": float64(es.LastStepTime.Microseconds()) / 1000.0,
	}

	// Состояние цикла симуляции
	if rs.loop != nil {
		stats["sim"] = rs.loop.GetSnapshot()
	}

	// Метрики сервера
	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()
	systemCPU, _ := rs.metrics.GetSystemCPUUsage()

	stats["server"] = map[string]interface{}{
		"name":        "Sand Game Server",
		"version":     "v0.1.0",
		"run_id":      rs.runID,
		"status":      "running",
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.2f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
		"system_cpu":  fmt.Sprintf("%.2f", systemCPU),
		"server_time": time.Now().Unix(),
	}

	// Детальная статистика памяти
	stats["memory_details"] = rs.metrics.GetDetailedMemoryStats()

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

// handleGetTile возвращает материал тайла по мировым координатам
func (rs *RestServer) handleGetTile(c *gin.Context) {
	x, errX := strconv.Atoi(c.Query("x"))
	y, errY := strconv.Atoi(c.Query("y"))
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Параметры x и y обязательны и должны быть целыми",
		})
		return
	}

	id := rs.world.GetTile(vec.Vec2{X: x, Y: y})
	props := material.Props(id)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тайл получен",
		Data: map[string]interface{}{
			"x":        x,
			"y":        y,
			"id":       uint8(id),
			"material": props.Name,
			"liquid":   material.IsLiquid(id),
			"falls":    props.Falls,
			"hardness": props.Hardness,
		},
	})
}

// handleSetTile устанавливает материал тайла
func (rs *RestServer) handleSetTile(c *gin.Context) {
	var req SetTileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	id, ok := material.ByName(req.Material)
	if !ok {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: fmt.Sprintf("Неизвестный материал: %s", req.Material),
		})
		return
	}
	if id == material.Void {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Материал void нельзя размещать в мире",
		})
		return
	}

	rs.world.SetTile(vec.Vec2{X: req.X, Y: req.Y}, id)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тайл установлен",
		Data: map[string]interface{}{
			"x":        req.X,
			"y":        req.Y,
			"material": req.Material,
		},
	})
}

// handleDig выкапывает круглую область
func (rs *RestServer) handleDig(c *gin.Context) {
	var req DigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	// Ограничиваем радиус разумными пределами
	if req.Radius < 1 {
		req.Radius = 1
	}
	if req.Radius > 32 {
		req.Radius = 32
	}

	removed := rs.engine.Dig(vec.Vec2{X: req.X, Y: req.Y}, req.Radius, req.DestroyAll)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Область выкопана",
		Data: map[string]interface{}{
			"x":           req.X,
			"y":           req.Y,
			"radius":      req.Radius,
			"destroy_all": req.DestroyAll,
			"removed":     removed,
		},
	})
}

// handleGetChunk возвращает клетки чанка в сжатом виде
func (rs *RestServer) handleGetChunk(c *gin.Context) {
	cx, errX := strconv.Atoi(c.Query("cx"))
	cy, errY := strconv.Atoi(c.Query("cy"))
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Параметры cx и cy обязательны и должны быть целыми",
		})
		return
	}

	logging.LogChunkRequest(c.ClientIP(), cx, cy)

	chunk := rs.world.GetChunk(vec.Vec2{X: cx, Y: cy})
	raw := chunk.EncodeCells()

	// Применяем сжатие если компрессор доступен
	encoding := "base64"
	data := raw
	if rs.compressor != nil {
		data = rs.compressor.EncodeAll(raw, nil)
		encoding = "zstd+base64"
	}

	ratio := 1.0
	if len(data) > 0 {
		ratio = float64(len(raw)) / float64(len(data))
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Чанк получен",
		Data: map[string]interface{}{
			"cx":               cx,
			"cy":               cy,
			"size":             world.ChunkSize,
			"encoding":         encoding,
			"cells":            base64.StdEncoding.EncodeToString(data),
			"raw_bytes":        len(raw),
			"compressed_bytes": len(data),
			"ratio":            fmt.Sprintf("%.2f", ratio),
		},
	})
}

// handleSetFocus перемещает точку фокуса симуляции
func (rs *RestServer) handleSetFocus(c *gin.Context) {
	var req FocusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	if rs.loop == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Цикл симуляции недоступен",
		})
		return
	}

	rs.loop.SetFocus(vec.Vec2{X: req.X, Y: req.Y})

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Фокус перемещён",
		Data: map[string]interface{}{
			"x": req.X,
			"y": req.Y,
		},
	})
}

// handleCollision возвращает результаты запросов коллизий для области
func (rs *RestServer) handleCollision(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Параметры x и y обязательны и должны быть числами",
		})
		return
	}

	w, _ := strconv.Atoi(c.DefaultQuery("w", "2"))
	h, _ := strconv.Atoi(c.DefaultQuery("h", "2"))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	pos := vec.Vec2Float{X: x, Y: y}
	inLiquid, dominant := rs.engine.IsInLiquid(pos, w, h)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Коллизии рассчитаны",
		Data: map[string]interface{}{
			"x":         x,
			"y":         y,
			"w":         w,
			"h":         h,
			"collision": rs.engine.CheckCollision(pos, w, h),
			"density":   rs.engine.CollisionDensity(pos, w, h),
			"feet":      rs.engine.CheckFeetCollision(pos, w),
			"in_liquid": inLiquid,
			"liquid":    dominant.String(),
		},
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер
func (rs *RestServer) Start() error {
	return rs.router.Run(rs.port)
}

// Stop останавливает REST сервер (заглушка для graceful shutdown)
func (rs *RestServer) Stop() error {
	// Реальный graceful shutdown выполняет ServerIntegration
	return nil
}
