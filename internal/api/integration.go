package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/annel0/sand-game/internal/logging"
	"github.com/annel0/sand-game/internal/physics"
	"github.com/annel0/sand-game/internal/sim"
	"github.com/annel0/sand-game/internal/world"
)

// ServerIntegration управляет жизненным циклом REST API и экспортера
// метрик симуляции
type ServerIntegration struct {
	restServer      *RestServer
	exporter        *sim.MetricsExporter
	exporterStarted bool
	metricsPort     string
	httpServer      *http.Server
	ctx             context.Context
	cancel          context.CancelFunc
}

// IntegrationConfig содержит конфигурацию для интеграции
type IntegrationConfig struct {
	// REST API настройки
	RestPort string

	// Порт экспортера метрик симуляции (":2112")
	MetricsPort string

	// Компоненты симуляции
	World  *world.World
	Engine *physics.Engine
	Loop   *sim.Loop
}

// NewServerIntegration создает интеграцию REST API с симуляцией
func NewServerIntegration(config IntegrationConfig) (*ServerIntegration, error) {
	if config.World == nil || config.Engine == nil {
		return nil, fmt.Errorf("мир и движок обязательны для REST API")
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Создаем REST сервер
	restServer := NewRestServer(Config{
		Port:   config.RestPort,
		World:  config.World,
		Engine: config.Engine,
		Loop:   config.Loop,
	})

	integration := &ServerIntegration{
		restServer:  restServer,
		metricsPort: config.MetricsPort,
		ctx:         ctx,
		cancel:      cancel,
	}

	// Экспортер метрик требует цикла симуляции
	if config.Loop != nil {
		integration.exporter = sim.NewMetricsExporter(config.Loop)
	}

	return integration, nil
}

// Start запускает REST API сервер и экспортер метрик
func (si *ServerIntegration) Start() error {
	logging.Info("Запуск REST API сервера на порту %s", si.restServer.port)

	// Создаем HTTP сервер для graceful shutdown
	si.httpServer = &http.Server{
		Addr:    si.restServer.port,
		Handler: si.restServer.router,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		if err := si.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	// Запускаем экспортер метрик симуляции
	if si.exporter != nil && si.metricsPort != "" {
		si.exporter.StartHTTP(si.metricsPort)
		si.exporterStarted = true
	}

	logging.Info("✅ REST API сервер запущен на http://localhost%s", si.restServer.port)
	logging.Info("📋 Доступные эндпоинты:")
	logging.Info("   GET  /health         - Проверка состояния")
	logging.Info("   GET  /api/status     - Состояние симуляции и сервера")
	logging.Info("   GET  /api/tile       - Материал тайла (?x=&y=)")
	logging.Info("   POST /api/tile       - Установка тайла")
	logging.Info("   POST /api/dig        - Копание круглой области")
	logging.Info("   GET  /api/chunk      - Клетки чанка (?cx=&cy=)")
	logging.Info("   POST /api/focus      - Перемещение точки фокуса")
	logging.Info("   GET  /api/collision  - Запросы коллизий (?x=&y=&w=&h=)")
	logging.Info("   GET  /metrics        - Prometheus метрики")

	return nil
}

// Stop останавливает REST API сервер и экспортер метрик
func (si *ServerIntegration) Stop() error {
	logging.Info("🛑 Остановка REST API сервера...")

	// Устанавливаем таймаут для graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Останавливаем HTTP сервер
	if si.httpServer != nil {
		if err := si.httpServer.Shutdown(ctx); err != nil {
			logging.Error("❌ Ошибка при остановке HTTP сервера: %v", err)
			return err
		}
	}

	// Останавливаем экспортер метрик
	if si.exporter != nil && si.exporterStarted {
		si.exporter.Stop()
	}

	// Отменяем контекст
	si.cancel()

	logging.Info("✅ REST API сервер остановлен")
	return nil
}

// GetRestServer возвращает REST сервер (для дополнительной настройки)
func (si *ServerIntegration) GetRestServer() *RestServer {
	return si.restServer
}

// IsHealthy проверяет состояние интеграции
func (si *ServerIntegration) IsHealthy() bool {
	// Проверяем, что контекст не отменен
	select {
	case <-si.ctx.Done():
		return false
	default:
	}

	return si.restServer != nil
}
