package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/annel0/sand-game/internal/api"
	"github.com/annel0/sand-game/internal/config"
	"github.com/annel0/sand-game/internal/logging"
	"github.com/annel0/sand-game/internal/observability"
	"github.com/annel0/sand-game/internal/physics"
	"github.com/annel0/sand-game/internal/sim"
	"github.com/annel0/sand-game/internal/vec"
	"github.com/annel0/sand-game/internal/world"
)

func main() {
	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск Sand Game Server — клеточная симуляция падающего песка...")
	logging.Debug("Инициализация системы логирования завершена")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if cfg == nil {
		logging.Info("Файл конфигурации не задан, используются значения по умолчанию")
		cfg = &config.Config{}
	}

	seed := cfg.World.GetSeed()
	tps := cfg.Sim.GetTPS()
	activationRadius := cfg.Sim.GetActivationRadius()
	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	metricsPort := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())

	logging.Info("📡 Конфигурация сервера: seed=%d, TPS=%d, REST API=%s, метрики=%s",
		seed, tps, restPort, metricsPort)

	// OpenTelemetry включается только при заданном OTLP-коллекторе
	var telemetryShutdown func(context.Context) error
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdown, err := observability.InitTelemetry(context.Background(), "sand-game")
		if err != nil {
			logging.Error("Ошибка инициализации OpenTelemetry: %v", err)
		} else {
			telemetryShutdown = shutdown
		}
	}

	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===

	// Создаем мир с генератором ландшафта
	logging.Debug("Создание мира...")
	genCfg := world.DefaultGeneratorConfig()
	if cfg.World.BaseHeight > 0 {
		genCfg.BaseHeight = cfg.World.BaseHeight
	}
	if cfg.World.Amplitude > 0 {
		genCfg.Amplitude = cfg.World.Amplitude
	}
	if cfg.World.TopSoilDepth > 0 {
		genCfg.TopSoilDepth = cfg.World.TopSoilDepth
	}
	if cfg.World.DirtDepth > 0 {
		genCfg.DirtDepth = cfg.World.DirtDepth
	}
	if cfg.World.StoneDepth > 0 {
		genCfg.StoneDepth = cfg.World.StoneDepth
	}
	gameWorld := world.NewWorld(world.NewGenerator(seed, genCfg))

	// Создаем физический движок
	logging.Debug("Создание физического движка...")
	physCfg := physics.Config{
		StaggerFactor: cfg.Physics.StaggerFactor,
		UpdateRadius:  cfg.Physics.UpdateRadius,
		Seed:          cfg.Physics.Seed,
		Validate:      cfg.Physics.Validate,
	}
	if physCfg.Seed == 0 {
		physCfg.Seed = seed
	}
	engine := physics.NewEngine(gameWorld, physCfg)

	// Создаем цикл симуляции вокруг точки фокуса
	logging.Debug("Создание цикла симуляции...")
	focus := vec.Vec2{X: cfg.Sim.FocusX, Y: cfg.Sim.FocusY}
	loop := sim.NewLoop(gameWorld, engine, tps, activationRadius, focus)

	// Конфигурация REST API
	apiConfig := api.IntegrationConfig{
		RestPort:    restPort,
		MetricsPort: metricsPort,
		World:       gameWorld,
		Engine:      engine,
		Loop:        loop,
	}

	// Создаем интеграцию REST API
	logging.Debug("Создание REST API интеграции...")
	apiIntegration, err := api.NewServerIntegration(apiConfig)
	if err != nil {
		logging.Error("❌ Ошибка создания REST API интеграции: %v", err)
		log.Fatalf("❌ Ошибка создания REST API интеграции: %v", err)
	}

	// Запускаем REST API сервер
	logging.Debug("Запуск REST API сервера...")
	if err := apiIntegration.Start(); err != nil {
		logging.Error("❌ Ошибка запуска REST API: %v", err)
		log.Fatalf("❌ Ошибка запуска REST API: %v", err)
	}

	// Запускаем цикл симуляции
	logging.Debug("Запуск цикла симуляции...")
	loop.Start()

	logging.Info("✅ Все сервисы запущены, симуляция работает")
	logging.Info("   🏜️  Симуляция: %d шагов/с, фокус (%d, %d), радиус активации %d чанков",
		tps, focus.X, focus.Y, activationRadius)
	logging.Info("   🌐 REST API: http://localhost%s", restPort)
	logging.Info("   📈 Метрики симуляции: http://localhost%s/metrics", metricsPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)
	logging.Debug("Сервер полностью инициализирован и работает")

	// Примеры использования REST API
	logging.Info("💡 Примеры использования REST API:")
	logging.Info("   curl http://localhost%s/health", restPort)
	logging.Info("   curl http://localhost%s/api/status", restPort)
	logging.Info("   curl -X POST http://localhost%s/api/tile -H 'Content-Type: application/json' -d '{\"x\":100,\"y\":10,\"material\":\"sand\"}'", restPort)
	logging.Info("   curl -X POST http://localhost%s/api/dig -H 'Content-Type: application/json' -d '{\"x\":100,\"y\":30,\"radius\":4}'", restPort)

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logging.Debug("Ожидание сигналов завершения...")

	// Ждем сигнала для завершения
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	logging.Debug("Остановка сервисов...")

	// Останавливаем цикл симуляции
	logging.Debug("Остановка цикла симуляции...")
	loop.Stop()

	// Останавливаем REST API
	logging.Debug("Остановка REST API...")
	if err := apiIntegration.Stop(); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	// Останавливаем телеметрию
	if telemetryShutdown != nil {
		if err := telemetryShutdown(context.Background()); err != nil {
			logging.Error("Ошибка остановки OpenTelemetry: %v", err)
		}
	}

	logging.Info("👋 Сервер успешно остановлен")
}
