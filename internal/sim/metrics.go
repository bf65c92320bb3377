package sim

import (
	"net/http"
	"time"

	"github.com/annel0/sand-game/internal/logging"
	"github.com/annel0/sand-game/internal/physics"
	"github.com/annel0/sand-game/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsExporter инкапсулирует Prometheus-метрики симуляции и
// периодически обновляет их. Движок и мир не знают о Prometheus:
// экспортер опирается только на их снимки статистики.
type MetricsExporter struct {
	loop *Loop
	quit chan struct{}
	done chan struct{}
	// Prometheus metrics
	stepsTotal      prometheus.Counter
	movedTotal      prometheus.Counter
	candidatesTotal prometheus.Counter
	generatedTotal  prometheus.Counter
	activeChunks    prometheus.Gauge
	residentChunks  prometheus.Gauge
	stepsPerSecond  prometheus.Gauge
	stepDurationMs  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер, но не запускает HTTP-сервер.
func NewMetricsExporter(loop *Loop) *MetricsExporter {
	me := &MetricsExporter{
		loop: loop,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		stepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sandgame",
			Name:      "physics_steps_total",
			Help:      "Общее число выполненных шагов физики.",
		}),
		movedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sandgame",
			Name:      "cells_moved_total",
			Help:      "Общее число перемещений клеток.",
		}),
		candidatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sandgame",
			Name:      "step_candidates_total",
			Help:      "Общее число рассмотренных клеток-кандидатов.",
		}),
		generatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sandgame",
			Name:      "chunks_generated_total",
			Help:      "Общее число сгенерированных чанков.",
		}),
		activeChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sandgame",
			Name:      "active_chunks",
			Help:      "Число активных чанков вокруг точки фокуса.",
		}),
		residentChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sandgame",
			Name:      "resident_chunks",
			Help:      "Число чанков, находящихся в памяти.",
		}),
		stepsPerSecond: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sandgame",
			Name:      "steps_per_second",
			Help:      "Фактическая частота шагов за последнюю секунду.",
		}),
		stepDurationMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sandgame",
			Name:      "step_duration_ms",
			Help:      "Средняя длительность шага за последнюю секунду в миллисекундах.",
		}),
	}

	// Регистрируем метрики в глобальном регистре Prometheus.
	prometheus.MustRegister(
		me.stepsTotal, me.movedTotal, me.candidatesTotal, me.generatedTotal,
		me.activeChunks, me.residentChunks, me.stepsPerSecond, me.stepDurationMs,
	)
	return me
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func (m *MetricsExporter) StartHTTP(addr string) {
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go m.loopUpdate()
}

// Stop останавливает обновление метрик. HTTP-сервер при этом не завершается
// (для упрощения – можно запустить на отдельном порте и убить процесс целиком).
func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loopUpdate() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	defer close(m.done)

	// Для коррекции Counter нужно хранить прошлые значения и прибавлять дельту.
	var prevEngine physics.Stats
	var prevWorld world.Stats

	for {
		select {
		case <-ticker.C:
			es := m.loop.engine.GetStats()
			ws := m.loop.world.GetStats()
			snap := m.loop.GetSnapshot()

			// Вычисляем приращения и обновляем counters.
			if d := es.Steps - prevEngine.Steps; d > 0 {
				m.stepsTotal.Add(float64(d))
			}
			if d := es.MovedCells - prevEngine.MovedCells; d > 0 {
				m.movedTotal.Add(float64(d))
			}
			if d := es.Candidates - prevEngine.Candidates; d > 0 {
				m.candidatesTotal.Add(float64(d))
			}
			if d := ws.GeneratedTotal - prevWorld.GeneratedTotal; d > 0 {
				m.generatedTotal.Add(float64(d))
			}

			m.activeChunks.Set(float64(ws.ActiveChunks))
			m.residentChunks.Set(float64(ws.ResidentChunks))
			m.stepsPerSecond.Set(float64(snap.StepsPerSecond))
			m.stepDurationMs.Set(snap.AvgStepMs)

			prevEngine = es
			prevWorld = ws
		case <-m.quit:
			return
		}
	}
}
