package config

import (
	"io/ioutil"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симуляции.
// Все секции необязательны, нулевые значения означают дефолты.

type Config struct {
	World   WorldConfig   `yaml:"world"`
	Physics PhysicsConfig `yaml:"physics"`
	Server  ServerConfig  `yaml:"server"`
	Sim     SimConfig     `yaml:"sim"`
}

// WorldConfig задаёт сид и параметры генерации ландшафта
type WorldConfig struct {
	Seed         int64 `yaml:"seed"`
	BaseHeight   int   `yaml:"base_height"`
	Amplitude    int   `yaml:"amplitude"`
	TopSoilDepth int   `yaml:"top_soil_depth"`
	DirtDepth    int   `yaml:"dirt_depth"`
	StoneDepth   int   `yaml:"stone_depth"`
}

// PhysicsConfig задаёт параметры клеточного автомата
type PhysicsConfig struct {
	StaggerFactor int     `yaml:"stagger_factor"`
	UpdateRadius  float64 `yaml:"update_radius"`
	Seed          int64   `yaml:"seed"`
	Validate      bool    `yaml:"validate"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// SimConfig задаёт частоту шагов и точку фокуса симуляции
type SimConfig struct {
	TPS              int `yaml:"tps"`
	FocusX           int `yaml:"focus_x"`
	FocusY           int `yaml:"focus_y"`
	ActivationRadius int `yaml:"activation_radius"`
}

// GetSeed возвращает сид мира с приоритетом: config -> env -> default
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != 0 {
		return w.Seed
	}
	if envVal := os.Getenv("SAND_WORLD_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}
	return 1337
}

// GetTPS возвращает частоту шагов симуляции
func (s *SimConfig) GetTPS() int {
	if s.TPS > 0 {
		return s.TPS
	}
	return 60
}

// GetActivationRadius возвращает радиус активации чанков вокруг фокуса
func (s *SimConfig) GetActivationRadius() int {
	if s.ActivationRadius > 0 {
		return s.ActivationRadius
	}
	return 2
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "SAND_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "SAND_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV SAND_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SAND_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
