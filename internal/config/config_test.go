package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoConfig(t *testing.T) {
	t.Setenv("SAND_CONFIG", "")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Nil(t, cfg, "Без пути и ENV конфиг не загружается")
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `world:
  seed: 42
  base_height: 10
  amplitude: 30
physics:
  stagger_factor: 2
  update_radius: 64.5
server:
  rest_port: 9090
sim:
  tps: 30
  focus_x: 128
  activation_radius: 3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 10, cfg.World.BaseHeight)
	assert.Equal(t, 30, cfg.World.Amplitude)
	assert.Equal(t, 2, cfg.Physics.StaggerFactor)
	assert.Equal(t, 64.5, cfg.Physics.UpdateRadius)
	assert.Equal(t, 9090, cfg.Server.RESTPort)
	assert.Equal(t, 30, cfg.Sim.TPS)
	assert.Equal(t, 128, cfg.Sim.FocusX)
	assert.Equal(t, 3, cfg.Sim.ActivationRadius)
}

func TestLoad_FromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  seed: 7\n"), 0644))
	t.Setenv("SAND_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, int64(7), cfg.World.Seed)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/config.yml")
	assert.Error(t, err, "Отсутствующий файл должен давать ошибку")

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("world: [broken"), 0644))
	_, err = Load(path)
	assert.Error(t, err, "Битый YAML должен давать ошибку")
}

func TestServerConfig_PortFallbacks(t *testing.T) {
	t.Setenv("SAND_REST_PORT", "")
	t.Setenv("SAND_METRICS_PORT", "")

	// Значение из конфига имеет приоритет
	s := ServerConfig{RESTPort: 9999}
	assert.Equal(t, 9999, s.GetRESTPort())

	// Нулевой порт берётся из ENV
	s = ServerConfig{}
	t.Setenv("SAND_REST_PORT", "7070")
	assert.Equal(t, 7070, s.GetRESTPort())

	// Без конфига и ENV — дефолт
	assert.Equal(t, 2112, s.GetMetricsPort())

	// Мусор в ENV игнорируется
	t.Setenv("SAND_METRICS_PORT", "not-a-port")
	assert.Equal(t, 2112, s.GetMetricsPort())
}

func TestWorldConfig_SeedFallback(t *testing.T) {
	t.Setenv("SAND_WORLD_SEED", "")

	w := WorldConfig{Seed: 99}
	assert.Equal(t, int64(99), w.GetSeed())

	w = WorldConfig{}
	assert.Equal(t, int64(1337), w.GetSeed(), "Нулевой сид заменяется дефолтным")

	t.Setenv("SAND_WORLD_SEED", "-5")
	assert.Equal(t, int64(-5), w.GetSeed(), "Отрицательный сид из ENV допустим")
}

func TestSimConfig_Defaults(t *testing.T) {
	s := SimConfig{}
	assert.Equal(t, 60, s.GetTPS())
	assert.Equal(t, 2, s.GetActivationRadius())

	s = SimConfig{TPS: 30, ActivationRadius: 5}
	assert.Equal(t, 30, s.GetTPS())
	assert.Equal(t, 5, s.GetActivationRadius())
}
