package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Engine.ReactionDivisor)
	assert.Equal(t, 4, cfg.Engine.BroadcastParallelism)
	assert.Equal(t, 50, cfg.Combat.PlayerDamageMin)
	assert.Equal(t, "memory", cfg.Memory.Backend)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().Engine, cfg.Engine)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"engine": {"reaction_divisor": 5, "broadcast_parallelism": 8},
		"combat": {"enemy_scaling": 1.5}
	}`), 0o600))

	t.Setenv("ORACLECORE_ENGINE_REACTION_DIVISOR", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Engine.ReactionDivisor, "env beats file")
	assert.Equal(t, 8, cfg.Engine.BroadcastParallelism, "file beats default")
	assert.Equal(t, 1.5, cfg.Combat.EnemyScaling)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Engine.ReactionDivisor = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Combat.PlayerDamageMax = 10
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Memory.Backend = "redis"
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}
