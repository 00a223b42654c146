// Package config holds the engine's tunable knobs: inference timeouts,
// broadcast parallelism, the reaction gate divisor, combat damage ranges and
// the storage paths. Values come from JSON on disk overridden by environment
// variables; every field has a sensible default so Load with no file is valid.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Engine    EngineConfig    `json:"engine"`
	Inference InferenceConfig `json:"inference"`
	Combat    CombatConfig    `json:"combat"`
	Memory    MemoryConfig    `json:"memory"`
	Logging   LoggingConfig   `json:"logging"`
}

type EngineConfig struct {
	// BroadcastParallelism bounds concurrent agent reactions during a
	// broadcast. Zero means unbounded.
	BroadcastParallelism int `json:"broadcast_parallelism" env:"ORACLECORE_ENGINE_BROADCAST_PARALLELISM"`
	// ReactionDivisor turns cunning into a reaction probability
	// (cunning / divisor, clamped to [0, 1]).
	ReactionDivisor float64 `json:"reaction_divisor" env:"ORACLECORE_ENGINE_REACTION_DIVISOR"`
	// LieProbability overrides the night oracle's default lie rate when
	// positive.
	LieProbability float64 `json:"lie_probability" env:"ORACLECORE_ENGINE_LIE_PROBABILITY"`
	// RandSeed fixes the engine randomness. Zero seeds from the clock.
	RandSeed int64 `json:"rand_seed" env:"ORACLECORE_ENGINE_RAND_SEED"`

	EventBufferSize      int `json:"event_buffer_size" env:"ORACLECORE_ENGINE_EVENT_BUFFER_SIZE"`
	PublishTimeoutMS     int `json:"publish_timeout_ms" env:"ORACLECORE_ENGINE_PUBLISH_TIMEOUT_MS"`
	MemoryRetrievalLimit int `json:"memory_retrieval_limit" env:"ORACLECORE_ENGINE_MEMORY_RETRIEVAL_LIMIT"`
}

type InferenceConfig struct {
	Provider        string  `json:"provider" env:"ORACLECORE_INFERENCE_PROVIDER"` // openai | anthropic | mock
	APIKey          string  `json:"api_key" env:"ORACLECORE_INFERENCE_API_KEY"`
	Model           string  `json:"model" env:"ORACLECORE_INFERENCE_MODEL"`
	EmbeddingModel  string  `json:"embedding_model" env:"ORACLECORE_INFERENCE_EMBEDDING_MODEL"`
	Temperature     float64 `json:"temperature" env:"ORACLECORE_INFERENCE_TEMPERATURE"`
	MaxTokens       int64   `json:"max_tokens" env:"ORACLECORE_INFERENCE_MAX_TOKENS"`
	CallTimeoutMS   int     `json:"call_timeout_ms" env:"ORACLECORE_INFERENCE_CALL_TIMEOUT_MS"`
	HintTimeoutMS   int     `json:"hint_timeout_ms" env:"ORACLECORE_INFERENCE_HINT_TIMEOUT_MS"`
	PuzzleTimeoutMS int     `json:"puzzle_timeout_ms" env:"ORACLECORE_INFERENCE_PUZZLE_TIMEOUT_MS"`
}

type CombatConfig struct {
	PlayerDamageMin int     `json:"player_damage_min" env:"ORACLECORE_COMBAT_PLAYER_DAMAGE_MIN"`
	PlayerDamageMax int     `json:"player_damage_max" env:"ORACLECORE_COMBAT_PLAYER_DAMAGE_MAX"`
	EnemyDamageMin  int     `json:"enemy_damage_min" env:"ORACLECORE_COMBAT_ENEMY_DAMAGE_MIN"`
	EnemyDamageMax  int     `json:"enemy_damage_max" env:"ORACLECORE_COMBAT_ENEMY_DAMAGE_MAX"`
	EnemyScaling    float64 `json:"enemy_scaling" env:"ORACLECORE_COMBAT_ENEMY_SCALING"`
}

type MemoryConfig struct {
	// Backend selects the store: "memory" or "sqlite".
	Backend    string `json:"backend" env:"ORACLECORE_MEMORY_BACKEND"`
	SQLitePath string `json:"sqlite_path" env:"ORACLECORE_MEMORY_SQLITE_PATH"`
}

type LoggingConfig struct {
	Level     string `json:"level" env:"ORACLECORE_LOG_LEVEL"`   // debug | info | warn | error
	Format    string `json:"format" env:"ORACLECORE_LOG_FORMAT"` // json | text
	AddSource bool   `json:"add_source" env:"ORACLECORE_LOG_ADD_SOURCE"`
}

// Default returns the configuration used when nothing is provided.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			BroadcastParallelism: 4,
			ReactionDivisor:      10,
			EventBufferSize:      64,
			PublishTimeoutMS:     250,
			MemoryRetrievalLimit: 3,
		},
		Inference: InferenceConfig{
			Provider:        "openai",
			Temperature:     0.8,
			MaxTokens:       1024,
			CallTimeoutMS:   15000,
			HintTimeoutMS:   10000,
			PuzzleTimeoutMS: 20000,
		},
		Combat: CombatConfig{
			PlayerDamageMin: 50,
			PlayerDamageMax: 150,
			EnemyDamageMin:  40,
			EnemyDamageMax:  120,
			EnemyScaling:    0.8,
		},
		Memory: MemoryConfig{
			Backend:    "memory",
			SQLitePath: "oraclecore.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the JSON file at path (missing file is fine), applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.ReactionDivisor <= 0 {
		return fmt.Errorf("engine.reaction_divisor must be positive, got %v", c.Engine.ReactionDivisor)
	}
	if c.Combat.PlayerDamageMax < c.Combat.PlayerDamageMin {
		return fmt.Errorf("combat.player_damage_max %d below min %d", c.Combat.PlayerDamageMax, c.Combat.PlayerDamageMin)
	}
	if c.Combat.EnemyDamageMax < c.Combat.EnemyDamageMin {
		return fmt.Errorf("combat.enemy_damage_max %d below min %d", c.Combat.EnemyDamageMax, c.Combat.EnemyDamageMin)
	}
	if c.Combat.EnemyScaling <= 0 {
		return fmt.Errorf("combat.enemy_scaling must be positive, got %v", c.Combat.EnemyScaling)
	}
	switch c.Memory.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("memory.backend must be memory or sqlite, got %q", c.Memory.Backend)
	}
	return nil
}
