// Package oraclecore provides a high-level façade over the encounter engine
// and its collaborators (inference gateway, semantic memory, session storage,
// event routing). Most applications interact with this package by:
//  1. Creating an Engine via New() (optionally overriding default in-memory services)
//  2. Starting a run with NewGame and selecting the first oracle
//  3. Driving encounters through the phase operations and RouteEvent
//
// The façade delegates targeted challenges, broadcasts and defeat cascades to
// the orchestrator while keeping setup ergonomics concise. All defaults are
// safe for local development and testing; production deployments typically
// supply a real inference gateway, the SQLite memory backend and a structured
// logger.
package oraclecore

import (
	"context"
	"fmt"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/astraeum/oraclecore/agent"
	"github.com/astraeum/oraclecore/bus"
	"github.com/astraeum/oraclecore/combat"
	"github.com/astraeum/oraclecore/config"
	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/encounter"
	"github.com/astraeum/oraclecore/gateway"
	gwanthropic "github.com/astraeum/oraclecore/gateway/anthropic"
	gwopenai "github.com/astraeum/oraclecore/gateway/openai"
	"github.com/astraeum/oraclecore/logging"
	"github.com/astraeum/oraclecore/memory"
	memsqlite "github.com/astraeum/oraclecore/memory/sqlite"
	"github.com/astraeum/oraclecore/orchestrator"
	"github.com/astraeum/oraclecore/puzzle"
	"github.com/astraeum/oraclecore/session"
)

// Options configure the Engine instance.
type Options struct {
	// Config carries the tunable knobs. Defaults to config.Default().
	Config *config.Config

	// Gateway overrides the inference backend chosen by Config.
	Gateway gateway.Gateway
	// SessionStore defaults to the in-memory implementation.
	SessionStore core.SessionStore
	// MemoryStore overrides the backend chosen by Config.
	MemoryStore core.MemoryStore
	// Rand overrides the engine randomness. Used by tests.
	Rand core.Rand
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Engine is the high-level façade aggregating the agents, the encounter state
// machine and the event orchestrator.
type Engine struct {
	opts       Options
	cfg        *config.Config
	gw         gateway.Gateway
	store      core.SessionStore
	mem        core.MemoryStore
	registry   *agent.Registry
	encounters *encounter.Manager
	orch       *orchestrator.Orchestrator
	bus        *bus.EventBus
	logger     logging.Logger
}

// New creates an Engine with optional overrides. Any unset service is
// initialized from the configuration, falling back to in-memory
// implementations.
func New(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rand := opts.Rand
	if rand == nil {
		seed := cfg.Engine.RandSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rand = core.NewSeededRand(seed)
	}

	gw := opts.Gateway
	if gw == nil {
		var err error
		gw, err = buildGateway(cfg)
		if err != nil {
			return nil, err
		}
	}

	mem := opts.MemoryStore
	if mem == nil {
		var err error
		mem, err = buildMemory(cfg, gw, opts.Logger)
		if err != nil {
			return nil, err
		}
	}

	store := opts.SessionStore
	if store == nil {
		store = session.NewInMemoryStore()
	}

	registry := agent.NewRegistry(gw, mem, func(o *agent.Options) {
		o.Rand = rand
		o.Logger = opts.Logger
		o.MemoryLimit = cfg.Engine.MemoryRetrievalLimit
		o.LieProbability = cfg.Engine.LieProbability
	})

	resolver := combat.NewResolver(rand, func(o *combat.Options) {
		o.Logger = opts.Logger
		o.PlayerDamageMin = cfg.Combat.PlayerDamageMin
		o.PlayerDamageMax = cfg.Combat.PlayerDamageMax
		o.EnemyDamageMin = cfg.Combat.EnemyDamageMin
		o.EnemyDamageMax = cfg.Combat.EnemyDamageMax
		o.EnemyScaling = cfg.Combat.EnemyScaling
	})

	encounters := encounter.NewManager(store, registry, func(o *encounter.Options) {
		o.Logger = opts.Logger
		o.Pipeline = puzzle.NewPipeline(puzzle.WithLogger(opts.Logger))
		o.Judge = puzzle.NewJudge(puzzle.WithJudgeLogger(opts.Logger))
		o.Resolver = resolver
		o.PuzzleTimeout = time.Duration(cfg.Inference.PuzzleTimeoutMS) * time.Millisecond
	})

	orch := orchestrator.New(registry, store, encounters, gw, mem, func(o *orchestrator.Options) {
		o.Logger = opts.Logger
		o.Rand = rand
		o.ReactionDivisor = cfg.Engine.ReactionDivisor
		o.Parallelism = cfg.Engine.BroadcastParallelism
		o.CallTimeout = time.Duration(cfg.Inference.CallTimeoutMS) * time.Millisecond
		o.HintTimeout = time.Duration(cfg.Inference.HintTimeoutMS) * time.Millisecond
	})

	eventBus := bus.New(func(o *bus.Options) {
		o.BufferSize = cfg.Engine.EventBufferSize
		o.PublishTimeout = time.Duration(cfg.Engine.PublishTimeoutMS) * time.Millisecond
	})

	return &Engine{
		opts:       opts,
		cfg:        cfg,
		gw:         gw,
		store:      store,
		mem:        mem,
		registry:   registry,
		encounters: encounters,
		orch:       orch,
		bus:        eventBus,
		logger:     opts.Logger,
	}, nil
}

func buildGateway(cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.Inference.Provider {
	case "openai":
		var clientOpts []option.RequestOption
		if cfg.Inference.APIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(cfg.Inference.APIKey))
		}
		client := openaisdk.NewClient(clientOpts...)
		return gwopenai.NewFromClient(&client, func(o *gwopenai.Options) {
			if cfg.Inference.Model != "" {
				o.Model = cfg.Inference.Model
			}
			if cfg.Inference.EmbeddingModel != "" {
				o.EmbeddingModel = cfg.Inference.EmbeddingModel
			}
			o.Temperature = cfg.Inference.Temperature
			o.MaxCompletionTokens = cfg.Inference.MaxTokens
		}), nil
	case "anthropic":
		return gwanthropic.New(func(o *gwanthropic.Options) {
			o.APIKey = cfg.Inference.APIKey
			if cfg.Inference.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Inference.Model)
			}
			o.Temperature = cfg.Inference.Temperature
			o.MaxTokens = cfg.Inference.MaxTokens
		}), nil
	case "mock":
		return gateway.NewMockGateway(), nil
	}
	return nil, fmt.Errorf("unknown inference provider %q", cfg.Inference.Provider)
}

func buildMemory(cfg *config.Config, embedder gateway.Gateway, logger logging.Logger) (core.MemoryStore, error) {
	switch cfg.Memory.Backend {
	case "sqlite":
		return memsqlite.New(cfg.Memory.SQLitePath, func(o *memsqlite.Options) {
			o.Embedder = embedder
			o.Logger = logger
		})
	default:
		return memory.NewInMemoryStore(func(o *memory.Options) {
			o.Embedder = embedder
			o.Logger = logger
		}), nil
	}
}

// NewGame starts a fresh run. An empty id generates one.
func (e *Engine) NewGame(id string) (*core.GameSession, error) {
	return e.store.CreateSession(id)
}

// Session returns the current session snapshot.
func (e *Engine) Session(id string) (*core.GameSession, error) {
	return e.store.GetSession(id)
}

// Encounters lists all thirteen encounter records for a session.
func (e *Engine) Encounters(sessionID string) ([]*core.EncounterState, error) {
	return e.store.ListEncounters(sessionID)
}

// SelectOracle moves an accessible oracle into exploration.
func (e *Engine) SelectOracle(sessionID, oracle string) (*core.EncounterState, error) {
	return e.encounters.SelectOracle(sessionID, oracle)
}

// RequestPuzzle generates and attaches the oracle's puzzle.
func (e *Engine) RequestPuzzle(ctx context.Context, sessionID, oracle string, playerContext map[string]any) (*core.PuzzleState, error) {
	return e.encounters.RequestPuzzle(ctx, sessionID, oracle, playerContext)
}

// SubmitAnswer judges a puzzle attempt.
func (e *Engine) SubmitAnswer(sessionID, oracle, answer string) (puzzle.SubmitResult, error) {
	return e.encounters.SubmitAnswer(sessionID, oracle, answer)
}

// StartBattle seeds the battle for an encounter in the battle phase.
func (e *Engine) StartBattle(sessionID, oracle string) (*core.BattleState, error) {
	return e.encounters.StartBattle(sessionID, oracle)
}

// ExecuteBattleTurn resolves one combat round.
func (e *Engine) ExecuteBattleTurn(sessionID, oracle string) (*core.BattleState, error) {
	return e.encounters.ExecuteBattleTurn(sessionID, oracle)
}

// DefeatOracle finalizes a confrontation, grants rewards and publishes the
// defeat so survivors can react. The cascade reactions arrive on Reactions().
func (e *Engine) DefeatOracle(sessionID, oracle string) (*core.GameSession, error) {
	s, err := e.encounters.Defeat(sessionID, oracle)
	if err != nil {
		return nil, err
	}
	e.bus.PublishEvent(core.NewGameEvent(core.EventOracleDefeated, sessionID, map[string]any{
		"oracle": oracle,
	}))
	return s, nil
}

// RouteEvent dispatches one event through the orchestrator.
func (e *Engine) RouteEvent(ctx context.Context, ev core.GameEvent) (*orchestrator.Result, error) {
	return e.orch.RouteEvent(ctx, ev)
}

// TriggerSpecialAbility invokes an oracle's special ability and applies its
// effect to encounter state.
func (e *Engine) TriggerSpecialAbility(ctx context.Context, sessionID, oracle string) (*core.Effect, error) {
	return e.orch.TriggerSpecialAbility(ctx, sessionID, oracle)
}

// InsightHint spends an insight token for contextual guidance.
func (e *Engine) InsightHint(ctx context.Context, sessionID, question, currentChallenge string) (string, int, error) {
	return e.orch.InsightHint(ctx, sessionID, question, currentChallenge)
}

// PublishEvent enqueues an event for the Serve loop.
func (e *Engine) PublishEvent(ev core.GameEvent) { e.bus.PublishEvent(ev) }

// Reactions exposes the outbound reaction stream produced by Serve.
func (e *Engine) Reactions(ctx context.Context) (core.Reaction, bool) {
	return e.bus.ConsumeReaction(ctx)
}

// Serve pumps bus events through the orchestrator until the context ends,
// publishing every reaction produced by broadcasts and cascades. Routing
// errors are logged and the loop continues; a single bad event never stops
// the engine.
func (e *Engine) Serve(ctx context.Context) error {
	for {
		ev, ok := e.bus.ConsumeEvent(ctx)
		if !ok {
			return ctx.Err()
		}
		res, err := e.orch.RouteEvent(ctx, ev)
		if err != nil {
			e.logger.Warn("event routing failed", "event_id", ev.ID, "type", ev.Type, "error", err)
			continue
		}
		for _, r := range res.Reactions {
			e.bus.PublishReaction(r)
		}
	}
}

// Close releases the engine's resources.
func (e *Engine) Close() { e.bus.Close() }
