package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/internal/util"
	"github.com/astraeum/oraclecore/logging"
	"github.com/astraeum/oraclecore/puzzle"
)

// Importance weights for memory writes from default behavior paths.
const (
	conversationImportance = 0.6
	outcomeSuccessWeight   = 0.7
	outcomeFailureWeight   = 0.9
)

// Options configure a Core behavior.
type Options struct {
	Rand   core.Rand
	Logger logging.Logger

	// MemoryLimit is the top-K for dialogue memory retrieval.
	MemoryLimit int

	// LieProbability overrides Nyx's deception rate when positive. Only the
	// registry reads it; Core itself never lies.
	LieProbability float64
}

// Core is the shared default behavior every variant composes over. It never
// fails an operation that has a safe default: puzzle generation falls back to
// the static template, tactical decisions coerce to attack, and memory writes
// are fire-and-forget.
type Core struct {
	profile core.OracleProfile
	gw      gateway.Gateway
	mem     core.MemoryStore
	rand    core.Rand
	logger  logging.Logger
	memTopK int
}

// NewCore creates the default behavior for a profile.
func NewCore(profile core.OracleProfile, gw gateway.Gateway, mem core.MemoryStore, optFns ...func(o *Options)) *Core {
	opts := Options{
		Rand:        core.NewSeededRand(time.Now().UnixNano()),
		Logger:      logging.NoOpLogger{},
		MemoryLimit: 3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Core{
		profile: profile,
		gw:      gw,
		mem:     mem,
		rand:    opts.Rand,
		logger:  opts.Logger,
		memTopK: opts.MemoryLimit,
	}
}

// Name returns the oracle's name.
func (c *Core) Name() string { return c.profile.Name }

// Profile returns the oracle's static definition.
func (c *Core) Profile() core.OracleProfile { return c.profile }

// GeneratePuzzle asks the gateway for a JSON skeleton and falls back to the
// static per-oracle template when inference or validation fails. It always
// returns a valid skeleton.
func (c *Core) GeneratePuzzle(ctx context.Context, difficulty int, playerContext map[string]any) (core.PuzzleSkeleton, error) {
	return c.generateTyped(ctx, "", difficulty, playerContext)
}

// generateTyped is GeneratePuzzle with a variant-chosen puzzle type. An empty
// type lets the fallback table pick.
func (c *Core) generateTyped(ctx context.Context, puzzleType string, difficulty int, playerContext map[string]any) (core.PuzzleSkeleton, error) {
	defeated := 0
	if playerContext != nil {
		if v, ok := playerContext["oracles_defeated"].(int); ok {
			defeated = v
		}
	}

	promptType := puzzleType
	if promptType == "" {
		promptType = puzzle.FallbackSkeleton(c.profile.Name, difficulty).Type
	}

	raw, err := c.gw.Generate(ctx, gateway.Request{
		Prompt:   puzzlePrompt(c.profile, promptType, difficulty, defeated),
		JSONMode: true,
	})
	if err != nil {
		c.logger.Warn("puzzle inference failed, using fallback template", "oracle", c.profile.Name, "error", err)
		return puzzle.FallbackSkeleton(c.profile.Name, difficulty), nil
	}

	var skeleton core.PuzzleSkeleton
	if err := gateway.ParseJSON(raw, &skeleton); err != nil {
		c.logger.Warn("puzzle response unparseable, using fallback template", "oracle", c.profile.Name, "error", err)
		return puzzle.FallbackSkeleton(c.profile.Name, difficulty), nil
	}
	skeleton.Difficulty = difficulty
	if skeleton.Type == "" {
		skeleton.Type = promptType
	}
	if err := util.ValidateSkeleton(skeleton); err != nil {
		c.logger.Warn("puzzle skeleton invalid, using fallback template", "oracle", c.profile.Name, "error", err)
		return puzzle.FallbackSkeleton(c.profile.Name, difficulty), nil
	}
	return skeleton, nil
}

// ModifyPuzzleRules is the identity mutation: the skeleton becomes a state
// with no twist. Variants override this with their signature mechanic.
func (c *Core) ModifyPuzzleRules(_ context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error) {
	return puzzle.NewState(c.profile.Name, skeleton), nil
}

// RespondToPlayer retrieves the top-K relevant memories, builds a
// personality prompt around them and the game context, and appends the
// exchange as a conversation memory. On inference failure it returns a canned
// in-character line rather than an error.
func (c *Core) RespondToPlayer(ctx context.Context, message string, gameCtx GameContext) (string, error) {
	memories, err := c.mem.RetrieveRelevant(ctx, c.profile.Name, message, c.memTopK, 0)
	if err != nil {
		c.logger.Warn("memory retrieval failed, responding without memories", "oracle", c.profile.Name, "error", err)
	}
	var memLines []string
	for _, m := range memories {
		memLines = append(memLines, "- "+m.Content)
	}

	situation := fmt.Sprintf("Player message: %s\nGame stage: %d/%d\nRelevant memories:\n%s",
		message, gameCtx.Stage, core.TotalOracles, strings.Join(memLines, "\n"))

	response, err := c.gw.Generate(ctx, gateway.Request{
		Prompt: personalityPrompt(c.profile, situation),
	})
	if err != nil {
		c.logger.Warn("dialogue inference failed, using fallback line", "oracle", c.profile.Name, "error", err)
		return fmt.Sprintf("%s regards you in silence. The %s offers no counsel now.", c.profile.Name, strings.ToLower(c.profile.Domain)), nil
	}

	c.StoreMemory(ctx, core.MemoryConversation,
		"Player said: "+truncate(message, 100),
		"I responded: "+truncate(response, 100),
		conversationImportance, nil)
	return response, nil
}

// MakeTacticalDecision asks the gateway to pick from the fixed action set.
// Any malformed or out-of-set answer coerces to attack; this call never fails
// the turn.
func (c *Core) MakeTacticalDecision(ctx context.Context, battle *core.BattleState) string {
	raw, err := c.gw.Generate(ctx, gateway.Request{
		Prompt:      tacticalPrompt(c.profile.Name, battle),
		Temperature: 0.3,
	})
	if err != nil {
		c.logger.Debug("tactical inference failed, defaulting to attack", "oracle", c.profile.Name, "error", err)
		return ActionAttack
	}
	decision := strings.ToLower(strings.TrimSpace(raw))
	switch decision {
	case ActionAttack, ActionDefend, ActionSpecialAbility, ActionTacticalRetreat:
		return decision
	}
	return ActionAttack
}

// SpecialAbility is a no-op for oracles without one.
func (c *Core) SpecialAbility(context.Context, *core.GameSession) (*core.Effect, error) {
	return nil, nil
}

// LearnFromOutcome records an encounter outcome. Failures weigh heavier than
// successes so the oracle adapts faster to what went wrong.
func (c *Core) LearnFromOutcome(ctx context.Context, outcome string, contextText string) {
	importance := outcomeFailureWeight
	if outcome == "success" {
		importance = outcomeSuccessWeight
	}
	c.StoreMemory(ctx, core.MemoryOutcome, "Outcome: "+outcome, contextText, importance,
		map[string]string{"outcome": outcome})
}

// StoreMemory is the fire-and-forget memory write shared by all behavior
// paths. Failures are logged, never propagated.
func (c *Core) StoreMemory(ctx context.Context, category, content, contextText string, importance float64, metadata map[string]string) {
	if _, err := c.mem.Store(ctx, c.profile.Name, category, content, contextText, importance, metadata); err != nil {
		c.logger.Warn("memory store failed", "oracle", c.profile.Name, "category", category, "error", err)
	}
}

// Gateway exposes the inference gateway to variant overrides.
func (c *Core) Gateway() gateway.Gateway { return c.gw }

// Rand exposes the injectable randomness source to variant overrides.
func (c *Core) Rand() core.Rand { return c.rand }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
