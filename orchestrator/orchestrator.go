// Package orchestrator routes game events to oracle agents. Targeted
// challenges dispatch to a single behavior by encounter phase; player actions
// broadcast to every surviving oracle through the cunning-based reaction gate
// with bounded parallelism; defeats cascade stance shifts through the
// survivors. Agent failures never abort a route: a misbehaving oracle is
// dropped from that event's results.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/astraeum/oraclecore/agent"
	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/encounter"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/logging"
)

// Defaults for the reaction gate and broadcast fan-out.
const (
	DefaultReactionDivisor = 10.0
	DefaultParallelism     = 4
	DefaultCallTimeout     = 15 * time.Second
	DefaultHintTimeout     = 10 * time.Second
)

const ruleChangeImportance = 0.8

// Result type tags.
const (
	ResultPuzzle    = "puzzle"
	ResultDialogue  = "dialogue"
	ResultTactical  = "tactical_decision"
	ResultReactions = "reactions"
)

// Behaviors resolves oracle names to their behavior variants.
type Behaviors interface {
	Lookup(name string) (agent.Behavior, error)
}

// Result is the tagged outcome of routing one event.
type Result struct {
	Type      string            `json:"type"`
	Oracle    string            `json:"oracle,omitempty"`
	Puzzle    *core.PuzzleState `json:"puzzle,omitempty"`
	Response  string            `json:"response,omitempty"`
	Action    string            `json:"action,omitempty"`
	Reactions []core.Reaction   `json:"reactions,omitempty"`
}

// Options configure an Orchestrator.
type Options struct {
	Logger logging.Logger
	Rand   core.Rand

	// ReactionDivisor converts cunning into a reaction probability.
	ReactionDivisor float64
	// Parallelism bounds concurrent agent calls during broadcasts and
	// cascades. Zero or negative means DefaultParallelism.
	Parallelism int
	// CallTimeout caps each external inference call.
	CallTimeout time.Duration
	// HintTimeout caps insight-hint generation separately; hints degrade to
	// a canned line on expiry. Zero or negative means DefaultHintTimeout.
	HintTimeout time.Duration
}

// Orchestrator coordinates the thirteen agents over shared collaborators.
type Orchestrator struct {
	behaviors  Behaviors
	store      core.SessionStore
	encounters *encounter.Manager
	gw         gateway.Gateway
	mem        core.MemoryStore
	opts       Options
}

// New creates an orchestrator.
func New(behaviors Behaviors, store core.SessionStore, encounters *encounter.Manager, gw gateway.Gateway, mem core.MemoryStore, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:          logging.NoOpLogger{},
		Rand:            core.NewSeededRand(time.Now().UnixNano()),
		ReactionDivisor: DefaultReactionDivisor,
		Parallelism:     DefaultParallelism,
		CallTimeout:     DefaultCallTimeout,
		HintTimeout:     DefaultHintTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ReactionDivisor <= 0 {
		opts.ReactionDivisor = DefaultReactionDivisor
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.HintTimeout <= 0 {
		opts.HintTimeout = DefaultHintTimeout
	}
	return &Orchestrator{
		behaviors:  behaviors,
		store:      store,
		encounters: encounters,
		gw:         gw,
		mem:        mem,
		opts:       opts,
	}
}

// RouteEvent dispatches one event by class.
func (o *Orchestrator) RouteEvent(ctx context.Context, ev core.GameEvent) (*Result, error) {
	switch ev.Type {
	case core.EventOracleChallenge:
		return o.handleChallenge(ctx, ev)
	case core.EventPlayerAction:
		reactions := o.broadcast(ctx, ev)
		return &Result{Type: ResultReactions, Reactions: reactions}, nil
	case core.EventOracleDefeated:
		reactions := o.defeatCascade(ctx, ev)
		return &Result{Type: ResultReactions, Reactions: reactions}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", ev.Type)
}

// handleChallenge routes a targeted challenge to one oracle based on the
// encounter's phase: puzzle generation, dialogue, or a tactical decision.
func (o *Orchestrator) handleChallenge(ctx context.Context, ev core.GameEvent) (*Result, error) {
	oracle := ev.String("oracle")
	behavior, err := o.behaviors.Lookup(oracle)
	if err != nil {
		return nil, err
	}
	enc, err := o.store.GetEncounter(ev.SessionID, oracle)
	if err != nil {
		return nil, err
	}

	phase := ev.String("phase")
	if phase == "" {
		phase = string(enc.Phase)
	}

	switch phase {
	case string(core.PhasePuzzle):
		playerContext, _ := ev.Data["player_context"].(map[string]any)
		st, err := o.encounters.RequestPuzzle(ctx, ev.SessionID, oracle, playerContext)
		if err != nil {
			return nil, err
		}
		return &Result{Type: ResultPuzzle, Oracle: oracle, Puzzle: st}, nil

	case string(core.PhaseExploration), "diplomacy":
		session, err := o.store.GetSession(ev.SessionID)
		if err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
		response, err := behavior.RespondToPlayer(callCtx, ev.String("message"), agent.GameContext{
			Stage:            session.Stage,
			OraclesDefeated:  session.OraclesDefeated,
			CurrentChallenge: ev.String("current_challenge"),
		})
		if err != nil {
			return nil, err
		}
		return &Result{Type: ResultDialogue, Oracle: oracle, Response: response}, nil

	case string(core.PhaseBattle):
		if enc.Battle == nil {
			return nil, fmt.Errorf("%w: %s", core.ErrBattleNotInProgress, oracle)
		}
		callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
		action := behavior.MakeTacticalDecision(callCtx, enc.Battle)
		return &Result{Type: ResultTactical, Oracle: oracle, Action: action}, nil
	}

	return nil, fmt.Errorf("%w: no challenge dispatch for phase %s", core.ErrNotAccessible, phase)
}

// broadcast fans a player action out to every surviving oracle. The reaction
// gate draws before any goroutine starts so scripted randomness stays
// deterministic; only the gated-in oracles consume inference calls. Agents
// whose proposals fail or parse into garbage are dropped silently.
func (o *Orchestrator) broadcast(ctx context.Context, ev core.GameEvent) []core.Reaction {
	session, err := o.store.GetSession(ev.SessionID)
	if err != nil {
		o.opts.Logger.Warn("broadcast aborted, session unavailable", "session_id", ev.SessionID, "error", err)
		return nil
	}
	encs, err := o.store.ListEncounters(ev.SessionID)
	if err != nil {
		o.opts.Logger.Warn("broadcast aborted, encounters unavailable", "session_id", ev.SessionID, "error", err)
		return nil
	}

	triggeredEvent := ev.String("action")
	if triggeredEvent == "" {
		triggeredEvent = core.EventPlayerAction
	}

	var reactors []string
	for _, enc := range encs {
		if enc.Defeated {
			continue
		}
		profile, ok := core.ProfileByName(enc.Oracle)
		if !ok {
			continue
		}
		probability := float64(profile.Traits.Cunning) / o.opts.ReactionDivisor
		if probability > 1 {
			probability = 1
		}
		if o.opts.Rand.Float64() < probability {
			reactors = append(reactors, enc.Oracle)
		}
	}

	started := time.Now()
	var (
		mu        sync.Mutex
		reactions []core.Reaction
		failures  int
	)
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(o.opts.Parallelism))

	for _, name := range reactors {
		name := name
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			rc, err := o.proposeRuleChange(gctx, name, session.World, triggeredEvent)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				o.opts.Logger.Debug("rule change proposal dropped", "oracle", name, "error", err)
				return nil
			}
			reactions = append(reactions, core.Reaction{Oracle: name, RuleChange: rc})
			return nil
		})
	}
	_ = g.Wait()

	o.opts.Logger.Info("broadcast routed",
		"session_id", ev.SessionID,
		"event", triggeredEvent,
		"candidates", len(encs),
		"reactors", len(reactors),
		"reactions", len(reactions),
		"failures", failures,
		"elapsed", time.Since(started))
	return reactions
}

// proposeRuleChange asks one oracle for a world-rule modification and records
// the proposal as a memory.
func (o *Orchestrator) proposeRuleChange(ctx context.Context, oracle string, world core.WorldState, triggeredEvent string) (*core.RuleChange, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	raw, err := o.gw.Generate(callCtx, gateway.Request{
		Prompt:   ruleChangePrompt(oracle, world, triggeredEvent),
		JSONMode: true,
	})
	if err != nil {
		return nil, err
	}

	var rc core.RuleChange
	if err := gateway.ParseJSON(raw, &rc); err != nil {
		return nil, err
	}
	if rc.Name == "" || rc.Description == "" {
		return nil, fmt.Errorf("%w: rule change missing name or description", core.ErrInferenceMalformed)
	}

	if _, err := o.mem.Store(ctx, oracle, core.MemoryRuleChange,
		"Proposed: "+rc.Description, "Triggered by: "+triggeredEvent, ruleChangeImportance, nil); err != nil {
		o.opts.Logger.Warn("rule change memory store failed", "oracle", oracle, "error", err)
	}
	return &rc, nil
}

// defeatCascade notifies every surviving oracle of a defeat and collects
// their structured stance shifts, persisting each shift onto the survivor's
// diplomatic stance. Partial results are fine; each survivor also records the
// outcome in memory regardless of whether its shift parsed.
func (o *Orchestrator) defeatCascade(ctx context.Context, ev core.GameEvent) []core.Reaction {
	defeated := ev.String("oracle")
	encs, err := o.store.ListEncounters(ev.SessionID)
	if err != nil {
		o.opts.Logger.Warn("defeat cascade aborted, encounters unavailable", "session_id", ev.SessionID, "error", err)
		return nil
	}

	var (
		mu        sync.Mutex
		reactions []core.Reaction
	)
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(o.opts.Parallelism))

	for _, enc := range encs {
		if enc.Oracle == defeated || enc.Defeated {
			continue
		}
		name := enc.Oracle
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			if behavior, err := o.behaviors.Lookup(name); err == nil {
				behavior.LearnFromOutcome(gctx, "ally_defeated", "Defeated: "+defeated)
			}

			shift, err := o.requestStanceShift(gctx, name, defeated)
			if err != nil {
				o.opts.Logger.Debug("stance shift dropped", "oracle", name, "error", err)
				return nil
			}
			if err := o.encounters.ApplyStanceShift(ev.SessionID, name, shift.StanceChange); err != nil {
				o.opts.Logger.Warn("stance update failed", "oracle", name, "error", err)
			}
			mu.Lock()
			reactions = append(reactions, core.Reaction{Oracle: name, Stance: shift})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	o.opts.Logger.Info("defeat cascade routed",
		"session_id", ev.SessionID, "defeated", defeated, "reactions", len(reactions))
	return reactions
}

// requestStanceShift asks one survivor for its structured reaction to a
// defeat.
func (o *Orchestrator) requestStanceShift(ctx context.Context, oracle, defeated string) (*core.StanceShift, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	raw, err := o.gw.Generate(callCtx, gateway.Request{
		Prompt:   stanceShiftPrompt(oracle, defeated),
		JSONMode: true,
	})
	if err != nil {
		return nil, err
	}

	var shift core.StanceShift
	if err := gateway.ParseJSON(raw, &shift); err != nil {
		return nil, err
	}
	switch shift.StanceChange {
	case core.StanceMoreHostile, core.StanceCautious, core.StanceNeutral:
	default:
		return nil, fmt.Errorf("%w: stance %q is not in the allowed set", core.ErrInferenceMalformed, shift.StanceChange)
	}
	return &shift, nil
}

const specialAbilityImportance = 0.8

// TriggerSpecialAbility invokes an oracle's special ability against the
// current session and applies the typed effect to encounter state. Oracles
// without an ability return nil without error.
func (o *Orchestrator) TriggerSpecialAbility(ctx context.Context, sessionID, oracle string) (*core.Effect, error) {
	behavior, err := o.behaviors.Lookup(oracle)
	if err != nil {
		return nil, err
	}
	session, err := o.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()
	eff, err := behavior.SpecialAbility(callCtx, session)
	if err != nil {
		return nil, err
	}
	if eff == nil {
		return nil, nil
	}

	if err := o.encounters.ApplyEffect(sessionID, oracle, eff); err != nil {
		return nil, err
	}
	if _, err := o.mem.Store(ctx, oracle, core.MemorySpecialAbility,
		"Used: "+eff.Name, "Target: "+eff.Target, specialAbilityImportance, nil); err != nil {
		o.opts.Logger.Warn("special ability memory store failed", "oracle", oracle, "error", err)
	}

	o.opts.Logger.Info("special ability applied",
		"session_id", sessionID, "oracle", oracle, "effect", eff.Name, "target", eff.Target)
	return eff, nil
}

// InsightHint spends one insight token and generates contextual guidance. The
// token is consumed even when generation degrades to the canned line; hints
// are a best-effort luxury, not a refundable purchase.
func (o *Orchestrator) InsightHint(ctx context.Context, sessionID, question, currentChallenge string) (string, int, error) {
	remaining, err := o.encounters.UseInsightToken(sessionID)
	if err != nil {
		return "", 0, err
	}
	session, err := o.store.GetSession(sessionID)
	if err != nil {
		return "", remaining, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.HintTimeout)
	defer cancel()
	hint, err := o.gw.Generate(callCtx, gateway.Request{
		Prompt: insightHintPrompt(question, session.Stage, currentChallenge),
	})
	if err != nil {
		o.opts.Logger.Warn("hint generation failed, using fallback", "session_id", sessionID, "error", err)
		return "The oracles guard their secrets closely. Trust what the puzzle itself has already shown you.", remaining, nil
	}
	return hint, remaining, nil
}
