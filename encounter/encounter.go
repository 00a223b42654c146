// Package encounter implements the per-oracle state machine: oracle
// selection, the puzzle and battle phases, defeat with idempotent rewards,
// and insight-token spending. Every mutation of one (session, oracle) pair is
// serialized behind a keyed mutex; different encounters proceed in parallel.
package encounter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/astraeum/oraclecore/agent"
	"github.com/astraeum/oraclecore/combat"
	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/logging"
	"github.com/astraeum/oraclecore/puzzle"
)

// Rewards granted on every oracle defeat, on top of the oracle's own weapon
// and army unit.
const (
	DefeatInsightTokens = 2
	DefeatGold          = 500
)

// Behaviors resolves oracle names to their behavior variants. The agent
// registry satisfies it.
type Behaviors interface {
	Lookup(name string) (agent.Behavior, error)
}

// DefaultPuzzleTimeout caps the puzzle-generation inference call.
const DefaultPuzzleTimeout = 20 * time.Second

// Options configure a Manager.
type Options struct {
	Logger   logging.Logger
	Pipeline *puzzle.Pipeline
	Judge    *puzzle.Judge
	Resolver *combat.Resolver
	Now      func() time.Time

	// PuzzleTimeout bounds generation in RequestPuzzle. Zero or negative
	// means DefaultPuzzleTimeout.
	PuzzleTimeout time.Duration
}

// Manager drives encounter phase transitions over a SessionStore.
type Manager struct {
	store     core.SessionStore
	behaviors Behaviors
	opts      Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex // sessionID + "/" + oracle
}

// NewManager creates a manager with default collaborators.
func NewManager(store core.SessionStore, behaviors Behaviors, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Pipeline: puzzle.NewPipeline(),
		Judge:    puzzle.NewJudge(),
		Resolver:      combat.NewResolver(core.NewSeededRand(time.Now().UnixNano())),
		Now:           time.Now,
		PuzzleTimeout: DefaultPuzzleTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.PuzzleTimeout <= 0 {
		opts.PuzzleTimeout = DefaultPuzzleTimeout
	}
	return &Manager{
		store:     store,
		behaviors: behaviors,
		opts:      opts,
		locks:     map[string]*sync.Mutex{},
	}
}

// lock returns the mutex guarding one (session, oracle) pair, creating it on
// first use. An empty oracle yields the session-level lock guarding aggregate
// counters (gold, tokens, defeats). Lock entries are never evicted; the table
// is bounded by sessions times fourteen.
func (m *Manager) lock(sessionID, oracle string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sessionID + "/" + oracle
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// mutateSession runs fn over the session under the session-level lock and
// persists the result. Every session-aggregate read-compute-write goes
// through here so concurrent operations on the same session never lose
// updates. The lock is ordered after any held encounter lock and is released
// before other encounters are touched.
func (m *Manager) mutateSession(sessionID string, fn func(s *core.GameSession) error) (*core.GameSession, error) {
	sl := m.lock(sessionID, "")
	sl.Lock()
	defer sl.Unlock()

	session, err := m.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := m.store.SaveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectOracle moves an accessible, locked encounter into exploration and
// marks the oracle current on the session.
func (m *Manager) SelectOracle(sessionID, oracle string) (*core.EncounterState, error) {
	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return nil, err
	}
	if enc.Defeated {
		return nil, fmt.Errorf("%w: %s", core.ErrAlreadyDefeated, oracle)
	}
	if !enc.Accessible {
		return nil, fmt.Errorf("%w: %s is not yet accessible", core.ErrNotAccessible, oracle)
	}

	if enc.Phase == core.PhaseLocked {
		next, err := enc.Phase.Transition(core.PhaseExploration)
		if err != nil {
			return nil, err
		}
		enc.Phase = next
	}
	m.touch(enc)
	if err := m.store.SaveEncounter(sessionID, enc); err != nil {
		return nil, err
	}

	if _, err := m.mutateSession(sessionID, func(s *core.GameSession) error {
		s.CurrentOracle = oracle
		return nil
	}); err != nil {
		return nil, err
	}

	m.opts.Logger.Info("oracle selected", "session_id", sessionID, "oracle", oracle)
	return enc, nil
}

// RequestPuzzle runs the generation pipeline for an exploring encounter and
// attaches the result, entering the puzzle phase. The inference call happens
// before the encounter lock is taken so a slow model never blocks unrelated
// mutations of the same encounter's siblings.
func (m *Manager) RequestPuzzle(ctx context.Context, sessionID, oracle string, playerContext map[string]any) (*core.PuzzleState, error) {
	behavior, err := m.behaviors.Lookup(oracle)
	if err != nil {
		return nil, err
	}
	profile, ok := core.ProfileByName(oracle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownOracle, oracle)
	}

	buildCtx, cancel := context.WithTimeout(ctx, m.opts.PuzzleTimeout)
	defer cancel()
	st := m.opts.Pipeline.Build(buildCtx, behavior, oracle, profile.Difficulty, playerContext)

	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return nil, err
	}
	next, err := enc.Phase.Transition(core.PhasePuzzle)
	if err != nil {
		return nil, err
	}
	enc.Phase = next
	enc.Puzzle = st
	m.touch(enc)
	if err := m.store.SaveEncounter(sessionID, enc); err != nil {
		return nil, err
	}

	m.opts.Logger.Info("puzzle attached",
		"session_id", sessionID, "oracle", oracle, "puzzle_type", st.Type)
	return st.Clone(), nil
}

// SubmitAnswer judges a puzzle attempt. A correct answer transitions the
// encounter to battle; incorrect answers keep the puzzle phase with the
// attempt recorded.
func (m *Manager) SubmitAnswer(sessionID, oracle, answer string) (puzzle.SubmitResult, error) {
	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return puzzle.SubmitResult{}, err
	}
	res, err := m.opts.Judge.Submit(enc, answer)
	if err != nil {
		return puzzle.SubmitResult{}, err
	}
	m.touch(enc)
	if err := m.store.SaveEncounter(sessionID, enc); err != nil {
		return puzzle.SubmitResult{}, err
	}
	return res, nil
}

// StartBattle initializes the battle for an encounter already in the battle
// phase, seeding it from the player's deployed units and the oracle's scaled
// army.
func (m *Manager) StartBattle(sessionID, oracle string) (*core.BattleState, error) {
	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return nil, err
	}
	if enc.Phase != core.PhaseBattle {
		return nil, fmt.Errorf("%w: %s is in phase %s", core.ErrBattleNotInProgress, oracle, enc.Phase)
	}
	if enc.Battle != nil && enc.Battle.Status == core.BattleInProgress {
		return enc.Battle.Clone(), nil
	}

	session, err := m.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	profile, ok := core.ProfileByName(oracle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownOracle, oracle)
	}

	enc.Battle = m.opts.Resolver.InitiateBattle(session, profile)
	m.touch(enc)
	if err := m.store.SaveEncounter(sessionID, enc); err != nil {
		return nil, err
	}
	return enc.Battle.Clone(), nil
}

// ExecuteBattleTurn resolves one combat round. Victory advances the
// encounter to confrontation; defeat keeps the encounter in the battle phase
// with the lost battle attached so the player can retry or retreat, and
// StartBattle re-seeds a fresh army on the next attempt.
func (m *Manager) ExecuteBattleTurn(sessionID, oracle string) (*core.BattleState, error) {
	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return nil, err
	}
	if enc.Phase != core.PhaseBattle || enc.Battle == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrBattleNotInProgress, oracle)
	}
	if err := m.opts.Resolver.ExecuteCombatTurn(enc.Battle); err != nil {
		return nil, err
	}

	switch enc.Battle.Status {
	case core.BattleVictory:
		enc.Phase = core.PhaseConfrontation
		m.opts.Logger.Info("battle won", "session_id", sessionID, "oracle", oracle, "turns", enc.Battle.Turn-1)
	case core.BattleDefeat:
		m.opts.Logger.Info("battle lost, awaiting retry", "session_id", sessionID, "oracle", oracle)
	}

	m.touch(enc)
	if err := m.store.SaveEncounter(sessionID, enc); err != nil {
		return nil, err
	}
	return enc.Battle.Clone(), nil
}

// Defeat finalizes a confrontation: marks the oracle defeated, grants rewards
// exactly once, advances the stage, unlocks the next oracle, and flags
// completion when the thirteenth falls. Calling it again for the same oracle
// returns AlreadyDefeated.
func (m *Manager) Defeat(sessionID, oracle string) (*core.GameSession, error) {
	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return nil, err
	}
	if enc.Defeated || enc.RewardsGranted {
		return nil, fmt.Errorf("%w: %s", core.ErrAlreadyDefeated, oracle)
	}
	next, err := enc.Phase.Transition(core.PhaseDefeated)
	if err != nil {
		return nil, err
	}
	profile, ok := core.ProfileByName(oracle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownOracle, oracle)
	}

	enc.Phase = next
	enc.Defeated = true
	enc.Hostile = false
	enc.RewardsGranted = true
	now := m.opts.Now().UTC()
	enc.DefeatedAt = &now

	m.touch(enc)
	if err := m.store.SaveEncounter(sessionID, enc); err != nil {
		return nil, err
	}

	session, err := m.mutateSession(sessionID, func(s *core.GameSession) error {
		s.InsightTokens += DefeatInsightTokens
		s.Gold += DefeatGold
		if w := profile.Rewards.Weapon; w != "" && !contains(s.Weapons, w) {
			s.Weapons = append(s.Weapons, w)
		}
		if u := profile.Rewards.ArmyUnit; u != "" {
			s.Army = append(s.Army, rewardUnit(u))
		}
		s.OraclesDefeated++
		s.Stage = s.OraclesDefeated + 1
		if s.Stage > core.TotalOracles {
			s.Stage = core.TotalOracles
		}
		s.CurrentOracle = ""

		if s.OraclesDefeated >= core.TotalOracles && !s.Completed {
			s.Completed = true
			t := now
			s.CompletedAt = &t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := m.unlockNext(sessionID, profile.UnlockOrder); err != nil {
		return nil, err
	}

	m.opts.Logger.Info("oracle defeated",
		"session_id", sessionID,
		"oracle", oracle,
		"oracles_defeated", session.OraclesDefeated,
		"completed", session.Completed)
	return session, nil
}

// unlockNext makes the oracle with the following unlock order selectable.
func (m *Manager) unlockNext(sessionID string, defeatedOrder int) error {
	for _, p := range core.DefaultProfiles() {
		if p.UnlockOrder != defeatedOrder+1 {
			continue
		}
		l := m.lock(sessionID, p.Name)
		l.Lock()
		defer l.Unlock()

		enc, err := m.store.GetEncounter(sessionID, p.Name)
		if err != nil {
			return err
		}
		if enc.Accessible {
			return nil
		}
		enc.Accessible = true
		return m.store.SaveEncounter(sessionID, enc)
	}
	return nil
}

// ApplyEffect applies a typed special-ability result to encounter state. An
// all_hostile_oracles target boosts every surviving hostile encounter except
// the caster; any other target lands in the caster's active rule set keyed by
// effect name, so reapplying the same ability overwrites rather than stacks.
func (m *Manager) ApplyEffect(sessionID, oracle string, eff *core.Effect) error {
	if eff == nil {
		return nil
	}

	if eff.Target == "all_hostile_oracles" {
		encs, err := m.store.ListEncounters(sessionID)
		if err != nil {
			return err
		}
		for _, snapshot := range encs {
			if snapshot.Oracle == oracle || snapshot.Defeated || !snapshot.Hostile {
				continue
			}
			l := m.lock(sessionID, snapshot.Oracle)
			l.Lock()
			enc, err := m.store.GetEncounter(sessionID, snapshot.Oracle)
			if err != nil {
				l.Unlock()
				return err
			}
			enc.ArmyBoostApplied = eff.Magnitude
			err = m.store.SaveEncounter(sessionID, enc)
			l.Unlock()
			if err != nil {
				return err
			}
		}
		return nil
	}

	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return err
	}
	if enc.ActiveRules == nil {
		enc.ActiveRules = map[string]any{}
	}
	enc.ActiveRules[eff.Name] = map[string]any{
		"magnitude":      eff.Magnitude,
		"duration_turns": eff.Duration,
		"target":         eff.Target,
	}
	m.touch(enc)
	return m.store.SaveEncounter(sessionID, enc)
}

// Stance deltas applied when a survivor reacts to an ally's defeat. A
// more-hostile survivor hardens sharply; a cautious one withdraws a little.
const (
	stanceDeltaMoreHostile = -0.2
	stanceDeltaCautious    = -0.05
)

// ApplyStanceShift persists a survivor's reaction to an ally's defeat onto
// its diplomatic stance. A neutral reaction leaves the stance untouched.
func (m *Manager) ApplyStanceShift(sessionID, oracle, stance string) error {
	var delta float64
	switch stance {
	case core.StanceMoreHostile:
		delta = stanceDeltaMoreHostile
	case core.StanceCautious:
		delta = stanceDeltaCautious
	case core.StanceNeutral:
		return nil
	default:
		return fmt.Errorf("%w: stance %q is not in the allowed set", core.ErrValidationFailed, stance)
	}

	l := m.lock(sessionID, oracle)
	l.Lock()
	defer l.Unlock()

	enc, err := m.store.GetEncounter(sessionID, oracle)
	if err != nil {
		return err
	}
	enc.ShiftStance(delta)
	return m.store.SaveEncounter(sessionID, enc)
}

// UseInsightToken spends one token, failing with InsufficientResource when
// the player has none left. It returns the remaining balance. The spend runs
// under the session lock so two concurrent calls can never both take the
// last token.
func (m *Manager) UseInsightToken(sessionID string) (int, error) {
	session, err := m.mutateSession(sessionID, func(s *core.GameSession) error {
		if s.InsightTokens <= 0 {
			return fmt.Errorf("%w: no insight tokens available", core.ErrInsufficientResource)
		}
		s.InsightTokens--
		return nil
	})
	if err != nil {
		return 0, err
	}
	return session.InsightTokens, nil
}

// touch stamps the interaction bookkeeping shared by every mutation.
func (m *Manager) touch(enc *core.EncounterState) {
	enc.Interactions++
	enc.LastInteraction = m.opts.Now().UTC()
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func rewardUnit(name string) core.UnitGroup {
	return core.UnitGroup{
		Name:     name,
		Quantity: 5,
		Attack:   20,
		Defense:  15,
		Health:   120,
		Morale:   1.0,
	}
}
