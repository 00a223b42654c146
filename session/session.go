// Package session provides SessionStore implementations. The in-memory store
// backs tests and single-process deployments; state lives in maps guarded by a
// read-write mutex and every read hands out a deep copy so callers can never
// corrupt stored aggregates.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/astraeum/oraclecore/core"
)

// Starting resources for a fresh run.
const (
	StartingGold            = 100
	StartingInsightTokens   = 1
	StartingHealingDraughts = 1
	StartingWeapon          = "Mortal Spear"
)

// StartingArmy returns the initial player force: a single group of deployed
// novice soldiers.
func StartingArmy() []core.UnitGroup {
	return []core.UnitGroup{
		{
			Name:     "Novice Soldiers",
			Quantity: 10,
			Attack:   10,
			Defense:  10,
			Health:   100,
			Morale:   1.0,
			Deployed: true,
		},
	}
}

// InMemoryStore keeps sessions and their encounters in process memory.
type InMemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string]*core.GameSession
	encounters map[string]map[string]*core.EncounterState // sessionID -> oracle

	now func() time.Time
}

// Options configure an InMemoryStore.
type Options struct {
	// Now overrides the clock, used by tests.
	Now func() time.Time
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		sessions:   map[string]*core.GameSession{},
		encounters: map[string]map[string]*core.EncounterState{},
		now:        opts.Now,
	}
}

// CreateSession initializes a fresh run: starting resources, one deployed
// unit group, and one encounter per oracle with only the first unlock
// accessible.
func (s *InMemoryStore) CreateSession(id string) (*core.GameSession, error) {
	if id == "" {
		id = core.NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; exists {
		return nil, fmt.Errorf("session %s already exists", id)
	}

	now := s.now()
	session := &core.GameSession{
		ID:              id,
		Stage:           1,
		Gold:            StartingGold,
		InsightTokens:   StartingInsightTokens,
		HealingDraughts: StartingHealingDraughts,
		Weapons:         []string{StartingWeapon},
		Army:            StartingArmy(),
		Created:         now,
		LastSave:        now,
	}
	s.sessions[id] = session

	first := core.FirstOracle()
	encs := make(map[string]*core.EncounterState, core.TotalOracles)
	for _, p := range core.DefaultProfiles() {
		enc := core.NewEncounterState(p.Name)
		if p.Name == first {
			enc.Accessible = true
		}
		encs[p.Name] = enc
	}
	s.encounters[id] = encs

	return session.Clone(), nil
}

// GetSession returns a deep copy of the session.
func (s *InMemoryStore) GetSession(id string) (*core.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return session.Clone(), nil
}

// SaveSession stores a deep copy and stamps LastSave.
func (s *InMemoryStore) SaveSession(session *core.GameSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return fmt.Errorf("session %s not found", session.ID)
	}
	c := session.Clone()
	c.LastSave = s.now()
	s.sessions[session.ID] = c
	return nil
}

// DeleteSession removes the session and cascades to its encounters.
func (s *InMemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %s not found", id)
	}
	delete(s.sessions, id)
	delete(s.encounters, id)
	return nil
}

// GetEncounter returns a deep copy of one (session, oracle) record.
func (s *InMemoryStore) GetEncounter(sessionID, oracle string) (*core.EncounterState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	encs, ok := s.encounters[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	enc, ok := encs[oracle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownOracle, oracle)
	}
	return enc.Clone(), nil
}

// SaveEncounter stores a deep copy of the encounter.
func (s *InMemoryStore) SaveEncounter(sessionID string, enc *core.EncounterState) error {
	if enc == nil || enc.Oracle == "" {
		return fmt.Errorf("encounter oracle is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	encs, ok := s.encounters[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}
	encs[enc.Oracle] = enc.Clone()
	return nil
}

// ListEncounters returns deep copies of every encounter in unlock order.
func (s *InMemoryStore) ListEncounters(sessionID string) ([]*core.EncounterState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	encs, ok := s.encounters[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	out := make([]*core.EncounterState, 0, len(encs))
	for _, p := range core.DefaultProfiles() {
		if enc, ok := encs[p.Name]; ok {
			out = append(out, enc.Clone())
		}
	}
	return out, nil
}

var _ core.SessionStore = (*InMemoryStore)(nil)
