// Package core defines the shared value types and service contracts of the
// oracle encounter engine: oracle profiles, game sessions, encounter and
// battle state, puzzle structures, memory records, the event envelope and the
// error taxonomy. Higher layers (agent behaviors, the puzzle pipeline, the
// combat resolver and the orchestrator) depend only on this package and on
// the interfaces it declares, never on concrete store or gateway
// implementations.
package core

import "github.com/google/uuid"

// NewID generates a unique identifier for events and memory records.
func NewID() string { return uuid.NewString() }
