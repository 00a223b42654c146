package core

import (
	"context"
	"time"
)

// Memory categories used by behaviors and the orchestrator.
const (
	MemoryConversation   = "conversation"
	MemoryPuzzleMod      = "puzzle_modification"
	MemoryOutcome        = "outcome"
	MemoryDeception      = "deception"
	MemorySpecialAbility = "special_ability"
	MemoryRuleChange     = "rule_modification"
)

// MemoryRecord is one importance-scored memory owned by an agent. Records are
// append-only and never mutated after creation.
type MemoryRecord struct {
	ID         string            `json:"id"`
	Agent      string            `json:"agent"`
	Category   string            `json:"category"`
	Content    string            `json:"content"`
	Context    string            `json:"context,omitempty"`
	Importance float64           `json:"importance"` // [0, 1]
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`

	// Score is populated on retrieval with the relevance of this record to
	// the query. It is not persisted.
	Score float64 `json:"score,omitempty"`
}

// MemoryStore is the semantic memory service contract. Store failures must
// not abort the caller's primary operation; callers treat writes as
// fire-and-forget. RetrieveRelevant ranks by semantic relevance, scoped to
// one agent and filtered by an importance floor; it never enumerates the
// store wholesale.
type MemoryStore interface {
	Store(ctx context.Context, agent, category, content, contextText string, importance float64, metadata map[string]string) (string, error)
	RetrieveRelevant(ctx context.Context, agent, query string, limit int, minImportance float64) ([]MemoryRecord, error)
}
