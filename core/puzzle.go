package core

import "time"

// PuzzleSkeleton is the generic puzzle produced by stage one of the mutation
// pipeline, before any oracle twist is applied. Type, Description and
// Solution are mandatory non-empty strings; Hints, if present, form an
// ordered list.
type PuzzleSkeleton struct {
	Type        string   `json:"puzzle_type"`
	Description string   `json:"description"`
	Solution    string   `json:"solution"`
	Hints       []string `json:"hints,omitempty"`
	Mechanics   []string `json:"mechanics,omitempty"`
	Difficulty  int      `json:"difficulty"`
}

// PuzzleState is the skeleton plus the open-ended bag of oracle-applied twist
// fields, together with the judging counters. It is created by the mutation
// pipeline, consumed by solution submission, and discarded on phase exit.
type PuzzleState struct {
	PuzzleSkeleton
	Oracle string `json:"oracle"`

	// Twists is the open-ended bag of oracle-specific fields (decay counters,
	// rule-shift triggers, illusion markers). Mutation hooks may only add to
	// it, never drop skeleton fields.
	Twists map[string]any `json:"twists,omitempty"`

	// LieIndices records which hint positions were replaced with marked false
	// hints by a corruption twist.
	LieIndices []int `json:"lie_indices,omitempty"`

	TimeLimit            int   `json:"time_limit,omitempty"` // seconds, 0 = unlimited
	RuleShiftCheckpoints []int `json:"rule_shift_checkpoints,omitempty"`

	Attempts   int        `json:"attempts"`
	LastAnswer string     `json:"last_answer,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	SolvedAt   *time.Time `json:"solved_at,omitempty"`
}

// Solved reports whether a correct solution has been accepted.
func (p *PuzzleState) Solved() bool { return p.SolvedAt != nil }

// SetTwist records an oracle-applied field in the twist bag.
func (p *PuzzleState) SetTwist(key string, value any) {
	if p.Twists == nil {
		p.Twists = map[string]any{}
	}
	p.Twists[key] = value
}

// Clone returns a deep copy safe for independent mutation.
func (p *PuzzleState) Clone() *PuzzleState {
	c := *p
	c.Hints = append([]string(nil), p.Hints...)
	c.Mechanics = append([]string(nil), p.Mechanics...)
	c.LieIndices = append([]int(nil), p.LieIndices...)
	c.RuleShiftCheckpoints = append([]int(nil), p.RuleShiftCheckpoints...)
	if p.Twists != nil {
		c.Twists = make(map[string]any, len(p.Twists))
		for k, v := range p.Twists {
			c.Twists[k] = v
		}
	}
	if p.SolvedAt != nil {
		t := *p.SolvedAt
		c.SolvedAt = &t
	}
	return &c
}
