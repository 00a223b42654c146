// Package puzzle implements the two-stage mutation pipeline and solution
// judging. Stage one produces a generic skeleton, validated against a minimal
// schema with a static per-oracle fallback when generation fails; stage two
// invokes the target oracle's mutation hook to layer its signature twist.
// Mutation policy helpers (hint corruption, decay, time scaling, rule shifts,
// terrain drift) live here so behavior variants stay thin.
package puzzle

import (
	"context"
	"time"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/internal/util"
	"github.com/astraeum/oraclecore/logging"
)

// Mutator is the slice of agent behavior the pipeline needs. The behavior
// registry's variants satisfy it.
type Mutator interface {
	GeneratePuzzle(ctx context.Context, difficulty int, playerContext map[string]any) (core.PuzzleSkeleton, error)
	ModifyPuzzleRules(ctx context.Context, skeleton core.PuzzleSkeleton) (*core.PuzzleState, error)
}

// Pipeline builds oracle puzzles. Zero value is not usable; construct with
// NewPipeline.
type Pipeline struct {
	logger logging.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(optFns ...func(p *Pipeline)) *Pipeline {
	p := &Pipeline{logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(p)
	}
	return p
}

// WithLogger sets the pipeline logger.
func WithLogger(l logging.Logger) func(p *Pipeline) {
	return func(p *Pipeline) { p.logger = l }
}

// Build runs the two-stage pipeline for one oracle. Generation and validation
// failures substitute the static fallback template; a failing mutation hook
// degrades to the unmutated skeleton. Build never returns an invalid puzzle.
func (p *Pipeline) Build(ctx context.Context, m Mutator, oracle string, difficulty int, playerContext map[string]any) *core.PuzzleState {
	skeleton, err := m.GeneratePuzzle(ctx, difficulty, playerContext)
	if err != nil {
		p.logger.Warn("puzzle generation failed, using fallback template", "oracle", oracle, "error", err)
		skeleton = FallbackSkeleton(oracle, difficulty)
	}
	if verr := util.ValidateSkeleton(skeleton); verr != nil {
		p.logger.Warn("generated skeleton failed validation, using fallback template", "oracle", oracle, "error", verr)
		skeleton = FallbackSkeleton(oracle, difficulty)
	}

	st, err := m.ModifyPuzzleRules(ctx, skeleton)
	if err != nil || st == nil {
		if err != nil {
			p.logger.Warn("puzzle mutation failed, keeping unmutated skeleton", "oracle", oracle, "error", err)
		}
		st = NewState(oracle, skeleton)
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	return st
}

// NewState wraps a skeleton in a fresh PuzzleState for an oracle.
func NewState(oracle string, skeleton core.PuzzleSkeleton) *core.PuzzleState {
	return &core.PuzzleState{
		PuzzleSkeleton: skeleton,
		Oracle:         oracle,
		CreatedAt:      time.Now().UTC(),
	}
}
