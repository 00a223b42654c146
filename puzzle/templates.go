package puzzle

import (
	"fmt"

	"github.com/astraeum/oraclecore/core"
)

// fallbackTemplate is the static per-oracle puzzle used when inference fails.
type fallbackTemplate struct {
	puzzleType  string
	description string
	solution    string
	hints       []string
	mechanics   []string
}

// Static fallback table keyed by oracle name. Oracles without an entry get
// the generic template. Solutions are intentionally simple; the fallback
// exists to keep the encounter playable, not to be a good puzzle.
var fallbackTemplates = map[string]fallbackTemplate{
	"Chronos": {
		puzzleType:  "temporal_sequence",
		description: "Arrange the shattered moments of Astraeum's timeline in the order they truly occurred.",
		solution:    "dawn noon dusk midnight",
		hints:       []string{"The first light precedes all", "Darkness always arrives last"},
		mechanics:   []string{"time_limit", "rewind_on_wrong_answer"},
	},
	"Nyx": {
		puzzleType:  "shadow_maze",
		description: "Three paths wind through the dark. Two are illusions. Name the true path.",
		solution:    "the unlit path",
		hints:       []string{"The path of light leads to treasure", "Trust nothing that glitters"},
		mechanics:   []string{"false_clues", "truth_detection"},
	},
	"Proteus": {
		puzzleType:  "metamorphic_pattern",
		description: "The symbols transform as you watch. State what the fourth symbol becomes.",
		solution:    "serpent",
		hints:       []string{"Each form feeds the next"},
		mechanics:   []string{"rule_shifts", "pattern_recognition"},
	},
	"Aresion": {
		puzzleType:  "tactical_formation",
		description: "Position your three units to hold the pass against a flanking charge.",
		solution:    "phalanx center archers rear",
		hints:       []string{"Spears blunt a charge", "Never expose your ranged line"},
		mechanics:   []string{"troop_positioning", "victory_conditions"},
	},
	"Athenaia": {
		puzzleType:  "strategic_positioning",
		description: "Place the four pieces so that every file is defended and no piece is wasted.",
		solution:    "tower owl shield spear",
		hints:       []string{"The owl watches the widest board"},
		mechanics:   []string{"constraints", "multi_step_solution"},
	},
	"Helios": {
		puzzleType:  "solar_reflection",
		description: "Angle the mirrors so one ray burns away all four shadow knots.",
		solution:    "east west north",
		hints:       []string{"Light bends only where you let it", "The last knot hides behind the second"},
		mechanics:   []string{"hint_decay", "light_routing"},
	},
	"Boreas": {
		puzzleType:  "thaw_sequence",
		description: "Five seals are frozen shut. Thaw them in the only order that does not refreeze the rest.",
		solution:    "third first fifth second fourth",
		hints:       []string{"The center thaws nothing around it"},
		mechanics:   []string{"freeze_mechanics", "ordered_sequence"},
	},
	"Gaia": {
		puzzleType:  "living_maze",
		description: "The hedge walls grow as you walk. Name the landmark that never moves.",
		solution:    "the stone root",
		hints:       []string{"Growth follows your footsteps", "Only what is dead stays still"},
		mechanics:   []string{"terrain_drift", "moving_walls"},
	},
	"Themis": {
		puzzleType:  "moral_dilemma",
		description: "Two petitioners claim the same harvest. Judge the claim that the law upholds.",
		solution:    "the one who sowed",
		hints:       []string{"The scales weigh deeds, not words"},
		mechanics:   []string{"moral_tracking", "consequences"},
	},
	"Echo": {
		puzzleType:  "resonance_pattern",
		description: "Four tones return distorted from the canyon. Name the tone that was never sung.",
		solution:    "the silent third",
		hints:       []string{"An echo cannot invent, only repeat"},
		mechanics:   []string{"audio_pattern", "echo_distortion"},
	},
	"Selene": {
		puzzleType:  "dream_layers",
		description: "You wake three times; only one waking is real. Name the anchor of the true world.",
		solution:    "the scarred moon",
		hints:       []string{"Dreams are always whole and perfect"},
		mechanics:   []string{"reality_anchor", "dream_layers"},
	},
	"DelphiX": {
		puzzleType:  "prophecy_sequence",
		description: "The oracle has foreseen your next three moves. Make the one move not written.",
		solution:    "stand still",
		hints:       []string{"Prophecy binds only those who act"},
		mechanics:   []string{"future_sight", "prediction"},
	},
	"Typhon": {
		puzzleType:  "chaos_trial",
		description: "Time, shadow, illusion and war entwine. Speak the one word that precedes them all.",
		solution:    "order",
		hints:       []string{"Chaos remembers what it destroyed"},
		mechanics:   []string{"combines_all_oracles", "phase_transitions"},
	},
}

// FallbackSkeleton returns the static template for an oracle, or a generic
// riddle for any name outside the table. The result always passes skeleton
// validation.
func FallbackSkeleton(oracle string, difficulty int) core.PuzzleSkeleton {
	tpl, ok := fallbackTemplates[oracle]
	if !ok {
		tpl = fallbackTemplate{
			puzzleType:  "riddle",
			description: fmt.Sprintf("%s poses an ancient riddle: what walks on four legs at dawn, two at noon, and three at dusk?", oracle),
			solution:    "man",
			hints:       []string{"Count the stages of a life"},
			mechanics:   []string{"riddle"},
		}
	}
	return core.PuzzleSkeleton{
		Type:        tpl.puzzleType,
		Description: tpl.description,
		Solution:    tpl.solution,
		Hints:       append([]string(nil), tpl.hints...),
		Mechanics:   append([]string(nil), tpl.mechanics...),
		Difficulty:  difficulty,
	}
}
