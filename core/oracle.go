package core

// Traits is the personality vector parameterizing prompts and the reaction
// gate. Values are on a 0..10 scale. Aggression and Chaos are domain-specific
// extensions carried only by the oracles that define them.
type Traits struct {
	Cunning    int `json:"cunning"`
	Deception  int `json:"deception"`
	Honor      int `json:"honor"`
	Wisdom     int `json:"wisdom"`
	Aggression int `json:"aggression,omitempty"`
	Chaos      int `json:"chaos,omitempty"`
}

// Rewards names what defeating an oracle grants the player.
type Rewards struct {
	ArmyUnit       string `json:"army_unit"`
	Weapon         string `json:"weapon"`
	SpecialAbility string `json:"special_ability"`
}

// OracleProfile is the static definition of one of the thirteen oracles.
// Profiles are immutable after construction and shared read-only by all
// sessions; per-session mutable state lives in EncounterState.
type OracleProfile struct {
	Name        string  `json:"name"`
	Domain      string  `json:"domain"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Lore        string  `json:"lore"`
	Difficulty  int     `json:"difficulty_level"`
	UnlockOrder int     `json:"unlock_order"`
	Traits      Traits  `json:"personality"`
	Rewards     Rewards `json:"rewards"`
}

// DefaultProfiles returns the canonical thirteen oracle definitions in unlock
// order. The slice is rebuilt on every call so callers may not corrupt the
// shared data.
func DefaultProfiles() []OracleProfile {
	return []OracleProfile{
		{
			Name:        "Chronos",
			Domain:      "Time and Fate",
			Title:       "Oracle of Time and Fate",
			Description: "Master of temporal flows, can rewind actions and predict futures",
			Lore:        "Once the keeper of Astraeum's timeline, now uses time as a weapon",
			Difficulty:  3,
			UnlockOrder: 1,
			Traits:      Traits{Cunning: 8, Deception: 6, Honor: 5, Wisdom: 9},
			Rewards:     Rewards{ArmyUnit: "Temporal Guards", Weapon: "Temporal Dagger", SpecialAbility: "Time Rewind"},
		},
		{
			Name:        "Nyx",
			Domain:      "Night and Shadows",
			Title:       "Oracle of Night and Shadows",
			Description: "Mistress of deception, lies half the time",
			Lore:        "Dwells in eternal darkness, truth and lies are indistinguishable",
			Difficulty:  4,
			UnlockOrder: 2,
			Traits:      Traits{Cunning: 9, Deception: 10, Honor: 3, Wisdom: 7},
			Rewards:     Rewards{ArmyUnit: "Shadow Stalkers", Weapon: "Shadowblade", SpecialAbility: "Shadow Veil"},
		},
		{
			Name:        "Proteus",
			Domain:      "Illusion and Transformation",
			Title:       "Oracle of Illusion",
			Description: "Shape-shifter who changes puzzle rules unexpectedly",
			Lore:        "No one has seen his true form in centuries",
			Difficulty:  5,
			UnlockOrder: 3,
			Traits:      Traits{Cunning: 8, Deception: 9, Honor: 4, Wisdom: 6},
			Rewards:     Rewards{ArmyUnit: "Illusionary Doppels", Weapon: "Mirror Shield", SpecialAbility: "Reality Warp"},
		},
		{
			Name:        "Aresion",
			Domain:      "War and Conflict",
			Title:       "Oracle of War",
			Description: "Forces combat puzzles and boosts enemy armies",
			Lore:        "Thrives on battle, every defeat makes him stronger",
			Difficulty:  6,
			UnlockOrder: 4,
			Traits:      Traits{Cunning: 6, Deception: 4, Honor: 7, Wisdom: 5, Aggression: 10},
			Rewards:     Rewards{ArmyUnit: "Elite Spartan Phalanx", Weapon: "War Spear of Ares", SpecialAbility: "Battle Frenzy"},
		},
		{
			Name:        "Athenaia",
			Domain:      "Wisdom and Strategy",
			Title:       "Oracle of Wisdom",
			Description: "Chess-engine strategist who increases puzzle complexity",
			Lore:        "Her mind is a labyrinth of perfect strategy",
			Difficulty:  7,
			UnlockOrder: 5,
			Traits:      Traits{Cunning: 7, Deception: 4, Honor: 9, Wisdom: 10},
			Rewards:     Rewards{ArmyUnit: "Tactician Commanders", Weapon: "Aegis of Wisdom", SpecialAbility: "Strategic Foresight"},
		},
		{
			Name:        "Helios",
			Domain:      "Solar Fire",
			Title:       "Oracle of the Sun",
			Description: "Burns away clues if relied upon too much",
			Lore:        "His light reveals truth but also destroys it",
			Difficulty:  6,
			UnlockOrder: 6,
			Traits:      Traits{Cunning: 5, Deception: 3, Honor: 8, Wisdom: 7},
			Rewards:     Rewards{ArmyUnit: "Sun-forged Archers", Weapon: "Solar Spear", SpecialAbility: "Solar Flare"},
		},
		{
			Name:        "Boreas",
			Domain:      "Winter Storms",
			Title:       "Oracle of the North Wind",
			Description: "Freezes troops mid-route and slows progress",
			Lore:        "Eternal winter follows in his wake",
			Difficulty:  7,
			UnlockOrder: 7,
			Traits:      Traits{Cunning: 6, Deception: 5, Honor: 6, Wisdom: 7},
			Rewards:     Rewards{ArmyUnit: "Frost Hoplites", Weapon: "Icebound Hammer", SpecialAbility: "Frozen Time"},
		},
		{
			Name:        "Gaia",
			Domain:      "Earth and Growth",
			Title:       "Oracle of the Living Earth",
			Description: "Puzzles shift and grow while being solved",
			Lore:        "The earth itself obeys her will, ever-changing",
			Difficulty:  8,
			UnlockOrder: 8,
			Traits:      Traits{Cunning: 5, Deception: 4, Honor: 8, Wisdom: 8},
			Rewards:     Rewards{ArmyUnit: "Stoneborn Cyclopes", Weapon: "Earthshaker Staff", SpecialAbility: "Tectonic Shift"},
		},
		{
			Name:        "Themis",
			Domain:      "Law and Balance",
			Title:       "Oracle of Divine Justice",
			Description: "Punishes moral contradictions in player choices",
			Lore:        "Her scales weigh every action, none escape judgment",
			Difficulty:  9,
			UnlockOrder: 9,
			Traits:      Traits{Cunning: 7, Deception: 2, Honor: 10, Wisdom: 9},
			Rewards:     Rewards{ArmyUnit: "Justice Paladins", Weapon: "Scales of Justice", SpecialAbility: "Karmic Retribution"},
		},
		{
			Name:        "Echo",
			Domain:      "Sound and Voice",
			Title:       "Oracle of Resonance",
			Description: "Audio-based illusion puzzles",
			Lore:        "Every word spoken returns distorted, every truth becomes many",
			Difficulty:  8,
			UnlockOrder: 10,
			Traits:      Traits{Cunning: 7, Deception: 8, Honor: 5, Wisdom: 6},
			Rewards:     Rewards{ArmyUnit: "Sonic Warriors", Weapon: "Echo Harp", SpecialAbility: "Reverberating Truth"},
		},
		{
			Name:        "Selene",
			Domain:      "Moon and Dreams",
			Title:       "Oracle of the Moon",
			Description: "Dream sequences warp player choices",
			Lore:        "Reality and dreams blur under her silver gaze",
			Difficulty:  9,
			UnlockOrder: 11,
			Traits:      Traits{Cunning: 8, Deception: 7, Honor: 6, Wisdom: 8},
			Rewards:     Rewards{ArmyUnit: "Lunar Phantoms", Weapon: "Moonblade", SpecialAbility: "Dream Manipulation"},
		},
		{
			Name:        "DelphiX",
			Domain:      "Prophecy and Foresight",
			Title:       "Oracle of Prophecy",
			Description: "Predicts player moves before they are made",
			Lore:        "Sees all possible futures, acts to ensure the darkest one",
			Difficulty:  10,
			UnlockOrder: 12,
			Traits:      Traits{Cunning: 9, Deception: 6, Honor: 5, Wisdom: 10},
			Rewards:     Rewards{ArmyUnit: "Prophetic Seers", Weapon: "Orb of Foresight", SpecialAbility: "Prophecy Fulfillment"},
		},
		{
			Name:        "Typhon",
			Domain:      "Chaos and Destruction",
			Title:       "Oracle of Chaos - The Final Trial",
			Description: "Boss that rewrites its own rules dynamically",
			Lore:        "The original corrupted mind, father of chaos, final guardian",
			Difficulty:  13,
			UnlockOrder: 13,
			Traits:      Traits{Cunning: 10, Deception: 10, Honor: 1, Wisdom: 8, Chaos: 10},
			Rewards:     Rewards{ArmyUnit: "Chaos Titans", Weapon: "Staff of Entropy", SpecialAbility: "Reality Rewrite"},
		},
	}
}

// ProfileByName looks up a profile in the default set.
func ProfileByName(name string) (OracleProfile, bool) {
	for _, p := range DefaultProfiles() {
		if p.Name == name {
			return p, true
		}
	}
	return OracleProfile{}, false
}

// FirstOracle returns the name of the oracle that starts accessible in a
// fresh session (the lowest unlock order).
func FirstOracle() string {
	first := OracleProfile{UnlockOrder: int(^uint(0) >> 1)}
	for _, p := range DefaultProfiles() {
		if p.UnlockOrder < first.UnlockOrder {
			first = p
		}
	}
	return first.Name
}
