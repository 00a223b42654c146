package combat

import "github.com/astraeum/oraclecore/core"

// Per-oracle enemy army templates. The first three match the original seed
// compositions; the rest are themed to each dominion. Oracles without an
// entry fall back to generic guards.
var armyTemplates = map[string][]core.UnitGroup{
	"Chronos": {
		{Name: "Time Wraiths", Attack: 15, Defense: 10, Health: 80, Quantity: 8},
		{Name: "Temporal Guards", Attack: 20, Defense: 15, Health: 120, Quantity: 5},
	},
	"Nyx": {
		{Name: "Shadow Assassins", Attack: 25, Defense: 8, Health: 70, Quantity: 10},
		{Name: "Night Stalkers", Attack: 18, Defense: 12, Health: 90, Quantity: 6},
	},
	"Proteus": {
		{Name: "Shifting Mirages", Attack: 20, Defense: 10, Health: 85, Quantity: 9},
		{Name: "Doppel Wardens", Attack: 16, Defense: 18, Health: 110, Quantity: 5},
	},
	"Aresion": {
		{Name: "War Hoplites", Attack: 22, Defense: 20, Health: 150, Quantity: 10},
		{Name: "Battle Champions", Attack: 30, Defense: 25, Health: 200, Quantity: 4},
	},
	"Athenaia": {
		{Name: "Owl Sentinels", Attack: 18, Defense: 22, Health: 130, Quantity: 7},
		{Name: "Tactician Guards", Attack: 24, Defense: 18, Health: 140, Quantity: 4},
	},
	"Helios": {
		{Name: "Sun-forged Archers", Attack: 26, Defense: 10, Health: 90, Quantity: 8},
		{Name: "Radiant Shieldbearers", Attack: 14, Defense: 24, Health: 160, Quantity: 5},
	},
	"Boreas": {
		{Name: "Frost Hoplites", Attack: 19, Defense: 21, Health: 140, Quantity: 8},
		{Name: "Blizzard Callers", Attack: 27, Defense: 12, Health: 100, Quantity: 4},
	},
	"Gaia": {
		{Name: "Stoneborn Cyclopes", Attack: 28, Defense: 26, Health: 220, Quantity: 4},
		{Name: "Root Guardians", Attack: 16, Defense: 20, Health: 150, Quantity: 8},
	},
	"Themis": {
		{Name: "Justice Paladins", Attack: 24, Defense: 24, Health: 170, Quantity: 6},
		{Name: "Oath Keepers", Attack: 20, Defense: 20, Health: 140, Quantity: 6},
	},
	"Echo": {
		{Name: "Sonic Warriors", Attack: 23, Defense: 14, Health: 110, Quantity: 8},
		{Name: "Resonance Wisps", Attack: 17, Defense: 10, Health: 70, Quantity: 10},
	},
	"Selene": {
		{Name: "Lunar Phantoms", Attack: 25, Defense: 13, Health: 95, Quantity: 9},
		{Name: "Dream Weavers", Attack: 19, Defense: 17, Health: 120, Quantity: 5},
	},
	"DelphiX": {
		{Name: "Prophetic Seers", Attack: 22, Defense: 16, Health: 120, Quantity: 7},
		{Name: "Fate Binders", Attack: 28, Defense: 14, Health: 110, Quantity: 5},
	},
	"Typhon": {
		{Name: "Chaos Titans", Attack: 35, Defense: 30, Health: 300, Quantity: 4},
		{Name: "Storm Serpents", Attack: 28, Defense: 18, Health: 180, Quantity: 8},
	},
}

var genericArmy = []core.UnitGroup{
	{Name: "Oracle Guards", Attack: 18, Defense: 15, Health: 100, Quantity: 8},
}

// GenerateEnemyArmy returns the oracle's themed composition with attack,
// defense and health scaled by the power multiplier and morale fixed at 1.0.
// The template tables are never mutated.
func GenerateEnemyArmy(oracle string, powerMultiplier float64) []core.UnitGroup {
	tpl, ok := armyTemplates[oracle]
	if !ok {
		tpl = genericArmy
	}

	units := make([]core.UnitGroup, len(tpl))
	for i, u := range tpl {
		u.Attack = int(float64(u.Attack) * powerMultiplier)
		u.Defense = int(float64(u.Defense) * powerMultiplier)
		u.Health = int(float64(u.Health) * powerMultiplier)
		u.Morale = 1.0
		units[i] = u
	}
	return units
}
