// Package focus decides which enemy each friendly unit should shoot this tick.
//
// The engine is a pure function of its inputs: every call builds its own
// spatial index and damage accumulators and discards them on return, so the
// same snapshots always produce the same Assignment.
package focus

import (
	"github.com/nstehr/ares/ares-core/spatial"
	"github.com/nstehr/ares/ares-core/typetable"
)

// UnitSnapshot is one combat-relevant entity at decision time. Weapon range,
// damage and cadence are not carried here; they come from the type table via
// Kind.
type UnitSnapshot struct {
	ID     uint64
	Pos    spatial.Vec2
	Kind   typetable.Kind
	Health float64
}

// Pair orders Friendly to attack Enemy.
type Pair struct {
	Friendly uint64 `json:"friendly"`
	Enemy    uint64 `json:"enemy"`
}

// Assignment lists pairs in the order friendly units were processed, which is
// ascending friendly ID. Unlisted friendlies had nothing useful in reach.
type Assignment []Pair

// Targets returns a friendly → enemy lookup.
func (a Assignment) Targets() map[uint64]uint64 {
	m := make(map[uint64]uint64, len(a))
	for _, p := range a {
		m[p.Friendly] = p.Enemy
	}
	return m
}

// Focus counts attackers per enemy.
func (a Assignment) Focus() map[uint64]int {
	m := make(map[uint64]int)
	for _, p := range a {
		m[p.Enemy]++
	}
	return m
}
