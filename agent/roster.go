package agent

import (
	"log/slog"
	"strings"

	"github.com/nstehr/ares/ares-core/focus"
	"github.com/nstehr/ares/ares-core/model"
	"github.com/nstehr/ares/ares-core/spatial"
	"github.com/nstehr/ares/ares-core/typetable"
)

// roster is one tick's state split into allocation inputs.
type roster struct {
	army     []model.Unit // our combat units, in host order
	friendly []focus.UnitSnapshot
	enemy    []focus.UnitSnapshot
	unknown  int // entities skipped because the type table lacks their kind
}

// isCombat picks out units worth ordering into a fight: armed, mobile, and
// not a worker.
func isCombat(e typetable.Entry) bool {
	return e.Armed() && !e.Structure && e.Class != typetable.ClassWorker
}

// buildRoster resolves every entity against the table. Kinds the table does
// not know are skipped rather than passed on, so one new unit type cannot
// reject the whole allocation.
func buildRoster(table *typetable.Table, gs model.GameState) roster {
	var r roster
	for _, u := range gs.Units {
		e, ok := table.Lookup(typetable.Kind(u.Kind))
		if !ok {
			r.unknown++
			continue
		}
		if !isCombat(e) || u.Health <= 0 {
			continue
		}
		r.army = append(r.army, u)
		r.friendly = append(r.friendly, snapshot(u))
	}
	for _, group := range [][]model.Unit{gs.Enemies, gs.EnemyStructures} {
		for _, u := range group {
			if _, ok := table.Lookup(typetable.Kind(u.Kind)); !ok {
				r.unknown++
				continue
			}
			if u.Health <= 0 {
				continue
			}
			r.enemy = append(r.enemy, snapshot(u))
		}
	}
	if r.unknown > 0 {
		slog.Debug("skipped entities with unknown kind", "tick", gs.Tick, "count", r.unknown)
	}
	return r
}

func snapshot(u model.Unit) focus.UnitSnapshot {
	return focus.UnitSnapshot{
		ID:     u.ID,
		Pos:    spatial.Vec2{X: u.X, Y: u.Y},
		Kind:   typetable.Kind(u.Kind),
		Health: u.Health,
	}
}

// threats are the enemy compositions the strategy layer reacts to.
type threats struct {
	tanks   bool
	bunkers bool
	air     bool
}

func (t threats) names() []string {
	var out []string
	if t.tanks {
		out = append(out, "tanks")
	}
	if t.bunkers {
		out = append(out, "bunkers")
	}
	if t.air {
		out = append(out, "air")
	}
	return out
}

func threatsOf(table *typetable.Table, gs model.GameState) threats {
	var t threats
	for _, u := range gs.Enemies {
		// Only sieged tanks entrench; mobile ones are ordinary army.
		if strings.EqualFold(u.Type, "siegetanksieged") {
			t.tanks = true
		}
		if e, ok := table.Lookup(typetable.Kind(u.Kind)); ok && e.Air && e.Armed() {
			t.air = true
		}
	}
	for _, s := range gs.EnemyStructures {
		if strings.EqualFold(s.Type, "bunker") {
			t.bunkers = true
		}
	}
	return t
}
