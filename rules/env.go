package rules

import "github.com/nstehr/ares/ares-core/model"

// RuleEnv wraps game state and exposes helper methods callable from expr expressions.
type RuleEnv struct {
	State      model.GameState
	Posture    string  // current posture name, for engage rules
	Army       int     // combat units as counted by the agent
	BaseRadius float64 // how close an enemy must be to count as attacking the base
}

// EnemyHas reports whether any visible enemy unit or structure has type t.
func (e RuleEnv) EnemyHas(t string) bool {
	return containsType(e.State.Enemies, t) || containsType(e.State.EnemyStructures, t)
}

func (e RuleEnv) EnemyHasAny(types ...string) bool {
	return e.EnemyCountAny(types...) > 0
}

func (e RuleEnv) EnemyTypeCount(t string) int {
	return countType(e.State.Enemies, t) + countType(e.State.EnemyStructures, t)
}

// EnemyCountAny counts visible enemies, units and structures, of any of types.
func (e RuleEnv) EnemyCountAny(types ...string) int {
	return countAnyType(e.State.Enemies, types) + countAnyType(e.State.EnemyStructures, types)
}

func (e RuleEnv) EnemyCount() int          { return len(e.State.Enemies) }
func (e RuleEnv) EnemyStructureCount() int { return len(e.State.EnemyStructures) }

func (e RuleEnv) ArmyCount() int   { return e.Army }
func (e RuleEnv) SupplyUsed() int  { return e.State.Player.SupplyUsed }
func (e RuleEnv) SupplyCap() int   { return e.State.Player.SupplyCap }
func (e RuleEnv) Minerals() int    { return e.State.Player.Minerals }
func (e RuleEnv) Vespene() int     { return e.State.Player.Vespene }
func (e RuleEnv) Minutes() float64 { return e.State.Minutes() }

func (e RuleEnv) HasTownHall() bool { return len(e.State.TownHalls) > 0 }

// EnemiesNearBase counts enemy units within BaseRadius of our first town hall.
func (e RuleEnv) EnemiesNearBase() int {
	if len(e.State.TownHalls) == 0 {
		return 0
	}
	base := e.State.TownHalls[0].Pos()
	r2 := e.BaseRadius * e.BaseRadius
	n := 0
	for _, u := range e.State.Enemies {
		if u.Pos().DistSq(base) < r2 {
			n++
		}
	}
	return n
}
