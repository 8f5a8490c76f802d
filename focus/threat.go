package focus

import (
	"math"

	"github.com/nstehr/ares/ares-core/spatial"
	"github.com/nstehr/ares/ares-core/typetable"
)

// combatant pairs a snapshot with its resolved type profile.
type combatant struct {
	UnitSnapshot
	entry typetable.Entry
}

// scorer turns an enemy into a single priority as seen from one position.
// Everything tunable lives in the type table or Config; the formulas are fixed.
type scorer struct {
	table *typetable.Table
	cfg   Config
}

// killValue favours targets that die soonest: the class weight divided by
// the health still standing. Static defense gets the table's threat
// multiplier when its reach covers the viewer.
func (s scorer) killValue(enemy typetable.Entry, remaining float64, threatens bool) float64 {
	w := s.table.ClassWeight(enemy.Class)
	if threatens {
		w *= s.table.DefenseThreatMultiplier()
	}
	return w / math.Max(remaining, s.cfg.HealthFloor)
}

// dangerWeight is 1 plus the enemy's DPS against the viewer, discounted by
// how many seconds it needs to close into its own weapon range.
func (s scorer) dangerWeight(enemy typetable.Entry, dist float64, hitsViewer bool) float64 {
	if !hitsViewer {
		return 1
	}
	dps := enemy.DPS()
	if dps == 0 {
		return 1
	}
	t := 0.0
	if gap := dist - enemy.AttackRange; gap > 0 {
		if enemy.Speed > 0 {
			t = math.Min(gap/enemy.Speed, s.cfg.DangerHorizon)
		} else {
			t = s.cfg.DangerHorizon
		}
	}
	return 1 + dps/(1+t)
}

// score is killValue × dangerWeight for enemy e from pos. viewer is the
// attacking unit's profile; nil scores against a generic ground unit, which
// is how the group-level ranking looks at the field.
func (s scorer) score(pos spatial.Vec2, viewer *typetable.Entry, e *combatant, remaining float64) float64 {
	dist := pos.Dist(e.Pos)
	hits := viewer == nil || e.entry.CanHit(*viewer)
	threatens := hits &&
		e.entry.Class == typetable.ClassDefense &&
		e.entry.Speed == 0 &&
		dist <= e.entry.AttackRange+s.cfg.PursuitBuffer
	return s.killValue(e.entry, remaining, threatens) * s.dangerWeight(e.entry, dist, hits)
}

// Ranked is one row of the group-level priority list.
type Ranked struct {
	ID    uint64
	Score float64
}
