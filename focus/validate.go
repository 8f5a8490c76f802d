package focus

import (
	"fmt"
	"log/slog"
)

// pack checks every decision against the output invariants and converts the
// survivors into an Assignment. A violation is an allocator bug: debug builds
// panic, release builds drop the pair so the host loop keeps its orders.
func (b *battle) pack(decisions []decision) Assignment {
	out := make(Assignment, 0, len(decisions))
	seen := make(map[int]bool, len(decisions))
	total := make([]float64, len(b.enemy))

	for _, d := range decisions {
		if err := b.check(d, seen, total); err != nil {
			invariantViolated(err)
			continue
		}
		seen[d.friendly] = true
		total[d.enemy] += d.damage
		out = append(out, Pair{
			Friendly: b.friendly[d.friendly].ID,
			Enemy:    b.enemy[d.enemy].ID,
		})
	}
	return out
}

// check validates d given the decisions accepted before it.
func (b *battle) check(d decision, seen map[int]bool, total []float64) error {
	if d.friendly < 0 || d.friendly >= len(b.friendly) {
		return fmt.Errorf("friendly index %d out of range", d.friendly)
	}
	f := &b.friendly[d.friendly]
	if seen[d.friendly] {
		return fmt.Errorf("friendly %d assigned twice", f.ID)
	}
	if d.enemy < 0 || d.enemy >= len(b.enemy) {
		return fmt.Errorf("friendly %d: enemy index %d not in input", f.ID, d.enemy)
	}
	e := &b.enemy[d.enemy]
	if r := b.reach(f); f.Pos.DistSq(e.Pos) > r*r {
		return fmt.Errorf("friendly %d: enemy %d at %.2f beyond reach %.2f", f.ID, e.ID, f.Pos.Dist(e.Pos), r)
	}

	// A blow on a target that still needed damage may overshoot; that is the
	// unavoidable overflow. Anything piled on after death must fit the slack.
	eps := b.cfg.Epsilon
	before := total[d.enemy]
	if e.Health-before <= eps {
		if limit := e.Health*(1+b.cfg.OverkillSlack) + eps; before+d.damage > limit {
			return fmt.Errorf("enemy %d: %.2f incoming exceeds overkill limit %.2f", e.ID, before+d.damage, limit)
		}
	}
	return nil
}

func invariantViolated(err error) {
	if strictInvariants {
		panic("focus: invariant violated: " + err.Error())
	}
	slog.Warn("dropping assignment", "error", err)
}
