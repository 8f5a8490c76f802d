package focus

import "math"

// decision is one friendly → enemy choice before packaging, by index into
// the battle's sorted slices.
type decision struct {
	friendly int
	enemy    int
	damage   float64
}

// allocate walks order (friendly indices, ascending ID) and greedily assigns
// each unit. incoming is the per-enemy damage accumulator; callers running
// clusters in parallel pass the same slice because clusters never share an
// enemy index.
func (b *battle) allocate(order []int, incoming []float64) []decision {
	eps := b.cfg.Epsilon
	out := make([]decision, 0, len(order))
	var buf []int

	for _, fi := range order {
		f := &b.friendly[fi]
		buf = b.candidates(f, buf)
		if len(buf) == 0 {
			continue
		}
		dmg := b.tickDamage(f)

		live, liveScore := -1, math.Inf(-1)
		spill, spillScore := -1, math.Inf(-1)
		for _, ei := range buf {
			e := &b.enemy[ei]
			remaining := e.Health - incoming[ei]
			if remaining > eps {
				// Score follows the damage already promised this tick.
				if s := b.score(f.Pos, &f.entry, e, remaining); s > liveScore {
					live, liveScore = ei, s
				}
				continue
			}
			if live >= 0 {
				continue
			}
			// Doomed already. Only worth holding as an overflow target while
			// the extra damage stays inside the slack.
			if incoming[ei]+dmg <= e.Health*(1+b.cfg.OverkillSlack)+eps {
				if s := b.score(f.Pos, &f.entry, e, 0); s > spillScore {
					spill, spillScore = ei, s
				}
			}
		}

		target := live
		if target < 0 {
			target = spill
		}
		if target < 0 {
			continue
		}
		incoming[target] += dmg
		out = append(out, decision{friendly: fi, enemy: target, damage: dmg})
	}
	return out
}
