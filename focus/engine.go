package focus

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/nstehr/ares/ares-core/spatial"
	"github.com/nstehr/ares/ares-core/typetable"
)

// Engine allocates focus fire. It keeps only the read-only type table and
// configuration, so one Engine can serve concurrent callers.
type Engine struct {
	table *typetable.Table
	cfg   Config
}

// New validates cfg and binds the engine to a type table.
func New(table *typetable.Table, cfg Config) (*Engine, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil type table", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{table: table, cfg: cfg}, nil
}

// Config returns the engine's tunables.
func (e *Engine) Config() Config { return e.cfg }

// Assign pairs friendly units with enemy targets for one tick. See the
// package documentation for determinism guarantees. It returns
// ErrInvalidInput, with no partial result, for malformed snapshots.
func (e *Engine) Assign(friendly, enemy []UnitSnapshot) (Assignment, error) {
	b, err := e.prepare(friendly, enemy)
	if err != nil {
		return nil, err
	}
	if len(b.friendly) == 0 || len(b.enemy) == 0 {
		return Assignment{}, nil
	}

	var decisions []decision
	if e.cfg.ParallelMinUnits > 0 && len(b.friendly) >= e.cfg.ParallelMinUnits {
		decisions = b.allocateClustered()
	} else {
		order := make([]int, len(b.friendly))
		for i := range order {
			order[i] = i
		}
		decisions = b.allocate(order, make([]float64, len(b.enemy)))
	}
	return b.pack(decisions), nil
}

// Rank orders enemies by full-health score as seen from the friendly group's
// centroid, highest first, ties by ascending ID. It is the static ordering
// Assign starts from before damage accumulates and is useful for logging.
func (e *Engine) Rank(friendly, enemy []UnitSnapshot) ([]Ranked, error) {
	b, err := e.prepare(friendly, enemy)
	if err != nil {
		return nil, err
	}
	pts := make([]spatial.Vec2, len(b.friendly))
	for i := range b.friendly {
		pts[i] = b.friendly[i].Pos
	}
	centre := spatial.Centroid(pts)

	out := make([]Ranked, len(b.enemy))
	for i := range b.enemy {
		out[i] = Ranked{
			ID:    b.enemy[i].ID,
			Score: b.score(centre, nil, &b.enemy[i], b.enemy[i].Health),
		}
	}
	slices.SortStableFunc(out, func(a, c Ranked) int {
		if a.Score != c.Score {
			return cmp.Compare(c.Score, a.Score)
		}
		return cmp.Compare(a.ID, c.ID)
	})
	return out, nil
}

// battle is the per-call working set. Both sides are sorted by ID so that
// index order is ID order everywhere below.
type battle struct {
	scorer
	friendly []combatant
	enemy    []combatant
	grid     *spatial.Grid
}

func (e *Engine) prepare(friendly, enemy []UnitSnapshot) (*battle, error) {
	fs, err := e.resolve("friendly", friendly)
	if err != nil {
		return nil, err
	}
	es, err := e.resolve("enemy", enemy)
	if err != nil {
		return nil, err
	}
	pts := make([]spatial.Vec2, len(es))
	for i := range es {
		pts[i] = es[i].Pos
	}
	return &battle{
		scorer:   scorer{table: e.table, cfg: e.cfg},
		friendly: fs,
		enemy:    es,
		grid:     spatial.NewGrid(e.cfg.GridCellSize, pts),
	}, nil
}

func (e *Engine) resolve(side string, units []UnitSnapshot) ([]combatant, error) {
	out := make([]combatant, len(units))
	seen := make(map[uint64]struct{}, len(units))
	for i, u := range units {
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate %s id %d", ErrInvalidInput, side, u.ID)
		}
		seen[u.ID] = struct{}{}

		entry, err := e.table.Resolve(u.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %d: %w", ErrInvalidInput, side, u.ID, err)
		}
		if !u.Pos.Finite() {
			return nil, fmt.Errorf("%w: %s %d: position %v not finite", ErrInvalidInput, side, u.ID, u.Pos)
		}
		if math.IsNaN(u.Health) || math.IsInf(u.Health, 0) || u.Health < 0 {
			return nil, fmt.Errorf("%w: %s %d: health %v", ErrInvalidInput, side, u.ID, u.Health)
		}
		out[i] = combatant{UnitSnapshot: u, entry: entry}
	}
	slices.SortFunc(out, func(a, b combatant) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// reach is how far f may look for targets this tick.
func (b *battle) reach(f *combatant) float64 {
	return f.entry.AttackRange + b.cfg.PursuitBuffer
}

// tickDamage is f's expected damage over one decision tick.
func (b *battle) tickDamage(f *combatant) float64 {
	return f.entry.DPS() * b.cfg.TickDuration
}

// candidates appends to buf[:0] the enemies f can both reach and hit.
func (b *battle) candidates(f *combatant, buf []int) []int {
	if !f.entry.Armed() {
		return buf[:0]
	}
	buf = b.grid.Within(f.Pos, b.reach(f), buf)
	out := buf[:0]
	for _, ei := range buf {
		if f.entry.CanHit(b.enemy[ei].entry) {
			out = append(out, ei)
		}
	}
	return out
}
