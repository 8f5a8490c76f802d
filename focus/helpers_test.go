package focus

import (
	"math/rand"
	"testing"

	"github.com/nstehr/ares/ares-core/spatial"
	"github.com/nstehr/ares/ares-core/typetable"
	"github.com/stretchr/testify/require"
)

const (
	kindBlob   typetable.Kind = 1 // range 5, 10 dmg/s, ground
	kindTower  typetable.Kind = 3 // static defense, range 3
	kindFlyer  typetable.Kind = 4 // air shooter
	kindAA     typetable.Kind = 5 // hits air only
	kindWorker typetable.Kind = 6
	kindDepot  typetable.Kind = 7 // unarmed structure
	kindTank   typetable.Kind = 8 // critical
	kindSniper typetable.Kind = 9 // long range, 40 per hit
)

func testTable(t testing.TB) *typetable.Table {
	t.Helper()
	tbl, err := typetable.New("test", map[typetable.Class]float64{
		typetable.ClassCritical:  100,
		typetable.ClassShooter:   50,
		typetable.ClassWorker:    20,
		typetable.ClassDefense:   10,
		typetable.ClassStructure: 1,
	}, 8,
		typetable.Entry{Kind: kindBlob, Name: "blob", AttackRange: 5, DamagePerHit: 10, AttackInterval: 1, Speed: 2, Class: typetable.ClassShooter},
		typetable.Entry{Kind: kindTower, Name: "tower", AttackRange: 3, DamagePerHit: 20, AttackInterval: 1, Class: typetable.ClassDefense, Structure: true},
		typetable.Entry{Kind: kindFlyer, Name: "flyer", AttackRange: 5, DamagePerHit: 10, AttackInterval: 1, Speed: 3, Class: typetable.ClassShooter, Air: true},
		typetable.Entry{Kind: kindAA, Name: "aa", AttackRange: 7, DamagePerHit: 10, AttackInterval: 1, Speed: 2, Class: typetable.ClassShooter, Targets: typetable.TargetsAir},
		typetable.Entry{Kind: kindWorker, Name: "worker", AttackRange: 0.5, DamagePerHit: 5, AttackInterval: 1, Speed: 3, Class: typetable.ClassWorker},
		typetable.Entry{Kind: kindDepot, Name: "depot", Class: typetable.ClassStructure, Structure: true, Targets: typetable.TargetsNone},
		typetable.Entry{Kind: kindTank, Name: "tank", AttackRange: 7, DamagePerHit: 15, AttackInterval: 1, Speed: 2, Class: typetable.ClassCritical},
		typetable.Entry{Kind: kindSniper, Name: "sniper", AttackRange: 9, DamagePerHit: 40, AttackInterval: 2, Speed: 1, Class: typetable.ClassShooter, Targets: typetable.TargetsBoth},
	)
	require.NoError(t, err)
	return tbl
}

func testEngine(t testing.TB, mutate ...func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ParallelMinUnits = 0
	for _, m := range mutate {
		m(&cfg)
	}
	e, err := New(testTable(t), cfg)
	require.NoError(t, err)
	return e
}

func unit(id uint64, kind typetable.Kind, x, y, health float64) UnitSnapshot {
	return UnitSnapshot{ID: id, Kind: kind, Pos: spatial.Vec2{X: x, Y: y}, Health: health}
}

var battleKinds = []typetable.Kind{kindBlob, kindBlob, kindBlob, kindTower, kindFlyer, kindAA, kindWorker, kindDepot, kindTank, kindSniper}

// randomBattle scatters both sides over a few skirmish sites so that some
// units are out of reach of everything and some sites overlap.
func randomBattle(seed int64, nFriendly, nEnemy int) (friendly, enemy []UnitSnapshot) {
	rng := rand.New(rand.NewSource(seed))
	sites := make([]spatial.Vec2, 1+rng.Intn(4))
	for i := range sites {
		sites[i] = spatial.Vec2{X: rng.Float64() * 120, Y: rng.Float64() * 120}
	}
	place := func() spatial.Vec2 {
		s := sites[rng.Intn(len(sites))]
		return spatial.Vec2{X: s.X + rng.NormFloat64()*6, Y: s.Y + rng.NormFloat64()*6}
	}
	// IDs are drawn from one pool and shuffled so input order is not ID order.
	ids := rng.Perm(nFriendly + nEnemy)
	for i := 0; i < nFriendly; i++ {
		p := place()
		k := battleKinds[rng.Intn(len(battleKinds))]
		friendly = append(friendly, UnitSnapshot{ID: uint64(ids[i] + 1), Kind: k, Pos: p, Health: 10 + rng.Float64()*150})
	}
	for i := 0; i < nEnemy; i++ {
		p := place()
		k := battleKinds[rng.Intn(len(battleKinds))]
		enemy = append(enemy, UnitSnapshot{ID: uint64(ids[nFriendly+i] + 1), Kind: k, Pos: p, Health: 1 + rng.Float64()*120})
	}
	return friendly, enemy
}
