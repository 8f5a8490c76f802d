package focus

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/nstehr/ares/ares-core/typetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_Scenarios(t *testing.T) {
	t.Run("single enemy takes exactly enough attackers", func(t *testing.T) {
		e := testEngine(t)
		var friendly []UnitSnapshot
		for id := uint64(1); id <= 5; id++ {
			friendly = append(friendly, unit(id, kindBlob, 0, 0, 40))
		}
		enemy := []UnitSnapshot{unit(100, kindBlob, 2, 0, 30)}

		got, err := e.Assign(friendly, enemy)
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 100}, {2, 100}, {3, 100}}, got)
	})

	t.Run("weak enemy gets one attacker, the rest go to the tough one", func(t *testing.T) {
		e := testEngine(t)
		var friendly []UnitSnapshot
		for id := uint64(1); id <= 4; id++ {
			friendly = append(friendly, unit(id, kindBlob, 0, float64(id)*0.1, 40))
		}
		enemy := []UnitSnapshot{
			unit(10, kindBlob, 2, 0, 10),
			unit(11, kindBlob, 2, 1, 100),
		}

		got, err := e.Assign(friendly, enemy)
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 10}, {2, 11}, {3, 11}, {4, 11}}, got)
		assert.Equal(t, map[uint64]int{10: 1, 11: 3}, got.Focus())
	})

	t.Run("no enemies", func(t *testing.T) {
		e := testEngine(t)
		friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40), unit(2, kindBlob, 1, 0, 40), unit(3, kindBlob, 2, 0, 40)}

		got, err := e.Assign(friendly, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("duplicate friendly id", func(t *testing.T) {
		e := testEngine(t)
		friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40), unit(1, kindBlob, 1, 0, 40)}
		enemy := []UnitSnapshot{unit(100, kindBlob, 2, 0, 30)}

		got, err := e.Assign(friendly, enemy)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.Nil(t, got)
	})

	t.Run("enemy out of range of everyone", func(t *testing.T) {
		e := testEngine(t)
		friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40), unit(2, kindBlob, 1, 1, 40)}
		enemy := []UnitSnapshot{unit(100, kindBlob, 60, 60, 30)}

		got, err := e.Assign(friendly, enemy)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestAssign_NoFriendlies(t *testing.T) {
	got, err := testEngine(t).Assign(nil, []UnitSnapshot{unit(1, kindBlob, 0, 0, 10)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssign_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		friendly []UnitSnapshot
		enemy    []UnitSnapshot
		also     error
	}{
		{
			name:     "duplicate enemy id",
			friendly: []UnitSnapshot{unit(1, kindBlob, 0, 0, 10)},
			enemy:    []UnitSnapshot{unit(5, kindBlob, 1, 0, 10), unit(5, kindTank, 2, 0, 10)},
		},
		{
			name:     "unknown friendly kind",
			friendly: []UnitSnapshot{unit(1, 999, 0, 0, 10)},
			enemy:    []UnitSnapshot{unit(5, kindBlob, 1, 0, 10)},
			also:     typetable.ErrUnknownKind,
		},
		{
			name:     "unknown enemy kind",
			friendly: []UnitSnapshot{unit(1, kindBlob, 0, 0, 10)},
			enemy:    []UnitSnapshot{unit(5, 4242, 1, 0, 10)},
			also:     typetable.ErrUnknownKind,
		},
		{
			name:     "non-finite position",
			friendly: []UnitSnapshot{unit(1, kindBlob, math.NaN(), 0, 10)},
			enemy:    []UnitSnapshot{unit(5, kindBlob, 1, 0, 10)},
		},
		{
			name:     "infinite position",
			friendly: []UnitSnapshot{unit(1, kindBlob, 0, 0, 10)},
			enemy:    []UnitSnapshot{unit(5, kindBlob, math.Inf(1), 0, 10)},
		},
		{
			name:     "negative health",
			friendly: []UnitSnapshot{unit(1, kindBlob, 0, 0, 10)},
			enemy:    []UnitSnapshot{unit(5, kindBlob, 1, 0, -3)},
		},
		{
			name:     "NaN health",
			friendly: []UnitSnapshot{unit(1, kindBlob, 0, 0, math.NaN())},
			enemy:    []UnitSnapshot{unit(5, kindBlob, 1, 0, 10)},
		},
	}
	e := testEngine(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Assign(tc.friendly, tc.enemy)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			if tc.also != nil {
				assert.ErrorIs(t, err, tc.also)
			}
			assert.Nil(t, got)
		})
	}
}

func TestAssign_PrefersCriticalTargets(t *testing.T) {
	e := testEngine(t)
	friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40)}
	enemy := []UnitSnapshot{
		unit(10, kindBlob, 3, 0, 100),
		unit(11, kindTank, 0, 3, 100),
	}

	got, err := e.Assign(friendly, enemy)
	require.NoError(t, err)
	assert.Equal(t, Assignment{{1, 11}}, got)
}

func TestAssign_StaticDefenseThreat(t *testing.T) {
	e := testEngine(t)
	friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40)}

	t.Run("tower covering the approach is taken out first", func(t *testing.T) {
		enemy := []UnitSnapshot{unit(10, kindTower, 3, 0, 100), unit(11, kindBlob, 0, 4, 100)}
		got, err := e.Assign(friendly, enemy)
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 10}}, got)
	})

	t.Run("tower out of its own reach is left alone", func(t *testing.T) {
		enemy := []UnitSnapshot{unit(10, kindTower, 6, 0, 100), unit(11, kindBlob, 0, 4, 100)}
		got, err := e.Assign(friendly, enemy)
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 11}}, got)
	})
}

func TestAssign_AirGroundLayers(t *testing.T) {
	e := testEngine(t)
	enemy := []UnitSnapshot{unit(10, kindFlyer, 1, 0, 50)}

	got, err := e.Assign([]UnitSnapshot{unit(1, kindBlob, 0, 0, 40)}, enemy)
	require.NoError(t, err)
	assert.Empty(t, got, "ground weapons cannot reach air")

	got, err = e.Assign([]UnitSnapshot{unit(1, kindAA, 0, 0, 40)}, enemy)
	require.NoError(t, err)
	assert.Equal(t, Assignment{{1, 10}}, got)

	got, err = e.Assign([]UnitSnapshot{unit(1, kindAA, 0, 0, 40)}, []UnitSnapshot{unit(10, kindBlob, 1, 0, 50)})
	require.NoError(t, err)
	assert.Empty(t, got, "anti-air cannot shoot ground")
}

func TestAssign_UnarmedFriendlyNeverAssigned(t *testing.T) {
	got, err := testEngine(t).Assign(
		[]UnitSnapshot{unit(1, kindDepot, 0, 0, 400)},
		[]UnitSnapshot{unit(10, kindBlob, 1, 0, 50)},
	)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssign_DeadEnemyIgnored(t *testing.T) {
	got, err := testEngine(t).Assign(
		[]UnitSnapshot{unit(1, kindBlob, 0, 0, 40)},
		[]UnitSnapshot{unit(10, kindBlob, 1, 0, 0)},
	)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssign_Overflow(t *testing.T) {
	friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40), unit(2, kindBlob, 0, 1, 40)}

	t.Run("spills onto a doomed target within slack", func(t *testing.T) {
		e := testEngine(t, func(c *Config) { c.OverkillSlack = 1 })
		got, err := e.Assign(friendly, []UnitSnapshot{unit(10, kindBlob, 1, 0, 10)})
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 10}, {2, 10}}, got)
	})

	t.Run("stays idle when the spill would exceed slack", func(t *testing.T) {
		e := testEngine(t, func(c *Config) { c.OverkillSlack = 0.5 })
		got, err := e.Assign(friendly, []UnitSnapshot{unit(10, kindBlob, 1, 0, 10)})
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 10}}, got)
	})

	t.Run("a living target beats spilling", func(t *testing.T) {
		e := testEngine(t, func(c *Config) { c.OverkillSlack = 1 })
		got, err := e.Assign(friendly, []UnitSnapshot{
			unit(10, kindBlob, 1, 0, 10),
			unit(11, kindBlob, 2, 0, 500),
		})
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 10}, {2, 11}}, got)
	})

	t.Run("finishing blow may overshoot", func(t *testing.T) {
		e := testEngine(t)
		got, err := e.Assign(
			[]UnitSnapshot{unit(1, kindSniper, 0, 0, 40)},
			[]UnitSnapshot{unit(10, kindWorker, 8, 0, 5)},
		)
		require.NoError(t, err)
		assert.Equal(t, Assignment{{1, 10}}, got)
	})
}

func TestAssign_PursuitBuffer(t *testing.T) {
	friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40)}
	enemy := []UnitSnapshot{unit(10, kindBlob, 6.5, 0, 30)}

	got, err := testEngine(t, func(c *Config) { c.PursuitBuffer = 2 }).Assign(friendly, enemy)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = testEngine(t, func(c *Config) { c.PursuitBuffer = 1 }).Assign(friendly, enemy)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssign_OutputOrderIsAscendingFriendlyID(t *testing.T) {
	e := testEngine(t)
	friendly := []UnitSnapshot{
		unit(9, kindBlob, 0, 0, 40),
		unit(2, kindBlob, 0, 1, 40),
		unit(5, kindBlob, 1, 0, 40),
	}
	enemy := []UnitSnapshot{unit(100, kindBlob, 2, 0, 500)}

	got, err := e.Assign(friendly, enemy)
	require.NoError(t, err)
	assert.Equal(t, Assignment{{2, 100}, {5, 100}, {9, 100}}, got)
}

func TestAssign_DoesNotMutateInput(t *testing.T) {
	friendly, enemy := randomBattle(3, 40, 30)
	fCopy, eCopy := slices.Clone(friendly), slices.Clone(enemy)

	_, err := testEngine(t).Assign(friendly, enemy)
	require.NoError(t, err)
	assert.Equal(t, fCopy, friendly)
	assert.Equal(t, eCopy, enemy)
}

func TestRank(t *testing.T) {
	e := testEngine(t)
	friendly := []UnitSnapshot{unit(1, kindBlob, 0, 0, 40)}
	enemy := []UnitSnapshot{
		unit(12, kindBlob, 3, 0, 100),
		unit(11, kindBlob, 0, 3, 100),
		unit(13, kindTank, 0, -3, 100),
		unit(14, kindDepot, 4, 4, 100),
	}

	ranked, err := e.Rank(friendly, enemy)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	ids := make([]uint64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	assert.Equal(t, []uint64{13, 11, 12, 14}, ids)
	assert.Equal(t, ranked[1].Score, ranked[2].Score)
}

func TestRank_InvalidInput(t *testing.T) {
	_, err := testEngine(t).Rank([]UnitSnapshot{unit(1, 999, 0, 0, 1)}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	tbl := testTable(t)

	_, err := New(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	bad := []func(*Config){
		func(c *Config) { c.PursuitBuffer = -1 },
		func(c *Config) { c.OverkillSlack = -0.1 },
		func(c *Config) { c.GridCellSize = 0 },
		func(c *Config) { c.TickDuration = 0 },
		func(c *Config) { c.DangerHorizon = math.NaN() },
		func(c *Config) { c.HealthFloor = 0 },
		func(c *Config) { c.Epsilon = 2 },
		func(c *Config) { c.ParallelMinUnits = -1 },
		func(c *Config) { c.PursuitBuffer = math.Inf(1) },
	}
	for i, m := range bad {
		cfg := DefaultConfig()
		m(&cfg)
		_, err := New(tbl, cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, "case %d", i)
	}

	_, err = New(tbl, DefaultConfig())
	assert.NoError(t, err)
}

func TestAssignment_Targets(t *testing.T) {
	a := Assignment{{1, 10}, {2, 10}, {3, 11}}
	assert.Equal(t, map[uint64]uint64{1: 10, 2: 10, 3: 11}, a.Targets())
	assert.Equal(t, map[uint64]int{10: 2, 11: 1}, a.Focus())
}
