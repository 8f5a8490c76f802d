package spatial

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPoints(seed int64, n int, extent float64) []Vec2 {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]Vec2, n)
	for i := range pts {
		pts[i] = Vec2{X: rng.Float64() * extent, Y: rng.Float64() * extent}
	}
	return pts
}

func bruteWithin(pts []Vec2, p Vec2, r float64) []int {
	out := []int{}
	for i, q := range pts {
		if p.DistSq(q) <= r*r {
			out = append(out, i)
		}
	}
	return out
}

func TestGrid_Empty(t *testing.T) {
	g := NewGrid(4, nil)

	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Within(Vec2{}, 100, nil))

	idx, _, ok := g.Nearest(Vec2{X: 3, Y: 3})
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestGrid_WithinMatchesBruteForce(t *testing.T) {
	pts := randomPoints(7, 400, 200)
	g := NewGrid(6, pts)
	queries := randomPoints(8, 50, 220)

	var buf []int
	for _, q := range queries {
		for _, r := range []float64{0, 1.5, 7, 30, 500} {
			buf = g.Within(q, r, buf)
			want := bruteWithin(pts, q, r)
			if len(want) == 0 {
				assert.Empty(t, buf, "query %v r=%v", q, r)
				continue
			}
			assert.Equal(t, want, buf, "query %v r=%v", q, r)
		}
	}
}

func TestGrid_WithinBoundaryInclusive(t *testing.T) {
	pts := []Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5.0001, Y: 0}}
	g := NewGrid(2, pts)

	assert.Equal(t, []int{0, 1}, g.Within(Vec2{}, 5, nil))
}

func TestGrid_WithinRejectsBadRadius(t *testing.T) {
	g := NewGrid(2, []Vec2{{X: 1, Y: 1}})

	assert.Empty(t, g.Within(Vec2{X: 1, Y: 1}, -1, nil))
	assert.Empty(t, g.Within(Vec2{X: 1, Y: 1}, math.NaN(), nil))
	assert.Equal(t, []int{0}, g.Within(Vec2{X: 1, Y: 1}, math.Inf(1), nil))
}

func TestGrid_NearestMatchesBruteForce(t *testing.T) {
	pts := randomPoints(11, 300, 150)
	g := NewGrid(5, pts)

	for _, q := range randomPoints(12, 80, 300) {
		idx, dist, ok := g.Nearest(q)
		require.True(t, ok)

		want, wantDist := -1, math.Inf(1)
		for i, p := range pts {
			if d := q.Dist(p); d < wantDist {
				want, wantDist = i, d
			}
		}
		assert.Equal(t, want, idx, "query %v", q)
		assert.InDelta(t, wantDist, dist, 1e-9)
	}
}

func TestGrid_NearestTiesPreferLowerIndex(t *testing.T) {
	pts := make([]Vec2, 0, 40)
	// Enough points to leave the linear path.
	for i := range 30 {
		pts = append(pts, Vec2{X: 100 + float64(i), Y: 100})
	}
	pts = append(pts, Vec2{X: 10, Y: 12}, Vec2{X: 10, Y: 8})
	g := NewGrid(3, pts)

	idx, dist, ok := g.Nearest(Vec2{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, 30, idx)
	assert.InDelta(t, 2.0, dist, 1e-12)
}

func TestGrid_CopiesInput(t *testing.T) {
	pts := []Vec2{{X: 1, Y: 1}}
	g := NewGrid(1, pts)
	pts[0] = Vec2{X: 50, Y: 50}

	assert.Equal(t, Vec2{X: 1, Y: 1}, g.Point(0))
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, Vec2{}, Centroid(nil))
	assert.Equal(t, Vec2{X: 2, Y: 3}, Centroid([]Vec2{{X: 0, Y: 0}, {X: 4, Y: 6}}))
}
