package focus

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// allocateClustered splits the field into groups no unit can reach across,
// resolves each group on its own goroutine, and merges by friendly index.
//
// A friendly's choice depends only on the accumulators of enemies it can
// reach, and those enemies belong to its cluster alone, so the merged result
// equals the sequential one.
func (b *battle) allocateClustered() []decision {
	n := len(b.friendly)
	uf := newUnionFind(n + len(b.enemy))

	var buf []int
	for fi := range b.friendly {
		buf = b.candidates(&b.friendly[fi], buf)
		for _, ei := range buf {
			uf.union(fi, n+ei)
		}
	}

	// Group friendly indices by root; iterating fi in order keeps each group
	// sorted by ID. Friendlies with nothing in reach are dropped here.
	groups := make(map[int][]int)
	var roots []int
	for fi := range b.friendly {
		r := uf.find(fi)
		if r == fi && uf.size[r] == 1 {
			continue
		}
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], fi)
	}

	incoming := make([]float64, len(b.enemy))
	results := make([][]decision, len(roots))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range roots {
		g.Go(func() error {
			results[i] = b.allocate(groups[r], incoming)
			return nil
		})
	}
	_ = g.Wait() // allocate never fails

	var out []decision
	for _, res := range results {
		out = append(out, res...)
	}
	slices.SortFunc(out, func(a, c decision) int { return a.friendly - c.friendly })
	return out
}

type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
