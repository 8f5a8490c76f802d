package spatial

import (
	"math"
	"slices"
)

// linearThreshold is the point count below which queries skip the buckets
// entirely; walking a handful of points beats hashing cells.
const linearThreshold = 16

type cell struct{ x, y int }

// Grid is a uniform bucket grid over a fixed point set. It is built once per
// decision tick and never updated; points are referred to by their index in
// the slice passed to NewGrid.
type Grid struct {
	cellSize float64
	points   []Vec2
	cells    map[cell][]int

	// occupied cell bounds, used to clamp range queries and stop ring searches
	minX, minY, maxX, maxY int
}

// NewGrid buckets points into square cells of the given size. A non-positive
// or non-finite cellSize falls back to 1. Points are copied.
func NewGrid(cellSize float64, points []Vec2) *Grid {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = 1
	}
	g := &Grid{
		cellSize: cellSize,
		points:   slices.Clone(points),
		cells:    make(map[cell][]int),
	}
	for i, p := range g.points {
		c := g.cellOf(p)
		if i == 0 {
			g.minX, g.maxX, g.minY, g.maxY = c.x, c.x, c.y, c.y
		} else {
			g.minX = min(g.minX, c.x)
			g.maxX = max(g.maxX, c.x)
			g.minY = min(g.minY, c.y)
			g.maxY = max(g.maxY, c.y)
		}
		g.cells[c] = append(g.cells[c], i)
	}
	return g
}

// Len returns the number of indexed points.
func (g *Grid) Len() int { return len(g.points) }

// Point returns the position of point i.
func (g *Grid) Point(i int) Vec2 { return g.points[i] }

func (g *Grid) cellOf(p Vec2) cell {
	return cell{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// Within appends to dst[:0] the indices of all points at distance <= r from p,
// in ascending index order.
func (g *Grid) Within(p Vec2, r float64, dst []int) []int {
	dst = dst[:0]
	if len(g.points) == 0 || !(r >= 0) || !p.Finite() {
		return dst
	}
	rSq := r * r

	// Clamp the query box to the occupied bounds in float space first so
	// huge radii never overflow the int conversion.
	fx0 := math.Max(math.Floor((p.X-r)/g.cellSize), float64(g.minX))
	fx1 := math.Min(math.Floor((p.X+r)/g.cellSize), float64(g.maxX))
	fy0 := math.Max(math.Floor((p.Y-r)/g.cellSize), float64(g.minY))
	fy1 := math.Min(math.Floor((p.Y+r)/g.cellSize), float64(g.maxY))
	if fx0 > fx1 || fy0 > fy1 {
		return dst
	}

	if len(g.points) <= linearThreshold || (fx1-fx0+1)*(fy1-fy0+1) > float64(len(g.points)) {
		for i, q := range g.points {
			if p.DistSq(q) <= rSq {
				dst = append(dst, i)
			}
		}
		return dst
	}

	for cy := int(fy0); cy <= int(fy1); cy++ {
		for cx := int(fx0); cx <= int(fx1); cx++ {
			for _, i := range g.cells[cell{cx, cy}] {
				if p.DistSq(g.points[i]) <= rSq {
					dst = append(dst, i)
				}
			}
		}
	}
	slices.Sort(dst)
	return dst
}

// Nearest returns the index of the point closest to p and its distance.
// Equidistant points resolve to the lower index. ok is false for an empty grid.
func (g *Grid) Nearest(p Vec2) (idx int, dist float64, ok bool) {
	if len(g.points) == 0 {
		return -1, 0, false
	}
	best, bestSq := -1, math.Inf(1)
	consider := func(i int) {
		d := p.DistSq(g.points[i])
		if best < 0 || d < bestSq || (d == bestSq && i < best) {
			best, bestSq = i, d
		}
	}

	linear := len(g.points) <= linearThreshold || !p.Finite()
	var c cell
	var maxRing int
	if !linear {
		c = g.cellOf(p)
		maxRing = max(
			abs(c.x-g.minX), abs(c.x-g.maxX),
			abs(c.y-g.minY), abs(c.y-g.maxY),
		)
		// A query far outside the occupied area would walk mostly empty rings.
		linear = maxRing > len(g.points)
	}
	if linear {
		for i := range g.points {
			consider(i)
		}
		return best, math.Sqrt(bestSq), true
	}

	visit := func(x, y int) {
		if x < g.minX || x > g.maxX || y < g.minY || y > g.maxY {
			return
		}
		for _, i := range g.cells[cell{x, y}] {
			consider(i)
		}
	}

	for k := 0; k <= maxRing; k++ {
		if k == 0 {
			visit(c.x, c.y)
		} else {
			for x := c.x - k; x <= c.x+k; x++ {
				visit(x, c.y-k)
				visit(x, c.y+k)
			}
			for y := c.y - k + 1; y <= c.y+k-1; y++ {
				visit(c.x-k, y)
				visit(c.x+k, y)
			}
		}
		// Anything beyond ring k is at least k cells away along one axis.
		if best >= 0 {
			limit := float64(k) * g.cellSize
			if bestSq < limit*limit {
				break
			}
		}
	}
	return best, math.Sqrt(bestSq), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
