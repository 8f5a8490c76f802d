package model

import (
	"math"

	"github.com/nstehr/ares/ares-core/spatial"
)

// GameState is the host's view of one decision tick.
type GameState struct {
	Tick            int     `json:"tick"`
	GameSeconds     float64 `json:"gameSeconds"`
	Player          Player  `json:"player"`
	Units           []Unit  `json:"units"`
	TownHalls       []Unit  `json:"townHalls"`
	Enemies         []Unit  `json:"enemies"`
	EnemyStructures []Unit  `json:"enemyStructures"`
	EnemyStart      *Point  `json:"enemyStart,omitempty"`
	MapWidth        float64 `json:"mapWidth"`
	MapHeight       float64 `json:"mapHeight"`
}

type Player struct {
	Name       string `json:"name"`
	Race       string `json:"race"`
	Minerals   int    `json:"minerals"`
	Vespene    int    `json:"vespene"`
	SupplyUsed int    `json:"supplyUsed"`
	SupplyCap  int    `json:"supplyCap"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Vec() spatial.Vec2 { return spatial.Vec2{X: p.X, Y: p.Y} }

// Unit is any entity the host reports, ours or theirs. Kind is the host's
// numeric type ID and keys the type table; Type is its display name.
type Unit struct {
	ID     uint64  `json:"id"`
	Kind   uint32  `json:"kind"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
}

func (u Unit) TypeName() string { return u.Type }

func (u Unit) Pos() spatial.Vec2 { return spatial.Vec2{X: u.X, Y: u.Y} }

// MapCenter is the middle of the playable area.
func (gs GameState) MapCenter() spatial.Vec2 {
	return spatial.Vec2{X: gs.MapWidth / 2, Y: gs.MapHeight / 2}
}

// Minutes is elapsed game time.
func (gs GameState) Minutes() float64 { return gs.GameSeconds / 60 }

// ClosestTo returns the unit in us nearest p, or false when us is empty.
func ClosestTo(us []Unit, p spatial.Vec2) (Unit, bool) {
	best, bestD := -1, math.Inf(1)
	for i, u := range us {
		if d := u.Pos().DistSq(p); d < bestD {
			best, bestD = i, d
		}
	}
	if best < 0 {
		return Unit{}, false
	}
	return us[best], true
}
