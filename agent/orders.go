package agent

import (
	"github.com/nstehr/ares/ares-core/focus"
	"github.com/nstehr/ares/ares-core/ipc"
	"github.com/nstehr/ares/ares-core/model"
	"github.com/nstehr/ares/ares-core/spatial"
)

// buildOrders turns a tick's decisions into host commands.
//
// Engaging: assigned units attack their target; the rest attack-move toward
// the nearest visible enemy unit, else an enemy structure, else the enemy
// start location. Holding: the army moves to the rally point.
func buildOrders(gs model.GameState, r roster, a focus.Assignment, engage bool) ipc.OrdersMessage {
	out := ipc.OrdersMessage{Tick: gs.Tick, Engage: engage}
	if len(r.army) == 0 {
		return out
	}

	if !engage {
		if rally, ok := rallyPoint(gs); ok {
			out.Moves = []ipc.MoveCommand{ipc.Move(armyIDs(r.army), rally.X, rally.Y)}
		}
		return out
	}

	targets := a.Targets()
	for _, p := range a {
		out.Attacks = append(out.Attacks, ipc.Attack(p.Friendly, p.Enemy))
	}

	var idle []model.Unit
	for _, u := range r.army {
		if _, ok := targets[u.ID]; !ok {
			idle = append(idle, u)
		}
	}
	out.AttackMoves = advance(gs, idle)
	return out
}

// advance groups idle units by where they should head.
func advance(gs model.GameState, idle []model.Unit) []ipc.AttackMoveCommand {
	if len(idle) == 0 {
		return nil
	}

	var cmds []ipc.AttackMoveCommand
	byDest := make(map[spatial.Vec2]int)
	send := func(id uint64, p spatial.Vec2) {
		i, ok := byDest[p]
		if !ok {
			i = len(cmds)
			byDest[p] = i
			cmds = append(cmds, ipc.AttackMove(nil, p.X, p.Y))
		}
		cmds[i].ActorIDs = append(cmds[i].ActorIDs, id)
	}

	if len(gs.Enemies) > 0 {
		pts := make([]spatial.Vec2, len(gs.Enemies))
		for i, e := range gs.Enemies {
			pts[i] = e.Pos()
		}
		grid := spatial.NewGrid(8, pts)
		for _, u := range idle {
			if i, _, ok := grid.Nearest(u.Pos()); ok {
				send(u.ID, pts[i])
			}
		}
		return cmds
	}

	dest, ok := fallbackTarget(gs)
	if !ok {
		return nil
	}
	for _, u := range idle {
		send(u.ID, dest)
	}
	return cmds
}

// fallbackTarget is where to push when no enemy unit is visible. The
// structure rotates with the tick so repeated pushes spread over the base.
func fallbackTarget(gs model.GameState) (spatial.Vec2, bool) {
	if n := len(gs.EnemyStructures); n > 0 {
		return gs.EnemyStructures[max(gs.Tick, 0)%n].Pos(), true
	}
	if gs.EnemyStart != nil {
		return gs.EnemyStart.Vec(), true
	}
	return spatial.Vec2{}, false
}

// rallyPoint is our town hall closest to the map centre.
func rallyPoint(gs model.GameState) (spatial.Vec2, bool) {
	h, ok := model.ClosestTo(gs.TownHalls, gs.MapCenter())
	if !ok {
		return spatial.Vec2{}, false
	}
	return h.Pos(), true
}

func armyIDs(army []model.Unit) []uint64 {
	ids := make([]uint64, len(army))
	for i, u := range army {
		ids[i] = u.ID
	}
	return ids
}
