package ipc

// Order kinds carried in an OrdersMessage; must stay in sync with the host's
// command executor.
const (
	OrderAttack     = "attack"
	OrderAttackMove = "attack_move"
	OrderMove       = "move"
)

// AttackCommand points one unit at one target.
type AttackCommand struct {
	Kind     string `json:"kind"`
	ActorID  uint64 `json:"actor_id"`
	TargetID uint64 `json:"target_id"`
}

// AttackMoveCommand sends a group toward a point, fighting on the way.
type AttackMoveCommand struct {
	Kind     string   `json:"kind"`
	ActorIDs []uint64 `json:"actor_ids"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

// MoveCommand sends a group toward a point without stopping to fight.
type MoveCommand struct {
	Kind     string   `json:"kind"`
	ActorIDs []uint64 `json:"actor_ids"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

func Attack(actor, target uint64) AttackCommand {
	return AttackCommand{Kind: OrderAttack, ActorID: actor, TargetID: target}
}

func AttackMove(actors []uint64, x, y float64) AttackMoveCommand {
	return AttackMoveCommand{Kind: OrderAttackMove, ActorIDs: actors, X: x, Y: y}
}

func Move(actors []uint64, x, y float64) MoveCommand {
	return MoveCommand{Kind: OrderMove, ActorIDs: actors, X: x, Y: y}
}

// OrdersMessage is the reply to a game_state message.
type OrdersMessage struct {
	Tick        int                 `json:"tick"`
	Posture     string              `json:"posture"`
	Engage      bool                `json:"engage"`
	Attacks     []AttackCommand     `json:"attacks,omitempty"`
	AttackMoves []AttackMoveCommand `json:"attack_moves,omitempty"`
	Moves       []MoveCommand       `json:"moves,omitempty"`
}

// Empty reports whether the message carries no orders at all.
func (m OrdersMessage) Empty() bool {
	return len(m.Attacks) == 0 && len(m.AttackMoves) == 0 && len(m.Moves) == 0
}
