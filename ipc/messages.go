package ipc

// These constants must stay in sync with the host's message type enum.
const (
	TypeHello     = "hello"
	TypeAck       = "ack"
	TypeGameState = "game_state"
	TypeOrders    = "orders"
)

type HelloMessage struct {
	Player  string `json:"player"`
	Race    string `json:"race"`
	Session string `json:"session,omitempty"`
	// TypeTableVersion lets the host check both sides load the same unit data.
	TypeTableVersion string `json:"typeTableVersion,omitempty"`
}

type AckMessage struct {
	Status           string `json:"status"`
	TypeTableVersion string `json:"typeTableVersion,omitempty"`
	Warning          string `json:"warning,omitempty"`
}
