package ipc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/nstehr/ares/ares-core/model"
)

// Session answers the host's requests on one connection. Both calls come
// from the Serve goroutine, one at a time.
type Session interface {
	Hello(HelloMessage) (AckMessage, error)
	GameState(model.GameState) (OrdersMessage, error)
}

// Connection is one game host talking to the sidecar. Player is known once
// the hello handshake has been answered.
type Connection struct {
	conn    net.Conn
	writeMu sync.Mutex
	Player  string
}

func NewConnection(conn net.Conn) *Connection {
	return &Connection{conn: conn}
}

// Close closes the underlying connection, which ends Serve.
func (c *Connection) Close() error { return c.conn.Close() }

// Serve reads requests until the host disconnects, handing each to s and
// writing its reply. A request that fails to decode or that s rejects gets
// no reply; the loop carries on with the next frame. Serve owns the conn and
// closes it on return. A clean disconnect returns nil.
func (c *Connection) Serve(s Session) error {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				slog.Info("connection closed", "player", c.Player)
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}

		resp, err := c.dispatch(s, env)
		if err != nil {
			slog.Error("request failed", "type", env.Type, "player", c.Player, "error", err)
			continue
		}
		if resp == nil {
			continue
		}
		if err := c.write(*resp); err != nil {
			return fmt.Errorf("send %s: %w", resp.Type, err)
		}
		slog.Debug("sent response", "type", resp.Type, "player", c.Player)
	}
}

// dispatch decodes env by type and runs the matching Session call. Unknown
// types are logged and answered with nothing.
func (c *Connection) dispatch(s Session, env Envelope) (*Envelope, error) {
	var (
		replyType string
		reply     any
	)
	switch env.Type {
	case TypeHello:
		var hello HelloMessage
		if err := env.Decode(&hello); err != nil {
			return nil, err
		}
		ack, err := s.Hello(hello)
		if err != nil {
			return nil, err
		}
		c.Player = hello.Player
		replyType, reply = TypeAck, ack
	case TypeGameState:
		var gs model.GameState
		if err := env.Decode(&gs); err != nil {
			return nil, err
		}
		orders, err := s.GameState(gs)
		if err != nil {
			return nil, err
		}
		replyType, reply = TypeOrders, orders
	default:
		slog.Warn("no handler for message type", "type", env.Type)
		return nil, nil
	}

	resp, err := NewEnvelope(replyType, reply)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Connection) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteEnvelope(c.conn, env)
}
