package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nstehr/ares/ares-core/focus"
	"github.com/nstehr/ares/ares-core/ipc"
	"github.com/nstehr/ares/ares-core/journal"
	"github.com/nstehr/ares/ares-core/model"
	"github.com/nstehr/ares/ares-core/posture"
	"github.com/nstehr/ares/ares-core/rules"
	"github.com/nstehr/ares/ares-core/typetable"
)

// diagnosticsEvery throttles the periodic combat summary log.
const diagnosticsEvery = 100

// diagnosticTargets is how many ranked enemies the summary log shows.
const diagnosticTargets = 3

// Recorder receives one record per tick. *journal.Journal implements it.
type Recorder interface {
	Record(r journal.TickRecord) bool
}

// Options wires an Agent to its collaborators. Everything but Journal is
// required.
type Options struct {
	Table   *typetable.Table
	Focus   *focus.Engine
	Rules   *rules.Engine
	Advisor posture.Advisor
	// Inline consults Advisor on every tick instead of on the strategist
	// goroutine. Only for advisors that answer without I/O.
	Inline     bool
	Interval   int
	BaseRadius float64
	Journal    Recorder
}

// TickState is everything one tick hands to the next. Step takes it by
// value and returns its successor; nothing else holds strategy state.
type TickState struct {
	Posture     posture.Posture
	PostureTick int // tick the posture last changed
	Engaged     bool

	snapshot     *stateSnapshot
	lastDiagTick int
}

// NewTickState starts a game the way the bot always has: rushing.
func NewTickState() TickState {
	return TickState{Posture: posture.Aggressive}
}

// Agent owns the decision-making for a single player session.
type Agent struct {
	Conn    *ipc.Connection
	Player  string
	Race    string
	Session string

	opts       Options
	strategist *Strategist
	metrics    *metrics
	state      TickState // touched only by the connection's read loop
}

func New(conn *ipc.Connection, opts Options) (*Agent, error) {
	if opts.Table == nil || opts.Focus == nil || opts.Rules == nil || opts.Advisor == nil {
		return nil, errors.New("agent: table, focus engine, rules engine and advisor are required")
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	a := &Agent{
		Conn:    conn,
		opts:    opts,
		metrics: m,
		state:   NewTickState(),
	}
	if !opts.Inline {
		a.strategist = NewStrategist(opts.Advisor, opts.Interval)
	}
	return a, nil
}

// Run serves the connection until the host disconnects or ctx is cancelled.
// The strategist, when there is one, lives exactly as long.
func (a *Agent) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.strategist != nil {
		go a.strategist.Start(ctx)
	}
	go func() {
		<-ctx.Done()
		a.Conn.Close()
	}()

	if err := a.Conn.Serve(a); err != nil {
		slog.Error("connection failed", "player", a.Player, "error", err)
	}
}

// Hello completes the handshake so the host knows the sidecar is ready.
func (a *Agent) Hello(hello ipc.HelloMessage) (ipc.AckMessage, error) {
	a.Player = hello.Player
	a.Race = hello.Race
	a.Session = hello.Session
	if a.Session == "" {
		a.Session = fmt.Sprintf("%s-%d", hello.Player, time.Now().Unix())
	}
	a.state = NewTickState()
	slog.Info("player identified", "player", a.Player, "race", a.Race, "session", a.Session)

	ack := ipc.AckMessage{Status: "ok", TypeTableVersion: a.opts.Table.Version()}
	if hello.TypeTableVersion != "" && hello.TypeTableVersion != a.opts.Table.Version() {
		ack.Warning = fmt.Sprintf("type table mismatch: host %s, sidecar %s", hello.TypeTableVersion, a.opts.Table.Version())
		slog.Warn("type table version mismatch", "host", hello.TypeTableVersion, "sidecar", a.opts.Table.Version())
	}
	return ack, nil
}

// GameState advances the agent's tick state and answers with orders.
func (a *Agent) GameState(gs model.GameState) (ipc.OrdersMessage, error) {
	var orders ipc.OrdersMessage
	a.state, orders = a.Step(a.state, gs)
	return orders, nil
}

// Step runs one tick: posture, engage gate, focus allocation, orders.
func (a *Agent) Step(ts TickState, gs model.GameState) (TickState, ipc.OrdersMessage) {
	ctx := context.Background()
	next := ts

	r := buildRoster(a.opts.Table, gs)
	th := threatsOf(a.opts.Table, gs)
	sit := posture.Situation{State: gs, Army: len(r.army), Summary: summarize(gs, len(r.army), th)}

	if p, ok := a.advise(ctx, sit); ok && p != ts.Posture {
		slog.Info("command update", "tick", gs.Tick, "from", ts.Posture, "to", p)
		next.Posture, next.PostureTick = p, gs.Tick
		a.metrics.postureChanged(ctx, p.String())
	}

	snap := takeSnapshot(gs, len(r.army), th)
	if events := detectEvents(gs.Tick, snap, ts.snapshot); len(events) > 0 {
		for _, e := range events {
			slog.Info("game event", "kind", e.Kind, "tick", e.Tick, "detail", e.Detail)
		}
		if a.strategist != nil {
			a.strategist.Notify(events)
		}
	}
	next.snapshot = &snap

	verdict := a.opts.Rules.Evaluate(rules.RuleEnv{
		State:      gs,
		Posture:    next.Posture.String(),
		Army:       len(r.army),
		BaseRadius: a.opts.BaseRadius,
	})
	if verdict.Engage != ts.Engaged {
		slog.Info("engage gate", "tick", gs.Tick, "engage", verdict.Engage, "rules", verdict.Fired)
	}
	next.Engaged = verdict.Engage

	var (
		assignment focus.Assignment
		allocErr   error
		took       time.Duration
	)
	if verdict.Engage && len(r.friendly) > 0 {
		start := time.Now()
		assignment, allocErr = a.opts.Focus.Assign(r.friendly, r.enemy)
		took = time.Since(start)
		a.metrics.allocation(ctx, len(assignment), took, allocErr)
		if allocErr != nil {
			// Units still advance; they just get no focus targets this tick.
			slog.Error("allocation rejected", "tick", gs.Tick, "error", allocErr)
		}
	}

	orders := buildOrders(gs, r, assignment, verdict.Engage)
	orders.Posture = next.Posture.String()
	a.metrics.tick(ctx, orders.Posture, verdict.Engage)

	if gs.Tick-next.lastDiagTick >= diagnosticsEvery {
		next.lastDiagTick = gs.Tick
		slog.Info("combat diagnostics",
			"tick", gs.Tick,
			"posture", next.Posture,
			"engaged", next.Engaged,
			"army", len(r.army),
			"enemies", len(r.enemy),
			"assigned", len(assignment),
			"unknownKinds", r.unknown,
			"latency", took,
			"topTargets", a.topTargets(r),
		)
	}

	a.record(gs, next, r, assignment, took, allocErr)
	return next, orders
}

// topTargets is the head of the group-level target ranking, for diagnostics.
func (a *Agent) topTargets(r roster) []uint64 {
	if len(r.friendly) == 0 || len(r.enemy) == 0 {
		return nil
	}
	ranked, err := a.opts.Focus.Rank(r.friendly, r.enemy)
	if err != nil {
		return nil
	}
	ids := make([]uint64, 0, diagnosticTargets)
	for _, rk := range ranked[:min(len(ranked), diagnosticTargets)] {
		ids = append(ids, rk.ID)
	}
	return ids
}

// advise returns a fresh recommendation when one is available this tick.
func (a *Agent) advise(ctx context.Context, sit posture.Situation) (posture.Posture, bool) {
	if a.strategist != nil {
		a.strategist.UpdateState(sit)
		adv, ok := a.strategist.Poll()
		return adv.Posture, ok
	}
	p, err := a.opts.Advisor.Advise(ctx, sit)
	if err != nil {
		slog.Warn("advisor failed, keeping posture", "tick", sit.State.Tick, "error", err)
		return 0, false
	}
	return p, true
}

func (a *Agent) record(gs model.GameState, ts TickState, r roster, asg focus.Assignment, took time.Duration, allocErr error) {
	if a.opts.Journal == nil {
		return
	}
	rec := journal.TickRecord{
		Session:       a.Session,
		Tick:          gs.Tick,
		Posture:       ts.Posture.String(),
		Engaged:       ts.Engaged,
		Friendly:      len(r.friendly),
		Enemy:         len(r.enemy),
		Assigned:      len(asg),
		Skipped:       r.unknown,
		LatencyMicros: took.Microseconds(),
	}
	if len(asg) > 0 {
		if b, err := json.Marshal(asg); err == nil {
			rec.Pairs = string(b)
		}
	}
	if allocErr != nil {
		rec.Error = allocErr.Error()
	}
	a.opts.Journal.Record(rec)
}
