package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nstehr/ares/ares-core/posture"
)

// maxPendingEvents bounds the events carried into the next consultation.
const maxPendingEvents = 10

// Advice is a posture recommendation and the tick it was computed for.
type Advice struct {
	Posture posture.Posture
	Tick    int
}

// Strategist runs in the background, periodically consulting a slow advisor
// so the tick loop never waits on it. Results are picked up with Poll.
type Strategist struct {
	mu       sync.Mutex
	latest   *posture.Situation
	advisor  posture.Advisor
	interval int // re-evaluate every N ticks
	lastTick int // tick of last evaluation
	events   []Event
	ready    chan struct{}
	advice   chan Advice
}

// NewStrategist creates a strategist. A non-positive interval means 400 ticks.
func NewStrategist(advisor posture.Advisor, interval int) *Strategist {
	if interval <= 0 {
		interval = 400
	}
	return &Strategist{
		advisor:  advisor,
		interval: interval,
		ready:    make(chan struct{}, 1),
		advice:   make(chan Advice, 1),
	}
}

// UpdateState stores the latest situation. Signals readiness on the first call
// and on interval boundaries.
func (s *Strategist) UpdateState(sit posture.Situation) {
	s.mu.Lock()
	first := s.latest == nil
	s.latest = &sit
	shouldSignal := first || (sit.State.Tick-s.lastTick >= s.interval)
	s.mu.Unlock()

	if shouldSignal {
		s.signal()
	}
}

// Notify records events and asks for an immediate re-evaluation.
func (s *Strategist) Notify(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	s.events = append(s.events, events...)
	if over := len(s.events) - maxPendingEvents; over > 0 {
		s.events = s.events[over:]
	}
	s.mu.Unlock()
	s.signal()
}

func (s *Strategist) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Poll returns the newest advice not yet collected, without blocking.
func (s *Strategist) Poll() (Advice, bool) {
	select {
	case a := <-s.advice:
		return a, true
	default:
		return Advice{}, false
	}
}

// Start launches the background strategist loop. It blocks until ctx is cancelled.
func (s *Strategist) Start(ctx context.Context) {
	slog.Info("strategist started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("strategist stopped")
			return
		case <-s.ready:
			s.evaluate(ctx)
		}
	}
}

func (s *Strategist) evaluate(ctx context.Context) {
	s.mu.Lock()
	if s.latest == nil {
		s.mu.Unlock()
		return
	}
	sit := *s.latest
	events := s.events
	s.events = nil
	s.mu.Unlock()

	sit.Summary += formatEvents(events)
	slog.Debug("strategist evaluating", "tick", sit.State.Tick, "events", len(events))

	p, err := s.advisor.Advise(ctx, sit)

	// A failed call also waits a full interval before the next attempt.
	s.mu.Lock()
	s.lastTick = sit.State.Tick
	if err != nil {
		s.events = append(events, s.events...)
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("strategist advisor call failed", "error", err)
		return
	}
	slog.Info("posture advised", "tick", sit.State.Tick, "posture", p, "summary", sit.Summary)

	// Only this goroutine sends, so after draining a stale value the send
	// cannot block.
	select {
	case <-s.advice:
	default:
	}
	s.advice <- Advice{Posture: p, Tick: sit.State.Tick}
}
