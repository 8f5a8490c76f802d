package rules

import (
	"context"
	"errors"

	"github.com/nstehr/ares/ares-core/posture"
)

var ErrNoVerdict = errors.New("no posture rule matched")

// Advisor is the deterministic posture advisor: it answers from the posture
// rules of its engine, instantly and without I/O.
type Advisor struct {
	engine *Engine
}

func NewAdvisor(engine *Engine) *Advisor {
	return &Advisor{engine: engine}
}

func (a *Advisor) Advise(_ context.Context, s posture.Situation) (posture.Posture, error) {
	v := a.engine.Evaluate(RuleEnv{State: s.State, Army: s.Army})
	if !v.HasPosture {
		return 0, ErrNoVerdict
	}
	return v.Posture, nil
}
