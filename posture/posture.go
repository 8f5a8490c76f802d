// Package posture holds the strategic stance that sits in front of the
// allocation engine. A posture decides whether the army engages at all; it
// never reaches target scoring.
package posture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nstehr/ares/ares-core/model"
)

var ErrUnknownPosture = errors.New("unknown posture")

type Posture int

const (
	// Aggressive commits early with a small army.
	Aggressive Posture = iota
	// Defensive builds up behind static defense and commits only when maxed.
	Defensive
	// Counter answers air or tech switches and commits with a larger army.
	Counter
	// Balanced sits between Aggressive and Counter.
	Balanced
)

var names = [...]string{
	Aggressive: "aggressive",
	Defensive:  "defensive",
	Counter:    "counter",
	Balanced:   "balanced",
}

// aliases are the one-word orders the strategy model answers with.
var aliases = map[string]Posture{
	"rush":  Aggressive,
	"macro": Defensive,
}

func (p Posture) String() string {
	if p < 0 || int(p) >= len(names) {
		return fmt.Sprintf("posture(%d)", int(p))
	}
	return names[p]
}

// Parse accepts a posture name or one of the order words RUSH, MACRO and
// COUNTER, case-insensitively.
func Parse(s string) (Posture, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return Posture(i), nil
		}
	}
	if p, ok := aliases[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPosture, s)
}

func (p Posture) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(names) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPosture, int(p))
	}
	return []byte(names[p]), nil
}

func (p *Posture) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Situation is what an advisor sees: the raw state, the size of our army as
// the agent counts it, and the one-line report rendered from both.
type Situation struct {
	State   model.GameState
	Army    int
	Summary string
}

// Advisor recommends a posture. Implementations may be slow or fail; the
// caller keeps the previous posture on error.
type Advisor interface {
	Advise(ctx context.Context, s Situation) (Posture, error)
}
