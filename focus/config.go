package focus

import (
	"fmt"
	"math"
)

// Config holds the tunables of the allocator. OverkillSlack and PursuitBuffer
// change behaviour the most and are expected to be retuned whenever the type
// table's damage values move.
type Config struct {
	// PursuitBuffer is added to a unit's weapon range when deciding what it
	// can reach; roughly one tick of movement.
	PursuitBuffer float64 `mapstructure:"pursuitBuffer"`
	// OverkillSlack is the fraction of a target's health that may be
	// over-assigned once it is already doomed, and only when the attacker has
	// no living target left in reach.
	OverkillSlack float64 `mapstructure:"overkillSlack"`
	// GridCellSize is the spatial index bucket edge in map units.
	GridCellSize float64 `mapstructure:"gridCellSize"`
	// TickDuration is the game time one decision covers; expected damage per
	// tick is damage/interval * TickDuration.
	TickDuration float64 `mapstructure:"tickDuration"`
	// DangerHorizon caps the projected seconds before an enemy can shoot back.
	DangerHorizon float64 `mapstructure:"dangerHorizon"`
	// HealthFloor bounds kill value for nearly dead targets.
	HealthFloor float64 `mapstructure:"healthFloor"`
	// Epsilon is the tolerance on every health/damage comparison.
	Epsilon float64 `mapstructure:"epsilon"`
	// ParallelMinUnits switches to cluster-parallel allocation once the
	// friendly count reaches it. Zero keeps everything on the calling goroutine.
	ParallelMinUnits int `mapstructure:"parallelMinUnits"`
}

// DefaultConfig is tuned for the bundled type table.
func DefaultConfig() Config {
	return Config{
		PursuitBuffer:    2,
		OverkillSlack:    0.1,
		GridCellSize:     8,
		TickDuration:     1,
		DangerHorizon:    10,
		HealthFloor:      1,
		Epsilon:          1e-6,
		ParallelMinUnits: 256,
	}
}

// Validate rejects settings the allocator cannot honour.
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"pursuitBuffer", c.PursuitBuffer, c.PursuitBuffer >= 0},
		{"overkillSlack", c.OverkillSlack, c.OverkillSlack >= 0},
		{"gridCellSize", c.GridCellSize, c.GridCellSize > 0},
		{"tickDuration", c.TickDuration, c.TickDuration > 0},
		{"dangerHorizon", c.DangerHorizon, c.DangerHorizon >= 0},
		{"healthFloor", c.HealthFloor, c.HealthFloor > 0},
		{"epsilon", c.Epsilon, c.Epsilon >= 0 && c.Epsilon < 1},
	}
	for _, ch := range checks {
		if math.IsNaN(ch.v) || math.IsInf(ch.v, 0) || !ch.ok {
			return fmt.Errorf("%w: %s = %v", ErrInvalidConfig, ch.name, ch.v)
		}
	}
	if c.ParallelMinUnits < 0 {
		return fmt.Errorf("%w: parallelMinUnits = %d", ErrInvalidConfig, c.ParallelMinUnits)
	}
	return nil
}
