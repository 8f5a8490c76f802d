package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/ares/ares-core/posture"
)

// Rule categories. A rule's verdict only affects its own category.
const (
	CategoryPosture = "posture"
	CategoryEngage  = "engage"
)

// Rule is the atomic unit of strategy: a condition → verdict pair.
// The engine evaluates rules by priority; within a category the first match
// decides, and an exclusive match stops lower-priority rules from running.
type Rule struct {
	Name         string           `yaml:"name"`
	Priority     int              `yaml:"priority"`
	Category     string           `yaml:"category"`
	Exclusive    bool             `yaml:"exclusive"`
	ConditionSrc string           `yaml:"when"`
	Posture      *posture.Posture `yaml:"posture,omitempty"` // posture rules
	Engage       *bool            `yaml:"engage,omitempty"`  // engage rules
	program      *vm.Program
}
