package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/ares/ares-core/posture"
)

// Engine runs compiled rules against game state each tick.
// Rules fire in priority order; the first match in a category decides that
// category's verdict and exclusive rules stop lower-priority rules in the same
// category from running.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
}

// Verdict is the outcome of one evaluation.
type Verdict struct {
	Posture    posture.Posture
	HasPosture bool
	Engage     bool
	Fired      []string
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Evaluate runs all rules against env.
func (e *Engine) Evaluate(env RuleEnv) Verdict {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	var v Verdict
	decided := make(map[string]bool) // category → verdict taken
	blocked := make(map[string]bool) // category → exclusive rule already fired

	for _, r := range rules {
		if blocked[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		v.Fired = append(v.Fired, r.Name)
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category)

		if !decided[r.Category] {
			decided[r.Category] = true
			switch r.Category {
			case CategoryPosture:
				v.Posture, v.HasPosture = *r.Posture, true
			case CategoryEngage:
				v.Engage = *r.Engage
			}
		}
		if r.Exclusive {
			blocked[r.Category] = true
		}
	}
	return v
}

// Swap atomically replaces the rule set. Compiles first; if compilation fails
// the old rules remain active.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", ruleNames(compiled))
	return nil
}

// Names lists the active rules in evaluation order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ruleNames(e.rules)
}

func ruleNames(rules []*Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		if err := checkVerdict(r); err != nil {
			return nil, err
		}
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	// Stable so rules of equal priority keep their file order.
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}

func checkVerdict(r *Rule) error {
	switch r.Category {
	case CategoryPosture:
		if r.Posture == nil {
			return fmt.Errorf("rule %q: posture rule without a posture", r.Name)
		}
	case CategoryEngage:
		if r.Engage == nil {
			return fmt.Errorf("rule %q: engage rule without an engage verdict", r.Name)
		}
	default:
		return fmt.Errorf("rule %q: unknown category %q", r.Name, r.Category)
	}
	return nil
}
