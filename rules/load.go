package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

type ruleFile struct {
	Rules []*Rule `yaml:"rules"`
}

// DefaultRules returns a fresh copy of the built-in rule set.
func DefaultRules() []*Rule {
	rs, err := Parse(defaultRules)
	if err != nil {
		panic("rules: built-in rule set: " + err.Error())
	}
	return rs
}

// LoadFile reads a YAML rule set. Conditions are compiled later by NewEngine
// or Swap.
func LoadFile(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return rs, nil
}

func Parse(data []byte) ([]*Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}
	seen := make(map[string]bool, len(f.Rules))
	for i, r := range f.Rules {
		if r == nil || r.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %q", r.Name)
		}
		seen[r.Name] = true
	}
	return f.Rules, nil
}
