package typetable

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Kind is the numeric unit/structure type id reported by the game host.
type Kind uint32

// Class groups kinds by how urgently they should die. Weights per class live
// in the table file so balance passes don't touch code.
type Class string

const (
	ClassCritical  Class = "critical"  // siege tanks, cyclones, capital air
	ClassShooter   Class = "shooter"   // line combat units
	ClassSupport   Class = "support"   // medics, transports, casters
	ClassWorker    Class = "worker"    // SCV, drone, probe
	ClassDefense   Class = "defense"   // static defense that shoots back
	ClassStructure Class = "structure" // everything else that doesn't move
)

// Targets describes which layer a weapon can hit.
type Targets string

const (
	TargetsGround Targets = "ground"
	TargetsAir    Targets = "air"
	TargetsBoth   Targets = "both"
	TargetsNone   Targets = "none"
)

var ErrUnknownKind = errors.New("unknown kind")

// Entry is the static combat profile of one kind.
type Entry struct {
	Kind           Kind    `yaml:"kind"`
	Name           string  `yaml:"name"`
	AttackRange    float64 `yaml:"range"`
	DamagePerHit   float64 `yaml:"damage"`
	AttackInterval float64 `yaml:"interval"` // game seconds between hits
	Speed          float64 `yaml:"speed"`    // 0 for anything immobile
	Class          Class   `yaml:"class"`
	Targets        Targets `yaml:"targets"`
	Air            bool    `yaml:"air"`
	Structure      bool    `yaml:"structure"`
}

// DPS is the sustained damage output, zero for unarmed kinds.
func (e Entry) DPS() float64 {
	if e.DamagePerHit <= 0 || e.AttackInterval <= 0 || e.Targets == TargetsNone {
		return 0
	}
	return e.DamagePerHit / e.AttackInterval
}

// Armed reports whether the kind has a usable weapon.
func (e Entry) Armed() bool { return e.DPS() > 0 }

// CanHit reports whether e's weapon can reach the layer target occupies.
func (e Entry) CanHit(target Entry) bool {
	if !e.Armed() {
		return false
	}
	switch e.Targets {
	case TargetsBoth:
		return true
	case TargetsAir:
		return target.Air
	default:
		return !target.Air
	}
}

// Table is immutable once loaded and safe for concurrent readers.
type Table struct {
	version       string
	classWeights  map[Class]float64
	defenseThreat float64
	entries       map[Kind]Entry
	byName        map[string]Kind
}

type tableFile struct {
	Version                 string            `yaml:"version"`
	Classes                 map[Class]float64 `yaml:"classes"`
	DefenseThreatMultiplier float64           `yaml:"defense_threat_multiplier"`
	Units                   []Entry           `yaml:"units"`
}

//go:embed default.yaml
var defaultTable []byte

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(defaultTable)
})

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return loadDefault()
}

// Load reads a table from a YAML file.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read type table: %w", err)
	}
	t, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse type table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return build(f)
}

// New assembles a table in code; used by tests and tools that synthesise
// balance data.
func New(version string, classes map[Class]float64, defenseThreat float64, entries ...Entry) (*Table, error) {
	return build(tableFile{
		Version:                 version,
		Classes:                 maps.Clone(classes),
		DefenseThreatMultiplier: defenseThreat,
		Units:                   entries,
	})
}

func build(f tableFile) (*Table, error) {
	if f.Version == "" {
		return nil, errors.New("missing version")
	}
	if f.DefenseThreatMultiplier == 0 {
		f.DefenseThreatMultiplier = 1
	}
	if f.DefenseThreatMultiplier < 1 {
		return nil, fmt.Errorf("defense_threat_multiplier %v must be >= 1", f.DefenseThreatMultiplier)
	}
	for c, w := range f.Classes {
		if !(w > 0) {
			return nil, fmt.Errorf("class %q: weight %v must be positive", c, w)
		}
	}

	t := &Table{
		version:       f.Version,
		classWeights:  f.Classes,
		defenseThreat: f.DefenseThreatMultiplier,
		entries:       make(map[Kind]Entry, len(f.Units)),
		byName:        make(map[string]Kind, len(f.Units)),
	}
	for _, e := range f.Units {
		e.Name = strings.ToLower(e.Name)
		if e.Targets == "" {
			e.Targets = TargetsGround
		}
		if err := validateEntry(e, f.Classes); err != nil {
			return nil, err
		}
		if _, dup := t.entries[e.Kind]; dup {
			return nil, fmt.Errorf("duplicate kind %d", e.Kind)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate name %q", e.Name)
		}
		t.entries[e.Kind] = e
		t.byName[e.Name] = e.Kind
	}
	return t, nil
}

func validateEntry(e Entry, classes map[Class]float64) error {
	if e.Name == "" {
		return fmt.Errorf("kind %d: missing name", e.Kind)
	}
	if _, ok := classes[e.Class]; !ok {
		return fmt.Errorf("%s: class %q not declared", e.Name, e.Class)
	}
	switch e.Targets {
	case TargetsGround, TargetsAir, TargetsBoth, TargetsNone:
	default:
		return fmt.Errorf("%s: invalid targets %q", e.Name, e.Targets)
	}
	if e.AttackRange < 0 || e.DamagePerHit < 0 || e.Speed < 0 {
		return fmt.Errorf("%s: range, damage and speed must be non-negative", e.Name)
	}
	if e.DamagePerHit > 0 && !(e.AttackInterval > 0) {
		return fmt.Errorf("%s: armed kinds need a positive interval", e.Name)
	}
	return nil
}

// Version identifies the balance revision the table was authored against.
func (t *Table) Version() string { return t.version }

// Len returns the number of kinds.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the entry for k.
func (t *Table) Lookup(k Kind) (Entry, bool) {
	e, ok := t.entries[k]
	return e, ok
}

// Resolve is Lookup returning ErrUnknownKind for missing kinds.
func (t *Table) Resolve(k Kind) (Entry, error) {
	e, ok := t.entries[k]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
	return e, nil
}

// ByName resolves a kind by its lowercase name ("siegetanksieged").
func (t *Table) ByName(name string) (Entry, bool) {
	k, ok := t.byName[strings.ToLower(name)]
	if !ok {
		return Entry{}, false
	}
	return t.entries[k], true
}

// ClassWeight is the base kill value for a class.
func (t *Table) ClassWeight(c Class) float64 { return t.classWeights[c] }

// DefenseThreatMultiplier scales the kill value of static defense that
// covers a unit's approach.
func (t *Table) DefenseThreatMultiplier() float64 { return t.defenseThreat }
