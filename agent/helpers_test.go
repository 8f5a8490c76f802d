package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nstehr/ares/ares-core/focus"
	"github.com/nstehr/ares/ares-core/journal"
	"github.com/nstehr/ares/ares-core/posture"
	"github.com/nstehr/ares/ares-core/rules"
	"github.com/nstehr/ares/ares-core/typetable"
)

func defaultTable(t *testing.T) *typetable.Table {
	t.Helper()
	table, err := typetable.Default()
	require.NoError(t, err)
	return table
}

// testOptions wires the shipped table and rules with the rules advisor inline.
func testOptions(t *testing.T) Options {
	t.Helper()
	table := defaultTable(t)
	fe, err := focus.New(table, focus.DefaultConfig())
	require.NoError(t, err)
	re, err := rules.NewEngine(rules.DefaultRules())
	require.NoError(t, err)
	return Options{
		Table:      table,
		Focus:      fe,
		Rules:      re,
		Advisor:    rules.NewAdvisor(re),
		Inline:     true,
		BaseRadius: 20,
	}
}

// stubAdvisor answers with a fixed posture and counts calls.
type stubAdvisor struct {
	mu    sync.Mutex
	p     posture.Posture
	err   error
	calls []posture.Situation
}

func (s *stubAdvisor) Advise(_ context.Context, sit posture.Situation) (posture.Posture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sit)
	return s.p, s.err
}

func (s *stubAdvisor) called() []posture.Situation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]posture.Situation(nil), s.calls...)
}

type memRecorder struct {
	records []journal.TickRecord
}

func (m *memRecorder) Record(r journal.TickRecord) bool {
	m.records = append(m.records, r)
	return true
}
