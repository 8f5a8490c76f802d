package agent

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nstehr/ares/ares-core/model"
)

// EventKind identifies the category of a game event that should trigger
// posture re-evaluation by the strategist.
type EventKind string

const (
	EventFirstContact   EventKind = "first_contact"
	EventArmyDevastated EventKind = "army_devastated"
	EventNewThreat      EventKind = "new_threat"
	EventTownHallLost   EventKind = "town_hall_lost"
)

// Event represents a significant game event detected by diffing consecutive
// game states. Events are accumulated on the strategist and included in the
// advisor's situation summary so it knows *why* it's being asked again.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string // human-readable description for the advisor
}

// stateSnapshot captures the diffable fields from a game state tick.
// TickState carries one forward and the next tick compares against it.
type stateSnapshot struct {
	army        int
	enemiesSeen bool
	threats     threats
	townHalls   map[uint64]string // id → type
}

func takeSnapshot(gs model.GameState, army int, th threats) stateSnapshot {
	snap := stateSnapshot{
		army:        army,
		enemiesSeen: len(gs.Enemies) > 0 || len(gs.EnemyStructures) > 0,
		threats:     th,
		townHalls:   make(map[uint64]string, len(gs.TownHalls)),
	}
	for _, h := range gs.TownHalls {
		snap.townHalls[h.ID] = h.Type
	}
	return snap
}

// detectEvents compares cur against the previous snapshot and returns any
// triggered events. Returns nil if prev is nil (first tick).
func detectEvents(tick int, cur stateSnapshot, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event

	// 1. town_hall_lost: a town hall present last tick is now gone
	var lost []uint64
	for id := range prev.townHalls {
		if _, ok := cur.townHalls[id]; !ok {
			lost = append(lost, id)
		}
	}
	if len(lost) > 0 {
		slices.Sort(lost)
		events = append(events, Event{
			Kind:   EventTownHallLost,
			Tick:   tick,
			Detail: fmt.Sprintf("Lost town hall: %s (id %d)", prev.townHalls[lost[0]], lost[0]),
		})
	}

	// 2. army_devastated: >50% combat units lost (floor of 6 to avoid early noise)
	if prev.army >= 6 {
		if dead := prev.army - cur.army; dead > 0 && float64(dead)/float64(prev.army) > 0.5 {
			events = append(events, Event{
				Kind:   EventArmyDevastated,
				Tick:   tick,
				Detail: fmt.Sprintf("Army devastated: %d→%d combat units (lost %d%%)", prev.army, cur.army, 100*dead/prev.army),
			})
		}
	}

	// 3. first_contact: enemies visible for the first time
	if !prev.enemiesSeen && cur.enemiesSeen {
		events = append(events, Event{
			Kind:   EventFirstContact,
			Tick:   tick,
			Detail: "First contact: enemy forces sighted",
		})
	}

	// 4. new_threat: a threat class the posture rules react to appeared
	var fresh []string
	for _, name := range cur.threats.names() {
		if !slices.Contains(prev.threats.names(), name) {
			fresh = append(fresh, name)
		}
	}
	if len(fresh) > 0 {
		events = append(events, Event{
			Kind:   EventNewThreat,
			Tick:   tick,
			Detail: "Enemy now has " + strings.Join(fresh, ", "),
		})
	}

	return events
}

// formatEvents renders accumulated events as a "Recent Events" section
// for the advisor's situation summary.
func formatEvents(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nRecent Events:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "- [tick %d] %s: %s\n", e.Tick, e.Kind, e.Detail)
	}
	return b.String()
}
