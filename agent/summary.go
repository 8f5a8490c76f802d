package agent

import (
	"fmt"
	"strings"

	"github.com/nstehr/ares/ares-core/model"
)

// summarize renders the one-line report the advisor reads, e.g.
//
//	Time: 4.5m. Army: 18. Enemy: 7. Gas: 112. ENEMY HAS TANKS.
func summarize(gs model.GameState, army int, th threats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Time: %.1fm. Army: %d. Enemy: %d. Gas: %d.",
		gs.Minutes(), army, len(gs.Enemies), gs.Player.Vespene)
	if th.tanks {
		b.WriteString(" ENEMY HAS TANKS.")
	}
	if th.bunkers {
		b.WriteString(" ENEMY HAS BUNKERS.")
	}
	if th.air {
		b.WriteString(" ENEMY HAS AIR UNITS.")
	}
	return b.String()
}
