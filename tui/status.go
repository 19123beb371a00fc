package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/spellcore/types"
)

// renderStatusBar produces a full-width inverted status line showing the
// console actor's health and power, its running casts and the sim clock.
func (m Model) renderStatusBar() string {
	left := " " + m.actorSummary()
	right := fmt.Sprintf("t=%dms ", m.engine.Now())

	if casts := m.castSummary(); casts != "" {
		candidate := casts + " | " + right
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

func (m Model) actorSummary() string {
	u := m.engine.PlayerUnit()
	if u == nil {
		return "no actor"
	}
	parts := []string{fmt.Sprintf("%s %d/%d hp", u.Name, u.Health, u.MaxHealth)}
	for p := types.PowerType(0); p < types.MaxPowers; p++ {
		if u.MaxPower[p] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", powerLabel(p), u.Power[p], u.MaxPower[p]))
	}
	return strings.Join(parts, " | ")
}

// castSummary lists the actor's running attempts with their remaining time.
func (m Model) castSummary() string {
	u := m.engine.PlayerUnit()
	if u == nil {
		return ""
	}
	var parts []string
	for _, a := range m.engine.Slots.Active(u.GUID) {
		switch a.State() {
		case types.StatePreparing, types.StateCasting:
			parts = append(parts, fmt.Sprintf("%s %.1fs", a.Spell.Name, float64(a.Timer())/1000))
		case types.StateDelayed:
			parts = append(parts, a.Spell.Name+" in flight")
		}
	}
	return strings.Join(parts, ", ")
}

func powerLabel(p types.PowerType) string {
	for name, v := range types.PowerNames {
		if v == p {
			return name
		}
	}
	return "power"
}
