package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/spellcore/engine/events"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleEventName = lipgloss.NewStyle().
			Bold(true)

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleHeal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	styleAura = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141"))

	styleCast = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindCast
	kindDamage
	kindHeal
	kindAura
	kindEvent
	kindSystem
	kindError
	kindTrace
)

// eventKinds maps notification types to the style of their line.
var eventKinds = map[string]lineKind{
	events.SpellStart:     kindCast,
	events.SpellGo:        kindCast,
	events.ChannelStart:   kindCast,
	events.ChannelUpdate:  kindCast,
	events.SpellDamage:    kindDamage,
	events.LogExecute:     kindDamage,
	events.SpellHeal:      kindHeal,
	events.Energize:       kindHeal,
	events.AuraApplied:    kindAura,
	events.AuraRemoved:    kindAura,
	events.CastFailed:     kindError,
	events.SpellMiss:      kindError,
	events.Interrupted:    kindError,
	events.SpellCooldown:  kindEvent,
	events.CreatureCredit: kindEvent,
	events.Pushback:       kindEvent,
	events.PowerSpent:     kindEvent,
	events.Teleport:       kindEvent,
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	}
	if k, ok := eventKinds[eventName(line)]; ok {
		return k
	}
	switch {
	case strings.Contains(line, " cannot cast "),
		strings.HasPrefix(line, "Unknown "),
		strings.HasPrefix(line, "I don't know"),
		strings.HasPrefix(line, "Bad "):
		return kindError
	default:
		return kindNarration
	}
}

// eventName returns the first word of a formatted event line.
func eventName(line string) string {
	name, _, _ := strings.Cut(line, " ")
	return name
}

// styledEvent renders "spell_go caster=1 spell=133" with the event name bold.
func styledEvent(line string, style lipgloss.Style) string {
	name, rest, ok := strings.Cut(line, " ")
	if !ok {
		return style.Inherit(styleEventName).Render(line)
	}
	return style.Inherit(styleEventName).Render(name) + " " + style.Render(rest)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
