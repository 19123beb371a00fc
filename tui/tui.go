package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/save"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the SpellCore TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated output lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	live     bool // advance the clock in real time
	quitting bool
	lastCmd  string
	saveDir  string
}

// consoleOutputMsg carries output from the engine into the Update loop.
type consoleOutputMsg struct {
	input    string   // echoed input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// liveTickMsg advances the clock by one world tick while live mode is on.
type liveTickMsg struct{}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	return Model{
		engine:  eng,
		defs:    defs,
		input:   ti,
		history: NewHistory(100),
		saveDir: filepath.Join(home, ".spellcore", "saves"),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs) error {
	m := New(eng, defs)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the banner and the unit list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		w := m.defs.World
		banner := w.Title
		if w.Version != "" {
			banner += " v" + w.Version
		}
		if w.Author != "" {
			banner += " by " + w.Author
		}
		lines := []string{banner, ""}
		if w.Intro != "" {
			lines = append(lines, w.Intro, "")
		}
		lines = append(lines, m.engine.Step("look").Output...)
		return consoleOutputMsg{lines: lines}
	}
}

// tickMS is the world tick, falling back to the engine's default step.
func (m Model) tickMS() int {
	if m.defs.World.TickMS > 0 {
		return m.defs.World.TickMS
	}
	return 100
}

func (m Model) liveTick() tea.Cmd {
	return tea.Tick(time.Duration(m.tickMS())*time.Millisecond, func(time.Time) tea.Msg {
		return liveTickMsg{}
	})
}

// Update handles messages (key presses, window resize, console output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			m.history.Search(m.input.Value())
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case liveTickMsg:
		if !m.live {
			return m, nil
		}
		m.engine.Tick(m.tickMS())
		if lines := formatEvents(m.engine.Drain()); len(lines) > 0 {
			m = m.appendOutput(consoleOutputMsg{lines: lines})
		}
		return m, m.liveTick()

	case consoleOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(consoleOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		wasLive := m.live
		output, quit := m.handleMeta(input)
		m = m.appendOutput(consoleOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		if m.live && !wasLive {
			return m, m.liveTick()
		}
		return m, nil
	}

	result := m.engine.Step(input)
	output := result.Output
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	m = m.appendOutput(consoleOutputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg consoleOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between commands.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindCast:
		return styledEvent(line, styleCast)
	case kindDamage:
		return styledEvent(line, styleDamage)
	case kindHeal:
		return styledEvent(line, styleHeal)
	case kindAura:
		return styledEvent(line, styleAura)
	case kindEvent:
		return styledEvent(line, styleNarration)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	case "/live":
		m.live = !m.live
		if m.live {
			return []string{fmt.Sprintf("Clock running (%d ms per tick).", m.tickMS())}, false
		}
		return []string{"Clock paused."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(m.engine)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if sd.World != m.defs.World.Title {
		return []string{fmt.Sprintf("Load failed: save is for %q, not %q", sd.World, m.defs.World.Title)}
	}
	if err := save.ApplySave(m.engine, sd); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	output := []string{fmt.Sprintf("Loaded %s (t=%d ms).", name, sd.ClockMS)}
	return append(output, m.engine.Step("look").Output...)
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  Save the simulation (default: quicksave)",
		"  /load [name]  Load a saved simulation (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump clock, RNG and units",
		"  /trace        Toggle notification trace output",
		"  /live         Run or pause the clock in real time",
		"",
		"Console commands:",
		"  cast <spell> [on <unit>] [at x y [z]]",
		"  as <unit> cast <spell> ...  Cast as another unit",
		"  tick <ms> / wait            Advance the clock",
		"  cancel [slot]               Stop casting",
		"  move <unit> x y [z]         Place a unit",
		"  look                        List the units on the map",
		"  status [unit]               Health, power, auras and casts",
		"  spells                      List the defined spells",
		"  again (g)                   Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	e := m.engine
	output := []string{
		fmt.Sprintf("Clock: %d ms", e.Now()),
		fmt.Sprintf("Session: %s", e.Session),
		fmt.Sprintf("RNG: seed %d, position %d", e.RNG.Seed(), e.RNG.Position()),
		fmt.Sprintf("Pending tasks: %d", e.Queue.Len()),
	}
	for _, name := range e.Queue.Pending() {
		output = append(output, "  "+name)
	}
	for _, u := range e.Map.Units() {
		output = append(output, fmt.Sprintf("#%d %s hp %d/%d at (%.1f, %.1f, %.1f)",
			u.GUID, u.Name, u.Health, u.MaxHealth, u.Pos.X, u.Pos.Y, u.Pos.Z))
	}
	return output
}

func (m *Model) formatTrace(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		if id, ok := e.Data["cast_id"]; ok {
			lines = append(lines, fmt.Sprintf("[trace]   %s cast_id=%v", e.Type, id))
		} else {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// formatEvents renders drained notifications as console lines.
func formatEvents(evs []types.Event) []string {
	lines := make([]string, 0, len(evs))
	for _, e := range evs {
		lines = append(lines, events.Format(e))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
