// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the SpellCore combat console.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/save"
	"github.com/nathoo/spellcore/engine/state"
	"github.com/nathoo/spellcore/types"
)

// CLI handles terminal interaction with the operator.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".spellcore", "saves"),
	}
}

// Run starts the console loop. It shows the intro and the units on the
// map, then loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	if c.Defs.World.Intro != "" {
		c.printLine(c.Defs.World.Intro)
		c.printLine("")
	}
	c.printResult(c.Engine.Step("look"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)
		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the console should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true
	case "/save":
		c.cmdSave(arg)
	case "/load":
		c.cmdLoad(arg)
	case "/help":
		c.cmdHelp()
	case "/state":
		c.cmdState()
	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Engine)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if sd.World != c.Defs.World.Title {
		c.printSystem(fmt.Sprintf("Load failed: save is for %q, not %q", sd.World, c.Defs.World.Title))
		return
	}
	if err := save.ApplySave(c.Engine, sd); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Loaded %s (t=%d ms).", name, sd.ClockMS))
	c.printResult(c.Engine.Step("look"))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save the simulation (default: quicksave)",
		"  /load [name]  Load a saved simulation (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump clock, RNG and units",
		"  /trace        Toggle notification trace output",
		"",
		"Console commands:",
		"  cast <spell> [on <unit>] [at x y [z]]",
		"  as <unit> cast <spell> ...  Cast as another unit",
		"  tick <ms> / wait            Advance the clock",
		"  cancel [slot]               Stop casting (generic, melee, autorepeat, channeled)",
		"  move <unit> x y [z]         Place a unit",
		"  look                        List the units on the map",
		"  status [unit]               Health, power, auras and casts",
		"  spells                      List the defined spells",
		"  again (g)                   Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	e := c.Engine
	c.printSystem(fmt.Sprintf("Clock: %d ms", e.Now()))
	c.printSystem(fmt.Sprintf("Session: %s", e.Session))
	c.printSystem(fmt.Sprintf("RNG: seed %d, position %d", e.RNG.Seed(), e.RNG.Position()))
	c.printSystem(fmt.Sprintf("Pending tasks: %d", e.Queue.Len()))
	for _, u := range e.Map.Units() {
		line := fmt.Sprintf("#%d %s hp %d/%d at (%.1f, %.1f, %.1f)",
			u.GUID, u.Name, u.Health, u.MaxHealth, u.Pos.X, u.Pos.Y, u.Pos.Z)
		if n := len(u.Auras); n > 0 {
			line += fmt.Sprintf(", %d aura(s)", n)
		}
		if n := len(e.Slots.Active(u.GUID)); n > 0 {
			line += fmt.Sprintf(", %d cast(s)", n)
		}
		c.printSystem(line)
	}
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) == 0 {
		return
	}
	c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
	for _, e := range result.Events {
		c.printSystem(fmt.Sprintf("[trace]   %s %s", e.Type, formatData(e.Data)))
	}
}

// formatData renders event data as key=value pairs in key order.
func formatData(data map[string]any) string {
	keys := events.SortedKeys(data)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return strings.Join(parts, " ")
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
