// SpellCore is a deterministic spell resolution engine driven from a
// combat console.
// Usage: spellcore [--version] [--plain] [--script <file>] [--trace]
//
//	[--log <file>] [--combat <dir>] [--listen <addr>] <world_directory>
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nathoo/spellcore/cli"
	"github.com/nathoo/spellcore/engine"
	"github.com/nathoo/spellcore/engine/events"
	"github.com/nathoo/spellcore/engine/scripting"
	"github.com/nathoo/spellcore/loader"
	"github.com/nathoo/spellcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: spellcore [--version] [--plain] [--script <file>] [--trace] [--log <file>] [--combat <dir>] [--listen <addr>] <world_directory>\n"

type options struct {
	plain      bool
	trace      bool
	worldDir   string
	scriptFile string
	logFile    string
	combatDir  string
	listenAddr string
}

func main() {
	var opts options

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("spellcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--script", "--log", "--combat", "--listen":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			flag := args[i]
			i++
			switch flag {
			case "--script":
				opts.scriptFile = args[i]
			case "--log":
				opts.logFile = args[i]
			case "--combat":
				opts.combatDir = args[i]
			case "--listen":
				opts.listenAddr = args[i]
			}
		default:
			if opts.worldDir == "" {
				opts.worldDir = args[i]
			}
		}
	}

	if opts.worldDir == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// The TUI owns the terminal, so it only logs to a file.
	interactive := opts.scriptFile == "" && !opts.plain && isTerminal()
	log, err := newLogger(opts.trace, opts.logFile, interactive)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	defs, err := loader.Load(opts.worldDir)
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}

	engineOpts := []engine.Option{engine.WithLogger(log)}
	var srv *http.Server
	if opts.listenAddr != "" {
		b := events.NewBroadcaster(log.Named("broadcast"))
		defer b.Close()
		engineOpts = append(engineOpts, engine.WithSink(b))

		mux := http.NewServeMux()
		mux.Handle("/events", b)
		srv = &http.Server{Addr: opts.listenAddr, Handler: mux}
	}

	eng, err := engine.New(defs, engineOpts...)
	if err != nil {
		return err
	}

	if opts.combatDir != "" {
		combat, err := scripting.NewEngine(opts.combatDir, eng.RNG, eng.HitTable(), log.Named("combat"))
		if err != nil {
			return err
		}
		defer combat.Close()
		eng.SetCombat(combat)
	}

	var g errgroup.Group
	if srv != nil {
		g.Go(func() error {
			log.Info("streaming notifications", zap.String("addr", srv.Addr), zap.String("path", "/events"))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("event listener: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		if srv != nil {
			defer srv.Close()
		}
		return console(opts, eng, interactive)
	})
	return g.Wait()
}

// console runs the operator front end until it exits.
func console(opts options, eng *engine.Engine, interactive bool) error {
	defs := eng.Defs

	// Script mode: open file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		printBanner(defs.World.Title, defs.World.Version, defs.World.Author)
		c := cli.New(eng, defs)
		c.In = f
		c.EchoInput = true
		c.Trace = opts.trace
		c.Run()
		return nil
	}

	if !interactive {
		printBanner(defs.World.Title, defs.World.Version, defs.World.Author)
		c := cli.New(eng, defs)
		c.Trace = opts.trace
		c.Run()
		return nil
	}

	return tui.Run(eng, defs)
}

// newLogger builds a development logger with --trace and a production one
// otherwise. Interactive sessions without a log file get no logger.
func newLogger(trace bool, path string, interactive bool) (*zap.Logger, error) {
	if interactive && path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if trace {
		cfg = zap.NewDevelopmentConfig()
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
	}
	return cfg.Build()
}

func printBanner(title, version, author string) {
	banner := title
	if version != "" {
		banner += " v" + version
	}
	if author != "" {
		banner += " by " + author
	}
	fmt.Printf("%s\n\n", banner)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
