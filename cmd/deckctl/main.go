// Package main provides deckctl, a command line tool for editing and
// drawing from collection stores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/deckdraw/internal/config"
	"github.com/cory-johannsen/deckdraw/internal/deck"
	"github.com/cory-johannsen/deckdraw/internal/draw"
	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/observability"
	"github.com/cory-johannsen/deckdraw/internal/storage"
)

const usage = `usage: deckctl [-db path | -config file] [-seed n] [-v] <command> [args]

commands:
  list     [-all] [-search keyword]     list collections
  draw     [-n count] <collection>      draw entries
  resolve  <text>                       expand {name} and {%name} references
  dist     <collection>                 show the weight distribution
  roll     <expr>                       roll a dice expression
  import   [-mode merge|replace] <file> load a .json or .yaml document
  export   [-format json|yaml] [file]   write the store
  script   <file.lua>                   run a Lua script
  new      [base]                       create a collection
  rename   <old> <new>                  rename a collection
  toggle   <name>                       hide or reveal a collection
  rm       <name>                       delete a collection
  move     <name> up|down               reorder a collection
  add      [-w expr] <name> <content>   append an entry
  edit     [-w expr] <name> <index> <content>
  remove   <name> <index>               delete an entry
`

// errUsage marks errors that should print the usage text.
var errUsage = errors.New("invalid usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one deckctl invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("deckctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	dbPath := fs.String("db", "", "SQLite database path (default from config)")
	configPath := fs.String("config", "", "configuration file")
	seed := fs.Uint64("seed", 0, "seed for reproducible draws (0 = crypto source)")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath, *dbPath, *seed)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "warn"
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(stderr, "logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer backend.Close()

	store, err := backend.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "loading:", err)
		return 1
	}

	a := &app{
		ctx:    ctx,
		repo:   backend,
		store:  store,
		engine: draw.NewEngine(dice.NewSource(cfg.Engine.Seed), logger, draw.Config{MaxDepth: cfg.Engine.MaxDepth, LabelLength: cfg.Engine.LabelLength}),
		logger: logger,
		out:    stdout,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := a.dispatch(cmd, rest); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		return 1
	}
	return 0
}

func loadConfig(path, dbPath string, seed uint64) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.Storage.Backend = config.StorageSQLite
		cfg.SQLite.Path = dbPath
	}
	if seed != 0 {
		cfg.Engine.Seed = seed
	}
	return cfg, nil
}

type app struct {
	ctx    context.Context
	repo   deck.Repository
	store  *deck.Store
	engine *draw.Engine
	logger *zap.Logger
	out    io.Writer
}

func (a *app) dispatch(cmd string, args []string) error {
	handlers := map[string]func([]string) error{
		"list":    a.list,
		"draw":    a.draw,
		"resolve": a.resolve,
		"dist":    a.dist,
		"roll":    a.roll,
		"import":  a.importDoc,
		"export":  a.export,
		"script":  a.script,
		"new":     a.create,
		"rename":  a.rename,
		"toggle":  a.toggle,
		"rm":      a.remove,
		"move":    a.move,
		"add":     a.addEntry,
		"edit":    a.editEntry,
		"remove":  a.removeEntry,
	}
	h, ok := handlers[cmd]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return h(args)
}

// save persists the store after a mutating command.
func (a *app) save() error {
	if err := a.repo.Save(a.ctx, a.store); err != nil {
		return fmt.Errorf("saving: %w", err)
	}
	return nil
}

func needArgs(args []string, n int, what string) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %s", errUsage, what)
	}
	return nil
}

func joinArgs(args []string) string { return strings.Join(args, " ") }
