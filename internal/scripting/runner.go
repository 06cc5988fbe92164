package scripting

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/deckdraw/internal/draw"
	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/draw/resolver"
)

// Store is the collection store scripts draw from.
type Store interface {
	resolver.Store
	Names() []string
}

// Runner executes scripts against one store. Each run gets a fresh
// sandboxed state.
//
// Runner is not safe for concurrent use; the store it wraps is mutated by
// draws without replacement.
type Runner struct {
	engine    *draw.Engine
	store     Store
	roller    *dice.Roller
	logger    *zap.Logger
	instLimit int
}

// NewRunner creates a Runner.
//
// Precondition: engine, store and logger must be non-nil; instLimit >= 0.
func NewRunner(engine *draw.Engine, store Store, logger *zap.Logger, instLimit int) *Runner {
	return &Runner{
		engine:    engine,
		store:     store,
		roller:    dice.NewLoggedRoller(engine.Source(), logger),
		logger:    logger,
		instLimit: instLimit,
	}
}

// Run executes source and returns the lines passed to deck.emit.
//
// Postcondition: On a Lua error the lines emitted before the failure are
// returned with the error.
func (r *Runner) Run(ctx context.Context, source string) ([]string, error) {
	return r.run(ctx, "<script>", source)
}

// RunFile executes the Lua file at path.
func (r *Runner) RunFile(ctx context.Context, path string) ([]string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading %q: %w", path, err)
	}
	return r.run(ctx, path, string(src))
}

func (r *Runner) run(ctx context.Context, name, source string) ([]string, error) {
	L, cancel := NewSandboxedState(ctx, r.instLimit)
	defer cancel()
	defer L.Close()

	var out []string
	r.registerModules(L, &out)
	if err := L.DoString(source); err != nil {
		r.logger.Warn("scripting: Lua runtime error",
			zap.String("script", name),
			zap.Error(err),
		)
		return out, fmt.Errorf("scripting: running %s: %w", name, err)
	}
	return out, nil
}
