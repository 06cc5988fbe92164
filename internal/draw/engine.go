// Package draw is the weighted reference-resolution draw engine: a weighted
// top-level draw from a named collection followed by recursive expansion of
// the reference tokens in the drawn entry.
package draw

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/draw/distribution"
	"github.com/cory-johannsen/deckdraw/internal/draw/entry"
	"github.com/cory-johannsen/deckdraw/internal/draw/resolver"
	"github.com/cory-johannsen/deckdraw/internal/draw/sampler"
	"github.com/cory-johannsen/deckdraw/internal/draw/weight"
)

// ErrEmptyCollection is returned by Draw when the collection is missing or
// has no entries. It wraps sampler.ErrEmptyPopulation.
var ErrEmptyCollection = fmt.Errorf("draw: collection missing or empty: %w", sampler.ErrEmptyPopulation)

// ErrCollectionNotFound is returned by Distribution for an unknown collection.
var ErrCollectionNotFound = errors.New("draw: collection not found")

// Result is the outcome of one top-level draw.
type Result struct {
	ID         string // unique draw identifier
	Collection string
	Index      int    // position of the drawn entry in the collection
	Raw        string // the drawn entry as stored
	Content    string // the entry content before resolution
	Text       string // the fully resolved text
	Weight     int    // the entry's evaluated weight for this draw
	Stats      resolver.Stats
}

// Config tunes an Engine.
type Config struct {
	// MaxDepth bounds reference resolution passes; 0 uses resolver.DefaultMaxDepth.
	MaxDepth int
	// LabelLength is the content length of distribution labels; 0 uses
	// entry.DefaultLabelLength.
	LabelLength int
}

// Engine draws from collections held in a caller-supplied store.
//
// Engine holds no collection state. It is not safe to run concurrent calls
// against the same store; callers serialize per store.
type Engine struct {
	src      dice.Source
	resolver *resolver.Resolver
	cfg      Config
	logger   *zap.Logger
}

// NewEngine creates an Engine drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewEngine(src dice.Source, logger *zap.Logger, cfg Config) *Engine {
	return &Engine{
		src: src,
		resolver: resolver.New(src,
			resolver.WithMaxDepth(cfg.MaxDepth),
			resolver.WithLogger(logger),
		),
		cfg:    cfg,
		logger: logger,
	}
}

// Source returns the Source the engine draws from.
func (e *Engine) Source() dice.Source { return e.src }

// Draw picks one entry of the named collection with probability proportional
// to its weight and resolves the references in its content.
//
// Postcondition: Returns ErrEmptyCollection if the collection is missing or
// empty, or resolver.ErrResolutionDepthExceeded if resolution does not
// terminate. Without-replacement references consume entries from store.
func (e *Engine) Draw(store resolver.Store, name string) (Result, error) {
	raws, ok := store.Entries(name)
	if !ok || len(raws) == 0 {
		return Result{}, ErrEmptyCollection
	}

	items := make([]sampler.Item[int], len(raws))
	decoded := make([]entry.Entry, len(raws))
	for i, raw := range raws {
		decoded[i] = entry.Decode(raw)
		items[i] = sampler.Item[int]{Value: i, Weight: weight.Of(decoded[i].Expr(), e.src)}
	}
	idx, err := sampler.Draw(items, e.src)
	if err != nil {
		return Result{}, fmt.Errorf("drawing from %q: %w", name, err)
	}

	// Resolution may mutate the store; copy what we report first.
	res := Result{
		ID:         uuid.NewString(),
		Collection: name,
		Index:      idx,
		Raw:        raws[idx],
		Content:    decoded[idx].Content,
		Weight:     items[idx].Weight,
	}
	text, stats, err := e.resolver.ResolveWithStats(res.Content, store)
	res.Stats = stats
	if err != nil {
		e.logger.Warn("draw resolution failed",
			zap.String("draw_id", res.ID),
			zap.String("collection", name),
			zap.Int("passes", stats.Passes),
			zap.Error(err),
		)
		return res, fmt.Errorf("resolving draw from %q: %w", name, err)
	}
	res.Text = text

	e.logger.Debug("draw",
		zap.String("draw_id", res.ID),
		zap.String("collection", name),
		zap.Int("index", idx),
		zap.Int("weight", res.Weight),
		zap.Int("passes", stats.Passes),
		zap.Int("consumed", stats.Consumed),
	)
	return res, nil
}

// Resolve expands the references in text against store.
func (e *Engine) Resolve(store resolver.Store, text string) (string, resolver.Stats, error) {
	return e.resolver.ResolveWithStats(text, store)
}

// Distribution reports the weight breakdown of the named collection.
//
// Postcondition: Returns ErrCollectionNotFound if the collection is missing.
func (e *Engine) Distribution(store resolver.Store, name string) ([]distribution.Slice, error) {
	raws, ok := store.Entries(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	return distribution.Report(raws, e.src, e.cfg.LabelLength), nil
}

// Weight evaluates a single weight expression with the engine's source.
func (e *Engine) Weight(expr string) int {
	return weight.Of(expr, e.src)
}
