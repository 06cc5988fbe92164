// Package resolver expands reference tokens embedded in entry text.
//
// "{%name}" draws from the named collection with replacement and "{name}"
// draws without replacement, removing the consumed entry from the store.
// Substituted text is scanned again until no tokens remain.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/deckdraw/internal/draw/dice"
	"github.com/cory-johannsen/deckdraw/internal/draw/entry"
)

// DefaultMaxDepth is the default bound on resolution passes.
const DefaultMaxDepth = 32

// ErrResolutionDepthExceeded is returned when text still contains references
// after the maximum number of passes, e.g. a collection that refers to itself
// with replacement.
var ErrResolutionDepthExceeded = errors.New("resolver: resolution depth exceeded")

// Diagnostic returns the text substituted for a reference to a missing or
// empty collection. It adds no braces beyond those in name, and a name never
// holds the braces that delimit its token, so every such substitution removes
// at least one "{" from the text.
func Diagnostic(name string) string {
	return fmt.Sprintf(`[invalid reference: collection "%s" missing or empty]`, name)
}

// Stats describes one resolution.
type Stats struct {
	Passes        int // scan passes that substituted at least one token
	Substitutions int // tokens replaced, diagnostics included
	Diagnostics   int // tokens replaced by Diagnostic
	Consumed      int // entries removed by without-replacement draws
}

// Resolver expands reference tokens against a Store.
type Resolver struct {
	src      dice.Source
	maxDepth int
	logger   *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDepth bounds the number of resolution passes. n <= 0 keeps the default.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a Resolver drawing from src.
//
// Precondition: src must be non-nil.
func New(src dice.Source, opts ...Option) *Resolver {
	r := &Resolver{src: src, maxDepth: DefaultMaxDepth, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxDepth returns the configured pass bound.
func (r *Resolver) MaxDepth() int { return r.maxDepth }

// Resolve expands every reference token in text.
//
// Postcondition: Returns text with no resolvable tokens, or
// ErrResolutionDepthExceeded. Entries consumed before a failure stay removed.
func (r *Resolver) Resolve(text string, store Store) (string, error) {
	out, _, err := r.ResolveWithStats(text, store)
	return out, err
}

// ResolveWithStats is Resolve also reporting what the resolution did.
func (r *Resolver) ResolveWithStats(text string, store Store) (string, Stats, error) {
	var stats Stats
	for {
		if stats.Passes >= r.maxDepth && hasTokens(text) {
			r.logger.Debug("resolution depth exceeded",
				zap.Int("max_depth", r.maxDepth),
				zap.Int("substitutions", stats.Substitutions),
			)
			return "", stats, fmt.Errorf("%w: %d passes", ErrResolutionDepthExceeded, stats.Passes)
		}
		next, n, err := r.pass(text, store, &stats)
		if err != nil {
			return "", stats, err
		}
		if n == 0 {
			return next, stats, nil
		}
		stats.Passes++
		text = next
		if !strings.Contains(text, "{") || !strings.Contains(text, "}") {
			return text, stats, nil
		}
	}
}

// pass substitutes every with-replacement token, then every
// without-replacement token, and returns the number of substitutions.
func (r *Resolver) pass(text string, store Store, stats *Stats) (string, int, error) {
	draw := func(withReplacement bool) func(string) (string, error) {
		return func(name string) (string, error) {
			content, ok, err := r.drawFrom(name, withReplacement, store)
			if err != nil {
				return "", err
			}
			stats.Substitutions++
			if !ok {
				stats.Diagnostics++
			} else if !withReplacement {
				stats.Consumed++
			}
			return content, nil
		}
	}

	text, n1, err := replaceTokens(text, matchWithReplacement, draw(true))
	if err != nil {
		return "", n1, err
	}
	text, n2, err := replaceTokens(text, matchWithoutReplacement, draw(false))
	if err != nil {
		return "", n1 + n2, err
	}
	return text, n1 + n2, nil
}

// DrawFrom draws the content of one uniformly chosen entry of the named
// collection. Entry weights are ignored. Without replacement, the entry is
// removed from the store. A missing or empty collection yields Diagnostic(name).
func (r *Resolver) DrawFrom(name string, withReplacement bool, store Store) (string, error) {
	content, _, err := r.drawFrom(name, withReplacement, store)
	return content, err
}

func (r *Resolver) drawFrom(name string, withReplacement bool, store Store) (string, bool, error) {
	entries, ok := store.Entries(name)
	if !ok || len(entries) == 0 {
		r.logger.Debug("invalid reference", zap.String("collection", name))
		return Diagnostic(name), false, nil
	}
	i := r.src.Intn(len(entries))
	raw := entries[i]
	if !withReplacement {
		if err := store.RemoveEntry(name, i); err != nil {
			return "", false, fmt.Errorf("removing drawn entry: %w", err)
		}
	}
	r.logger.Debug("reference drawn",
		zap.String("collection", name),
		zap.Int("index", i),
		zap.Bool("with_replacement", withReplacement),
	)
	return entry.Decode(raw).Content, true, nil
}
