package drawservice

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/deckdraw/internal/deck"
	"github.com/cory-johannsen/deckdraw/internal/draw"
	"github.com/cory-johannsen/deckdraw/internal/draw/resolver"
	"github.com/cory-johannsen/deckdraw/internal/observability"
)

// Server implements DrawServiceServer over one store. Every call holds the
// store lock, and calls that consume entries persist the store afterwards.
type Server struct {
	mu      sync.Mutex
	engine  *draw.Engine
	store   *deck.Store
	repo    deck.Repository
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewServer creates a Server.
//
// Precondition: engine, store, metrics and logger must be non-nil. repo may
// be nil to keep the store in memory only.
func NewServer(engine *draw.Engine, store *deck.Store, repo deck.Repository, metrics *observability.Metrics, logger *zap.Logger) *Server {
	return &Server{engine: engine, store: store, repo: repo, metrics: metrics, logger: logger}
}

// Draw draws one entry from the requested collection.
func (s *Server) Draw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	defer s.metrics.Since(MethodDraw, time.Now())
	name, err := stringField(req, "collection")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.engine.Draw(s.store, name)
	s.metrics.ObserveDraw(drawOutcome(err), res.Stats.Passes, res.Stats.Diagnostics)
	if saveErr := s.persist(ctx, res.Stats); saveErr != nil {
		return nil, saveErr
	}
	if err != nil {
		return nil, statusFor(err)
	}
	return structpb.NewStruct(map[string]any{
		"id":      res.ID,
		"text":    res.Text,
		"content": res.Content,
		"index":   res.Index,
		"weight":  res.Weight,
	})
}

// Resolve expands the references in the requested text.
func (s *Server) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	defer s.metrics.Since(MethodResolve, time.Now())
	text, err := stringField(req, "text")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, stats, err := s.engine.Resolve(s.store, text)
	s.metrics.ObserveResolve(stats.Passes, stats.Diagnostics)
	if saveErr := s.persist(ctx, stats); saveErr != nil {
		return nil, saveErr
	}
	if err != nil {
		return nil, statusFor(err)
	}
	return structpb.NewStruct(map[string]any{"text": out})
}

// Distribution reports the weight breakdown of the requested collection.
func (s *Server) Distribution(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	defer s.metrics.Since(MethodDistribution, time.Now())
	name, err := stringField(req, "collection")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	slices, err := s.engine.Distribution(s.store, name)
	s.mu.Unlock()
	if err != nil {
		return nil, statusFor(err)
	}

	out := make([]any, 0, len(slices))
	for _, sl := range slices {
		out = append(out, map[string]any{
			"label":       sl.Label,
			"weight":      sl.Weight,
			"probability": sl.Probability,
		})
	}
	return structpb.NewStruct(map[string]any{"slices": out})
}

// ListCollections lists collections in order, hidden ones only on request.
func (s *Server) ListCollections(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	defer s.metrics.Since(MethodListCollections, time.Now())
	includeHidden := req.GetFields()["include_hidden"].GetBoolValue()

	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.store.Visible()
	if includeHidden {
		names = s.store.Names()
	}
	out := make([]any, 0, len(names))
	for _, n := range names {
		entries, _ := s.store.Entries(n)
		out = append(out, map[string]any{
			"name":   n,
			"hidden": deck.IsHidden(n),
			"size":   len(entries),
		})
	}
	return structpb.NewStruct(map[string]any{"collections": out})
}

// persist saves the store when a call consumed entries.
func (s *Server) persist(ctx context.Context, stats resolver.Stats) error {
	if s.repo == nil || stats.Consumed == 0 {
		return nil
	}
	if err := s.repo.Save(ctx, s.store); err != nil {
		s.logger.Error("saving store", zap.Error(err))
		return status.Errorf(codes.Internal, "saving store: %v", err)
	}
	return nil
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "missing field %q", key)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "field %q must be a string", key)
	}
	return sv.StringValue, nil
}

func drawOutcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, draw.ErrEmptyCollection):
		return observability.OutcomeEmpty
	case errors.Is(err, resolver.ErrResolutionDepthExceeded):
		return observability.OutcomeDepthExceeded
	}
	return observability.OutcomeError
}

func statusFor(err error) error {
	switch {
	case errors.Is(err, draw.ErrEmptyCollection):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, draw.ErrCollectionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, resolver.ErrResolutionDepthExceeded):
		return status.Error(codes.ResourceExhausted, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
